package temporal

import (
	"time"

	"github.com/ppiankov/credence/internal/model"
)

// Checker compares evidence windows against a claim window
type Checker struct {
	margin time.Duration
}

// NewChecker creates a checker; evidence ending up to margin before the claim
// window still counts as relevant
func NewChecker(margin time.Duration) *Checker {
	if margin < 0 {
		margin = 0
	}
	return &Checker{margin: margin}
}

// Check classifies one evidence window.
// Evidence that ends before the claim window starts is stale. Evidence
// published after the window may report on it and counts as relevant.
func (c *Checker) Check(claim, evidence *model.TimeWindow) model.TemporalStatus {
	if claim == nil || !claim.Resolved() {
		return model.TemporalNotApplicable
	}
	if evidence == nil || !evidence.Resolved() {
		return model.TemporalUndated
	}
	if evidence.End.Before(claim.Start.Add(-c.margin)) {
		return model.TemporalStale
	}
	return model.TemporalRelevant
}

// Deviation returns how many days the evidence ends before the claim window
// starts, or 0 when it does not
func Deviation(claim, evidence *model.TimeWindow) int {
	if claim == nil || evidence == nil || !claim.Resolved() || !evidence.Resolved() {
		return 0
	}
	if !evidence.End.Before(claim.Start) {
		return 0
	}
	return int(claim.Start.Sub(evidence.End) / day)
}
