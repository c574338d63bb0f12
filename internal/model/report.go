package model

import (
	"fmt"
	"time"
)

// Verdict is the per-claim outcome of verification
type Verdict string

const (
	VerdictSupported    Verdict = "Supported"
	VerdictContradicted Verdict = "Contradicted"
	VerdictInsufficient Verdict = "Insufficient evidence"
)

// Breakdown counts classified evidence by stance.
// Every item that passed the pre-filter is counted exactly once.
type Breakdown struct {
	Support    int `json:"support"`
	Refute     int `json:"refute"`
	Irrelevant int `json:"irrelevant"`
}

// Total returns the number of counted items
func (b Breakdown) Total() int {
	return b.Support + b.Refute + b.Irrelevant
}

func (b Breakdown) String() string {
	return fmt.Sprintf("support %d, refute %d, irrelevant %d", b.Support, b.Refute, b.Irrelevant)
}

// VerificationResult is the outcome for one claim or detail.
// It is built once after every evidence item has been classified.
type VerificationResult struct {
	Verdict         Verdict            `json:"verdict"`
	Breakdown       Breakdown          `json:"evidence_breakdown"`
	Explanation     string             `json:"explanation"`
	TemporalWarning string             `json:"temporal_warning,omitempty"` // Set when stale evidence was seen
	Note            string             `json:"note,omitempty"`             // Reason a result was degraded
	Authoritative   bool               `json:"authoritative"`              // Verdict came from an authoritative override
	SearchQuery     string             `json:"search_query,omitempty"`
	ClaimWindow     *TimeWindow        `json:"claim_window,omitempty"`
	Evidence        []AssessedEvidence `json:"evidence,omitempty"`
	PreFiltered     int                `json:"prefiltered"` // Items rejected by the pre-filter
}

// Level is the document-wide credibility outcome
type Level string

const (
	LevelCredible   Level = "CREDIBLE"   // News: details hold up
	LevelMisleading Level = "MISLEADING" // News: a detail is contradicted
	LevelHigh       Level = "HIGH"       // General: majority supported
	LevelLow        Level = "LOW"        // General: majority contradicted
	LevelUncertain  Level = "UNCERTAIN"
)

// VerdictCounts tallies per-claim verdicts for the overall summary
type VerdictCounts struct {
	Supported    int `json:"supported"`
	Contradicted int `json:"contradicted"`
	Insufficient int `json:"insufficient"`
}

// Total returns the number of claims counted
func (c VerdictCounts) Total() int {
	return c.Supported + c.Contradicted + c.Insufficient
}

// OverallVerdict folds all per-claim results of a document
type OverallVerdict struct {
	Mode         Mode          `json:"mode"`
	Verdict      Level         `json:"verdict"`
	Summary      string        `json:"summary"`
	Counts       VerdictCounts `json:"counts"`
	Title        string        `json:"title,omitempty"`         // News mode only
	TitleVerdict Level         `json:"title_verdict,omitempty"` // News mode only, computed from details
}

// ClaimReport pairs a claim with its verification result
type ClaimReport struct {
	Claim  Claim              `json:"claim"`
	Result VerificationResult `json:"result"`
}

// Report is the complete output for one document
type Report struct {
	ID            string         `json:"id"`
	Mode          Mode           `json:"mode"`
	Language      Language       `json:"language"`
	SourceURL     string         `json:"source_url,omitempty"`
	ReferenceDate *time.Time     `json:"reference_date,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	Title         *Claim         `json:"title,omitempty"`
	Items         []ClaimReport  `json:"items"`
	Overall       OverallVerdict `json:"overall"`
}

// Results returns the verification results in claim order
func (r *Report) Results() []VerificationResult {
	results := make([]VerificationResult, len(r.Items))
	for i, item := range r.Items {
		results[i] = item.Result
	}
	return results
}
