// Package score folds per-claim results into a document verdict.
package score

import (
	"fmt"

	"github.com/ppiankov/credence/internal/model"
)

// Scorer aggregates per-claim verification results. It is a pure fold and
// never looks at evidence again.
type Scorer struct {
	strongMargin float64
}

// NewScorer creates a new scorer. strongMargin is the refute-over-support lead
// that makes a contradiction strong; non-positive values use the default.
func NewScorer(strongMargin float64) *Scorer {
	if strongMargin <= 0 {
		strongMargin = model.DefaultConfig().Tally.StrongMargin
	}
	return &Scorer{strongMargin: strongMargin}
}

// Calculate computes the overall verdict. In news mode title is the headline
// and results are its details; the headline is judged only from them.
func (s *Scorer) Calculate(mode model.Mode, title *model.Claim, results []model.VerificationResult) model.OverallVerdict {
	// 1. Count verdicts
	counts := CountVerdicts(results)

	overall := model.OverallVerdict{
		Mode:    mode,
		Counts:  counts,
		Summary: Summary(counts),
	}

	// 2. Judge by mode
	switch mode {
	case model.ModeNews:
		overall.Verdict = s.judgeNews(counts)
		overall.TitleVerdict = overall.Verdict
		if title != nil {
			overall.Title = title.Text
		}
	default:
		overall.Mode = model.ModeGeneral
		overall.Verdict = s.judgeGeneral(counts, s.strongContradiction(results))
	}

	return overall
}

// judgeNews: any contradicted detail makes the headline misleading
func (s *Scorer) judgeNews(c model.VerdictCounts) model.Level {
	total := c.Total()
	switch {
	case c.Contradicted > 0:
		return model.LevelMisleading
	case total == 0:
		return model.LevelUncertain
	case c.Insufficient*2 > total:
		return model.LevelUncertain
	default:
		return model.LevelCredible
	}
}

// judgeGeneral works on majorities; a strong contradiction blocks HIGH
func (s *Scorer) judgeGeneral(c model.VerdictCounts, strong bool) model.Level {
	total := c.Total()
	switch {
	case total == 0:
		return model.LevelUncertain
	case c.Contradicted*2 > total:
		return model.LevelLow
	case c.Supported*2 > total && !strong:
		return model.LevelHigh
	default:
		return model.LevelUncertain
	}
}

// strongContradiction reports whether any claim was contradicted by an
// authoritative override or by a clear refute lead
func (s *Scorer) strongContradiction(results []model.VerificationResult) bool {
	for _, r := range results {
		if r.Verdict != model.VerdictContradicted {
			continue
		}
		if r.Authoritative {
			return true
		}
		if float64(r.Breakdown.Refute-r.Breakdown.Support) >= s.strongMargin {
			return true
		}
	}
	return false
}

// CountVerdicts tallies per-claim verdicts
func CountVerdicts(results []model.VerificationResult) model.VerdictCounts {
	var c model.VerdictCounts
	for _, r := range results {
		switch r.Verdict {
		case model.VerdictSupported:
			c.Supported++
		case model.VerdictContradicted:
			c.Contradicted++
		default:
			c.Insufficient++
		}
	}
	return c
}

// Summary renders the verdict counts
func Summary(c model.VerdictCounts) string {
	return fmt.Sprintf("Supported: %d, Contradicted: %d, Insufficient evidence: %d",
		c.Supported, c.Contradicted, c.Insufficient)
}
