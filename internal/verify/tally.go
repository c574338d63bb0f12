package verify

import (
	"github.com/ppiankov/credence/internal/model"
)

// Votes holds the weighted support and refute counts for one claim
type Votes struct {
	Support float64
	Refute  float64
}

// Count builds the breakdown over items that passed the pre-filter. Every such
// item is counted exactly once; excluded and unclassified items count as irrelevant.
func Count(items []model.AssessedEvidence) model.Breakdown {
	var b model.Breakdown
	for _, a := range items {
		if !a.PassesPreFilter {
			continue
		}
		switch a.Stance {
		case model.StanceSupport:
			b.Support++
		case model.StanceRefute:
			b.Refute++
		default:
			b.Irrelevant++
		}
	}
	return b
}

// Weight returns the tally weight of one item under the temporal policy
func Weight(a model.AssessedEvidence, cfg model.TemporalConfig) float64 {
	if !a.PassesPreFilter || a.Excluded {
		return 0
	}
	switch a.TemporalStatus {
	case model.TemporalStale:
		if cfg.StalePolicy == model.StalePolicyExclude {
			return 0
		}
		return cfg.StaleWeight
	case model.TemporalUndated:
		return cfg.UndatedWeight
	default:
		return 1
	}
}

// Weigh sums the weighted support and refute votes
func Weigh(items []model.AssessedEvidence, cfg model.TemporalConfig) Votes {
	var v Votes
	for _, a := range items {
		w := Weight(a, cfg)
		switch a.Stance {
		case model.StanceSupport:
			v.Support += w
		case model.StanceRefute:
			v.Refute += w
		}
	}
	return v
}

// Decide turns votes into a verdict. A side wins only with a lead of at least
// Margin and at least MinVotes votes of its own; ties and no evidence are
// Insufficient.
func Decide(v Votes, cfg model.TallyConfig) model.Verdict {
	switch {
	case v.Support-v.Refute >= cfg.Margin && v.Support >= cfg.MinVotes:
		return model.VerdictSupported
	case v.Refute-v.Support >= cfg.Margin && v.Refute >= cfg.MinVotes:
		return model.VerdictContradicted
	default:
		return model.VerdictInsufficient
	}
}

// normalizeTally replaces non-positive thresholds with the defaults so that
// zero evidence can never win
func normalizeTally(cfg model.TallyConfig) model.TallyConfig {
	def := model.DefaultConfig().Tally
	if cfg.Margin <= 0 {
		cfg.Margin = def.Margin
	}
	if cfg.MinVotes <= 0 {
		cfg.MinVotes = def.MinVotes
	}
	if cfg.StrongMargin <= 0 {
		cfg.StrongMargin = def.StrongMargin
	}
	return cfg
}

// override decides an authoritative-override verdict by simple majority
func override(b model.Breakdown) model.Verdict {
	switch {
	case b.Support > b.Refute:
		return model.VerdictSupported
	case b.Refute > b.Support:
		return model.VerdictContradicted
	default:
		return model.VerdictInsufficient
	}
}
