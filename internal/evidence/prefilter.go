package evidence

import (
	"github.com/ppiankov/credence/internal/model"
)

var defaultGazetteer = DefaultGazetteer()

// PreFilter reports whether item may be relevant to claim, using the default gazetteer
func PreFilter(claim model.Claim, item model.EvidenceItem) bool {
	return defaultGazetteer.Passes(claim, item)
}

// Passes rejects evidence about a clearly different place. It rejects only when
// the claim names a place, the evidence names a place, and none of the evidence's
// places is the same place or in the same region as a claim place.
// Anything ambiguous passes.
func (g *Gazetteer) Passes(claim model.Claim, item model.EvidenceItem) bool {
	claimPlaces := g.Find(claim.Text)
	if len(claimPlaces) == 0 {
		return true
	}

	evidencePlaces := g.Find(item.Text())
	if len(evidencePlaces) == 0 {
		return true
	}

	canonical := make(map[string]bool, len(claimPlaces))
	regions := make(map[string]bool, len(claimPlaces))
	for _, m := range claimPlaces {
		canonical[m.Place.Canonical] = true
		regions[m.Place.Region] = true
	}

	for _, m := range evidencePlaces {
		if canonical[m.Place.Canonical] || regions[m.Place.Region] {
			return true
		}
	}
	return false
}

// PreFilterAll tags each item with the pre-filter outcome and returns the
// number rejected
func (g *Gazetteer) PreFilterAll(claim model.Claim, items []model.AssessedEvidence) ([]model.AssessedEvidence, int) {
	out := make([]model.AssessedEvidence, len(items))
	rejected := 0
	for i, a := range items {
		pass := g.Passes(claim, a.Item)
		if !pass {
			rejected++
		}
		out[i] = a.WithPreFilter(pass)
	}
	return out, rejected
}
