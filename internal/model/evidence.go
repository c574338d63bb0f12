package model

import "time"

// EvidenceItem is one search result retrieved for a claim.
// Items are never mutated after retrieval; stage outputs are carried by AssessedEvidence.
type EvidenceItem struct {
	Title           string        `json:"title"`
	Snippet         string        `json:"snippet"`
	SourceURL       string        `json:"source_url"`
	IsAuthoritative bool          `json:"is_authoritative"`       // Returned by the Tier 1 (allow-listed) search
	PublishDate     *time.Time    `json:"publish_date,omitempty"` // Declared publish date, if the provider has one
	Authority       AuthorityTier `json:"authority"`              // Source authority classification
}

// Text returns the title and snippet joined for matching
func (e EvidenceItem) Text() string {
	if e.Title == "" {
		return e.Snippet
	}
	if e.Snippet == "" {
		return e.Title
	}
	return e.Title + "\n" + e.Snippet
}

// AuthorityTier represents the classification of source authority
type AuthorityTier int

const (
	TierUnknown   AuthorityTier = 0 // Not yet classified
	TierPrimary   AuthorityTier = 1 // Government and intergovernmental sources
	TierSecondary AuthorityTier = 2 // Wire services, major publishers
	TierTertiary  AuthorityTier = 3 // Everything else
)

func (t AuthorityTier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}

// Stance is the relation of one evidence item to a claim
type Stance string

const (
	StanceSupport    Stance = "support"
	StanceRefute     Stance = "refute"
	StanceIrrelevant Stance = "irrelevant"
)

// TemporalStatus tags evidence relative to the claim's time window
type TemporalStatus string

const (
	TemporalRelevant      TemporalStatus = "relevant"       // Evidence date inside or after the claim window
	TemporalStale         TemporalStatus = "stale"          // Evidence predates the claim window
	TemporalUndated       TemporalStatus = "undated"        // No usable date for the evidence
	TemporalNotApplicable TemporalStatus = "not-applicable" // Claim has no usable time window
)

// AssessedEvidence is an evidence item plus the tags attached by each stage.
// The With* methods return a copy; a value handed to the next stage is never changed.
type AssessedEvidence struct {
	Item            EvidenceItem   `json:"item"`
	PassesPreFilter bool           `json:"passes_prefilter"`
	TemporalStatus  TemporalStatus `json:"temporal_status,omitempty"`
	EvidenceWindow  *TimeWindow    `json:"evidence_window,omitempty"`
	Stance          Stance         `json:"stance,omitempty"`
	Rationale       string         `json:"rationale,omitempty"`
	StanceUncertain bool           `json:"stance_uncertain,omitempty"` // Classifier output was unusable
	Excluded        bool           `json:"excluded,omitempty"`         // Skipped by temporal policy, not classified
}

// Assess wraps a retrieved item before any stage has looked at it
func Assess(item EvidenceItem) AssessedEvidence {
	return AssessedEvidence{Item: item, PassesPreFilter: true}
}

// WithPreFilter returns a copy tagged with the pre-filter decision
func (a AssessedEvidence) WithPreFilter(pass bool) AssessedEvidence {
	a.PassesPreFilter = pass
	return a
}

// WithTemporal returns a copy tagged with the temporal status and the evidence's own window
func (a AssessedEvidence) WithTemporal(status TemporalStatus, window *TimeWindow) AssessedEvidence {
	a.TemporalStatus = status
	if window != nil {
		w := *window
		a.EvidenceWindow = &w
	} else {
		a.EvidenceWindow = nil
	}
	return a
}

// WithStance returns a copy tagged with the classifier's output
func (a AssessedEvidence) WithStance(stance Stance, rationale string, uncertain bool) AssessedEvidence {
	a.Stance = stance
	a.Rationale = rationale
	a.StanceUncertain = uncertain
	return a
}

// WithExcluded returns a copy that skipped classification and counts as irrelevant
func (a AssessedEvidence) WithExcluded(reason string) AssessedEvidence {
	a.Excluded = true
	a.Stance = StanceIrrelevant
	a.Rationale = reason
	return a
}
