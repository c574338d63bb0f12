package evidence

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ppiankov/credence/internal/model"
)

func canonicals(matches []PlaceMatch) []string {
	var out []string
	for _, m := range matches {
		out = append(out, m.Place.Canonical)
	}
	return out
}

func TestGazetteer_Find(t *testing.T) {
	g := DefaultGazetteer()

	tests := []struct {
		text     string
		expected []string
	}{
		{"New Taipei City opens a new library", []string{"new taipei"}},
		{"Traffic between Taipei and New Taipei", []string{"taipei", "new taipei"}},
		{"臺北市政府宣布停車費調漲", []string{"taipei"}},
		{"新北市長出席活動", []string{"new taipei"}},
		{"Flooding hit New York and Tokyo", []string{"new york", "tokyo"}},
		{"A Parisian cafe", nil},
		{"東京都知事選舉", []string{"tokyo"}},
		{"Tokyo, Tokyo and TOKYO", []string{"tokyo"}},
		{"no places at all", nil},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := canonicals(g.Find(tt.text))
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("Find(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestGazetteer_FindPosition(t *testing.T) {
	g := NewGazetteer([]Place{{Canonical: "springfield", Region: "us"}})
	matches := g.Find("Welcome to Springfield")
	if len(matches) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(matches))
	}
	if matches[0].Pos != 11 {
		t.Errorf("Expected position 11, got %d", matches[0].Pos)
	}
	if matches[0].Text != "springfield" {
		t.Errorf("Expected folded text, got %q", matches[0].Text)
	}
}

func TestFold(t *testing.T) {
	if got := Fold("ＴＡＩＰＥＩ 臺北"); got != "taipei 台北" {
		t.Errorf("Expected %q, got %q", "taipei 台北", got)
	}
}

func TestPreFilter(t *testing.T) {
	tests := []struct {
		claim    string
		evidence model.EvidenceItem
		expected bool
		desc     string
	}{
		{
			claim:    "San Diego raised its minimum wage",
			evidence: model.EvidenceItem{Title: "Tokyo raises minimum wage"},
			expected: false,
			desc:     "different country",
		},
		{
			claim:    "San Diego raised its minimum wage",
			evidence: model.EvidenceItem{Title: "San Diego council votes on wage"},
			expected: true,
			desc:     "same place",
		},
		{
			claim:    "San Diego raised its minimum wage",
			evidence: model.EvidenceItem{Title: "California wage rules", Snippet: "Los Angeles followed"},
			expected: true,
			desc:     "same region",
		},
		{
			claim:    "Minimum wage rises next year",
			evidence: model.EvidenceItem{Title: "Tokyo raises minimum wage"},
			expected: true,
			desc:     "claim names no place",
		},
		{
			claim:    "台北市停車費調漲",
			evidence: model.EvidenceItem{Title: "停車費調整說明"},
			expected: true,
			desc:     "evidence names no place",
		},
		{
			claim:    "台北市停車費調漲",
			evidence: model.EvidenceItem{Title: "高雄市停車費調整"},
			expected: true,
			desc:     "same region in Chinese",
		},
		{
			claim:    "台北市停車費調漲",
			evidence: model.EvidenceItem{Title: "東京停車費調整"},
			expected: false,
			desc:     "foreign city in Chinese",
		},
		{
			claim:    "Earthquake in Tokyo",
			evidence: model.EvidenceItem{Title: "Quake report", Snippet: "Shaking felt in Osaka and Seoul"},
			expected: true,
			desc:     "any shared region passes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got := PreFilter(model.Claim{Text: tt.claim}, tt.evidence)
			if got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestPreFilterAll(t *testing.T) {
	claim := model.Claim{Text: "San Diego raised its minimum wage"}
	items := []model.AssessedEvidence{
		model.Assess(model.EvidenceItem{Title: "San Diego wage"}),
		model.Assess(model.EvidenceItem{Title: "Tokyo wage"}),
		model.Assess(model.EvidenceItem{Title: "Wage news"}),
	}

	out, rejected := DefaultGazetteer().PreFilterAll(claim, items)
	if rejected != 1 {
		t.Errorf("Expected 1 rejected, got %d", rejected)
	}
	expected := []bool{true, false, true}
	for i, a := range out {
		if a.PassesPreFilter != expected[i] {
			t.Errorf("Item %d: expected pass=%v, got %v", i, expected[i], a.PassesPreFilter)
		}
	}
	if !items[1].PassesPreFilter {
		t.Error("Expected input slice to be left unchanged")
	}
}
