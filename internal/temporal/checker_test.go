package temporal

import (
	"testing"
	"time"

	"github.com/ppiankov/credence/internal/model"
)

func window(start, end string) *model.TimeWindow {
	return &model.TimeWindow{Start: mustDate(start), End: mustDate(end), Category: model.CategoryAbsolute}
}

func TestChecker_Check(t *testing.T) {
	claim := &model.TimeWindow{
		Start:    mustDate("2025-01-01"),
		End:      mustDate("2025-03-01"),
		Category: model.CategorySpecificRecent,
	}
	unresolved := model.Unresolved("someday")

	tests := []struct {
		margin   time.Duration
		claim    *model.TimeWindow
		evidence *model.TimeWindow
		expected model.TemporalStatus
		desc     string
	}{
		{0, claim, window("2024-06-01", "2024-06-01"), model.TemporalStale, "evidence before the window is stale"},
		{0, claim, window("2025-02-01", "2025-02-01"), model.TemporalRelevant, "evidence inside the window"},
		{0, claim, window("2025-05-01", "2025-05-01"), model.TemporalRelevant, "evidence after the window"},
		{0, claim, window("2024-12-01", "2025-01-01"), model.TemporalRelevant, "evidence ending on the window start"},
		{30 * 24 * time.Hour, claim, window("2024-12-15", "2024-12-15"), model.TemporalRelevant, "margin tolerates near misses"},
		{0, claim, nil, model.TemporalUndated, "missing evidence window"},
		{0, claim, &unresolved, model.TemporalUndated, "unresolved evidence window"},
		{0, nil, window("2024-06-01", "2024-06-01"), model.TemporalNotApplicable, "claim without window"},
		{0, &unresolved, window("2024-06-01", "2024-06-01"), model.TemporalNotApplicable, "unresolved claim window"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got := NewChecker(tt.margin).Check(tt.claim, tt.evidence)
			if got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestDeviation(t *testing.T) {
	claim := window("2025-01-01", "2025-03-01")

	if got := Deviation(claim, window("2024-12-22", "2024-12-22")); got != 10 {
		t.Errorf("Expected 10 days, got %d", got)
	}
	if got := Deviation(claim, window("2025-02-01", "2025-02-01")); got != 0 {
		t.Errorf("Expected 0 days for evidence inside the window, got %d", got)
	}
	if got := Deviation(nil, window("2024-12-22", "2024-12-22")); got != 0 {
		t.Errorf("Expected 0 days without a claim window, got %d", got)
	}
}
