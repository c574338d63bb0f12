package temporal

import (
	"errors"
	"testing"
	"time"

	"github.com/ppiankov/credence/internal/model"
)

func mustDate(s string) time.Time {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr(t time.Time) *time.Time { return &t }

func TestResolve(t *testing.T) {
	cfg := model.DefaultConfig().Temporal
	anchor := ptr(mustDate("2025-06-15")) // a Sunday

	tests := []struct {
		expr     Expression
		anchor   *time.Time
		start    string
		end      string
		category model.WindowCategory
		desc     string
	}{
		{Expression{Kind: KindAgo, Amount: 3, Unit: UnitMonth}, anchor, "2025-02-15", "2025-03-15", model.CategoryRelativePast, "3 months ago"},
		{Expression{Kind: KindAgo, Amount: 2, Unit: UnitMonth}, ptr(mustDate("2025-01-20")), "2024-10-20", "2024-11-20", model.CategoryRelativePast, "months ago across a year boundary"},
		{Expression{Kind: KindAgo, Amount: 1, Unit: UnitMonth}, ptr(mustDate("2025-03-31")), "2025-01-28", "2025-02-28", model.CategoryRelativePast, "month arithmetic clamps the day"},
		{Expression{Kind: KindLastN, Amount: 3, Unit: UnitMonth}, anchor, "2025-03-15", "2025-06-15", model.CategorySpecificRecent, "last 3 months"},
		{Expression{Kind: KindDayOffset, Amount: 1}, anchor, "2025-06-13", "2025-06-15", model.CategorySpecificRecent, "yesterday"},
		{Expression{Kind: KindDayOfMonth, Day: 31}, anchor, "2025-05-30", "2025-06-01", model.CategorySpecificRecent, "day of month in the previous month"},
		{Expression{Kind: KindThis, Unit: UnitWeek}, anchor, "2025-06-09", "2025-06-15", model.CategorySpecificRecent, "this week"},
		{Expression{Kind: KindThis, Unit: UnitMonth}, anchor, "2025-06-01", "2025-06-30", model.CategorySpecificRecent, "this month"},
		{Expression{Kind: KindRecent}, anchor, "2025-06-08", "2025-06-15", model.CategoryRelativeRecent, "recently"},
		{Expression{Kind: KindLastWeek}, anchor, "2025-06-01", "2025-06-08", model.CategoryRelativeRecent, "last week"},
		{Expression{Kind: KindPrevious, Amount: 1, Unit: UnitMonth}, anchor, "2025-05-01", "2025-05-31", model.CategoryRelativePast, "last month"},
		{Expression{Kind: KindPrevious, Amount: 1, Unit: UnitYear}, anchor, "2024-01-01", "2024-12-31", model.CategoryRelativePast, "last year"},
		{Expression{Kind: KindDistant}, anchor, "2015-06-15", "2024-06-15", model.CategoryRelativePast, "years ago"},
		{Expression{Kind: KindMonthDay, Month: 12, Day: 25}, anchor, "2024-12-25", "2024-12-25", model.CategoryAbsolute, "month and day after the anchor takes the previous year"},
		{Expression{Kind: KindMonthDay, Month: 5, Day: 1}, anchor, "2025-05-01", "2025-05-01", model.CategoryAbsolute, "month and day before the anchor"},
		{Expression{Kind: KindDate, Year: 2025, Month: 5, Day: 1}, nil, "2025-05-01", "2025-05-01", model.CategoryAbsolute, "absolute date needs no anchor"},
		{Expression{Kind: KindMonth, Year: 2024, Month: 2}, nil, "2024-02-01", "2024-02-29", model.CategoryAbsolute, "leap month"},
		{Expression{Kind: KindYear, Year: 2023}, nil, "2023-01-01", "2023-12-31", model.CategoryAbsolute, "year"},
		{Expression{Kind: KindRange, Year: 2025, Month: 5, Day: 5, EndYear: 2025, EndMonth: 5, EndDay: 1}, nil, "2025-05-01", "2025-05-05", model.CategoryAbsolute, "reversed range is ordered"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			w, err := Resolve(tt.expr, tt.anchor, cfg)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got := w.Start.Format(model.DateLayout); got != tt.start {
				t.Errorf("Expected start %s, got %s", tt.start, got)
			}
			if got := w.End.Format(model.DateLayout); got != tt.end {
				t.Errorf("Expected end %s, got %s", tt.end, got)
			}
			if w.Category != tt.category {
				t.Errorf("Expected category %s, got %s", tt.category, w.Category)
			}
		})
	}
}

func TestResolve_RelativeWithoutAnchor(t *testing.T) {
	w, err := Resolve(Expression{Kind: KindAgo, Amount: 3, Unit: UnitMonth, Text: "3 months ago"}, nil, model.DefaultConfig().Temporal)

	var rerr *ResolutionError
	if !errors.As(err, &rerr) {
		t.Fatalf("Expected ResolutionError, got %v", err)
	}
	if w.Resolved() {
		t.Errorf("Expected unresolved window, got %s", w)
	}
	if w.Expression != "3 months ago" {
		t.Errorf("Expected expression to be kept, got %q", w.Expression)
	}
}

func TestResolve_InvalidDate(t *testing.T) {
	_, err := Resolve(Expression{Kind: KindDate, Year: 2025, Month: 2, Day: 30}, nil, model.DefaultConfig().Temporal)
	if err == nil {
		t.Error("Expected error for February 30")
	}
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		from     string
		n        int
		expected string
	}{
		{"2025-01-31", 1, "2025-02-28"},
		{"2024-01-31", 1, "2024-02-29"},
		{"2025-01-15", -1, "2024-12-15"},
		{"2025-03-15", -15, "2023-12-15"},
		{"2025-12-01", 1, "2026-01-01"},
	}

	for _, tt := range tests {
		got := addMonths(mustDate(tt.from), tt.n).Format(model.DateLayout)
		if got != tt.expected {
			t.Errorf("Expected %s for %s%+d months, got %s", tt.expected, tt.from, tt.n, got)
		}
	}
}
