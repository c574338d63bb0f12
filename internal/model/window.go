package model

import (
	"fmt"
	"time"
)

// WindowCategory classifies how a time window was derived
type WindowCategory string

const (
	CategorySpecificRecent WindowCategory = "specific_recent" // "last 3 months", "this month", "yesterday"
	CategoryRelativeRecent WindowCategory = "relative_recent" // "recently", "last week"
	CategoryRelativePast   WindowCategory = "relative_past"   // "3 months ago", "last year", "years ago"
	CategoryAbsolute       WindowCategory = "absolute"        // "2025-05-01", "May 2025"
	CategoryUnresolved     WindowCategory = "unresolved"      // No usable bounds
)

// DateLayout is the civil-date layout used in reports and prompts
const DateLayout = "2006-01-02"

// TimeWindow is a closed range of civil dates. Start <= End always holds
// for resolved windows; unresolved windows carry zero bounds.
type TimeWindow struct {
	Start      time.Time      `json:"start"`
	End        time.Time      `json:"end"`
	Category   WindowCategory `json:"category"`
	Expression string         `json:"expression,omitempty"` // Source text the window was derived from
}

// Unresolved returns a window with no usable bounds
func Unresolved(expr string) TimeWindow {
	return TimeWindow{Category: CategoryUnresolved, Expression: expr}
}

// Resolved reports whether the window has usable bounds
func (w TimeWindow) Resolved() bool {
	return w.Category != CategoryUnresolved && w.Category != ""
}

// Contains reports whether t falls inside the window (inclusive)
func (w TimeWindow) Contains(t time.Time) bool {
	if !w.Resolved() {
		return false
	}
	return !t.Before(w.Start) && !t.After(w.End)
}

func (w TimeWindow) String() string {
	if !w.Resolved() {
		return "unresolved"
	}
	return fmt.Sprintf("%s..%s (%s)", w.Start.Format(DateLayout), w.End.Format(DateLayout), w.Category)
}
