package temporal

import (
	"time"

	"github.com/ppiankov/credence/internal/model"
)

const day = 24 * time.Hour

// Resolve turns an expression into a concrete window. Relative expressions
// are anchored at anchor; without one they come back unresolved.
// All arithmetic is on civil dates in UTC.
func Resolve(e Expression, anchor *time.Time, cfg model.TemporalConfig) (model.TimeWindow, error) {
	if e.Kind == KindNone || !e.valid() {
		return model.Unresolved(e.Text), &ResolutionError{Expression: e.Text, Reason: "not a valid time expression"}
	}
	if e.Relative() && anchor == nil {
		return model.Unresolved(e.Text), &ResolutionError{Expression: e.Text, Reason: "relative expression without a reference date"}
	}

	var a time.Time
	if anchor != nil {
		a = civil(*anchor)
	}

	w := model.TimeWindow{Expression: e.Text}
	switch e.Kind {
	case KindDayOffset:
		d := a.AddDate(0, 0, -e.Amount)
		w.Start, w.End, w.Category = d.Add(-day), d.Add(day), model.CategorySpecificRecent

	case KindDayOfMonth:
		d, ok := latestDayOfMonth(a, e.Day)
		if !ok {
			return model.Unresolved(e.Text), &ResolutionError{Expression: e.Text, Reason: "no such day in the last year"}
		}
		w.Start, w.End, w.Category = d.Add(-day), d.Add(day), model.CategorySpecificRecent

	case KindLastN:
		w.Start, w.End, w.Category = addUnits(a, e.Unit, -e.Amount), a, model.CategorySpecificRecent

	case KindThis:
		w.Start, w.End = calendarUnit(a, e.Unit)
		w.Category = model.CategorySpecificRecent

	case KindRecent:
		days := cfg.RecentDays
		if days <= 0 {
			days = 7
		}
		w.Start, w.End, w.Category = a.AddDate(0, 0, -days), a, model.CategoryRelativeRecent

	case KindLastWeek:
		w.Start, w.End, w.Category = a.AddDate(0, 0, -14), a.AddDate(0, 0, -7), model.CategoryRelativeRecent

	case KindAgo:
		t := addUnits(a, e.Unit, -e.Amount)
		w.Start, w.End, w.Category = addUnits(t, e.Unit, -1), t, model.CategoryRelativePast

	case KindPrevious:
		w.Start, w.End = calendarUnit(addUnits(a, e.Unit, -e.Amount), e.Unit)
		w.Category = model.CategoryRelativePast

	case KindDistant:
		years := cfg.DistantYears
		if years <= 0 {
			years = 10
		}
		w.Start, w.End, w.Category = a.AddDate(-years, 0, 0), a.AddDate(-1, 0, 0), model.CategoryRelativePast

	case KindDate:
		d := date(e.Year, e.Month, e.Day)
		w.Start, w.End, w.Category = d, d, model.CategoryAbsolute

	case KindRange:
		s, t := date(e.Year, e.Month, e.Day), date(e.EndYear, e.EndMonth, e.EndDay)
		if t.Before(s) {
			s, t = t, s
		}
		w.Start, w.End, w.Category = s, t, model.CategoryAbsolute

	case KindMonth:
		w.Start, w.End = calendarUnit(date(e.Year, e.Month, 1), UnitMonth)
		w.Category = model.CategoryAbsolute

	case KindYear:
		w.Start, w.End = calendarUnit(date(e.Year, 1, 1), UnitYear)
		w.Category = model.CategoryAbsolute

	case KindMonthDay:
		y := a.Year()
		if !validDate(y, e.Month, e.Day) || date(y, e.Month, e.Day).After(a) {
			y--
		}
		if !validDate(y, e.Month, e.Day) {
			return model.Unresolved(e.Text), &ResolutionError{Expression: e.Text, Reason: "no such calendar date"}
		}
		d := date(y, e.Month, e.Day)
		w.Start, w.End, w.Category = d, d, model.CategoryAbsolute
	}

	return w, nil
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

// validDate reports whether y-m-d names a real calendar day
func validDate(y, m, d int) bool {
	if y <= 0 || m < 1 || m > 12 || d < 1 {
		return false
	}
	t := date(y, m, d)
	return t.Year() == y && int(t.Month()) == m && t.Day() == d
}

func daysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// addMonths shifts t by n months, clamping the day to the target month's length.
// time.AddDate normalizes instead (Mar 31 - 1 month = Mar 3), which is not what
// "a month ago" means.
func addMonths(t time.Time, n int) time.Time {
	total := t.Year()*12 + int(t.Month()) - 1 + n
	y := floorDiv(total, 12)
	m := time.Month(total - y*12 + 1)
	d := t.Day()
	if last := daysIn(y, m); d > last {
		d = last
	}
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func addUnits(t time.Time, u Unit, n int) time.Time {
	switch u {
	case UnitDay:
		return t.AddDate(0, 0, n)
	case UnitWeek:
		return t.AddDate(0, 0, 7*n)
	case UnitMonth:
		return addMonths(t, n)
	case UnitYear:
		return addMonths(t, 12*n)
	}
	return t
}

// calendarUnit returns the first and last day of the week (Monday based),
// month or year containing t
func calendarUnit(t time.Time, u Unit) (time.Time, time.Time) {
	switch u {
	case UnitDay:
		return t, t
	case UnitWeek:
		offset := (int(t.Weekday()) + 6) % 7
		start := t.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 6)
	case UnitMonth:
		start := date(t.Year(), int(t.Month()), 1)
		return start, date(t.Year(), int(t.Month()), daysIn(t.Year(), t.Month()))
	default:
		return date(t.Year(), 1, 1), date(t.Year(), 12, 31)
	}
}

// latestDayOfMonth finds the most recent date not after a whose day of month is d
func latestDayOfMonth(a time.Time, d int) (time.Time, bool) {
	for i := 0; i <= 12; i++ {
		m := addMonths(date(a.Year(), int(a.Month()), 1), -i)
		if !validDate(m.Year(), int(m.Month()), d) {
			continue
		}
		t := date(m.Year(), int(m.Month()), d)
		if !t.After(a) {
			return t, true
		}
	}
	return time.Time{}, false
}
