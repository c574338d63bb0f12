package temporal

import (
	"strconv"
	"strings"
)

// Kind identifies the shape of a time expression
type Kind string

const (
	KindNone       Kind = "none"         // No time expression
	KindDayOffset  Kind = "day_offset"   // today (0), yesterday (1), day before yesterday (2)
	KindDayOfMonth Kind = "day_of_month" // "昨(31日)", "on the 31st": latest such day not after the anchor
	KindLastN      Kind = "last_n"       // last 3 months
	KindThis       Kind = "this"         // this week/month/year
	KindRecent     Kind = "recent"       // recently, lately
	KindLastWeek   Kind = "last_week"    // last week
	KindAgo        Kind = "ago"          // 3 months ago
	KindPrevious   Kind = "previous"     // last month, last year: the previous calendar unit
	KindDistant    Kind = "distant"      // years ago, long ago
	KindDate       Kind = "date"         // 2025-05-01
	KindRange      Kind = "range"        // 2025-05-01 to 2025-05-05
	KindMonth      Kind = "month"        // May 2025
	KindYear       Kind = "year"         // 2024
	KindMonthDay   Kind = "month_day"    // May 1 (year from the anchor)
)

// Unit is a calendar unit used by relative expressions
type Unit string

const (
	UnitDay   Unit = "day"
	UnitWeek  Unit = "week"
	UnitMonth Unit = "month"
	UnitYear  Unit = "year"
)

// Expression is a parsed, unresolved time expression.
// Turning it into dates is done locally by Resolve.
type Expression struct {
	Kind     Kind   `json:"kind"`
	Amount   int    `json:"amount,omitempty"`
	Unit     Unit   `json:"unit,omitempty"`
	Year     int    `json:"year,omitempty"`
	Month    int    `json:"month,omitempty"`
	Day      int    `json:"day,omitempty"`
	EndYear  int    `json:"end_year,omitempty"`
	EndMonth int    `json:"end_month,omitempty"`
	EndDay   int    `json:"end_day,omitempty"`
	Text     string `json:"-"` // Matched source text
}

// Relative reports whether resolving the expression needs an anchor date
func (e Expression) Relative() bool {
	switch e.Kind {
	case KindDate, KindRange, KindMonth, KindYear:
		return false
	default:
		return true
	}
}

func (e Expression) valid() bool {
	switch e.Kind {
	case KindDayOffset:
		return e.Amount >= 0
	case KindDayOfMonth:
		return e.Day >= 1 && e.Day <= 31
	case KindLastN, KindAgo:
		return e.Amount > 0 && e.Unit.valid()
	case KindThis:
		return e.Unit.valid()
	case KindPrevious:
		return e.Amount > 0 && (e.Unit == UnitMonth || e.Unit == UnitYear)
	case KindRecent, KindLastWeek, KindDistant:
		return true
	case KindDate:
		return validDate(e.Year, e.Month, e.Day)
	case KindRange:
		return validDate(e.Year, e.Month, e.Day) && validDate(e.EndYear, e.EndMonth, e.EndDay)
	case KindMonth:
		return e.Year > 0 && e.Month >= 1 && e.Month <= 12
	case KindYear:
		return e.Year > 0
	case KindMonthDay:
		return e.Month >= 1 && e.Month <= 12 && e.Day >= 1 && e.Day <= 31
	default:
		return false
	}
}

func (u Unit) valid() bool {
	switch u {
	case UnitDay, UnitWeek, UnitMonth, UnitYear:
		return true
	}
	return false
}

var englishNumbers = map[string]int{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
	"seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
	"a few": 3, "few": 3, "several": 3,
}

var chineseDigits = map[rune]int{
	'零': 0, '一': 1, '二': 2, '兩': 2, '两': 2, '三': 3, '四': 4,
	'五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
}

// parseNumber reads Arabic digits, English number words, or Chinese numerals
func parseNumber(s string) (int, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	if n, ok := englishNumbers[s]; ok {
		return n, true
	}
	return parseChineseNumber(s)
}

func parseChineseNumber(s string) (int, bool) {
	total, current := 0, 0
	for _, r := range s {
		switch r {
		case '十':
			if current == 0 {
				current = 1
			}
			total += current * 10
			current = 0
		case '百':
			if current == 0 {
				current = 1
			}
			total += current * 100
			current = 0
		default:
			d, ok := chineseDigits[r]
			if !ok {
				return 0, false
			}
			current = d
		}
	}
	return total + current, true
}

// parseUnit maps English and Chinese unit words to a Unit
func parseUnit(s string) (Unit, bool) {
	s = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s")
	switch s {
	case "day", "天", "日":
		return UnitDay, true
	case "week", "週", "周", "星期", "禮拜", "礼拜":
		return UnitWeek, true
	case "month", "月":
		return UnitMonth, true
	case "year", "年":
		return UnitYear, true
	}
	return "", false
}

var englishMonths = map[string]int{
	"january": 1, "jan": 1, "february": 2, "feb": 2, "march": 3, "mar": 3,
	"april": 4, "apr": 4, "may": 5, "june": 6, "jun": 6, "july": 7, "jul": 7,
	"august": 8, "aug": 8, "september": 9, "sept": 9, "sep": 9, "october": 10, "oct": 10,
	"november": 11, "nov": 11, "december": 12, "dec": 12,
}

func parseMonthName(s string) (int, bool) {
	m, ok := englishMonths[strings.TrimSuffix(strings.ToLower(s), ".")]
	return m, ok
}
