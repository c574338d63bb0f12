package temporal

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/ppiankov/credence/internal/model"
	"golang.org/x/text/unicode/norm"
)

const (
	enMonth  = `(january|february|march|april|may|june|july|august|september|october|november|december|sept|jan|feb|mar|apr|jun|jul|aug|sep|oct|nov|dec)\.?`
	enNum    = `(\d{1,3}|a few|few|several|an?|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve)`
	enUnit   = `(day|week|month|year)s?`
	zhNum    = `(\d{1,3}|[零一二兩两三四五六七八九十百]+)`
	zhUnit   = `(?:個|个)?(天|日|週|周|星期|禮拜|礼拜|月|年)`
	rangeSep = `\s*(?:to|through|until|till|-|–|—|~|～|至|到)\s*`
	zhYear   = `(民國\s*)?(\d{2,4})\s*年`
)

// rule is one regular expression with a builder for its submatches
type rule struct {
	name     string
	re       *regexp.Regexp
	group    int // submatch whose start is the match position
	build    func(m []string) (Expression, bool)
	reject   func(s string, start, end int) bool // surrounding text that disqualifies a match
	fallback bool                                // tried only when no other rule matches
}

func (r rule) match(s string, loc []int) (Expression, bool) {
	if r.reject != nil && r.reject(s, loc[2*r.group], loc[1]) {
		return Expression{}, false
	}
	e, ok := r.build(submatches(s, loc))
	return e, ok && e.valid()
}

// RuleParser finds time expressions with regular expressions in English and Chinese.
// When several rules match, the earliest match in the text wins; ties go to the
// rule listed first. Bare day numbers ("15日", "on the 3rd") are only read
// when nothing else matches.
type RuleParser struct {
	rules []rule
}

// NewRuleParser creates a parser with the built-in rule table
func NewRuleParser() *RuleParser {
	return &RuleParser{rules: defaultRules()}
}

// Name returns the strategy name
func (p *RuleParser) Name() string { return "rules" }

// Parse returns the first time expression found in text
func (p *RuleParser) Parse(ctx context.Context, text string, lang model.Language) (Expression, bool, error) {
	e, ok := p.Find(text)
	return e, ok, nil
}

// Find returns the earliest time expression in text
func (p *RuleParser) Find(text string) (Expression, bool) {
	return p.find(text)
}

// Strip removes every matched time expression from text. The result is folded
// (NFKC, lower case).
func (p *RuleParser) Strip(text string) string {
	folded := strings.ToLower(norm.NFKC.String(text))
	for _, r := range p.rules {
		var b strings.Builder
		last := 0
		for _, loc := range r.re.FindAllStringSubmatchIndex(folded, -1) {
			if _, ok := r.match(folded, loc); !ok {
				continue
			}
			b.WriteString(folded[last:loc[2*r.group]])
			b.WriteByte(' ')
			last = loc[1]
		}
		b.WriteString(folded[last:])
		folded = b.String()
	}
	return strings.Join(strings.Fields(folded), " ")
}

func (p *RuleParser) find(text string) (Expression, bool) {
	folded := strings.ToLower(norm.NFKC.String(text))
	if e, ok := p.earliest(folded, false); ok {
		return e, true
	}
	return p.earliest(folded, true)
}

func (p *RuleParser) earliest(s string, fallback bool) (Expression, bool) {
	best := Expression{}
	bestPos := -1
	for _, r := range p.rules {
		if r.fallback != fallback {
			continue
		}
		for _, loc := range r.re.FindAllStringSubmatchIndex(s, -1) {
			pos := loc[2*r.group]
			if bestPos >= 0 && pos >= bestPos {
				break
			}
			e, ok := r.match(s, loc)
			if !ok {
				continue
			}
			e.Text = strings.TrimSpace(s[pos:loc[1]])
			best, bestPos = e, pos
			break
		}
	}
	return best, bestPos >= 0
}

func submatches(s string, loc []int) []string {
	m := make([]string, len(loc)/2)
	for i := range m {
		if loc[2*i] >= 0 {
			m[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}
	return m
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

// Bare two and three digit years ("113年") are read as Minguo years from
// this one up to the current year
const minBareROCYear = 60

var currentROCYear = func() int { return time.Now().Year() - 1911 }

// year reads a Gregorian year, or a Minguo (ROC) year when the prefix is
// present or the year has fewer than four digits
func year(rocPrefix, digits string) (int, bool) {
	y := atoi(digits)
	switch {
	case strings.TrimSpace(rocPrefix) != "":
		return y + 1911, y > 0
	case len(digits) == 4:
		return y, true
	default:
		return y + 1911, y >= minBareROCYear && y <= currentROCYear()
	}
}

// surroundedBy rejects a match preceded by one of prefixes or followed by one
// of suffixes. Latin suffixes must end at a word boundary.
func surroundedBy(prefixes, suffixes []string) func(s string, start, end int) bool {
	return func(s string, start, end int) bool {
		before := strings.TrimRight(s[:start], " ")
		for _, p := range prefixes {
			if strings.HasSuffix(before, p) {
				return true
			}
		}
		after := strings.TrimLeft(s[end:], " ")
		for _, x := range suffixes {
			if !strings.HasPrefix(after, x) {
				continue
			}
			rest := after[len(x):]
			if rest == "" || !isASCIIWord(x) || !startsWithLetter(rest) {
				return true
			}
		}
		return false
	}
}

func isASCIIWord(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func startsWithLetter(s string) bool {
	for _, r := range s {
		return unicode.IsLetter(r)
	}
	return false
}

var (
	// Numbers that label things rather than days: 第5號颱風, 1號線, 5號出口
	zhNumberedPrefixes = []string{"第", "國道", "国道", "省道", "編", "编"}
	zhNumberedSuffixes = []string{
		"線", "线", "颱風", "颱", "台風", "台风", "公報", "公报", "出口", "門", "门",
		"樓", "楼", "房", "車", "车", "碼頭", "码头", "館", "馆", "店", "站", "機", "机",
		"艙", "舱", "球衣", "隊", "队", "床", "遊", "游", "內", "内", "令", "函",
	}
	enNumberedSuffixes = []string{
		"floor", "place", "time", "anniversary", "round", "lap", "inning", "hole",
		"century", "edition", "amendment", "grade", "term", "season", "attempt", "try",
		"straight", "consecutive", "largest", "biggest", "annual", "street", "avenue",
		"level", "quarter", "minute", "hour", "day", "week", "month", "year", "birthday",
	}
	// Years followed by these are durations or decades: 30年前, 80年代, 10年來
	zhYearSuffixes = []string{
		"前", "以前", "之前", "來", "来", "間", "间", "內", "内", "後", "后", "多",
		"左右", "半", "代", "級", "级", "次", "資", "资", "期",
	}
)

func dayOffset(n int) func([]string) (Expression, bool) {
	return func([]string) (Expression, bool) {
		return Expression{Kind: KindDayOffset, Amount: n}, true
	}
}

func fixed(kind Kind) func([]string) (Expression, bool) {
	return func([]string) (Expression, bool) {
		return Expression{Kind: kind}, true
	}
}

func numUnit(kind Kind) func([]string) (Expression, bool) {
	return func(m []string) (Expression, bool) {
		n, ok := parseNumber(m[1])
		if !ok {
			return Expression{}, false
		}
		u, ok := parseUnit(m[2])
		if !ok {
			return Expression{}, false
		}
		return Expression{Kind: kind, Amount: n, Unit: u}, true
	}
}

func unitOnly(kind Kind, unit Unit, amount int) func([]string) (Expression, bool) {
	return func([]string) (Expression, bool) {
		return Expression{Kind: kind, Unit: unit, Amount: amount}, true
	}
}

func defaultRules() []rule {
	mk := func(name, pattern string, build func([]string) (Expression, bool)) rule {
		return rule{name: name, re: regexp.MustCompile(pattern), build: build}
	}

	return []rule{
		// Absolute ranges and dates
		mk("iso_range", `\b(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})`+rangeSep+`(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})\b`, func(m []string) (Expression, bool) {
			return Expression{Kind: KindRange, Year: atoi(m[1]), Month: atoi(m[2]), Day: atoi(m[3]),
				EndYear: atoi(m[4]), EndMonth: atoi(m[5]), EndDay: atoi(m[6])}, true
		}),
		mk("zh_range", zhYear+`\s*(\d{1,2})\s*月\s*(\d{1,2})\s*[日號号]?`+rangeSep+`(?:(\d{1,2})\s*月\s*)?(\d{1,2})\s*[日號号]`, func(m []string) (Expression, bool) {
			y, ok := year(m[1], m[2])
			endMonth := atoi(m[3])
			if m[5] != "" {
				endMonth = atoi(m[5])
			}
			return Expression{Kind: KindRange, Year: y, Month: atoi(m[3]), Day: atoi(m[4]),
				EndYear: y, EndMonth: endMonth, EndDay: atoi(m[6])}, ok
		}),
		mk("iso_date", `\b(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})\b`, func(m []string) (Expression, bool) {
			return Expression{Kind: KindDate, Year: atoi(m[1]), Month: atoi(m[2]), Day: atoi(m[3])}, true
		}),
		mk("zh_date", zhYear+`\s*(\d{1,2})\s*月\s*(\d{1,2})\s*[日號号]`, func(m []string) (Expression, bool) {
			y, ok := year(m[1], m[2])
			return Expression{Kind: KindDate, Year: y, Month: atoi(m[3]), Day: atoi(m[4])}, ok
		}),
		mk("en_month_day_year", `\b`+enMonth+`\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`, func(m []string) (Expression, bool) {
			mon, ok := parseMonthName(m[1])
			return Expression{Kind: KindDate, Year: atoi(m[3]), Month: mon, Day: atoi(m[2])}, ok
		}),
		mk("en_day_month_year", `\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?`+enMonth+`,?\s+(\d{4})\b`, func(m []string) (Expression, bool) {
			mon, ok := parseMonthName(m[2])
			return Expression{Kind: KindDate, Year: atoi(m[3]), Month: mon, Day: atoi(m[1])}, ok
		}),
		mk("zh_month", zhYear+`\s*(\d{1,2})\s*月`, func(m []string) (Expression, bool) {
			y, ok := year(m[1], m[2])
			return Expression{Kind: KindMonth, Year: y, Month: atoi(m[3])}, ok
		}),
		mk("en_month_year", `\b`+enMonth+`,?\s+(?:of\s+)?(\d{4})\b`, func(m []string) (Expression, bool) {
			mon, ok := parseMonthName(m[1])
			return Expression{Kind: KindMonth, Year: atoi(m[2]), Month: mon}, ok
		}),
		mk("iso_month", `\b(\d{4})[-/](\d{1,2})\b`, func(m []string) (Expression, bool) {
			return Expression{Kind: KindMonth, Year: atoi(m[1]), Month: atoi(m[2])}, true
		}),
		mk("zh_month_day", `(\d{1,2})\s*月\s*(\d{1,2})\s*[日號号]`, func(m []string) (Expression, bool) {
			return Expression{Kind: KindMonthDay, Month: atoi(m[1]), Day: atoi(m[2])}, true
		}),
		mk("en_month_day", `\b`+enMonth+`\s+(\d{1,2})(?:st|nd|rd|th)?\b`, func(m []string) (Expression, bool) {
			mon, ok := parseMonthName(m[1])
			return Expression{Kind: KindMonthDay, Month: mon, Day: atoi(m[2])}, ok
		}),
		{
			name: "zh_year",
			re:   regexp.MustCompile(zhYear + `(?:度)?`),
			build: func(m []string) (Expression, bool) {
				y, ok := year(m[1], m[2])
				return Expression{Kind: KindYear, Year: y}, ok
			},
			reject: surroundedBy([]string{"第"}, zhYearSuffixes),
		},
		mk("en_year", `\b(?:in|since|during|of|early|late|mid)[\s-]+((?:19|20)\d{2})\b`, func(m []string) (Expression, bool) {
			return Expression{Kind: KindYear, Year: atoi(m[1])}, true
		}),

		// Durations and relative references
		mk("en_last_n", `\b(?:(?:in|over|during|within)\s+)?(?:the\s+)?(?:last|past)\s+`+enNum+`\s+`+enUnit+`\b`, numUnit(KindLastN)),
		mk("zh_last_n", `(?:過去|过去|最近|近)\s*`+zhNum+`\s*`+zhUnit, numUnit(KindLastN)),
		mk("en_distant", `\b(?:(?:many|several)\s+)?(?:years|decades)\s+ago\b|\blong\s+ago\b`, fixed(KindDistant)),
		mk("zh_distant", `多年前|幾年前|几年前|數年前|数年前|數十年前|数十年前|很久以前`, fixed(KindDistant)),
		mk("en_ago", `\b`+enNum+`\s+`+enUnit+`\s+ago\b`, numUnit(KindAgo)),
		mk("zh_ago", zhNum+`\s*`+zhUnit+`\s*(?:之前|以前|前)`, numUnit(KindAgo)),
		mk("en_last_week", `\b(?:last|previous)\s+week\b`, fixed(KindLastWeek)),
		mk("zh_last_week", `上(?:個|个)?(?:週|周|星期|禮拜|礼拜)`, fixed(KindLastWeek)),
		mk("en_previous", `\b(?:last|previous)\s+(month|year)\b`, func(m []string) (Expression, bool) {
			u, ok := parseUnit(m[1])
			return Expression{Kind: KindPrevious, Unit: u, Amount: 1}, ok
		}),
		mk("zh_last_month", `上(?:個|个)?月`, unitOnly(KindPrevious, UnitMonth, 1)),
		mk("zh_last_year", `去年`, unitOnly(KindPrevious, UnitYear, 1)),
		mk("zh_year_before_last", `前年`, unitOnly(KindPrevious, UnitYear, 2)),
		mk("en_this", `\bthis\s+(week|month|year)\b`, func(m []string) (Expression, bool) {
			u, ok := parseUnit(m[1])
			return Expression{Kind: KindThis, Unit: u}, ok
		}),
		mk("zh_this_week", `本週|本周|這週|这周|這星期|这星期|本星期`, unitOnly(KindThis, UnitWeek, 0)),
		mk("zh_this_month", `本月|這個月|这个月|當月|当月`, unitOnly(KindThis, UnitMonth, 0)),
		mk("zh_this_year", `今年|本年`, unitOnly(KindThis, UnitYear, 0)),
		mk("en_day_before_yesterday", `\bthe\s+day\s+before\s+yesterday\b`, dayOffset(2)),
		mk("en_yesterday", `\byesterday\b`, dayOffset(1)),
		mk("en_today", `\b(?:today|tonight|this\s+(?:morning|afternoon|evening))\b`, dayOffset(0)),
		mk("zh_day_of_month_yesterday", `昨\s*[（(]?\s*(\d{1,2})\s*[)）]?\s*日`, func(m []string) (Expression, bool) {
			return Expression{Kind: KindDayOfMonth, Day: atoi(m[1])}, true
		}),
		mk("zh_yesterday", `昨天|昨日|昨晚|昨晨|昨夜`, dayOffset(1)),
		mk("zh_day_before_yesterday", `前天|前日`, dayOffset(2)),
		mk("zh_today", `今天|今日|今晨|今早|今晚`, dayOffset(0)),
		mk("en_recent", `\b(?:recently|lately|these\s+days|of\s+late|in\s+recent\s+(?:days|weeks))\b`, fixed(KindRecent)),
		mk("zh_recent", `最近|近日|近期|日前|近來|近来|這幾天|这几天|這陣子|这阵子`, fixed(KindRecent)),
		{
			name: "en_day_of_month",
			re:   regexp.MustCompile(`\bon\s+the\s+(\d{1,2})(?:st|nd|rd|th)\b`),
			build: func(m []string) (Expression, bool) {
				return Expression{Kind: KindDayOfMonth, Day: atoi(m[1])}, true
			},
			reject:   surroundedBy(nil, enNumberedSuffixes),
			fallback: true,
		},
		{
			name:  "zh_day_of_month",
			re:    regexp.MustCompile(`(?:^|[^\d月])(\d{1,2})\s*[日號号]`),
			group: 1,
			build: func(m []string) (Expression, bool) {
				return Expression{Kind: KindDayOfMonth, Day: atoi(m[1])}, true
			},
			reject:   surroundedBy(zhNumberedPrefixes, zhNumberedSuffixes),
			fallback: true,
		},
	}
}
