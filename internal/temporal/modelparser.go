package temporal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/credence/internal/llm"
	"github.com/ppiankov/credence/internal/model"
)

const timeSystemPrompt = `You identify the time expression in a news sentence.
Return only JSON with this shape:
{"kind": "...", "amount": 0, "unit": "", "year": 0, "month": 0, "day": 0, "end_year": 0, "end_month": 0, "end_day": 0, "text": ""}

kind is one of:
- "none": the sentence has no time expression
- "day_offset": today (amount 0), yesterday (amount 1), the day before yesterday (amount 2)
- "day_of_month": a bare day of the month such as "on the 31st" (day)
- "last_n": the last/past N units (amount, unit)
- "this": this week/month/year (unit)
- "recent": recently, lately
- "last_week": last week
- "ago": N units ago (amount, unit)
- "previous": last month or last year as a calendar unit (amount 1, unit)
- "distant": years ago, long ago
- "date": a calendar date (year, month, day)
- "range": a date range (year, month, day, end_year, end_month, end_day)
- "month": a calendar month (year, month)
- "year": a calendar year (year)
- "month_day": a date without a year (month, day)

unit is one of "day", "week", "month", "year". Convert Minguo years by adding 1911.
Do not compute dates. Report the expression as written.`

type modelExpression struct {
	Kind     string `json:"kind"`
	Amount   int    `json:"amount"`
	Unit     string `json:"unit"`
	Year     int    `json:"year"`
	Month    int    `json:"month"`
	Day      int    `json:"day"`
	EndYear  int    `json:"end_year"`
	EndMonth int    `json:"end_month"`
	EndDay   int    `json:"end_day"`
	Text     string `json:"text"`
}

// ModelParser asks the language model to identify the expression.
// It never does date arithmetic; Resolve does that locally.
type ModelParser struct {
	provider llm.Provider
	timeout  time.Duration
}

// NewModelParser creates a parser backed by provider
func NewModelParser(provider llm.Provider, timeout time.Duration) *ModelParser {
	return &ModelParser{provider: provider, timeout: timeout}
}

// Name returns the strategy name
func (p *ModelParser) Name() string { return "model" }

// Parse returns the expression the model reports, if any
func (p *ModelParser) Parse(ctx context.Context, text string, lang model.Language) (Expression, bool, error) {
	var out modelExpression
	_, err := llm.CompleteJSON(ctx, p.provider, llm.CompletionRequest{
		Task:      llm.TaskTime,
		System:    timeSystemPrompt,
		Prompt:    fmt.Sprintf("Sentence: %s", text),
		MaxTokens: 200,
		Timeout:   p.timeout,
	}, &out)
	if err != nil {
		return Expression{}, false, fmt.Errorf("model time parse: %w", err)
	}

	kind := Kind(strings.ToLower(strings.TrimSpace(out.Kind)))
	if kind == "" || kind == KindNone {
		return Expression{}, false, nil
	}

	e := Expression{
		Kind:     kind,
		Amount:   out.Amount,
		Year:     out.Year,
		Month:    out.Month,
		Day:      out.Day,
		EndYear:  out.EndYear,
		EndMonth: out.EndMonth,
		EndDay:   out.EndDay,
		Text:     strings.TrimSpace(out.Text),
	}
	if out.Unit != "" {
		u, ok := parseUnit(out.Unit)
		if !ok {
			return Expression{}, false, nil
		}
		e.Unit = u
	}
	if !e.valid() {
		return Expression{}, false, nil
	}
	return e, true, nil
}
