package evidence

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/ppiankov/credence/internal/llm"
	"github.com/ppiankov/credence/internal/model"
)

const querySystemPrompt = `You write web search queries for fact-checking.
Return 2-6 keywords that would find evidence about the claim, separated by spaces.
Keep the query in the same language as the claim.
Include names of people, organizations and places, specific events or policies, and dates.
Always keep place names from the claim.
Leave out opinions and filler words.
Return only the query text, no quotes, no explanation.`

var englishStopwords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "being": true, "of": true, "in": true, "on": true, "at": true,
	"to": true, "for": true, "with": true, "by": true, "from": true, "that": true, "this": true,
	"these": true, "those": true, "it": true, "its": true, "as": true, "and": true, "or": true,
	"but": true, "has": true, "have": true, "had": true, "will": true, "would": true, "can": true,
	"could": true, "should": true, "may": true, "might": true, "said": true, "says": true,
	"say": true, "according": true, "reported": true, "reports": true, "reportedly": true,
	"report": true, "news": true, "new": true, "also": true, "than": true, "then": true,
	"there": true, "their": true, "they": true, "he": true, "she": true, "his": true, "her": true,
	"which": true, "who": true, "what": true, "when": true, "where": true, "about": true,
	"into": true, "after": true, "before": true, "over": true, "up": true, "out": true,
	"not": true, "no": true, "very": true, "just": true, "now": true, "s": true,
}

// Removed as substrings from Chinese text; longer entries first
var chineseBoilerplate = []string{
	"據報導", "據了解", "據悉", "記者", "報導", "表示", "指出", "宣布", "強調", "透露",
	"目前", "已經", "因為", "所以", "但是", "而且", "以及", "並且", "這個", "那個",
	"的", "了", "是", "在", "和", "與", "及", "也", "都", "就", "將", "並", "被", "把", "於",
}

// QueryBuilder turns a claim into a search query
type QueryBuilder struct {
	provider     llm.Provider
	gazetteer    *Gazetteer
	modelQueries bool
	maxTerms     int
	timeout      time.Duration
	logger       *slog.Logger
}

// NewQueryBuilder creates a query builder. provider may be nil, in which case
// only the local builder is used.
func NewQueryBuilder(cfg model.SearchConfig, provider llm.Provider, gazetteer *Gazetteer, timeout time.Duration, logger *slog.Logger) *QueryBuilder {
	if gazetteer == nil {
		gazetteer = DefaultGazetteer()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	maxTerms := cfg.MaxQueryTerms
	if maxTerms <= 0 {
		maxTerms = 8
	}
	return &QueryBuilder{
		provider:     provider,
		gazetteer:    gazetteer,
		modelQueries: cfg.ModelQueries && provider != nil,
		maxTerms:     maxTerms,
		timeout:      timeout,
		logger:       logger,
	}
}

// Build returns the search query for claim. The model is asked first when
// enabled; any failure falls back to the local builder.
func (b *QueryBuilder) Build(ctx context.Context, claim model.Claim) string {
	if b.modelQueries {
		q, err := b.modelQuery(ctx, claim)
		if err == nil && q != "" {
			return b.ensurePlace(claim, q)
		}
		b.logger.Debug("model query failed, using local query", "error", err)
	}
	return b.Local(claim)
}

func (b *QueryBuilder) modelQuery(ctx context.Context, claim model.Claim) (string, error) {
	resp, err := b.provider.Complete(ctx, llm.CompletionRequest{
		Task:      llm.TaskQuery,
		System:    querySystemPrompt,
		Prompt:    fmt.Sprintf("Claim: %s", claim.Text),
		MaxTokens: 60,
		Timeout:   b.timeout,
	})
	if err != nil {
		return "", err
	}

	q := strings.TrimSpace(llm.StripFences(resp.Text))
	if i := strings.IndexByte(q, '\n'); i >= 0 {
		q = q[:i]
	}
	q = strings.Trim(q, "\"'`「」“”")
	return b.capTerms(strings.Fields(q)), nil
}

// Local builds a query without the model: places are kept whole, stopwords and
// boilerplate are removed, and the result is capped at the configured term count
func (b *QueryBuilder) Local(claim model.Claim) string {
	folded := Fold(claim.Text)
	places := b.gazetteer.Find(claim.Text)

	// Protect place names before tokenizing
	placeholders := make(map[string]string, len(places))
	for i, p := range places {
		key := fmt.Sprintf("\x00%d\x00", i)
		placeholders[key] = p.Text
		folded = strings.Replace(folded, p.Text, " "+key+" ", 1)
	}

	for _, w := range chineseBoilerplate {
		folded = strings.ReplaceAll(folded, w, " ")
	}

	var terms []string
	for _, tok := range strings.FieldsFunc(folded, isSeparator) {
		if place, ok := placeholders[tok]; ok {
			terms = append(terms, place)
			continue
		}
		tok = strings.Trim(tok, ".-")
		if tok == "" || englishStopwords[tok] {
			continue
		}
		terms = append(terms, tok)
	}

	if len(terms) == 0 {
		return strings.TrimSpace(claim.Text)
	}
	return b.ensurePlace(claim, b.capTerms(terms))
}

// ensurePlace prepends the claim's first place when the query dropped it
func (b *QueryBuilder) ensurePlace(claim model.Claim, query string) string {
	places := b.gazetteer.Find(claim.Text)
	if len(places) == 0 {
		return query
	}
	first := places[0]
	for _, m := range b.gazetteer.Find(query) {
		if m.Place.Canonical == first.Place.Canonical {
			return query
		}
	}
	terms := append([]string{first.Text}, strings.Fields(query)...)
	return b.capTerms(terms)
}

func (b *QueryBuilder) capTerms(terms []string) string {
	if len(terms) > b.maxTerms {
		terms = terms[:b.maxTerms]
	}
	return strings.Join(terms, " ")
}

func isSeparator(r rune) bool {
	if r == 0 {
		return false
	}
	if r == '%' || r == '.' || r == '-' {
		return false
	}
	return !(unicode.IsLetter(r) || unicode.IsDigit(r))
}
