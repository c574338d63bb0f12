// Package extract turns a submitted document into verifiable claims.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/ppiankov/credence/internal/llm"
	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/temporal"
)

const newsPrompt = `You are analyzing a news article to extract:
1. The TITLE (the main claim of the article)
2. VERIFIABLE DETAILS from the content that directly support the title's core claim

Rules:
- Extract only from the provided text. Do not add information from your own knowledge.
- Details must be exact quotes or close paraphrases of the content.
- Prefer specific numbers, named events and concrete facts stated in the text.
- Skip opinions, vague statements and peripheral facts.
- A detail must say something besides when it happened.
- Extract 2-4 key details. If the content has fewer, return fewer or an empty array.

Return JSON only: {"title": "...", "details": ["...", "..."]}`

const generalPrompt = `Extract up to 5 verifiable factual claims from the provided text.

Rules:
- Extract only from the text. Do not add information from your own knowledge.
- Each claim must be an exact quote or close paraphrase of the text.
- Focus on specific events, concrete numbers and statements that can be fact-checked.
- Skip opinions, vague or repeated statements.
- If the text has fewer verifiable claims, return fewer items.

Return a JSON array of strings only.`

// ExtractionError is a document-level failure: the model output was unusable
// or a claim could not be traced back to the source text
type ExtractionError struct {
	Reason string
	Claim  string
	Err    error
}

func (e *ExtractionError) Error() string {
	msg := "extraction failed: " + e.Reason
	if e.Claim != "" {
		msg += fmt.Sprintf(" (%q)", truncate(e.Claim, 80))
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Extraction is the set of claims taken from one document
type Extraction struct {
	Mode     model.Mode
	Title    *model.Claim  // News mode only
	Claims   []model.Claim // Details in news mode, flat claims otherwise
	Sections Sections
	Anchor   *time.Time
}

// Extractor extracts claims with the language model
type Extractor struct {
	provider llm.Provider
	config   model.ExtractConfig
	timeout  time.Duration
	rules    *temporal.RuleParser
	logger   *slog.Logger
}

// NewExtractor creates an extractor
func NewExtractor(provider llm.Provider, cfg model.ExtractConfig, timeout time.Duration, logger *slog.Logger) *Extractor {
	def := model.DefaultConfig().Extract
	if cfg.MaxDetails <= 0 {
		cfg.MaxDetails = def.MaxDetails
	}
	if cfg.MaxClaims <= 0 {
		cfg.MaxClaims = def.MaxClaims
	}
	if cfg.MaxInputChars <= 0 {
		cfg.MaxInputChars = def.MaxInputChars
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Extractor{
		provider: provider,
		config:   cfg,
		timeout:  timeout,
		rules:    temporal.NewRuleParser(),
		logger:   logger,
	}
}

// Extract extracts the title and details (news mode) or the flat claims
// (general mode) of doc
func (e *Extractor) Extract(ctx context.Context, doc model.Document) (*Extraction, error) {
	text := strings.TrimSpace(doc.Text)
	if text == "" {
		return nil, &ExtractionError{Reason: "empty document"}
	}

	// 1. Sections and mode
	sections := ParseSections(text)
	mode := doc.Mode
	if mode == model.ModeAuto {
		mode = DetectMode(sections)
	}

	// 2. Anchor date: caller first, then the document's own date line
	anchor := doc.ReferenceDate
	if anchor == nil && sections.Date != "" {
		anchor = e.parseDate(sections.Date)
	}

	out := &Extraction{Mode: mode, Sections: sections, Anchor: anchor}
	source := truncate(text, e.config.MaxInputChars)

	// 3. Model extraction
	var err error
	if mode == model.ModeNews {
		err = e.extractNews(ctx, doc.Language, source, sections, out)
	} else {
		err = e.extractGeneral(ctx, doc.Language, source, out)
	}
	if err != nil {
		return nil, err
	}

	// 4. Every claim must be traceable to the source
	if err := e.checkGrounding(text, out); err != nil {
		return nil, err
	}

	for i := range out.Claims {
		out.Claims[i].Language = doc.Language
		out.Claims[i].SourceRefDate = anchor
	}
	if out.Title != nil {
		out.Title.Language = doc.Language
		out.Title.SourceRefDate = anchor
	}

	e.logger.Debug("extracted claims", "mode", mode, "claims", len(out.Claims), "anchor", anchor)
	return out, nil
}

func (e *Extractor) extractNews(ctx context.Context, lang model.Language, source string, sections Sections, out *Extraction) error {
	var resp struct {
		Title   string   `json:"title"`
		Details []string `json:"details"`
	}
	if _, err := e.complete(ctx, newsPrompt, source, lang, &resp); err != nil {
		return err
	}

	title := strings.TrimSpace(resp.Title)
	if title == "" {
		title = sections.Title
	}
	if title == "" {
		return &ExtractionError{Reason: "no title in model output"}
	}
	out.Title = &model.Claim{Text: title, Kind: model.KindTitle}

	for _, d := range e.clean(resp.Details, e.config.MaxDetails) {
		out.Claims = append(out.Claims, model.Claim{Text: d, Kind: model.KindDetail})
	}
	return nil
}

func (e *Extractor) extractGeneral(ctx context.Context, lang model.Language, source string, out *Extraction) error {
	var resp []string
	if _, err := e.complete(ctx, generalPrompt, source, lang, &resp); err != nil {
		return err
	}
	for _, c := range e.clean(resp, e.config.MaxClaims) {
		out.Claims = append(out.Claims, model.Claim{Text: c, Kind: model.KindClaim})
	}
	return nil
}

func (e *Extractor) complete(ctx context.Context, system, source string, lang model.Language, v any) (string, error) {
	raw, err := llm.CompleteJSON(ctx, e.provider, llm.CompletionRequest{
		Task:     llm.TaskExtract,
		System:   system,
		Prompt:   source,
		Language: lang,
		Timeout:  e.timeout,
	}, v)
	if err == nil {
		return raw, nil
	}
	if errors.Is(err, llm.ErrMalformed) {
		return raw, &ExtractionError{Reason: "malformed model output", Err: err}
	}
	return raw, fmt.Errorf("extract: %w", err)
}

// clean trims, drops time-only and duplicate entries, and caps the list
func (e *Extractor) clean(items []string, max int) []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || e.timeOnly(item) {
			continue
		}
		key := strings.ToLower(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
		if len(out) >= max {
			break
		}
	}
	return out
}

// Words that carry no checkable content once the time expression is gone
var fillerWords = map[string]bool{
	"this": true, "that": true, "it": true, "happened": true, "happens": true, "occurred": true,
	"was": true, "is": true, "the": true, "event": true, "took": true, "place": true,
	"on": true, "in": true, "at": true, "of": true, "a": true, "an": true,
}

var fillerPhrases = []string{
	"這件事", "此事", "事情", "事件", "發生", "发生", "這", "这", "在", "於", "是", "的", "了",
}

// timeOnly reports whether text says nothing beyond when something happened
func (e *Extractor) timeOnly(text string) bool {
	if _, ok := e.rules.Find(text); !ok {
		return false
	}
	rest := e.rules.Strip(text)
	for _, p := range fillerPhrases {
		rest = strings.ReplaceAll(rest, p, " ")
	}
	for _, w := range strings.FieldsFunc(rest, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r))
	}) {
		if !fillerWords[w] {
			return false
		}
	}
	return true
}

func (e *Extractor) checkGrounding(source string, out *Extraction) error {
	if e.config.MinGrounding <= 0 {
		return nil
	}
	check := func(c *model.Claim) error {
		if !sameScript(c.Text, source) {
			return nil
		}
		if g := Grounding(c.Text, source); g < e.config.MinGrounding {
			return &ExtractionError{
				Reason: fmt.Sprintf("claim not grounded in source (coverage %.2f)", g),
				Claim:  c.Text,
			}
		}
		return nil
	}

	if out.Title != nil {
		if err := check(out.Title); err != nil {
			return err
		}
	}
	for i := range out.Claims {
		if err := check(&out.Claims[i]); err != nil {
			return err
		}
	}
	return nil
}

// parseDate reads a document date line with the temporal rules
func (e *Extractor) parseDate(s string) *time.Time {
	expr, ok := e.rules.Find(s)
	if !ok || expr.Relative() {
		return nil
	}
	w, err := temporal.Resolve(expr, nil, model.TemporalConfig{})
	if err != nil || !w.Resolved() {
		return nil
	}
	d := w.Start
	return &d
}

func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
