// Package stance classifies how each evidence item relates to a claim.
package stance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/credence/internal/llm"
	"github.com/ppiankov/credence/internal/model"
)

const systemPrompt = `You compare a claim with one piece of evidence.
Decide whether the evidence supports the claim, refutes it, or is irrelevant to it.
Judge only from the evidence text given. Do not use outside knowledge.
"support" means the evidence states the same facts as the claim.
"refute" means the evidence states facts that conflict with the claim.
"irrelevant" means the evidence is about something else or does not say either way.

Return JSON only:
{"stance": "support" | "refute" | "irrelevant", "rationale": "one short sentence"}`

const strictSuffix = `

Your previous answer could not be read.
Return exactly one JSON object with the keys "stance" and "rationale" and nothing else.
The stance value must be one of: support, refute, irrelevant.`

// ClassificationError is recorded when an item could not be classified
type ClassificationError struct {
	URL string
	Err error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classify %s: %v", e.URL, e.Err)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

type response struct {
	Stance    string `json:"stance"`
	Rationale string `json:"rationale"`
}

// Classifier labels evidence items as support, refute or irrelevant
type Classifier struct {
	provider llm.Provider
	workers  int
	timeout  time.Duration
	logger   *slog.Logger
}

// NewClassifier creates a classifier. workers bounds concurrent model calls
// for one claim.
func NewClassifier(provider llm.Provider, workers int, timeout time.Duration, logger *slog.Logger) *Classifier {
	if workers <= 0 {
		workers = 4
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Classifier{
		provider: provider,
		workers:  workers,
		timeout:  timeout,
		logger:   logger,
	}
}

// Classify returns a copy of item tagged with its stance. It never fails: an
// unusable model answer yields irrelevant with StanceUncertain set, and the
// cause is returned as a *ClassificationError alongside.
func (c *Classifier) Classify(ctx context.Context, claim model.Claim, item model.AssessedEvidence) (model.AssessedEvidence, error) {
	prompt := buildPrompt(claim, item.Item)

	resp, err := c.ask(ctx, claim, prompt, systemPrompt)
	if errors.Is(err, llm.ErrMalformed) {
		c.logger.Debug("stance response malformed, retrying", "url", item.Item.SourceURL, "error", err)
		resp, err = c.ask(ctx, claim, prompt, systemPrompt+strictSuffix)
	}
	if err != nil {
		c.logger.Warn("stance classification failed", "url", item.Item.SourceURL, "error", err)
		return item.WithStance(model.StanceIrrelevant, "", true), &ClassificationError{URL: item.Item.SourceURL, Err: err}
	}

	return item.WithStance(resp.stance, resp.rationale, false), nil
}

type parsed struct {
	stance    model.Stance
	rationale string
}

func (c *Classifier) ask(ctx context.Context, claim model.Claim, prompt, system string) (parsed, error) {
	var r response
	_, err := llm.CompleteJSON(ctx, c.provider, llm.CompletionRequest{
		Task:      llm.TaskStance,
		System:    system,
		Prompt:    prompt,
		Language:  claim.Language,
		MaxTokens: 200,
		Timeout:   c.timeout,
	}, &r)
	if err != nil {
		return parsed{}, err
	}

	s, ok := ParseStance(r.Stance)
	if !ok {
		return parsed{}, fmt.Errorf("%w: unknown stance %q", llm.ErrMalformed, r.Stance)
	}
	return parsed{stance: s, rationale: strings.TrimSpace(r.Rationale)}, nil
}

// ClassifyAll classifies items concurrently and returns them in input order.
// Items for which skip returns true are passed through unchanged. The returned
// count is the number of items that could not be classified.
func (c *Classifier) ClassifyAll(ctx context.Context, claim model.Claim, items []model.AssessedEvidence, skip func(model.AssessedEvidence) bool) ([]model.AssessedEvidence, int) {
	out := make([]model.AssessedEvidence, len(items))
	failed := make([]bool, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, item := range items {
		if skip != nil && skip(item) {
			out[i] = item
			continue
		}
		g.Go(func() error {
			classified, err := c.Classify(gctx, claim, item)
			out[i] = classified
			failed[i] = err != nil
			return nil
		})
	}
	_ = g.Wait()

	n := 0
	for _, f := range failed {
		if f {
			n++
		}
	}
	return out, n
}

// ParseStance reads a stance label, tolerating case, punctuation and a few synonyms
func ParseStance(s string) (model.Stance, bool) {
	s = strings.ToLower(strings.Trim(strings.TrimSpace(s), ".\"'"))
	switch s {
	case "support", "supports", "supported", "supporting":
		return model.StanceSupport, true
	case "refute", "refutes", "refuted", "contradict", "contradicts", "contradicted":
		return model.StanceRefute, true
	case "irrelevant", "unrelated", "neutral", "none":
		return model.StanceIrrelevant, true
	default:
		return "", false
	}
}

func buildPrompt(claim model.Claim, item model.EvidenceItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Claim: %s\n\n", claim.Text)
	b.WriteString("Evidence:\n")
	if item.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", item.Title)
	}
	if item.Snippet != "" {
		fmt.Fprintf(&b, "Snippet: %s\n", item.Snippet)
	}
	if item.PublishDate != nil {
		fmt.Fprintf(&b, "Published: %s\n", item.PublishDate.Format(model.DateLayout))
	}
	if item.SourceURL != "" {
		fmt.Fprintf(&b, "Source: %s\n", item.SourceURL)
	}
	return b.String()
}
