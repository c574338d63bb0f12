package temporal

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ppiankov/credence/internal/llm"
	"github.com/ppiankov/credence/internal/model"
)

// Parser finds a time expression in free text
type Parser interface {
	Name() string
	Parse(ctx context.Context, text string, lang model.Language) (Expression, bool, error)
}

// Normalizer resolves time expressions in claims and evidence into windows.
// Parsers are tried in order; the first that finds an expression wins.
type Normalizer struct {
	parsers []Parser
	rules   *RuleParser
	cfg     model.TemporalConfig
	logger  *slog.Logger
}

// NewNormalizer creates a normalizer. The model parser is added after the
// rules when fallback is enabled and a provider is available.
func NewNormalizer(cfg model.TemporalConfig, provider llm.Provider, timeout time.Duration, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	rules := NewRuleParser()
	parsers := []Parser{rules}
	if cfg.ModelFallback && provider != nil {
		parsers = append(parsers, NewModelParser(provider, timeout))
	}
	return &Normalizer{
		parsers: parsers,
		rules:   rules,
		cfg:     cfg,
		logger:  logger,
	}
}

// Parse runs the parser chain. A parser error is logged and the next parser tried.
func (n *Normalizer) Parse(ctx context.Context, text string, lang model.Language) (Expression, bool) {
	for _, p := range n.parsers {
		e, ok, err := p.Parse(ctx, text, lang)
		if err != nil {
			n.logger.Warn("time expression parser failed", "parser", p.Name(), "error", err)
			continue
		}
		if ok {
			n.logger.Debug("time expression found", "parser", p.Name(), "kind", e.Kind, "text", e.Text)
			return e, true
		}
	}
	return Expression{}, false
}

// Normalize resolves expr against anchor
func (n *Normalizer) Normalize(ctx context.Context, expr string, anchor *time.Time, lang model.Language) (model.TimeWindow, error) {
	e, ok := n.Parse(ctx, expr, lang)
	if !ok {
		return model.Unresolved(expr), &ResolutionError{Expression: expr, Reason: "no time expression found"}
	}
	return Resolve(e, anchor, n.cfg)
}

// ClaimWindow returns the window a claim refers to. A nil window means the claim
// carries no time expression. A window that cannot be resolved comes back
// marked unresolved, never as an error to the caller.
func (n *Normalizer) ClaimWindow(ctx context.Context, claim model.Claim) *model.TimeWindow {
	e, ok := n.Parse(ctx, claim.Text, claim.Language)
	if !ok {
		return nil
	}
	w, err := Resolve(e, claim.SourceRefDate, n.cfg)
	if err != nil {
		var rerr *ResolutionError
		if errors.As(err, &rerr) {
			n.logger.Debug("claim window unresolved", "expression", rerr.Expression, "reason", rerr.Reason)
		}
	}
	return &w
}

// EvidenceWindow returns the window an evidence item talks about, using the
// rule parser only. Expressions are anchored at the publish date; an item with
// no expression is taken to be about its publish date. Nil means undated.
func (n *Normalizer) EvidenceWindow(item model.EvidenceItem) *model.TimeWindow {
	if e, ok := n.rules.find(item.Text()); ok {
		if w, err := Resolve(e, item.PublishDate, n.cfg); err == nil {
			return &w
		}
	}
	if item.PublishDate == nil {
		return nil
	}
	d := civil(*item.PublishDate)
	return &model.TimeWindow{
		Start:      d,
		End:        d,
		Category:   model.CategoryAbsolute,
		Expression: d.Format(model.DateLayout),
	}
}
