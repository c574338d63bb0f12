// Package verify decides a verdict for one claim from its retrieved evidence.
package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ppiankov/credence/internal/evidence"
	"github.com/ppiankov/credence/internal/llm"
	"github.com/ppiankov/credence/internal/metrics"
	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/stance"
	"github.com/ppiankov/credence/internal/temporal"
)

// Notes attached to degraded results
const (
	NoteSearchUnavailable    = "search unavailable"
	NoteUnclassified         = "evidence could not be classified"
	NoteTimeUnresolved       = "time expression unresolved"
	NoteOverrideInconclusive = "authoritative sources inconclusive"
)

// Retriever finds evidence for a claim
type Retriever interface {
	Retrieve(ctx context.Context, claim model.Claim) (*evidence.Retrieval, error)
}

// Options carries the verifier's collaborators. Retriever and Classifier are
// required; the rest have defaults.
type Options struct {
	Retriever  Retriever
	Classifier *stance.Classifier
	Normalizer *temporal.Normalizer
	Gazetteer  *evidence.Gazetteer
	Narrator   llm.Provider // Used only when narration is enabled
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
}

// Verifier runs the per-claim state machine:
//
//	Tier 1 hit  -> authoritative override -> done
//	Tier 1 miss -> Tier 2 -> pre-filter -> temporal check -> classify -> tally -> done
type Verifier struct {
	retriever  Retriever
	classifier *stance.Classifier
	normalizer *temporal.Normalizer
	checker    *temporal.Checker
	gazetteer  *evidence.Gazetteer
	narrator   llm.Provider

	tally      model.TallyConfig
	temporal   model.TemporalConfig
	minSources int
	narrate    bool
	llmTimeout time.Duration

	metrics *metrics.Metrics
	tracer  trace.Tracer
	logger  *slog.Logger
}

// NewVerifier creates a verifier
func NewVerifier(cfg *model.Config, opts Options) *Verifier {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	normalizer := opts.Normalizer
	if normalizer == nil {
		normalizer = temporal.NewNormalizer(cfg.Temporal, nil, 0, logger)
	}
	gazetteer := opts.Gazetteer
	if gazetteer == nil {
		gazetteer = evidence.DefaultGazetteer()
	}

	return &Verifier{
		retriever:  opts.Retriever,
		classifier: opts.Classifier,
		normalizer: normalizer,
		checker:    temporal.NewChecker(cfg.Temporal.StaleMargin),
		gazetteer:  gazetteer,
		narrator:   opts.Narrator,
		tally:      normalizeTally(cfg.Tally),
		temporal:   cfg.Temporal,
		minSources: cfg.Verify.MinSources,
		narrate:    cfg.Verify.Narrate && opts.Narrator != nil,
		llmTimeout: cfg.LLM.Timeout,
		metrics:    opts.Metrics,
		tracer:     otel.Tracer("github.com/ppiankov/credence/internal/verify"),
		logger:     logger,
	}
}

// Verify produces the result for one claim. Failures local to the claim
// degrade the result and are reported in its Note; they are never returned.
func (v *Verifier) Verify(ctx context.Context, claim model.Claim) model.VerificationResult {
	ctx, span := v.tracer.Start(ctx, "verify.claim",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("claim.kind", string(claim.Kind))),
	)
	defer span.End()

	var notes []string
	claimWindow := v.normalizer.ClaimWindow(ctx, claim)
	if claimWindow != nil && !claimWindow.Resolved() {
		notes = append(notes, NoteTimeUnresolved)
	}

	retrieval, err := v.retriever.Retrieve(ctx, claim)
	query := ""
	if retrieval != nil {
		query = retrieval.Query
	}
	if err != nil {
		span.RecordError(err)
		var rerr *evidence.RetrievalError
		if errors.As(err, &rerr) && rerr.Total {
			v.logger.Warn("evidence search unavailable", "claim", claim.Text, "error", err)
		} else {
			v.logger.Warn("evidence search failed", "claim", claim.Text, "error", err)
		}
		notes = append(notes, NoteSearchUnavailable)
		result := v.finish(ctx, claim, model.VerificationResult{
			Verdict:     model.VerdictInsufficient,
			SearchQuery: query,
			ClaimWindow: claimWindow,
		}, notes, nil)
		span.SetAttributes(attribute.String("verdict", string(result.Verdict)))
		return result
	}

	items := make([]model.AssessedEvidence, len(retrieval.Items))
	for i, item := range retrieval.Items {
		items[i] = model.Assess(item)
	}

	var result model.VerificationResult
	if retrieval.Authoritative {
		result, notes = v.authoritativeOverride(ctx, claim, items, notes)
	} else {
		result, notes = v.weighEvidence(ctx, claim, claimWindow, items, notes)
	}
	result.SearchQuery = query
	result.ClaimWindow = claimWindow

	result = v.finish(ctx, claim, result, notes, result.Evidence)
	span.SetAttributes(
		attribute.String("verdict", string(result.Verdict)),
		attribute.Bool("authoritative", result.Authoritative),
		attribute.Int("evidence.count", len(result.Evidence)),
	)
	return result
}

// authoritativeOverride classifies the Tier 1 items only; other evidence is
// never consulted
func (v *Verifier) authoritativeOverride(ctx context.Context, claim model.Claim, items []model.AssessedEvidence, notes []string) (model.VerificationResult, []string) {
	classified, failed := v.classifier.ClassifyAll(ctx, claim, items, nil)
	if failed > 0 {
		notes = append(notes, NoteUnclassified)
	}

	breakdown := Count(classified)
	verdict := override(breakdown)
	if verdict == model.VerdictInsufficient {
		notes = append(notes, NoteOverrideInconclusive)
	}

	return model.VerificationResult{
		Verdict:       verdict,
		Breakdown:     breakdown,
		Authoritative: true,
		Evidence:      classified,
	}, notes
}

// weighEvidence runs the Tier 2 path
func (v *Verifier) weighEvidence(ctx context.Context, claim model.Claim, claimWindow *model.TimeWindow, items []model.AssessedEvidence, notes []string) (model.VerificationResult, []string) {
	items, rejected := v.gazetteer.PreFilterAll(claim, items)
	v.metrics.AddPreFiltered(rejected)

	stale := 0
	for i, a := range items {
		if !a.PassesPreFilter {
			continue
		}
		window := v.normalizer.EvidenceWindow(a.Item)
		status := v.checker.Check(claimWindow, window)
		a = a.WithTemporal(status, window)
		if status == model.TemporalStale {
			stale++
			if v.temporal.StalePolicy == model.StalePolicyExclude {
				a = a.WithExcluded(fmt.Sprintf("predates the claim period by %d days", temporal.Deviation(claimWindow, window)))
			}
		}
		v.metrics.IncrementTemporal(string(status))
		items[i] = a
	}

	skip := func(a model.AssessedEvidence) bool {
		return !a.PassesPreFilter || a.Excluded
	}
	classified, failed := v.classifier.ClassifyAll(ctx, claim, items, skip)
	if failed > 0 {
		notes = append(notes, NoteUnclassified)
	}

	result := model.VerificationResult{
		Verdict:     Decide(Weigh(classified, v.temporal), v.tally),
		Breakdown:   Count(classified),
		Evidence:    classified,
		PreFiltered: rejected,
	}
	if stale > 0 {
		result.TemporalWarning = fmt.Sprintf("%d evidence item(s) predate the claim period %s and may be old news",
			stale, claimWindow)
	}
	return result, notes
}

// finish writes the explanation and note and records the verdict
func (v *Verifier) finish(ctx context.Context, claim model.Claim, result model.VerificationResult, notes []string, items []model.AssessedEvidence) model.VerificationResult {
	result.Note = strings.Join(notes, "; ")
	result.Explanation = v.explain(claim, result, items)

	if v.narrate && len(items) > 0 {
		if text, err := v.narrative(ctx, claim, result); err == nil && text != "" {
			result.Explanation = v.sourceWarning(result.Breakdown.Total()) + text
		} else if err != nil {
			v.logger.Debug("narrative explanation failed, using local text", "error", err)
		}
	}

	v.metrics.IncrementClaimVerdict(string(result.Verdict), result.Authoritative)
	return result
}

func (v *Verifier) sourceWarning(usable int) string {
	if v.minSources <= 0 || usable >= v.minSources {
		return ""
	}
	return fmt.Sprintf("[Warning] Only found %d evidence source(s). Recommended: at least %d sources. ", usable, v.minSources)
}

// explain builds the local explanation text
func (v *Verifier) explain(claim model.Claim, result model.VerificationResult, items []model.AssessedEvidence) string {
	var b strings.Builder
	b.WriteString(v.sourceWarning(result.Breakdown.Total()))

	switch {
	case result.Authoritative:
		fmt.Fprintf(&b, "%s by authoritative sources (%s).", result.Verdict, result.Breakdown)
	case result.Breakdown.Total() == 0:
		b.WriteString("No relevant evidence was found for this claim.")
	default:
		fmt.Fprintf(&b, "%s: %s.", result.Verdict, result.Breakdown)
	}

	if result.PreFiltered > 0 {
		fmt.Fprintf(&b, " %d result(s) about other places were set aside.", result.PreFiltered)
	}

	later := 0
	for _, a := range items {
		if a.EvidenceWindow != nil && result.ClaimWindow != nil && result.ClaimWindow.Resolved() &&
			a.EvidenceWindow.Start.After(result.ClaimWindow.End) {
			later++
		}
	}
	if later > 0 {
		fmt.Fprintf(&b, " %d source(s) were published after the claim period.", later)
	}
	if result.TemporalWarning != "" {
		b.WriteString(" " + result.TemporalWarning + ".")
	}
	return b.String()
}

const narrativePrompt = `You write a short explanation of a fact-check result for a reader.
The verdict has already been decided. Do not change it and do not add facts.
Explain in two or three sentences which evidence supports or refutes the claim.`

func (v *Verifier) narrative(ctx context.Context, claim model.Claim, result model.VerificationResult) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Claim: %s\nVerdict: %s\nEvidence breakdown: %s\n", claim.Text, result.Verdict, result.Breakdown)
	if result.TemporalWarning != "" {
		fmt.Fprintf(&b, "Note: %s\n", result.TemporalWarning)
	}
	b.WriteString("\nEvidence:\n")
	for _, a := range result.Evidence {
		if !a.PassesPreFilter || a.Stance == model.StanceIrrelevant || a.Stance == "" {
			continue
		}
		fmt.Fprintf(&b, "- [%s] %s: %s\n", a.Stance, a.Item.Title, a.Rationale)
	}

	resp, err := v.narrator.Complete(ctx, llm.CompletionRequest{
		Task:      llm.TaskExplain,
		System:    narrativePrompt,
		Prompt:    b.String(),
		Language:  claim.Language,
		MaxTokens: 300,
		Timeout:   v.llmTimeout,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}
