// Package pipeline runs a document through extraction, per-claim
// verification and scoring.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ppiankov/credence/internal/extract"
	"github.com/ppiankov/credence/internal/extract/adapters"
	"github.com/ppiankov/credence/internal/metrics"
	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/score"
	"github.com/ppiankov/credence/internal/worker"
)

// NoteCancelled marks claims that were never verified because the request ended
const NoteCancelled = "verification cancelled"

// ClaimVerifier verifies one claim
type ClaimVerifier interface {
	Verify(ctx context.Context, claim model.Claim) model.VerificationResult
}

// Options carries the pipeline's collaborators. Extractor and Verifier are
// required; Source is needed only for URL input.
type Options struct {
	Extractor *extract.Extractor
	Verifier  ClaimVerifier
	Source    Source
	Adapters  *adapters.Registry
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// Pipeline orchestrates the complete verification of a document
type Pipeline struct {
	extractor *extract.Extractor
	verifier  ClaimVerifier
	scorer    *score.Scorer
	source    Source
	adapters  *adapters.Registry
	renderer  *Renderer
	workers   int
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	logger    *slog.Logger
	now       func() time.Time
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, opts Options) *Pipeline {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	registry := opts.Adapters
	if registry == nil {
		registry = adapters.NewRegistry(logger)
	}

	return &Pipeline{
		extractor: opts.Extractor,
		verifier:  opts.Verifier,
		scorer:    score.NewScorer(cfg.Tally.StrongMargin),
		source:    opts.Source,
		adapters:  registry,
		renderer:  NewRenderer(cfg.Output.IncludeEvidence),
		workers:   cfg.Concurrency.ClaimWorkers,
		metrics:   opts.Metrics,
		tracer:    otel.Tracer("github.com/ppiankov/credence/internal/pipeline"),
		logger:    logger,
		now:       time.Now,
	}
}

// VerifyDocument extracts the claims of doc, verifies them concurrently and
// folds the results into a report. Only extraction failures are returned;
// per-claim failures are recorded on the claim's result.
func (p *Pipeline) VerifyDocument(ctx context.Context, doc model.Document) (*model.Report, error) {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "pipeline.document",
		trace.WithAttributes(
			attribute.String("document.language", string(doc.Language)),
			attribute.String("document.mode", string(doc.Mode)),
		),
	)
	defer span.End()

	if doc.Language == "" {
		doc.Language = model.LangAuto
	}

	// 1. Extract claims
	extraction, err := p.extractor.Extract(ctx, doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extraction failed")
		return nil, fmt.Errorf("extract claims: %w", err)
	}
	p.logger.Info("claims extracted", "mode", extraction.Mode, "claims", len(extraction.Claims))

	// 2. Verify each claim (details in news mode)
	results := p.verifyClaims(ctx, extraction.Claims)

	// 3. Fold into the overall verdict
	overall := p.scorer.Calculate(extraction.Mode, extraction.Title, results)

	items := make([]model.ClaimReport, len(results))
	for i, result := range results {
		items[i] = model.ClaimReport{Claim: extraction.Claims[i], Result: result}
	}

	report := &model.Report{
		ID:            uuid.New().String(),
		Mode:          extraction.Mode,
		Language:      doc.Language,
		SourceURL:     doc.SourceURL,
		ReferenceDate: extraction.Anchor,
		CreatedAt:     p.now().UTC(),
		Title:         extraction.Title,
		Items:         items,
		Overall:       overall,
	}

	p.metrics.IncrementDocument(string(report.Mode), string(overall.Verdict))
	p.metrics.ObserveDocumentLatency(time.Since(start))
	span.SetAttributes(
		attribute.String("report.id", report.ID),
		attribute.String("verdict", string(overall.Verdict)),
		attribute.Int("claims", len(items)),
	)
	p.logger.Info("document verified", "id", report.ID, "verdict", overall.Verdict, "summary", overall.Summary)

	return report, nil
}

// VerifyURL loads the page at rawURL, reads its article and verifies it.
// lang overrides the page's declared language unless it is auto.
func (p *Pipeline) VerifyURL(ctx context.Context, rawURL string, lang model.Language) (*model.Report, error) {
	page, err := p.LoadPage(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return p.VerifyDocument(ctx, page.Document(lang))
}

// LoadPage fetches rawURL and extracts its article
func (p *Pipeline) LoadPage(ctx context.Context, rawURL string) (*extract.Page, error) {
	if p.source == nil {
		return nil, fmt.Errorf("load %s: no page source configured", rawURL)
	}

	fetched, err := p.source.Fetch(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	finalURL := fetched.FinalURL
	if finalURL == "" {
		finalURL = rawURL
	}
	page, err := p.adapters.Extract(fetched.HTML, finalURL, fetched.ContentType)
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}

	p.logger.Debug("page loaded", "url", page.URL, "title", page.Title, "published", page.Published, "chars", len(page.Content))
	return page, nil
}

// claimJob verifies one claim in the worker pool
type claimJob struct {
	index    int
	claim    model.Claim
	verifier ClaimVerifier
}

type claimResult struct {
	index  int
	result model.VerificationResult
}

func (r *claimResult) GetError() error { return nil }

// Execute runs the verifier for the job's claim
func (j *claimJob) Execute(ctx context.Context) worker.Result {
	return &claimResult{index: j.index, result: j.verifier.Verify(ctx, j.claim)}
}

// verifyClaims verifies claims concurrently and returns results in claim
// order. Claims left unverified because ctx ended get an insufficient result.
func (p *Pipeline) verifyClaims(ctx context.Context, claims []model.Claim) []model.VerificationResult {
	results := make([]model.VerificationResult, len(claims))
	if len(claims) == 0 {
		return results
	}

	pool := worker.NewPool(ctx, p.workers)
	pool.Start()
	for i, claim := range claims {
		if !pool.Submit(&claimJob{index: i, claim: claim, verifier: p.verifier}) {
			break
		}
	}

	done := make([]bool, len(claims))
	for _, r := range pool.Wait() {
		cr := r.(*claimResult)
		results[cr.index] = cr.result
		done[cr.index] = true
	}

	for i := range results {
		if !done[i] {
			results[i] = model.VerificationResult{
				Verdict:     model.VerdictInsufficient,
				Note:        NoteCancelled,
				Explanation: "Verification did not run before the request ended.",
			}
		}
	}
	return results
}

// RenderReport writes the report to the given paths (empty paths are
// skipped) and prints the terminal summary to stdout
func (p *Pipeline) RenderReport(report *model.Report, jsonPath, mdPath string, verbose bool) error {
	return p.renderer.RenderAll(report, jsonPath, mdPath, verbose)
}
