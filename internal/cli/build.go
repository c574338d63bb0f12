package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ppiankov/credence/internal/cache"
	"github.com/ppiankov/credence/internal/evidence"
	"github.com/ppiankov/credence/internal/extract"
	"github.com/ppiankov/credence/internal/extract/adapters"
	"github.com/ppiankov/credence/internal/llm"
	"github.com/ppiankov/credence/internal/metrics"
	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/pipeline"
	"github.com/ppiankov/credence/internal/search"
	"github.com/ppiankov/credence/internal/stance"
	"github.com/ppiankov/credence/internal/temporal"
	"github.com/ppiankov/credence/internal/util"
	"github.com/ppiankov/credence/internal/validate"
	"github.com/ppiankov/credence/internal/verify"
	"github.com/ppiankov/credence/internal/worker"
)

// components is the wired verification stack
type components struct {
	pipeline *pipeline.Pipeline
	metrics  *metrics.Metrics
}

// build wires every collaborator from cfg
func build(cfg *model.Config, logger *slog.Logger) (*components, error) {
	m := metrics.New()

	// Language model
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg))
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	if provider == nil {
		return nil, errors.New("llm.provider must be set (openai, anthropic, ollama)")
	}
	client := llm.NewClient(provider, logger.With("component", "llm"), m.ObserveLLM)

	// Search, rate limited per host
	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	searcher, err := search.New(cfg.Search, cfg.HTTP, limiter)
	if err != nil {
		return nil, fmt.Errorf("search provider: %w", err)
	}

	// Evidence retrieval
	gazetteer := evidence.DefaultGazetteer()
	queries := evidence.NewQueryBuilder(cfg.Search, client, gazetteer, cfg.LLM.Timeout, logger)
	authority := validate.NewAuthorityClassifier(&cfg.Authority)
	retriever := evidence.NewRetriever(searcher, authority, queries, cfg.Search.MaxResults, logger).WithMetrics(m)

	// Per-claim verification
	normalizer := temporal.NewNormalizer(cfg.Temporal, client, cfg.LLM.Timeout, logger)
	classifier := stance.NewClassifier(client, cfg.Concurrency.StanceWorkers, cfg.LLM.Timeout, logger)
	verifier := verify.NewVerifier(cfg, verify.Options{
		Retriever:  retriever,
		Classifier: classifier,
		Normalizer: normalizer,
		Gazetteer:  gazetteer,
		Narrator:   client,
		Metrics:    m,
		Logger:     logger,
	})

	p := pipeline.NewPipeline(cfg, pipeline.Options{
		Extractor: extract.NewExtractor(client, cfg.Extract, cfg.LLM.Timeout, logger),
		Verifier:  verifier,
		Source:    newSource(cfg.HTTP),
		Adapters:  adapters.NewRegistry(logger),
		Metrics:   m,
		Logger:    logger,
	})

	return &components{pipeline: p, metrics: m}, nil
}

// newSource picks the page loader for URL input
func newSource(cfg model.HTTPConfig) pipeline.Source {
	var robots *util.RobotsChecker
	if cfg.RespectRobots {
		client := &http.Client{
			Timeout:   10 * time.Second,
			Transport: &http.Transport{Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy)},
		}
		store := cache.NewMemoryCache(cfg.RobotsCacheTTL, 10*time.Minute)
		robots = util.NewRobotsChecker(cfg.UserAgent, client, store, cfg.RobotsCacheTTL)
	}

	if cfg.Render {
		return pipeline.NewBrowserFetcher(cfg, robots)
	}
	return pipeline.NewFetcher(cfg, robots)
}
