// Package evidence retrieves candidate evidence for a claim and pre-filters it.
package evidence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ppiankov/credence/internal/metrics"
	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/search"
	"github.com/ppiankov/credence/internal/validate"
)

// Search tiers
const (
	TierAuthoritative = "authoritative"
	TierGeneral       = "general"
)

// RetrievalError reports a search failure. Total is set when every tier failed.
type RetrievalError struct {
	Tier  string
	Total bool
	Err   error
}

func (e *RetrievalError) Error() string {
	if e.Total {
		return fmt.Sprintf("retrieval failed for all tiers: %v", e.Err)
	}
	return fmt.Sprintf("retrieval failed (%s tier): %v", e.Tier, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// Retrieval is the outcome of a two-tier search for one claim
type Retrieval struct {
	Query         string
	Items         []model.EvidenceItem
	Authoritative bool // Items came from the Tier 1 allow-list
	Tier1Err      error
}

// Retriever runs the two-tier evidence search
type Retriever struct {
	searcher   search.Searcher
	authority  *validate.AuthorityClassifier
	queries    *QueryBuilder
	maxResults int
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewRetriever creates a retriever
func NewRetriever(searcher search.Searcher, authority *validate.AuthorityClassifier, queries *QueryBuilder, maxResults int, logger *slog.Logger) *Retriever {
	if authority == nil {
		authority = validate.NewAuthorityClassifier(nil)
	}
	if queries == nil {
		queries = NewQueryBuilder(model.SearchConfig{}, nil, nil, 0, logger)
	}
	if maxResults <= 0 {
		maxResults = 10
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Retriever{
		searcher:   searcher,
		authority:  authority,
		queries:    queries,
		maxResults: maxResults,
		logger:     logger,
	}
}

// WithMetrics records search latencies on m
func (r *Retriever) WithMetrics(m *metrics.Metrics) *Retriever {
	r.metrics = m
	return r
}

// Retrieve searches the authoritative tier first and the general web only when
// it found nothing. Each tier gets one attempt. The returned Retrieval is never
// nil; on error it carries the query that was tried.
func (r *Retriever) Retrieve(ctx context.Context, claim model.Claim) (*Retrieval, error) {
	query := r.queries.Build(ctx, claim)
	out := &Retrieval{Query: query}

	tier1, err := r.searchTier(ctx, TierAuthoritative, query, claim.Language, r.authority.AuthoritativeDomains())
	if err != nil {
		out.Tier1Err = &RetrievalError{Tier: TierAuthoritative, Err: err}
		r.logger.Warn("authoritative search failed", "query", query, "error", err)
	} else {
		for _, res := range tier1 {
			if !r.authority.IsAuthoritative(res.URL) {
				continue
			}
			out.Items = append(out.Items, r.item(res, true))
		}
		if len(out.Items) > 0 {
			out.Authoritative = true
			return out, nil
		}
	}

	tier2, err := r.searchTier(ctx, TierGeneral, query, claim.Language, nil)
	if err != nil {
		r.logger.Warn("general search failed", "query", query, "error", err)
		if out.Tier1Err != nil {
			return out, &RetrievalError{Tier: TierGeneral, Total: true, Err: errors.Join(out.Tier1Err, err)}
		}
		return out, &RetrievalError{Tier: TierGeneral, Err: err}
	}

	for _, res := range tier2 {
		out.Items = append(out.Items, r.item(res, false))
	}
	return out, nil
}

func (r *Retriever) searchTier(ctx context.Context, tier, query string, lang model.Language, domains []string) ([]search.Result, error) {
	start := time.Now()
	results, err := r.searcher.Search(ctx, search.Query{
		Text:       query,
		Domains:    domains,
		MaxResults: r.maxResults,
		Language:   lang,
	})
	r.metrics.ObserveSearch(tier, time.Since(start))
	if err != nil {
		return nil, err
	}
	return search.Filter(results, domains, r.maxResults), nil
}

func (r *Retriever) item(res search.Result, authoritative bool) model.EvidenceItem {
	return model.EvidenceItem{
		Title:           res.Title,
		Snippet:         res.Snippet,
		SourceURL:       res.URL,
		IsAuthoritative: authoritative,
		PublishDate:     res.PublishDate,
		Authority:       r.authority.Classify(res.URL),
	}
}
