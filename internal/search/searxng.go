package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/credence/internal/model"
)

// SearxNG queries a SearxNG instance through its JSON API
type SearxNG struct {
	baseURL    string
	userAgent  string
	timeout    time.Duration
	maxResults int
	client     *http.Client
	limiter    Waiter
}

type searxResponse struct {
	Results []searxResult `json:"results"`
}

type searxResult struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Content       string `json:"content"`
	PublishedDate string `json:"publishedDate"`
}

// NewSearxNG creates a SearxNG searcher. limiter may be nil.
func NewSearxNG(cfg model.SearchConfig, userAgent string, client *http.Client, limiter Waiter) *SearxNG {
	if client == nil {
		client = http.DefaultClient
	}
	return &SearxNG{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		userAgent:  userAgent,
		timeout:    timeoutOr(cfg.Timeout, 20*time.Second),
		maxResults: cfg.MaxResults,
		client:     client,
		limiter:    limiter,
	}
}

// Name returns the provider name
func (s *SearxNG) Name() string { return "searxng" }

// Search runs one query. A single attempt is made.
func (s *SearxNG) Search(ctx context.Context, q Query) ([]Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	endpoint := s.baseURL + "/search"
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, endpoint); err != nil {
			return nil, fmt.Errorf("searxng rate limit: %w", err)
		}
	}

	params := url.Values{}
	params.Set("q", SiteQuery(q.Text, q.Domains))
	params.Set("format", "json")
	switch q.Language {
	case model.LangZhTW, model.LangEn:
		params.Set("language", string(q.Language))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("searxng search: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read searxng response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("searxng search: unexpected status %d", resp.StatusCode)
	}

	var parsed searxResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal searxng response: %w", err)
	}

	results := make([]Result, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		result := Result{
			Title:   cleanText(r.Title),
			Snippet: cleanText(r.Content),
			URL:     r.URL,
		}
		result.PublishDate, _ = ParseDate(r.PublishedDate)
		results = append(results, result)
	}

	max := q.MaxResults
	if max <= 0 {
		max = s.maxResults
	}
	return Filter(results, q.Domains, max), nil
}
