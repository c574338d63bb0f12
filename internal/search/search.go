// Package search adapts web search providers to a single Searcher interface.
package search

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/util"
	"github.com/ppiankov/credence/internal/validate"
)

// Query is one search request
type Query struct {
	Text       string
	Domains    []string // Restrict results to these domains (and their subdomains)
	MaxResults int
	Language   model.Language
}

// Result is one search hit
type Result struct {
	Title       string
	Snippet     string
	URL         string
	PublishDate *time.Time
}

// Searcher runs web searches. An empty result set is not an error.
type Searcher interface {
	Name() string
	Search(ctx context.Context, q Query) ([]Result, error)
}

// Waiter paces outgoing requests per host
type Waiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// New creates the searcher named in cfg
func New(cfg model.SearchConfig, httpCfg model.HTTPConfig, limiter Waiter) (Searcher, error) {
	client := &http.Client{
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy),
		},
	}

	switch strings.ToLower(cfg.Provider) {
	case "duckduckgo", "ddg", "":
		return NewDuckDuckGo(cfg, httpCfg.UserAgent, client, limiter), nil
	case "searxng", "searx":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("searxng requires search.base_url")
		}
		return NewSearxNG(cfg, httpCfg.UserAgent, client, limiter), nil
	default:
		return nil, fmt.Errorf("unknown search provider: %s (supported: duckduckgo, searxng)", cfg.Provider)
	}
}

// SiteQuery appends a site: restriction for each domain
func SiteQuery(text string, domains []string) string {
	if len(domains) == 0 {
		return text
	}
	sites := make([]string, 0, len(domains))
	for _, d := range domains {
		sites = append(sites, "site:"+d)
	}
	return fmt.Sprintf("%s (%s)", text, strings.Join(sites, " OR "))
}

// Filter keeps results that have a title or snippet, a unique URL, and a host
// inside domains (when domains is non-empty). At most max results are returned.
func Filter(results []Result, domains []string, max int) []Result {
	out := make([]Result, 0, len(results))
	seen := make(map[string]bool)
	for _, r := range results {
		if r.URL == "" || seen[r.URL] {
			continue
		}
		if r.Title == "" && r.Snippet == "" {
			continue
		}
		if len(domains) > 0 && !validate.MatchAny(validate.Host(r.URL), domains) {
			continue
		}
		seen[r.URL] = true
		out = append(out, r)
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out
}

var sanitizer = bluemonday.StrictPolicy()

// cleanText strips markup and collapses whitespace
func cleanText(s string) string {
	s = html.UnescapeString(sanitizer.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

var leadingDatePattern = regexp.MustCompile(`^\s*((?:\d{4}-\d{1,2}-\d{1,2})|(?:[A-Z][a-z]{2,8}\.? \d{1,2}, \d{4})|(?:\d{1,2} [A-Z][a-z]{2,8}\.? \d{4})|(?:\d{4}年\d{1,2}月\d{1,2}日))\s*(?:[·—–-]|\.\.\.)\s*`)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-1-2",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"2006年1月2日",
}

// ParseDate reads the date formats search providers emit. The result is the
// calendar date in the timestamp's own zone, at midnight UTC.
func ParseDate(s string) (*time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	for _, candidate := range []string{s, strings.ReplaceAll(s, ".", "")} {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, candidate); err == nil {
				y, m, d := t.Date()
				date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
				return &date, true
			}
		}
	}
	return nil, false
}

// splitLeadingDate separates a "Jun 10, 2025 · " style prefix from a snippet
func splitLeadingDate(snippet string) (*time.Time, string) {
	m := leadingDatePattern.FindStringSubmatch(snippet)
	if m == nil {
		return nil, snippet
	}
	t, ok := ParseDate(m[1])
	if !ok {
		return nil, snippet
	}
	return t, strings.TrimSpace(snippet[len(m[0]):])
}

func timeoutOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}
