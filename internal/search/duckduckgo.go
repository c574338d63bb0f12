package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/ppiankov/credence/internal/model"
)

const duckDuckGoURL = "https://html.duckduckgo.com/html/"

// DuckDuckGo searches the DuckDuckGo HTML endpoint and parses the result page
type DuckDuckGo struct {
	baseURL    string
	region     string
	userAgent  string
	timeout    time.Duration
	maxResults int
	client     *http.Client
	limiter    Waiter
}

// NewDuckDuckGo creates a DuckDuckGo searcher. limiter may be nil.
func NewDuckDuckGo(cfg model.SearchConfig, userAgent string, client *http.Client, limiter Waiter) *DuckDuckGo {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = duckDuckGoURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &DuckDuckGo{
		baseURL:    baseURL,
		region:     cfg.Region,
		userAgent:  userAgent,
		timeout:    timeoutOr(cfg.Timeout, 20*time.Second),
		maxResults: cfg.MaxResults,
		client:     client,
		limiter:    limiter,
	}
}

// Name returns the provider name
func (d *DuckDuckGo) Name() string { return "duckduckgo" }

// Search runs one query. A single attempt is made.
func (d *DuckDuckGo) Search(ctx context.Context, q Query) ([]Result, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx, d.baseURL); err != nil {
			return nil, fmt.Errorf("duckduckgo rate limit: %w", err)
		}
	}

	form := url.Values{}
	form.Set("q", SiteQuery(q.Text, q.Domains))
	if region := d.regionFor(q.Language); region != "" {
		form.Set("kl", region)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html")
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo search: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// 202 is served with a challenge page instead of results
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo search: unexpected status %d", resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("parse duckduckgo results: %w", err)
	}

	max := q.MaxResults
	if max <= 0 {
		max = d.maxResults
	}
	return Filter(parseDuckDuckGo(doc), q.Domains, max), nil
}

func (d *DuckDuckGo) regionFor(lang model.Language) string {
	if d.region != "" {
		return d.region
	}
	switch lang {
	case model.LangZhTW:
		return "tw-tzh"
	case model.LangEn:
		return "us-en"
	}
	return ""
}

// parseDuckDuckGo walks the result page: each div.result holds an a.result__a
// link and an .result__snippet
func parseDuckDuckGo(doc *html.Node) []Result {
	var results []Result
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "div" && hasClass(n, "result") && !hasClass(n, "result--ad") {
			if r, ok := parseDuckDuckGoResult(n); ok {
				results = append(results, r)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return results
}

func parseDuckDuckGoResult(n *html.Node) (Result, bool) {
	link := findElement(n, func(e *html.Node) bool { return e.Data == "a" && hasClass(e, "result__a") })
	if link == nil {
		return Result{}, false
	}
	target := resolveDuckDuckGoURL(attr(link, "href"))
	if target == "" {
		return Result{}, false
	}

	r := Result{
		Title: cleanText(textContent(link)),
		URL:   target,
	}
	if snippet := findElement(n, func(e *html.Node) bool { return hasClass(e, "result__snippet") }); snippet != nil {
		r.PublishDate, r.Snippet = splitLeadingDate(cleanText(textContent(snippet)))
	}
	if r.PublishDate == nil {
		if ts := findElement(n, func(e *html.Node) bool { return hasClass(e, "result__timestamp") }); ts != nil {
			r.PublishDate, _ = ParseDate(cleanText(textContent(ts)))
		}
	}
	return r, true
}

// resolveDuckDuckGoURL unwraps the /l/?uddg= redirect links
func resolveDuckDuckGoURL(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && match(c) {
			return c
		}
		if found := findElement(c, match); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
