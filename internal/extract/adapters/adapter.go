// Package adapters reads article metadata and body text out of HTML pages.
package adapters

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/ppiankov/credence/internal/extract"
	"github.com/ppiankov/credence/internal/model"
)

// ErrNoContent is returned when no adapter found readable article text
var ErrNoContent = errors.New("no article content found")

// Adapter reads what it can from one kind of page markup
type Adapter interface {
	// Name returns the adapter name
	Name() string

	// CanHandle checks if this adapter applies to the given URL/content
	CanHandle(url string, contentType string) bool

	// Extract returns the fields the adapter found; missing fields stay empty
	Extract(doc *html.Node, url string) (*extract.Page, error)
}

// Registry runs adapters in order and merges their results. Earlier
// adapters win for fields more than one of them fills.
type Registry struct {
	adapters []Adapter
	logger   *slog.Logger
}

// NewRegistry creates a registry with the built-in adapters:
// structured data first, then meta tags, then the markup itself
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	registry := &Registry{logger: logger}

	registry.Register(NewJSONLDAdapter())
	registry.Register(NewMetaAdapter())
	registry.Register(NewGenericAdapter())

	return registry
}

// Register appends an adapter
func (r *Registry) Register(adapter Adapter) {
	r.adapters = append(r.adapters, adapter)
}

// Extract parses htmlContent and merges every applicable adapter's result
func (r *Registry) Extract(htmlContent, url, contentType string) (*extract.Page, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return r.ExtractNode(doc, url, contentType)
}

// ExtractNode merges every applicable adapter's result for a parsed document
func (r *Registry) ExtractNode(doc *html.Node, url, contentType string) (*extract.Page, error) {
	page := &extract.Page{}
	for _, adapter := range r.adapters {
		if !adapter.CanHandle(url, contentType) {
			continue
		}
		found, err := adapter.Extract(doc, url)
		if err != nil {
			r.logger.Debug("adapter failed", "adapter", adapter.Name(), "url", url, "error", err)
			continue
		}
		page.Merge(found)
	}

	if page.URL == "" {
		page.URL = url
	}
	if page.Language == "" {
		page.Language = model.LangAuto
	}
	if strings.TrimSpace(page.Content) == "" {
		return nil, fmt.Errorf("%s: %w", url, ErrNoContent)
	}
	return page, nil
}

// BaseAdapter provides common functionality for adapters
type BaseAdapter struct{}

// ExtractText extracts text content from a node with whitespace collapsed
func (b *BaseAdapter) ExtractText(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteString(" ")
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

// HasClass checks if a node has a CSS class containing className
func (b *BaseAdapter) HasClass(n *html.Node, className string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, class := range strings.Fields(b.GetAttribute(n, "class")) {
		if strings.Contains(strings.ToLower(class), className) {
			return true
		}
	}
	return false
}

// GetAttribute gets an attribute value from a node
func (b *BaseAdapter) GetAttribute(n *html.Node, attrKey string) string {
	for _, attr := range n.Attr {
		if attr.Key == attrKey {
			return attr.Val
		}
	}
	return ""
}

// FindAll finds all nodes matching a predicate
func (b *BaseAdapter) FindAll(n *html.Node, predicate func(*html.Node) bool) []*html.Node {
	var results []*html.Node

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if predicate(node) {
			results = append(results, node)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return results
}

// FindFirst finds the first node matching a predicate
func (b *BaseAdapter) FindFirst(n *html.Node, predicate func(*html.Node) bool) *html.Node {
	var result *html.Node

	var walk func(*html.Node) bool
	walk = func(node *html.Node) bool {
		if predicate(node) {
			result = node
			return true
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}

	walk(n)
	return result
}

// element returns a predicate matching element nodes with the given tag
func element(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == tag
	}
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	model.DateLayout,
	"2006/01/02",
	time.RFC1123Z,
	time.RFC1123,
}

// parseTime reads the timestamp formats found in article markup
func parseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
