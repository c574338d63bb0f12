package adapters

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/ppiankov/credence/internal/extract"
)

// GenericAdapter reads the article from the page markup. It is the
// fallback for pages without structured data.
type GenericAdapter struct {
	BaseAdapter
}

// NewGenericAdapter creates a new generic adapter
func NewGenericAdapter() *GenericAdapter {
	return &GenericAdapter{}
}

// Name returns the adapter name
func (a *GenericAdapter) Name() string {
	return "generic"
}

// CanHandle always returns true (fallback adapter)
func (a *GenericAdapter) CanHandle(url string, contentType string) bool {
	return true
}

// Extract takes the first h1 (or the document title) as the title, the
// first <time datetime> as the publication time and the visible text of
// <article>, <main> or <body> as the content
func (a *GenericAdapter) Extract(doc *html.Node, url string) (*extract.Page, error) {
	page := &extract.Page{}

	if h1 := a.FindFirst(doc, element("h1")); h1 != nil {
		page.Title = a.ExtractText(h1)
	}
	if page.Title == "" {
		if title := a.FindFirst(doc, element("title")); title != nil {
			page.Title = a.ExtractText(title)
		}
	}

	for _, n := range a.FindAll(doc, element("time")) {
		if t := parseTime(a.GetAttribute(n, "datetime")); t != nil {
			page.Published = t
			break
		}
	}

	byline := a.FindFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode &&
			(a.GetAttribute(n, "rel") == "author" || a.HasClass(n, "author") || a.HasClass(n, "byline"))
	})
	if byline != nil {
		page.Author = a.ExtractText(byline)
	}

	for _, tag := range []string{"article", "main", "body"} {
		if n := a.FindFirst(doc, element(tag)); n != nil {
			if text := extract.VisibleText(n); text != "" {
				page.Content = a.stripTitle(text, page.Title)
				break
			}
		}
	}

	return page, nil
}

// stripTitle drops the heading line when the content starts with it
func (a *GenericAdapter) stripTitle(content, title string) string {
	if title == "" {
		return content
	}
	head, rest, ok := strings.Cut(content, "\n")
	if ok && strings.TrimSpace(head) == title {
		return rest
	}
	return content
}
