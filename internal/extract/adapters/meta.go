package adapters

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/ppiankov/credence/internal/extract"
	"github.com/ppiankov/credence/internal/model"
)

// Meta keys in priority order
var (
	titleKeys     = []string{"og:title", "twitter:title", "title"}
	authorKeys    = []string{"author", "article:author", "byl", "dc.creator"}
	publishedKeys = []string{"article:published_time", "og:article:published_time", "pubdate", "publishdate", "date", "dc.date"}
	localeKeys    = []string{"og:locale", "content-language"}
)

// MetaAdapter reads Open Graph and standard meta tags
type MetaAdapter struct {
	BaseAdapter
}

// NewMetaAdapter creates a new meta tag adapter
func NewMetaAdapter() *MetaAdapter {
	return &MetaAdapter{}
}

// Name returns the adapter name
func (a *MetaAdapter) Name() string {
	return "meta"
}

// CanHandle applies to any HTML page
func (a *MetaAdapter) CanHandle(url string, contentType string) bool {
	return contentType == "" || strings.Contains(contentType, "html")
}

// Extract reads the title, author, publication time, language and
// canonical URL from the document head
func (a *MetaAdapter) Extract(doc *html.Node, url string) (*extract.Page, error) {
	meta := make(map[string]string)
	for _, n := range a.FindAll(doc, element("meta")) {
		key := a.GetAttribute(n, "property")
		if key == "" {
			key = a.GetAttribute(n, "name")
		}
		if key == "" {
			key = a.GetAttribute(n, "http-equiv")
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value := strings.TrimSpace(a.GetAttribute(n, "content"))
		if key == "" || value == "" {
			continue
		}
		if _, ok := meta[key]; !ok {
			meta[key] = value
		}
	}

	page := &extract.Page{
		Title: first(meta, titleKeys),
	}

	// article:author is often a profile URL
	if author := first(meta, authorKeys); !strings.HasPrefix(author, "http") {
		page.Author = author
	}

	for _, key := range publishedKeys {
		if t := parseTime(meta[key]); t != nil {
			page.Published = t
			break
		}
	}

	lang := ""
	if root := a.FindFirst(doc, element("html")); root != nil {
		lang = a.GetAttribute(root, "lang")
	}
	if lang == "" {
		lang = first(meta, localeKeys)
	}
	if lang != "" {
		page.Language = model.ParseLanguage(lang)
	}

	canonical := a.FindFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "link" &&
			strings.EqualFold(a.GetAttribute(n, "rel"), "canonical")
	})
	if canonical != nil {
		page.URL = extract.ResolveURL(url, a.GetAttribute(canonical, "href"))
	}

	return page, nil
}

func first(meta map[string]string, keys []string) string {
	for _, key := range keys {
		if v := meta[key]; v != "" {
			return v
		}
	}
	return ""
}
