package adapters

import (
	"encoding/json"
	"strings"

	"golang.org/x/net/html"

	"github.com/ppiankov/credence/internal/extract"
	"github.com/ppiankov/credence/internal/model"
)

var articleTypes = map[string]bool{
	"Article":              true,
	"NewsArticle":          true,
	"ReportageNewsArticle": true,
	"AnalysisNewsArticle":  true,
	"BlogPosting":          true,
	"Report":               true,
}

// JSONLDAdapter reads schema.org article objects from ld+json scripts
type JSONLDAdapter struct {
	BaseAdapter
}

// NewJSONLDAdapter creates a new JSON-LD adapter
func NewJSONLDAdapter() *JSONLDAdapter {
	return &JSONLDAdapter{}
}

// Name returns the adapter name
func (a *JSONLDAdapter) Name() string {
	return "jsonld"
}

// CanHandle applies to any HTML page
func (a *JSONLDAdapter) CanHandle(url string, contentType string) bool {
	return contentType == "" || strings.Contains(contentType, "html")
}

// Extract returns the first article object found in the page
func (a *JSONLDAdapter) Extract(doc *html.Node, url string) (*extract.Page, error) {
	scripts := a.FindAll(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "script" &&
			strings.EqualFold(a.GetAttribute(n, "type"), "application/ld+json")
	})

	for _, script := range scripts {
		if script.FirstChild == nil {
			continue
		}
		var raw any
		if err := json.Unmarshal([]byte(script.FirstChild.Data), &raw); err != nil {
			continue
		}
		if obj := findArticle(raw); obj != nil {
			return pageFromArticle(obj), nil
		}
	}
	return &extract.Page{}, nil
}

// findArticle walks arrays and @graph containers for an article object
func findArticle(v any) map[string]any {
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if obj := findArticle(item); obj != nil {
				return obj
			}
		}
	case map[string]any:
		if isArticle(t["@type"]) {
			return t
		}
		if graph, ok := t["@graph"]; ok {
			return findArticle(graph)
		}
	}
	return nil
}

func isArticle(v any) bool {
	switch t := v.(type) {
	case string:
		return articleTypes[t]
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && articleTypes[s] {
				return true
			}
		}
	}
	return false
}

func pageFromArticle(obj map[string]any) *extract.Page {
	page := &extract.Page{
		Title:   stringField(obj["headline"]),
		Author:  authorName(obj["author"]),
		Content: strings.TrimSpace(stringField(obj["articleBody"])),
	}
	if page.Title == "" {
		page.Title = stringField(obj["name"])
	}
	page.Published = parseTime(stringField(obj["datePublished"]))
	if page.Published == nil {
		page.Published = parseTime(stringField(obj["dateCreated"]))
	}
	if lang := stringField(obj["inLanguage"]); lang != "" {
		page.Language = model.ParseLanguage(lang)
	}
	return page
}

func stringField(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// authorName accepts a name, a Person object or a list of either
func authorName(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		return stringField(t["name"])
	case []any:
		var names []string
		for _, item := range t {
			if name := authorName(item); name != "" {
				names = append(names, name)
			}
		}
		return strings.Join(names, ", ")
	}
	return ""
}
