package extract

import (
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/ppiankov/credence/internal/model"
)

// Page is the readable content of a fetched article
type Page struct {
	URL       string
	Title     string
	Author    string
	Published *time.Time
	Content   string
	Language  model.Language
}

// Document renders the page as a labelled document so that the section
// parser sees its title. lang overrides the page's own language unless auto.
func (p *Page) Document(lang model.Language) model.Document {
	var b strings.Builder
	if p.Title != "" {
		b.WriteString("Title: " + p.Title + "\n")
	}
	if p.Author != "" {
		b.WriteString("Author: " + p.Author + "\n")
	}
	if p.Published != nil {
		b.WriteString("Date: " + p.Published.Format(model.DateLayout) + "\n")
	}
	b.WriteString("Content: " + p.Content)

	if lang == "" || lang == model.LangAuto {
		lang = p.Language
	}
	if lang == "" {
		lang = model.LangAuto
	}
	return model.Document{
		Text:          b.String(),
		Language:      lang,
		ReferenceDate: p.Published,
		SourceURL:     p.URL,
	}
}

// Merge fills fields that are still empty from other
func (p *Page) Merge(other *Page) {
	if other == nil {
		return
	}
	if p.URL == "" {
		p.URL = other.URL
	}
	if p.Title == "" {
		p.Title = other.Title
	}
	if p.Author == "" {
		p.Author = other.Author
	}
	if p.Published == nil {
		p.Published = other.Published
	}
	if p.Content == "" {
		p.Content = other.Content
	}
	if p.Language == "" || p.Language == model.LangAuto {
		p.Language = other.Language
	}
}

// Complete reports whether the page has a title and content
func (p *Page) Complete() bool {
	return p.Title != "" && p.Content != ""
}

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "section": true, "article": true, "blockquote": true, "tr": true,
}

// VisibleText extracts text nodes from HTML, skipping scripts and styles.
// Block elements end a line.
func VisibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "nav", "footer", "aside", "form":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.Join(strings.Fields(n.Data), " ")
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && blockElements[n.Data] {
			buf.WriteString("\n")
		}
	}

	walk(n)

	var lines []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// ResolveURL resolves href against base, keeping only http(s) targets
func ResolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if b, err := url.Parse(base); err == nil && base != "" {
		parsed = b.ResolveReference(parsed)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ""
	}
	return parsed.String()
}
