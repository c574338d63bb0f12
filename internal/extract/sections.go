package extract

import (
	"regexp"
	"strings"

	"github.com/ppiankov/credence/internal/model"
)

// Sections are the labelled parts of a submitted document
type Sections struct {
	Title   string
	Author  string
	Date    string
	Content string
}

// SectionStrategy locates sections in raw text
type SectionStrategy interface {
	Name() string
	Parse(text string) (Sections, bool)
}

type field int

const (
	fieldTitle field = iota
	fieldAuthor
	fieldDate
	fieldContent
)

// labelStrategy reads "Label: value" lines. Everything after the content
// label, including later lines, belongs to the content.
type labelStrategy struct {
	name    string
	pattern *regexp.Regexp
	labels  map[string]field
}

func newLabelStrategy(name string, labels map[string]field) *labelStrategy {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, regexp.QuoteMeta(k))
	}
	return &labelStrategy{
		name:    name,
		pattern: regexp.MustCompile(`(?i)^\s*(` + strings.Join(keys, "|") + `)\s*[:：]\s*(.*)$`),
		labels:  labels,
	}
}

func (s *labelStrategy) Name() string { return s.name }

func (s *labelStrategy) Parse(text string) (Sections, bool) {
	var out Sections
	var content []string
	inContent := false
	found := false

	for _, line := range strings.Split(text, "\n") {
		m := s.pattern.FindStringSubmatch(line)
		if m == nil {
			if inContent {
				content = append(content, line)
			}
			continue
		}

		f := s.labels[strings.ToLower(m[1])]
		value := strings.TrimSpace(m[2])
		found = true
		inContent = false
		switch f {
		case fieldTitle:
			out.Title = value
		case fieldAuthor:
			out.Author = value
		case fieldDate:
			out.Date = value
		case fieldContent:
			inContent = true
			content = append(content, value)
		}
	}

	out.Content = strings.TrimSpace(strings.Join(content, "\n"))
	if !found || (out.Title == "" && out.Content == "") {
		return Sections{}, false
	}
	return out, true
}

// headingStrategy takes a leading markdown heading (up to three levels) as
// the title. A "#" without a following space is a hashtag, not a heading.
type headingStrategy struct{}

var headingPattern = regexp.MustCompile(`^#{1,3}[ \t]+(\S.*)$`)

func (headingStrategy) Name() string { return "markdown_heading" }

func (headingStrategy) Parse(text string) (Sections, bool) {
	text = strings.TrimSpace(text)
	first, rest, _ := strings.Cut(text, "\n")
	m := headingPattern.FindStringSubmatch(strings.TrimRight(first, " \t\r"))
	if m == nil {
		return Sections{}, false
	}
	title := strings.TrimSpace(strings.TrimRight(m[1], "#"))
	if title == "" {
		return Sections{}, false
	}
	return Sections{Title: title, Content: strings.TrimSpace(rest)}, true
}

// DefaultSectionStrategies returns the strategies in the order they are tried
func DefaultSectionStrategies() []SectionStrategy {
	return []SectionStrategy{
		newLabelStrategy("labels", map[string]field{
			"title":   fieldTitle,
			"author":  fieldAuthor,
			"date":    fieldDate,
			"content": fieldContent,
		}),
		newLabelStrategy("labels_zh", map[string]field{
			"標題": fieldTitle,
			"标题": fieldTitle,
			"作者": fieldAuthor,
			"日期": fieldDate,
			"內容": fieldContent,
			"内容": fieldContent,
		}),
		headingStrategy{},
	}
}

var defaultSectionStrategies = DefaultSectionStrategies()

// ParseSections tries each strategy in order; the first success wins.
// Text no strategy understands is returned as content.
func ParseSections(text string) Sections {
	for _, s := range defaultSectionStrategies {
		if sections, ok := s.Parse(text); ok {
			return sections
		}
	}
	return Sections{Content: strings.TrimSpace(text)}
}

// DetectMode picks news mode when the document has both a title and a body
func DetectMode(s Sections) model.Mode {
	if s.Title != "" && s.Content != "" {
		return model.ModeNews
	}
	return model.ModeGeneral
}
