package model

import (
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Claim represents an independently verifiable statement extracted from a document
type Claim struct {
	Text          string     `json:"text"`                      // Quote or close paraphrase of the source
	Kind          ClaimKind  `json:"kind"`                      // title, detail, or claim
	Language      Language   `json:"language"`                  // Response language for model calls
	SourceRefDate *time.Time `json:"source_ref_date,omitempty"` // Anchor for relative time expressions
}

// ClaimKind distinguishes the news headline from its details and general claims
type ClaimKind string

const (
	KindTitle  ClaimKind = "title"  // News headline, judged from its details
	KindDetail ClaimKind = "detail" // Verifiable detail of a news headline
	KindClaim  ClaimKind = "claim"  // Flat claim from general text
)

// Language is the target language for extraction prompts and explanations
type Language string

const (
	LangZhTW Language = "zh-TW"
	LangEn   Language = "en"
	LangAuto Language = "auto"
)

// ParseLanguage maps BCP 47 tags to a supported Language. Chinese is taken as
// Traditional unless a Simplified script or a mainland region is given.
// Unknown or empty values map to LangAuto.
func ParseLanguage(s string) Language {
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", "-")
	if s == "" || strings.EqualFold(s, string(LangAuto)) {
		return LangAuto
	}

	tag, err := language.Parse(s)
	if err != nil {
		return LangAuto
	}
	base, script, region := tag.Raw()
	switch base.String() {
	case "zh":
		if script.String() == "Hans" || region.String() == "CN" || region.String() == "SG" {
			return LangAuto
		}
		return LangZhTW
	case "en":
		return LangEn
	default:
		return LangAuto
	}
}

// Mode selects news-mode (title + details) or general-mode (flat claims) extraction
type Mode string

const (
	ModeAuto    Mode = ""
	ModeNews    Mode = "news"
	ModeGeneral Mode = "general"
)

// Document is the raw input handed to the pipeline
type Document struct {
	Text          string     `json:"text"`
	Language      Language   `json:"language"`
	ReferenceDate *time.Time `json:"reference_date,omitempty"` // Publish date of the document, if known
	Mode          Mode       `json:"mode,omitempty"`           // Caller-declared mode; empty means detect
	SourceURL     string     `json:"source_url,omitempty"`
}
