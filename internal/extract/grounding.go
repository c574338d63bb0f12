package extract

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// tokens splits text into matching units: lower-cased words for alphabetic
// scripts and character bigrams for Han text
func tokens(text string) []string {
	text = strings.ToLower(norm.NFKC.String(text))

	var out []string
	var word strings.Builder
	var han []rune

	flushWord := func() {
		if word.Len() > 0 {
			out = append(out, word.String())
			word.Reset()
		}
	}
	flushHan := func() {
		switch len(han) {
		case 0:
		case 1:
			out = append(out, string(han))
		default:
			for i := 0; i+1 < len(han); i++ {
				out = append(out, string(han[i:i+2]))
			}
		}
		han = han[:0]
	}

	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			flushWord()
			han = append(han, r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			flushHan()
			word.WriteRune(r)
		default:
			flushWord()
			flushHan()
		}
	}
	flushWord()
	flushHan()
	return out
}

// Grounding returns the share of the claim's tokens that also occur in the source
func Grounding(claim, source string) float64 {
	claimTokens := tokens(claim)
	if len(claimTokens) == 0 {
		return 0
	}

	present := make(map[string]bool)
	for _, t := range tokens(source) {
		present[t] = true
	}

	hits := 0
	for _, t := range claimTokens {
		if present[t] {
			hits++
		}
	}
	return float64(hits) / float64(len(claimTokens))
}

// hanShare returns the share of letters in text that are Han characters
func hanShare(text string) float64 {
	letters, han := 0, 0
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.Is(unicode.Han, r) {
			han++
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(han) / float64(letters)
}

// sameScript reports whether both texts are mostly Han or both mostly not.
// Grounding is only meaningful between texts in the same script.
func sameScript(a, b string) bool {
	return (hanShare(a) > 0.5) == (hanShare(b) > 0.5)
}
