package validate

import (
	"testing"

	"github.com/ppiankov/credence/internal/model"
)

func TestAuthorityClassifier_IsAuthoritative(t *testing.T) {
	classifier := NewAuthorityClassifier(nil) // Use defaults

	tests := []struct {
		url      string
		expected bool
		desc     string
	}{
		{"https://www.mof.gov.tw/news/123", true, "Taiwan ministry subdomain"},
		{"https://www.whitehouse.gov/briefing-room/", true, "US federal .gov"},
		{"https://www.gov.uk/government/news", true, "UK government"},
		{"https://www.mhlw.go.jp/stf/", true, "Japanese ministry"},
		{"https://www.who.int/news/item/1", true, "International organisation"},
		{"https://news.un.org/en/story", true, "UN subdomain"},
		{"https://www.reuters.com/world/", false, "Wire service is not Tier 1"},
		{"https://notgov.tw/fake", false, "Label boundary is respected"},
		{"https://gov.tw.example.com/", false, "Allow-listed label in the middle"},
		{"not a url", false, "Unparseable URL"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := classifier.IsAuthoritative(tt.url); got != tt.expected {
				t.Errorf("Expected %v for %s, got %v", tt.expected, tt.url, got)
			}
		})
	}
}

func TestAuthorityClassifier_Classify(t *testing.T) {
	config := &model.AuthorityConfig{
		OfficialDomains:      []string{"gov.tw"},
		InternationalDomains: []string{"who.int"},
		SecondaryDomains:     []string{"cna.com.tw", "reuters.com"},
		DomainMap: map[string]string{
			"www.reuters.com": "tertiary",
			"factcheck.org":   "secondary",
		},
	}

	classifier := NewAuthorityClassifier(config)

	tests := []struct {
		url      string
		expected model.AuthorityTier
		desc     string
	}{
		{"https://www.cdc.gov.tw/Bulletin", model.TierPrimary, "Official domain"},
		{"https://www.who.int/", model.TierPrimary, "International domain"},
		{"https://www.cna.com.tw/news/1", model.TierSecondary, "Secondary domain"},
		{"https://www.reuters.com/world/", model.TierTertiary, "Explicit domain map wins"},
		{"https://factcheck.org/2025/", model.TierSecondary, "Domain map to secondary"},
		{"https://someblog.example.com/", model.TierTertiary, "Unknown host"},
		{"", model.TierTertiary, "Empty URL"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			result := classifier.Classify(tt.url)
			if result != tt.expected {
				t.Errorf("Expected %v for %s, got %v", tt.expected, tt.url, result)
			}
		})
	}
}

func TestAuthorityClassifier_AuthoritativeDomains(t *testing.T) {
	classifier := NewAuthorityClassifier(&model.AuthorityConfig{
		OfficialDomains:      []string{"GOV.TW", "gov.uk", "gov.tw"},
		InternationalDomains: []string{"who.int"},
	})

	domains := classifier.AuthoritativeDomains()
	expected := []string{"gov.tw", "gov.uk", "who.int"}
	if len(domains) != len(expected) {
		t.Fatalf("Expected %d domains, got %d: %v", len(expected), len(domains), domains)
	}
	for i := range expected {
		if domains[i] != expected[i] {
			t.Errorf("Expected %s at %d, got %s", expected[i], i, domains[i])
		}
	}

	// The returned slice is a copy
	domains[0] = "changed"
	if classifier.AuthoritativeDomains()[0] != "gov.tw" {
		t.Error("Expected AuthoritativeDomains to return a copy")
	}
}

func TestHost(t *testing.T) {
	tests := map[string]string{
		"https://WWW.Example.COM:8443/path": "www.example.com",
		"http://example.com.":               "example.com",
		"/relative/path":                    "",
	}

	for in, expected := range tests {
		if got := Host(in); got != expected {
			t.Errorf("Expected %q for %q, got %q", expected, in, got)
		}
	}
}
