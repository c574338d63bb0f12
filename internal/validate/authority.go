package validate

import (
	"net/url"
	"strings"

	"github.com/ppiankov/credence/internal/model"
)

// AuthorityClassifier classifies sources into authority tiers and decides
// which hosts belong to the Tier 1 (authoritative) allow-list
type AuthorityClassifier struct {
	config        *model.AuthorityConfig
	authoritative []string
	secondary     []string
	domainMap     map[string]model.AuthorityTier
}

// NewAuthorityClassifier creates a new authority classifier
func NewAuthorityClassifier(config *model.AuthorityConfig) *AuthorityClassifier {
	if config == nil {
		config = &model.DefaultConfig().Authority
	}

	classifier := &AuthorityClassifier{
		config:    config,
		domainMap: make(map[string]model.AuthorityTier),
	}

	seen := make(map[string]bool)
	for _, list := range [][]string{config.OfficialDomains, config.InternationalDomains} {
		for _, domain := range list {
			domain = normalizeDomain(domain)
			if domain == "" || seen[domain] {
				continue
			}
			seen[domain] = true
			classifier.authoritative = append(classifier.authoritative, domain)
		}
	}

	for _, domain := range config.SecondaryDomains {
		if domain = normalizeDomain(domain); domain != "" {
			classifier.secondary = append(classifier.secondary, domain)
		}
	}

	for host, tier := range config.DomainMap {
		classifier.domainMap[normalizeDomain(host)] = parseTierString(tier)
	}

	return classifier
}

// AuthoritativeDomains returns the Tier 1 allow-list (official and international
// domains) in configuration order
func (a *AuthorityClassifier) AuthoritativeDomains() []string {
	out := make([]string, len(a.authoritative))
	copy(out, a.authoritative)
	return out
}

// IsAuthoritative reports whether the URL's host is on the Tier 1 allow-list
func (a *AuthorityClassifier) IsAuthoritative(rawURL string) bool {
	host := Host(rawURL)
	if host == "" {
		return false
	}
	return MatchAny(host, a.authoritative)
}

// Classify classifies a URL into an authority tier
func (a *AuthorityClassifier) Classify(rawURL string) model.AuthorityTier {
	host := Host(rawURL)
	if host == "" {
		return model.TierTertiary
	}

	// Explicit mappings win
	if tier, ok := a.domainMap[host]; ok {
		return tier
	}

	if MatchAny(host, a.authoritative) {
		return model.TierPrimary
	}

	if MatchAny(host, a.secondary) {
		return model.TierSecondary
	}

	return model.TierTertiary
}

// Host returns the lower-cased host of rawURL without port, or "" when it has none
func Host(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return normalizeDomain(parsed.Hostname())
}

// MatchDomain reports whether host equals domain or is a subdomain of it.
// Matching is on whole labels: "mof.gov.tw" matches "gov.tw", "notgov.tw" does not.
func MatchDomain(host, domain string) bool {
	host, domain = normalizeDomain(host), normalizeDomain(domain)
	if host == "" || domain == "" {
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// MatchAny reports whether host matches any of domains
func MatchAny(host string, domains []string) bool {
	for _, domain := range domains {
		if MatchDomain(host, domain) {
			return true
		}
	}
	return false
}

func normalizeDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	domain = strings.TrimPrefix(domain, "*.")
	domain = strings.TrimPrefix(domain, ".")
	return strings.TrimSuffix(domain, ".")
}

// parseTierString converts a tier string to AuthorityTier
func parseTierString(tier string) model.AuthorityTier {
	switch strings.ToLower(tier) {
	case "primary", "1":
		return model.TierPrimary
	case "secondary", "2":
		return model.TierSecondary
	default:
		return model.TierTertiary
	}
}
