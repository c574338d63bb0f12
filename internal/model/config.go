package model

import "time"

// Config is threaded explicitly through the pipeline. Nothing below the CLI
// and server layers reads process state.
type Config struct {
	LLM          LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Search       SearchConfig      `yaml:"search" mapstructure:"search"`
	Extract      ExtractConfig     `yaml:"extract" mapstructure:"extract"`
	Temporal     TemporalConfig    `yaml:"temporal" mapstructure:"temporal"`
	Tally        TallyConfig       `yaml:"tally" mapstructure:"tally"`
	Verify       VerifyConfig      `yaml:"verify" mapstructure:"verify"`
	Authority    AuthorityConfig   `yaml:"authority" mapstructure:"authority"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	HTTP         HTTPConfig        `yaml:"http" mapstructure:"http"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Server       ServerConfig      `yaml:"server" mapstructure:"server"`
	Output       OutputConfig      `yaml:"output" mapstructure:"output"`
}

// LLMConfig configures the language-model collaborator
type LLMConfig struct {
	Provider    string        `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama
	Model       string        `yaml:"model" mapstructure:"model"`
	APIKey      string        `yaml:"api_key,omitempty" mapstructure:"api_key"` // Prefer OPENAI_API_KEY / ANTHROPIC_API_KEY
	BaseURL     string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32       `yaml:"temperature" mapstructure:"temperature"`
}

// SearchConfig configures the search collaborator and query construction
type SearchConfig struct {
	Provider      string        `yaml:"provider" mapstructure:"provider"` // duckduckgo, searxng
	BaseURL       string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	MaxResults    int           `yaml:"max_results" mapstructure:"max_results"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Region        string        `yaml:"region,omitempty" mapstructure:"region"`
	ModelQueries  bool          `yaml:"model_queries" mapstructure:"model_queries"` // Ask the model for search keywords
	MaxQueryTerms int           `yaml:"max_query_terms" mapstructure:"max_query_terms"`
}

// ExtractConfig bounds claim extraction
type ExtractConfig struct {
	MaxDetails    int     `yaml:"max_details" mapstructure:"max_details"`
	MaxClaims     int     `yaml:"max_claims" mapstructure:"max_claims"`
	MinGrounding  float64 `yaml:"min_grounding" mapstructure:"min_grounding"` // 0 disables the grounding check
	MaxInputChars int     `yaml:"max_input_chars" mapstructure:"max_input_chars"`
}

// Stale evidence policies
const (
	StalePolicyDownweight = "downweight" // Classify, show in breakdown, weigh by StaleWeight in the tally
	StalePolicyExclude    = "exclude"    // Do not classify, count as irrelevant
)

// TemporalConfig configures time normalization and the relevance checker
type TemporalConfig struct {
	StaleMargin   time.Duration `yaml:"stale_margin" mapstructure:"stale_margin"`
	StalePolicy   string        `yaml:"stale_policy" mapstructure:"stale_policy"`
	StaleWeight   float64       `yaml:"stale_weight" mapstructure:"stale_weight"`
	UndatedWeight float64       `yaml:"undated_weight" mapstructure:"undated_weight"`
	RecentDays    int           `yaml:"recent_days" mapstructure:"recent_days"`
	DistantYears  int           `yaml:"distant_years" mapstructure:"distant_years"`
	ModelFallback bool          `yaml:"model_fallback" mapstructure:"model_fallback"` // Ask the model when rules do not match
}

// TallyConfig holds the tie-break thresholds
type TallyConfig struct {
	Margin       float64 `yaml:"margin" mapstructure:"margin"`               // support-refute needed for a verdict
	MinVotes     float64 `yaml:"min_votes" mapstructure:"min_votes"`         // minimum winning votes
	StrongMargin float64 `yaml:"strong_margin" mapstructure:"strong_margin"` // refute-support for a strong contradiction
}

// VerifyConfig configures per-claim verification output
type VerifyConfig struct {
	MinSources int  `yaml:"min_sources" mapstructure:"min_sources"` // Warn below this many usable items
	Narrate    bool `yaml:"narrate" mapstructure:"narrate"`         // Model-written explanation text
}

// AuthorityConfig holds the Tier 1 allow-list and tier mappings
type AuthorityConfig struct {
	OfficialDomains      []string          `yaml:"official_domains" mapstructure:"official_domains"`
	InternationalDomains []string          `yaml:"international_domains" mapstructure:"international_domains"`
	SecondaryDomains     []string          `yaml:"secondary_domains" mapstructure:"secondary_domains"`
	DomainMap            map[string]string `yaml:"domain_map,omitempty" mapstructure:"domain_map"` // host -> primary/secondary/tertiary
}

// ConcurrencyConfig sizes the worker pools
type ConcurrencyConfig struct {
	ClaimWorkers  int `yaml:"claim_workers" mapstructure:"claim_workers"`
	StanceWorkers int `yaml:"stance_workers" mapstructure:"stance_workers"`
	BatchWorkers  int `yaml:"batch_workers" mapstructure:"batch_workers"`
}

// HTTPConfig configures page fetching for URL input
type HTTPConfig struct {
	Timeout        time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent      string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy      string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy     string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy        string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
	RespectRobots  bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	RobotsCacheTTL time.Duration `yaml:"robots_cache_ttl" mapstructure:"robots_cache_ttl"`
	Render         bool          `yaml:"render" mapstructure:"render"` // Headless Chrome instead of plain GET
}

// RateLimitConfig configures per-host rate limiting of search calls
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// ServerConfig configures the HTTP entry point
type ServerConfig struct {
	Addr           string   `yaml:"addr" mapstructure:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// OutputConfig configures report rendering
type OutputConfig struct {
	Verbose         bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeEvidence bool `yaml:"include_evidence" mapstructure:"include_evidence"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Timeout:     120 * time.Second,
			MaxTokens:   1000,
			Temperature: 0.1,
		},
		Search: SearchConfig{
			Provider:      "duckduckgo",
			MaxResults:    10,
			Timeout:       20 * time.Second,
			ModelQueries:  true,
			MaxQueryTerms: 8,
		},
		Extract: ExtractConfig{
			MaxDetails:    4,
			MaxClaims:     5,
			MinGrounding:  0.3,
			MaxInputChars: 8000,
		},
		Temporal: TemporalConfig{
			StaleMargin:   0,
			StalePolicy:   StalePolicyDownweight,
			StaleWeight:   0,
			UndatedWeight: 1,
			RecentDays:    7,
			DistantYears:  10,
			ModelFallback: true,
		},
		Tally: TallyConfig{
			Margin:       1,
			MinVotes:     1,
			StrongMargin: 2,
		},
		Verify: VerifyConfig{
			MinSources: 3,
		},
		Authority: AuthorityConfig{
			OfficialDomains: []string{
				"gov", "mil",
				"gov.tw", "gov.uk", "gov.au", "gov.cn", "gov.hk", "gov.sg", "gov.in", "gov.za",
				"go.jp", "go.kr", "gc.ca", "gouv.fr", "bund.de", "govt.nz", "gob.mx", "gov.br",
				"europa.eu",
			},
			InternationalDomains: []string{
				"who.int", "un.org", "worldbank.org", "imf.org", "oecd.org", "wto.org",
				"unicef.org", "unesco.org", "ilo.org", "iaea.org", "wmo.int", "nato.int",
			},
			SecondaryDomains: []string{
				"reuters.com", "apnews.com", "bbc.co.uk", "bbc.com", "cna.com.tw",
				"pts.org.tw", "nhk.or.jp", "afp.com",
			},
		},
		Concurrency: ConcurrencyConfig{
			ClaimWorkers:  4,
			StanceWorkers: 4,
			BatchWorkers:  2,
		},
		HTTP: HTTPConfig{
			Timeout:        30 * time.Second,
			UserAgent:      "Credence/0.1 (+https://github.com/ppiankov/credence)",
			MaxBodyBytes:   2_000_000,
			RespectRobots:  true,
			RobotsCacheTTL: time.Hour,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 1,
			BurstSize:         2,
		},
		Server: ServerConfig{
			Addr:           ":8000",
			AllowedOrigins: []string{"*"},
		},
		Output: OutputConfig{
			IncludeEvidence: true,
		},
	}
}
