package llm

import (
	"context"
	"strings"
	"time"

	"github.com/ppiankov/credence/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends one prompt and returns the raw model text
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Tasks label completion requests for logging and metrics
const (
	TaskExtract = "extract"
	TaskQuery   = "query"
	TaskTime    = "time"
	TaskStance  = "stance"
	TaskExplain = "explain"
)

// CompletionRequest contains the input for one model call
type CompletionRequest struct {
	// Task names the pipeline stage issuing the call
	Task string

	// System is the system instruction
	System string

	// Prompt is the user message
	Prompt string

	// Language selects the response-language instruction appended to System
	Language model.Language

	// MaxTokens limits the response length (0 uses the provider default)
	MaxTokens int

	// Timeout bounds this call (0 uses the provider default)
	Timeout time.Duration
}

// CompletionResponse contains the model output
type CompletionResponse struct {
	// Text is the raw response text
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout time.Duration

	// MaxTokens for response generation
	MaxTokens int

	// Temperature for sampling
	Temperature float32

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "", // Disabled by default
		Timeout:     120 * time.Second,
		MaxTokens:   1000,
		Temperature: 0.1,
	}
}

// LanguageInstruction returns the response-language sentence for a target language
func LanguageInstruction(lang model.Language) string {
	switch lang {
	case model.LangZhTW:
		return "Respond in Traditional Chinese (繁體中文) for all free-text fields."
	case model.LangEn:
		return "Respond in English for all free-text fields."
	default:
		return "Respond in the same language as the input text for all free-text fields."
	}
}

// systemPrompt joins the request's system text with its language instruction
func systemPrompt(req CompletionRequest) string {
	if req.Language == "" {
		return req.System
	}
	instruction := LanguageInstruction(req.Language)
	if strings.TrimSpace(req.System) == "" {
		return instruction
	}
	return req.System + "\n\n" + instruction
}

// resolveTokens picks the request value when set, then the config, then the fallback
func resolveTokens(req, cfg, fallback int) int {
	if req > 0 {
		return req
	}
	if cfg > 0 {
		return cfg
	}
	return fallback
}

func resolveTimeout(req, cfg, fallback time.Duration) time.Duration {
	if req > 0 {
		return req
	}
	if cfg > 0 {
		return cfg
	}
	return fallback
}

// ProviderFunc adapts a function to the Provider interface
type ProviderFunc func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

// Name returns the provider name
func (f ProviderFunc) Name() string { return "func" }

// Complete calls f
func (f ProviderFunc) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	return f(ctx, req)
}

// IsAvailable always reports true
func (f ProviderFunc) IsAvailable(ctx context.Context) bool { return true }
