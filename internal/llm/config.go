package llm

import (
	"fmt"
	"strings"
	"time"
)

// Temperature is sent with every request; quiz generation wants
// near-deterministic output.
const Temperature = 0.3

// Config holds all LLM provider configuration.
type Config struct {
	Gemini    GeminiConfig
	DeepSeek  OpenAIConfig
	Groq      OpenAIConfig
	Anthropic AnthropicConfig

	// JSONMode asks each upstream to force JSON output. Adapters drop it
	// for one immediate retry when the upstream rejects it.
	JSONMode bool

	// RequestTimeout bounds a single HTTP request. Default: 30s.
	RequestTimeout time.Duration
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKeys         []string
	Model           string // Optional override, tried before the defaults.
	BaseURL         string // Optional. Override for proxies and tests.
	MaxOutputTokens int
}

// OpenAIConfig configures an OpenAI-compatible chat-completion upstream.
type OpenAIConfig struct {
	APIKeys   []string
	Model     string
	BaseURL   string
	MaxTokens int
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKeys   []string
	Model     string
	BaseURL   string
	MaxTokens int
}

// DefaultConfig returns a Config with sensible defaults and no keys.
func DefaultConfig() Config {
	return Config{
		Gemini: GeminiConfig{
			MaxOutputTokens: 8192,
		},
		DeepSeek: OpenAIConfig{
			BaseURL:   DefaultDeepSeekBaseURL,
			MaxTokens: 8192,
		},
		Groq: OpenAIConfig{
			BaseURL:   DefaultGroqBaseURL,
			MaxTokens: 8000,
		},
		Anthropic: AnthropicConfig{
			MaxTokens: 8192,
		},
		JSONMode:       true,
		RequestTimeout: DefaultRequestTimeout,
	}
}

// Validate checks the numeric knobs. Missing keys are not an error here:
// an unconfigured provider is simply skipped.
func (c Config) Validate() error {
	limits := []struct {
		name string
		v    int
	}{
		{"GEMINI_MAX_OUTPUT_TOKENS", c.Gemini.MaxOutputTokens},
		{"DEEPSEEK_MAX_TOKENS", c.DeepSeek.MaxTokens},
		{"GROQ_MAX_TOKENS", c.Groq.MaxTokens},
		{"ANTHROPIC_MAX_TOKENS", c.Anthropic.MaxTokens},
	}
	for _, l := range limits {
		if l.v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", l.name, l.v)
		}
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative, got %s", c.RequestTimeout)
	}
	return nil
}

// SplitKeys parses a comma-separated key list, dropping blanks.
func SplitKeys(s string) []string {
	var keys []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
