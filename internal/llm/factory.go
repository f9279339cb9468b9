package llm

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Providers is the set of adapters built from configuration. A nil field
// means the provider has no API key.
type Providers struct {
	Gemini   Provider
	DeepSeek Provider
	Groq     Provider
	Claude   Provider
}

// Fallbacks returns the configured fallback tiers in order.
func (p Providers) Fallbacks() []Provider {
	var out []Provider
	for _, fp := range []Provider{p.DeepSeek, p.Groq, p.Claude} {
		if fp != nil {
			out = append(out, fp)
		}
	}
	return out
}

// Empty reports whether no provider is configured at all.
func (p Providers) Empty() bool {
	return p.Gemini == nil && len(p.Fallbacks()) == 0
}

// NewProviders creates every provider whose key is configured, each wrapped
// with logging middleware and sharing one network-retrying HTTP client.
func NewProviders(ctx context.Context, cfg Config, logger *zap.Logger) (Providers, error) {
	if err := cfg.Validate(); err != nil {
		return Providers{}, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := NewHTTPClient(cfg.RequestTimeout, logger)

	var out Providers
	build := func(name ProviderName, p Provider, err error) (Provider, error) {
		if errors.Is(err, ErrMissingKey) {
			logger.Debug("provider not configured", zap.String("provider", string(name)))
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("initializing %s provider: %w", name, err)
		}
		return WithLogging(p, logger.Named(string(name))), nil
	}

	var err error
	gemini, gErr := NewGeminiProvider(ctx, cfg.Gemini, cfg.JSONMode, httpClient)
	if out.Gemini, err = build(Gemini, gemini, gErr); err != nil {
		return Providers{}, err
	}
	deepseek, dErr := NewDeepSeekProvider(cfg.DeepSeek, cfg.JSONMode, httpClient)
	if out.DeepSeek, err = build(DeepSeek, deepseek, dErr); err != nil {
		return Providers{}, err
	}
	groq, qErr := NewGroqProvider(cfg.Groq, cfg.JSONMode, httpClient)
	if out.Groq, err = build(Groq, groq, qErr); err != nil {
		return Providers{}, err
	}
	claude, cErr := NewAnthropicProvider(cfg.Anthropic, httpClient)
	if out.Claude, err = build(Claude, claude, cErr); err != nil {
		return Providers{}, err
	}
	return out, nil
}
