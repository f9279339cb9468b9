package quizgen

import (
	"errors"
	"time"
)

// Config tunes the retry and fallback policy of a Generator.
type Config struct {
	// MaxRetries is the number of Gemini retries after the first attempt
	// on one model. Advancing to the next model starts a fresh budget.
	MaxRetries int

	// AttemptTimeout bounds a single Gemini call.
	AttemptTimeout time.Duration

	// BaseBackoff is the first exponential backoff step; attempt n waits
	// BaseBackoff * 2^n unless the upstream suggested a delay.
	BaseBackoff time.Duration

	// MaxRetryDelay caps every backoff wait.
	MaxRetryDelay time.Duration

	// MaxTotal is the soft time budget for one call. When a wait would
	// exceed it and a fallback provider exists, the fallback is tried
	// instead of waiting.
	MaxTotal time.Duration

	// MaxConcurrency bounds simultaneous generation calls.
	MaxConcurrency int

	// TextWindow is the number of characters of source text sent per
	// request. Zero sends the whole text.
	TextWindow int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MaxRetries:     3,
		AttemptTimeout: 25 * time.Second,
		BaseBackoff:    2 * time.Second,
		MaxRetryDelay:  7 * time.Second,
		MaxTotal:       35 * time.Second,
		MaxConcurrency: 2,
		TextWindow:     12000,
	}
}

func (c Config) Validate() error {
	if c.MaxRetries < 0 {
		return errors.New("max retries must not be negative")
	}
	if c.AttemptTimeout <= 0 {
		return errors.New("attempt timeout must be positive")
	}
	if c.BaseBackoff < 0 || c.MaxRetryDelay < 0 {
		return errors.New("backoff delays must not be negative")
	}
	if c.MaxTotal <= 0 {
		return errors.New("total time budget must be positive")
	}
	if c.MaxConcurrency <= 0 {
		return errors.New("max concurrency must be positive")
	}
	if c.TextWindow < 0 {
		return errors.New("text window must not be negative")
	}
	return nil
}
