package llm

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

// maxErrorBody bounds how much upstream body text is echoed in Error().
const maxErrorBody = 300

// ErrMissingKey is wrapped by every ConfigError raised for an absent API key.
var ErrMissingKey = errors.New("missing API key")

// ConfigError indicates a provider cannot be used with the current
// configuration. It is a local failure and is never retried.
type ConfigError struct {
	Provider ProviderName
	Err      error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func missingKey(p ProviderName) error {
	return &ConfigError{Provider: p, Err: ErrMissingKey}
}

// HTTPError is a non-2xx upstream response.
type HTTPError struct {
	Provider ProviderName
	Model    string
	Status   int
	Body     string
	Err      error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Provider, e.Model, e.Status, truncate(e.Body, maxErrorBody))
}

func (e *HTTPError) Unwrap() error { return e.Err }

// EmptyResponseError indicates the upstream answered without usable content.
type EmptyResponseError struct {
	Provider ProviderName
	Model    string
}

func (e *EmptyResponseError) Error() string {
	return fmt.Sprintf("%s %s: empty response content", e.Provider, e.Model)
}

// TimeoutError indicates an attempt exceeded its deadline.
type TimeoutError struct {
	Provider ProviderName
	Model    string
	After    time.Duration
	Err      error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s %s: timed out after %s", e.Provider, e.Model, e.After)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
