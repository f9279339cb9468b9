package quizgen

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/quizbot/internal/llm"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"insufficient", fmt.Errorf("gemini m: %w", ErrInsufficientContent), MsgInsufficientContent},
		{"quota without hint", &QuotaExceededError{}, MsgQuotaExceeded},
		{"quota with hint", &QuotaExceededError{RetryAfter: 3500 * time.Millisecond},
			"The quiz service has hit its usage limit. Please try again in about 4 seconds."},
		{"generation failed", fmt.Errorf("%w: boom", ErrGenerationFailed), MsgBusy},
		{"no provider", ErrNoProviderConfigured, MsgBusy},
		{"anything else", errors.New("boom"), MsgBusy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestQuotaExceededError(t *testing.T) {
	cause := &llm.HTTPError{Provider: llm.Gemini, Model: "m", Status: 429, Body: "slow down"}
	err := &QuotaExceededError{RetryAfter: 3 * time.Second, Err: cause}

	assert.Contains(t, err.Error(), "retry after 3s")
	assert.Contains(t, err.Error(), "HTTP 429")

	var upstream *llm.HTTPError
	assert.True(t, errors.As(err, &upstream))
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	bad := []func(*Config){
		func(c *Config) { c.MaxRetries = -1 },
		func(c *Config) { c.AttemptTimeout = 0 },
		func(c *Config) { c.MaxRetryDelay = -time.Second },
		func(c *Config) { c.MaxTotal = 0 },
		func(c *Config) { c.MaxConcurrency = 0 },
		func(c *Config) { c.TextWindow = -1 },
	}
	for i, mutate := range bad {
		c := DefaultConfig()
		mutate(&c)
		assert.Error(t, c.Validate(), "case %d", i)
	}
}
