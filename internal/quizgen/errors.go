package quizgen

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrInsufficientContent means the source text cannot yield questions.
	// It is never retried.
	ErrInsufficientContent = errors.New("source text does not contain enough material for questions")

	// ErrNoProviderConfigured means no provider has an API key.
	ErrNoProviderConfigured = errors.New("no LLM provider configured")

	// ErrGenerationFailed wraps the last attempt error once every
	// provider and retry is exhausted.
	ErrGenerationFailed = errors.New("quiz generation failed")
)

// QuotaExceededError is returned when every avenue is exhausted and the
// final failure was a rate or quota limit.
type QuotaExceededError struct {
	// RetryAfter is the last delay suggested upstream, zero if none.
	RetryAfter time.Duration
	Err        error
}

func (e *QuotaExceededError) Error() string {
	msg := "LLM quota exceeded"
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(" (retry after %s)", e.RetryAfter.Round(time.Second))
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *QuotaExceededError) Unwrap() error { return e.Err }

// User-facing messages for terminal errors.
const (
	MsgInsufficientContent = "This text does not have enough material for quiz questions. Try another file or a different part of it."
	MsgQuotaExceeded       = "The quiz service has hit its usage limit. Please try again later."
	MsgBusy                = "The quiz service is busy right now. Please try again in a moment."
)

// UserMessage maps an error from Generate to the message shown to the
// end user. Only insufficient content and quota exhaustion get their
// own text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrInsufficientContent) {
		return MsgInsufficientContent
	}
	var quota *QuotaExceededError
	if errors.As(err, &quota) {
		if quota.RetryAfter > 0 {
			secs := int(math.Ceil(quota.RetryAfter.Seconds()))
			return fmt.Sprintf("The quiz service has hit its usage limit. Please try again in about %d seconds.", secs)
		}
		return MsgQuotaExceeded
	}
	return MsgBusy
}
