package llm

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/quizbot/internal/llmjson"
)

// Kind is the classification of a failed upstream attempt.
type Kind int

const (
	KindUnknown Kind = iota
	KindInsufficientContent
	KindModelNotFound
	KindDecommissioned
	KindInvalidRequest
	KindRateLimited
	KindQuotaZero
	KindForbidden
	KindOverloaded
	KindTimeout
	KindServerError
	KindEmptyResponse
	KindParse
	KindConfig
)

var kindNames = map[Kind]string{
	KindUnknown:             "unknown",
	KindInsufficientContent: "insufficient_content",
	KindModelNotFound:       "model_not_found",
	KindDecommissioned:      "decommissioned",
	KindInvalidRequest:      "invalid_request",
	KindRateLimited:         "rate_limited",
	KindQuotaZero:           "quota_zero",
	KindForbidden:           "forbidden",
	KindOverloaded:          "overloaded",
	KindTimeout:             "timeout",
	KindServerError:         "server_error",
	KindEmptyResponse:       "empty_response",
	KindParse:               "parse",
	KindConfig:              "config",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

var (
	insufficientMarkers = []string{
		"insufficient content",
		"insufficient_content",
		"not enough content",
		"cannot generate questions",
		"unable to generate questions",
	}
	rateLimitMarkers = []string{"rate limit", "rate_limit", "resource_exhausted", "too many requests", "quota exceeded", "exceeded your current quota"}
	forbiddenMarkers = []string{"permission_denied", "api key not valid", "api_key_invalid", "invalid api key", "unauthorized"}
	overloadMarkers  = []string{"overloaded", "unavailable", "try again later"}
	timeoutMarkers   = []string{"deadline exceeded", "deadline_exceeded", "timed out", "timeout"}
	notFoundMarkers  = []string{"not found", "not exist", "not_found", "unknown model", "invalid model", "model_not_found"}

	// Gemini reports an account whose free tier is disabled as a quota
	// violation with "limit: 0". This is a text heuristic against the
	// current error wording and may need revisiting when it changes.
	zeroLimit = regexp.MustCompile(`limit:\s*0\b`)

	retryInPhrase   = regexp.MustCompile(`(?i)retry in\s+([0-9]+(?:\.[0-9]+)?)\s*(ms|s)?`)
	retryDelayField = regexp.MustCompile(`(?i)"?retry_?delay"?\s*[:=]\s*"?([0-9]+(?:\.[0-9]+)?)s`)
)

// Classify maps an upstream status and body to a Kind. Matching on body
// text is case-insensitive. status may be zero when only a message is
// available.
func Classify(status int, body string) Kind {
	lower := strings.ToLower(body)

	switch {
	case containsAny(lower, insufficientMarkers):
		return KindInsufficientContent
	case strings.Contains(lower, "decommissioned"):
		return KindDecommissioned
	case status == http.StatusNotFound:
		return KindModelNotFound
	case status == http.StatusTooManyRequests || containsAny(lower, rateLimitMarkers):
		if isZeroQuota(lower) {
			return KindQuotaZero
		}
		return KindRateLimited
	case status == http.StatusUnauthorized || status == http.StatusForbidden || containsAny(lower, forbiddenMarkers):
		return KindForbidden
	case status == http.StatusServiceUnavailable || containsAny(lower, overloadMarkers):
		return KindOverloaded
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout || containsAny(lower, timeoutMarkers):
		return KindTimeout
	case status == http.StatusBadRequest:
		if strings.Contains(lower, "model") && containsAny(lower, notFoundMarkers) {
			return KindModelNotFound
		}
		return KindInvalidRequest
	case status >= 500:
		return KindServerError
	}
	return KindUnknown
}

// KindOf classifies an error returned by a Provider or by parsing its
// output.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return KindConfig
	}
	var toErr *TimeoutError
	if errors.As(err, &toErr) {
		return KindTimeout
	}
	var emptyErr *EmptyResponseError
	if errors.As(err, &emptyErr) {
		return KindEmptyResponse
	}
	var parseErr *llmjson.ParseError
	if errors.As(err, &parseErr) {
		return KindParse
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return Classify(httpErr.Status, httpErr.Body)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return Classify(0, err.Error())
}

// RetryAfter extracts a server-suggested wait from error text: either a
// "retry in Ns" phrase or a structured retryDelay field.
func RetryAfter(text string) (time.Duration, bool) {
	if m := retryInPhrase.FindStringSubmatch(text); m != nil {
		unit := time.Second
		if strings.EqualFold(m[2], "ms") {
			unit = time.Millisecond
		}
		if d, ok := scaled(m[1], unit); ok {
			return d, true
		}
	}
	if m := retryDelayField.FindStringSubmatch(text); m != nil {
		return scaled(m[1], time.Second)
	}
	return 0, false
}

// RetryAfterOf applies RetryAfter to an error's upstream body and message.
func RetryAfterOf(err error) (time.Duration, bool) {
	if err == nil {
		return 0, false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if d, ok := RetryAfter(httpErr.Body); ok {
			return d, true
		}
	}
	return RetryAfter(err.Error())
}

// rejectsJSONMode reports whether a 400 was caused by the forced JSON
// response mode rather than by the prompt.
func rejectsJSONMode(status int, body string) bool {
	if status != http.StatusBadRequest {
		return false
	}
	lower := strings.ToLower(body)
	return strings.Contains(lower, "response_format") ||
		strings.Contains(lower, "response_mime_type") ||
		strings.Contains(lower, "responsemimetype")
}

func isZeroQuota(lower string) bool {
	freeTier := strings.Contains(lower, "free_tier") || strings.Contains(lower, "free tier")
	return freeTier && zeroLimit.MatchString(lower)
}

func scaled(num string, unit time.Duration) (time.Duration, bool) {
	f, err := strconv.ParseFloat(num, 64)
	if err != nil || f <= 0 {
		return 0, false
	}
	return time.Duration(f * float64(unit)), true
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
