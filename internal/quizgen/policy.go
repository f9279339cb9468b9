package quizgen

import "github.com/abhisek/quizbot/internal/llm"

// action is what the orchestrator does after a failed attempt.
type action int

const (
	// actFail propagates the error to the caller without further attempts.
	actFail action = iota
	// actNextModel moves to the next model candidate.
	actNextModel
	// actFallback leaves the current provider for the next tier.
	actFallback
	// actRotate moves to the next API key, then backs off and retries.
	actRotate
	// actRetry backs off and retries with the same model and key.
	actRetry
)

func (a action) String() string {
	switch a {
	case actFail:
		return "fail"
	case actNextModel:
		return "next_model"
	case actFallback:
		return "fallback"
	case actRotate:
		return "rotate_key"
	case actRetry:
		return "retry"
	}
	return "unknown"
}

// geminiPolicy drives the primary provider's retry loop. Kinds not listed
// back off and retry.
var geminiPolicy = map[llm.Kind]action{
	llm.KindInsufficientContent: actFail,
	llm.KindModelNotFound:       actNextModel,
	llm.KindDecommissioned:      actNextModel,
	llm.KindQuotaZero:           actFallback,
	llm.KindInvalidRequest:      actFallback,
	llm.KindConfig:              actFallback,
	llm.KindRateLimited:         actRotate,
	llm.KindForbidden:           actRotate,
	llm.KindOverloaded:          actRotate,
	llm.KindTimeout:             actRotate,
	llm.KindEmptyResponse:       actRetry,
	llm.KindParse:               actRetry,
	llm.KindServerError:         actRetry,
	llm.KindUnknown:             actRetry,
}

func geminiAction(k llm.Kind) action {
	if a, ok := geminiPolicy[k]; ok {
		return a
	}
	return actRetry
}

// fallbackAction is the per-model policy of the fallback tiers: skip
// models the provider rejects, abort the provider on anything else.
// DeepSeek does not report decommissioned models, so only the other
// tiers skip on that kind.
func fallbackAction(p llm.ProviderName, k llm.Kind) action {
	switch k {
	case llm.KindInsufficientContent:
		return actFail
	case llm.KindInvalidRequest, llm.KindModelNotFound:
		return actNextModel
	case llm.KindDecommissioned:
		if p != llm.DeepSeek {
			return actNextModel
		}
	}
	return actFallback
}

// isQuotaKind reports whether k ends a call as QuotaExceededError.
func isQuotaKind(k llm.Kind) bool {
	return k == llm.KindRateLimited || k == llm.KindQuotaZero
}
