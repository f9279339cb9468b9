package quizgen

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/quizbot/internal/llm"
)

// UsageRecord describes one successful upstream call. Token fields are
// zero when the provider did not report them.
type UsageRecord struct {
	CallID           string
	Provider         llm.ProviderName
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Latency          time.Duration
	At               time.Time
}

// UsageSink receives a UsageRecord after every successful generation,
// before Generate returns.
type UsageSink interface {
	RecordUsage(ctx context.Context, rec UsageRecord) error
}

// UsageSinkFunc adapts a function to UsageSink.
type UsageSinkFunc func(ctx context.Context, rec UsageRecord) error

func (f UsageSinkFunc) RecordUsage(ctx context.Context, rec UsageRecord) error {
	return f(ctx, rec)
}

// reportUsage hands rec to the sink. Sink errors and panics are logged
// and never reach the caller of Generate.
func (g *Generator) reportUsage(ctx context.Context, rec UsageRecord) {
	if g.sink == nil {
		return
	}
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("usage sink panicked: %v", r)
			}
		}()
		err = g.sink.RecordUsage(ctx, rec)
	}()
	if err != nil {
		g.logger.Warn("recording usage failed",
			zap.String("call_id", rec.CallID),
			zap.String("provider", string(rec.Provider)),
			zap.Error(err))
	}
}
