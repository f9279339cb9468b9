package llm

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// LoggingProvider is a decorator that logs every upstream call.
type LoggingProvider struct {
	inner  Provider
	logger *zap.Logger
}

// WithLogging wraps a Provider with call logging.
func WithLogging(p Provider, logger *zap.Logger) Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingProvider{inner: p, logger: logger}
}

func (l *LoggingProvider) Call(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	res, err := l.inner.Call(ctx, req)

	fields := []zap.Field{
		zap.String("call_id", CallIDFrom(ctx)),
		zap.String("provider", string(l.inner.Name())),
		zap.String("model", modelFor(req, l.inner.Models())),
		zap.Int("key_index", wrapIndex(req.KeyIndex, l.inner.Keys())),
		zap.Duration("latency", time.Since(start)),
	}
	if err != nil {
		l.logger.Warn("provider call failed",
			append(fields, zap.Stringer("kind", KindOf(err)), zap.Error(err))...)
		return nil, err
	}

	l.logger.Debug("provider call succeeded",
		append(fields,
			zap.Int("prompt_tokens", res.Usage.PromptTokens),
			zap.Int("completion_tokens", res.Usage.CompletionTokens),
			zap.Int("content_bytes", len(res.Content)))...)
	return res, nil
}

func (l *LoggingProvider) Name() ProviderName { return l.inner.Name() }
func (l *LoggingProvider) Models() []string   { return l.inner.Models() }
func (l *LoggingProvider) Keys() int          { return l.inner.Keys() }
