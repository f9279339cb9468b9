// Package quizgen drives quiz generation across the configured LLM
// providers: Gemini first with model and key rotation, then the fallback
// tiers, all behind the process-wide concurrency gate.
package quizgen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/quizbot/internal/gate"
	"github.com/abhisek/quizbot/internal/llm"
	"github.com/abhisek/quizbot/internal/llmjson"
	"github.com/abhisek/quizbot/internal/quiz"
)

// Generator produces quizzes. It is safe for concurrent use; one
// Generator is meant to live for the whole process.
type Generator struct {
	providers llm.Providers
	cfg       Config
	gate      *gate.Gate
	sink      UsageSink
	logger    *zap.Logger
	stats     *statsRecorder

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
	newID func() string
}

// Option configures a Generator.
type Option func(*Generator)

// WithSink sets the usage sink.
func WithSink(s UsageSink) Option {
	return func(g *Generator) { g.sink = s }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithGate shares an existing gate instead of creating one from
// Config.MaxConcurrency.
func WithGate(gt *gate.Gate) Option {
	return func(g *Generator) { g.gate = gt }
}

func New(providers llm.Providers, cfg Config, opts ...Option) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generator config: %w", err)
	}
	g := &Generator{
		providers: providers,
		cfg:       cfg,
		logger:    zap.NewNop(),
		now:       time.Now,
		sleep:     sleepContext,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.gate == nil {
		g.gate = gate.New(cfg.MaxConcurrency)
	}
	g.stats = newStatsRecorder(func() time.Time { return g.now() })
	return g, nil
}

// Stats returns a copy of the generation counters.
func (g *Generator) Stats() Stats {
	s := g.stats.snapshot()
	s.Gate = g.gate.Stats()
	return s
}

// ResetStats zeroes the generation counters.
func (g *Generator) ResetStats() {
	g.stats.reset()
}

// Generate produces a quiz for req. It waits for a gate slot before any
// upstream call. Terminal errors are ErrInsufficientContent,
// ErrNoProviderConfigured, *QuotaExceededError, ErrGenerationFailed or
// the context's error.
func (g *Generator) Generate(ctx context.Context, req quiz.Request) (*quiz.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid quiz request: %w", err)
	}
	if g.providers.Empty() {
		return nil, ErrNoProviderConfigured
	}

	var resp *quiz.Response
	err := g.gate.WithLimit(ctx, func(ctx context.Context) error {
		c := g.newCall(req)
		var err error
		resp, err = c.run(llm.WithCallID(ctx, c.id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// call is the bookkeeping of one Generate invocation. Nothing in it is
// shared between invocations.
type call struct {
	g      *Generator
	req    quiz.Request
	id     string
	system string
	user   string
	start  time.Time
	logger *zap.Logger

	lastErr    error
	lastKind   llm.Kind
	retryAfter time.Duration
}

func (g *Generator) newCall(req quiz.Request) *call {
	id := g.newID()
	text, windows := quiz.Window(req.Text, g.cfg.TextWindow, req.WindowIndex)
	system, user := quiz.BuildPrompt(req, text)

	logger := g.logger.With(zap.String("call_id", id))
	logger.Debug("generation started",
		zap.Int("count", req.Count),
		zap.String("type", string(req.QuestionType)),
		zap.Int("window", req.WindowIndex),
		zap.Int("windows", windows))

	return &call{
		g:      g,
		req:    req,
		id:     id,
		system: system,
		user:   user,
		start:  g.now(),
		logger: logger,
	}
}

func (c *call) run(ctx context.Context) (*quiz.Response, error) {
	fallbacks := c.g.providers.Fallbacks()

	if gemini := c.g.providers.Gemini; gemini != nil {
		resp, done, err := c.runGemini(ctx, gemini, len(fallbacks) > 0)
		if done {
			return resp, err
		}
	}

	for _, p := range fallbacks {
		c.logger.Info("falling back", zap.String("provider", string(p.Name())))
		resp, done, err := c.runFallback(ctx, p)
		if done {
			return resp, err
		}
	}
	return nil, c.exhausted()
}

// runGemini drives the primary provider. The bool result is false when
// the caller should move on to the fallback tiers.
func (c *call) runGemini(ctx context.Context, p llm.Provider, canFallback bool) (*quiz.Response, bool, error) {
	cfg := c.g.cfg
	models := p.Models()
	keys := p.Keys()
	modelIdx, keyIdx, attempt := 0, 0, 0

	for modelIdx < len(models) {
		model := models[modelIdx]
		resp, err := c.attempt(ctx, p, model, keyIdx, cfg.AttemptTimeout)
		if err == nil {
			return resp, true, nil
		}
		if ctx.Err() != nil {
			return nil, true, ctx.Err()
		}

		kind := c.noteFailure(p, model, keyIdx, attempt, err)
		act := geminiAction(kind)
		switch act {
		case actFail:
			return nil, true, insufficient(err)
		case actNextModel:
			modelIdx++
			attempt = 0
			continue
		case actFallback:
			return nil, false, nil
		case actRotate:
			if keys > 1 {
				keyIdx = (keyIdx + 1) % keys
			}
		}

		if attempt >= cfg.MaxRetries {
			c.logger.Info("retries exhausted", zap.String("provider", string(p.Name())), zap.String("model", model))
			return nil, false, nil
		}

		wait, hint := c.backoff(err, attempt)
		if canFallback && (c.elapsed()+wait > cfg.MaxTotal || hint > cfg.MaxTotal) {
			c.logger.Info("time budget would be exceeded, skipping wait",
				zap.Duration("wait", wait),
				zap.Duration("elapsed", c.elapsed()))
			return nil, false, nil
		}

		c.logger.Debug("backing off",
			zap.String("action", act.String()),
			zap.Int("key_index", keyIdx),
			zap.Duration("wait", wait))
		if err := c.g.sleep(ctx, wait); err != nil {
			return nil, true, err
		}
		attempt++
	}
	return nil, false, nil
}

// runFallback walks p's model candidates once, without backoff.
func (c *call) runFallback(ctx context.Context, p llm.Provider) (*quiz.Response, bool, error) {
	for _, model := range p.Models() {
		resp, err := c.attempt(ctx, p, model, 0, 0)
		if err == nil {
			return resp, true, nil
		}
		if ctx.Err() != nil {
			return nil, true, ctx.Err()
		}

		kind := c.noteFailure(p, model, 0, 0, err)
		switch fallbackAction(p.Name(), kind) {
		case actFail:
			return nil, true, insufficient(err)
		case actNextModel:
			continue
		default:
			return nil, false, nil
		}
	}
	return nil, false, nil
}

// attempt makes one upstream call and decodes its reply. A timeout of
// zero leaves the call bounded only by ctx and the HTTP client.
func (c *call) attempt(ctx context.Context, p llm.Provider, model string, keyIdx int, timeout time.Duration) (*quiz.Response, error) {
	name := p.Name()
	c.g.stats.attempt(name)
	started := c.g.now()

	actx, cancel := ctx, context.CancelFunc(func() {})
	if timeout > 0 {
		actx, cancel = context.WithTimeout(ctx, timeout)
	}
	res, err := p.Call(actx, llm.Request{
		System:   c.system,
		Prompt:   c.user,
		Model:    model,
		KeyIndex: keyIdx,
	})
	if err != nil && ctx.Err() == nil && errors.Is(actx.Err(), context.DeadlineExceeded) {
		err = &llm.TimeoutError{Provider: name, Model: model, After: timeout, Err: err}
	}
	cancel()

	var resp *quiz.Response
	if err == nil {
		resp, err = c.decode(res)
	}
	if err != nil {
		c.g.stats.fail(name, model, err)
		return nil, err
	}

	served := res.Model
	if served == "" {
		served = model
	}
	c.g.stats.success(name, served)
	c.g.reportUsage(ctx, UsageRecord{
		CallID:           c.id,
		Provider:         name,
		Model:            served,
		PromptTokens:     res.Usage.PromptTokens,
		CompletionTokens: res.Usage.CompletionTokens,
		TotalTokens:      res.Usage.TotalTokens,
		Latency:          c.g.now().Sub(started),
		At:               c.g.now(),
	})
	c.logger.Info("generation succeeded",
		zap.String("provider", string(name)),
		zap.String("model", served),
		zap.Int("questions", len(resp.Questions)))
	return resp, nil
}

// decode turns a provider reply into a quiz. An empty questions array is
// ErrInsufficientContent, as is an unparseable reply in which the model
// says it cannot write questions.
func (c *call) decode(res *llm.Result) (*quiz.Response, error) {
	doc, err := llmjson.Parse(res.Content)
	if err != nil {
		if llm.Classify(0, res.Content) == llm.KindInsufficientContent {
			return nil, fmt.Errorf("%s %s: %w", res.Provider, res.Model, ErrInsufficientContent)
		}
		return nil, err
	}
	if len(doc.Questions) == 0 {
		return nil, fmt.Errorf("%s %s: %w", res.Provider, res.Model, ErrInsufficientContent)
	}
	if doc.Recovered {
		c.logger.Warn("recovered questions from a malformed reply",
			zap.String("provider", string(res.Provider)),
			zap.Int("recovered", len(doc.Questions)))
	}

	questions, err := quiz.DecodeQuestions(doc.Questions, c.req.QuestionType, c.req.Count, c.logger)
	if err != nil {
		return nil, err
	}
	return &quiz.Response{Questions: questions}, nil
}

// noteFailure classifies err, remembers it for the terminal error and
// logs the attempt.
func (c *call) noteFailure(p llm.Provider, model string, keyIdx, attempt int, err error) llm.Kind {
	kind := kindOf(err)
	c.lastErr, c.lastKind = err, kind
	if isQuotaKind(kind) {
		if d, ok := llm.RetryAfterOf(err); ok {
			c.retryAfter = d
		}
	}
	c.logger.Warn("generation attempt failed",
		zap.String("provider", string(p.Name())),
		zap.String("model", model),
		zap.Int("key_index", keyIdx),
		zap.Int("attempt", attempt),
		zap.Stringer("kind", kind),
		zap.Error(err))
	return kind
}

// backoff returns the wait before the next attempt and the raw upstream
// hint, if any. The wait is capped by MaxRetryDelay; the hint is not.
func (c *call) backoff(err error, attempt int) (wait, hint time.Duration) {
	cfg := c.g.cfg
	if d, ok := llm.RetryAfterOf(err); ok {
		hint, wait = d, d
	} else {
		wait = cfg.BaseBackoff << attempt
	}
	return min(wait, cfg.MaxRetryDelay), hint
}

func (c *call) elapsed() time.Duration {
	return c.g.now().Sub(c.start)
}

func (c *call) exhausted() error {
	if c.lastErr == nil {
		return ErrGenerationFailed
	}
	if isQuotaKind(c.lastKind) {
		return &QuotaExceededError{RetryAfter: c.retryAfter, Err: c.lastErr}
	}
	return fmt.Errorf("%w: %w", ErrGenerationFailed, c.lastErr)
}

func kindOf(err error) llm.Kind {
	if errors.Is(err, ErrInsufficientContent) {
		return llm.KindInsufficientContent
	}
	return llm.KindOf(err)
}

func insufficient(err error) error {
	if errors.Is(err, ErrInsufficientContent) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrInsufficientContent, err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
