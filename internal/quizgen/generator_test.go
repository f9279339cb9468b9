package quizgen

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizbot/internal/gate"
	"github.com/abhisek/quizbot/internal/llm"
	"github.com/abhisek/quizbot/internal/quiz"
)

const pollReply = `{"questions":[{"question":"Q1","options":["A","B","C","D"],"correctIndex":1,"explanation":"E1"}]}`

// fakeClock advances only when the generator sleeps.
type fakeClock struct {
	mu    sync.Mutex
	t     time.Time
	slept []time.Duration
}

func (f *fakeClock) now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) sleep(ctx context.Context, d time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
	f.slept = append(f.slept, d)
	return ctx.Err()
}

func (f *fakeClock) sleeps() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.slept...)
}

func newTestGenerator(t *testing.T, providers llm.Providers, cfg Config, opts ...Option) (*Generator, *fakeClock) {
	t.Helper()
	g, err := New(providers, cfg, opts...)
	require.NoError(t, err)

	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	g.now = clock.now
	g.sleep = clock.sleep
	g.newID = func() string { return "call-1" }
	return g, clock
}

func pollRequest() quiz.Request {
	return quiz.Request{
		Text:         "Some study material about plants and light.",
		Count:        3,
		Difficulty:   quiz.DifficultyEasy,
		Language:     quiz.LanguageEnglish,
		QuestionType: quiz.TypePoll,
	}
}

func httpErr(p llm.ProviderName, status int, body string) llm.MockResponse {
	return llm.MockResponse{Err: &llm.HTTPError{Provider: p, Model: "m", Status: status, Body: body}}
}

func ok(content string) llm.MockResponse {
	return llm.MockResponse{Content: content, Usage: llm.Usage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30}}
}

func repeat(r llm.MockResponse, n int) []llm.MockResponse {
	out := make([]llm.MockResponse, n)
	for i := range out {
		out[i] = r
	}
	return out
}

func TestGenerate_GeminiFirstAttempt(t *testing.T) {
	gemini := llm.NewMockProvider(llm.Gemini, ok(pollReply))

	var records []UsageRecord
	sink := UsageSinkFunc(func(_ context.Context, rec UsageRecord) error {
		records = append(records, rec)
		return nil
	})
	g, clock := newTestGenerator(t, llm.Providers{Gemini: gemini}, DefaultConfig(), WithSink(sink))

	resp, err := g.Generate(context.Background(), pollRequest())
	require.NoError(t, err)
	require.Len(t, resp.Questions, 1)
	require.NotNil(t, resp.Questions[0].Poll)
	assert.Equal(t, 1, resp.Questions[0].Poll.CorrectIndex)

	stats := g.Stats()
	assert.Equal(t, Counters{Attempts: 1, Success: 1}, stats.For(llm.Gemini))
	assert.Equal(t, llm.Gemini, stats.LastProvider)
	assert.Equal(t, "gemini-model", stats.LastModel)
	assert.Empty(t, clock.sleeps())

	require.Len(t, records, 1)
	assert.Equal(t, "call-1", records[0].CallID)
	assert.Equal(t, llm.Gemini, records[0].Provider)
	assert.Equal(t, 30, records[0].TotalTokens)

	calls := gemini.CallsSnapshot()
	require.Len(t, calls, 1)
	assert.NotEmpty(t, calls[0].System)
	assert.Contains(t, calls[0].Prompt, "Some study material")
}

func TestGenerate_RateLimitHintThenDeepSeek(t *testing.T) {
	gemini := llm.NewMockProvider(llm.Gemini, repeat(httpErr(llm.Gemini, 429, "Please retry in 3.5s"), 4)...)
	deepseek := llm.NewMockProvider(llm.DeepSeek, ok(pollReply))
	g, clock := newTestGenerator(t, llm.Providers{Gemini: gemini, DeepSeek: deepseek}, DefaultConfig())

	resp, err := g.Generate(context.Background(), pollRequest())
	require.NoError(t, err)
	assert.Len(t, resp.Questions, 1)

	hint := 3500 * time.Millisecond
	assert.Equal(t, []time.Duration{hint, hint, hint}, clock.sleeps())
	assert.Equal(t, 4, gemini.CallCount())

	stats := g.Stats()
	assert.Equal(t, Counters{Attempts: 4, Fail: 4}, stats.For(llm.Gemini))
	assert.Equal(t, Counters{Attempts: 1, Success: 1}, stats.For(llm.DeepSeek))
	assert.Equal(t, llm.DeepSeek, stats.LastProvider)
}

func TestGenerate_EmptyQuestionsIsInsufficientContent(t *testing.T) {
	gemini := llm.NewMockProvider(llm.Gemini, ok("```json\n{\"questions\":[]}\n```"))
	deepseek := llm.NewMockProvider(llm.DeepSeek, ok(pollReply))
	g, clock := newTestGenerator(t, llm.Providers{Gemini: gemini, DeepSeek: deepseek}, DefaultConfig())

	_, err := g.Generate(context.Background(), pollRequest())
	assert.ErrorIs(t, err, ErrInsufficientContent)
	assert.Equal(t, 1, gemini.CallCount())
	assert.Equal(t, 0, deepseek.CallCount())
	assert.Empty(t, clock.sleeps())
	assert.Equal(t, MsgInsufficientContent, UserMessage(err))
}

func TestGenerate_InsufficientContentFromUpstream(t *testing.T) {
	gemini := llm.NewMockProvider(llm.Gemini, httpErr(llm.Gemini, 400, "insufficient content to build a quiz"))
	deepseek := llm.NewMockProvider(llm.DeepSeek, ok(pollReply))
	g, _ := newTestGenerator(t, llm.Providers{Gemini: gemini, DeepSeek: deepseek}, DefaultConfig())

	_, err := g.Generate(context.Background(), pollRequest())
	assert.ErrorIs(t, err, ErrInsufficientContent)
	assert.Equal(t, 0, deepseek.CallCount())
}

func TestGenerate_ProseRefusalIsInsufficientContent(t *testing.T) {
	gemini := llm.NewMockProvider(llm.Gemini, ok("Sorry, I am unable to generate questions from this text."))
	g, clock := newTestGenerator(t, llm.Providers{Gemini: gemini}, DefaultConfig())

	_, err := g.Generate(context.Background(), pollRequest())
	assert.ErrorIs(t, err, ErrInsufficientContent)
	assert.Equal(t, 1, gemini.CallCount())
	assert.Empty(t, clock.sleeps())
}

func TestGenerate_NoProviderConfigured(t *testing.T) {
	g, clock := newTestGenerator(t, llm.Providers{}, DefaultConfig())

	_, err := g.Generate(context.Background(), pollRequest())
	assert.ErrorIs(t, err, ErrNoProviderConfigured)
	assert.Empty(t, g.Stats().Providers)
	assert.Empty(t, clock.sleeps())
	assert.Equal(t, MsgBusy, UserMessage(err))
}

func TestGenerate_InvalidRequest(t *testing.T) {
	gemini := llm.NewMockProvider(llm.Gemini, ok(pollReply))
	g, _ := newTestGenerator(t, llm.Providers{Gemini: gemini}, DefaultConfig())

	req := pollRequest()
	req.Count = 0
	_, err := g.Generate(context.Background(), req)
	assert.Error(t, err)
	assert.Equal(t, 0, gemini.CallCount())
}

func TestGenerate_ModelNotFoundAdvancesAndResetsAttempts(t *testing.T) {
	gemini := llm.NewMockProvider(llm.Gemini,
		httpErr(llm.Gemini, 429, "rate limit exceeded"),
		httpErr(llm.Gemini, 404, "models/m1 is not found"),
		httpErr(llm.Gemini, 429, "rate limit exceeded"),
		httpErr(llm.Gemini, 404, "models/m2 is not found"),
		ok(pollReply),
	).WithModels("m1", "m2", "m3")
	g, clock := newTestGenerator(t, llm.Providers{Gemini: gemini}, DefaultConfig())

	_, err := g.Generate(context.Background(), pollRequest())
	require.NoError(t, err)

	var models []string
	for _, c := range gemini.CallsSnapshot() {
		models = append(models, c.Model)
	}
	assert.Equal(t, []string{"m1", "m1", "m2", "m2", "m3"}, models)
	// A fresh model starts again at the first backoff step.
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, clock.sleeps())
}

func TestGenerate_ModelsExhaustedFallsBack(t *testing.T) {
	gemini := llm.NewMockProvider(llm.Gemini,
		httpErr(llm.Gemini, 404, "not found"),
		httpErr(llm.Gemini, 404, "not found"),
	).WithModels("m1", "m2")
	groq := llm.NewMockProvider(llm.Groq, ok(pollReply))
	g, _ := newTestGenerator(t, llm.Providers{Gemini: gemini, Groq: groq}, DefaultConfig())

	_, err := g.Generate(context.Background(), pollRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, gemini.CallCount())
	assert.Equal(t, 1, groq.CallCount())
}

func TestGenerate_KeyRotation(t *testing.T) {
	gemini := llm.NewMockProvider(llm.Gemini,
		httpErr(llm.Gemini, 429, "rate limit"),
		httpErr(llm.Gemini, 403, "permission denied"),
		llm.MockResponse{Err: errors.New("connection reset")},
		ok(pollReply),
	).WithKeys(3)
	g, clock := newTestGenerator(t, llm.Providers{Gemini: gemini}, DefaultConfig())

	_, err := g.Generate(context.Background(), pollRequest())
	require.NoError(t, err)

	var keys []int
	for _, c := range gemini.CallsSnapshot() {
		keys = append(keys, c.KeyIndex)
	}
	// Unknown failures retry on the same key.
	assert.Equal(t, []int{0, 1, 2, 2}, keys)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 7 * time.Second}, clock.sleeps())
}

func TestGenerate_SingleKeyDoesNotRotate(t *testing.T) {
	gemini := llm.NewMockProvider(llm.Gemini,
		httpErr(llm.Gemini, 429, "rate limit"),
		ok(pollReply),
	)
	g, _ := newTestGenerator(t, llm.Providers{Gemini: gemini}, DefaultConfig())

	_, err := g.Generate(context.Background(), pollRequest())
	require.NoError(t, err)
	for _, c := range gemini.CallsSnapshot() {
		assert.Equal(t, 0, c.KeyIndex)
	}
}

func TestGenerate_ZeroQuotaFallsBackImmediately(t *testing.T) {
	gemini := llm.NewMockProvider(llm.Gemini, httpErr(llm.Gemini, 429,
		"Quota exceeded for metric: generativelanguage.googleapis.com/generate_content_free_tier_requests, limit: 0"))
	deepseek := llm.NewMockProvider(llm.DeepSeek, ok(pollReply))
	g, clock := newTestGenerator(t, llm.Providers{Gemini: gemini, DeepSeek: deepseek}, DefaultConfig())

	_, err := g.Generate(context.Background(), pollRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, gemini.CallCount())
	assert.Empty(t, clock.sleeps())
}

func TestGenerate_LongHintSkipsWaitWhenFallbackExists(t *testing.T) {
	gemini := llm.NewMockProvider(llm.Gemini, httpErr(llm.Gemini, 429, "Please retry in 60s"))
	deepseek := llm.NewMockProvider(llm.DeepSeek, ok(pollReply))
	g, clock := newTestGenerator(t, llm.Providers{Gemini: gemini, DeepSeek: deepseek}, DefaultConfig())

	_, err := g.Generate(context.Background(), pollRequest())
	require.NoError(t, err)
	assert.Empty(t, clock.sleeps())
	assert.Equal(t, 1, deepseek.CallCount())
}

func TestGenerate_BudgetExceededFallsBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTotal = 5 * time.Second
	gemini := llm.NewMockProvider(llm.Gemini, repeat(httpErr(llm.Gemini, 503, "overloaded"), 4)...)
	deepseek := llm.NewMockProvider(llm.DeepSeek, ok(pollReply))
	g, clock := newTestGenerator(t, llm.Providers{Gemini: gemini, DeepSeek: deepseek}, cfg)

	_, err := g.Generate(context.Background(), pollRequest())
	require.NoError(t, err)
	// 2s fits the budget; the next 4s would not.
	assert.Equal(t, []time.Duration{2 * time.Second}, clock.sleeps())
	assert.Equal(t, 2, gemini.CallCount())
}

func TestGenerate_LongHintWithoutFallbackIsCapped(t *testing.T) {
	gemini := llm.NewMockProvider(llm.Gemini, repeat(httpErr(llm.Gemini, 429, "Please retry in 60s"), 4)...)
	g, clock := newTestGenerator(t, llm.Providers{Gemini: gemini}, DefaultConfig())

	_, err := g.Generate(context.Background(), pollRequest())
	var quota *QuotaExceededError
	require.ErrorAs(t, err, &quota)
	assert.Equal(t, 60*time.Second, quota.RetryAfter)
	assert.Equal(t, []time.Duration{7 * time.Second, 7 * time.Second, 7 * time.Second}, clock.sleeps())
	assert.Equal(t, 4, gemini.CallCount())
	assert.Contains(t, UserMessage(err), "60 seconds")
}

func TestGenerate_ExhaustedGenericFailure(t *testing.T) {
	gemini := llm.NewMockProvider(llm.Gemini, repeat(httpErr(llm.Gemini, 503, "The model is overloaded"), 4)...)
	g, clock := newTestGenerator(t, llm.Providers{Gemini: gemini}, DefaultConfig())

	_, err := g.Generate(context.Background(), pollRequest())
	assert.ErrorIs(t, err, ErrGenerationFailed)
	var upstream *llm.HTTPError
	assert.ErrorAs(t, err, &upstream)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 7 * time.Second}, clock.sleeps())
	assert.Equal(t, Counters{Attempts: 4, Fail: 4}, g.Stats().For(llm.Gemini))
	assert.Equal(t, MsgBusy, UserMessage(err))
}

func TestGenerate_ParseErrorRetries(t *testing.T) {
	gemini := llm.NewMockProvider(llm.Gemini,
		ok("this is not json at all"),
		llm.MockResponse{Err: &llm.EmptyResponseError{Provider: llm.Gemini, Model: "m"}},
		ok(pollReply),
	)
	g, clock := newTestGenerator(t, llm.Providers{Gemini: gemini}, DefaultConfig())

	resp, err := g.Generate(context.Background(), pollRequest())
	require.NoError(t, err)
	assert.Len(t, resp.Questions, 1)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, clock.sleeps())
}

func TestGenerate_RecoversTruncatedReply(t *testing.T) {
	truncated := `{"questions":[` +
		`{"question":"Q1","options":["A","B","C","D"],"correctIndex":0},` +
		`{"question":"Q2","options":["A","B","C","D"],"correctIndex":2},` +
		`{"question":"Q3","options":["A","B"`
	gemini := llm.NewMockProvider(llm.Gemini, ok(truncated))
	g, _ := newTestGenerator(t, llm.Providers{Gemini: gemini}, DefaultConfig())

	resp, err := g.Generate(context.Background(), pollRequest())
	require.NoError(t, err)
	assert.Equal(t, []string{"Q1", "Q2"}, resp.Texts())
}

func TestGenerate_FallbackSkipAndAbort(t *testing.T) {
	deepseek := llm.NewMockProvider(llm.DeepSeek,
		httpErr(llm.DeepSeek, 400, "Model Not Exist"),
		httpErr(llm.DeepSeek, 401, "invalid api key"),
	).WithModels("d1", "d2", "d3")
	groq := llm.NewMockProvider(llm.Groq,
		httpErr(llm.Groq, 400, "The model `g1` has been decommissioned and is no longer supported"),
		ok(pollReply),
	).WithModels("g1", "g2")
	g, clock := newTestGenerator(t, llm.Providers{DeepSeek: deepseek, Groq: groq}, DefaultConfig())

	_, err := g.Generate(context.Background(), pollRequest())
	require.NoError(t, err)
	// d1 is skipped, d2 aborts DeepSeek before d3 is tried.
	assert.Equal(t, 2, deepseek.CallCount())
	assert.Equal(t, 2, groq.CallCount())
	assert.Empty(t, clock.sleeps())
	assert.Equal(t, Counters{Attempts: 2, Fail: 2}, g.Stats().For(llm.DeepSeek))
	assert.Equal(t, Counters{Attempts: 2, Success: 1, Fail: 1}, g.Stats().For(llm.Groq))
}

func TestGenerate_DeepSeekDecommissionedAborts(t *testing.T) {
	deepseek := llm.NewMockProvider(llm.DeepSeek,
		httpErr(llm.DeepSeek, 400, "model d1 has been decommissioned"),
	).WithModels("d1", "d2")
	claude := llm.NewMockProvider(llm.Claude, ok(pollReply))
	g, _ := newTestGenerator(t, llm.Providers{DeepSeek: deepseek, Claude: claude}, DefaultConfig())

	_, err := g.Generate(context.Background(), pollRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, deepseek.CallCount())
	assert.Equal(t, 1, claude.CallCount())
}

func TestGenerate_AllFallbacksFailWithRateLimit(t *testing.T) {
	deepseek := llm.NewMockProvider(llm.DeepSeek, httpErr(llm.DeepSeek, 500, "internal error"))
	groq := llm.NewMockProvider(llm.Groq, httpErr(llm.Groq, 429, "Rate limit reached. Please try again in 1.5s"))
	g, _ := newTestGenerator(t, llm.Providers{DeepSeek: deepseek, Groq: groq}, DefaultConfig())

	_, err := g.Generate(context.Background(), pollRequest())
	var quota *QuotaExceededError
	require.ErrorAs(t, err, &quota)
	assert.Equal(t, 1, deepseek.CallCount())
	assert.Equal(t, 1, groq.CallCount())
}

// slowProvider blocks until its context is done.
type slowProvider struct{ calls int }

func (s *slowProvider) Call(ctx context.Context, _ llm.Request) (*llm.Result, error) {
	s.calls++
	<-ctx.Done()
	return nil, ctx.Err()
}
func (s *slowProvider) Name() llm.ProviderName { return llm.Gemini }
func (s *slowProvider) Models() []string       { return []string{"slow"} }
func (s *slowProvider) Keys() int              { return 1 }

func TestGenerate_AttemptTimeoutFallsBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AttemptTimeout = 20 * time.Millisecond
	cfg.MaxRetries = 0
	slow := &slowProvider{}
	deepseek := llm.NewMockProvider(llm.DeepSeek, ok(pollReply))
	g, _ := newTestGenerator(t, llm.Providers{Gemini: slow, DeepSeek: deepseek}, cfg)

	_, err := g.Generate(context.Background(), pollRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, slow.calls)

	stats := g.Stats()
	assert.Equal(t, Counters{Attempts: 1, Fail: 1}, stats.For(llm.Gemini))
	assert.EqualValues(t, 1, stats.For(llm.DeepSeek).Success)
}

func TestGenerate_CallerCancellation(t *testing.T) {
	cfg := DefaultConfig()
	slow := &slowProvider{}
	deepseek := llm.NewMockProvider(llm.DeepSeek, ok(pollReply))
	g, _ := newTestGenerator(t, llm.Providers{Gemini: slow, DeepSeek: deepseek}, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := g.Generate(ctx, pollRequest())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, deepseek.CallCount())
}

func TestGenerate_WaitsForGateBeforeCalling(t *testing.T) {
	gt := gate.New(1)
	require.NoError(t, gt.Acquire(context.Background()))
	defer gt.Release()

	gemini := llm.NewMockProvider(llm.Gemini, ok(pollReply))
	g, _ := newTestGenerator(t, llm.Providers{Gemini: gemini}, DefaultConfig(), WithGate(gt))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := g.Generate(ctx, pollRequest())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, gemini.CallCount())
	assert.EqualValues(t, 1, g.Stats().Gate.InFlight)
}

func TestGenerate_SinkFailuresDoNotFailGeneration(t *testing.T) {
	sinks := []UsageSink{
		UsageSinkFunc(func(context.Context, UsageRecord) error { return errors.New("disk full") }),
		UsageSinkFunc(func(context.Context, UsageRecord) error { panic("sink bug") }),
	}
	for _, sink := range sinks {
		gemini := llm.NewMockProvider(llm.Gemini, ok(pollReply))
		g, _ := newTestGenerator(t, llm.Providers{Gemini: gemini}, DefaultConfig(), WithSink(sink))

		resp, err := g.Generate(context.Background(), pollRequest())
		require.NoError(t, err)
		assert.Len(t, resp.Questions, 1)
	}
}

func TestGenerate_TextIsWindowed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TextWindow = 10
	gemini := llm.NewMockProvider(llm.Gemini, ok(pollReply))
	g, _ := newTestGenerator(t, llm.Providers{Gemini: gemini}, cfg)

	req := pollRequest()
	req.Text = "aaaaaaaaaabbbbbbbbbbcccc"
	req.WindowIndex = 1
	_, err := g.Generate(context.Background(), req)
	require.NoError(t, err)

	prompt := gemini.CallsSnapshot()[0].Prompt
	assert.Contains(t, prompt, "<<<\nbbbbbbbbbb\n>>>")
}

func TestStatsReset(t *testing.T) {
	gemini := llm.NewMockProvider(llm.Gemini, ok(pollReply))
	g, _ := newTestGenerator(t, llm.Providers{Gemini: gemini}, DefaultConfig())

	_, err := g.Generate(context.Background(), pollRequest())
	require.NoError(t, err)

	snap := g.Stats()
	assert.EqualValues(t, 1, snap.For(llm.Gemini).Success)

	g.ResetStats()
	assert.Empty(t, g.Stats().Providers)
	assert.Empty(t, g.Stats().LastProvider)
	// Earlier snapshots are copies.
	assert.EqualValues(t, 1, snap.For(llm.Gemini).Success)
}

func TestGenerate_FallbackStateIsPerCall(t *testing.T) {
	gemini := llm.NewMockProvider(llm.Gemini, httpErr(llm.Gemini, 429,
		"Quota exceeded for metric: generativelanguage.googleapis.com/generate_content_free_tier_requests, limit: 0"))
	deepseek := llm.NewMockProvider(llm.DeepSeek, ok(pollReply))
	g, _ := newTestGenerator(t, llm.Providers{Gemini: gemini, DeepSeek: deepseek}, DefaultConfig())

	_, err := g.Generate(context.Background(), pollRequest())
	require.NoError(t, err)
	assert.Equal(t, llm.DeepSeek, g.Stats().LastProvider)

	// The next call starts over at Gemini.
	gemini.AddResponse(ok(pollReply))
	resp, err := g.Generate(context.Background(), pollRequest())
	require.NoError(t, err)
	require.Len(t, resp.Questions, 1)
	assert.Equal(t, 2, gemini.CallCount())
	assert.Equal(t, 1, deepseek.CallCount())
	assert.Equal(t, llm.Gemini, g.Stats().LastProvider)

	// Gemini hits the zero quota again, so DeepSeek serves from a reply queued mid-test.
	gemini.AddResponse(httpErr(llm.Gemini, 429, "free_tier limit: 0"))
	deepseek.AddResponse(ok(pollReply))
	_, err = g.Generate(context.Background(), pollRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, deepseek.CallCount())
	assert.EqualValues(t, 2, g.Stats().For(llm.DeepSeek).Success)
}
