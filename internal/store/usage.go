package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/quizbot/internal/llm"
	"github.com/abhisek/quizbot/internal/quizgen"
)

// UsageRow is one recorded generation call.
type UsageRow struct {
	ID               int64
	CallID           string
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Latency          time.Duration
	CreatedAt        time.Time
}

// UsageSummary aggregates the rows of one provider and model.
type UsageSummary struct {
	Provider         string
	Model            string
	Calls            int
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	AvgLatency       time.Duration
}

// Cost is the estimated USD cost, zero for models without pricing.
func (s UsageSummary) Cost() float64 {
	return llm.UsageCost(s.Model, llm.Usage{
		PromptTokens:     s.PromptTokens,
		CompletionTokens: s.CompletionTokens,
	})
}

// UsageRepo persists and queries LLM usage. It satisfies
// quizgen.UsageSink.
type UsageRepo interface {
	RecordUsage(ctx context.Context, rec quizgen.UsageRecord) error

	// Summary aggregates usage since the given time (zero means all
	// time), ordered by provider and model.
	Summary(ctx context.Context, since time.Time) ([]UsageSummary, error)

	// Recent returns the newest rows first.
	Recent(ctx context.Context, limit int) ([]UsageRow, error)
}

var _ quizgen.UsageSink = (*usageRepo)(nil)

type usageRepo struct {
	drv *entsql.Driver
}

func (r *usageRepo) RecordUsage(ctx context.Context, rec quizgen.UsageRecord) error {
	at := rec.At
	if at.IsZero() {
		at = time.Now()
	}
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(usageTableName).
		Columns("call_id", "provider", "model", "prompt_tokens", "completion_tokens", "total_tokens", "latency_ms", "created_at").
		Values(rec.CallID, string(rec.Provider), rec.Model,
			rec.PromptTokens, rec.CompletionTokens, rec.TotalTokens,
			rec.Latency.Milliseconds(), at.UnixMilli()).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save usage: %w", err)
	}
	return nil
}

func (r *usageRepo) Summary(ctx context.Context, since time.Time) ([]UsageSummary, error) {
	var sinceMs int64
	if !since.IsZero() {
		sinceMs = since.UnixMilli()
	}
	query, args := entsql.Dialect(dialect.SQLite).
		Select(
			"provider",
			"model",
			entsql.As(entsql.Count("*"), "calls"),
			entsql.As(entsql.Sum("prompt_tokens"), "prompt_tokens"),
			entsql.As(entsql.Sum("completion_tokens"), "completion_tokens"),
			entsql.As(entsql.Sum("total_tokens"), "total_tokens"),
			entsql.As(entsql.Avg("latency_ms"), "avg_latency_ms"),
		).
		From(entsql.Table(usageTableName)).
		Where(entsql.GTE("created_at", sinceMs)).
		GroupBy("provider", "model").
		OrderBy("provider", "model").
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query usage summary: %w", err)
	}
	defer rows.Close()

	var out []UsageSummary
	for rows.Next() {
		var s UsageSummary
		var avgMs float64
		if err := rows.Scan(&s.Provider, &s.Model, &s.Calls,
			&s.PromptTokens, &s.CompletionTokens, &s.TotalTokens, &avgMs); err != nil {
			return nil, fmt.Errorf("scan usage summary: %w", err)
		}
		s.AvgLatency = time.Duration(avgMs * float64(time.Millisecond))
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *usageRepo) Recent(ctx context.Context, limit int) ([]UsageRow, error) {
	if limit <= 0 {
		limit = 20
	}
	query, args := entsql.Dialect(dialect.SQLite).
		Select("id", "call_id", "provider", "model", "prompt_tokens", "completion_tokens", "total_tokens", "latency_ms", "created_at").
		From(entsql.Table(usageTableName)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id")).
		Limit(limit).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query recent usage: %w", err)
	}
	defer rows.Close()

	var out []UsageRow
	for rows.Next() {
		var u UsageRow
		var latencyMs, createdMs int64
		if err := rows.Scan(&u.ID, &u.CallID, &u.Provider, &u.Model,
			&u.PromptTokens, &u.CompletionTokens, &u.TotalTokens, &latencyMs, &createdMs); err != nil {
			return nil, fmt.Errorf("scan usage row: %w", err)
		}
		u.Latency = time.Duration(latencyMs) * time.Millisecond
		u.CreatedAt = time.UnixMilli(createdMs)
		out = append(out, u)
	}
	return out, rows.Err()
}
