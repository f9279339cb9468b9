package quizgen

import (
	"sync"
	"time"

	"github.com/abhisek/quizbot/internal/gate"
	"github.com/abhisek/quizbot/internal/llm"
)

// Counters are the attempt outcomes of one provider.
type Counters struct {
	Attempts int64 `json:"attempts"`
	Success  int64 `json:"success"`
	Fail     int64 `json:"fail"`
}

// Stats is a snapshot of the process-wide generation counters.
type Stats struct {
	Providers    map[llm.ProviderName]Counters `json:"providers"`
	LastProvider llm.ProviderName             `json:"lastProvider,omitempty"`
	LastModel    string                       `json:"lastModel,omitempty"`
	LastError    string                       `json:"lastError,omitempty"`
	LastAt       time.Time                    `json:"lastAt,omitzero"`
	Gate         gate.Stats                   `json:"gate"`
}

// For returns the counters of p, zero if it was never attempted.
func (s Stats) For(p llm.ProviderName) Counters {
	return s.Providers[p]
}

// statsRecorder owns the counters for the lifetime of a Generator.
// Attempts are counted before each upstream call and the outcome after.
type statsRecorder struct {
	mu  sync.Mutex
	now func() time.Time
	s   Stats
}

func newStatsRecorder(now func() time.Time) *statsRecorder {
	return &statsRecorder{now: now, s: Stats{Providers: map[llm.ProviderName]Counters{}}}
}

func (r *statsRecorder) attempt(p llm.ProviderName) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.s.Providers[p]
	c.Attempts++
	r.s.Providers[p] = c
}

func (r *statsRecorder) success(p llm.ProviderName, model string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.s.Providers[p]
	c.Success++
	r.s.Providers[p] = c
	r.s.LastProvider, r.s.LastModel, r.s.LastError = p, model, ""
	r.s.LastAt = r.now()
}

func (r *statsRecorder) fail(p llm.ProviderName, model string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.s.Providers[p]
	c.Fail++
	r.s.Providers[p] = c
	r.s.LastProvider, r.s.LastModel = p, model
	if err != nil {
		r.s.LastError = err.Error()
	}
	r.s.LastAt = r.now()
}

func (r *statsRecorder) snapshot() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.s
	out.Providers = make(map[llm.ProviderName]Counters, len(r.s.Providers))
	for k, v := range r.s.Providers {
		out.Providers[k] = v
	}
	return out
}

func (r *statsRecorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.s = Stats{Providers: map[llm.ProviderName]Counters{}}
}
