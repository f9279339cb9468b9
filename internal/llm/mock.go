package llm

import (
	"context"
	"fmt"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content string
	Usage   Usage
	Err     error
}

// MockProvider is a deterministic Provider for testing.
// It returns canned responses in FIFO order and records all requests.
type MockProvider struct {
	mu        sync.Mutex
	name      ProviderName
	models    []string
	keys      int
	responses []MockResponse
	Calls     []Request
}

// NewMockProvider creates a MockProvider with the given canned responses.
// It reports one model named after the provider and a single key.
func NewMockProvider(name ProviderName, responses ...MockResponse) *MockProvider {
	return &MockProvider{
		name:      name,
		models:    []string{string(name) + "-model"},
		keys:      1,
		responses: responses,
	}
}

// WithModels replaces the model candidate list.
func (m *MockProvider) WithModels(models ...string) *MockProvider {
	m.models = models
	return m
}

// WithKeys sets how many API keys the mock pretends to hold.
func (m *MockProvider) WithKeys(n int) *MockProvider {
	m.keys = n
	return m
}

// Call returns the next canned response or an error if the queue is empty.
// The recorded request carries the resolved model.
func (m *MockProvider) Call(_ context.Context, req Request) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	req.Model = modelFor(req, m.models)
	m.Calls = append(m.Calls, req)

	if len(m.responses) == 0 {
		return nil, fmt.Errorf("mock %s: no canned response left", m.name)
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]

	if resp.Err != nil {
		return nil, resp.Err
	}
	return &Result{
		Content:  resp.Content,
		Usage:    resp.Usage,
		Provider: m.name,
		Model:    req.Model,
	}, nil
}

func (m *MockProvider) Name() ProviderName { return m.name }
func (m *MockProvider) Models() []string   { return m.models }
func (m *MockProvider) Keys() int          { return m.keys }

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Call invocations made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// CallsSnapshot returns a copy of the recorded requests.
func (m *MockProvider) CallsSnapshot() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.Calls...)
}
