package llm

import "context"

// Provider is the core abstraction over one upstream chat-completion API.
// Adapters send exactly one logical request per Call; retry, rotation and
// fallback policy belong to the caller.
type Provider interface {
	// Call sends the prompt to the model named in req (or the first
	// candidate when req.Model is empty) and returns the raw reply.
	Call(ctx context.Context, req Request) (*Result, error)

	// Name identifies the upstream vendor.
	Name() ProviderName

	// Models returns the model candidates in preference order: an explicit
	// override from configuration first, then known-good defaults.
	Models() []string

	// Keys reports how many API keys the provider can rotate through.
	Keys() int
}

// ProviderName identifies an upstream vendor.
type ProviderName string

const (
	Gemini   ProviderName = "gemini"
	DeepSeek ProviderName = "deepseek"
	Groq     ProviderName = "groq"
	Claude   ProviderName = "claude"
)

// Request describes a single upstream call.
type Request struct {
	// System is the system instruction.
	System string

	// Prompt is the user message.
	Prompt string

	// Model selects the model candidate. Empty means Models()[0].
	Model string

	// KeyIndex selects the API key. It is taken modulo Keys().
	KeyIndex int
}

// Result holds one upstream reply.
type Result struct {
	// Content is the raw model output, unparsed.
	Content string

	// Usage reports token consumption for this call.
	Usage Usage

	// Provider and Model identify who served the request.
	Provider ProviderName
	Model    string
}

// Usage tracks token consumption for a single call. A zero field means the
// upstream did not report a usable value.
type Usage struct {
	PromptTokens     int `json:"promptTokens,omitempty"`
	CompletionTokens int `json:"completionTokens,omitempty"`
	TotalTokens      int `json:"totalTokens,omitempty"`
}

// modelFor returns the requested model or the first candidate.
func modelFor(req Request, models []string) string {
	if req.Model != "" {
		return req.Model
	}
	if len(models) > 0 {
		return models[0]
	}
	return ""
}

// wrapIndex maps any key index onto [0, n).
func wrapIndex(i, n int) int {
	if n == 0 {
		return 0
	}
	if i < 0 {
		i = -i
	}
	return i % n
}

// candidates builds an ordered, de-duplicated model list with override first.
func candidates(override string, defaults []string, aliases map[string]string) []string {
	out := make([]string, 0, len(defaults)+1)
	seen := make(map[string]bool)
	add := func(m string) {
		if m == "" || seen[m] {
			return
		}
		seen[m] = true
		out = append(out, m)
	}
	add(resolveModel(override, aliases))
	for _, m := range defaults {
		add(m)
	}
	return out
}

// resolveModel maps a friendly model name to a provider model ID.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	// If not in the map, use as-is (allows direct model IDs).
	return name
}
