package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicModels maps friendly names to Anthropic model IDs.
var anthropicModels = map[string]string{
	"claude-sonnet": "claude-sonnet-4-5",
	"claude-haiku":  "claude-haiku-4-5",
}

var anthropicDefaults = []string{"claude-haiku-4-5", "claude-sonnet-4-5"}

// AnthropicProvider implements Provider using the Anthropic SDK. It is the
// last fallback tier and has no forced JSON mode; the prompt and the
// recovery parser carry the format.
type AnthropicProvider struct {
	clients   []*anthropic.Client
	models    []string
	maxTokens int
}

// NewAnthropicProvider creates a new Anthropic provider. httpClient may be nil.
func NewAnthropicProvider(cfg AnthropicConfig, httpClient *http.Client) (*AnthropicProvider, error) {
	if len(cfg.APIKeys) == 0 {
		return nil, missingKey(Claude)
	}

	p := &AnthropicProvider{
		models:    candidates(cfg.Model, anthropicDefaults, anthropicModels),
		maxTokens: cfg.MaxTokens,
	}
	for _, key := range cfg.APIKeys {
		opts := []option.RequestOption{
			option.WithAPIKey(key),
			option.WithMaxRetries(0),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}
		if httpClient != nil {
			opts = append(opts, option.WithHTTPClient(httpClient))
		}
		client := anthropic.NewClient(opts...)
		p.clients = append(p.clients, &client)
	}
	return p, nil
}

func (p *AnthropicProvider) Name() ProviderName { return Claude }
func (p *AnthropicProvider) Models() []string   { return p.models }
func (p *AnthropicProvider) Keys() int          { return len(p.clients) }

func (p *AnthropicProvider) Call(ctx context.Context, req Request) (*Result, error) {
	if len(p.clients) == 0 {
		return nil, missingKey(Claude)
	}
	model := modelFor(req, p.models)
	client := p.clients[wrapIndex(req.KeyIndex, len(p.clients))]

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(p.maxTokens),
		Temperature: anthropic.Float(Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	msg, err := client.Messages.New(ctx, params)
	if err != nil {
		return nil, mapAnthropicError(model, err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return nil, &EmptyResponseError{Provider: Claude, Model: model}
	}

	served := string(msg.Model)
	if served == "" {
		served = model
	}
	return &Result{
		Content:  text.String(),
		Usage:    usageFromJSON([]byte(msg.Usage.RawJSON())),
		Provider: Claude,
		Model:    served,
	}, nil
}

func mapAnthropicError(model string, err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &HTTPError{
			Provider: Claude,
			Model:    model,
			Status:   apiErr.StatusCode,
			Body:     apiErr.RawJSON(),
			Err:      err,
		}
	}
	return fmt.Errorf("%s %s: %w", Claude, model, err)
}
