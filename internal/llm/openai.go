package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Base URLs of the OpenAI-compatible upstreams.
const (
	DefaultDeepSeekBaseURL = "https://api.deepseek.com/v1"
	DefaultGroqBaseURL     = "https://api.groq.com/openai/v1"
)

var (
	deepseekDefaults = []string{"deepseek-chat"}
	groqDefaults     = []string{"llama-3.3-70b-versatile", "llama-3.1-8b-instant", "gemma2-9b-it"}
)

// OpenAIProvider implements Provider for OpenAI-compatible chat-completion
// APIs. DeepSeek and Groq are both served by it through BaseURL.
type OpenAIProvider struct {
	name      ProviderName
	clients   []*openai.Client
	models    []string
	maxTokens int
	jsonMode  bool
}

// NewDeepSeekProvider creates a provider targeting the DeepSeek API.
func NewDeepSeekProvider(cfg OpenAIConfig, jsonMode bool, httpClient *http.Client) (*OpenAIProvider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultDeepSeekBaseURL
	}
	return newOpenAIProvider(DeepSeek, cfg, deepseekDefaults, jsonMode, httpClient)
}

// NewGroqProvider creates a provider targeting the Groq API.
func NewGroqProvider(cfg OpenAIConfig, jsonMode bool, httpClient *http.Client) (*OpenAIProvider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGroqBaseURL
	}
	return newOpenAIProvider(Groq, cfg, groqDefaults, jsonMode, httpClient)
}

func newOpenAIProvider(name ProviderName, cfg OpenAIConfig, defaults []string, jsonMode bool, httpClient *http.Client) (*OpenAIProvider, error) {
	if len(cfg.APIKeys) == 0 {
		return nil, missingKey(name)
	}

	p := &OpenAIProvider{
		name:      name,
		models:    candidates(cfg.Model, defaults, nil),
		maxTokens: cfg.MaxTokens,
		jsonMode:  jsonMode,
	}
	for _, key := range cfg.APIKeys {
		config := openai.DefaultConfig(key)
		config.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
		if httpClient != nil {
			config.HTTPClient = httpClient
		}
		p.clients = append(p.clients, openai.NewClientWithConfig(config))
	}
	return p, nil
}

func (p *OpenAIProvider) Name() ProviderName { return p.name }
func (p *OpenAIProvider) Models() []string   { return p.models }
func (p *OpenAIProvider) Keys() int          { return len(p.clients) }

func (p *OpenAIProvider) Call(ctx context.Context, req Request) (*Result, error) {
	if len(p.clients) == 0 {
		return nil, missingKey(p.name)
	}
	model := modelFor(req, p.models)
	client := p.clients[wrapIndex(req.KeyIndex, len(p.clients))]

	resp, err := p.complete(ctx, client, model, req, p.jsonMode)
	if err != nil {
		var httpErr *HTTPError
		if p.jsonMode && errors.As(err, &httpErr) && rejectsJSONMode(httpErr.Status, httpErr.Body) {
			resp, err = p.complete(ctx, client, model, req, false)
		}
	}
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, &EmptyResponseError{Provider: p.name, Model: model}
	}

	served := resp.Model
	if served == "" {
		served = model
	}
	return &Result{
		Content:  resp.Choices[0].Message.Content,
		Usage:    usageOf(resp.Usage),
		Provider: p.name,
		Model:    served,
	}, nil
}

func (p *OpenAIProvider) complete(ctx context.Context, client *openai.Client, model string, req Request, jsonMode bool) (openai.ChatCompletionResponse, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    buildOpenAIMessages(req),
		MaxTokens:   p.maxTokens,
		Temperature: Temperature,
	}
	if jsonMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return resp, p.mapError(model, err)
	}
	return resp, nil
}

func buildOpenAIMessages(req Request) []openai.ChatCompletionMessage {
	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	return append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})
}

func (p *OpenAIProvider) mapError(model string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		body := apiErr.Message
		if apiErr.Type != "" {
			body = apiErr.Type + ": " + body
		}
		if apiErr.Code != nil {
			body += fmt.Sprintf(" (code: %v)", apiErr.Code)
		}
		if apiErr.Param != nil {
			body += fmt.Sprintf(" (param: %s)", *apiErr.Param)
		}
		return &HTTPError{Provider: p.name, Model: model, Status: apiErr.HTTPStatusCode, Body: body, Err: err}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &HTTPError{Provider: p.name, Model: model, Status: reqErr.HTTPStatusCode, Body: string(reqErr.Body), Err: err}
	}

	return fmt.Errorf("%s %s: %w", p.name, model, err)
}
