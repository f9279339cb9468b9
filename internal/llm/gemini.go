package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// geminiModels maps friendly names to Gemini model IDs.
var geminiModels = map[string]string{
	"gemini-flash": "gemini-2.5-flash",
	"gemini-pro":   "gemini-2.5-pro",
	"gemini-lite":  "gemini-2.0-flash-lite",
}

var geminiDefaults = []string{"gemini-2.5-flash", "gemini-2.0-flash", "gemini-2.0-flash-lite"}

// GeminiProvider implements Provider using the Google Gemini SDK. It holds
// one client per configured API key.
type GeminiProvider struct {
	clients   []*genai.Client
	models    []string
	maxTokens int
	jsonMode  bool
}

// NewGeminiProvider creates a new Gemini provider. httpClient may be nil.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig, jsonMode bool, httpClient *http.Client) (*GeminiProvider, error) {
	if len(cfg.APIKeys) == 0 {
		return nil, missingKey(Gemini)
	}

	p := &GeminiProvider{
		models:    candidates(cfg.Model, geminiDefaults, geminiModels),
		maxTokens: cfg.MaxOutputTokens,
		jsonMode:  jsonMode,
	}
	for i, key := range cfg.APIKeys {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:      key,
			Backend:     genai.BackendGeminiAPI,
			HTTPClient:  httpClient,
			HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
		})
		if err != nil {
			return nil, fmt.Errorf("create Gemini client for key %d: %w", i, err)
		}
		p.clients = append(p.clients, client)
	}
	return p, nil
}

func (p *GeminiProvider) Name() ProviderName { return Gemini }
func (p *GeminiProvider) Models() []string   { return p.models }
func (p *GeminiProvider) Keys() int          { return len(p.clients) }

func (p *GeminiProvider) Call(ctx context.Context, req Request) (*Result, error) {
	if len(p.clients) == 0 {
		return nil, missingKey(Gemini)
	}
	model := modelFor(req, p.models)
	client := p.clients[wrapIndex(req.KeyIndex, len(p.clients))]

	result, err := p.generate(ctx, client, model, req, p.jsonMode)
	if err != nil {
		var httpErr *HTTPError
		if p.jsonMode && errors.As(err, &httpErr) && rejectsJSONMode(httpErr.Status, httpErr.Body) {
			result, err = p.generate(ctx, client, model, req, false)
		}
	}
	if err != nil {
		return nil, err
	}

	text := result.Text()
	if text == "" {
		return nil, &EmptyResponseError{Provider: Gemini, Model: model}
	}

	return &Result{
		Content:  text,
		Usage:    usageOf(result.UsageMetadata),
		Provider: Gemini,
		Model:    model,
	}, nil
}

func (p *GeminiProvider) generate(ctx context.Context, client *genai.Client, model string, req Request, jsonMode bool) (*genai.GenerateContentResponse, error) {
	temp := float32(Temperature)
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(p.maxTokens),
		Temperature:     &temp,
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}
	if jsonMode {
		config.ResponseMIMEType = "application/json"
	}

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: req.Prompt}},
	}}

	result, err := client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, mapGeminiError(model, err)
	}
	return result, nil
}

// mapGeminiError turns SDK errors into HTTPError so classification sees the
// status and the full message, including structured details such as
// retryDelay.
func mapGeminiError(model string, err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		var ptr *genai.APIError
		if !errors.As(err, &ptr) || ptr == nil {
			return fmt.Errorf("gemini %s: %w", model, err)
		}
		apiErr = *ptr
	}

	body := apiErr.Message
	if apiErr.Status != "" {
		body = apiErr.Status + ": " + body
	}
	if len(apiErr.Details) > 0 {
		if details, mErr := json.Marshal(apiErr.Details); mErr == nil {
			body += " " + string(details)
		}
	}
	return &HTTPError{
		Provider: Gemini,
		Model:    model,
		Status:   apiErr.Code,
		Body:     body,
		Err:      err,
	}
}
