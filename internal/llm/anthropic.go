package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Anthropic defaults.
const (
	DefaultAnthropicBaseURL   = "https://api.anthropic.com/v1"
	DefaultAnthropicModel     = "claude-sonnet-4-20250514"
	DefaultAnthropicMaxTokens = 16384
	anthropicVersion          = "2023-06-01"
)

// AnthropicProvider implements Completer for Anthropic's Messages API.
type AnthropicProvider struct {
	apiKey    string
	baseURL   string
	model     string
	maxTokens int
	client    *http.Client
}

// AnthropicOption configures the Anthropic provider.
type AnthropicOption func(*AnthropicProvider)

// WithAnthropicModel sets the default model.
func WithAnthropicModel(model string) AnthropicOption {
	return func(p *AnthropicProvider) {
		if model != "" {
			p.model = model
		}
	}
}

// WithAnthropicBaseURL sets a custom base URL.
func WithAnthropicBaseURL(url string) AnthropicOption {
	return func(p *AnthropicProvider) {
		if url != "" {
			p.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithAnthropicMaxTokens sets the default output token limit.
func WithAnthropicMaxTokens(n int) AnthropicOption {
	return func(p *AnthropicProvider) {
		if n > 0 {
			p.maxTokens = n
		}
	}
}

// WithAnthropicHTTPClient sets a custom HTTP client.
func WithAnthropicHTTPClient(client *http.Client) AnthropicOption {
	return func(p *AnthropicProvider) { p.client = client }
}

// NewAnthropicProvider creates an Anthropic provider.
func NewAnthropicProvider(apiKey string, opts ...AnthropicOption) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	p := &AnthropicProvider{
		apiKey:    apiKey,
		baseURL:   DefaultAnthropicBaseURL,
		model:     DefaultAnthropicModel,
		maxTokens: DefaultAnthropicMaxTokens,
		client:    &http.Client{Timeout: 300 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *AnthropicProvider) Name() string { return ProviderAnthropic }

// Model returns the default model.
func (p *AnthropicProvider) Model() string { return p.model }

// Complete sends prompt as a single user message.
func (p *AnthropicProvider) Complete(ctx context.Context, prompt string, opts *ChatOptions) (*Response, error) {
	return p.Chat(ctx, []Message{UserMessage(prompt)}, opts)
}

// Chat sends a messages request to Anthropic.
func (p *AnthropicProvider) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	start := time.Now()
	model := p.resolveModel(opts)

	body := p.buildRequest(messages, model, opts)
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("anthropic: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/messages", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	p.setHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderDown, err)
	}
	defer resp.Body.Close()

	if err := p.checkError(resp); err != nil {
		return nil, err
	}

	var result anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("anthropic: decode response: %w", err)
	}

	r := p.parseResponse(&result, start)
	if r.Content == "" {
		return nil, ErrEmptyResponse
	}
	return r, nil
}

// ── Internal Types ──

type anthropicRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature *float64           `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string                  `json:"role"`
	Content []anthropicContentBlock `json:"content"`
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type anthropicResponse struct {
	ID         string                  `json:"id"`
	Type       string                  `json:"type"`
	Role       string                  `json:"role"`
	Content    []anthropicContentBlock `json:"content"`
	Model      string                  `json:"model"`
	StopReason string                  `json:"stop_reason"`
	Usage      anthropicUsage          `json:"usage"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicErrorResponse struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// ── Helpers ──

func (p *AnthropicProvider) resolveModel(opts *ChatOptions) string {
	if opts != nil && opts.Model != "" {
		return opts.Model
	}
	return p.model
}

func (p *AnthropicProvider) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
}

func (p *AnthropicProvider) buildRequest(messages []Message, model string, opts *ChatOptions) anthropicRequest {
	r := anthropicRequest{
		Model:     model,
		MaxTokens: p.maxTokens,
	}
	for _, m := range messages {
		r.Messages = append(r.Messages, anthropicMessage{
			Role:    string(m.Role),
			Content: []anthropicContentBlock{{Type: "text", Text: m.Content}},
		})
	}
	if opts != nil {
		if opts.MaxTokens > 0 {
			r.MaxTokens = opts.MaxTokens
		}
		if opts.Temperature > 0 {
			r.Temperature = &opts.Temperature
		}
		r.System = opts.System
	}
	return r
}

func (p *AnthropicProvider) checkError(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var apiErr anthropicErrorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", ErrNoAPIKey, apiErr.Error.Message)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", ErrRateLimit, apiErr.Error.Message)
		case http.StatusBadRequest:
			if strings.Contains(apiErr.Error.Message, "prompt is too long") {
				return fmt.Errorf("%w: %s", ErrContextLength, apiErr.Error.Message)
			}
		case http.StatusInternalServerError, http.StatusServiceUnavailable, 529:
			return fmt.Errorf("%w: %s", ErrProviderDown, apiErr.Error.Message)
		}
		return fmt.Errorf("anthropic: API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
	}
	return fmt.Errorf("anthropic: HTTP %d: %s", resp.StatusCode, string(body))
}

func (p *AnthropicProvider) parseResponse(raw *anthropicResponse, start time.Time) *Response {
	r := &Response{
		Model:    raw.Model,
		Provider: ProviderAnthropic,
		Latency:  time.Since(start),
		Usage: Usage{
			PromptTokens:     raw.Usage.InputTokens,
			CompletionTokens: raw.Usage.OutputTokens,
			TotalTokens:      raw.Usage.InputTokens + raw.Usage.OutputTokens,
		},
		FinishReason: mapAnthropicStopReason(raw.StopReason),
	}

	var textParts []string
	for _, block := range raw.Content {
		if block.Type == "text" {
			textParts = append(textParts, block.Text)
		}
	}
	r.Content = strings.Join(textParts, "")
	return r
}

func mapAnthropicStopReason(reason string) FinishReason {
	switch reason {
	case "end_turn", "stop_sequence":
		return FinishStop
	case "max_tokens":
		return FinishLength
	default:
		return FinishReason(reason)
	}
}
