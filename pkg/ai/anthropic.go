package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	gserrors "github.com/tshields86/git-sense/pkg/errors"
)

// Anthropic API configuration.
const (
	anthropicAPIURL       = "https://api.anthropic.com/v1/messages"
	anthropicAPIVersion   = "2023-06-01"
	anthropicDefaultModel = "claude-sonnet-4-20250514"
	anthropicMaxTokens    = 4096
)

// AnthropicProvider implements Provider for Claude API.
type AnthropicProvider struct {
	apiKey    string
	model     string
	endpoint  string
	maxTokens int
	logger    *slog.Logger
	client    *http.Client
}

// AnthropicOption configures an AnthropicProvider.
type AnthropicOption func(*AnthropicProvider)

// WithEndpoint overrides the Messages API URL. Empty keeps the default.
func WithEndpoint(url string) AnthropicOption {
	return func(p *AnthropicProvider) {
		if url != "" {
			p.endpoint = url
		}
	}
}

// WithMaxTokens sets the completion budget. Non-positive keeps the default.
func WithMaxTokens(n int) AnthropicOption {
	return func(p *AnthropicProvider) {
		if n > 0 {
			p.maxTokens = n
		}
	}
}

// WithHTTPClient replaces the HTTP client used for requests.
func WithHTTPClient(c *http.Client) AnthropicOption {
	return func(p *AnthropicProvider) {
		if c != nil {
			p.client = c
		}
	}
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(apiKey, model string, logger *slog.Logger, opts ...AnthropicOption) *AnthropicProvider {
	if model == "" {
		model = anthropicDefaultModel
	}
	p := &AnthropicProvider{
		apiKey:    apiKey,
		model:     model,
		endpoint:  anthropicAPIURL,
		maxTokens: anthropicMaxTokens,
		logger:    logger,
		client:    &http.Client{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider name.
func (p *AnthropicProvider) Name() string {
	return ProviderAnthropic
}

// IsAvailable checks if the provider is configured and ready.
func (p *AnthropicProvider) IsAvailable() bool {
	return p.apiKey != ""
}

// Model returns the model requests are sent to.
func (p *AnthropicProvider) Model() string {
	return p.model
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
	System    string             `json:"system,omitempty"`
	Stream    bool               `json:"stream,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicErrorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// anthropicError represents an Anthropic API error response.
type anthropicError struct {
	Type  string             `json:"type"`
	Error anthropicErrorBody `json:"error"`
}

// anthropicStreamEvent represents a streaming event from Anthropic.
type anthropicStreamEvent struct {
	Type  string              `json:"type"`
	Index int                 `json:"index,omitempty"`
	Delta *anthropicDelta     `json:"delta,omitempty"`
	Error *anthropicErrorBody `json:"error,omitempty"`
}

// anthropicDelta represents incremental content in streaming.
type anthropicDelta struct {
	Type       string `json:"type"`
	Text       string `json:"text,omitempty"`
	StopReason string `json:"stop_reason,omitempty"`
}

// StreamChat performs a streaming chat completion.
func (p *AnthropicProvider) StreamChat(ctx context.Context, messages []Message) (<-chan StreamChunk, error) {
	if !p.IsAvailable() {
		return nil, gserrors.NewAIError(ProviderAnthropic, "StreamChat", "provider not configured")
	}

	systemPrompt, apiMessages := p.convertMessages(messages)

	reqBody := anthropicRequest{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		Messages:  apiMessages,
		System:    systemPrompt,
		Stream:    true,
	}

	p.logDebug("sending streaming chat request",
		"model", p.model,
		"max_tokens", p.maxTokens,
		"message_count", len(apiMessages))

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, gserrors.NewAIErrorWithCause(ProviderAnthropic, "StreamChat",
			"failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, gserrors.NewAIErrorWithCause(ProviderAnthropic, "StreamChat",
			"failed to create request", err)
	}

	p.setHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, gserrors.NewAIErrorWithCause(ProviderAnthropic, "StreamChat",
			"request failed", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, p.handleErrorResponse(resp, "StreamChat")
	}

	chunks := make(chan StreamChunk)
	go p.streamResponse(ctx, resp.Body, chunks)

	return chunks, nil
}

// streamResponse reads SSE events and sends chunks to the channel.
func (p *AnthropicProvider) streamResponse(ctx context.Context, body io.ReadCloser, chunks chan<- StreamChunk) {
	defer close(chunks)

	// Close body on context cancellation to unblock scanner.Scan().
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			body.Close()
		case <-done:
		}
	}()
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			chunks <- StreamChunk{Error: ctx.Err(), Done: true}
			return
		default:
		}

		line := scanner.Text()

		// Skip blank separators, comments and "event:" lines; the JSON payload
		// carries its own type.
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			chunks <- StreamChunk{Done: true}
			return
		}

		var event anthropicStreamEvent
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			p.logDebug("failed to parse stream event", "error", err, "data", data)
			continue
		}

		switch event.Type {
		case "content_block_delta":
			if event.Delta != nil && event.Delta.Text != "" {
				chunks <- StreamChunk{Content: event.Delta.Text}
			}
		case "message_delta":
			if event.Delta != nil && event.Delta.StopReason != "" {
				p.logDebug("stream stopping", "stop_reason", event.Delta.StopReason)
			}
		case "message_stop":
			chunks <- StreamChunk{Done: true}
			return
		case "error":
			msg := "stream error"
			if event.Error != nil && event.Error.Message != "" {
				msg = event.Error.Message
			}
			chunks <- StreamChunk{
				Error: gserrors.NewAIError(ProviderAnthropic, "StreamChat", msg),
				Done:  true,
			}
			return
		}
	}

	if err := scanner.Err(); err != nil {
		// A cancelled context closes the body, so the read error is expected.
		if ctx.Err() != nil {
			chunks <- StreamChunk{Error: ctx.Err(), Done: true}
			return
		}
		chunks <- StreamChunk{
			Error: gserrors.NewAIErrorWithCause(ProviderAnthropic, "StreamChat",
				"stream read error", err),
			Done: true,
		}
	}
}

// convertMessages extracts the system message and converts to Anthropic format.
func (p *AnthropicProvider) convertMessages(messages []Message) (string, []anthropicMessage) {
	var systemPrompt string
	apiMessages := make([]anthropicMessage, 0, len(messages))

	for _, msg := range messages {
		if msg.Role == "system" {
			systemPrompt = msg.Content
			continue
		}
		apiMessages = append(apiMessages, anthropicMessage(msg))
	}

	return systemPrompt, apiMessages
}

// setHeaders sets the required headers for Anthropic API requests.
func (p *AnthropicProvider) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)
}

// handleErrorResponse parses error responses from the Anthropic API.
func (p *AnthropicProvider) handleErrorResponse(resp *http.Response, operation string) error {
	body, _ := io.ReadAll(resp.Body)

	var apiErr anthropicError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return gserrors.NewAIErrorWithStatus(ProviderAnthropic, operation,
			resp.StatusCode, apiErr.Error.Message)
	}

	return gserrors.NewAIErrorWithStatus(ProviderAnthropic, operation,
		resp.StatusCode, fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)))
}

func (p *AnthropicProvider) logDebug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
