// Package ai streams completions from the Anthropic Messages API.
//
// The provider owns the HTTP and SSE details; Streamer adapts the chunk
// channel to an io.Writer so commands can print text as it arrives.
package ai

import (
	"context"
	"log/slog"

	"github.com/tshields86/git-sense/pkg/config"
)

// Message represents a conversation message.
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// StreamChunk for streaming responses.
type StreamChunk struct {
	Content string
	Done    bool
	Error   error
}

// Provider interface for AI operations.
type Provider interface {
	// IsAvailable checks if provider is available and configured.
	IsAvailable() bool

	// StreamChat performs a streaming chat completion.
	// Returns a channel that receives chunks until Done is true or Error is set.
	StreamChat(ctx context.Context, messages []Message) (<-chan StreamChunk, error)

	// Name returns the provider name.
	Name() string
}

// ProviderAnthropic is the only supported provider.
const ProviderAnthropic = "anthropic"

// NewProvider creates the Anthropic provider from config. An empty apiKey
// yields a provider that reports itself unavailable.
func NewProvider(cfg *config.AIConfig, apiKey string, logger *slog.Logger) *AnthropicProvider {
	var opts []AnthropicOption
	if cfg != nil {
		opts = append(opts, WithEndpoint(cfg.Endpoint), WithMaxTokens(cfg.MaxTokens))
		return NewAnthropicProvider(apiKey, cfg.Model, logger, opts...)
	}
	return NewAnthropicProvider(apiKey, "", logger)
}
