package ai

import (
	"context"
	"io"

	gserrors "github.com/tshields86/git-sense/pkg/errors"
)

const msgMissingKey = "Anthropic API key not found. Run \"git-sense config --anthropic-key <key>\" to set it."

// MissingKeyError is returned when no Anthropic API key is available.
func MissingKeyError() error {
	return gserrors.NewConfigError("anthropic_key", msgMissingKey)
}

// Streamer writes a single-prompt completion to a writer as it is generated.
type Streamer struct {
	provider Provider
}

// NewStreamer wraps provider.
func NewStreamer(provider Provider) *Streamer {
	return &Streamer{provider: provider}
}

// Stream sends prompt as one user message and copies every text fragment to
// w as soon as it arrives, followed by a newline once the stream ends.
func (s *Streamer) Stream(ctx context.Context, prompt string, w io.Writer) error {
	if s.provider == nil || !s.provider.IsAvailable() {
		return MissingKeyError()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	chunks, err := s.provider.StreamChat(ctx, []Message{{Role: "user", Content: prompt}})
	if err != nil {
		return err
	}

	for chunk := range chunks {
		if chunk.Error != nil {
			return chunk.Error
		}
		if chunk.Content != "" {
			if _, err := io.WriteString(w, chunk.Content); err != nil {
				cancel()
				drain(chunks)
				return gserrors.Wrap(err, "failed to write completion")
			}
		}
		if chunk.Done {
			break
		}
	}

	_, err = io.WriteString(w, "\n")
	return err
}

// drain consumes the remaining chunks so the reader goroutine can exit.
func drain(chunks <-chan StreamChunk) {
	for range chunks {
	}
}
