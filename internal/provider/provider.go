// Package provider abstracts the configured LLM behind the Eino framework.
package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/tutorkit/tutorkit/internal/config"
	"github.com/tutorkit/tutorkit/internal/logging"
	"github.com/tutorkit/tutorkit/pkg/types"
)

// Provider is a configured chat model capable of streaming completions.
type Provider interface {
	// ID returns the provider identifier ("openai", "anthropic", ...).
	ID() string

	// Model returns the model identifier requests run against.
	Model() string

	// ChatModel returns the underlying Eino ChatModel.
	ChatModel() model.ToolCallingChatModel

	// Stream opens a streaming completion.
	Stream(ctx context.Context, req *CompletionRequest) (*CompletionStream, error)
}

// CompletionRequest carries one turn's compiled context to the model.
type CompletionRequest struct {
	Messages    []*schema.Message
	Tools       []*schema.ToolInfo
	Temperature float64
}

// CompletionStream wraps an Eino stream reader.
type CompletionStream struct {
	reader *schema.StreamReader[*schema.Message]
}

// NewCompletionStream wraps reader.
func NewCompletionStream(reader *schema.StreamReader[*schema.Message]) *CompletionStream {
	return &CompletionStream{reader: reader}
}

// Recv returns the next chunk. io.EOF signals a clean end of stream.
func (s *CompletionStream) Recv() (*schema.Message, error) {
	return s.reader.Recv()
}

// Close releases the stream.
func (s *CompletionStream) Close() {
	s.reader.Close()
}

// New builds the provider selected by cfg. An unknown provider name is an
// error rather than a silent fallback.
func New(ctx context.Context, cfg config.LLM) (Provider, error) {
	switch cfg.Provider {
	case "", "openai":
		return NewOpenAIProvider(ctx, cfg)
	case "anthropic":
		return NewAnthropicProvider(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

// openStream binds tools and opens the model stream, retrying transient
// failures with exponential backoff. Only stream creation is retried; once
// chunks are flowing, errors surface to the caller unchanged.
func openStream(ctx context.Context, chatModel model.ToolCallingChatModel, req *CompletionRequest) (*CompletionStream, error) {
	if len(req.Tools) > 0 {
		var err error
		chatModel, err = chatModel.WithTools(req.Tools)
		if err != nil {
			return nil, fmt.Errorf("failed to bind tools: %w", err)
		}
	}

	var opts []model.Option
	if req.Temperature > 0 {
		opts = append(opts, model.WithTemperature(float32(req.Temperature)))
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(500*time.Millisecond),
		backoff.WithMaxInterval(5*time.Second),
	), 2), ctx)

	stream, err := backoff.RetryWithData(func() (*schema.StreamReader[*schema.Message], error) {
		stream, err := chatModel.Stream(ctx, req.Messages, opts...)
		if err != nil {
			logging.Warn().Err(err).Msg("stream open failed, retrying")
		}
		return stream, err
	}, policy)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}

	return NewCompletionStream(stream), nil
}

// BuildMessages converts a compiled system message and role/content history
// into the Eino message slice a completion request expects.
func BuildMessages(system string, history []types.ModelMessage) []*schema.Message {
	messages := make([]*schema.Message, 0, len(history)+1)
	if system != "" {
		messages = append(messages, schema.SystemMessage(system))
	}
	for _, m := range history {
		switch m.Role {
		case "assistant":
			messages = append(messages, schema.AssistantMessage(m.Content, nil))
		default:
			messages = append(messages, schema.UserMessage(m.Content))
		}
	}
	return messages
}
