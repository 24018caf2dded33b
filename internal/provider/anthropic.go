package provider

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino/components/model"

	"github.com/tutorkit/tutorkit/internal/config"
)

// AnthropicProvider serves Anthropic Claude models.
type AnthropicProvider struct {
	chatModel model.ToolCallingChatModel
	modelID   string
}

// NewAnthropicProvider creates a provider backed by the Anthropic API.
func NewAnthropicProvider(ctx context.Context, cfg config.LLM) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: api key not set")
	}

	modelID := cfg.Model
	if modelID == "" {
		modelID = "claude-sonnet-4-20250514"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	mc := &claude.Config{
		APIKey:    cfg.APIKey,
		Model:     modelID,
		MaxTokens: maxTokens,
	}
	if cfg.BaseURL != "" {
		mc.BaseURL = &cfg.BaseURL
	}

	chatModel, err := claude.NewChatModel(ctx, mc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Claude model: %w", err)
	}

	return &AnthropicProvider{chatModel: chatModel, modelID: modelID}, nil
}

func (p *AnthropicProvider) ID() string { return "anthropic" }

func (p *AnthropicProvider) Model() string { return p.modelID }

func (p *AnthropicProvider) ChatModel() model.ToolCallingChatModel { return p.chatModel }

// Stream opens a streaming completion.
func (p *AnthropicProvider) Stream(ctx context.Context, req *CompletionRequest) (*CompletionStream, error) {
	return openStream(ctx, p.chatModel, req)
}
