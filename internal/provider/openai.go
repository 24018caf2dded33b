package provider

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/tutorkit/tutorkit/internal/config"
)

// OpenAIProvider serves OpenAI models and any OpenAI-compatible endpoint
// (Qwen, DeepSeek, Ollama, ...) via a custom base URL.
type OpenAIProvider struct {
	chatModel model.ToolCallingChatModel
	modelID   string
}

// NewOpenAIProvider creates a provider backed by the OpenAI chat API.
func NewOpenAIProvider(ctx context.Context, cfg config.LLM) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: api key not set")
	}

	modelID := cfg.Model
	if modelID == "" {
		modelID = "gpt-4o"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	mc := &openai.ChatModelConfig{
		APIKey:              cfg.APIKey,
		Model:               modelID,
		MaxCompletionTokens: &maxTokens,
	}
	if cfg.BaseURL != "" {
		mc.BaseURL = cfg.BaseURL
	}

	chatModel, err := openai.NewChatModel(ctx, mc)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI model: %w", err)
	}

	return &OpenAIProvider{chatModel: chatModel, modelID: modelID}, nil
}

func (p *OpenAIProvider) ID() string { return "openai" }

func (p *OpenAIProvider) Model() string { return p.modelID }

func (p *OpenAIProvider) ChatModel() model.ToolCallingChatModel { return p.chatModel }

// Stream opens a streaming completion.
func (p *OpenAIProvider) Stream(ctx context.Context, req *CompletionRequest) (*CompletionStream, error) {
	return openStream(ctx, p.chatModel, req)
}
