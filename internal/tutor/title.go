package tutor

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/tutorkit/tutorkit/internal/provider"
)

// Titler summarizes a first utterance into a short session title.
type Titler interface {
	Title(ctx context.Context, firstMessage string) (string, error)
}

const titlePrompt = "用3-5个字概括这个学习需求，只返回标题文字，不要引号不要标点：\n"

// ModelTitler generates titles with the configured chat model.
type ModelTitler struct {
	provider provider.Provider
}

func NewModelTitler(p provider.Provider) *ModelTitler {
	return &ModelTitler{provider: p}
}

// Title asks the model for a concise concept name, trimmed to 30 runes.
func (t *ModelTitler) Title(ctx context.Context, firstMessage string) (string, error) {
	stream, err := t.provider.Stream(ctx, &provider.CompletionRequest{
		Messages: []*schema.Message{schema.UserMessage(titlePrompt + firstMessage)},
	})
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var sb strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		sb.WriteString(chunk.Content)
	}

	title := strings.Trim(strings.TrimSpace(sb.String()), "\"“”『』「」")
	if runes := []rune(title); len(runes) > 30 {
		title = string(runes[:30])
	}
	return title, nil
}
