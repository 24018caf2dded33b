package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"

	"github.com/cloudwego/eino/schema"

	"github.com/tutorkit/tutorkit/internal/logging"
	"github.com/tutorkit/tutorkit/internal/provider"
	"github.com/tutorkit/tutorkit/internal/tool"
	"github.com/tutorkit/tutorkit/internal/workspace"
	"github.com/tutorkit/tutorkit/pkg/types"
)

// maxSteps bounds the invoke/execute loop so a model that keeps requesting
// tools cannot spin a turn forever.
const maxSteps = 10

// Streamer is the model capability the engine drives: given compiled context
// it yields an ordered event sequence through emit. A returned error ends
// the sequence; events emitted before it stand.
type Streamer interface {
	Run(ctx context.Context, sessionID, system string, history []types.ModelMessage, emit func(Event)) error
}

// Agent is the Streamer backed by a real chat model plus the file tools. It
// runs the agentic loop: stream a completion, execute any requested tools
// against the session workspace, feed results back, repeat.
type Agent struct {
	provider provider.Provider
	tools    *tool.Registry
	dataDir  string
}

// NewAgent creates an agent over the given provider and data directory.
func NewAgent(p provider.Provider, tools *tool.Registry, dataDir string) *Agent {
	return &Agent{provider: p, tools: tools, dataDir: dataDir}
}

// Run drives up to maxSteps model invocations for one turn.
func (a *Agent) Run(ctx context.Context, sessionID, system string, history []types.ModelMessage, emit func(Event)) error {
	ws := workspace.New(filepath.Join(a.dataDir, sessionID))
	messages := provider.BuildMessages(system, history)
	infos := a.tools.Infos()

	for step := 0; step < maxSteps; step++ {
		assistant, err := a.streamStep(ctx, messages, infos, emit)
		if err != nil {
			return err
		}

		if len(assistant.ToolCalls) == 0 {
			return nil
		}

		messages = append(messages, assistant)
		for _, call := range assistant.ToolCalls {
			resultJSON, err := a.execute(ctx, ws, call, emit)
			if err != nil {
				return err
			}
			messages = append(messages, schema.ToolMessage(resultJSON, call.ID))
		}
	}

	logging.Warn().Str("sessionID", sessionID).Int("steps", maxSteps).Msg("tool loop limit reached")
	return nil
}

// streamStep opens one completion stream, emits text deltas as they arrive
// and returns the fully assembled assistant message.
func (a *Agent) streamStep(ctx context.Context, messages []*schema.Message, infos []*schema.ToolInfo, emit func(Event)) (*schema.Message, error) {
	stream, err := a.provider.Stream(ctx, &provider.CompletionRequest{
		Messages: messages,
		Tools:    infos,
	})
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var chunks []*schema.Message
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		if chunk.ReasoningContent != "" {
			emit(Reasoning{Content: chunk.ReasoningContent})
		}
		if chunk.Content != "" {
			emit(TextDelta{Content: chunk.Content})
		}
		chunks = append(chunks, chunk)
	}

	if len(chunks) == 0 {
		return &schema.Message{Role: schema.Assistant}, nil
	}
	return schema.ConcatMessages(chunks)
}

// execute runs one requested tool and emits the call/result pair. Unknown
// tools and bad arguments produce failure results for the model, not errors.
func (a *Agent) execute(ctx context.Context, ws *workspace.Store, call schema.ToolCall, emit func(Event)) (string, error) {
	name := call.Function.Name

	var args map[string]any
	if call.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			args = nil
		}
	}
	emit(ToolCall{ToolName: name, Args: args})

	var result any
	if t := a.tools.Get(name); t != nil {
		result = t.Execute(ctx, ws, args)
	} else {
		result = tool.Failure("unknown tool: " + name)
	}
	emit(ToolResult{ToolName: name, Result: result})

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return string(resultJSON), nil
}
