// Package tutor drives one chat turn: compile context, invoke the model,
// forward the event stream to the client while accumulating it into parts,
// and persist the result exactly once.
package tutor

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tutorkit/tutorkit/internal/compiler"
	"github.com/tutorkit/tutorkit/internal/event"
	"github.com/tutorkit/tutorkit/internal/logging"
	"github.com/tutorkit/tutorkit/internal/reference"
	"github.com/tutorkit/tutorkit/internal/storage"
	"github.com/tutorkit/tutorkit/pkg/types"
)

// ErrEmptyMessage rejects a turn whose utterance is empty or whitespace.
var ErrEmptyMessage = errors.New("message is required")

// unconfiguredNotice is streamed instead of a model response when no API key
// is configured. The rest of the server keeps working without a model.
const unconfiguredNotice = "[LLM 未配置] 请在设置中配置模型，或在 .env 中设置 LLM_API_KEY。当前可以正常使用文件管理、笔记编辑等功能。"

// Sink receives wire events in order. A send error means the client is gone;
// the turn aborts and persists nothing further.
type Sink interface {
	Send(ev types.WireEvent) error
}

// Engine owns the lifecycle of one in-flight turn. One Run call fully
// serializes compile, stream and persist; turns on different sessions run
// independently.
type Engine struct {
	store      *storage.Store
	compiler   *compiler.Compiler
	streamer   Streamer
	titler     Titler
	bus        *event.Bus
	configured bool
}

// NewEngine wires the turn engine. streamer and titler may be nil when the
// model capability is not configured.
func NewEngine(store *storage.Store, comp *compiler.Compiler, streamer Streamer, titler Titler, bus *event.Bus, configured bool) *Engine {
	return &Engine{
		store:      store,
		compiler:   comp,
		streamer:   streamer,
		titler:     titler,
		bus:        bus,
		configured: configured,
	}
}

// Run executes one turn. Validation failures return an error before any wire
// output; everything after the first wire event is reported on the wire
// instead, ending in exactly one done or error event.
func (e *Engine) Run(ctx context.Context, sessionID, content string, sink Sink) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyMessage
	}
	if _, err := e.store.Session(ctx, sessionID); err != nil {
		return err
	}

	compiled, err := e.compiler.Compile(ctx, sessionID, content)
	if err != nil {
		return err
	}
	firstTurn := len(compiled.Messages) == 1

	if err := e.persistUserMessage(ctx, sessionID, content, compiled.ResolvedUserContent); err != nil {
		return err
	}

	if !e.configured {
		if err := sink.Send(types.NewTextDelta(unconfiguredNotice)); err != nil {
			return nil
		}
		sink.Send(types.NewDone())
		return nil
	}

	acc := &accumulator{}
	runErr := e.streamer.Run(ctx, sessionID, compiled.System, compiled.Messages, func(ev Event) {
		if acc.aborted {
			return
		}
		if err := e.forward(sink, acc, ev); err != nil {
			acc.aborted = true
		}
	})

	// An aborted turn is a discarded turn: nothing is persisted and no
	// terminal event is sent to a client that already went away.
	if acc.aborted || ctx.Err() != nil {
		logging.Debug().Str("sessionID", sessionID).Msg("turn aborted")
		return nil
	}

	if runErr != nil {
		logging.Error().Err(runErr).Str("sessionID", sessionID).Msg("model stream failed")
		sink.Send(types.NewError(runErr.Error()))
		return nil
	}

	fullText := acc.text.String()
	if strings.TrimSpace(fullText) != "" || acc.toolEvents > 0 {
		msg := &types.ChatMessage{
			ID:        storage.NewID(),
			SessionID: sessionID,
			Role:      "assistant",
			Content:   fullText,
			Parts:     acc.parts,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		}
		if err := e.store.AppendMessage(ctx, msg); err != nil {
			sink.Send(types.NewError(err.Error()))
			return nil
		}
		e.publish(event.Event{Type: event.MessageCreated, Data: event.MessageData{Message: msg}})
	}

	sink.Send(types.NewDone())

	if firstTurn && e.titler != nil {
		go e.generateTitle(sessionID, content)
	}
	return nil
}

// forward routes one model event to the wire and the accumulator. The two
// projections see the same sequence in the same order.
func (e *Engine) forward(sink Sink, acc *accumulator, ev Event) error {
	switch ev := ev.(type) {
	case TextDelta:
		if ev.Content == "" {
			return nil
		}
		acc.addText(ev.Content)
		return sink.Send(types.NewTextDelta(ev.Content))

	case ToolCall:
		acc.addPart(&types.ToolCallPart{Type: "tool-call", ToolName: ev.ToolName, Args: ev.Args})
		return sink.Send(types.NewToolCall(ev.ToolName, ev.Args))

	case ToolResult:
		acc.addPart(&types.ToolResultPart{Type: "tool-result", ToolName: ev.ToolName, Result: ev.Result})
		return sink.Send(types.NewToolResult(ev.ToolName, ev.Result))

	default:
		// Reasoning and any future event kinds fail closed: ignored.
		return nil
	}
}

func (e *Engine) persistUserMessage(ctx context.Context, sessionID, content, resolved string) error {
	msg := &types.ChatMessage{
		ID:        storage.NewID(),
		SessionID: sessionID,
		Role:      "user",
		Content:   content,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if resolved != content {
		msg.ResolvedContent = resolved
	}
	if refs := reference.Dedupe(reference.Parse(content)); len(refs) > 0 {
		msg.References = refs
	}

	if err := e.store.AppendMessage(ctx, msg); err != nil {
		return err
	}
	e.publish(event.Event{Type: event.MessageCreated, Data: event.MessageData{Message: msg}})
	return nil
}

func (e *Engine) generateTitle(sessionID, content string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	title, err := e.titler.Title(ctx, content)
	if err != nil || title == "" {
		if err != nil {
			logging.Warn().Err(err).Str("sessionID", sessionID).Msg("title generation failed")
		}
		return
	}

	sess, err := e.store.UpdateSession(ctx, sessionID, func(s *types.Session) {
		s.Concept = title
	})
	if err != nil {
		logging.Warn().Err(err).Str("sessionID", sessionID).Msg("title update failed")
		return
	}
	e.publish(event.Event{Type: event.SessionUpdated, Data: event.SessionData{Session: sess}})
}

func (e *Engine) publish(ev event.Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}

// accumulator is the single-turn parts builder. It is owned by one Run call
// and never shared across turns.
type accumulator struct {
	text       strings.Builder
	parts      types.Parts
	open       *types.TextPart
	toolEvents int
	aborted    bool
}

// addText appends a delta to the open text part, opening one if a tool event
// closed the previous run of prose.
func (a *accumulator) addText(delta string) {
	a.text.WriteString(delta)
	if a.open == nil {
		a.open = &types.TextPart{Type: "text"}
		a.parts = append(a.parts, a.open)
	}
	a.open.Content += delta
}

// addPart records a tool event, closing any open text part.
func (a *accumulator) addPart(p types.Part) {
	a.open = nil
	a.parts = append(a.parts, p)
	a.toolEvents++
}
