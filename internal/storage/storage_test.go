package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tutorkit/tutorkit/pkg/types"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func TestCreateAndGetSession(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	created, err := s.CreateSession(ctx, "神经网络")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if created.ID == "" || created.Concept != "神经网络" || created.CreatedAt == "" {
		t.Errorf("session = %+v", created)
	}

	// Session directory is created alongside.
	if _, err := os.Stat(s.SessionDir(created.ID)); err != nil {
		t.Errorf("session dir missing: %v", err)
	}

	got, err := s.Session(ctx, created.ID)
	if err != nil {
		t.Fatalf("Session failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("got %+v", got)
	}
}

func TestSession_NotFound(t *testing.T) {
	s := newStore(t)
	_, err := s.Session(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateSession(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	created, _ := s.CreateSession(ctx, "draft")
	updated, err := s.UpdateSession(ctx, created.ID, func(sess *types.Session) {
		sess.Concept = "闭包"
	})
	if err != nil {
		t.Fatalf("UpdateSession failed: %v", err)
	}
	if updated.Concept != "闭包" {
		t.Errorf("concept = %q", updated.Concept)
	}

	got, _ := s.Session(ctx, created.ID)
	if got.Concept != "闭包" {
		t.Errorf("persisted concept = %q", got.Concept)
	}
}

func TestAppendAndReadMessages(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	sess, _ := s.CreateSession(ctx, "test")

	user := &types.ChatMessage{
		ID:        NewID(),
		SessionID: sess.ID,
		Role:      "user",
		Content:   "hello [notes.md]",
		CreatedAt: "2026-01-01T00:00:00Z",
	}
	assistant := &types.ChatMessage{
		ID:        NewID(),
		SessionID: sess.ID,
		Role:      "assistant",
		Content:   "Hello world!",
		Parts: types.Parts{
			&types.TextPart{Type: "text", Content: "Hello world"},
			&types.ToolCallPart{Type: "tool-call", ToolName: "read_file", Args: map[string]any{"path": "notes.md"}},
			&types.TextPart{Type: "text", Content: "!"},
		},
		CreatedAt: "2026-01-01T00:00:01Z",
	}

	if err := s.AppendMessage(ctx, user); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}
	if err := s.AppendMessage(ctx, assistant); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}

	msgs, err := s.Messages(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Messages failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != "user" || msgs[1].Role != "assistant" {
		t.Errorf("roles = %s, %s", msgs[0].Role, msgs[1].Role)
	}

	// Parts survive the JSON round trip with order and types intact.
	parts := msgs[1].Parts
	if len(parts) != 3 {
		t.Fatalf("got %d parts, want 3", len(parts))
	}
	if parts[0].PartType() != "text" || parts[1].PartType() != "tool-call" || parts[2].PartType() != "text" {
		t.Errorf("part types = %s, %s, %s", parts[0].PartType(), parts[1].PartType(), parts[2].PartType())
	}
	if tc, ok := parts[1].(*types.ToolCallPart); !ok || tc.ToolName != "read_file" {
		t.Errorf("tool-call part = %+v", parts[1])
	}
}

func TestMessages_EmptyWhenAbsent(t *testing.T) {
	s := newStore(t)
	msgs, err := s.Messages(context.Background(), "no-such-session")
	if err != nil {
		t.Fatalf("Messages failed: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("got %d messages, want 0", len(msgs))
	}
}

func TestWriteIsAtomic(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	sess, _ := s.CreateSession(ctx, "atomic")

	// No temp file should linger after a write.
	entries, _ := os.ReadDir(s.DataDir())
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
	_ = sess
}
