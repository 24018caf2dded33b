// Package storage persists sessions and chat messages as JSON files under
// the data directory: a top-level sessions.json plus one messages.json per
// session directory. Writes go through a temp file and rename so a document
// is never observed half-written.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tutorkit/tutorkit/pkg/types"
)

// ErrNotFound indicates a missing session.
var ErrNotFound = errors.New("not found")

// Store is the file-backed session and message store.
type Store struct {
	dataDir string

	mu    sync.Mutex
	locks map[string]*fileLock
}

// New creates a store rooted at dataDir, creating it if needed.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Store{
		dataDir: dataDir,
		locks:   make(map[string]*fileLock),
	}, nil
}

// DataDir returns the store's root directory.
func (s *Store) DataDir() string {
	return s.dataDir
}

// SessionDir returns the directory holding one session's documents.
func (s *Store) SessionDir(sessionID string) string {
	return filepath.Join(s.dataDir, sessionID)
}

func (s *Store) sessionsFile() string {
	return filepath.Join(s.dataDir, "sessions.json")
}

func (s *Store) messagesFile(sessionID string) string {
	return filepath.Join(s.SessionDir(sessionID), "messages.json")
}

// NewID generates a new opaque identifier.
func NewID() string {
	return ulid.Make().String()
}

// Sessions returns all sessions in creation order.
func (s *Store) Sessions(ctx context.Context) ([]types.Session, error) {
	var sessions []types.Session
	if err := s.readJSON(s.sessionsFile(), &sessions); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []types.Session{}, nil
		}
		return nil, err
	}
	return sessions, nil
}

// Session returns one session by id.
func (s *Store) Session(ctx context.Context, id string) (*types.Session, error) {
	sessions, err := s.Sessions(ctx)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if sessions[i].ID == id {
			return &sessions[i], nil
		}
	}
	return nil, ErrNotFound
}

// CreateSession creates a session and its document directory.
func (s *Store) CreateSession(ctx context.Context, concept string) (*types.Session, error) {
	session := types.Session{
		ID:        NewID(),
		Concept:   concept,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	lock := s.getLock(s.sessionsFile())
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer lock.Unlock()

	var sessions []types.Session
	if err := s.readJSON(s.sessionsFile(), &sessions); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	sessions = append(sessions, session)

	if err := s.writeJSON(s.sessionsFile(), sessions); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.SessionDir(session.ID), 0755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	return &session, nil
}

// UpdateSession applies patch to the stored session and returns the result.
func (s *Store) UpdateSession(ctx context.Context, id string, patch func(*types.Session)) (*types.Session, error) {
	lock := s.getLock(s.sessionsFile())
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer lock.Unlock()

	var sessions []types.Session
	if err := s.readJSON(s.sessionsFile(), &sessions); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	for i := range sessions {
		if sessions[i].ID == id {
			patch(&sessions[i])
			if err := s.writeJSON(s.sessionsFile(), sessions); err != nil {
				return nil, err
			}
			return &sessions[i], nil
		}
	}
	return nil, ErrNotFound
}

// Messages returns a session's message log in append order.
func (s *Store) Messages(ctx context.Context, sessionID string) ([]types.ChatMessage, error) {
	var messages []types.ChatMessage
	if err := s.readJSON(s.messagesFile(sessionID), &messages); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []types.ChatMessage{}, nil
		}
		return nil, err
	}
	return messages, nil
}

// AppendMessage appends one message to its session's log.
func (s *Store) AppendMessage(ctx context.Context, msg *types.ChatMessage) error {
	file := s.messagesFile(msg.SessionID)

	lock := s.getLock(file)
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer lock.Unlock()

	if err := os.MkdirAll(s.SessionDir(msg.SessionID), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	var messages []types.ChatMessage
	if err := s.readJSON(file, &messages); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	messages = append(messages, *msg)

	return s.writeJSON(file, messages)
}

func (s *Store) readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeJSON writes to a temp file then renames, so readers never see a
// partially written document.
func (s *Store) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}

func (s *Store) getLock(path string) *fileLock {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[path]
	if !ok {
		lock = newFileLock(path)
		s.locks[path] = lock
	}
	return lock
}
