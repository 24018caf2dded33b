package event

import "github.com/tutorkit/tutorkit/pkg/types"

// Type identifies a bus event.
type Type string

// Bus event types.
const (
	SessionCreated Type = "session.created"
	SessionUpdated Type = "session.updated"
	MessageCreated Type = "message.created"
	FileChanged    Type = "file.changed"
)

// Event is one published bus event.
type Event struct {
	Type Type `json:"type"`
	Data any  `json:"data"`
}

// SessionData carries session payloads for session.* events.
type SessionData struct {
	Session *types.Session `json:"session"`
}

// MessageData carries the persisted message for message.created events.
type MessageData struct {
	Message *types.ChatMessage `json:"message"`
}

// FileData carries the affected path for file.changed events.
type FileData struct {
	SessionID string `json:"sessionId,omitempty"`
	Path      string `json:"path"`
}
