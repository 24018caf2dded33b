package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tutorkit/tutorkit/internal/event"
	"github.com/tutorkit/tutorkit/pkg/types"
)

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.store.Sessions(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Concept string `json:"concept"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Concept) == "" {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "concept is required")
		return
	}

	sess, err := s.store.CreateSession(r.Context(), strings.TrimSpace(req.Concept))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.bus.Publish(event.Event{Type: event.SessionCreated, Data: event.SessionData{Session: sess}})
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sess, err := s.store.Session(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	messages, err := s.store.Messages(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Session  *types.Session      `json:"session"`
		Messages []types.ChatMessage `json:"messages"`
	}{Session: sess, Messages: messages})
}

// chat runs one turn, streaming wire events as SSE frames. Validation
// failures surface as JSON errors before the stream starts; anything after
// the first frame is reported on the stream itself.
func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}

	setSSEHeaders(w)
	sse, err := newSSEWriter(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}

	if err := s.engine.Run(r.Context(), id, req.Message, &sseSink{sse: sse}); err != nil {
		// Pre-stream failure: no SSE frame has been written yet, so a
		// plain JSON error is still possible.
		writeDomainError(w, err)
	}
}
