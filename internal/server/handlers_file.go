package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tutorkit/tutorkit/internal/event"
	"github.com/tutorkit/tutorkit/internal/workspace"
)

// sessionWorkspace resolves the session's sandboxed file store, 404ing when
// the session does not exist.
func (s *Server) sessionWorkspace(w http.ResponseWriter, r *http.Request) (*workspace.Store, string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.Session(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return nil, "", false
	}
	return workspace.New(s.store.SessionDir(id)), id, true
}

func (s *Server) listFiles(w http.ResponseWriter, r *http.Request) {
	ws, _, ok := s.sessionWorkspace(w, r)
	if !ok {
		return
	}

	files, err := ws.List()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

func (s *Server) readFile(w http.ResponseWriter, r *http.Request) {
	ws, _, ok := s.sessionWorkspace(w, r)
	if !ok {
		return
	}

	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "path is required")
		return
	}

	res, err := ws.Read(path, queryInt(r, "startLine"), queryInt(r, "endLine"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"path":       path,
		"content":    res.Content,
		"totalLines": res.TotalLines,
	})
}

func (s *Server) writeFile(w http.ResponseWriter, r *http.Request) {
	ws, id, ok := s.sessionWorkspace(w, r)
	if !ok {
		return
	}

	var req struct {
		Path      string  `json:"path"`
		Content   *string `json:"content"`
		StartLine int     `json:"startLine"`
		EndLine   int     `json:"endLine"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" || req.Content == nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "path and content are required")
		return
	}

	if err := ws.Write(req.Path, *req.Content, req.StartLine, req.EndLine); err != nil {
		writeDomainError(w, err)
		return
	}

	s.bus.Publish(event.Event{Type: event.FileChanged, Data: event.FileData{SessionID: id, Path: req.Path}})
	writeSuccess(w)
}

func (s *Server) deleteFile(w http.ResponseWriter, r *http.Request) {
	ws, id, ok := s.sessionWorkspace(w, r)
	if !ok {
		return
	}

	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "path is required")
		return
	}

	if err := ws.Delete(path); err != nil {
		writeDomainError(w, err)
		return
	}

	s.bus.Publish(event.Event{Type: event.FileChanged, Data: event.FileData{SessionID: id, Path: path}})
	writeSuccess(w)
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}
