package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tutorkit/tutorkit/internal/compiler"
	"github.com/tutorkit/tutorkit/internal/event"
	"github.com/tutorkit/tutorkit/internal/milestone"
	"github.com/tutorkit/tutorkit/internal/profile"
	"github.com/tutorkit/tutorkit/internal/workspace"
	"github.com/tutorkit/tutorkit/pkg/types"
)

func (s *Server) getMilestones(w http.ResponseWriter, r *http.Request) {
	ws, _, ok := s.sessionWorkspace(w, r)
	if !ok {
		return
	}

	res, err := ws.Read("milestones.md", 0, 0)
	if errors.Is(err, workspace.ErrNotFound) {
		writeJSON(w, http.StatusOK, types.Milestones{Items: []types.MilestoneItem{}})
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, milestone.Parse(res.Content))
}

// putMilestones accepts structured milestones and serializes them back to
// milestones.md, so clients never hand-edit checkbox markup.
func (s *Server) putMilestones(w http.ResponseWriter, r *http.Request) {
	ws, id, ok := s.sessionWorkspace(w, r)
	if !ok {
		return
	}

	var m types.Milestones
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid milestones body")
		return
	}

	if err := ws.Write("milestones.md", milestone.Serialize(m), 0, 0); err != nil {
		writeDomainError(w, err)
		return
	}
	s.bus.Publish(event.Event{Type: event.FileChanged, Data: event.FileData{SessionID: id, Path: "milestones.md"}})
	writeSuccess(w)
}

func (s *Server) getSessionPrompt(w http.ResponseWriter, r *http.Request) {
	ws, _, ok := s.sessionWorkspace(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"content": readOrEmpty(ws, "session-prompt.md")})
}

func (s *Server) putSessionPrompt(w http.ResponseWriter, r *http.Request) {
	ws, id, ok := s.sessionWorkspace(w, r)
	if !ok {
		return
	}

	content, ok := decodeContent(w, r)
	if !ok {
		return
	}
	if err := ws.Write("session-prompt.md", content, 0, 0); err != nil {
		writeDomainError(w, err)
		return
	}
	s.bus.Publish(event.Event{Type: event.FileChanged, Data: event.FileData{SessionID: id, Path: "session-prompt.md"}})
	writeSuccess(w)
}

func (s *Server) getContextConfig(w http.ResponseWriter, r *http.Request) {
	ws, _, ok := s.sessionWorkspace(w, r)
	if !ok {
		return
	}

	cfg := types.ContextConfig{ProfileBlockIDs: []string{}}
	if res, err := ws.Read("context-config.json", 0, 0); err == nil {
		json.Unmarshal([]byte(res.Content), &cfg)
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) putContextConfig(w http.ResponseWriter, r *http.Request) {
	ws, id, ok := s.sessionWorkspace(w, r)
	if !ok {
		return
	}

	var cfg types.ContextConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid context config")
		return
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := ws.Write("context-config.json", string(data)+"\n", 0, 0); err != nil {
		writeDomainError(w, err)
		return
	}
	s.bus.Publish(event.Event{Type: event.FileChanged, Data: event.FileData{SessionID: id, Path: "context-config.json"}})
	writeSuccess(w)
}

// contextPreview exposes the compiled prompt stages so a settings UI can
// show what the model will actually see.
func (s *Server) contextPreview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.Session(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	systemPrompt, sessionPrompt := s.compiler.ResolvePrompts(id)
	profileContent := s.compiler.SelectProfileContent(id)

	writeJSON(w, http.StatusOK, map[string]any{
		"system":         compiler.FormatSystemMessage(systemPrompt, sessionPrompt, profileContent),
		"systemPrompt":   systemPrompt,
		"sessionPrompt":  sessionPrompt,
		"profileContent": profileContent,
		"profileBlocks":  s.compiler.ProfileBlocks(),
	})
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	ws := workspace.New(s.store.DataDir())
	content := readOrEmpty(ws, "profile.md")
	writeJSON(w, http.StatusOK, map[string]any{
		"content": content,
		"blocks":  profile.ParseBlocks(content),
	})
}

func (s *Server) putProfile(w http.ResponseWriter, r *http.Request) {
	content, ok := decodeContent(w, r)
	if !ok {
		return
	}
	if err := workspace.New(s.store.DataDir()).Write("profile.md", content, 0, 0); err != nil {
		writeDomainError(w, err)
		return
	}
	s.bus.Publish(event.Event{Type: event.FileChanged, Data: event.FileData{Path: "profile.md"}})
	writeSuccess(w)
}

func (s *Server) getSystemPrompt(w http.ResponseWriter, r *http.Request) {
	content := readOrEmpty(workspace.New(s.store.DataDir()), "system-prompt.md")
	isDefault := content == ""
	if isDefault {
		content = compiler.DefaultSystemPrompt
	}
	writeJSON(w, http.StatusOK, map[string]any{"content": content, "isDefault": isDefault})
}

func (s *Server) putSystemPrompt(w http.ResponseWriter, r *http.Request) {
	content, ok := decodeContent(w, r)
	if !ok {
		return
	}
	if err := workspace.New(s.store.DataDir()).Write("system-prompt.md", content, 0, 0); err != nil {
		writeDomainError(w, err)
		return
	}
	s.bus.Publish(event.Event{Type: event.FileChanged, Data: event.FileData{Path: "system-prompt.md"}})
	writeSuccess(w)
}

func readOrEmpty(ws *workspace.Store, path string) string {
	res, err := ws.Read(path, 0, 0)
	if err != nil {
		return ""
	}
	return res.Content
}

func decodeContent(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req struct {
		Content *string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "content is required")
		return "", false
	}
	return *req.Content, true
}
