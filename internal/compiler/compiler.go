// Package compiler assembles the model-ready context for one chat turn.
//
// Compilation runs five deterministic stages over on-disk state plus the new
// user utterance: resolve the global and per-session instruction documents,
// select profile blocks, resolve inline references, format the system
// message, and build the message history. Re-running with identical inputs
// yields identical output.
package compiler

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tutorkit/tutorkit/internal/logging"
	"github.com/tutorkit/tutorkit/internal/profile"
	"github.com/tutorkit/tutorkit/internal/reference"
	"github.com/tutorkit/tutorkit/internal/storage"
	"github.com/tutorkit/tutorkit/internal/workspace"
	"github.com/tutorkit/tutorkit/pkg/types"
)

// Result is the compiled context for one turn. ResolvedUserContent is also
// what gets persisted as the user message's resolvedContent, keeping stored
// history and compiled history consistent on replay.
type Result struct {
	System              string
	Messages            []types.ModelMessage
	ResolvedUserContent string

	// UnresolvedRefs counts references that were silently skipped because
	// their file or block could not be found.
	UnresolvedRefs int
}

// Compiler builds model context from the data directory and message store.
type Compiler struct {
	dataDir string
	store   *storage.Store
}

// New creates a compiler over the given store.
func New(store *storage.Store) *Compiler {
	return &Compiler{dataDir: store.DataDir(), store: store}
}

// Compile runs all five stages for a session and new user utterance.
func (c *Compiler) Compile(ctx context.Context, sessionID, userMessage string) (*Result, error) {
	systemPrompt, sessionPrompt := c.ResolvePrompts(sessionID)
	profileContent := c.SelectProfileContent(sessionID)
	resolved, unresolved := c.ResolveReferences(sessionID, userMessage)
	system := FormatSystemMessage(systemPrompt, sessionPrompt, profileContent)

	messages, err := c.buildMessages(ctx, sessionID, resolved)
	if err != nil {
		return nil, err
	}

	if unresolved > 0 {
		logging.Debug().
			Str("sessionID", sessionID).
			Int("unresolved", unresolved).
			Msg("skipped unresolvable references")
	}

	return &Result{
		System:              system,
		Messages:            messages,
		ResolvedUserContent: resolved,
		UnresolvedRefs:      unresolved,
	}, nil
}

// ResolvePrompts loads the global instruction document (falling back to the
// built-in default when absent or empty) and, independently, the session's
// instruction document ("" when absent or empty). The two are not merged
// here; formatting decides how each appears.
func (c *Compiler) ResolvePrompts(sessionID string) (systemPrompt, sessionPrompt string) {
	systemPrompt = DefaultSystemPrompt
	if content := readTrimmed(filepath.Join(c.dataDir, "system-prompt.md")); content != "" {
		systemPrompt = content
	}

	sessionPrompt = readTrimmed(filepath.Join(c.dataDir, sessionID, "session-prompt.md"))
	return systemPrompt, sessionPrompt
}

// SelectProfileContent loads the global profile, splits it into blocks and
// filters them by the session's context-config.json allow-list. An absent or
// empty allow-list keeps every block. Surviving blocks are joined as
// "## name\ncontent" sections; "" when nothing survives.
func (c *Compiler) SelectProfileContent(sessionID string) string {
	data, err := os.ReadFile(filepath.Join(c.dataDir, "profile.md"))
	if err != nil {
		return ""
	}

	blocks := profile.ParseBlocks(string(data))
	blocks = filterBlocks(blocks, c.loadContextConfig(sessionID))

	return joinBlocks(blocks)
}

// ProfileBlocks returns all parsed global profile blocks.
func (c *Compiler) ProfileBlocks() []types.ProfileBlock {
	data, err := os.ReadFile(filepath.Join(c.dataDir, "profile.md"))
	if err != nil {
		return []types.ProfileBlock{}
	}
	return profile.ParseBlocks(string(data))
}

func (c *Compiler) loadContextConfig(sessionID string) *types.ContextConfig {
	data, err := os.ReadFile(filepath.Join(c.dataDir, sessionID, "context-config.json"))
	if err != nil {
		return nil
	}
	var cfg types.ContextConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		// Corrupted config selects nothing away.
		return nil
	}
	return &cfg
}

func filterBlocks(blocks []types.ProfileBlock, cfg *types.ContextConfig) []types.ProfileBlock {
	if cfg == nil || len(cfg.ProfileBlockIDs) == 0 {
		return blocks
	}
	allowed := make(map[string]bool, len(cfg.ProfileBlockIDs))
	for _, id := range cfg.ProfileBlockIDs {
		allowed[id] = true
	}
	out := blocks[:0:0]
	for _, b := range blocks {
		if allowed[b.ID] {
			out = append(out, b)
		}
	}
	return out
}

func joinBlocks(blocks []types.ProfileBlock) string {
	if len(blocks) == 0 {
		return ""
	}
	sections := make([]string, len(blocks))
	for i, b := range blocks {
		sections[i] = fmt.Sprintf("## %s\n%s", b.Name, b.Content)
	}
	return strings.Join(sections, "\n\n")
}

// ResolveReferences scans the utterance for inline references, de-duplicates
// them, and appends one rendered <selection> block per resolvable reference
// in first-appearance order. Unresolvable references are skipped silently
// and counted.
func (c *Compiler) ResolveReferences(sessionID, message string) (string, int) {
	refs := reference.Dedupe(reference.Parse(message))
	if len(refs) == 0 {
		return message, 0
	}

	ws := workspace.New(filepath.Join(c.dataDir, sessionID))

	var selections []string
	unresolved := 0
	for _, ref := range refs {
		sel, ok := c.resolveOne(ws, ref)
		if !ok {
			unresolved++
			continue
		}
		selections = append(selections, sel)
	}

	if len(selections) == 0 {
		return message, unresolved
	}
	return message + "\n\n" + strings.Join(selections, "\n\n"), unresolved
}

func (c *Compiler) resolveOne(ws *workspace.Store, ref types.FileReference) (string, bool) {
	switch {
	case ref.StartLine > 0 && ref.EndLine > 0:
		res, err := ws.Read(ref.File, ref.StartLine, ref.EndLine)
		if err != nil {
			return "", false
		}
		lines := fmt.Sprintf("%d-%d", ref.StartLine, ref.EndLine)
		return formatSelection(ref.File, res.Content, lines, "", ref.StartLine), true

	case ref.BlockID != "":
		res, err := ws.Read(ref.File, 0, 0)
		if err != nil {
			return "", false
		}
		block := profile.Find(profile.ParseBlocks(res.Content), ref.BlockID)
		if block == nil {
			return "", false
		}
		return formatSelection(ref.File, block.Content, "", ref.BlockID, 1), true

	default:
		res, err := ws.Read(ref.File, 0, 0)
		if err != nil {
			return "", false
		}
		return formatSelection(ref.File, strings.TrimSuffix(res.Content, "\n"), "", "", 1), true
	}
}

// formatSelection renders content as a numbered <selection> block. Numbering
// starts at startLine.
func formatSelection(path, content, lines, blockID string, startLine int) string {
	numbered := make([]string, 0)
	for i, line := range strings.Split(content, "\n") {
		numbered = append(numbered, fmt.Sprintf("%d| %s", startLine+i, line))
	}

	attrs := fmt.Sprintf("path=%q", path)
	if lines != "" {
		attrs += fmt.Sprintf(" lines=%q", lines)
	}
	if blockID != "" {
		attrs += fmt.Sprintf(" blockid=%q", blockID)
	}

	return fmt.Sprintf("<selection %s>\n%s\n</selection>", attrs, strings.Join(numbered, "\n"))
}

// FormatSystemMessage wraps each present piece in its named tag, in fixed
// order, separated by blank lines. Absent sections are omitted entirely.
func FormatSystemMessage(systemPrompt, sessionPrompt, profileContent string) string {
	result := fmt.Sprintf("<system_prompt>\n%s\n</system_prompt>", systemPrompt)

	if sessionPrompt != "" {
		result += fmt.Sprintf("\n\n<session_prompt>\n%s\n</session_prompt>", sessionPrompt)
	}
	if profileContent != "" {
		result += fmt.Sprintf("\n\n<profile_blocks>\n%s\n</profile_blocks>", profileContent)
	}

	return result
}

// buildMessages maps stored history to role/content pairs and appends the
// new resolved user turn. User entries replay their resolved content when
// present; assistant entries always replay flat text.
func (c *Compiler) buildMessages(ctx context.Context, sessionID, resolvedUserContent string) ([]types.ModelMessage, error) {
	history, err := c.store.Messages(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	messages := make([]types.ModelMessage, 0, len(history)+1)
	for _, m := range history {
		content := m.Content
		if m.Role == "user" && m.ResolvedContent != "" {
			content = m.ResolvedContent
		}
		messages = append(messages, types.ModelMessage{Role: m.Role, Content: content})
	}
	messages = append(messages, types.ModelMessage{Role: "user", Content: resolvedUserContent})

	return messages, nil
}

func readTrimmed(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
