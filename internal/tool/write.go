package tool

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/tutorkit/tutorkit/internal/workspace"
)

// WriteTool creates or modifies a workspace file, in full or by line range.
type WriteTool struct{}

func NewWriteTool() *WriteTool { return &WriteTool{} }

func (t *WriteTool) Name() string { return "write_file" }

func (t *WriteTool) Description() string {
	return "Create or overwrite a file in the session workspace. Pass both startLine and endLine (1-based, inclusive) to replace only that range; range writes require the file to exist and both bounds to be positive and in range."
}

func (t *WriteTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {"type": "string", "description": "Relative path of the file to write"},
			"content": {"type": "string", "description": "Content to write"},
			"startLine": {"type": "integer", "description": "First line to replace (1-based)"},
			"endLine": {"type": "integer", "description": "Last line to replace (inclusive)"}
		},
		"required": ["path", "content"]
	}`)
}

func (t *WriteTool) Execute(ctx context.Context, ws *workspace.Store, args map[string]any) any {
	path := stringArg(args, "path")
	if path == "" {
		return Failure("path is required")
	}
	content, ok := args["content"].(string)
	if !ok {
		return Failure("content is required")
	}

	before := ""
	if res, err := ws.Read(path, 0, 0); err == nil {
		before = res.Content
	} else if !errors.Is(err, workspace.ErrNotFound) {
		return Failure(err.Error())
	}

	if err := ws.Write(path, content, intArg(args, "startLine"), intArg(args, "endLine")); err != nil {
		return Failure(err.Error())
	}

	after := before
	if res, err := ws.Read(path, 0, 0); err == nil {
		after = res.Content
	}
	additions, deletions := diffStats(before, after)

	return Success(map[string]any{
		"path":      path,
		"additions": additions,
		"deletions": deletions,
	})
}
