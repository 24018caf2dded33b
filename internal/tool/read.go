package tool

import (
	"context"
	"encoding/json"

	"github.com/tutorkit/tutorkit/internal/workspace"
)

// ReadTool reads a workspace file or a line range of it.
type ReadTool struct{}

func NewReadTool() *ReadTool { return &ReadTool{} }

func (t *ReadTool) Name() string { return "read_file" }

func (t *ReadTool) Description() string {
	return "Read a file from the session workspace. Optionally pass startLine and endLine (1-based, inclusive) to read a specific range."
}

func (t *ReadTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {"type": "string", "description": "Relative path of the file to read"},
			"startLine": {"type": "integer", "description": "First line to read (1-based)"},
			"endLine": {"type": "integer", "description": "Last line to read (inclusive)"}
		},
		"required": ["path"]
	}`)
}

func (t *ReadTool) Execute(ctx context.Context, ws *workspace.Store, args map[string]any) any {
	path := stringArg(args, "path")
	if path == "" {
		return Failure("path is required")
	}

	res, err := ws.Read(path, intArg(args, "startLine"), intArg(args, "endLine"))
	if err != nil {
		return Failure(err.Error())
	}

	return Success(map[string]any{
		"path":       path,
		"content":    res.Content,
		"totalLines": res.TotalLines,
	})
}
