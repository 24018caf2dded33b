package tool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tutorkit/tutorkit/internal/workspace"
)

func newWorkspace(t *testing.T) *workspace.Store {
	t.Helper()
	return workspace.New(t.TempDir())
}

func asMap(t *testing.T, result any) map[string]any {
	t.Helper()
	m, ok := result.(map[string]any)
	require.True(t, ok, "result should be a map, got %T", result)
	return m
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NotNil(t, r.Get("read_file"))
	require.NotNil(t, r.Get("write_file"))
	require.Nil(t, r.Get("bash"))
	require.Len(t, r.Infos(), 2)
	require.Equal(t, "read_file", r.Infos()[0].Name)
}

func TestReadTool_WholeFile(t *testing.T) {
	ws := newWorkspace(t)
	require.NoError(t, ws.Write("notes.md", "a\nb\nc\n", 0, 0))

	result := asMap(t, NewReadTool().Execute(context.Background(), ws, map[string]any{"path": "notes.md"}))
	require.Equal(t, true, result["success"])
	require.Equal(t, "a\nb\nc\n", result["content"])
	require.Equal(t, 3, result["totalLines"])
}

func TestReadTool_RangeClamped(t *testing.T) {
	ws := newWorkspace(t)
	require.NoError(t, ws.Write("notes.md", "a\nb\nc\n", 0, 0))

	result := asMap(t, NewReadTool().Execute(context.Background(), ws, map[string]any{
		"path": "notes.md", "startLine": float64(2), "endLine": float64(99),
	}))
	require.Equal(t, true, result["success"])
	require.Equal(t, "b\nc", result["content"])
}

func TestReadTool_Missing(t *testing.T) {
	ws := newWorkspace(t)
	result := asMap(t, NewReadTool().Execute(context.Background(), ws, map[string]any{"path": "ghost.md"}))
	require.Equal(t, false, result["success"])
	require.Contains(t, result["error"], "ghost.md")
}

func TestReadTool_Traversal(t *testing.T) {
	ws := newWorkspace(t)
	for _, path := range []string{"../outside.md", "/etc/passwd"} {
		result := asMap(t, NewReadTool().Execute(context.Background(), ws, map[string]any{"path": path}))
		require.Equal(t, false, result["success"], "path %q should be rejected", path)
	}
}

func TestWriteTool_CreateAndDiff(t *testing.T) {
	ws := newWorkspace(t)

	result := asMap(t, NewWriteTool().Execute(context.Background(), ws, map[string]any{
		"path": "guidance.md", "content": "one\ntwo\n",
	}))
	require.Equal(t, true, result["success"])
	require.Equal(t, 2, result["additions"])
	require.Equal(t, 0, result["deletions"])

	res, err := ws.Read("guidance.md", 0, 0)
	require.NoError(t, err)
	require.Equal(t, "one\ntwo\n", res.Content)
}

func TestWriteTool_RangeReplace(t *testing.T) {
	ws := newWorkspace(t)
	require.NoError(t, ws.Write("m.md", "a\nb\nc\n", 0, 0))

	result := asMap(t, NewWriteTool().Execute(context.Background(), ws, map[string]any{
		"path": "m.md", "content": "B", "startLine": float64(2), "endLine": float64(2),
	}))
	require.Equal(t, true, result["success"])

	res, err := ws.Read("m.md", 0, 0)
	require.NoError(t, err)
	require.Equal(t, "a\nB\nc\n", res.Content)
}

func TestWriteTool_RangeOnMissingFileFails(t *testing.T) {
	ws := newWorkspace(t)
	result := asMap(t, NewWriteTool().Execute(context.Background(), ws, map[string]any{
		"path": "ghost.md", "content": "x", "startLine": float64(1), "endLine": float64(1),
	}))
	require.Equal(t, false, result["success"])
}

func TestWriteTool_OutOfRangeFails(t *testing.T) {
	ws := newWorkspace(t)
	require.NoError(t, ws.Write("m.md", "a\n", 0, 0))

	result := asMap(t, NewWriteTool().Execute(context.Background(), ws, map[string]any{
		"path": "m.md", "content": "x", "startLine": float64(1), "endLine": float64(5),
	}))
	require.Equal(t, false, result["success"])
}

func TestDiffStats(t *testing.T) {
	additions, deletions := diffStats("a\nb\n", "a\nc\nd\n")
	require.Equal(t, 2, additions)
	require.Equal(t, 1, deletions)

	additions, deletions = diffStats("same", "same")
	require.Zero(t, additions)
	require.Zero(t, deletions)
}
