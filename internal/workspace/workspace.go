// Package workspace provides a sandboxed, line-addressable file store scoped
// to one session directory. All paths are resolved relative to the base
// directory; any resolution that escapes it is rejected.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

var (
	// ErrNotFound indicates the addressed file does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrPathTraversal indicates a path resolved outside the sandbox. This is
	// a security boundary: traversal attempts are rejected, never silently
	// re-rooted inside the sandbox.
	ErrPathTraversal = errors.New("path traversal not allowed")

	// ErrLineRange indicates a write with out-of-range line bounds. Reads
	// clamp their bounds instead; writes are strict to prevent silent data
	// loss.
	ErrLineRange = errors.New("line range out of bounds")
)

// ignorePatterns are bookkeeping files excluded from listings.
var ignorePatterns = []string{"messages.json", "**/.*", ".*"}

// Store reads and writes files inside a single base directory.
// Line numbers are 1-based throughout.
type Store struct {
	baseDir string
}

// New creates a store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: filepath.Clean(baseDir)}
}

// BaseDir returns the sandbox root.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// ReadResult is the outcome of a read: the selected content and the file's
// total line count. A trailing newline does not count as an extra line:
// "A\nB\n" has two lines.
type ReadResult struct {
	Content    string `json:"content"`
	TotalLines int    `json:"totalLines"`
}

// resolve maps a relative path into the sandbox, rejecting absolute paths,
// ".." escapes and symlinks that point outside the base directory.
func (s *Store) resolve(relPath string) (string, error) {
	if relPath == "" {
		return "", fmt.Errorf("%w: empty path", ErrNotFound)
	}
	if filepath.IsAbs(relPath) || strings.HasPrefix(relPath, "/") || strings.HasPrefix(relPath, "\\") {
		return "", ErrPathTraversal
	}

	cleaned := filepath.Clean(filepath.FromSlash(relPath))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}

	abs := filepath.Join(s.baseDir, cleaned)

	// A symlink inside the tree must not lead outside it. The target itself
	// may not exist yet (full-overwrite writes create files), so walk up to
	// the deepest existing ancestor and check that one instead; otherwise a
	// symlinked directory could smuggle a new file out of the sandbox.
	target := abs
	for target != s.baseDir {
		resolved, err := filepath.EvalSymlinks(target)
		if err != nil {
			if os.IsNotExist(err) {
				parent := filepath.Dir(target)
				if parent == target {
					break
				}
				target = parent
				continue
			}
			return "", fmt.Errorf("failed to resolve %s: %w", relPath, err)
		}

		baseResolved, err := filepath.EvalSymlinks(s.baseDir)
		if err != nil {
			return "", fmt.Errorf("failed to resolve base: %w", err)
		}
		rel, err := filepath.Rel(baseResolved, resolved)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", ErrPathTraversal
		}
		break
	}

	return abs, nil
}

// splitLines splits content into lines without counting a trailing newline
// as an extra empty line. The second return reports whether the content
// ended with a newline so writes can preserve the convention.
func splitLines(content string) ([]string, bool) {
	if content == "" {
		return nil, false
	}
	trailing := strings.HasSuffix(content, "\n")
	if trailing {
		content = content[:len(content)-1]
	}
	return strings.Split(content, "\n"), trailing
}

// Read returns file content. With startLine/endLine == 0 the whole file is
// returned. Bounds are clamped into [1, totalLines] rather than rejected, so
// an oversized endLine returns up to EOF.
func (s *Store) Read(relPath string, startLine, endLine int) (*ReadResult, error) {
	abs, err := s.resolve(relPath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, relPath)
		}
		return nil, fmt.Errorf("failed to read %s: %w", relPath, err)
	}

	raw := string(data)
	lines, _ := splitLines(raw)
	total := len(lines)

	if startLine == 0 && endLine == 0 {
		return &ReadResult{Content: raw, TotalLines: total}, nil
	}

	if total == 0 {
		return &ReadResult{Content: "", TotalLines: 0}, nil
	}

	start := startLine
	if start == 0 {
		start = 1
	}
	end := endLine
	if end == 0 {
		end = total
	}

	start = clamp(start, 1, total)
	end = clamp(end, 1, total)
	if end < start {
		return &ReadResult{Content: "", TotalLines: total}, nil
	}

	return &ReadResult{
		Content:    strings.Join(lines[start-1:end], "\n"),
		TotalLines: total,
	}, nil
}

// Write stores file content. With both bounds zero the file is overwritten
// in full, creating parent directories as needed. With a range the given
// lines are replaced in place; unlike reads, bounds are strict: both must be
// positive and in range, and the target file must already exist. A range
// that is only partially specified or carries a negative bound is rejected
// rather than degraded into a full overwrite.
func (s *Store) Write(relPath, content string, startLine, endLine int) error {
	abs, err := s.resolve(relPath)
	if err != nil {
		return err
	}

	if startLine == 0 && endLine == 0 {
		if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		if err := os.WriteFile(abs, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", relPath, err)
		}
		return nil
	}

	if startLine < 1 || endLine < 1 {
		return fmt.Errorf("%w: startLine %d, endLine %d", ErrLineRange, startLine, endLine)
	}
	if startLine > endLine {
		return fmt.Errorf("%w: startLine %d greater than endLine %d", ErrLineRange, startLine, endLine)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: cannot replace lines in %s", ErrNotFound, relPath)
		}
		return fmt.Errorf("failed to read %s: %w", relPath, err)
	}

	lines, trailing := splitLines(string(data))
	if endLine > len(lines) {
		return fmt.Errorf("%w: endLine %d exceeds %d lines", ErrLineRange, endLine, len(lines))
	}

	replacement := strings.Split(strings.TrimSuffix(content, "\n"), "\n")

	spliced := make([]string, 0, len(lines)-(endLine-startLine+1)+len(replacement))
	spliced = append(spliced, lines[:startLine-1]...)
	spliced = append(spliced, replacement...)
	spliced = append(spliced, lines[endLine:]...)

	out := strings.Join(spliced, "\n")
	if trailing {
		out += "\n"
	}

	if err := os.WriteFile(abs, []byte(out), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", relPath, err)
	}
	return nil
}

// Delete removes a file from the sandbox.
func (s *Store) Delete(relPath string) error {
	abs, err := s.resolve(relPath)
	if err != nil {
		return err
	}

	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, relPath)
		}
		return err
	}

	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("failed to delete %s: %w", relPath, err)
	}
	return nil
}

// List returns the relative paths of all student-visible files under the
// sandbox, excluding dotfiles and bookkeeping files.
func (s *Store) List() ([]string, error) {
	if _, err := os.Stat(s.baseDir); err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	files := []string{}
	err := filepath.WalkDir(s.baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != s.baseDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		for _, pattern := range ignorePatterns {
			if ok, _ := doublestar.Match(pattern, rel); ok {
				return nil
			}
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
