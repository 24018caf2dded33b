package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	return New(dir), dir
}

func TestRead_WholeFile(t *testing.T) {
	s, dir := newStore(t)
	if err := os.WriteFile(filepath.Join(dir, "notes.md"), []byte("line1\nline2\nline3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := s.Read("notes.md", 0, 0)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if res.Content != "line1\nline2\nline3\n" {
		t.Errorf("Content = %q", res.Content)
	}
	if res.TotalLines != 3 {
		t.Errorf("TotalLines = %d, want 3", res.TotalLines)
	}
}

func TestRead_TrailingNewlineNotCounted(t *testing.T) {
	s, dir := newStore(t)
	os.WriteFile(filepath.Join(dir, "a.txt"), []byte("A\nB\n"), 0644)

	res, err := s.Read("a.txt", 0, 0)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if res.TotalLines != 2 {
		t.Errorf("TotalLines = %d, want 2", res.TotalLines)
	}
}

func TestRead_LineRange(t *testing.T) {
	s, dir := newStore(t)
	os.WriteFile(filepath.Join(dir, "notes.md"), []byte("line1\nline2\nline3\n"), 0644)

	res, err := s.Read("notes.md", 1, 2)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if res.Content != "line1\nline2" {
		t.Errorf("Content = %q, want %q", res.Content, "line1\nline2")
	}
	if res.TotalLines != 3 {
		t.Errorf("TotalLines = %d, want 3", res.TotalLines)
	}
}

func TestRead_ClampsOversizedEndLine(t *testing.T) {
	s, dir := newStore(t)
	os.WriteFile(filepath.Join(dir, "a.txt"), []byte("one\ntwo\n"), 0644)

	res, err := s.Read("a.txt", 1, 99)
	if err != nil {
		t.Fatalf("Read should clamp, got: %v", err)
	}
	if res.Content != "one\ntwo" {
		t.Errorf("Content = %q", res.Content)
	}
}

func TestRead_NotFound(t *testing.T) {
	s, _ := newStore(t)
	_, err := s.Read("missing.md", 0, 0)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRead_PathTraversal(t *testing.T) {
	s, _ := newStore(t)
	for _, p := range []string{"../outside.txt", "/etc/passwd", "a/../../b.txt"} {
		_, err := s.Read(p, 0, 0)
		if !errors.Is(err, ErrPathTraversal) {
			t.Errorf("Read(%q) err = %v, want ErrPathTraversal", p, err)
		}
	}
}

func TestWrite_SymlinkedDirEscape(t *testing.T) {
	s, dir := newStore(t)

	// A symlinked directory inside the sandbox must not let a brand-new
	// file land outside it.
	outside := t.TempDir()
	if err := os.Symlink(outside, filepath.Join(dir, "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	err := s.Write("link/evil.txt", "pwned", 0, 0)
	if !errors.Is(err, ErrPathTraversal) {
		t.Errorf("err = %v, want ErrPathTraversal", err)
	}
	if _, err := os.Stat(filepath.Join(outside, "evil.txt")); !os.IsNotExist(err) {
		t.Error("file escaped the sandbox")
	}
}

func TestRead_SymlinkedFileEscape(t *testing.T) {
	s, dir := newStore(t)

	outside := filepath.Join(t.TempDir(), "secret.txt")
	if err := os.WriteFile(outside, []byte("secret"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(outside, filepath.Join(dir, "alias.txt")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	if _, err := s.Read("alias.txt", 0, 0); !errors.Is(err, ErrPathTraversal) {
		t.Errorf("err = %v, want ErrPathTraversal", err)
	}
}

func TestWrite_FullOverwriteCreatesDirs(t *testing.T) {
	s, dir := newStore(t)
	if err := s.Write("sub/deep/file.md", "hello\n", 0, 0); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "sub", "deep", "file.md"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello\n" {
		t.Errorf("content = %q", string(data))
	}
}

func TestWrite_SpliceRange(t *testing.T) {
	s, dir := newStore(t)
	os.WriteFile(filepath.Join(dir, "doc.md"), []byte("a\nb\nc\nd\n"), 0644)

	if err := s.Write("doc.md", "X\nY", 2, 3); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	res, err := s.Read("doc.md", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if res.Content != "a\nX\nY\nd\n" {
		t.Errorf("content = %q, want %q", res.Content, "a\nX\nY\nd\n")
	}

	// Lines outside the replaced range are untouched.
	if got, _ := s.Read("doc.md", 1, 1); got.Content != "a" {
		t.Errorf("line 1 = %q, want %q", got.Content, "a")
	}
	if got, _ := s.Read("doc.md", 4, 4); got.Content != "d" {
		t.Errorf("line 4 = %q, want %q", got.Content, "d")
	}
}

func TestWrite_RangeRoundTrip(t *testing.T) {
	s, dir := newStore(t)
	os.WriteFile(filepath.Join(dir, "doc.md"), []byte("a\nb\nc\n"), 0644)

	if err := s.Write("doc.md", "B2", 2, 2); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	res, err := s.Read("doc.md", 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if res.Content != "B2" {
		t.Errorf("read-back = %q, want %q", res.Content, "B2")
	}
}

func TestWrite_RejectsOversizedEndLine(t *testing.T) {
	s, dir := newStore(t)
	os.WriteFile(filepath.Join(dir, "a.txt"), []byte("one\ntwo\n"), 0644)

	err := s.Write("a.txt", "x", 1, 99)
	if !errors.Is(err, ErrLineRange) {
		t.Errorf("err = %v, want ErrLineRange", err)
	}
}

func TestWrite_RejectsNonPositiveBounds(t *testing.T) {
	s, dir := newStore(t)
	os.WriteFile(filepath.Join(dir, "a.txt"), []byte("one\ntwo\nthree\n"), 0644)

	// A negative or half-specified range must never degrade into a full
	// overwrite.
	for _, tc := range []struct{ start, end int }{
		{-1, 2},
		{1, -2},
		{2, 0},
		{0, 2},
	} {
		err := s.Write("a.txt", "X", tc.start, tc.end)
		if !errors.Is(err, ErrLineRange) {
			t.Errorf("Write(%d, %d) err = %v, want ErrLineRange", tc.start, tc.end, err)
		}
	}

	data, _ := os.ReadFile(filepath.Join(dir, "a.txt"))
	if string(data) != "one\ntwo\nthree\n" {
		t.Errorf("content = %q, file should be untouched", string(data))
	}
}

func TestWrite_RejectsInvertedRange(t *testing.T) {
	s, dir := newStore(t)
	os.WriteFile(filepath.Join(dir, "a.txt"), []byte("one\ntwo\n"), 0644)

	err := s.Write("a.txt", "x", 2, 1)
	if !errors.Is(err, ErrLineRange) {
		t.Errorf("err = %v, want ErrLineRange", err)
	}
}

func TestWrite_RangeOnMissingFile(t *testing.T) {
	s, _ := newStore(t)
	err := s.Write("missing.md", "x", 1, 1)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestWrite_PreservesTrailingNewlineConvention(t *testing.T) {
	s, dir := newStore(t)

	// File without trailing newline keeps none after a splice.
	os.WriteFile(filepath.Join(dir, "bare.txt"), []byte("a\nb"), 0644)
	if err := s.Write("bare.txt", "B", 2, 2); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(filepath.Join(dir, "bare.txt"))
	if string(data) != "a\nB" {
		t.Errorf("content = %q, want %q", string(data), "a\nB")
	}

	// File with trailing newline keeps it.
	os.WriteFile(filepath.Join(dir, "nl.txt"), []byte("a\nb\n"), 0644)
	if err := s.Write("nl.txt", "B", 2, 2); err != nil {
		t.Fatal(err)
	}
	data, _ = os.ReadFile(filepath.Join(dir, "nl.txt"))
	if string(data) != "a\nB\n" {
		t.Errorf("content = %q, want %q", string(data), "a\nB\n")
	}
}

func TestDelete(t *testing.T) {
	s, dir := newStore(t)
	os.WriteFile(filepath.Join(dir, "gone.md"), []byte("x"), 0644)

	if err := s.Delete("gone.md"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "gone.md")); !os.IsNotExist(err) {
		t.Error("file should be gone")
	}

	if err := s.Delete("gone.md"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestList_SkipsBookkeepingFiles(t *testing.T) {
	s, dir := newStore(t)
	os.WriteFile(filepath.Join(dir, "guidance.md"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "messages.json"), []byte("[]"), 0644)
	os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0644)
	os.MkdirAll(filepath.Join(dir, "sub"), 0755)
	os.WriteFile(filepath.Join(dir, "sub", "notes.md"), []byte("x"), 0644)

	files, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	want := map[string]bool{"guidance.md": true, "sub/notes.md": true}
	if len(files) != len(want) {
		t.Fatalf("files = %v, want %v", files, want)
	}
	for _, f := range files {
		if !want[f] {
			t.Errorf("unexpected file %q", f)
		}
	}
}

func TestList_MissingDir(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nope"))
	files, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("files = %v, want empty", files)
	}
}
