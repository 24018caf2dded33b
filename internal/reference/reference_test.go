package reference

import (
	"testing"

	"github.com/tutorkit/tutorkit/pkg/types"
)

func TestParse_WholeFile(t *testing.T) {
	refs := Parse("看一下 [notes.md] 的内容")
	if len(refs) != 1 {
		t.Fatalf("got %d refs, want 1", len(refs))
	}
	if refs[0].File != "notes.md" || refs[0].StartLine != 0 || refs[0].BlockID != "" {
		t.Errorf("ref = %+v", refs[0])
	}
}

func TestParse_LineRange(t *testing.T) {
	refs := Parse("explain [guidance.md:3:10] please")
	if len(refs) != 1 {
		t.Fatalf("got %d refs, want 1", len(refs))
	}
	want := types.FileReference{File: "guidance.md", StartLine: 3, EndLine: 10}
	if refs[0] != want {
		t.Errorf("ref = %+v, want %+v", refs[0], want)
	}
}

func TestParse_Block(t *testing.T) {
	refs := Parse("see [profile.md#背景] here")
	if len(refs) != 1 {
		t.Fatalf("got %d refs, want 1", len(refs))
	}
	if refs[0].File != "profile.md" || refs[0].BlockID != "背景" {
		t.Errorf("ref = %+v", refs[0])
	}
}

func TestParse_MultipleInOrder(t *testing.T) {
	refs := Parse("[a.md] then [b.md:1:2] then [c.md#x]")
	if len(refs) != 3 {
		t.Fatalf("got %d refs, want 3", len(refs))
	}
	if refs[0].File != "a.md" || refs[1].File != "b.md" || refs[2].File != "c.md" {
		t.Errorf("order wrong: %+v", refs)
	}
}

func TestParse_Malformed(t *testing.T) {
	cases := []string{
		"[]",             // no path
		"[noextension]",  // stem without extension
		"[has space.md]", // whitespace in path
		"[a.md:1]",       // partial range
		"plain text",
	}
	for _, text := range cases {
		if refs := Parse(text); len(refs) != 0 {
			t.Errorf("Parse(%q) = %+v, want none", text, refs)
		}
	}
}

func TestGenerate_InverseOfParse(t *testing.T) {
	for _, token := range []string{"[notes.md]", "[notes.md:1:5]"} {
		refs := Parse(token)
		if len(refs) != 1 {
			t.Fatalf("Parse(%q) got %d refs", token, len(refs))
		}
		if got := Generate(refs[0]); got != token {
			t.Errorf("Generate(Parse(%q)) = %q", token, got)
		}
	}
}

func TestDedupe(t *testing.T) {
	refs := Parse("[f.md] and [f.md] and [f.md:1:2] and [f.md:1:2] and [f.md#b]")
	deduped := Dedupe(refs)
	if len(deduped) != 3 {
		t.Fatalf("got %d refs after dedupe, want 3: %+v", len(deduped), deduped)
	}
	if deduped[0].Key() != "f.md" || deduped[1].Key() != "f.md:1:2" || deduped[2].Key() != "f.md#b" {
		t.Errorf("dedupe order wrong: %+v", deduped)
	}
}
