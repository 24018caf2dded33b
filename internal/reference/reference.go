// Package reference parses inline file references out of free text.
//
// Three forms are recognized: [path], [path:start:end] and [path#blockId].
// The path must carry an extension and contain no brackets, whitespace or
// colons.
package reference

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/tutorkit/tutorkit/pkg/types"
)

var referencePattern = regexp.MustCompile(`\[([^\[\]\s:]+\.\w+)(?::(\d+):(\d+)|#([^\[\]\s]+))?\]`)

// Parse extracts all inline references from text in order of appearance.
// Malformed bracket content (no path, or a file stem without an extension)
// is not matched.
func Parse(text string) []types.FileReference {
	matches := referencePattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	refs := make([]types.FileReference, 0, len(matches))
	for _, m := range matches {
		ref := types.FileReference{File: m[1]}
		if m[2] != "" && m[3] != "" {
			ref.StartLine, _ = strconv.Atoi(m[2])
			ref.EndLine, _ = strconv.Atoi(m[3])
		} else if m[4] != "" {
			ref.BlockID = m[4]
		}
		refs = append(refs, ref)
	}
	return refs
}

// Generate renders a reference back to its token form. For the line-range and
// whole-file forms this is the exact textual inverse of Parse.
func Generate(ref types.FileReference) string {
	switch {
	case ref.StartLine > 0 && ref.EndLine > 0:
		return fmt.Sprintf("[%s:%d:%d]", ref.File, ref.StartLine, ref.EndLine)
	case ref.BlockID != "":
		return fmt.Sprintf("[%s#%s]", ref.File, ref.BlockID)
	default:
		return fmt.Sprintf("[%s]", ref.File)
	}
}

// Dedupe removes references with duplicate keys, keeping first appearances
// in order.
func Dedupe(refs []types.FileReference) []types.FileReference {
	seen := make(map[string]bool, len(refs))
	out := make([]types.FileReference, 0, len(refs))
	for _, ref := range refs {
		key := ref.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ref)
	}
	return out
}
