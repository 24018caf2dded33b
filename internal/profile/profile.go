// Package profile splits heading-delimited markdown into named blocks.
package profile

import (
	"regexp"
	"strings"

	"github.com/tutorkit/tutorkit/pkg/types"
)

var headingPattern = regexp.MustCompile(`^#\s+(.+)$`)

// ParseBlocks splits markdown into blocks. A block begins at a `# Heading`
// line; its content runs up to the next heading, trimmed of surrounding
// blank lines. Text before the first heading is discarded.
func ParseBlocks(content string) []types.ProfileBlock {
	if strings.TrimSpace(content) == "" {
		return []types.ProfileBlock{}
	}

	blocks := []types.ProfileBlock{}
	var currentName string
	var currentLines []string

	flush := func() {
		if currentName == "" {
			return
		}
		blocks = append(blocks, types.ProfileBlock{
			ID:      currentName,
			Name:    currentName,
			Content: strings.TrimSpace(strings.Join(currentLines, "\n")),
		})
	}

	for _, line := range strings.Split(content, "\n") {
		if m := headingPattern.FindStringSubmatch(line); m != nil {
			flush()
			currentName = strings.TrimSpace(m[1])
			currentLines = nil
			continue
		}
		currentLines = append(currentLines, line)
	}
	flush()

	return blocks
}

// Find returns the block with the given id, or nil.
func Find(blocks []types.ProfileBlock, id string) *types.ProfileBlock {
	for i := range blocks {
		if blocks[i].ID == id {
			return &blocks[i]
		}
	}
	return nil
}
