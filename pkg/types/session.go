// Package types defines the shared data model for the tutorkit server.
package types

import "fmt"

// Session is one learning thread, backed by its own directory of documents
// and an append-only message log.
type Session struct {
	ID        string `json:"id"`
	Concept   string `json:"concept"`
	CreatedAt string `json:"createdAt"`
}

// FileReference is an inline token pointing at a line range, a named block,
// or a whole file. The three forms are mutually exclusive.
type FileReference struct {
	File      string `json:"file"`
	StartLine int    `json:"startLine,omitempty"`
	EndLine   int    `json:"endLine,omitempty"`
	BlockID   string `json:"blockId,omitempty"`
}

// Key returns the de-duplication key for a reference: identical keys resolve
// to identical selections and are rendered only once.
func (r FileReference) Key() string {
	switch {
	case r.BlockID != "":
		return fmt.Sprintf("%s#%s", r.File, r.BlockID)
	case r.StartLine > 0 && r.EndLine > 0:
		return fmt.Sprintf("%s:%d:%d", r.File, r.StartLine, r.EndLine)
	default:
		return r.File
	}
}

// ProfileBlock is a heading-delimited section of a profile-style document.
// ID and Name are both the heading text.
type ProfileBlock struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// MilestoneItem is one checkbox line of milestones.md.
type MilestoneItem struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// Milestones is the structured form of a session's milestones.md.
type Milestones struct {
	Title string          `json:"title"`
	Items []MilestoneItem `json:"items"`
}

// ContextConfig is the per-session context-config.json: an allow-list of
// profile block ids. Empty or absent means all blocks are included.
type ContextConfig struct {
	ProfileBlockIDs []string `json:"profileBlockIds,omitempty"`
}
