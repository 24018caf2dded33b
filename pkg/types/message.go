package types

// ChatMessage is one persisted turn entry. User messages carry the original
// input plus the reference-resolved form; assistant messages carry the flat
// text plus the ordered parts that produced it. Messages are append-only and
// written exactly once.
type ChatMessage struct {
	ID        string `json:"id"`
	SessionID string `json:"sessionId"`
	Role      string `json:"role"` // "user" | "assistant"
	Content   string `json:"content"`

	// User-specific fields
	ResolvedContent string          `json:"resolvedContent,omitempty"`
	References      []FileReference `json:"references,omitempty"`

	// Assistant-specific fields
	Parts Parts `json:"parts,omitempty"`

	CreatedAt string `json:"createdAt"`
}

// ModelMessage is one entry of the model-ready history: a plain role/content
// pair. User entries use the reference-resolved content when present;
// assistant entries always use the flat text, never the parts.
type ModelMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
