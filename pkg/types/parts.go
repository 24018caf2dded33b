package types

import "encoding/json"

// Part is one ordered element of an assistant turn's structure: a run of
// text, a tool invocation, or a tool result. The order of parts exactly
// mirrors the order of stream events, so it is the only record of when a
// tool ran relative to prose.
type Part interface {
	PartType() string
}

// TextPart is a run of assistant prose. Consecutive text deltas merge into
// one TextPart; any tool event closes it.
type TextPart struct {
	Type    string `json:"type"` // always "text"
	Content string `json:"content"`
}

func (p *TextPart) PartType() string { return "text" }

// ToolCallPart records a tool invocation.
type ToolCallPart struct {
	Type     string         `json:"type"` // always "tool-call"
	ToolName string         `json:"toolName"`
	Args     map[string]any `json:"args,omitempty"`
}

func (p *ToolCallPart) PartType() string { return "tool-call" }

// ToolResultPart records a tool's outcome.
type ToolResultPart struct {
	Type     string `json:"type"` // always "tool-result"
	ToolName string `json:"toolName"`
	Result   any    `json:"result,omitempty"`
}

func (p *ToolResultPart) PartType() string { return "tool-result" }

// UnknownPart carries a persisted part whose kind this build does not
// recognize. It round-trips the raw JSON untouched so a single foreign
// entry cannot make an entire session history unreadable.
type UnknownPart struct {
	Type string
	Raw  json.RawMessage
}

func (p *UnknownPart) PartType() string { return p.Type }

// MarshalJSON writes the part back exactly as it was stored.
func (p *UnknownPart) MarshalJSON() ([]byte, error) {
	return p.Raw, nil
}

// UnmarshalPart decodes a single persisted part into its concrete type.
// Unknown kinds decode into an UnknownPart rather than erroring.
func UnmarshalPart(data []byte) (Part, error) {
	var tag struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, err
	}

	switch tag.Type {
	case "text":
		var p TextPart
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return &p, nil
	case "tool-call":
		var p ToolCallPart
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return &p, nil
	case "tool-result":
		var p ToolResultPart
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return &p, nil
	default:
		return &UnknownPart{Type: tag.Type, Raw: append(json.RawMessage(nil), data...)}, nil
	}
}

// Parts is an ordered list of message parts with JSON round-trip support.
type Parts []Part

// UnmarshalJSON decodes a persisted parts array.
func (ps *Parts) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(Parts, 0, len(raw))
	for _, r := range raw {
		p, err := UnmarshalPart(r)
		if err != nil {
			return err
		}
		out = append(out, p)
	}
	*ps = out
	return nil
}
