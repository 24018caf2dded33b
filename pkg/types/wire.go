package types

// WireEvent is one unit of the outward streaming protocol. Each event is an
// independently parseable JSON object; "done" is always the terminal event of
// a successful turn, "error" is terminal and never followed by "done".
type WireEvent struct {
	Type     string         `json:"type"`
	Content  string         `json:"content,omitempty"`
	ToolName string         `json:"toolName,omitempty"`
	Args     map[string]any `json:"args,omitempty"`
	Result   any            `json:"result,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// Wire event types.
const (
	WireTextDelta  = "text-delta"
	WireToolCall   = "tool-call"
	WireToolResult = "tool-result"
	WireDone       = "done"
	WireError      = "error"
)

// NewTextDelta builds a text-delta wire event.
func NewTextDelta(content string) WireEvent {
	return WireEvent{Type: WireTextDelta, Content: content}
}

// NewToolCall builds a tool-call wire event.
func NewToolCall(toolName string, args map[string]any) WireEvent {
	return WireEvent{Type: WireToolCall, ToolName: toolName, Args: args}
}

// NewToolResult builds a tool-result wire event.
func NewToolResult(toolName string, result any) WireEvent {
	return WireEvent{Type: WireToolResult, ToolName: toolName, Result: result}
}

// NewDone builds the terminal done event.
func NewDone() WireEvent {
	return WireEvent{Type: WireDone}
}

// NewError builds the terminal error event.
func NewError(msg string) WireEvent {
	return WireEvent{Type: WireError, Error: msg}
}
