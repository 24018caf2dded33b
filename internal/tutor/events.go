package tutor

// Event is one element of the ordered sequence a model turn produces. It is
// a closed tagged variant: the engine switches on the concrete type and
// treats anything it does not recognize as ignorable rather than fatal.
type Event interface {
	isEvent()
}

// TextDelta is a fragment of assistant prose.
type TextDelta struct {
	Content string
}

// Reasoning is internal model thinking. It is consumed and discarded, never
// forwarded to the client or accumulated into parts.
type Reasoning struct {
	Content string
}

// ToolCall reports that the model invoked a tool.
type ToolCall struct {
	ToolName string
	Args     map[string]any
}

// ToolResult carries a tool's outcome back into the sequence.
type ToolResult struct {
	ToolName string
	Result   any
}

func (TextDelta) isEvent()  {}
func (Reasoning) isEvent()  {}
func (ToolCall) isEvent()   {}
func (ToolResult) isEvent() {}
