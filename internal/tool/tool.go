// Package tool provides the file tools the model may call during a turn.
//
// Every execution produces a result object rather than a Go error: failures
// are reported to the model as {"success": false, "error": "..."} so it can
// recover within the same turn instead of aborting the stream.
package tool

import (
	"context"
	"encoding/json"

	"github.com/cloudwego/eino/schema"

	"github.com/tutorkit/tutorkit/internal/workspace"
)

// Tool is one model-callable operation scoped to a session workspace.
type Tool interface {
	// Name returns the tool identifier the model calls it by.
	Name() string

	// Description returns the tool description shown to the model.
	Description() string

	// Parameters returns the JSON Schema for the tool arguments.
	Parameters() json.RawMessage

	// Execute runs the tool against the session workspace. The returned
	// value is serialized back to the model and mirrored on the wire.
	Execute(ctx context.Context, ws *workspace.Store, args map[string]any) any
}

// Registry holds the available tools in registration order.
type Registry struct {
	tools []Tool
}

// NewRegistry builds the default registry with the file tools.
func NewRegistry() *Registry {
	return &Registry{tools: []Tool{NewReadTool(), NewWriteTool()}}
}

// Get returns the tool with the given name, or nil.
func (r *Registry) Get(name string) Tool {
	for _, t := range r.tools {
		if t.Name() == name {
			return t
		}
	}
	return nil
}

// All returns every registered tool.
func (r *Registry) All() []Tool {
	return r.tools
}

// Infos returns Eino tool definitions for binding to the chat model.
func (r *Registry) Infos() []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, len(r.tools))
	for i, t := range r.tools {
		infos[i] = &schema.ToolInfo{
			Name:        t.Name(),
			Desc:        t.Description(),
			ParamsOneOf: schema.NewParamsOneOfByParams(parseJSONSchemaToParams(t.Parameters())),
		}
	}
	return infos
}

// Success wraps data in the success result shape.
func Success(data map[string]any) map[string]any {
	result := map[string]any{"success": true}
	for k, v := range data {
		result[k] = v
	}
	return result
}

// Failure wraps a message in the failure result shape.
func Failure(message string) map[string]any {
	return map[string]any{"success": false, "error": message}
}

// stringArg extracts a string argument; "" when absent or not a string.
func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// intArg extracts an integer argument. JSON numbers decode as float64; 0
// means the argument was absent.
func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	default:
		return 0
	}
}

// parseJSONSchemaToParams converts JSON Schema to Eino ParameterInfo.
func parseJSONSchemaToParams(schemaJSON json.RawMessage) map[string]*schema.ParameterInfo {
	var jsonSchema struct {
		Properties map[string]struct {
			Type        string `json:"type"`
			Description string `json:"description"`
		} `json:"properties"`
		Required []string `json:"required"`
	}

	if err := json.Unmarshal(schemaJSON, &jsonSchema); err != nil {
		return nil
	}

	requiredSet := make(map[string]bool)
	for _, r := range jsonSchema.Required {
		requiredSet[r] = true
	}

	params := make(map[string]*schema.ParameterInfo)
	for name, prop := range jsonSchema.Properties {
		paramType := schema.String
		switch prop.Type {
		case "integer":
			paramType = schema.Integer
		case "number":
			paramType = schema.Number
		case "boolean":
			paramType = schema.Boolean
		case "array":
			paramType = schema.Array
		case "object":
			paramType = schema.Object
		}

		params[name] = &schema.ParameterInfo{
			Type:     paramType,
			Desc:     prop.Description,
			Required: requiredSet[name],
		}
	}

	return params
}
