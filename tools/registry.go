// Package tools provides a metadata-driven registry for MCP tool definitions.
// Tools are defined declaratively in AllTools and bound to type-safe handler
// methods at registration time.
package tools

// ToolSpec defines a tool's metadata for declarative registration.
// Each spec maps to a HandlerRegistry method with matching Args/Result types.
type ToolSpec struct {
	// Name is the MCP tool name (e.g., "get_performer_info")
	Name string

	// Method is the handler method name (e.g., "PerformerInfo")
	Method string

	// Description is the tool description shown to LLMs
	Description string

	// Title is the human-readable tool title for annotations
	Title string

	// Category groups tools logically (performers, scenes, analysis, system)
	Category string

	// ReadOnly indicates the tool doesn't modify library state
	ReadOnly bool

	// Idempotent indicates repeated calls have the same effect
	Idempotent bool

	// OpenWorld indicates the tool accesses resources outside the library
	OpenWorld bool

	// Progress indicates the tool reports progress notifications
	Progress bool
}

// ToolsByCategory returns the specs in a category
func ToolsByCategory(category string) []ToolSpec {
	var specs []ToolSpec
	for _, spec := range AllTools {
		if spec.Category == category {
			specs = append(specs, spec)
		}
	}
	return specs
}

// ptr is a helper to create a pointer to a value.
func ptr[T any](v T) *T {
	return &v
}
