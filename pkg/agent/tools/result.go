package tools

// ToolResult represents the result of a tool execution with optional metadata.
type ToolResult struct {
	ToolName string                 // Name of the tool that produced the result
	Output   string                 // The main output/result message
	Metadata map[string]interface{} // Optional metadata about the execution
}
