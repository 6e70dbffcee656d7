package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Registry indexes tools by name and dispatches parsed tool calls to them.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds tools to the registry. Names must be unique.
func (r *Registry) Register(tools ...Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, tool := range tools {
		name := tool.Name()
		if name == "" {
			return fmt.Errorf("tool name cannot be empty")
		}
		if _, exists := r.tools[name]; exists {
			return fmt.Errorf("tool %q already registered", name)
		}
		r.tools[name] = tool
	}
	return nil
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	return tool, ok
}

// List returns all registered tools sorted by name.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		list = append(list, tool)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name() < list[j].Name()
	})
	return list
}

// Execute runs the tool named by the call.
func (r *Registry) Execute(ctx context.Context, call *ToolCall) (*ToolResult, error) {
	if call == nil {
		return nil, fmt.Errorf("tool call is nil")
	}

	tool, ok := r.Get(call.ToolName)
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", call.ToolName)
	}

	output, metadata, err := tool.Execute(ctx, call.GetArgumentsXML())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", call.ToolName, err)
	}

	return &ToolResult{
		ToolName: call.ToolName,
		Output:   output,
		Metadata: metadata,
	}, nil
}
