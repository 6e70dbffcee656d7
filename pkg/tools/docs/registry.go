package docs

import (
	"github.com/entrhq/affine-tools/pkg/agent/tools"
)

// ToolRegistry builds the AFFiNE tool set around a shared ClientProvider.
type ToolRegistry struct {
	provider *ClientProvider
}

// NewToolRegistry creates a registry for the given provider.
func NewToolRegistry(provider *ClientProvider) *ToolRegistry {
	return &ToolRegistry{provider: provider}
}

// RegisterTools returns the five AFFiNE tools. No configuration is read and
// no client is built until a tool executes.
func (r *ToolRegistry) RegisterTools() []tools.Tool {
	return []tools.Tool{
		NewListWorkspacesTool(r.provider),
		NewListDocsTool(r.provider),
		NewReadDocTool(r.provider),
		NewUpdateDocTool(r.provider),
		NewCreateDocTool(r.provider),
	}
}

var (
	_ tools.Labeled = (*ListWorkspacesTool)(nil)
	_ tools.Labeled = (*ListDocsTool)(nil)
	_ tools.Labeled = (*ReadDocTool)(nil)
	_ tools.Labeled = (*UpdateDocTool)(nil)
	_ tools.Labeled = (*CreateDocTool)(nil)
)
