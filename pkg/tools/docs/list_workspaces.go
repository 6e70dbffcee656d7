package docs

import (
	"context"

	"github.com/entrhq/affine-tools/pkg/affine"
	"github.com/entrhq/affine-tools/pkg/agent/tools"
)

// ListWorkspacesTool lists the workspaces the configured account can access.
type ListWorkspacesTool struct {
	baseTool
}

// NewListWorkspacesTool creates a new ListWorkspacesTool.
func NewListWorkspacesTool(provider *ClientProvider) *ListWorkspacesTool {
	return &ListWorkspacesTool{baseTool{provider: provider}}
}

// Name returns the tool name.
func (t *ListWorkspacesTool) Name() string {
	return "affine_list_workspaces"
}

// Label returns the display label.
func (t *ListWorkspacesTool) Label() string {
	return "AFFiNE: List Workspaces"
}

// Description returns the tool description.
func (t *ListWorkspacesTool) Description() string {
	return "List all AFFiNE workspaces the agent has access to. Returns workspace IDs and roles."
}

// Schema returns the JSON schema for the tool's input parameters.
func (t *ListWorkspacesTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(map[string]interface{}{}, nil)
}

// Execute lists workspaces. Workspaces excluded by the guard are omitted.
func (t *ListWorkspacesTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	client, guard, err := t.connect("")
	if err != nil {
		return "", nil, err
	}

	workspaces, err := client.ListWorkspaces(ctx)
	if err != nil {
		return "", nil, err
	}

	visible := make([]affine.Workspace, 0, len(workspaces))
	for _, ws := range workspaces {
		if guard.IsAllowed(ws.ID) {
			visible = append(visible, ws)
		}
	}

	output, err := formatJSON(visible)
	if err != nil {
		return "", nil, err
	}

	return output, map[string]interface{}{
		"count":  len(visible),
		"hidden": len(workspaces) - len(visible),
	}, nil
}
