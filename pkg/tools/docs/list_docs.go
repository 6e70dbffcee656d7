package docs

import (
	"context"
	"encoding/xml"

	"github.com/entrhq/affine-tools/pkg/affine"
	"github.com/entrhq/affine-tools/pkg/agent/tools"
)

// ListDocsTool lists documents in a workspace.
type ListDocsTool struct {
	baseTool
}

// NewListDocsTool creates a new ListDocsTool.
func NewListDocsTool(provider *ClientProvider) *ListDocsTool {
	return &ListDocsTool{baseTool{provider: provider}}
}

// Name returns the tool name.
func (t *ListDocsTool) Name() string {
	return "affine_list_docs"
}

// Label returns the display label.
func (t *ListDocsTool) Label() string {
	return "AFFiNE: List Docs"
}

// Description returns the tool description.
func (t *ListDocsTool) Description() string {
	return "List documents in an AFFiNE workspace with titles and summaries."
}

// Schema returns the JSON schema for the tool's input parameters.
func (t *ListDocsTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"workspaceId": workspaceIDProperty,
		},
		[]string{"workspaceId"},
	)
}

// Execute lists the documents of one workspace.
func (t *ListDocsTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input struct {
		XMLName     xml.Name `xml:"arguments"`
		WorkspaceID string   `xml:"workspaceId"`
	}
	if err := decodeArgs(argsXML, &input); err != nil {
		return "", nil, err
	}

	wsID := input.WorkspaceID
	if err := required("workspaceId", trim(wsID)); err != nil {
		return "", nil, err
	}

	client, _, err := t.connect(wsID)
	if err != nil {
		return "", nil, err
	}

	docs, err := client.ListDocs(ctx, wsID)
	if err != nil {
		return "", nil, err
	}
	if docs == nil {
		docs = []affine.DocSummary{}
	}

	output, err := formatJSON(docs)
	if err != nil {
		return "", nil, err
	}

	return output, map[string]interface{}{
		"workspace_id": wsID,
		"count":        len(docs),
	}, nil
}
