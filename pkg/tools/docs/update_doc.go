package docs

import (
	"context"
	"encoding/xml"

	"github.com/entrhq/affine-tools/pkg/agent/tools"
)

// UpdateDocTool replaces a document body with new markdown.
type UpdateDocTool struct {
	baseTool
}

// NewUpdateDocTool creates a new UpdateDocTool.
func NewUpdateDocTool(provider *ClientProvider) *UpdateDocTool {
	return &UpdateDocTool{baseTool{provider: provider}}
}

// Name returns the tool name.
func (t *UpdateDocTool) Name() string {
	return "affine_update_doc"
}

// Label returns the display label.
func (t *UpdateDocTool) Label() string {
	return "AFFiNE: Update Doc"
}

// Description returns the tool description.
func (t *UpdateDocTool) Description() string {
	return "Update an AFFiNE document's content from markdown. The markdown replaces the whole document body; " +
		"the server diffs it structurally so only modified blocks change."
}

// Schema returns the JSON schema for the tool's input parameters.
func (t *UpdateDocTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"workspaceId": workspaceIDProperty,
			"docId":       docIDProperty,
			"markdown":    tools.StringProperty("The new markdown content for the document body"),
		},
		[]string{"workspaceId", "docId", "markdown"},
	)
}

// Execute replaces the document body. An empty markdown element clears the
// document; an absent one is rejected.
func (t *UpdateDocTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input struct {
		XMLName     xml.Name `xml:"arguments"`
		WorkspaceID string   `xml:"workspaceId"`
		DocID       string   `xml:"docId"`
		Markdown    *string  `xml:"markdown"`
	}
	if err := decodeArgs(argsXML, &input); err != nil {
		return "", nil, err
	}

	wsID, docID := input.WorkspaceID, input.DocID
	if err := required("workspaceId", trim(wsID), "docId", trim(docID), "markdown", present(input.Markdown)); err != nil {
		return "", nil, err
	}

	client, _, err := t.connect(wsID)
	if err != nil {
		return "", nil, err
	}

	result, err := client.UpdateDoc(ctx, wsID, docID, *input.Markdown)
	if err != nil {
		return "", nil, err
	}

	output, err := formatJSON(result)
	if err != nil {
		return "", nil, err
	}

	return output, map[string]interface{}{
		"workspace_id":   wsID,
		"doc_id":         docID,
		"success":        result.Success,
		"markdown_bytes": len(*input.Markdown),
	}, nil
}

// present maps a decoded optional element to a non-empty marker when the
// element appeared at all, so required treats "" as supplied.
func present(s *string) string {
	if s == nil {
		return ""
	}
	return "present"
}
