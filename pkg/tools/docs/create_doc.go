package docs

import (
	"context"
	"encoding/xml"

	"github.com/entrhq/affine-tools/pkg/agent/tools"
)

// CreateDocTool creates a document from markdown.
type CreateDocTool struct {
	baseTool
}

// NewCreateDocTool creates a new CreateDocTool.
func NewCreateDocTool(provider *ClientProvider) *CreateDocTool {
	return &CreateDocTool{baseTool{provider: provider}}
}

// Name returns the tool name.
func (t *CreateDocTool) Name() string {
	return "affine_create_doc"
}

// Label returns the display label.
func (t *CreateDocTool) Label() string {
	return "AFFiNE: Create Doc"
}

// Description returns the tool description.
func (t *CreateDocTool) Description() string {
	return "Create a new AFFiNE document from markdown. Returns the new document ID."
}

// Schema returns the JSON schema for the tool's input parameters.
func (t *CreateDocTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"workspaceId": workspaceIDProperty,
			"title":       tools.StringProperty("The document title"),
			"markdown":    tools.StringProperty("The markdown content for the document body"),
		},
		[]string{"workspaceId", "title", "markdown"},
	)
}

// Execute creates the document. The markdown element may be empty but must be present.
func (t *CreateDocTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input struct {
		XMLName     xml.Name `xml:"arguments"`
		WorkspaceID string   `xml:"workspaceId"`
		Title       string   `xml:"title"`
		Markdown    *string  `xml:"markdown"`
	}
	if err := decodeArgs(argsXML, &input); err != nil {
		return "", nil, err
	}

	wsID := input.WorkspaceID
	if err := required("workspaceId", trim(wsID), "title", trim(input.Title), "markdown", present(input.Markdown)); err != nil {
		return "", nil, err
	}

	client, _, err := t.connect(wsID)
	if err != nil {
		return "", nil, err
	}

	result, err := client.CreateDoc(ctx, wsID, input.Title, *input.Markdown)
	if err != nil {
		return "", nil, err
	}

	output, err := formatJSON(result)
	if err != nil {
		return "", nil, err
	}

	return output, map[string]interface{}{
		"workspace_id": wsID,
		"doc_id":       result.DocID,
		"title":        input.Title,
	}, nil
}
