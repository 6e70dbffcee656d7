package docs

import (
	"context"
	"encoding/xml"

	"github.com/entrhq/affine-tools/pkg/agent/tools"
)

// ReadDocTool returns a document as markdown.
type ReadDocTool struct {
	baseTool
}

// NewReadDocTool creates a new ReadDocTool.
func NewReadDocTool(provider *ClientProvider) *ReadDocTool {
	return &ReadDocTool{baseTool{provider: provider}}
}

// Name returns the tool name.
func (t *ReadDocTool) Name() string {
	return "affine_read_doc"
}

// Label returns the display label.
func (t *ReadDocTool) Label() string {
	return "AFFiNE: Read Doc"
}

// Description returns the tool description.
func (t *ReadDocTool) Description() string {
	return "Read an AFFiNE document's full content as markdown. Returns title and markdown body."
}

// Schema returns the JSON schema for the tool's input parameters.
func (t *ReadDocTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"workspaceId": workspaceIDProperty,
			"docId":       docIDProperty,
		},
		[]string{"workspaceId", "docId"},
	)
}

// Execute reads the document.
func (t *ReadDocTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input struct {
		XMLName     xml.Name `xml:"arguments"`
		WorkspaceID string   `xml:"workspaceId"`
		DocID       string   `xml:"docId"`
	}
	if err := decodeArgs(argsXML, &input); err != nil {
		return "", nil, err
	}

	wsID, docID := input.WorkspaceID, input.DocID
	if err := required("workspaceId", trim(wsID), "docId", trim(docID)); err != nil {
		return "", nil, err
	}

	client, _, err := t.connect(wsID)
	if err != nil {
		return "", nil, err
	}

	doc, err := client.ReadDoc(ctx, wsID, docID)
	if err != nil {
		return "", nil, err
	}

	output, err := formatJSON(doc)
	if err != nil {
		return "", nil, err
	}

	return output, map[string]interface{}{
		"workspace_id":   wsID,
		"doc_id":         docID,
		"title":          doc.Title,
		"markdown_bytes": len(doc.Markdown),
	}, nil
}
