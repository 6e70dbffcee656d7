package docs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/entrhq/affine-tools/pkg/affine"
	"github.com/entrhq/affine-tools/pkg/agent/tools"
)

// baseTool carries what every AFFiNE tool shares.
type baseTool struct {
	provider *ClientProvider
}

// connect returns the client once the workspace passes the guard.
// An empty workspaceID skips the guard.
func (b baseTool) connect(workspaceID string) (*affine.Client, *WorkspaceGuard, error) {
	client, guard, err := b.provider.Get()
	if err != nil {
		return nil, nil, err
	}
	if workspaceID != "" {
		if err := guard.Check(workspaceID); err != nil {
			return nil, nil, err
		}
	}
	return client, guard, nil
}

// decodeArgs unmarshals the <arguments> block. An empty block leaves v untouched.
func decodeArgs(argsXML []byte, v interface{}) error {
	if len(bytes.TrimSpace(argsXML)) == 0 {
		return nil
	}
	if err := tools.UnmarshalXMLWithFallback(argsXML, v); err != nil {
		return &ValidationError{Message: fmt.Sprintf("invalid arguments: %v", err)}
	}
	return nil
}

// formatJSON renders a result the way the tools report it: indented JSON.
func formatJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	return string(data), nil
}

// trim is used for emptiness checks only; IDs reach the server as given.
func trim(s string) string {
	return strings.TrimSpace(s)
}

var (
	workspaceIDProperty = tools.StringProperty("The workspace ID")
	docIDProperty       = tools.StringProperty("The document ID")
)
