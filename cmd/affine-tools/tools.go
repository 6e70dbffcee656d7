package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/entrhq/affine-tools/pkg/agent/tools"
)

type toolInfo struct {
	Name        string                 `json:"name"`
	Label       string                 `json:"label,omitempty"`
	Description string                 `json:"description"`
	Schema      map[string]interface{} `json:"schema"`
}

func newToolsCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the available tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := describeTools(a.registry.List())
			out := cmd.OutOrStdout()

			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(infos)
			}

			fmt.Fprintln(out, headerStyle.Render("AFFiNE tools"))
			for _, info := range infos {
				fmt.Fprintln(out)
				fmt.Fprintf(out, "%s  %s\n", toolNameStyle.Render(info.Name), labelStyle.Render(info.Label))
				fmt.Fprintln(out, descriptionStyle.Render(info.Description))
				if params := paramSummary(info.Schema); params != "" {
					fmt.Fprintln(out, paramStyle.Render(params))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print tool definitions with JSON schemas")
	return cmd
}

func describeTools(list []tools.Tool) []toolInfo {
	infos := make([]toolInfo, 0, len(list))
	for _, tool := range list {
		info := toolInfo{
			Name:        tool.Name(),
			Description: tool.Description(),
			Schema:      tool.Schema(),
		}
		if labeled, ok := tool.(tools.Labeled); ok {
			info.Label = labeled.Label()
		}
		infos = append(infos, info)
	}
	return infos
}

// paramSummary renders "params: a*, b" with required parameters starred.
func paramSummary(schema map[string]interface{}) string {
	props, _ := schema["properties"].(map[string]interface{})
	if len(props) == 0 {
		return ""
	}

	required := map[string]bool{}
	if list, ok := schema["required"].([]string); ok {
		for _, name := range list {
			required[name] = true
		}
	}

	names := make([]string, 0, len(props))
	for name := range props {
		if required[name] {
			name += "*"
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return "params: " + strings.Join(names, ", ")
}
