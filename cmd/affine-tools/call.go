package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/entrhq/affine-tools/pkg/agent/tools"
)

func newCallCmd(a *app) *cobra.Command {
	var rawArgs []string

	cmd := &cobra.Command{
		Use:   "call <tool>",
		Short: "Run a single tool",
		Long: `Run a single tool and print its result.

Arguments are passed as --arg key=value. A value starting with @ is read
from the named file, e.g. --arg markdown=@notes.md.`,
		Example: `  affine-tools call affine_list_docs --arg workspaceId=ws-1`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseArgPairs(rawArgs)
			if err != nil {
				return err
			}

			argsXML, err := tools.BuildArgumentsXML(values)
			if err != nil {
				return err
			}

			call := &tools.ToolCall{ToolName: args[0], ServerName: "local"}
			call.Arguments.InnerXML = innerArguments(argsXML)

			result, err := a.registry.Execute(cmd.Context(), call)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.Output)
			a.logger.Debugf("%s finished: %v", result.ToolName, result.Metadata)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&rawArgs, "arg", nil, "Tool argument as key=value (repeatable)")
	return cmd
}

// parseArgPairs splits key=value pairs and expands @file values.
func parseArgPairs(pairs []string) (map[string]string, error) {
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --arg %q: want key=value", pair)
		}
		if path, isFile := strings.CutPrefix(value, "@"); isFile {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read --arg %s: %w", key, err)
			}
			value = string(data)
		}
		values[key] = value
	}
	return values, nil
}

// innerArguments strips the <arguments> wrapper produced by BuildArgumentsXML.
func innerArguments(argsXML []byte) []byte {
	s := strings.TrimPrefix(string(argsXML), "<arguments>")
	s = strings.TrimSuffix(s, "</arguments>")
	return []byte(s)
}
