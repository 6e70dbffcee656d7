package main

import (
	"bufio"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/entrhq/affine-tools/pkg/agent/tools"
)

const maxLineSize = 10 * 1024 * 1024

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Execute tool calls read from stdin",
		Long: `Read <tool>...</tool> calls from stdin and write one <tool_result>
envelope per call to stdout. Calls run in the order they arrive; text
outside tool elements is ignored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// serve buffers input until it holds at least one complete tool element,
// answers every complete element in order (malformed ones get an error
// envelope), and keeps any trailing partial text.
func (a *app) serve(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var pending strings.Builder
	for scanner.Scan() {
		pending.WriteString(scanner.Text())
		pending.WriteByte('\n')

		text := pending.String()
		results, end := tools.ScanToolCalls(text)
		if end == 0 {
			continue
		}

		for _, parsed := range results {
			var err error
			if parsed.Err != nil {
				a.logger.Warnf("malformed tool call: %v", parsed.Err)
				err = writeEnvelope(out, "", "", parsed.Err)
			} else {
				err = a.respond(ctx, out, parsed.Call)
			}
			if err != nil {
				return err
			}
		}

		pending.Reset()
		pending.WriteString(text[end:])
	}
	return scanner.Err()
}

func (a *app) respond(ctx context.Context, out io.Writer, call *tools.ToolCall) error {
	a.logger.Debugf("serving %s", call.ToolName)

	result, err := a.registry.Execute(ctx, call)
	if err != nil {
		a.logger.Warnf("%s failed: %v", call.ToolName, err)
		return writeEnvelope(out, call.ToolName, "", err)
	}
	return writeEnvelope(out, call.ToolName, result.Output, nil)
}

func writeEnvelope(out io.Writer, toolName, output string, callErr error) error {
	status := "success"
	if callErr != nil {
		status = "error"
		output = callErr.Error()
	}

	var b strings.Builder
	b.WriteString("<tool_result>\n")
	if toolName != "" {
		b.WriteString("<tool_name>")
		xml.EscapeText(&b, []byte(toolName))
		b.WriteString("</tool_name>\n")
	}
	fmt.Fprintf(&b, "<status>%s</status>\n", status)
	b.WriteString("<output>")
	xml.EscapeText(&b, []byte(output))
	b.WriteString("</output>\n</tool_result>\n")

	_, err := io.WriteString(out, b.String())
	return err
}
