package main

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

func newReadCmd(a *app) *cobra.Command {
	var (
		render   bool
		copyDoc  bool
		wordWrap int
	)

	cmd := &cobra.Command{
		Use:   "read <workspaceId> <docId>",
		Short: "Print a document as markdown",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, guard, err := a.provider.Get()
			if err != nil {
				return err
			}
			if err := guard.Check(args[0]); err != nil {
				return err
			}

			doc, err := client.ReadDoc(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			if copyDoc {
				if err := clipboard.WriteAll(doc.Markdown); err != nil {
					return fmt.Errorf("copy to clipboard: %w", err)
				}
				a.logger.Infof("copied %s (%d bytes) to clipboard", args[1], len(doc.Markdown))
			}

			out := cmd.OutOrStdout()
			if !render {
				fmt.Fprintln(out, doc.Markdown)
				return nil
			}

			rendered, err := renderMarkdown(doc.Title, doc.Markdown, wordWrap)
			if err != nil {
				return err
			}
			fmt.Fprint(out, rendered)
			return nil
		},
	}

	cmd.Flags().BoolVar(&render, "render", false, "Render markdown for the terminal")
	cmd.Flags().BoolVar(&copyDoc, "copy", false, "Copy the markdown to the clipboard")
	cmd.Flags().IntVar(&wordWrap, "width", 100, "Word wrap width for --render")
	return cmd
}

func renderMarkdown(title, markdown string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}

	source := markdown
	if title != "" {
		source = "# " + title + "\n\n" + markdown
	}

	out, err := r.Render(source)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
