package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ormasoftchile/ucrepl/pkg/render"
	"github.com/ormasoftchile/ucrepl/pkg/repl"
	"github.com/ormasoftchile/ucrepl/pkg/tui"
)

// --- describe ---

func newDescribeCmd(a *app) *cobra.Command {
	var (
		format string
		raw    bool
	)
	cmd := &cobra.Command{
		Use:   "describe [catalog.yaml] <use-case>",
		Short: "Print the execution plan of a use case",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[len(args)-1]
			path, err := a.catalogPath(args[:len(args)-1])
			if err != nil {
				return err
			}
			c, entries, err := a.loadCatalog(path)
			if err != nil {
				return err
			}
			idx := -1
			for i, n := range c.Names() {
				if n == name {
					idx = i
					break
				}
			}
			if idx < 0 {
				return errors.WithHint(errors.Newf("use case %q not found in %s", name, path),
					"run ucrepl list to see the available use cases")
			}
			doc := entries[idx].UseCase.Doc()
			out := cmd.OutOrStdout()

			switch render.Format(format) {
			case render.FormatText, "":
				return render.Write(out, doc, tui.ThemeFor(a.cfg.NoColor))
			case render.FormatMarkdown:
				md := render.Markdown(doc)
				if !raw && !a.cfg.NoColor {
					md = tui.RenderMarkdown(md, 0)
				}
				_, err := fmt.Fprintln(out, md)
				return err
			default:
				s, err := render.Generate(doc, render.Format(format))
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(out, s)
				return err
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, markdown or mermaid")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print markdown source instead of rendering it")
	return cmd
}

// --- list ---

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [catalog.yaml]",
		Short: "List the menu labels of a catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.catalogPath(args)
			if err != nil {
				return err
			}
			c, entries, err := a.loadCatalog(path)
			if err != nil {
				return err
			}
			names := c.Names()
			for i, choice := range repl.Choices(entries, a.cfg.GroupBy) {
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s\n", names[i], choice.Label)
			}
			return nil
		},
	}
}
