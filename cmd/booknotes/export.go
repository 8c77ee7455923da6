// ABOUTME: export subcommand rendering a book and its notes as Markdown or HTML
// ABOUTME: Writes to stdout unless --out names a file

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/2389/booknotes/internal/export"
	"github.com/2389/booknotes/internal/store"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		format  string
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "export <book-id>",
		Short: "Export a book and its notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID("book", args[0])
			if err != nil {
				return err
			}
			return a.withStore(cmd, func(ctx context.Context, s store.Store) error {
				doc, err := export.Load(ctx, s, bookID)
				if err != nil {
					return err
				}

				if outPath == "" {
					return export.Write(a.out, doc, format)
				}

				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("creating %s: %w", outPath, err)
				}
				if err := export.Write(f, doc, format); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("closing %s: %w", outPath, err)
				}
				success(a.errOut, "Exported %q to %s", doc.Book.Title, outPath)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "md", "output format: md or html")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write to this file instead of stdout")
	return cmd
}
