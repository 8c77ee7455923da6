// ABOUTME: tag subcommands: add, list, show and notes
// ABOUTME: Tags label notes and can be browsed across the whole library

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/2389/booknotes/internal/store"
)

func newTagCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Label notes with tags",
	}
	cmd.AddCommand(
		newTagAddCmd(a),
		newTagListCmd(a),
		newTagShowCmd(a),
		newTagNotesCmd(a),
	)
	return cmd
}

func newTagAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <note-id> <tag> [tag...]",
		Short: "Attach tags to a note",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			noteID, err := parseID("note", args[0])
			if err != nil {
				return err
			}
			var names []string
			for _, arg := range args[1:] {
				names = append(names, splitTags(arg)...)
			}
			if len(names) == 0 {
				return fmt.Errorf("no tag names given")
			}

			return a.withStore(cmd, func(ctx context.Context, s store.Store) error {
				if err := s.AddTags(ctx, noteID, names); err != nil {
					return err
				}
				if a.jsonOut {
					return writeJSON(a.out, map[string]any{"note_id": noteID, "tags": names})
				}
				success(a.out, "Tagged note %d with %s", noteID, strings.Join(names, ", "))
				return nil
			})
		},
	}
}

func newTagListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List every tag with the number of notes carrying it",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, s store.Store) error {
				counts, err := s.ListTags(ctx)
				if err != nil {
					return err
				}
				if a.jsonOut {
					out := make([]tagCountJSON, 0, len(counts))
					for _, c := range counts {
						out = append(out, tagCountJSON{Name: c.Name, NoteCount: c.Count})
					}
					return writeJSON(a.out, out)
				}
				if len(counts) == 0 {
					info(a.out, "No tags yet")
					return nil
				}
				t := newTable(a.out, table.Row{"Tag", "Notes"})
				for _, c := range counts {
					t.AppendRow(table.Row{c.Name, c.Count})
				}
				t.Render()
				return nil
			})
		},
	}
}

func newTagShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <note-id>",
		Short: "Show the tags of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			noteID, err := parseID("note", args[0])
			if err != nil {
				return err
			}
			return a.withStore(cmd, func(ctx context.Context, s store.Store) error {
				tags, err := s.GetTags(ctx, noteID)
				if err != nil {
					return err
				}
				names := make([]string, 0, len(tags))
				for _, t := range tags {
					names = append(names, t.Name)
				}
				if a.jsonOut {
					return writeJSON(a.out, names)
				}
				if len(names) == 0 {
					info(a.out, "Note %d has no tags", noteID)
					return nil
				}
				for _, n := range names {
					fmt.Fprintln(a.out, n)
				}
				return nil
			})
		},
	}
}

func newTagNotesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "notes <tag>",
		Short: "List the notes carrying a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, s store.Store) error {
				matches, err := s.NotesByTag(ctx, args[0])
				if err != nil {
					return err
				}
				return printMatches(a.out, matches, a.jsonOut)
			})
		},
	}
}
