// ABOUTME: note subcommands: add, list and search
// ABOUTME: note add accepts --tags so a note and its tags are written together

package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/2389/booknotes/internal/store"
)

func newNoteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Write and search notes about books",
	}
	cmd.AddCommand(
		newNoteAddCmd(a),
		newNoteListCmd(a),
		newNoteSearchCmd(a),
	)
	return cmd
}

func newNoteAddCmd(a *app) *cobra.Command {
	var tags string

	cmd := &cobra.Command{
		Use:   "add <book-id> <content>",
		Short: "Add a note to a book",
		Example: `  booknotes note add 1 "The spice must flow" --tags scifi,quotes`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID("book", args[0])
			if err != nil {
				return err
			}
			content := strings.Join(args[1:], " ")
			tagList := splitTags(tags)

			return a.withStore(cmd, func(ctx context.Context, s store.Store) error {
				note, err := s.AddNoteWithTags(ctx, bookID, content, tagList)
				if err != nil {
					return err
				}
				a.logger.Debug("note added", "id", note.ID, "book_id", bookID, "tags", len(tagList))
				if a.jsonOut {
					return printNotes(a.out, []*store.Note{note}, map[int64][]string{note.ID: tagList}, true)
				}
				success(a.out, "Added note %d to book %d", note.ID, bookID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&tags, "tags", "t", "", "comma-separated tags")
	return cmd
}

func newNoteListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list <book-id>",
		Aliases: []string{"ls"},
		Short:   "List the notes of a book, oldest first",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID("book", args[0])
			if err != nil {
				return err
			}
			return a.withStore(cmd, func(ctx context.Context, s store.Store) error {
				notes, err := s.GetNotes(ctx, bookID)
				if err != nil {
					return err
				}
				tags, err := tagNames(ctx, s, notes)
				if err != nil {
					return err
				}
				return printNotes(a.out, notes, tags, a.jsonOut)
			})
		},
	}
}

func newNoteSearchCmd(a *app) *cobra.Command {
	var bookID int64

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find notes containing the query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			search := store.NoteSearch{Query: strings.Join(args, " ")}
			if cmd.Flags().Changed("book") {
				search.BookID = &bookID
			}
			return a.withStore(cmd, func(ctx context.Context, s store.Store) error {
				matches, err := s.SearchNotes(ctx, search)
				if err != nil {
					return err
				}
				return printMatches(a.out, matches, a.jsonOut)
			})
		},
	}
	cmd.Flags().Int64VarP(&bookID, "book", "b", 0, "only search notes of this book")
	return cmd
}
