// ABOUTME: book subcommands: add, list, search and show
// ABOUTME: Thin wrappers over the store that render tables or JSON

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/2389/booknotes/internal/store"
)

func newBookCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Manage books in the library",
	}
	cmd.AddCommand(
		newBookAddCmd(a),
		newBookListCmd(a),
		newBookSearchCmd(a),
		newBookShowCmd(a),
	)
	return cmd
}

func newBookAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title> <author>",
		Short: "Add a book",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, s store.Store) error {
				book, err := s.AddBook(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				a.logger.Debug("book added", "id", book.ID)
				if a.jsonOut {
					return printBooks(a.out, []*store.Book{book}, true)
				}
				success(a.out, "Added %q by %s (id %d)", book.Title, book.Author, book.ID)
				return nil
			})
		},
	}
}

func newBookListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List every book in the order it was added",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, s store.Store) error {
				books, err := s.GetBooks(ctx)
				if err != nil {
					return err
				}
				return printBooks(a.out, books, a.jsonOut)
			})
		},
	}
}

func newBookSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find books whose title or author contains the query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return a.withStore(cmd, func(ctx context.Context, s store.Store) error {
				books, err := s.SearchBooks(ctx, query)
				if err != nil {
					return err
				}
				return printBooks(a.out, books, a.jsonOut)
			})
		},
	}
}

func newBookShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <book-id>",
		Short: "Show a book with its notes and tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("book", args[0])
			if err != nil {
				return err
			}
			return a.withStore(cmd, func(ctx context.Context, s store.Store) error {
				book, err := s.GetBook(ctx, id)
				if err != nil {
					return err
				}
				notes, err := s.GetNotes(ctx, id)
				if err != nil {
					return err
				}
				tags, err := tagNames(ctx, s, notes)
				if err != nil {
					return err
				}

				if !a.jsonOut {
					fmt.Fprintf(a.out, "%s\nby %s\n\n", book.Title, book.Author)
				}
				return printNotes(a.out, notes, tags, a.jsonOut)
			})
		},
	}
}

// tagNames collects the tag names of each note keyed by note id.
func tagNames(ctx context.Context, s store.Store, notes []*store.Note) (map[int64][]string, error) {
	out := make(map[int64][]string, len(notes))
	for _, n := range notes {
		tags, err := s.GetTags(ctx, n.ID)
		if err != nil {
			return nil, err
		}
		for _, t := range tags {
			out[n.ID] = append(out[n.ID], t.Name)
		}
	}
	return out, nil
}
