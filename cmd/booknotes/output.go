// ABOUTME: Terminal output helpers for booknotes
// ABOUTME: Renders tables with go-pretty, JSON for scripting, and colored status lines

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/2389/booknotes/internal/store"
)

const displayTime = "2006-01-02 15:04"

// maxContentWidth truncates note content in tables.
const maxContentWidth = 60

type bookJSON struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	CreatedAt string `json:"created_at"`
}

type noteJSON struct {
	ID        int64    `json:"id"`
	BookID    int64    `json:"book_id"`
	BookTitle string   `json:"book_title,omitempty"`
	Content   string   `json:"content"`
	CreatedAt string   `json:"created_at"`
	Tags      []string `json:"tags,omitempty"`
}

type tagCountJSON struct {
	Name      string `json:"name"`
	NoteCount int    `json:"note_count"`
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func success(w io.Writer, format string, args ...any) {
	green := color.New(color.FgGreen)
	green.Fprint(w, "✔ ")
	fmt.Fprintf(w, format+"\n", args...)
}

func info(w io.Writer, format string, args ...any) {
	yellow := color.New(color.FgYellow)
	yellow.Fprintf(w, format+"\n", args...)
}

func newTable(w io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	return t
}

func printBooks(w io.Writer, books []*store.Book, asJSON bool) error {
	if asJSON {
		out := make([]bookJSON, 0, len(books))
		for _, b := range books {
			out = append(out, bookJSON{ID: b.ID, Title: b.Title, Author: b.Author, CreatedAt: b.CreatedAt.Format(displayTime)})
		}
		return writeJSON(w, out)
	}

	if len(books) == 0 {
		info(w, "No books found")
		return nil
	}

	t := newTable(w, table.Row{"ID", "Title", "Author", "Added"})
	for _, b := range books {
		t.AppendRow(table.Row{b.ID, b.Title, b.Author, b.CreatedAt.Format(displayTime)})
	}
	t.Render()
	return nil
}

func printNotes(w io.Writer, notes []*store.Note, tags map[int64][]string, asJSON bool) error {
	if asJSON {
		out := make([]noteJSON, 0, len(notes))
		for _, n := range notes {
			out = append(out, noteJSON{ID: n.ID, BookID: n.BookID, Content: n.Content, CreatedAt: n.CreatedAt.Format(displayTime), Tags: tags[n.ID]})
		}
		return writeJSON(w, out)
	}

	if len(notes) == 0 {
		info(w, "No notes yet")
		return nil
	}

	t := newTable(w, table.Row{"#", "ID", "Written", "Note", "Tags"})
	for i, n := range notes {
		t.AppendRow(table.Row{i + 1, n.ID, n.CreatedAt.Format(displayTime), truncate(n.Content), strings.Join(tags[n.ID], ", ")})
	}
	t.Render()
	return nil
}

func printMatches(w io.Writer, matches []*store.NoteMatch, asJSON bool) error {
	if asJSON {
		out := make([]noteJSON, 0, len(matches))
		for _, m := range matches {
			out = append(out, noteJSON{ID: m.Note.ID, BookID: m.Note.BookID, BookTitle: m.BookTitle, Content: m.Note.Content, CreatedAt: m.Note.CreatedAt.Format(displayTime)})
		}
		return writeJSON(w, out)
	}

	if len(matches) == 0 {
		info(w, "No matching notes found")
		return nil
	}

	t := newTable(w, table.Row{"ID", "Book", "Written", "Note"})
	for _, m := range matches {
		t.AppendRow(table.Row{m.Note.ID, m.BookTitle, m.Note.CreatedAt.Format(displayTime), truncate(m.Note.Content)})
	}
	t.Render()
	return nil
}

// truncate shortens s to one line of at most maxContentWidth runes.
func truncate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= maxContentWidth {
		return s
	}
	return string(r[:maxContentWidth-1]) + "…"
}
