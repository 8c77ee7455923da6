// ABOUTME: Renders a book and its notes as Markdown or HTML
// ABOUTME: Note content is treated as Markdown and converted with goldmark

package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/2389/booknotes/internal/store"
)

// Format names accepted by Write.
const (
	FormatMarkdown = "md"
	FormatHTML     = "html"
)

const timeLayout = "2006-01-02 15:04"

// Document is a book with its notes and their tags.
type Document struct {
	Book  *store.Book
	Notes []NoteWithTags
}

// NoteWithTags is a note and the names of its tags.
type NoteWithTags struct {
	Note *store.Note
	Tags []string
}

// Load collects a book, its notes and their tags from s.
func Load(ctx context.Context, s store.Store, bookID int64) (*Document, error) {
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	notes, err := s.GetNotes(ctx, bookID)
	if err != nil {
		return nil, err
	}

	doc := &Document{Book: book, Notes: make([]NoteWithTags, 0, len(notes))}
	for _, n := range notes {
		tags, err := s.GetTags(ctx, n.ID)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(tags))
		for _, t := range tags {
			if t.Name != "" {
				names = append(names, t.Name)
			}
		}
		doc.Notes = append(doc.Notes, NoteWithTags{Note: n, Tags: names})
	}
	return doc, nil
}

// Write renders doc in the given format.
func Write(w io.Writer, doc *Document, format string) error {
	switch format {
	case FormatMarkdown, "markdown", "":
		return Markdown(w, doc)
	case FormatHTML:
		return HTML(w, doc)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// Markdown writes doc as a Markdown document.
func Markdown(w io.Writer, doc *Document) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", doc.Book.Title)
	fmt.Fprintf(&b, "*by %s*\n", doc.Book.Author)

	if len(doc.Notes) == 0 {
		b.WriteString("\nNo notes yet.\n")
	}

	for i, n := range doc.Notes {
		fmt.Fprintf(&b, "\n## Note %d - %s\n\n", i+1, n.Note.CreatedAt.Format(timeLayout))
		b.WriteString(strings.TrimSpace(n.Note.Content))
		b.WriteString("\n")
		if len(n.Tags) > 0 {
			quoted := make([]string, len(n.Tags))
			for j, t := range n.Tags {
				quoted[j] = "`" + t + "`"
			}
			fmt.Fprintf(&b, "\nTags: %s\n", strings.Join(quoted, ", "))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// HTML writes doc as a standalone HTML page.
func HTML(w io.Writer, doc *Document) error {
	var src bytes.Buffer
	if err := Markdown(&src, doc); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := markdown.Convert(src.Bytes(), &body); err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}

	_, err := fmt.Fprintf(w, htmlPage, htmlEscaper.Replace(doc.Book.Title), body.String())
	return err
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&#34;")

const htmlPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s</body>
</html>
`
