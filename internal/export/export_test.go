package export

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/booknotes/internal/store"
)

func seedDocument(t *testing.T) (*store.MockStore, int64) {
	t.Helper()
	s := store.NewMockStore()
	ctx := context.Background()

	book, err := s.AddBook(ctx, "Dune", "Frank Herbert")
	require.NoError(t, err)
	_, err = s.AddNoteWithTags(ctx, book.ID, "Spice is **key**", []string{"scifi", "", "classic"})
	require.NoError(t, err)
	_, err = s.AddNote(ctx, book.ID, "<script>alert(1)</script> plain")
	require.NoError(t, err)
	return s, book.ID
}

func TestLoad(t *testing.T) {
	s, bookID := seedDocument(t)

	doc, err := Load(context.Background(), s, bookID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", doc.Book.Title)
	require.Len(t, doc.Notes, 2)
	assert.Equal(t, []string{"scifi", "classic"}, doc.Notes[0].Tags)
	assert.Empty(t, doc.Notes[1].Tags)
}

func TestLoad_MissingBook(t *testing.T) {
	_, err := Load(context.Background(), store.NewMockStore(), 9)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMarkdown(t *testing.T) {
	s, bookID := seedDocument(t)
	doc, err := Load(context.Background(), s, bookID)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, doc, FormatMarkdown))

	out := buf.String()
	assert.Contains(t, out, "# Dune\n")
	assert.Contains(t, out, "*by Frank Herbert*")
	assert.Contains(t, out, "## Note 1 - ")
	assert.Contains(t, out, "Spice is **key**")
	assert.Contains(t, out, "Tags: `scifi`, `classic`")
	assert.Contains(t, out, "## Note 2 - ")
}

func TestMarkdown_NoNotes(t *testing.T) {
	doc := &Document{Book: &store.Book{ID: 1, Title: "Emma", Author: "Austen"}}

	var buf bytes.Buffer
	require.NoError(t, Markdown(&buf, doc))
	assert.Contains(t, buf.String(), "No notes yet.")
}

func TestHTML(t *testing.T) {
	s, bookID := seedDocument(t)
	doc, err := Load(context.Background(), s, bookID)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, doc, FormatHTML))

	out := buf.String()
	assert.Contains(t, out, "<title>Dune</title>")
	assert.Contains(t, out, "<h1>Dune</h1>")
	assert.Contains(t, out, "<strong>key</strong>")
	assert.Contains(t, out, "<code>scifi</code>")
	assert.NotContains(t, out, "<script>", "raw HTML in notes must not pass through")
}

func TestWrite_UnsupportedFormat(t *testing.T) {
	doc := &Document{Book: &store.Book{Title: "x", Author: "y"}}
	err := Write(&bytes.Buffer{}, doc, "pdf")
	assert.Error(t, err)
}
