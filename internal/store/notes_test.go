// ABOUTME: Tests for note persistence
// ABOUTME: Covers owner checks, transactional tagging, per-book listing and note search

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddNote(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	book, err := s.AddBook(ctx, "Dune", "Herbert")
	require.NoError(t, err)
	other, err := s.AddBook(ctx, "Emma", "Austen")
	require.NoError(t, err)

	note, err := s.AddNote(ctx, book.ID, "Spice is key")
	require.NoError(t, err)
	assert.Equal(t, int64(1), note.ID)
	assert.Equal(t, book.ID, note.BookID)
	assert.False(t, note.CreatedAt.IsZero())

	notes, err := s.GetNotes(ctx, book.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Spice is key", notes[0].Content)
	assert.Equal(t, note.ID, notes[0].ID)

	notes, err = s.GetNotes(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestAddNote_MissingBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddNote(ctx, 99, "orphan")
	assert.ErrorIs(t, err, ErrNotFound)

	matches, err := s.SearchNotes(ctx, NoteSearch{})
	require.NoError(t, err)
	assert.Empty(t, matches, "no orphan note should be written")
}

func TestAddNote_RequiresContent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	book, err := s.AddBook(ctx, "Dune", "Herbert")
	require.NoError(t, err)

	_, err = s.AddNote(ctx, book.ID, "  ")
	assert.ErrorIs(t, err, ErrConstraintViolation)
}

func TestAddNoteWithTags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	book, err := s.AddBook(ctx, "Dune", "Herbert")
	require.NoError(t, err)

	note, err := s.AddNoteWithTags(ctx, book.ID, "Fear is the mind-killer", []string{" litany ", "fear"})
	require.NoError(t, err)

	tags, err := s.GetTags(ctx, note.ID)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "litany", tags[0].Name)
	assert.Equal(t, "fear", tags[1].Name)
}

func TestAddNoteWithTags_MissingBookWritesNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddNoteWithTags(ctx, 7, "nowhere", []string{"a", "b"})
	require.ErrorIs(t, err, ErrNotFound)

	counts, err := s.ListTags(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestGetNotes_MissingBookIsEmpty(t *testing.T) {
	s := newTestStore(t)

	notes, err := s.GetNotes(context.Background(), 12345)
	require.NoError(t, err)
	assert.NotNil(t, notes)
	assert.Empty(t, notes)
}

func TestSearchNotes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	dune, err := s.AddBook(ctx, "Dune", "Herbert")
	require.NoError(t, err)
	emma, err := s.AddBook(ctx, "Emma", "Austen")
	require.NoError(t, err)

	n1, err := s.AddNote(ctx, dune.ID, "The KEYWORD is spice")
	require.NoError(t, err)
	_, err = s.AddNote(ctx, dune.ID, "Sandworms")
	require.NoError(t, err)
	n3, err := s.AddNote(ctx, emma.ID, "another keyword here")
	require.NoError(t, err)

	t.Run("all books", func(t *testing.T) {
		matches, err := s.SearchNotes(ctx, NoteSearch{Query: "keyword"})
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, n1.ID, matches[0].Note.ID)
		assert.Equal(t, "Dune", matches[0].BookTitle)
		assert.Equal(t, n3.ID, matches[1].Note.ID)
		assert.Equal(t, "Emma", matches[1].BookTitle)
	})

	t.Run("one book", func(t *testing.T) {
		matches, err := s.SearchNotes(ctx, NoteSearch{Query: "keyword", BookID: &emma.ID})
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, n3.ID, matches[0].Note.ID)
		assert.Equal(t, "Emma", matches[0].BookTitle)
	})

	t.Run("no match", func(t *testing.T) {
		matches, err := s.SearchNotes(ctx, NoteSearch{Query: "unicorn"})
		require.NoError(t, err)
		assert.NotNil(t, matches)
		assert.Empty(t, matches)
	})

	t.Run("empty query", func(t *testing.T) {
		matches, err := s.SearchNotes(ctx, NoteSearch{BookID: &dune.ID})
		require.NoError(t, err)
		assert.Len(t, matches, 2)
	})
}

// The end-to-end walkthrough: one book, one tagged note, both searches.
func TestLibraryScenario(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	book, err := s.AddBook(ctx, "Dune", "Herbert")
	require.NoError(t, err)
	require.Equal(t, int64(1), book.ID)

	note, err := s.AddNote(ctx, 1, "Spice is key")
	require.NoError(t, err)
	require.Equal(t, int64(1), note.ID)

	require.NoError(t, s.AddTags(ctx, 1, []string{"scifi", "classic"}))

	notes, err := s.GetNotes(ctx, 1)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Spice is key", notes[0].Content)

	matches, err := s.SearchNotes(ctx, NoteSearch{Query: "spice"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, note.ID, matches[0].Note.ID)
	assert.Equal(t, "Dune", matches[0].BookTitle)

	books, err := s.SearchBooks(ctx, "dune")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, book.ID, books[0].ID)
}
