// ABOUTME: Tests for tag persistence
// ABOUTME: Covers trimming, ordering, owner checks, tag counts and retrieval by tag

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddTags_TrimsAndKeepsOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	book, err := s.AddBook(ctx, "Dune", "Herbert")
	require.NoError(t, err)
	note, err := s.AddNote(ctx, book.ID, "Spice")
	require.NoError(t, err)

	require.NoError(t, s.AddTags(ctx, note.ID, []string{"x", " y ", "z"}))

	tags, err := s.GetTags(ctx, note.ID)
	require.NoError(t, err)

	var names []string
	for _, tag := range tags {
		assert.Equal(t, note.ID, tag.NoteID)
		names = append(names, tag.Name)
	}
	assert.Equal(t, []string{"x", "y", "z"}, names)
}

func TestAddTags_EmptyIsNoop(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// No owner check either: nothing is written
	require.NoError(t, s.AddTags(ctx, 404, nil))
	require.NoError(t, s.AddTags(ctx, 404, []string{}))
}

func TestAddTags_BlankNameIsStored(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	book, err := s.AddBook(ctx, "Dune", "Herbert")
	require.NoError(t, err)
	note, err := s.AddNote(ctx, book.ID, "Spice")
	require.NoError(t, err)

	require.NoError(t, s.AddTags(ctx, note.ID, []string{"  "}))

	tags, err := s.GetTags(ctx, note.ID)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "", tags[0].Name)
}

func TestAddTags_MissingNote(t *testing.T) {
	s := newTestStore(t)

	err := s.AddTags(context.Background(), 5, []string{"orphan"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListTagsAndNotesByTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	dune, err := s.AddBook(ctx, "Dune", "Herbert")
	require.NoError(t, err)
	emma, err := s.AddBook(ctx, "Emma", "Austen")
	require.NoError(t, err)

	n1, err := s.AddNoteWithTags(ctx, dune.ID, "Spice", []string{"scifi", "classic"})
	require.NoError(t, err)
	n2, err := s.AddNoteWithTags(ctx, emma.ID, "Highbury", []string{"classic", "classic"})
	require.NoError(t, err)
	_, err = s.AddNoteWithTags(ctx, dune.ID, "Worms", nil)
	require.NoError(t, err)

	counts, err := s.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, TagCount{Name: "classic", Count: 2}, *counts[0])
	assert.Equal(t, TagCount{Name: "scifi", Count: 1}, *counts[1])

	matches, err := s.NotesByTag(ctx, " classic ")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, n1.ID, matches[0].Note.ID)
	assert.Equal(t, "Dune", matches[0].BookTitle)
	assert.Equal(t, n2.ID, matches[1].Note.ID)
	assert.Equal(t, "Emma", matches[1].BookTitle)

	matches, err = s.NotesByTag(ctx, "Classic")
	require.NoError(t, err)
	assert.Empty(t, matches, "tag lookup is exact")
}
