// ABOUTME: Store interface and data types for booknotes persistence
// ABOUTME: Defines Book, Note, Tag records and the Store interface for library operations

package store

import (
	"context"
	"time"
)

// Book is a cataloged book. ID and CreatedAt are assigned by the store.
type Book struct {
	ID        int64
	Title     string
	Author    string
	CreatedAt time.Time
}

// Note is free-text content attached to exactly one book.
type Note struct {
	ID        int64
	BookID    int64
	Content   string
	CreatedAt time.Time
}

// Tag labels a single note. Name is stored trimmed.
type Tag struct {
	ID     int64
	NoteID int64
	Name   string
}

// NoteMatch pairs a note with the title of the book that owns it.
type NoteMatch struct {
	Note      *Note
	BookTitle string
}

// TagCount is a distinct tag name and the number of notes carrying it.
type TagCount struct {
	Name  string
	Count int
}

// NoteSearch filters SearchNotes. A nil BookID searches every book.
type NoteSearch struct {
	Query  string
	BookID *int64
}

// Store defines the library persistence operations
type Store interface {
	// Initialize creates the schema if needed. Safe to call repeatedly.
	Initialize(ctx context.Context) error

	// Books
	AddBook(ctx context.Context, title, author string) (*Book, error)
	GetBook(ctx context.Context, id int64) (*Book, error)
	GetBooks(ctx context.Context) ([]*Book, error)
	SearchBooks(ctx context.Context, query string) ([]*Book, error)

	// Notes
	AddNote(ctx context.Context, bookID int64, content string) (*Note, error)
	AddNoteWithTags(ctx context.Context, bookID int64, content string, tags []string) (*Note, error)
	GetNotes(ctx context.Context, bookID int64) ([]*Note, error)
	SearchNotes(ctx context.Context, search NoteSearch) ([]*NoteMatch, error)

	// Tags
	AddTags(ctx context.Context, noteID int64, names []string) error
	GetTags(ctx context.Context, noteID int64) ([]*Tag, error)
	ListTags(ctx context.Context) ([]*TagCount, error)
	NotesByTag(ctx context.Context, name string) ([]*NoteMatch, error)

	// Close releases any resources held by the store
	Close() error
}
