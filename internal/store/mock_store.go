// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite

package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MockStore is an in-memory Store implementation for testing.
// It follows the same ordering and error rules as SQLiteStore.
type MockStore struct {
	mu     sync.RWMutex
	books  []*Book
	notes  []*Note
	tags   []*Tag
	nextID struct{ book, note, tag int64 }
	err    error
	closed bool
}

// Ensure MockStore implements Store.
var _ Store = (*MockStore)(nil)

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{}
}

// SetError makes every subsequent call fail with err. Pass nil to clear it.
func (m *MockStore) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Initialize is a no-op.
func (m *MockStore) Initialize(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}

// AddBook stores a new book.
func (m *MockStore) AddBook(ctx context.Context, title, author string) (*Book, error) {
	if err := requireText("title", title); err != nil {
		return nil, err
	}
	if err := requireText("author", author); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}

	m.nextID.book++
	b := &Book{ID: m.nextID.book, Title: title, Author: author, CreatedAt: now()}
	m.books = append(m.books, b)

	// Return a copy
	result := *b
	return &result, nil
}

// GetBook retrieves a book by ID.
func (m *MockStore) GetBook(ctx context.Context, id int64) (*Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}

	b := m.findBook(id)
	if b == nil {
		return nil, fmt.Errorf("book %d: %w", id, ErrNotFound)
	}
	result := *b
	return &result, nil
}

// GetBooks lists all books in identity order.
func (m *MockStore) GetBooks(ctx context.Context) ([]*Book, error) {
	return m.SearchBooks(ctx, "")
}

// SearchBooks matches title or author case-insensitively.
func (m *MockStore) SearchBooks(ctx context.Context, query string) ([]*Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}

	result := []*Book{}
	for _, b := range m.books {
		if containsFold(b.Title, query) || containsFold(b.Author, query) {
			c := *b
			result = append(result, &c)
		}
	}
	return result, nil
}

// AddNote stores a note under an existing book.
func (m *MockStore) AddNote(ctx context.Context, bookID int64, content string) (*Note, error) {
	return m.AddNoteWithTags(ctx, bookID, content, nil)
}

// AddNoteWithTags stores a note and its tags.
func (m *MockStore) AddNoteWithTags(ctx context.Context, bookID int64, content string, tags []string) (*Note, error) {
	if err := requireText("content", content); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.findBook(bookID) == nil {
		return nil, fmt.Errorf("book %d: %w", bookID, ErrNotFound)
	}

	m.nextID.note++
	n := &Note{ID: m.nextID.note, BookID: bookID, Content: content, CreatedAt: now()}
	m.notes = append(m.notes, n)
	m.appendTags(n.ID, tags)

	result := *n
	return &result, nil
}

// GetNotes lists the notes of a book.
func (m *MockStore) GetNotes(ctx context.Context, bookID int64) ([]*Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}

	result := []*Note{}
	for _, n := range m.notes {
		if n.BookID == bookID {
			c := *n
			result = append(result, &c)
		}
	}
	return result, nil
}

// SearchNotes matches note content case-insensitively.
func (m *MockStore) SearchNotes(ctx context.Context, search NoteSearch) ([]*NoteMatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}

	return m.matchNotes(func(n *Note) bool {
		if search.BookID != nil && n.BookID != *search.BookID {
			return false
		}
		return containsFold(n.Content, search.Query)
	}), nil
}

// AddTags attaches trimmed tags to a note.
func (m *MockStore) AddTags(ctx context.Context, noteID int64, names []string) error {
	if len(names) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.findNote(noteID) == nil {
		return fmt.Errorf("note %d: %w", noteID, ErrNotFound)
	}
	m.appendTags(noteID, names)
	return nil
}

// GetTags lists the tags of a note in insertion order.
func (m *MockStore) GetTags(ctx context.Context, noteID int64) ([]*Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}

	result := []*Tag{}
	for _, t := range m.tags {
		if t.NoteID == noteID {
			c := *t
			result = append(result, &c)
		}
	}
	return result, nil
}

// ListTags counts notes per distinct tag name.
func (m *MockStore) ListTags(ctx context.Context) ([]*TagCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}

	notesByTag := make(map[string]map[int64]struct{})
	for _, t := range m.tags {
		if notesByTag[t.Name] == nil {
			notesByTag[t.Name] = make(map[int64]struct{})
		}
		notesByTag[t.Name][t.NoteID] = struct{}{}
	}

	result := make([]*TagCount, 0, len(notesByTag))
	for name, ids := range notesByTag {
		result = append(result, &TagCount{Name: name, Count: len(ids)})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// NotesByTag returns notes carrying the exact tag name.
func (m *MockStore) NotesByTag(ctx context.Context, name string) ([]*NoteMatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}

	name = strings.TrimSpace(name)
	tagged := make(map[int64]bool)
	for _, t := range m.tags {
		if t.Name == name {
			tagged[t.NoteID] = true
		}
	}
	return m.matchNotes(func(n *Note) bool { return tagged[n.ID] }), nil
}

// Close marks the store closed.
func (m *MockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockStore) Closed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

// caller must hold m.mu
func (m *MockStore) findBook(id int64) *Book {
	for _, b := range m.books {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// caller must hold m.mu
func (m *MockStore) findNote(id int64) *Note {
	for _, n := range m.notes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// caller must hold m.mu for writing
func (m *MockStore) appendTags(noteID int64, names []string) {
	for _, name := range names {
		m.nextID.tag++
		m.tags = append(m.tags, &Tag{ID: m.nextID.tag, NoteID: noteID, Name: strings.TrimSpace(name)})
	}
}

// caller must hold m.mu
func (m *MockStore) matchNotes(keep func(*Note) bool) []*NoteMatch {
	result := []*NoteMatch{}
	for _, n := range m.notes {
		if !keep(n) {
			continue
		}
		b := m.findBook(n.BookID)
		if b == nil {
			continue
		}
		c := *n
		result = append(result, &NoteMatch{Note: &c, BookTitle: b.Title})
	}
	return result
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
