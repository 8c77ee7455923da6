// ABOUTME: Note persistence for SQLiteStore
// ABOUTME: Insert with owner checks, per-book listing and content search

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// AddNote inserts a note under an existing book.
// Returns ErrNotFound if the book doesn't exist.
func (s *SQLiteStore) AddNote(ctx context.Context, bookID int64, content string) (*Note, error) {
	return s.AddNoteWithTags(ctx, bookID, content, nil)
}

// AddNoteWithTags inserts a note and its tags in one transaction.
// Nothing is written if the book is missing or any insert fails.
func (s *SQLiteStore) AddNoteWithTags(ctx context.Context, bookID int64, content string, tags []string) (*Note, error) {
	if err := requireText("content", content); err != nil {
		return nil, err
	}

	createdAt, createdAtStr := s.timestamp()
	note := &Note{BookID: bookID, Content: content, CreatedAt: createdAt}

	err := s.withTx(ctx, "adding note", func(tx *sql.Tx) error {
		ok, err := bookExists(ctx, tx, bookID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("book %d: %w", bookID, ErrNotFound)
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO notes (book_id, content, created_at)
			VALUES (?, ?, ?)
		`, bookID, content, createdAtStr)
		if err != nil {
			return err
		}
		if note.ID, err = res.LastInsertId(); err != nil {
			return err
		}

		return insertTags(ctx, tx, note.ID, tags)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("added note", "id", note.ID, "book_id", bookID, "tags", len(tags))
	return note, nil
}

// GetNotes lists the notes of a book in identity order.
// A book with no notes, or no such book, yields an empty slice.
func (s *SQLiteStore) GetNotes(ctx context.Context, bookID int64) ([]*Note, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, book_id, content, created_at FROM notes
		WHERE book_id = ?
		ORDER BY id
	`, bookID)
	if err != nil {
		return nil, classify("listing notes", err)
	}
	defer func() { _ = rows.Close() }()

	notes := []*Note{}
	for rows.Next() {
		var n Note
		var createdAt dbTime
		if err := rows.Scan(&n.ID, &n.BookID, &n.Content, &createdAt); err != nil {
			return nil, classify("listing notes", err)
		}
		n.CreatedAt = createdAt.Time
		notes = append(notes, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("listing notes", err)
	}
	return notes, nil
}

// SearchNotes returns notes whose content contains the query, ignoring case,
// each paired with its book's title. A nil BookID searches every book.
func (s *SQLiteStore) SearchNotes(ctx context.Context, search NoteSearch) ([]*NoteMatch, error) {
	args := []any{likePattern(search.Query)}
	query := `
		SELECT n.id, n.book_id, n.content, n.created_at, b.title
		FROM notes n
		JOIN books b ON n.book_id = b.id
		WHERE n.content LIKE ? ESCAPE '\'`

	if search.BookID != nil {
		query += ` AND n.book_id = ?`
		args = append(args, *search.BookID)
	}
	query += ` ORDER BY n.id`

	return s.queryNoteMatches(ctx, "searching notes", query, args...)
}

func (s *SQLiteStore) queryNoteMatches(ctx context.Context, op, query string, args ...any) ([]*NoteMatch, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer func() { _ = rows.Close() }()

	matches := []*NoteMatch{}
	for rows.Next() {
		var n Note
		var createdAt dbTime
		var title string
		if err := rows.Scan(&n.ID, &n.BookID, &n.Content, &createdAt, &title); err != nil {
			return nil, classify(op, err)
		}
		n.CreatedAt = createdAt.Time
		matches = append(matches, &NoteMatch{Note: &n, BookTitle: title})
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return matches, nil
}

// noteExists reports whether a note row exists, using the given transaction.
func noteExists(ctx context.Context, tx *sql.Tx, id int64) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM notes WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
