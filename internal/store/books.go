// ABOUTME: Book persistence for SQLiteStore
// ABOUTME: Insert, lookup, listing and title/author search

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// AddBook inserts a new book. Duplicate title/author pairs are allowed.
// Returns ErrConstraintViolation if title or author is blank.
func (s *SQLiteStore) AddBook(ctx context.Context, title, author string) (*Book, error) {
	if err := requireText("title", title); err != nil {
		return nil, err
	}
	if err := requireText("author", author); err != nil {
		return nil, err
	}

	createdAt, createdAtStr := s.timestamp()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO books (title, author, created_at)
		VALUES (?, ?, ?)
	`, title, author, createdAtStr)
	if err != nil {
		return nil, classify("inserting book", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, classify("reading book id", err)
	}

	s.logger.Debug("added book", "id", id, "title", title)
	return &Book{ID: id, Title: title, Author: author, CreatedAt: createdAt}, nil
}

// GetBook retrieves a book by ID.
// Returns ErrNotFound if the book doesn't exist.
func (s *SQLiteStore) GetBook(ctx context.Context, id int64) (*Book, error) {
	var b Book
	var createdAt dbTime

	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, author, created_at FROM books WHERE id = ?
	`, id).Scan(&b.ID, &b.Title, &b.Author, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("book %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, classify("getting book", err)
	}

	b.CreatedAt = createdAt.Time
	return &b, nil
}

// GetBooks lists every book in identity order.
func (s *SQLiteStore) GetBooks(ctx context.Context) ([]*Book, error) {
	return s.queryBooks(ctx, "listing books", `
		SELECT id, title, author, created_at FROM books ORDER BY id
	`)
}

// SearchBooks returns books whose title or author contains query,
// ignoring case. The empty query matches every book.
func (s *SQLiteStore) SearchBooks(ctx context.Context, query string) ([]*Book, error) {
	pattern := likePattern(query)
	return s.queryBooks(ctx, "searching books", `
		SELECT id, title, author, created_at FROM books
		WHERE title LIKE ? ESCAPE '\' OR author LIKE ? ESCAPE '\'
		ORDER BY id
	`, pattern, pattern)
}

func (s *SQLiteStore) queryBooks(ctx context.Context, op, query string, args ...any) ([]*Book, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer func() { _ = rows.Close() }()

	books := []*Book{}
	for rows.Next() {
		var b Book
		var createdAt dbTime
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &createdAt); err != nil {
			return nil, classify(op, err)
		}
		b.CreatedAt = createdAt.Time
		books = append(books, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return books, nil
}

// bookExists reports whether a book row exists, using the given transaction.
func bookExists(ctx context.Context, tx *sql.Tx, id int64) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM books WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
