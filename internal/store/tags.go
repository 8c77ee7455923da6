// ABOUTME: Tag persistence for SQLiteStore
// ABOUTME: Trimmed tag inserts, per-note lookup, tag counts and retrieval by tag

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// AddTags attaches one tag per name to a note, trimming surrounding
// whitespace and keeping input order. An empty slice is a no-op.
// Returns ErrNotFound if the note doesn't exist.
func (s *SQLiteStore) AddTags(ctx context.Context, noteID int64, names []string) error {
	if len(names) == 0 {
		return nil
	}

	err := s.withTx(ctx, "adding tags", func(tx *sql.Tx) error {
		ok, err := noteExists(ctx, tx, noteID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("note %d: %w", noteID, ErrNotFound)
		}
		return insertTags(ctx, tx, noteID, names)
	})
	if err != nil {
		return err
	}

	s.logger.Debug("added tags", "note_id", noteID, "count", len(names))
	return nil
}

func insertTags(ctx context.Context, tx *sql.Tx, noteID int64, names []string) error {
	if len(names) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO tags (note_id, tag_name) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, name := range names {
		if _, err := stmt.ExecContext(ctx, noteID, strings.TrimSpace(name)); err != nil {
			return err
		}
	}
	return nil
}

// GetTags lists the tags of a note in insertion order.
func (s *SQLiteStore) GetTags(ctx context.Context, noteID int64) ([]*Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, note_id, tag_name FROM tags
		WHERE note_id = ?
		ORDER BY id
	`, noteID)
	if err != nil {
		return nil, classify("listing tags", err)
	}
	defer func() { _ = rows.Close() }()

	tags := []*Tag{}
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.NoteID, &t.Name); err != nil {
			return nil, classify("listing tags", err)
		}
		tags = append(tags, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("listing tags", err)
	}
	return tags, nil
}

// ListTags returns every distinct tag name with the number of notes using it,
// ordered by name.
func (s *SQLiteStore) ListTags(ctx context.Context) ([]*TagCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tag_name, COUNT(DISTINCT note_id) FROM tags
		GROUP BY tag_name
		ORDER BY tag_name
	`)
	if err != nil {
		return nil, classify("counting tags", err)
	}
	defer func() { _ = rows.Close() }()

	counts := []*TagCount{}
	for rows.Next() {
		var c TagCount
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, classify("counting tags", err)
		}
		counts = append(counts, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("counting tags", err)
	}
	return counts, nil
}

// NotesByTag returns the notes carrying a tag, paired with their book titles.
// The name is trimmed and compared exactly.
func (s *SQLiteStore) NotesByTag(ctx context.Context, name string) ([]*NoteMatch, error) {
	return s.queryNoteMatches(ctx, "listing notes by tag", `
		SELECT n.id, n.book_id, n.content, n.created_at, b.title
		FROM notes n
		JOIN books b ON n.book_id = b.id
		WHERE n.id IN (SELECT note_id FROM tags WHERE tag_name = ?)
		ORDER BY n.id
	`, strings.TrimSpace(name))
}
