// Package store provides persistent storage for the book library using SQLite.
//
// # Architecture
//
// Store is the single interface callers depend on. It covers three
// append-only record kinds:
//
//   - Book: title and author, owns zero or more notes
//   - Note: free-text content owned by one book, owns zero or more tags
//   - Tag: a trimmed label on one note
//
// SQLiteStore implements Store against a database file. MockStore is an
// in-memory implementation with the same ordering and error rules.
//
// # SQLite Configuration
//
// Every pooled connection is opened with:
//
//	PRAGMA foreign_keys=ON;
//	PRAGMA busy_timeout=<configured>;
//	PRAGMA journal_mode=WAL;  -- file databases only
//
// Two drivers are supported: modernc.org/sqlite (DriverModernc, the default,
// pure Go) and github.com/mattn/go-sqlite3 (DriverMattn, requires cgo).
//
// The pool defaults to a single connection so writes are serialized. An
// in-memory database is always pinned to one connection.
//
// # Searching
//
// SearchBooks and SearchNotes match the query as a literal substring using
// LIKE, so matching ignores ASCII case. LIKE wildcards in the query are
// escaped. The empty query matches everything.
//
// # Error Handling
//
// Errors wrap one of three sentinels, checked with errors.Is:
//
//   - ErrNotFound: the entity, or the owner of a new note or tag, is missing
//   - ErrConstraintViolation: a required field is blank or a SQLite constraint failed
//   - ErrStorageUnavailable: the database could not be reached or read
//
// Context cancellation is returned unwrapped. Nothing is retried.
//
// # Migrations
//
// Migrations are embedded and applied by goose on Open and Initialize.
// They use IF NOT EXISTS throughout, so a books.db created by an earlier
// single-file tool is adopted in place.
package store
