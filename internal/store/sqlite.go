// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Opens the database, applies connection pragmas and runs embedded migrations

package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Driver names accepted by Open.
const (
	DriverModernc = "sqlite"  // modernc.org/sqlite, pure Go
	DriverMattn   = "sqlite3" // github.com/mattn/go-sqlite3, requires cgo
)

// DefaultPath is the database file used when no path is configured.
const DefaultPath = "books.db"

// Options controls how the database is opened.
type Options struct {
	Driver       string
	MaxOpenConns int
	BusyTimeout  time.Duration
	Logger       *slog.Logger
}

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens the database at path with default options.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	return Open(context.Background(), path, Options{})
}

// Open creates a SQLite store at the given path and initializes the schema.
// Parent directories are created if needed. Use ":memory:" for a private
// in-memory database.
func Open(ctx context.Context, path string, opts Options) (*SQLiteStore, error) {
	if path == "" {
		path = DefaultPath
	}
	if opts.Driver == "" {
		opts.Driver = DriverModernc
	}
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 1
	}
	if opts.BusyTimeout <= 0 {
		opts.BusyTimeout = 5 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "store")

	memory := isMemoryPath(path)
	if !memory {
		// Ensure parent directory exists
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w: %w", ErrStorageUnavailable, err)
		}
	}

	dsn, err := buildDSN(opts.Driver, path, opts.BusyTimeout, memory)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(opts.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w: %w", ErrStorageUnavailable, err)
	}

	// Every connection to ":memory:" is a separate database
	if memory {
		opts.MaxOpenConns = 1
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, classify("connecting to database", err)
	}

	s := newStore(db, logger)
	if err := s.Initialize(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite store initialized", "path", path, "driver", opts.Driver)
	return s, nil
}

// newStore wraps an already opened database handle.
func newStore(db *sql.DB, logger *slog.Logger) *SQLiteStore {
	return &SQLiteStore{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// buildDSN appends the per-connection pragmas in the syntax each driver expects.
func buildDSN(driver, path string, busyTimeout time.Duration, memory bool) (string, error) {
	var params []string
	switch driver {
	case DriverModernc:
		params = append(params,
			"_pragma=foreign_keys(1)",
			fmt.Sprintf("_pragma=busy_timeout(%d)", busyTimeout.Milliseconds()),
		)
		if !memory {
			params = append(params, "_pragma=journal_mode(WAL)")
		}
	case DriverMattn:
		params = append(params,
			"_foreign_keys=on",
			fmt.Sprintf("_busy_timeout=%d", busyTimeout.Milliseconds()),
		)
		if !memory {
			params = append(params, "_journal_mode=WAL")
		}
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(params, "&"), nil
}

func isMemoryPath(path string) bool {
	return path == ":memory:" || strings.HasPrefix(path, "file::memory:")
}

// Initialize applies the embedded migrations. Every migration uses
// IF NOT EXISTS so databases created by earlier releases are adopted in place.
func (s *SQLiteStore) Initialize(ctx context.Context) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, fsys)
	if err != nil {
		return fmt.Errorf("creating migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return classify("running migrations", err)
	}
	for _, r := range results {
		s.logger.Info("applied migration", "version", r.Source.Version, "file", r.Source.Path, "duration", r.Duration)
	}
	return nil
}

// SchemaVersion reports the highest applied migration version.
func (s *SQLiteStore) SchemaVersion(ctx context.Context) (int64, error) {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return 0, fmt.Errorf("loading migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, fsys)
	if err != nil {
		return 0, fmt.Errorf("creating migration provider: %w", err)
	}
	v, err := provider.GetDBVersion(ctx)
	if err != nil {
		return 0, classify("reading schema version", err)
	}
	return v, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// timestamp returns the current time in the layout SQLite's CURRENT_TIMESTAMP uses.
func (s *SQLiteStore) timestamp() (time.Time, string) {
	t := s.now().UTC().Truncate(time.Second)
	return t, t.Format(timestampLayout)
}

// withTx runs fn inside a transaction, rolling back on error.
func (s *SQLiteStore) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(op, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return classify(op, err)
	}
	if err := tx.Commit(); err != nil {
		return classify(op, err)
	}
	return nil
}

// likePattern turns a query into a LIKE pattern matching it as a literal substring.
func likePattern(query string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(query) + "%"
}
