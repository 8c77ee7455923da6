// ABOUTME: Root cobra command, global flags and shared setup for booknotes
// ABOUTME: Resolves config and database paths, builds the logger and opens the store

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/2389/booknotes/internal/config"
	"github.com/2389/booknotes/internal/store"
)

// app holds global flags and state shared by every subcommand.
type app struct {
	configPath string
	dbPath     string
	verbose    bool
	jsonOut    bool

	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer
	errOut io.Writer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "booknotes",
		Short: "Catalog books, take notes and tag them for later search",
		Long: `booknotes keeps a local library of books with free-text notes.
Notes can be tagged and searched across every book.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/booknotes/config.yaml)")
	flags.StringVar(&a.dbPath, "db", "", "database file (overrides config and BOOKNOTES_DB)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&a.jsonOut, "json", false, "print results as JSON")

	root.AddCommand(
		newInitCmd(a),
		newBookCmd(a),
		newNoteCmd(a),
		newTagCmd(a),
		newExportCmd(a),
		newServeCmd(a),
	)
	return root
}

// setup loads configuration and installs the logger.
func (a *app) setup() error {
	path, explicit := a.resolveConfigPath()

	var (
		cfg *config.Config
		err error
	)
	if explicit {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadOrDefault(path)
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if envDB := os.Getenv("BOOKNOTES_DB"); envDB != "" {
		cfg.Database.Path = envDB
	}
	if a.dbPath != "" {
		cfg.Database.Path = a.dbPath
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}

	a.cfg = cfg
	a.logger = setupLogger(cfg.Logging, a.errOut)
	slog.SetDefault(a.logger)
	return nil
}

// resolveConfigPath returns the config file path and whether the user chose it.
// Priority: --config flag > BOOKNOTES_CONFIG env var > XDG_CONFIG_HOME/booknotes/config.yaml > ~/.config/booknotes/config.yaml
func (a *app) resolveConfigPath() (string, bool) {
	if a.configPath != "" {
		return a.configPath, true
	}
	if envPath := os.Getenv("BOOKNOTES_CONFIG"); envPath != "" {
		return envPath, true
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml", false // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "booknotes", "config.yaml"), false
}

// openStore opens the configured library database.
func (a *app) openStore(ctx context.Context) (*store.SQLiteStore, error) {
	return store.Open(ctx, a.cfg.Database.Path, store.Options{
		Driver:       a.cfg.Database.Driver,
		MaxOpenConns: a.cfg.Database.MaxOpenConns,
		BusyTimeout:  a.cfg.Database.BusyTimeout,
		Logger:       a.logger,
	})
}

// withStore opens the store, runs fn and closes the store.
func (a *app) withStore(cmd *cobra.Command, fn func(ctx context.Context, s store.Store) error) error {
	ctx := cmd.Context()
	s, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(ctx, s)
}

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the library database if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			schema, err := s.SchemaVersion(ctx)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(a.out, map[string]any{"path": a.cfg.Database.Path, "schema_version": schema})
			}
			success(a.out, "Library ready at %s (schema v%d)", a.cfg.Database.Path, schema)
			return nil
		},
	}
}
