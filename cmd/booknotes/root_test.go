// ABOUTME: End-to-end tests for the booknotes CLI
// ABOUTME: Runs cobra commands against a temporary SQLite library

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cli struct {
	t      *testing.T
	dbPath string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("BOOKNOTES_CONFIG", "")
	t.Setenv("BOOKNOTES_DB", "")
	return &cli{t: t, dbPath: filepath.Join(dir, "books.db")}
}

func (c *cli) run(args ...string) (string, string, error) {
	c.t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(append([]string{"--db", c.dbPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, errOut, err := c.run(args...)
	require.NoError(c.t, err, "stderr: %s", errOut)
	return out
}

func TestInit(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("init")
	assert.Contains(t, out, "Library ready")
	assert.FileExists(t, c.dbPath)

	out = c.mustRun("--json", "init")
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, float64(2), got["schema_version"])
}

func TestBookCommands(t *testing.T) {
	c := newCLI(t)

	c.mustRun("book", "add", "The Hobbit", "Tolkien")
	c.mustRun("book", "add", "Dune", "Frank Herbert")

	out := c.mustRun("--json", "book", "list")
	var books []bookJSON
	require.NoError(t, json.Unmarshal([]byte(out), &books))
	require.Len(t, books, 2)
	assert.Equal(t, "The Hobbit", books[0].Title)
	assert.Equal(t, int64(2), books[1].ID)

	out = c.mustRun("book", "search", "herb")
	assert.Contains(t, out, "Dune")
	assert.NotContains(t, out, "Hobbit")

	out = c.mustRun("book", "search", "zzz")
	assert.Contains(t, out, "No books found")

	_, _, err := c.run("book", "add", "  ", "Nobody")
	assert.Error(t, err)

	_, _, err = c.run("book", "show", "42")
	assert.ErrorContains(t, err, "not found")

	_, _, err = c.run("book", "show", "abc")
	assert.ErrorContains(t, err, "invalid book id")
}

func TestNoteAndTagCommands(t *testing.T) {
	c := newCLI(t)

	c.mustRun("book", "add", "Dune", "Herbert")
	c.mustRun("book", "add", "Emma", "Austen")
	c.mustRun("note", "add", "1", "Spice must flow", "--tags", "scifi, quotes,")
	c.mustRun("note", "add", "2", "A spicy matchmaker")

	out := c.mustRun("--json", "note", "list", "1")
	var notes []noteJSON
	require.NoError(t, json.Unmarshal([]byte(out), &notes))
	require.Len(t, notes, 1)
	assert.Equal(t, []string{"scifi", "quotes"}, notes[0].Tags)

	out = c.mustRun("--json", "note", "search", "SPIC")
	var matches []noteJSON
	require.NoError(t, json.Unmarshal([]byte(out), &matches))
	require.Len(t, matches, 2)
	assert.Equal(t, "Dune", matches[0].BookTitle)

	out = c.mustRun("--json", "note", "search", "spic", "--book", "2")
	matches = nil
	require.NoError(t, json.Unmarshal([]byte(out), &matches))
	require.Len(t, matches, 1)
	assert.Equal(t, "Emma", matches[0].BookTitle)

	c.mustRun("tag", "add", "2", "romance", "classic")
	out = c.mustRun("tag", "show", "2")
	assert.Equal(t, "romance\nclassic\n", out)

	out = c.mustRun("tag", "list")
	assert.Contains(t, out, "romance")
	assert.Contains(t, out, "scifi")

	out = c.mustRun("--json", "tag", "list")
	var counts []tagCountJSON
	require.NoError(t, json.Unmarshal([]byte(out), &counts))
	require.Len(t, counts, 4)
	assert.Equal(t, tagCountJSON{Name: "classic", NoteCount: 1}, counts[0])
	assert.Contains(t, out, `"note_count": 1`)

	_, _, err := c.run("tag", "add", "1", ",", " ")
	assert.ErrorContains(t, err, "no tag names")

	out = c.mustRun("tag", "notes", "quotes")
	assert.Contains(t, out, "Spice must flow")

	_, _, err = c.run("note", "add", "9", "orphan")
	assert.ErrorContains(t, err, "not found")

	_, _, err = c.run("tag", "add", "9", "x")
	assert.ErrorContains(t, err, "not found")
}

func TestExportCommand(t *testing.T) {
	c := newCLI(t)

	c.mustRun("book", "add", "Dune", "Herbert")
	c.mustRun("note", "add", "1", "Spice is *key*", "-t", "scifi")

	out := c.mustRun("export", "1")
	assert.Contains(t, out, "# Dune")
	assert.Contains(t, out, "`scifi`")

	target := filepath.Join(t.TempDir(), "dune.html")
	c.mustRun("export", "1", "--format", "html", "--out", target)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<em>key</em>")

	_, _, err = c.run("export", "1", "--format", "pdf")
	assert.Error(t, err)
}

func TestExplicitConfigMustExist(t *testing.T) {
	c := newCLI(t)

	_, _, err := c.run("--config", filepath.Join(t.TempDir(), "missing.yaml"), "book", "list")
	assert.ErrorContains(t, err, "loading config")
}

func TestConfigFileSelectsDatabase(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BOOKNOTES_DB", "")
	dbPath := filepath.Join(dir, "from-config.db")
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("database:\n  path: "+dbPath+"\n"), 0o644))

	var out bytes.Buffer
	cmd := newRootCmd(&out, &bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfgPath, "init"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.FileExists(t, dbPath)
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitTags(" a, ,b,"))
	assert.Nil(t, splitTags(""))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "one line", truncate("one\n  line"))
	long := truncate(string(bytes.Repeat([]byte("x"), 100)))
	assert.Equal(t, maxContentWidth, len([]rune(long)))
}
