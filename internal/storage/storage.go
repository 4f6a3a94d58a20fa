// Package storage persists the habit collections on the local disk, either
// as a single JSON document or in an embedded SQLite database.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"habits/internal/habit"

	"github.com/charmbracelet/log"
)

const (
	dataDirPerm  os.FileMode = 0700
	dataFilePerm os.FileMode = 0600

	// JSONFile and SQLiteFile are the data file names inside the data dir.
	JSONFile   = "habits.json"
	SQLiteFile = "habits.db"

	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Store is a persistence backend for the habit engine.
type Store interface {
	Load(ctx context.Context) (*habit.Collection, error)
	Save(ctx context.Context, c habit.Collection) error
	Clear(ctx context.Context) error
	// Path is the data file backing the store.
	Path() string
	Close() error
}

// Open creates the data directory if needed and opens the named backend.
// An empty backend selects JSON.
func Open(backend, dataDir string, logger *log.Logger) (Store, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if err := os.MkdirAll(dataDir, dataDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendJSON:
		return NewJSONStore(filepath.Join(dataDir, JSONFile), logger), nil
	case BackendSQLite:
		return OpenSQLite(filepath.Join(dataDir, SQLiteFile))
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want %s or %s)", backend, BackendJSON, BackendSQLite)
	}
}

// FileFor returns the data file name a backend writes.
func FileFor(backend string) string {
	if strings.EqualFold(strings.TrimSpace(backend), BackendSQLite) {
		return SQLiteFile
	}
	return JSONFile
}

func emptyCollection() *habit.Collection {
	return &habit.Collection{Active: []habit.Habit{}, Archived: []habit.Habit{}}
}
