package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"habits/internal/fsutil"
	"habits/internal/habit"

	"github.com/charmbracelet/log"
)

// JSONStore keeps the whole collection in one JSON file. Every write keeps
// the previous contents in a .bak sibling, which Load falls back to when the
// main file is damaged.
type JSONStore struct {
	mu   sync.Mutex
	path string
	log  *log.Logger
	now  func() time.Time
}

// NewJSONStore returns a store writing to path.
func NewJSONStore(path string, logger *log.Logger) *JSONStore {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &JSONStore{path: path, log: logger, now: time.Now}
}

func (s *JSONStore) Path() string { return s.path }

func (s *JSONStore) Close() error { return nil }

// Load reads the collection. A missing file means nothing has been saved and
// yields nil. A damaged file is recovered from its backup when possible; if
// not, it is moved aside and an error is returned.
func (s *JSONStore) Load(ctx context.Context) (*habit.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return s.recoverCorrupt(fmt.Errorf("%s is empty", s.path))
	}

	c := emptyCollection()
	if err := json.Unmarshal(data, c); err != nil {
		return s.recoverCorrupt(fmt.Errorf("parse %s: %w", s.path, err))
	}
	return c, nil
}

// Save writes the collection atomically.
func (s *JSONStore) Save(ctx context.Context, c habit.Collection) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(c)
}

// Clear removes the data file and its backup.
func (s *JSONStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range []string{s.path, s.path + ".bak"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return nil
}

func (s *JSONStore) write(c habit.Collection) error {
	if c.Active == nil {
		c.Active = []habit.Habit{}
	}
	if c.Archived == nil {
		c.Archived = []habit.Habit{}
	}
	fsutil.BestEffortBackup(s.path, dataFilePerm)

	if err := fsutil.WriteJSON(s.path, c, dataFilePerm); err != nil {
		return fmt.Errorf("write habits: %w", err)
	}
	return nil
}

func (s *JSONStore) recoverCorrupt(cause error) (*habit.Collection, error) {
	corruptPath := fmt.Sprintf("%s.corrupt.%s", s.path, s.now().Format("20060102-150405"))

	bakData, bakErr := os.ReadFile(s.path + ".bak")
	if bakErr == nil && len(bytes.TrimSpace(bakData)) > 0 {
		c := emptyCollection()
		if err := json.Unmarshal(bakData, c); err == nil {
			_ = os.Rename(s.path, corruptPath)
			if err := fsutil.WriteFileAtomic(s.path, bakData, dataFilePerm); err != nil {
				s.log.Warn("rewrite recovered habits failed", "err", err)
			}
			s.log.Warn("recovered habits from backup", "cause", cause, "moved", corruptPath)
			return c, nil
		}
	}

	_ = os.Rename(s.path, corruptPath)
	return nil, fmt.Errorf("%w (original moved to %s)", cause, corruptPath)
}
