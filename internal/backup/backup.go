// Package backup manages timestamped snapshots of the habit collections.
// Snapshots are portable JSON documents taken through the active storage
// backend, so a backup made with the JSON store restores into SQLite and back.
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"habits/internal/fsutil"
	"habits/internal/habit"
)

const (
	ManifestVersion = "2"
	ManifestFile    = "manifest.json"
	SnapshotFile    = "habits.json"
	BackupsDir      = "backups"

	nameLayout = "2006-01-02_150405"
)

// Source is the store a snapshot is read from and restored into.
type Source interface {
	Load(ctx context.Context) (*habit.Collection, error)
	Save(ctx context.Context, c habit.Collection) error
}

// Manager handles backup and restore operations.
type Manager struct {
	backupDir  string
	source     Source
	appVersion string
	now        func() time.Time
}

// Manifest describes one snapshot.
type Manifest struct {
	Version    string         `json:"version"`
	CreatedAt  time.Time      `json:"created_at"`
	AppVersion string         `json:"app_version"`
	Stats      map[string]int `json:"stats"`
}

// Info summarizes a snapshot for listing.
type Info struct {
	Name      string // 2025-12-15_143022_123
	Path      string
	CreatedAt time.Time
	Stats     map[string]int // active, archived, completions
}

// NewManager returns a manager that keeps snapshots under dataDir/backups.
func NewManager(dataDir string, source Source, appVersion string) *Manager {
	return &Manager{
		backupDir:  filepath.Join(dataDir, BackupsDir),
		source:     source,
		appVersion: appVersion,
		now:        time.Now,
	}
}

// SetNowFunc overrides the clock used to name snapshots.
func (m *Manager) SetNowFunc(now func() time.Time) {
	if now == nil {
		m.now = time.Now
		return
	}
	m.now = now
}

// Dir returns the directory holding all snapshots.
func (m *Manager) Dir() string { return m.backupDir }

// Create snapshots the current collections and returns the snapshot name.
func (m *Manager) Create(ctx context.Context) (string, error) {
	c, err := m.source.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("read habits: %w", err)
	}
	if c == nil {
		c = &habit.Collection{Active: []habit.Habit{}, Archived: []habit.Habit{}}
	}

	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	now := m.now()
	name := fmt.Sprintf("%s_%03d", now.Format(nameLayout), now.Nanosecond()/1e6)
	path := filepath.Join(m.backupDir, name)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("backup %s already exists", name)
	}
	if err := os.MkdirAll(path, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup: %w", err)
	}

	if err := fsutil.WriteJSON(filepath.Join(path, SnapshotFile), c, 0600); err != nil {
		_ = os.RemoveAll(path)
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}

	manifest := Manifest{
		Version:    ManifestVersion,
		CreatedAt:  now,
		AppVersion: m.appVersion,
		Stats:      statsFor(c),
	}
	if err := fsutil.WriteJSON(filepath.Join(path, ManifestFile), manifest, 0600); err != nil {
		_ = os.RemoveAll(path)
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}

	return name, nil
}

// List returns all snapshots, newest first.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Info{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []Info{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := m.info(entry.Name())
		if err != nil {
			continue
		}
		backups = append(backups, *info)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// Get returns information about one snapshot.
func (m *Manager) Get(name string) (*Info, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if _, err := os.Stat(filepath.Join(m.backupDir, name)); os.IsNotExist(err) {
		return nil, fmt.Errorf("backup not found: %s", name)
	}
	return m.info(name)
}

// Restore replaces the stored collections with a snapshot. A safety snapshot
// of the current state is taken first and named in any later error.
func (m *Manager) Restore(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	path := filepath.Join(m.backupDir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("backup not found: %s", name)
	}

	var c habit.Collection
	if err := fsutil.ReadJSON(filepath.Join(path, SnapshotFile), &c); err != nil {
		return fmt.Errorf("backup %s is unreadable: %w", name, err)
	}
	if c.Active == nil {
		c.Active = []habit.Habit{}
	}
	if c.Archived == nil {
		c.Archived = []habit.Habit{}
	}

	safety, err := m.Create(ctx)
	if err != nil {
		return fmt.Errorf("failed to create safety backup: %w", err)
	}

	if err := m.source.Save(ctx, c); err != nil {
		return fmt.Errorf("failed to restore %s (safety backup: %s): %w", name, safety, err)
	}
	return nil
}

// RestoreLatest restores the most recent snapshot.
func (m *Manager) RestoreLatest(ctx context.Context) (string, error) {
	backups, err := m.List()
	if err != nil {
		return "", err
	}
	if len(backups) == 0 {
		return "", fmt.Errorf("no backups available")
	}
	name := backups[0].Name
	return name, m.Restore(ctx, name)
}

// Delete removes one snapshot.
func (m *Manager) Delete(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	path := filepath.Join(m.backupDir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("backup not found: %s", name)
	}
	return os.RemoveAll(path)
}

// Prune keeps the keep most recent snapshots and returns how many it removed.
func (m *Manager) Prune(keep int) (int, error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep must be non-negative")
	}
	backups, err := m.List()
	if err != nil {
		return 0, err
	}
	if len(backups) <= keep {
		return 0, nil
	}

	deleted := 0
	for _, b := range backups[keep:] {
		if err := m.Delete(b.Name); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

func (m *Manager) info(name string) (*Info, error) {
	path := filepath.Join(m.backupDir, name)

	var manifest Manifest
	if err := fsutil.ReadJSON(filepath.Join(path, ManifestFile), &manifest); err != nil {
		createdAt, parseErr := parseName(name)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid backup: %s", name)
		}
		manifest.CreatedAt = createdAt
		manifest.Stats = map[string]int{}
	}

	return &Info{
		Name:      name,
		Path:      path,
		CreatedAt: manifest.CreatedAt,
		Stats:     manifest.Stats,
	}, nil
}

func statsFor(c *habit.Collection) map[string]int {
	completions := 0
	for _, h := range c.Active {
		completions += len(h.CompletedDates)
	}
	for _, h := range c.Archived {
		completions += len(h.CompletedDates)
	}
	return map[string]int{
		"active":      len(c.Active),
		"archived":    len(c.Archived),
		"completions": completions,
	}
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("backup name is required")
	}
	if name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid backup name: %q", name)
	}
	if _, err := parseName(name); err != nil {
		return fmt.Errorf("invalid backup name: %q", name)
	}
	return nil
}

// parseName accepts 2006-01-02_150405 with an optional _NNN millisecond
// suffix.
func parseName(name string) (time.Time, error) {
	if len(name) == len(nameLayout)+4 {
		t, err := time.Parse(nameLayout, name[:len(nameLayout)])
		if err != nil {
			return time.Time{}, err
		}
		if name[len(nameLayout)] != '_' {
			return time.Time{}, fmt.Errorf("invalid backup format")
		}
		n, err := strconv.Atoi(name[len(nameLayout)+1:])
		if err != nil || n < 0 || n > 999 {
			return time.Time{}, fmt.Errorf("invalid milliseconds")
		}
		return t.Add(time.Duration(n) * time.Millisecond), nil
	}
	return time.Parse(nameLayout, name)
}
