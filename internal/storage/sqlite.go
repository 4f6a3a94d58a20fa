package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"habits/internal/habit"

	_ "modernc.org/sqlite"
)

const (
	collectionActive   = "active"
	collectionArchived = "archived"

	sqliteSchemaVersion = 1
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS habits (
	id             TEXT PRIMARY KEY,
	collection     TEXT NOT NULL CHECK (collection IN ('active', 'archived')),
	position       INTEGER NOT NULL,
	title          TEXT NOT NULL,
	icon           TEXT NOT NULL DEFAULT '',
	created_at     TEXT NOT NULL,
	goal_days      INTEGER NOT NULL DEFAULT 7,
	target_value   INTEGER NOT NULL DEFAULT 0,
	unit           TEXT NOT NULL DEFAULT '',
	reminder_time  TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS completions (
	habit_id     TEXT NOT NULL REFERENCES habits(id) ON DELETE CASCADE,
	seq          INTEGER NOT NULL,
	completed_at TEXT NOT NULL,
	PRIMARY KEY (habit_id, seq)
);
CREATE TABLE IF NOT EXISTS progress (
	habit_id TEXT NOT NULL REFERENCES habits(id) ON DELETE CASCADE,
	day      TEXT NOT NULL,
	count    INTEGER NOT NULL,
	PRIMARY KEY (habit_id, day)
);
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// SQLiteStore keeps habits in normalized tables of an embedded SQLite
// database. A Save replaces the whole collection in one transaction.
type SQLiteStore struct {
	path string
	db   *sql.DB
}

// OpenSQLite opens (and if needed creates) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), dataDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer; avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{path: path, db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > sqliteSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, sqliteSchemaVersion)
	}
	if version == sqliteSchemaVersion {
		return nil
	}

	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", sqliteSchemaVersion)); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	return nil
}

// Load returns nil when the database has never been saved to.
func (s *SQLiteStore) Load(ctx context.Context) (*habit.Collection, error) {
	var savedAt string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = 'saved_at'").Scan(&savedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read meta: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, collection, title, icon, created_at, goal_days, target_value, unit, reminder_time
		FROM habits ORDER BY collection, position`)
	if err != nil {
		return nil, fmt.Errorf("query habits: %w", err)
	}
	defer rows.Close()

	byID := map[string]*habit.Habit{}
	var order []string
	archived := map[string]bool{}

	for rows.Next() {
		h := &habit.Habit{CompletedDates: []time.Time{}}
		var collection, createdAt string
		if err := rows.Scan(&h.ID, &collection, &h.Title, &h.Icon, &createdAt,
			&h.GoalDaysPerWeek, &h.TargetValue, &h.Unit, &h.ReminderTime); err != nil {
			return nil, fmt.Errorf("scan habit: %w", err)
		}
		if h.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("habit %s: %w", h.ID, err)
		}
		byID[h.ID] = h
		order = append(order, h.ID)
		archived[h.ID] = collection == collectionArchived
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate habits: %w", err)
	}
	rows.Close()

	if err := s.loadCompletions(ctx, byID); err != nil {
		return nil, err
	}
	if err := s.loadProgress(ctx, byID); err != nil {
		return nil, err
	}

	c := emptyCollection()
	for _, id := range order {
		if archived[id] {
			c.Archived = append(c.Archived, *byID[id])
		} else {
			c.Active = append(c.Active, *byID[id])
		}
	}
	return c, nil
}

func (s *SQLiteStore) loadCompletions(ctx context.Context, byID map[string]*habit.Habit) error {
	rows, err := s.db.QueryContext(ctx, "SELECT habit_id, completed_at FROM completions ORDER BY habit_id, seq")
	if err != nil {
		return fmt.Errorf("query completions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, at string
		if err := rows.Scan(&id, &at); err != nil {
			return fmt.Errorf("scan completion: %w", err)
		}
		h, ok := byID[id]
		if !ok {
			continue
		}
		t, err := parseTime(at)
		if err != nil {
			return fmt.Errorf("habit %s: %w", id, err)
		}
		h.CompletedDates = append(h.CompletedDates, t)
	}
	return rows.Err()
}

func (s *SQLiteStore) loadProgress(ctx context.Context, byID map[string]*habit.Habit) error {
	rows, err := s.db.QueryContext(ctx, "SELECT habit_id, day, count FROM progress")
	if err != nil {
		return fmt.Errorf("query progress: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, day string
		var count int
		if err := rows.Scan(&id, &day, &count); err != nil {
			return fmt.Errorf("scan progress: %w", err)
		}
		h, ok := byID[id]
		if !ok {
			continue
		}
		if h.ProgressLog == nil {
			h.ProgressLog = map[string]int{}
		}
		h.ProgressLog[day] = count
	}
	return rows.Err()
}

// Save replaces every stored habit with c.
func (s *SQLiteStore) Save(ctx context.Context, c habit.Collection) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"progress", "completions", "habits"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	insHabit, err := tx.PrepareContext(ctx, `
		INSERT INTO habits (id, collection, position, title, icon, created_at, goal_days, target_value, unit, reminder_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer insHabit.Close()

	insCompletion, err := tx.PrepareContext(ctx, "INSERT INTO completions (habit_id, seq, completed_at) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer insCompletion.Close()

	insProgress, err := tx.PrepareContext(ctx, "INSERT INTO progress (habit_id, day, count) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer insProgress.Close()

	write := func(collection string, list []habit.Habit) error {
		for pos, h := range list {
			if _, err := insHabit.ExecContext(ctx, h.ID, collection, pos, h.Title, h.Icon, formatTime(h.CreatedAt),
				h.GoalDaysPerWeek, h.TargetValue, h.Unit, h.ReminderTime); err != nil {
				return fmt.Errorf("insert habit %s: %w", h.ID, err)
			}
			for seq, d := range h.CompletedDates {
				if _, err := insCompletion.ExecContext(ctx, h.ID, seq, formatTime(d)); err != nil {
					return fmt.Errorf("insert completion for %s: %w", h.ID, err)
				}
			}
			for day, count := range h.ProgressLog {
				if _, err := insProgress.ExecContext(ctx, h.ID, day, count); err != nil {
					return fmt.Errorf("insert progress for %s: %w", h.ID, err)
				}
			}
		}
		return nil
	}
	if err := write(collectionActive, c.Active); err != nil {
		return err
	}
	if err := write(collectionArchived, c.Archived); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "INSERT OR REPLACE INTO meta (key, value) VALUES ('saved_at', ?)",
		formatTime(time.Now())); err != nil {
		return fmt.Errorf("update meta: %w", err)
	}

	return tx.Commit()
}

// Clear deletes every row, returning the database to its never-saved state.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"progress", "completions", "habits", "meta"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
	}
	return t, nil
}
