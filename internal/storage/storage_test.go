package storage

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"habits/internal/habit"
)

// createTestStore opens the named backend in a temporary directory.
func createTestStore(t *testing.T, backend string) Store {
	t.Helper()
	store, err := Open(backend, t.TempDir(), nil)
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleCollection() habit.Collection {
	created := time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)
	return habit.Collection{
		Active: []habit.Habit{
			{
				ID:              "a",
				Title:           "Read",
				Icon:            "📚",
				CreatedAt:       created,
				CompletedDates:  []time.Time{created.AddDate(0, 0, 2), created.AddDate(0, 0, 1)},
				GoalDaysPerWeek: 5,
				ReminderTime:    "08:30",
			},
			{
				ID:              "b",
				Title:           "Water",
				Icon:            "💧",
				CreatedAt:       created,
				CompletedDates:  []time.Time{},
				GoalDaysPerWeek: 7,
				TargetValue:     8,
				Unit:            "glasses",
				ProgressLog:     map[string]int{"2025-12-01": 3, "2025-12-02": 0},
			},
		},
		Archived: []habit.Habit{
			{ID: "z", Title: "Old", Icon: "✓", CreatedAt: created, CompletedDates: []time.Time{created}, GoalDaysPerWeek: 7},
		},
	}
}

var backends = []string{BackendJSON, BackendSQLite}

func TestLoad_Empty(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			store := createTestStore(t, backend)
			c, err := store.Load(context.Background())
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if c != nil {
				t.Errorf("Load() = %+v, want nil for a fresh store", c)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			store := createTestStore(t, backend)
			ctx := context.Background()
			want := sampleCollection()

			if err := store.Save(ctx, want); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			got, err := store.Load(ctx)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got == nil {
				t.Fatal("Load() = nil after Save")
			}

			if len(got.Active) != 2 || got.Active[0].ID != "a" || got.Active[1].ID != "b" {
				t.Fatalf("active order = %+v", got.Active)
			}
			if len(got.Archived) != 1 || got.Archived[0].ID != "z" {
				t.Fatalf("archived = %+v", got.Archived)
			}

			a := got.Active[0]
			if a.Title != "Read" || a.Icon != "📚" || a.GoalDaysPerWeek != 5 || a.ReminderTime != "08:30" {
				t.Errorf("fields = %+v", a)
			}
			if len(a.CompletedDates) != 2 || !a.CompletedDates[0].Equal(want.Active[0].CompletedDates[0]) {
				t.Errorf("CompletedDates = %v, want append order preserved", a.CompletedDates)
			}
			if !a.CreatedAt.Equal(want.Active[0].CreatedAt) {
				t.Errorf("CreatedAt = %v", a.CreatedAt)
			}

			b := got.Active[1]
			if b.TargetValue != 8 || b.Unit != "glasses" {
				t.Errorf("quantitative fields = %+v", b)
			}
			if b.ProgressLog["2025-12-01"] != 3 {
				t.Errorf("ProgressLog = %v", b.ProgressLog)
			}
			if v, ok := b.ProgressLog["2025-12-02"]; !ok || v != 0 {
				t.Errorf("explicit zero progress lost: %v", b.ProgressLog)
			}
		})
	}
}

func TestSave_Replaces(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			store := createTestStore(t, backend)
			ctx := context.Background()
			if err := store.Save(ctx, sampleCollection()); err != nil {
				t.Fatal(err)
			}
			if err := store.Save(ctx, habit.Collection{}); err != nil {
				t.Fatal(err)
			}
			got, err := store.Load(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if got == nil {
				t.Fatal("Load() = nil, want empty collection after saving one")
			}
			if len(got.Active) != 0 || len(got.Archived) != 0 {
				t.Errorf("got %+v, want empty", got)
			}
		})
	}
}

func TestClear(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			store := createTestStore(t, backend)
			ctx := context.Background()
			if err := store.Save(ctx, sampleCollection()); err != nil {
				t.Fatal(err)
			}
			if err := store.Clear(ctx); err != nil {
				t.Fatalf("Clear() error = %v", err)
			}
			got, err := store.Load(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if got != nil {
				t.Errorf("Load() after Clear = %+v, want nil", got)
			}
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, err := Open("postgres", t.TempDir(), nil); err == nil {
		t.Error("Open() error = nil, want unknown backend error")
	}
}

func TestFileFor(t *testing.T) {
	if got := FileFor("SQLite"); got != SQLiteFile {
		t.Errorf("FileFor(SQLite) = %q", got)
	}
	if got := FileFor(""); got != JSONFile {
		t.Errorf("FileFor(\"\") = %q", got)
	}
}

func TestJSONStore_FilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permissions not enforced on windows")
	}
	store := createTestStore(t, BackendJSON)
	if err := store.Save(context.Background(), sampleCollection()); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != dataFilePerm {
		t.Errorf("file perm = %o, want %o", perm, dataFilePerm)
	}
}

func TestJSONStore_RecoversFromBackup(t *testing.T) {
	store := createTestStore(t, BackendJSON)
	ctx := context.Background()

	first := sampleCollection()
	if err := store.Save(ctx, first); err != nil {
		t.Fatal(err)
	}
	// Second save moves the first into .bak.
	second := sampleCollection()
	second.Active = second.Active[:1]
	if err := store.Save(ctx, second); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(store.Path(), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v, want recovery", err)
	}
	if got == nil || len(got.Active) != 2 {
		t.Fatalf("recovered = %+v, want backup contents", got)
	}

	matches, _ := filepath.Glob(store.Path() + ".corrupt.*")
	if len(matches) != 1 {
		t.Errorf("corrupt copies = %v, want 1", matches)
	}
}

func TestJSONStore_CorruptWithoutBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, JSONFile)
	if err := os.WriteFile(path, []byte("   "), 0600); err != nil {
		t.Fatal(err)
	}

	store := NewJSONStore(path, nil)
	got, err := store.Load(context.Background())
	if err == nil {
		t.Fatalf("Load() error = nil, got %+v", got)
	}
	if !strings.Contains(err.Error(), "empty") {
		t.Errorf("error = %v, want mention of empty file", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("corrupt file was not moved aside")
	}
}

func TestSQLite_Reopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s1, err := Open(BackendSQLite, dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s1.Save(ctx, sampleCollection()); err != nil {
		t.Fatal(err)
	}
	if err := s1.Close(); err != nil {
		t.Fatal(err)
	}

	s2, err := Open(BackendSQLite, dir, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	got, err := s2.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got.Active) != 2 {
		t.Errorf("after reopen: %+v", got)
	}
}
