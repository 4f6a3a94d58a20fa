// Package engine owns the in-memory habit collections and applies every
// mutation to them. Each operation computes the next collections, persists
// them through the Store, and only then swaps them in, so a failed save leaves
// the engine exactly as it was.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"habits/internal/dates"
	"habits/internal/habit"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"
)

// ErrInvalid wraps every validation failure returned by Create and Update.
var ErrInvalid = errors.New("invalid habit")

const (
	// Limits are in terminal cells.
	maxTitleLen = 60
	maxIconLen  = 16
	maxUnitLen  = 20

	// DefaultIcon is used when a habit is created without one.
	DefaultIcon = "✓"
)

// Store persists the full collection. Load returns nil with no error when
// nothing has been saved yet.
type Store interface {
	Load(ctx context.Context) (*habit.Collection, error)
	Save(ctx context.Context, c habit.Collection) error
	Clear(ctx context.Context) error
}

// Draft carries the user-editable fields of a habit.
type Draft struct {
	Title           string
	Icon            string
	GoalDaysPerWeek int    // 0 selects the default of 7
	TargetValue     int    // 0 makes the habit binary
	Unit            string // only kept for quantitative habits
	ReminderTime    string // HH:MM, empty for none
}

// Engine is the habit state engine. The zero value is not usable; call New.
type Engine struct {
	mu        sync.Mutex
	store     Store
	active    []habit.Habit
	archived  []habit.Habit
	listeners []Listener
	now       func() time.Time
	newID     func() string
	log       *log.Logger
}

// New creates an engine backed by store. A nil logger discards output.
func New(store Store, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{
		store:    store,
		active:   []habit.Habit{},
		archived: []habit.Habit{},
		now:      time.Now,
		newID:    uuid.NewString,
		log:      logger,
	}
}

// SetNowFunc overrides the engine clock. Passing nil resets it to time.Now.
func (e *Engine) SetNowFunc(now func() time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if now == nil {
		e.now = time.Now
		return
	}
	e.now = now
}

// Now returns the current time according to the engine clock.
func (e *Engine) Now() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.now()
}

// Load replaces the in-memory collections with the persisted ones. A load
// failure is logged and the engine starts empty. Streaks are recomputed and
// listeners receive EventLoaded.
func (e *Engine) Load(ctx context.Context) {
	e.mu.Lock()
	now := e.now()

	c, err := e.store.Load(ctx)
	if err != nil {
		e.log.Warn("load habits failed, starting empty", "err", err)
		c = nil
	}
	if c == nil {
		c = &habit.Collection{}
	}

	active := make([]habit.Habit, 0, len(c.Active))
	ids := make(map[string]struct{}, len(c.Active))
	for _, h := range c.Active {
		if _, dup := ids[h.ID]; dup || h.ID == "" {
			e.log.Warn("dropping duplicate active habit", "id", h.ID)
			continue
		}
		ids[h.ID] = struct{}{}
		h = h.Clone()
		h.Normalize(now)
		active = append(active, h)
	}

	archived := make([]habit.Habit, 0, len(c.Archived))
	for _, h := range c.Archived {
		if _, dup := ids[h.ID]; dup || h.ID == "" {
			e.log.Warn("dropping duplicate archived habit", "id", h.ID)
			continue
		}
		ids[h.ID] = struct{}{}
		h = h.Clone()
		h.Normalize(now)
		archived = append(archived, h)
	}

	e.active, e.archived = active, archived
	ev := Event{Kind: EventLoaded, Active: habit.CloneAll(active)}
	e.mu.Unlock()

	e.log.Debug("habits loaded", "active", len(active), "archived", len(archived))
	e.publish(ctx, ev)
}

// Habits returns a copy of the active habits in display order.
func (e *Engine) Habits() []habit.Habit {
	e.mu.Lock()
	defer e.mu.Unlock()
	return habit.CloneAll(e.active)
}

// ArchivedHabits returns a copy of the archived habits, newest first.
func (e *Engine) ArchivedHabits() []habit.Habit {
	e.mu.Lock()
	defer e.mu.Unlock()
	return habit.CloneAll(e.archived)
}

// Find looks a habit up in both collections.
func (e *Engine) Find(id string) (h habit.Habit, archived bool, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i := indexOf(e.active, id); i >= 0 {
		return e.active[i].Clone(), false, true
	}
	if i := indexOf(e.archived, id); i >= 0 {
		return e.archived[i].Clone(), true, true
	}
	return habit.Habit{}, false, false
}

// IsCompletedToday evaluates h against the engine clock.
func (e *Engine) IsCompletedToday(h *habit.Habit) bool {
	return habit.IsCompletedToday(h, e.Now())
}

// OverallProgress is the fraction of active habits completed today, or 0
// when there are none.
func (e *Engine) OverallProgress() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.active) == 0 {
		return 0
	}
	now := e.now()
	done := 0
	for i := range e.active {
		if habit.IsCompletedToday(&e.active[i], now) {
			done++
		}
	}
	return float64(done) / float64(len(e.active))
}

// Create appends a new active habit.
func (e *Engine) Create(ctx context.Context, d Draft) (habit.Habit, error) {
	d, err := d.normalize()
	if err != nil {
		return habit.Habit{}, err
	}

	var created habit.Habit
	err = e.apply(ctx, func(now time.Time) (*habit.Collection, *Event, error) {
		h := habit.Habit{
			ID:              e.newID(),
			CreatedAt:       now,
			CompletedDates:  []time.Time{},
			ProgressLog:     map[string]int{},
			GoalDaysPerWeek: habit.DefaultGoalDaysPerWeek,
		}
		d.applyTo(&h)

		active := make([]habit.Habit, 0, len(e.active)+1)
		active = append(active, e.active...)
		active = append(active, h)

		created = h.Clone()
		return &habit.Collection{Active: active, Archived: e.archived}, &Event{Kind: EventCreated, Habit: h.Clone()}, nil
	})
	if err != nil {
		return habit.Habit{}, err
	}
	return created, nil
}

// Update edits the descriptive fields of an active habit. History, streak
// and progress are left alone.
func (e *Engine) Update(ctx context.Context, id string, d Draft) error {
	d, err := d.normalize()
	if err != nil {
		return err
	}
	return e.apply(ctx, func(now time.Time) (*habit.Collection, *Event, error) {
		i := indexOf(e.active, id)
		if i < 0 {
			return nil, nil, nil
		}
		h := e.active[i].Clone()
		d.applyTo(&h)
		return e.withActive(i, h), &Event{Kind: EventChanged, Habit: h.Clone()}, nil
	})
}

// Toggle flips today's completion of an active habit. Unticking removes
// every completion dated today and zeroes today's progress; ticking records
// now and, for quantitative habits, fills today's progress to the target.
func (e *Engine) Toggle(ctx context.Context, id string) error {
	return e.apply(ctx, func(now time.Time) (*habit.Collection, *Event, error) {
		i := indexOf(e.active, id)
		if i < 0 {
			return nil, nil, nil
		}
		h := e.active[i].Clone()
		today := dates.DayKey(now)

		if habit.IsCompletedToday(&h, now) {
			h.CompletedDates = habit.WithoutDay(h.CompletedDates, now)
			if h.IsQuantitative() {
				setProgress(&h, today, 0)
			}
		} else {
			h.CompletedDates = append(habit.WithoutDay(h.CompletedDates, now), now)
			if h.IsQuantitative() {
				setProgress(&h, today, h.TargetValue)
			}
		}
		h.Streak = habit.CalculateStreak(h.CompletedDates, now)

		return e.withActive(i, h), &Event{Kind: EventChanged, Habit: h.Clone()}, nil
	})
}

// UpdateProgress adds delta to today's count of a quantitative habit,
// clamping at zero. Crossing the target records or removes today's
// completion. Binary habits are left untouched.
func (e *Engine) UpdateProgress(ctx context.Context, id string, delta int) error {
	return e.apply(ctx, func(now time.Time) (*habit.Collection, *Event, error) {
		i := indexOf(e.active, id)
		if i < 0 || !e.active[i].IsQuantitative() {
			return nil, nil, nil
		}
		h := e.active[i].Clone()

		count := max(0, h.ProgressOn(now)+delta)
		wasDone := habit.IsCompletedToday(&h, now)
		switch {
		case count >= h.TargetValue && !wasDone:
			h.CompletedDates = append(habit.WithoutDay(h.CompletedDates, now), now)
		case count < h.TargetValue && wasDone:
			h.CompletedDates = habit.WithoutDay(h.CompletedDates, now)
		}
		setProgress(&h, dates.DayKey(now), count)
		h.Streak = habit.CalculateStreak(h.CompletedDates, now)

		return e.withActive(i, h), &Event{Kind: EventChanged, Habit: h.Clone()}, nil
	})
}

// Archive moves an active habit to the front of the archived list.
func (e *Engine) Archive(ctx context.Context, id string) error {
	return e.apply(ctx, func(now time.Time) (*habit.Collection, *Event, error) {
		i := indexOf(e.active, id)
		if i < 0 {
			return nil, nil, nil
		}
		h := e.active[i]
		archived := make([]habit.Habit, 0, len(e.archived)+1)
		archived = append(archived, h)
		archived = append(archived, e.archived...)

		return &habit.Collection{Active: without(e.active, i), Archived: archived}, &Event{Kind: EventArchived, Habit: h.Clone()}, nil
	})
}

// Restore moves an archived habit to the front of the active list.
func (e *Engine) Restore(ctx context.Context, id string) error {
	return e.apply(ctx, func(now time.Time) (*habit.Collection, *Event, error) {
		i := indexOf(e.archived, id)
		if i < 0 {
			return nil, nil, nil
		}
		h := e.archived[i].Clone()
		h.Streak = habit.CalculateStreak(h.CompletedDates, now)

		active := make([]habit.Habit, 0, len(e.active)+1)
		active = append(active, h)
		active = append(active, e.active...)

		return &habit.Collection{Active: active, Archived: without(e.archived, i)}, &Event{Kind: EventRestored, Habit: h.Clone()}, nil
	})
}

// Delete permanently removes an archived habit. Active habits must be
// archived first; passing an active id is a no-op.
func (e *Engine) Delete(ctx context.Context, id string) error {
	return e.apply(ctx, func(now time.Time) (*habit.Collection, *Event, error) {
		i := indexOf(e.archived, id)
		if i < 0 {
			return nil, nil, nil
		}
		h := e.archived[i]
		return &habit.Collection{Active: e.active, Archived: without(e.archived, i)}, &Event{Kind: EventDeleted, Habit: h.Clone()}, nil
	})
}

// Reorder replaces the active order with ids, which must be a permutation
// of the current active ids. Habit fields are never taken from the caller.
func (e *Engine) Reorder(ctx context.Context, ids []string) error {
	return e.apply(ctx, func(now time.Time) (*habit.Collection, *Event, error) {
		if len(ids) != len(e.active) {
			return nil, nil, fmt.Errorf("reorder: got %d ids for %d active habits", len(ids), len(e.active))
		}
		seen := make(map[string]struct{}, len(ids))
		active := make([]habit.Habit, 0, len(ids))
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				return nil, nil, fmt.Errorf("reorder: duplicate id %s", id)
			}
			seen[id] = struct{}{}
			i := indexOf(e.active, id)
			if i < 0 {
				return nil, nil, fmt.Errorf("reorder: unknown active habit %s", id)
			}
			active = append(active, e.active[i])
		}
		return &habit.Collection{Active: active, Archived: e.archived}, &Event{Kind: EventReordered}, nil
	})
}

// ResetAll wipes both collections and the persisted data. It cannot be
// undone.
func (e *Engine) ResetAll(ctx context.Context) error {
	e.mu.Lock()
	if err := e.store.Clear(ctx); err != nil {
		e.mu.Unlock()
		return fmt.Errorf("clear habits: %w", err)
	}
	removed := make([]string, 0, len(e.active)+len(e.archived))
	for _, h := range e.active {
		removed = append(removed, h.ID)
	}
	for _, h := range e.archived {
		removed = append(removed, h.ID)
	}
	e.active, e.archived = []habit.Habit{}, []habit.Habit{}
	e.mu.Unlock()

	e.log.Info("all habits reset", "removed", len(removed))
	e.publish(ctx, Event{Kind: EventReset, Removed: removed})
	return nil
}

// DebugShiftAllDates moves every date of every habit by days calendar days:
// creation time, each completion, and each progress log key. It exists to
// simulate the passage of time.
func (e *Engine) DebugShiftAllDates(ctx context.Context, days int) error {
	return e.apply(ctx, func(now time.Time) (*habit.Collection, *Event, error) {
		active, err := shiftAll(e.active, days, now)
		if err != nil {
			return nil, nil, err
		}
		archived, err := shiftAll(e.archived, days, now)
		if err != nil {
			return nil, nil, err
		}
		return &habit.Collection{Active: active, Archived: archived}, &Event{Kind: EventShifted, Active: habit.CloneAll(active)}, nil
	})
}

// apply runs fn under the lock. fn returns the next collections and the event
// to publish, or nil collections when the operation is a no-op. The event is
// published after the lock is released.
func (e *Engine) apply(ctx context.Context, fn func(now time.Time) (*habit.Collection, *Event, error)) error {
	e.mu.Lock()
	next, ev, err := fn(e.now())
	if err == nil && next != nil {
		if saveErr := e.store.Save(ctx, *next); saveErr != nil {
			err = fmt.Errorf("save habits: %w", saveErr)
		} else {
			e.active, e.archived = next.Active, next.Archived
		}
	}
	e.mu.Unlock()

	if err != nil {
		return err
	}
	if next != nil && ev != nil {
		e.publish(ctx, *ev)
	}
	return nil
}

// withActive returns the collections with the active habit at i replaced.
func (e *Engine) withActive(i int, h habit.Habit) *habit.Collection {
	active := make([]habit.Habit, len(e.active))
	copy(active, e.active)
	active[i] = h
	return &habit.Collection{Active: active, Archived: e.archived}
}

func (d Draft) normalize() (Draft, error) {
	d.Title = strings.TrimSpace(d.Title)
	d.Icon = strings.TrimSpace(d.Icon)
	d.Unit = strings.TrimSpace(d.Unit)
	d.ReminderTime = strings.TrimSpace(d.ReminderTime)

	if d.Title == "" {
		return d, fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if runewidth.StringWidth(d.Title) > maxTitleLen {
		return d, fmt.Errorf("%w: title too long (max %d)", ErrInvalid, maxTitleLen)
	}
	if d.Icon == "" {
		d.Icon = DefaultIcon
	}
	if runewidth.StringWidth(d.Icon) > maxIconLen {
		return d, fmt.Errorf("%w: icon too long (max %d)", ErrInvalid, maxIconLen)
	}
	if d.GoalDaysPerWeek == 0 {
		d.GoalDaysPerWeek = habit.DefaultGoalDaysPerWeek
	}
	if d.GoalDaysPerWeek < 1 || d.GoalDaysPerWeek > 7 {
		return d, fmt.Errorf("%w: goal must be 1-7 days per week", ErrInvalid)
	}
	if d.TargetValue < 0 {
		return d, fmt.Errorf("%w: target must be positive", ErrInvalid)
	}
	if d.TargetValue == 0 {
		d.Unit = ""
	}
	if runewidth.StringWidth(d.Unit) > maxUnitLen {
		return d, fmt.Errorf("%w: unit too long (max %d)", ErrInvalid, maxUnitLen)
	}
	if d.ReminderTime != "" {
		c, err := dates.ParseClock(d.ReminderTime)
		if err != nil {
			return d, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		d.ReminderTime = c.String()
	}
	return d, nil
}

func (d Draft) applyTo(h *habit.Habit) {
	h.Title = d.Title
	h.Icon = d.Icon
	h.GoalDaysPerWeek = d.GoalDaysPerWeek
	h.TargetValue = d.TargetValue
	h.Unit = d.Unit
	h.ReminderTime = d.ReminderTime
}

func setProgress(h *habit.Habit, key string, count int) {
	if h.ProgressLog == nil {
		h.ProgressLog = map[string]int{}
	}
	h.ProgressLog[key] = count
}

func shiftAll(list []habit.Habit, days int, now time.Time) ([]habit.Habit, error) {
	out := make([]habit.Habit, len(list))
	for i, h := range list {
		h = h.Clone()
		h.CreatedAt = h.CreatedAt.AddDate(0, 0, days)
		for j, d := range h.CompletedDates {
			h.CompletedDates[j] = d.AddDate(0, 0, days)
		}
		if len(h.ProgressLog) > 0 {
			progress := make(map[string]int, len(h.ProgressLog))
			for key, count := range h.ProgressLog {
				shifted, err := dates.ShiftDayKey(key, days)
				if err != nil {
					return nil, fmt.Errorf("shift habit %s: %w", h.ID, err)
				}
				progress[shifted] = count
			}
			h.ProgressLog = progress
		}
		h.Streak = habit.CalculateStreak(h.CompletedDates, now)
		out[i] = h
	}
	return out, nil
}

func indexOf(list []habit.Habit, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func without(list []habit.Habit, i int) []habit.Habit {
	out := make([]habit.Habit, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...)
}
