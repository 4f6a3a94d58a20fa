// Package reminder keeps a rolling window of seven daily reminder
// notifications per habit in step with the habit's state.
package reminder

import (
	"context"
	"fmt"
	"io"
	"time"

	"habits/internal/dates"
	"habits/internal/habit"

	"github.com/charmbracelet/log"
)

// WindowDays is the number of daily slots kept per habit.
const WindowDays = 7

const (
	DefaultTitle = "Time for your habits! ✨"
	DefaultBody  = "Don't forget to: %s"
)

// Notification is one scheduled reminder.
type Notification struct {
	SlotID   string
	When     time.Time
	Title    string
	Body     string
	Metadata map[string]string
}

// Gateway is the platform notification backend.
type Gateway interface {
	RequestPermission(ctx context.Context) (bool, error)
	Schedule(ctx context.Context, n Notification) error
	Cancel(ctx context.Context, slotID string) error
}

// Scheduler derives and applies reminder slots. Backend failures are logged
// and never returned: a missing reminder must not fail a habit mutation.
type Scheduler struct {
	gw    Gateway
	log   *log.Logger
	now   func() time.Time
	title string
	body  string
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the scheduler's logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithText sets the notification title and the body format. The body format
// receives the habit title as its single %s verb. Empty values keep the
// defaults.
func WithText(title, body string) Option {
	return func(s *Scheduler) {
		if title != "" {
			s.title = title
		}
		if body != "" {
			s.body = body
		}
	}
}

// NewScheduler returns a scheduler that talks to gw.
func NewScheduler(gw Gateway, opts ...Option) *Scheduler {
	s := &Scheduler{
		gw:    gw,
		log:   log.New(io.Discard),
		now:   time.Now,
		title: DefaultTitle,
		body:  DefaultBody,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SlotID returns the identifier of the reminder offset days from today.
func SlotID(habitID string, offset int) string {
	return fmt.Sprintf("%s-%d", habitID, offset)
}

// Plan returns the notifications h should have at now, without touching the
// gateway. A habit with no reminder or a malformed reminder time yields nil.
func (s *Scheduler) Plan(h *habit.Habit, now time.Time) []Notification {
	if !h.HasReminder() {
		return nil
	}
	clock, err := dates.ParseClock(h.ReminderTime)
	if err != nil {
		return nil
	}

	doneToday := habit.IsCompletedToday(h, now)
	out := make([]Notification, 0, WindowDays)
	for i := 0; i < WindowDays; i++ {
		when := clock.On(now.AddDate(0, 0, i))
		if i == 0 && (!when.After(now) || doneToday) {
			continue
		}
		out = append(out, Notification{
			SlotID:   SlotID(h.ID, i),
			When:     when,
			Title:    s.title,
			Body:     fmt.Sprintf(s.body, h.Title),
			Metadata: map[string]string{"habitId": h.ID},
		})
	}
	return out
}

// Sync replaces the reminder slots of h: every slot is cancelled, and the
// planned ones are scheduled again if the platform grants permission.
func (s *Scheduler) Sync(ctx context.Context, h habit.Habit) {
	s.Cancel(ctx, h.ID)

	if !h.HasReminder() {
		return
	}
	if _, err := dates.ParseClock(h.ReminderTime); err != nil {
		s.log.Warn("ignoring malformed reminder time", "habit", h.ID, "time", h.ReminderTime)
		return
	}

	granted, err := s.gw.RequestPermission(ctx)
	if err != nil {
		s.log.Warn("notification permission request failed", "err", err)
		return
	}
	if !granted {
		s.log.Debug("notification permission denied", "habit", h.ID)
		return
	}

	for _, n := range s.Plan(&h, s.now()) {
		if err := s.gw.Schedule(ctx, n); err != nil {
			s.log.Warn("schedule reminder failed", "slot", n.SlotID, "err", err)
		}
	}
}

// SyncAll syncs every habit in active.
func (s *Scheduler) SyncAll(ctx context.Context, active []habit.Habit) {
	for _, h := range active {
		s.Sync(ctx, h)
	}
}

// Cancel removes every slot of habitID.
func (s *Scheduler) Cancel(ctx context.Context, habitID string) {
	for i := 0; i < WindowDays; i++ {
		if err := s.gw.Cancel(ctx, SlotID(habitID, i)); err != nil {
			s.log.Warn("cancel reminder failed", "slot", SlotID(habitID, i), "err", err)
		}
	}
}
