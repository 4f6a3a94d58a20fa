package notify

import (
	"context"
	"errors"
	"os"
	"runtime"
	"sync"
	"testing"
	"time"

	"habits/internal/habit"
	"habits/internal/reminder"
)

// recordingNotifier captures sent notifications.
type recordingNotifier struct {
	mu        sync.Mutex
	supported bool
	err       error
	sent      []string
	sounds    []bool
}

func (r *recordingNotifier) Send(ctx context.Context, title, message string, sound bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, message)
	r.sounds = append(r.sounds, sound)
	return nil
}

func (r *recordingNotifier) IsSupported() bool { return r.supported }

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

var base = time.Date(2025, 12, 15, 9, 0, 0, 0, time.UTC)

func TestNew(t *testing.T) {
	if New() == nil {
		t.Fatal("New() returned nil")
	}
}

func TestIsSupported(t *testing.T) {
	n := New()
	switch runtime.GOOS {
	case "darwin", "linux":
		t.Logf("%s notification support: %v", runtime.GOOS, n.IsSupported())
	default:
		if n.IsSupported() {
			t.Errorf("IsSupported() should be false on %s", runtime.GOOS)
		}
	}
}

// TestSend shows a real notification; opt in with RUN_NOTIFY_TESTS=1.
func TestSend(t *testing.T) {
	if os.Getenv("RUN_NOTIFY_TESTS") != "1" {
		t.Skip("set RUN_NOTIFY_TESTS=1 to show a real notification")
	}
	n := New()
	if !n.IsSupported() {
		t.Skip("notifications not supported on this platform")
	}
	if err := n.Send(context.Background(), "habits test", "This is a test notification", false); err != nil {
		t.Errorf("Send() error: %v", err)
	}
}

func TestEscapeAppleScript(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"Hello", "Hello"},
		{`Hello "World"`, `Hello \"World\"`},
		{`Path\to\file`, `Path\\to\\file`},
		{`Mix "quote" and \slash`, `Mix \"quote\" and \\slash`},
	}
	for _, tc := range tests {
		if got := escapeAppleScript(tc.input); got != tc.want {
			t.Errorf("escapeAppleScript(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestCenter_RequestPermission(t *testing.T) {
	tests := []struct {
		name      string
		enabled   bool
		supported bool
		want      bool
	}{
		{"enabled and supported", true, true, true},
		{"disabled", false, true, false},
		{"unsupported platform", true, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCenter(&recordingNotifier{supported: tt.supported}, CenterOptions{Enabled: tt.enabled})
			got, err := c.RequestPermission(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("RequestPermission() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCenter_ScheduleCancel(t *testing.T) {
	c := NewCenter(&recordingNotifier{supported: true}, CenterOptions{Enabled: true})
	ctx := context.Background()

	_ = c.Schedule(ctx, reminder.Notification{SlotID: "a-1", When: base.Add(2 * time.Hour)})
	_ = c.Schedule(ctx, reminder.Notification{SlotID: "a-0", When: base.Add(time.Hour)})
	_ = c.Schedule(ctx, reminder.Notification{SlotID: "a-0", When: base.Add(30 * time.Minute)})

	pending := c.Pending()
	if len(pending) != 2 {
		t.Fatalf("len(Pending()) = %d, want 2 (same slot replaces)", len(pending))
	}
	if pending[0].SlotID != "a-0" || !pending[0].When.Equal(base.Add(30*time.Minute)) {
		t.Errorf("Pending()[0] = %+v", pending[0])
	}

	if err := c.Cancel(ctx, "a-0"); err != nil {
		t.Fatal(err)
	}
	if err := c.Cancel(ctx, "never-scheduled"); err != nil {
		t.Errorf("Cancel() of empty slot error = %v", err)
	}
	if len(c.Pending()) != 1 {
		t.Errorf("len(Pending()) = %d, want 1", len(c.Pending()))
	}

	if err := c.Schedule(ctx, reminder.Notification{}); err == nil {
		t.Error("Schedule() without slot id: error = nil")
	}
}

func TestCenter_Dispatch(t *testing.T) {
	rec := &recordingNotifier{supported: true}
	c := NewCenter(rec, CenterOptions{Enabled: true, Sound: true})
	now := base
	c.SetNowFunc(func() time.Time { return now })
	ctx := context.Background()

	_ = c.Schedule(ctx, reminder.Notification{SlotID: "a-0", When: base.Add(-time.Minute), Body: "first"})
	_ = c.Schedule(ctx, reminder.Notification{SlotID: "b-0", When: base, Body: "second"})
	_ = c.Schedule(ctx, reminder.Notification{SlotID: "a-1", When: base.Add(24 * time.Hour), Body: "later"})

	if sent := c.Dispatch(ctx); sent != 2 {
		t.Fatalf("Dispatch() = %d, want 2", sent)
	}
	if rec.sent[0] != "first" || rec.sent[1] != "second" {
		t.Errorf("sent = %v, want in fire-time order", rec.sent)
	}
	if !rec.sounds[0] {
		t.Error("sound flag not passed to notifier")
	}
	if len(c.Pending()) != 1 {
		t.Errorf("len(Pending()) = %d, want 1", len(c.Pending()))
	}

	// Nothing due until the clock moves.
	if sent := c.Dispatch(ctx); sent != 0 {
		t.Errorf("second Dispatch() = %d, want 0", sent)
	}
	now = base.Add(25 * time.Hour)
	if sent := c.Dispatch(ctx); sent != 1 {
		t.Errorf("Dispatch() after a day = %d, want 1", sent)
	}
}

func TestCenter_DispatchFailureDropsSlot(t *testing.T) {
	rec := &recordingNotifier{supported: true, err: errors.New("no display")}
	c := NewCenter(rec, CenterOptions{Enabled: true})
	c.SetNowFunc(func() time.Time { return base })

	_ = c.Schedule(context.Background(), reminder.Notification{SlotID: "a-0", When: base})
	if sent := c.Dispatch(context.Background()); sent != 0 {
		t.Errorf("Dispatch() = %d, want 0", sent)
	}
	if len(c.Pending()) != 0 {
		t.Error("failed reminder left pending")
	}
}

func TestCenter_StartStop(t *testing.T) {
	rec := &recordingNotifier{supported: true}
	c := NewCenter(rec, CenterOptions{Enabled: true, Interval: time.Second})
	_ = c.Schedule(context.Background(), reminder.Notification{SlotID: "a-0", When: time.Now().Add(-time.Second)})

	if err := c.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := c.Start(); err == nil {
		t.Error("second Start() error = nil")
	}

	deadline := time.Now().Add(5 * time.Second)
	for rec.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	c.Stop()
	c.Stop()

	if rec.count() != 1 {
		t.Errorf("delivered = %d, want 1", rec.count())
	}
}

// TestCenter_AsGateway drives the Center through the reminder scheduler.
func TestCenter_AsGateway(t *testing.T) {
	c := NewCenter(&recordingNotifier{supported: true}, CenterOptions{Enabled: true})
	s := reminder.NewScheduler(c, reminder.WithClock(func() time.Time { return base }))

	h := habit.Habit{ID: "abc", Title: "Read", ReminderTime: "18:00"}
	s.Sync(context.Background(), h)
	if got := len(c.Pending()); got != reminder.WindowDays {
		t.Fatalf("len(Pending()) = %d, want %d", got, reminder.WindowDays)
	}

	h.ReminderTime = ""
	s.Sync(context.Background(), h)
	if got := len(c.Pending()); got != 0 {
		t.Errorf("len(Pending()) after clearing reminder = %d, want 0", got)
	}
}
