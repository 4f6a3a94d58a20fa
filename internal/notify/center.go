package notify

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"habits/internal/reminder"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"
)

// DefaultDispatchInterval is how often the Center checks for due reminders.
const DefaultDispatchInterval = time.Minute

// sendTimeout bounds a single platform notifier call.
const sendTimeout = 10 * time.Second

// Center is an in-process notification scheduler. It implements
// reminder.Gateway: scheduled reminders are held by slot id until a cron
// job finds them due and hands them to the platform Notifier.
type Center struct {
	mu       sync.Mutex
	pending  map[string]reminder.Notification
	notifier Notifier
	enabled  bool
	sound    bool
	interval time.Duration
	cron     *cron.Cron
	now      func() time.Time
	log      *log.Logger
}

// CenterOptions configures a Center.
type CenterOptions struct {
	Enabled  bool
	Sound    bool
	Interval time.Duration // defaults to DefaultDispatchInterval
	Logger   *log.Logger
}

// NewCenter returns a stopped Center delivering through n.
func NewCenter(n Notifier, opts CenterOptions) *Center {
	if n == nil {
		n = noopNotifier{}
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultDispatchInterval
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Center{
		pending:  map[string]reminder.Notification{},
		notifier: n,
		enabled:  opts.Enabled,
		sound:    opts.Sound,
		interval: opts.Interval,
		now:      time.Now,
		log:      opts.Logger,
	}
}

// SetNowFunc overrides the clock used to decide which reminders are due.
func (c *Center) SetNowFunc(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if now == nil {
		c.now = time.Now
		return
	}
	c.now = now
}

// RequestPermission grants delivery when notifications are enabled in the
// config and the platform has a working notifier.
func (c *Center) RequestPermission(ctx context.Context) (bool, error) {
	return c.enabled && c.notifier.IsSupported(), nil
}

// Schedule stores n, replacing any reminder already held in its slot.
func (c *Center) Schedule(ctx context.Context, n reminder.Notification) error {
	if n.SlotID == "" {
		return fmt.Errorf("notification has no slot id")
	}
	c.mu.Lock()
	c.pending[n.SlotID] = n
	c.mu.Unlock()
	return nil
}

// Cancel drops the reminder in slotID. Cancelling an empty slot is not an
// error.
func (c *Center) Cancel(ctx context.Context, slotID string) error {
	c.mu.Lock()
	delete(c.pending, slotID)
	c.mu.Unlock()
	return nil
}

// Pending returns the held reminders ordered by fire time.
func (c *Center) Pending() []reminder.Notification {
	c.mu.Lock()
	out := make([]reminder.Notification, 0, len(c.pending))
	for _, n := range c.pending {
		out = append(out, n)
	}
	c.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].When.Equal(out[j].When) {
			return out[i].SlotID < out[j].SlotID
		}
		return out[i].When.Before(out[j].When)
	})
	return out
}

// Dispatch sends every reminder that is due and removes it from the pending
// set. It returns the number delivered. Failed deliveries are logged and
// dropped; the next sync schedules a fresh window anyway.
func (c *Center) Dispatch(ctx context.Context) int {
	c.mu.Lock()
	now := c.now()
	var due []reminder.Notification
	for id, n := range c.pending {
		if !n.When.After(now) {
			due = append(due, n)
			delete(c.pending, id)
		}
	}
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].When.Before(due[j].When) })

	sent := 0
	for _, n := range due {
		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		err := c.notifier.Send(sendCtx, n.Title, n.Body, c.sound)
		cancel()
		if err != nil {
			c.log.Warn("deliver reminder failed", "slot", n.SlotID, "err", err)
			continue
		}
		c.log.Info("reminder delivered", "slot", n.SlotID, "habit", n.Metadata["habitId"])
		sent++
	}
	return sent
}

// Start begins dispatching on a cron schedule.
func (c *Center) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cron != nil {
		return fmt.Errorf("notification center already started")
	}

	cr := cron.New()
	spec := fmt.Sprintf("@every %s", c.interval)
	if _, err := cr.AddFunc(spec, func() { c.Dispatch(context.Background()) }); err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	cr.Start()
	c.cron = cr
	c.log.Debug("notification center started", "interval", c.interval)
	return nil
}

// Stop halts dispatching and waits for a running dispatch to finish.
func (c *Center) Stop() {
	c.mu.Lock()
	cr := c.cron
	c.cron = nil
	c.mu.Unlock()
	if cr == nil {
		return
	}
	<-cr.Stop().Done()
	c.log.Debug("notification center stopped")
}
