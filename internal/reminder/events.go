package reminder

import (
	"context"

	"habits/internal/engine"
)

// HandleEvent keeps reminder slots in step with engine changes. Register it
// with engine.Subscribe.
func (s *Scheduler) HandleEvent(ctx context.Context, ev engine.Event) {
	switch ev.Kind {
	case engine.EventLoaded, engine.EventShifted:
		s.SyncAll(ctx, ev.Active)
	case engine.EventCreated, engine.EventChanged, engine.EventRestored:
		s.Sync(ctx, ev.Habit)
	case engine.EventArchived, engine.EventDeleted:
		s.Cancel(ctx, ev.Habit.ID)
	case engine.EventReset:
		for _, id := range ev.Removed {
			s.Cancel(ctx, id)
		}
	}
}
