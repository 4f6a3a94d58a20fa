package engine

import (
	"context"

	"habits/internal/habit"
)

// EventKind identifies what changed.
type EventKind int

const (
	EventLoaded EventKind = iota
	EventCreated
	EventChanged
	EventArchived
	EventRestored
	EventDeleted
	EventReordered
	EventReset
	EventShifted
)

func (k EventKind) String() string {
	switch k {
	case EventLoaded:
		return "loaded"
	case EventCreated:
		return "created"
	case EventChanged:
		return "changed"
	case EventArchived:
		return "archived"
	case EventRestored:
		return "restored"
	case EventDeleted:
		return "deleted"
	case EventReordered:
		return "reordered"
	case EventReset:
		return "reset"
	case EventShifted:
		return "shifted"
	default:
		return "unknown"
	}
}

// Event is published after a mutation has been persisted and swapped in.
//
// Habit is set for single-habit events. Active carries the full active list
// for EventLoaded and EventShifted. Removed lists every id dropped by
// EventReset.
type Event struct {
	Kind    EventKind
	Habit   habit.Habit
	Active  []habit.Habit
	Removed []string
}

// Listener receives engine events. Listeners run synchronously on the
// goroutine that performed the mutation and must not call back into a
// mutating engine method.
type Listener func(ctx context.Context, ev Event)

// Subscribe registers l for every future event.
func (e *Engine) Subscribe(l Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, l)
}

func (e *Engine) publish(ctx context.Context, ev Event) {
	e.mu.Lock()
	listeners := make([]Listener, len(e.listeners))
	copy(listeners, e.listeners)
	e.mu.Unlock()

	for _, l := range listeners {
		l(ctx, ev)
	}
}
