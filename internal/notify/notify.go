// Package notify delivers reminder notifications to the desktop. Platform
// notifiers shell out to osascript on macOS and notify-send on Linux; the
// Center holds the pending reminder slots and fires them when they fall due.
package notify

import "context"

// Notifier shows a desktop notification.
type Notifier interface {
	Send(ctx context.Context, title, message string, sound bool) error

	// IsSupported reports whether the platform tool is available.
	IsSupported() bool
}

type noopNotifier struct{}

func (noopNotifier) Send(ctx context.Context, title, message string, sound bool) error {
	return nil
}

func (noopNotifier) IsSupported() bool {
	return false
}

// New returns the platform notifier, or a no-op notifier when the platform
// has none available.
func New() Notifier {
	n := newPlatformNotifier()
	if n == nil || !n.IsSupported() {
		return noopNotifier{}
	}
	return n
}
