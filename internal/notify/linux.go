//go:build linux

package notify

import (
	"context"
	"fmt"
	"os/exec"
)

// linuxNotifier posts notifications through notify-send.
type linuxNotifier struct{}

func newPlatformNotifier() Notifier {
	return linuxNotifier{}
}

func (linuxNotifier) IsSupported() bool {
	_, err := exec.LookPath("notify-send")
	return err == nil
}

// Send passes sound as a normal-urgency hint; whether it plays is up to the
// notification daemon.
func (linuxNotifier) Send(ctx context.Context, title, message string, sound bool) error {
	args := []string{"--app-name=habits", "--icon=appointment-soon"}
	if sound {
		args = append(args, "--urgency=normal", "--hint=string:sound-name:message-new-instant")
	}
	args = append(args, title, message)

	if err := exec.CommandContext(ctx, "notify-send", args...).Run(); err != nil {
		return fmt.Errorf("notify-send failed: %w", err)
	}
	return nil
}
