// Package systemd reports service state to systemd over the notify
// socket. Outside a Type=notify unit every call is a no-op.
package systemd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/smazurov/nxv4l2/internal/devices"
)

// Notifier sends sd_notify messages.
type Notifier struct {
	notify   func(state string) (bool, error)
	watchdog func() (time.Duration, error)
	logger   *slog.Logger
}

var _ devices.Observer = (*Notifier)(nil)

// NewNotifier creates a notifier writing to $NOTIFY_SOCKET.
func NewNotifier(logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		notify: func(state string) (bool, error) {
			return daemon.SdNotify(false, state)
		},
		watchdog: func() (time.Duration, error) {
			return daemon.SdWatchdogEnabled(false)
		},
		logger: logger,
	}
}

func (n *Notifier) send(state string) {
	sent, err := n.notify(state)
	if err != nil {
		n.logger.Warn("sd_notify failed", "state", state, "error", err)
		return
	}
	if sent {
		n.logger.Debug("sd_notify", "state", state)
	}
}

// Ready tells systemd start-up has finished.
func (n *Notifier) Ready() { n.send(daemon.SdNotifyReady) }

// Stopping tells systemd shutdown has begun.
func (n *Notifier) Stopping() { n.send(daemon.SdNotifyStopping) }

// Status sets the free-form status line shown by systemctl status.
func (n *Notifier) Status(msg string) { n.send("STATUS=" + msg) }

// ScanCompleted implements devices.Observer by publishing the device
// count as the unit status.
func (n *Notifier) ScanCompleted(r devices.ScanResult) {
	if r.Err != nil {
		n.Status(fmt.Sprintf("device scan failed: %v", r.Err))
		return
	}
	total := 0
	for _, c := range r.Counts {
		total += c
	}
	n.Status(fmt.Sprintf("%d devices", total))
}

// Invalidated implements devices.Observer.
func (n *Notifier) Invalidated(string) {}

// RunWatchdog pings the watchdog at half the configured interval until
// ctx is done. It returns at once when WatchdogSec is not set.
func (n *Notifier) RunWatchdog(ctx context.Context) {
	interval, err := n.watchdog()
	if err != nil {
		n.logger.Warn("Failed to read watchdog settings", "error", err)
		return
	}
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.send(daemon.SdNotifyWatchdog)
		}
	}
}
