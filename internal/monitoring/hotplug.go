package monitoring

import (
	"context"
	"log/slog"
	"time"

	"github.com/smazurov/nxv4l2/internal/events"
)

// Invalidator drops a cached device table.
type Invalidator interface {
	Invalidate(reason string)
}

// DefaultSettle is how long add events wait for the kernel to finish
// creating sibling nodes before the registry is invalidated.
const DefaultSettle = time.Second

// HotplugWatcher invalidates the device registry when video4linux or
// media nodes appear or disappear, and publishes each such event.
type HotplugWatcher struct {
	registry Invalidator
	bus      *events.Bus
	devDir   string
	settle   time.Duration
	logger   *slog.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewHotplugWatcher creates a watcher. bus may be nil.
func NewHotplugWatcher(registry Invalidator, bus *events.Bus, devDir string, logger *slog.Logger) *HotplugWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &HotplugWatcher{
		registry: registry,
		bus:      bus,
		devDir:   devDir,
		settle:   DefaultSettle,
		logger:   logger,
	}
}

// Stop ends the watch started by Start and waits for it to exit.
func (w *HotplugWatcher) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
	w.cancel = nil
}

// invalidation tracks a pending settle-delayed invalidation.
type invalidation struct {
	timer  *time.Timer
	reason string
}

func newInvalidation() *invalidation {
	t := time.NewTimer(time.Hour)
	t.Stop()
	return &invalidation{timer: t}
}

// schedule arms the timer; events arriving inside the window are
// folded into a single invalidation.
func (p *invalidation) schedule(reason string, d time.Duration) {
	if p.reason == "" {
		p.reason = reason
	}
	p.timer.Reset(d)
}

func (p *invalidation) fire(registry Invalidator) {
	registry.Invalidate(p.reason)
	p.reason = ""
}

func (w *HotplugWatcher) publish(action, subsystem, node string) {
	if w.bus == nil {
		return
	}
	w.bus.Publish(events.HotplugEvent{
		Action:    action,
		Subsystem: subsystem,
		NodePath:  node,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
