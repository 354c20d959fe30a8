//go:build linux

package monitoring

import (
	"context"
	"errors"
	"fmt"

	"github.com/smazurov/nxv4l2/pkg/linuxav/hotplug"
)

// Start opens a uevent socket and watches it until Stop.
func (w *HotplugWatcher) Start() error {
	mon, err := hotplug.NewMonitor()
	if err != nil {
		return fmt.Errorf("failed to open uevent socket: %w", err)
	}
	mon.AddSubsystemFilter(hotplug.SubsystemVideo4Linux)
	mon.AddSubsystemFilter(hotplug.SubsystemMedia)

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})

	ch := make(chan hotplug.Event, 16)
	go func() {
		defer mon.Close()
		if err := mon.Run(ctx, ch); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error("Hotplug monitor failed", "error", err)
		}
	}()
	go func() {
		defer close(w.done)
		w.consume(ctx, ch)
	}()

	w.logger.Info("Hotplug monitoring started", "subsystems", []string{hotplug.SubsystemVideo4Linux, hotplug.SubsystemMedia})
	return nil
}

// consume handles events until ctx is done or ch is closed. Removals
// invalidate at once; additions wait for the settle window.
func (w *HotplugWatcher) consume(ctx context.Context, ch <-chan hotplug.Event) {
	pending := newInvalidation()
	defer pending.timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-ch:
			if !ok {
				return
			}
			if !ev.ChangesTopology() {
				continue
			}

			node := ev.NodePath(w.devDir)
			w.logger.Info("Hotplug event", "action", ev.Action, "subsystem", ev.Subsystem, "node", node)
			w.publish(ev.Action, ev.Subsystem, node)

			reason := fmt.Sprintf("hotplug: %s %s", ev.Action, node)
			switch ev.Action {
			case hotplug.ActionRemove, hotplug.ActionUnbind:
				pending.timer.Stop()
				pending.reason = ""
				w.registry.Invalidate(reason)
			default:
				pending.schedule(reason, w.settle)
			}

		case <-pending.timer.C:
			pending.fire(w.registry)
		}
	}
}
