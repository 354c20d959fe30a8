//go:build linux

// Package hotplug listens for kernel uevents over a NETLINK_KOBJECT_UEVENT
// socket without cgo or libudev. The device registry uses it to notice
// video4linux nodes appearing and disappearing.
package hotplug

import (
	"bytes"
	"context"
	"errors"
	"path"
	"strings"
	"sync"

	"golang.org/x/sys/unix"
)

// Action constants for device events.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
	ActionChange = "change"
	ActionBind   = "bind"
	ActionUnbind = "unbind"
)

// Subsystem names the registry cares about.
const (
	SubsystemVideo4Linux = "video4linux"
	SubsystemMedia       = "media"
)

// Event represents a kernel device event.
type Event struct {
	Action    string            // "add", "remove", "change", etc.
	KObj      string            // Kernel object path: /devices/platform/...
	Subsystem string            // "video4linux", "media", ...
	DevType   string            // Device type if available
	DevName   string            // Device name relative to /dev (e.g., "video6")
	DevPath   string            // sysfs device path
	Env       map[string]string // All environment variables from the event
}

// NodePath returns the device node the event refers to under devDir,
// or "" when the event carries no DEVNAME.
func (e Event) NodePath(devDir string) string {
	if e.DevName == "" {
		return ""
	}
	return path.Join(devDir, e.DevName)
}

// ChangesTopology reports whether the event adds or removes a node.
func (e Event) ChangesTopology() bool {
	switch e.Action {
	case ActionAdd, ActionRemove, ActionBind, ActionUnbind:
		return true
	default:
		return false
	}
}

// Monitor listens for kernel device events via netlink.
type Monitor struct {
	fd        int
	filters   map[string]struct{}
	filtersMu sync.RWMutex
}

// pollTimeoutMs bounds how long Run blocks before rechecking its context.
const pollTimeoutMs = 1000

// NewMonitor opens a netlink socket bound to the kernel broadcast group.
func NewMonitor() (*Monitor, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, unix.NETLINK_KOBJECT_UEVENT)
	if err != nil {
		return nil, err
	}

	addr := &unix.SockaddrNetlink{
		Family: unix.AF_NETLINK,
		Groups: 1, // Kernel broadcast group
	}

	if err := unix.Bind(fd, addr); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}

	return &Monitor{
		fd:      fd,
		filters: make(map[string]struct{}),
	}, nil
}

// AddSubsystemFilter adds a subsystem filter. Only events from matching
// subsystems will be returned. If no filters are added, all events pass through.
// This method is safe for concurrent use.
func (m *Monitor) AddSubsystemFilter(subsystem string) {
	m.filtersMu.Lock()
	m.filters[subsystem] = struct{}{}
	m.filtersMu.Unlock()
}

func (m *Monitor) accepts(subsystem string) bool {
	m.filtersMu.RLock()
	defer m.filtersMu.RUnlock()
	if len(m.filters) == 0 {
		return true
	}
	_, ok := m.filters[subsystem]
	return ok
}

// Close releases the monitor resources.
func (m *Monitor) Close() error {
	return unix.Close(m.fd)
}

// Run sends filtered events to the channel until the context is
// cancelled or the socket fails. The events channel is closed when Run
// returns.
func (m *Monitor) Run(ctx context.Context, events chan<- Event) error {
	defer close(events)

	buf := make([]byte, 8192)
	fds := []unix.PollFd{{Fd: int32(m.fd), Events: unix.POLLIN}}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := unix.Poll(fds, pollTimeoutMs)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return err
		}
		if n == 0 {
			continue
		}

		n, _, err = unix.Recvfrom(m.fd, buf, unix.MSG_DONTWAIT)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
				continue
			}
			return err
		}

		event := ParseUEvent(buf[:n])
		if event == nil || !m.accepts(event.Subsystem) {
			continue
		}

		select {
		case events <- *event:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// ParseUEvent parses a kernel uevent message of the form
// "ACTION@KOBJ\0KEY=VALUE\0KEY=VALUE\0...". Messages re-broadcast by
// udevd carry a binary "libudev" header which is skipped.
func ParseUEvent(data []byte) *Event {
	if len(data) == 0 {
		return nil
	}

	if bytes.HasPrefix(data, []byte("libudev")) {
		for i := 0; i < len(data)-1; i++ {
			if data[i] == 0 {
				rest := data[i+1:]
				if idx := bytes.IndexByte(rest, '@'); idx > 0 && idx < 20 && bytes.IndexByte(rest[:idx], 0) < 0 {
					data = rest
					break
				}
			}
		}
	}

	parts := bytes.Split(data, []byte{0})
	if len(parts[0]) == 0 {
		return nil
	}

	action, kobj, ok := strings.Cut(string(parts[0]), "@")
	if !ok || action == "" {
		return nil
	}

	event := &Event{
		Action: action,
		KObj:   kobj,
		Env:    make(map[string]string),
	}

	for _, part := range parts[1:] {
		key, value, ok := strings.Cut(string(part), "=")
		if !ok || key == "" {
			continue
		}
		event.Env[key] = value

		switch key {
		case "SUBSYSTEM":
			event.Subsystem = value
		case "DEVTYPE":
			event.DevType = value
		case "DEVNAME":
			event.DevName = value
		case "DEVPATH":
			event.DevPath = value
		}
	}

	return event
}
