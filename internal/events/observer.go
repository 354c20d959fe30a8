package events

import (
	"time"

	"github.com/smazurov/nxv4l2/internal/devices"
)

// DeviceObserver republishes registry notifications on the bus.
type DeviceObserver struct {
	bus *Bus
}

var _ devices.Observer = (*DeviceObserver)(nil)

// NewDeviceObserver returns an observer publishing to bus.
func NewDeviceObserver(bus *Bus) *DeviceObserver {
	return &DeviceObserver{bus: bus}
}

// ScanCompleted implements devices.Observer.
func (o *DeviceObserver) ScanCompleted(r devices.ScanResult) {
	ev := DevicesScannedEvent{
		DurationMs: float64(r.Duration.Microseconds()) / 1000,
		Timestamp:  time.Now().Format(time.RFC3339),
	}
	if r.Err != nil {
		ev.Error = r.Err.Error()
	}
	if len(r.Counts) > 0 {
		ev.Counts = make(map[string]int, len(r.Counts))
		for cat, n := range r.Counts {
			ev.Counts[cat.String()] = n
			ev.Devices += n
		}
	}
	o.bus.Publish(ev)
}

// Invalidated implements devices.Observer.
func (o *DeviceObserver) Invalidated(reason string) {
	o.bus.Publish(DevicesInvalidatedEvent{
		Reason:    reason,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
