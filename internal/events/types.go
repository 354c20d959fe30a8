package events

// Event type constants for kelindar/event.
const (
	TypeDevicesScanned uint32 = iota + 1
	TypeDevicesInvalidated
	TypeHotplug
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// DevicesScannedEvent is published after every device table scan.
type DevicesScannedEvent struct {
	Devices    int            `json:"devices" example:"3" doc:"Existing entries after the scan"`
	Counts     map[string]int `json:"counts,omitempty" doc:"Existing entries per category"`
	DurationMs float64        `json:"duration_ms" example:"12.5" doc:"Scan duration in milliseconds"`
	Error      string         `json:"error,omitempty" doc:"Scan failure, empty on success"`
	Timestamp  string         `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for DevicesScannedEvent.
func (e DevicesScannedEvent) Type() uint32 { return TypeDevicesScanned }

// DevicesInvalidatedEvent is published when the cached table is dropped.
type DevicesInvalidatedEvent struct {
	Reason    string `json:"reason" example:"hotplug" doc:"Why the cache was invalidated"`
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for DevicesInvalidatedEvent.
func (e DevicesInvalidatedEvent) Type() uint32 { return TypeDevicesInvalidated }

// HotplugEvent is a video4linux or media node appearing or disappearing.
type HotplugEvent struct {
	Action    string `json:"action" example:"add" doc:"Kernel action: add, remove, bind, unbind"`
	Subsystem string `json:"subsystem" example:"video4linux" doc:"Kernel subsystem"`
	NodePath  string `json:"node_path,omitempty" example:"/dev/video6" doc:"Device node, when the event carries one"`
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for HotplugEvent.
func (e HotplugEvent) Type() uint32 { return TypeHotplug }
