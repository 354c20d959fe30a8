//go:build linux

package devices

import (
	"os"

	"github.com/smazurov/nxv4l2/pkg/linuxav/v4l2"
)

// Handle is an open device node with the control variant its category
// requires. Streamer is nil for sub-devices.
type Handle struct {
	*os.File
	Slot     Slot
	Control  v4l2.Control
	Streamer v4l2.Streamer
}

func newHandle(f *os.File, slot Slot) *Handle {
	h := &Handle{File: f, Slot: slot}
	fd := int(f.Fd())

	switch {
	case slot.Category.IsSubdev():
		h.Control = v4l2.NewSubdevControl(fd)
	default:
		vc := v4l2.NewVideoControl(fd, BufType(slot.Category))
		h.Control, h.Streamer = vc, vc
	}
	return h
}

// OpenMMAP rebinds the handle to single-planar MMAP capture. It fails
// for sub-devices.
func (h *Handle) OpenMMAP() (*v4l2.VideoControl, error) {
	if h.Slot.Category.IsSubdev() {
		return nil, v4l2.ErrNotSupported
	}
	vc := v4l2.NewMMAPVideoControl(int(h.Fd()))
	h.Control, h.Streamer = vc, vc
	return vc, nil
}

// BufType maps a video category to its queue: capture nodes stream
// multi-planar capture, everything else multi-planar output.
func BufType(cat Category) v4l2.BufType {
	if cat.IsCapture() {
		return v4l2.BufTypeVideoCaptureMPlane
	}
	return v4l2.BufTypeVideoOutputMPlane
}
