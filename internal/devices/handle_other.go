//go:build !linux

package devices

import "os"

// Handle is an open device node. Kernel control is only available on Linux.
type Handle struct {
	*os.File
	Slot Slot
}

func newHandle(f *os.File, slot Slot) *Handle {
	return &Handle{File: f, Slot: slot}
}
