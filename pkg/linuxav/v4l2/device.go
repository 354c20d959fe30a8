//go:build linux

package v4l2

import (
	"bytes"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Device is an open V4L2 node.
type Device struct {
	path string
	fd   int
}

// Open opens a node read-write for streaming and control.
func Open(path string) (*Device, error) {
	return openDevice(path, unix.O_RDWR)
}

// OpenReadOnly opens a node for enumeration only.
func OpenReadOnly(path string) (*Device, error) {
	return openDevice(path, unix.O_RDONLY)
}

func openDevice(path string, flags int) (*Device, error) {
	fd, err := unix.Open(path, flags|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return &Device{path: path, fd: fd}, nil
}

// Path returns the node path the device was opened from.
func (d *Device) Path() string {
	return d.path
}

// Fd returns the underlying file descriptor.
func (d *Device) Fd() int {
	return d.fd
}

// Close releases the file descriptor.
func (d *Device) Close() error {
	if d.fd < 0 {
		return nil
	}
	err := unix.Close(d.fd)
	d.fd = -1
	return err
}

// QueryCap returns the driver capabilities.
func (d *Device) QueryCap() (Capability, error) {
	var c v4l2Capability
	if err := ioctl(d.fd, vidiocQuerycap, unsafe.Pointer(&c)); err != nil {
		return Capability{}, fmt.Errorf("VIDIOC_QUERYCAP on %s: %w", d.path, err)
	}
	caps := c.capabilities
	if caps&v4l2CapDeviceCaps != 0 {
		caps = c.deviceCaps
	}
	return Capability{
		Driver:       cstr(c.driver[:]),
		Card:         cstr(c.card[:]),
		BusInfo:      cstr(c.busInfo[:]),
		Capabilities: caps,
	}, nil
}

const v4l2CapDeviceCaps = 0x80000000

// cstr converts a null-terminated byte slice to a Go string.
func cstr(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}
