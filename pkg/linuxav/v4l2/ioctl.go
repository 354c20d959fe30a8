//go:build linux

package v4l2

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

func ioctl(fd int, req uint, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// ioctlInt passes an int argument by pointer, as VIDIOC_STREAMON expects.
func ioctlInt(fd int, req uint, value int32) error {
	return ioctl(fd, req, unsafe.Pointer(&value))
}
