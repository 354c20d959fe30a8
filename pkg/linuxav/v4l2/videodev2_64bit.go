//go:build linux && (amd64 || arm64)

package v4l2

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// Compile-time struct size assertions.
// These will cause build failures if struct sizes don't match kernel expectations.
var (
	_ [208]byte = [unsafe.Sizeof(v4l2Format{})]byte{}
	_ [88]byte  = [unsafe.Sizeof(v4l2Buffer{})]byte{}
	_ [64]byte  = [unsafe.Sizeof(v4l2Plane{})]byte{}
	_ [32]byte  = [unsafe.Sizeof(v4l2ExtControls{})]byte{}
)

// IOCTL constants for 64-bit architectures.
const (
	vidiocGFmt      = 0xc0d05604
	vidiocSFmt      = 0xc0d05605
	vidiocQuerybuf  = 0xc0585609
	vidiocQbuf      = 0xc058560f
	vidiocDqbuf     = 0xc0585611
	vidiocGExtCtrls = 0xc0205647
	vidiocSExtCtrls = 0xc0205648
)

// v4l2Format has size 208 bytes. The union is 8-byte aligned because
// v4l2_window carries pointers.
type v4l2Format struct {
	typ uint32    // offset 0
	_   [4]byte   // offset 4
	fmt [200]byte // offset 8
}

// v4l2Buffer has size 88 bytes.
type v4l2Buffer struct {
	index     uint32       // offset 0
	typ       uint32       // offset 4
	bytesused uint32       // offset 8
	flags     uint32       // offset 12
	field     uint32       // offset 16
	timestamp unix.Timeval // offset 24
	timecode  v4l2Timecode // offset 40
	sequence  uint32       // offset 56
	memory    uint32       // offset 60
	m         uintptr      // offset 64 (offset, userptr, planes or fd)
	length    uint32       // offset 72
	reserved2 uint32       // offset 76
	requestFD int32        // offset 80
}

// v4l2Plane has size 64 bytes.
type v4l2Plane struct {
	bytesused  uint32     // offset 0
	length     uint32     // offset 4
	m          uintptr    // offset 8 (mem_offset, userptr or fd)
	dataOffset uint32     // offset 16
	reserved   [11]uint32 // offset 20
}

// v4l2ExtControls has size 32 bytes.
type v4l2ExtControls struct {
	which     uint32          // offset 0
	count     uint32          // offset 4
	errorIdx  uint32          // offset 8
	requestFD int32           // offset 12
	reserved  uint32          // offset 16
	controls  *v4l2ExtControl // offset 24
}
