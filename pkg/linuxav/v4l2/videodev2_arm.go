//go:build linux && arm && !arm64

package v4l2

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// Compile-time struct size assertions for 32-bit ARM.
// These will cause build failures if struct sizes don't match kernel expectations.
var (
	_ [204]byte = [unsafe.Sizeof(v4l2Format{})]byte{}
	_ [68]byte  = [unsafe.Sizeof(v4l2Buffer{})]byte{}
	_ [60]byte  = [unsafe.Sizeof(v4l2Plane{})]byte{}
	_ [24]byte  = [unsafe.Sizeof(v4l2ExtControls{})]byte{}
)

// IOCTL constants for 32-bit ARM.
// Note: only the pointer-carrying structs differ from 64-bit.
const (
	vidiocGFmt      = 0xc0cc5604
	vidiocSFmt      = 0xc0cc5605
	vidiocQuerybuf  = 0xc0445609
	vidiocQbuf      = 0xc044560f
	vidiocDqbuf     = 0xc0445611
	vidiocGExtCtrls = 0xc0185647
	vidiocSExtCtrls = 0xc0185648
)

// v4l2Format has size 204 bytes on 32-bit.
type v4l2Format struct {
	typ uint32    // offset 0
	fmt [200]byte // offset 4
}

// v4l2Buffer has size 68 bytes on 32-bit.
type v4l2Buffer struct {
	index     uint32       // offset 0
	typ       uint32       // offset 4
	bytesused uint32       // offset 8
	flags     uint32       // offset 12
	field     uint32       // offset 16
	timestamp unix.Timeval // offset 20
	timecode  v4l2Timecode // offset 28
	sequence  uint32       // offset 44
	memory    uint32       // offset 48
	m         uintptr      // offset 52
	length    uint32       // offset 56
	reserved2 uint32       // offset 60
	requestFD int32        // offset 64
}

// v4l2Plane has size 60 bytes on 32-bit.
type v4l2Plane struct {
	bytesused  uint32
	length     uint32
	m          uintptr
	dataOffset uint32
	reserved   [11]uint32
}

// v4l2ExtControls has size 24 bytes on 32-bit.
type v4l2ExtControls struct {
	which     uint32
	count     uint32
	errorIdx  uint32
	requestFD int32
	reserved  uint32
	controls  *v4l2ExtControl
}
