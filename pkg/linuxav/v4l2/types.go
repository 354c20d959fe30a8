//go:build linux

package v4l2

import (
	"errors"
	"time"
)

// Common pixel formats.
const (
	PixFmtYUYV   = 0x56595559 // 'YUYV'
	PixFmtMJPEG  = 0x47504A4D // 'MJPG'
	PixFmtNV12   = 0x3231564E // 'NV12'
	PixFmtYUV420 = 0x32315559 // 'YU12'
	PixFmtH264   = 0x34363248 // 'H264'
)

// Media bus codes used on sub-device pads.
const (
	MbusFmtUYVY8_2X8 = 0x2006
	MbusFmtYUYV8_2X8 = 0x2008
)

// MaxPlanes is the most planes a multi-planar buffer may carry.
const MaxPlanes = 3

// BufType selects the queue a video node operation applies to.
type BufType uint32

// Buffer types.
const (
	BufTypeVideoCapture       BufType = 1
	BufTypeVideoOutput        BufType = 2
	BufTypeVideoCaptureMPlane BufType = 9
	BufTypeVideoOutputMPlane  BufType = 10
)

// IsMultiPlanar reports whether the buffer type uses the _MPLANE layouts.
func (t BufType) IsMultiPlanar() bool {
	return t == BufTypeVideoCaptureMPlane || t == BufTypeVideoOutputMPlane
}

// IsCapture reports whether the buffer type is a capture queue.
func (t BufType) IsCapture() bool {
	return t == BufTypeVideoCapture || t == BufTypeVideoCaptureMPlane
}

func (t BufType) String() string {
	switch t {
	case BufTypeVideoCapture:
		return "capture"
	case BufTypeVideoOutput:
		return "output"
	case BufTypeVideoCaptureMPlane:
		return "capture-mplane"
	case BufTypeVideoOutputMPlane:
		return "output-mplane"
	default:
		return "unknown"
	}
}

// Memory is the buffer memory model.
type Memory uint32

// Memory models.
const (
	MemoryMMAP    Memory = 1
	MemoryUserPtr Memory = 2
	MemoryDMABuf  Memory = 4
)

// Field is the field order of a frame.
type Field uint32

// Field orders. FieldAny lets the driver choose.
const (
	FieldAny        Field = 0
	FieldNone       Field = 1
	FieldInterlaced Field = 4
)

// Format is a negotiated frame format. On sub-devices PixelFormat carries
// the media bus code.
type Format struct {
	Width       uint32
	Height      uint32
	PixelFormat uint32
	Field       Field
}

// PlaneFormat is the per-plane layout of a multi-planar format.
type PlaneFormat struct {
	SizeImage    uint32
	BytesPerLine uint32
}

// Rect is a crop or selection rectangle.
type Rect struct {
	Left   int32
	Top    int32
	Width  uint32
	Height uint32
}

// Plane describes one DMA-BUF backed plane of a queued buffer.
type Plane struct {
	FD     int
	Length uint32
}

// Buffer is a dequeued buffer.
type Buffer struct {
	Index     uint32
	Sequence  uint32
	BytesUsed uint32
	Timestamp time.Time
}

// BufferInfo is the mapping information of an MMAP buffer.
type BufferInfo struct {
	Index  uint32
	Offset uint32
	Length uint32
}

// Capability is the result of VIDIOC_QUERYCAP.
type Capability struct {
	Driver       string
	Card         string
	BusInfo      string
	Capabilities uint32
}

// FormatInfo contains information about a supported pixel format.
type FormatInfo struct {
	PixelFormat uint32
	FormatName  string
	Emulated    bool
}

// FrameSize is one entry of a frame size enumeration. For stepwise and
// continuous ranges Width and Height hold the maximum bounds.
type FrameSize struct {
	Discrete  bool
	Width     uint32
	Height    uint32
	MinWidth  uint32
	MinHeight uint32
}

// Framerate represents a supported framerate as a fraction.
type Framerate struct {
	Numerator   uint32
	Denominator uint32
}

// FPS returns the framerate as frames per second.
func (f Framerate) FPS() float64 {
	if f.Numerator == 0 {
		return 0
	}
	return float64(f.Denominator) / float64(f.Numerator)
}

var (
	// ErrNotSupported is returned by operations the node kind cannot perform.
	ErrNotSupported = errors.New("v4l2: operation not supported on this node")
	// ErrTooManyPlanes is returned when a buffer carries more than MaxPlanes planes.
	ErrTooManyPlanes = errors.New("v4l2: too many planes")
	// ErrNoPlanes is returned when a multi-planar buffer is queued without planes.
	ErrNoPlanes = errors.New("v4l2: no planes")
)
