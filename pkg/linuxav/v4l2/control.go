//go:build linux

package v4l2

import (
	"encoding/binary"
	"fmt"
	"runtime"
	"unsafe"
)

// Control negotiates formats, crops and controls on an open node.
// SubdevControl and VideoControl implement it; which one applies depends
// on the node kind, not on the caller.
type Control interface {
	SetFormat(f Format) error
	GetFormat() (Format, error)
	SetCrop(r Rect) error
	GetCrop() (Rect, error)
	SetSelection(r Rect) error
	GetSelection() (Rect, error)
	SetCtrl(id uint32, value int32) error
	GetCtrl(id uint32) (int32, error)
	SetExtCtrl(id uint32, payload []byte) error
	GetExtCtrl(id uint32, payload []byte) error
}

// Streamer drives the buffer queue of a video node.
type Streamer interface {
	SetPlaneFormat(f Format, planes []PlaneFormat) error
	RequestBuffers(count uint32) error
	QueryBuffer(index uint32) (BufferInfo, error)
	QueueBuffer(index uint32, planes []Plane) error
	DequeueBuffer(numPlanes int) (Buffer, error)
	StreamOn() error
	StreamOff() error
	SetParm(timePerFrame Framerate) error
}

// ctrlFD implements the control ioctls, which are the same on every node kind.
type ctrlFD struct {
	fd int
}

// SetCtrl sets a simple integer control.
func (c ctrlFD) SetCtrl(id uint32, value int32) error {
	ctrl := v4l2Control{id: id, value: value}
	if err := ioctl(c.fd, vidiocSCtrl, unsafe.Pointer(&ctrl)); err != nil {
		return fmt.Errorf("VIDIOC_S_CTRL 0x%08x: %w", id, err)
	}
	return nil
}

// GetCtrl reads a simple integer control.
func (c ctrlFD) GetCtrl(id uint32) (int32, error) {
	ctrl := v4l2Control{id: id}
	if err := ioctl(c.fd, vidiocGCtrl, unsafe.Pointer(&ctrl)); err != nil {
		return 0, fmt.Errorf("VIDIOC_G_CTRL 0x%08x: %w", id, err)
	}
	return ctrl.value, nil
}

// SetExtCtrl sets a pointer-payload extended control.
func (c ctrlFD) SetExtCtrl(id uint32, payload []byte) error {
	return c.extCtrl(vidiocSExtCtrls, id, payload)
}

// GetExtCtrl reads a pointer-payload extended control into payload.
// The control size is len(payload).
func (c ctrlFD) GetExtCtrl(id uint32, payload []byte) error {
	return c.extCtrl(vidiocGExtCtrls, id, payload)
}

func (c ctrlFD) extCtrl(req uint, id uint32, payload []byte) error {
	if len(payload) == 0 {
		return fmt.Errorf("extended control 0x%08x: empty payload", id)
	}

	// The kernel reads the payload through a raw pointer; keep it off the stack.
	buf := make([]byte, len(payload))
	copy(buf, payload)

	ctrl := &v4l2ExtControl{id: id, size: uint32(len(buf))}
	putPointer(ctrl.value[:], uintptr(unsafe.Pointer(&buf[0])))

	ctrls := v4l2ExtControls{
		which:    v4l2CtrlWhichCurVal,
		count:    1,
		controls: ctrl,
	}
	err := ioctl(c.fd, req, unsafe.Pointer(&ctrls))
	runtime.KeepAlive(buf)
	if err != nil {
		return fmt.Errorf("extended control 0x%08x: %w", id, err)
	}

	if req == vidiocGExtCtrls {
		copy(payload, buf)
	}
	return nil
}

func putPointer(b []byte, p uintptr) {
	if unsafe.Sizeof(p) == 8 {
		binary.NativeEndian.PutUint64(b, uint64(p))
		return
	}
	binary.NativeEndian.PutUint32(b, uint32(p))
}
