//go:build linux

package v4l2

import (
	"fmt"
	"runtime"
	"time"
	"unsafe"
)

// VideoControl issues the plain VIDIOC_* variants on a video node. It
// runs either in multi-planar DMA-BUF mode or, when created with
// NewMMAPVideoControl, in single-planar MMAP capture mode.
type VideoControl struct {
	ctrlFD
	bufType BufType
	memory  Memory
}

// NewVideoControl binds a video node in multi-planar DMA-BUF mode.
func NewVideoControl(fd int, bufType BufType) *VideoControl {
	return &VideoControl{ctrlFD: ctrlFD{fd: fd}, bufType: bufType, memory: MemoryDMABuf}
}

// NewMMAPVideoControl binds a video node in single-planar MMAP capture mode.
func NewMMAPVideoControl(fd int) *VideoControl {
	return &VideoControl{ctrlFD: ctrlFD{fd: fd}, bufType: BufTypeVideoCapture, memory: MemoryMMAP}
}

// BufType returns the queue this control operates on.
func (v *VideoControl) BufType() BufType {
	return v.bufType
}

// Memory returns the buffer memory model.
func (v *VideoControl) Memory() Memory {
	return v.memory
}

// SetFormat sets width, height, pixel format and field order.
func (v *VideoControl) SetFormat(f Format) error {
	vf := v4l2Format{typ: uint32(v.bufType)}
	if v.bufType.IsMultiPlanar() {
		mp := vf.pixMP()
		mp.width, mp.height, mp.pixelformat, mp.field = f.Width, f.Height, f.PixelFormat, uint32(f.Field)
	} else {
		p := vf.pix()
		p.width, p.height, p.pixelformat, p.field = f.Width, f.Height, f.PixelFormat, uint32(f.Field)
	}
	if err := ioctl(v.fd, vidiocSFmt, unsafe.Pointer(&vf)); err != nil {
		return fmt.Errorf("VIDIOC_S_FMT (%s): %w", v.bufType, err)
	}
	return nil
}

// SetPlaneFormat sets a multi-planar format with explicit per-plane
// strides and sizes. The field order is always progressive.
func (v *VideoControl) SetPlaneFormat(f Format, planes []PlaneFormat) error {
	if !v.bufType.IsMultiPlanar() {
		return ErrNotSupported
	}
	if len(planes) > MaxPlanes {
		return fmt.Errorf("%w: %d > %d", ErrTooManyPlanes, len(planes), MaxPlanes)
	}

	vf := v4l2Format{typ: uint32(v.bufType)}
	mp := vf.pixMP()
	mp.width, mp.height, mp.pixelformat = f.Width, f.Height, f.PixelFormat
	mp.field = uint32(FieldNone)
	mp.numPlanes = uint8(len(planes))
	for i, p := range planes {
		mp.planeFmt[i].sizeimage = p.SizeImage
		mp.planeFmt[i].bytesperline = p.BytesPerLine
	}
	if err := ioctl(v.fd, vidiocSFmt, unsafe.Pointer(&vf)); err != nil {
		return fmt.Errorf("VIDIOC_S_FMT (%d planes): %w", len(planes), err)
	}
	return nil
}

// GetFormat reads the current format.
func (v *VideoControl) GetFormat() (Format, error) {
	vf := v4l2Format{typ: uint32(v.bufType)}
	if err := ioctl(v.fd, vidiocGFmt, unsafe.Pointer(&vf)); err != nil {
		return Format{}, fmt.Errorf("VIDIOC_G_FMT (%s): %w", v.bufType, err)
	}
	if v.bufType.IsMultiPlanar() {
		mp := vf.pixMP()
		return Format{Width: mp.width, Height: mp.height, PixelFormat: mp.pixelformat, Field: Field(mp.field)}, nil
	}
	p := vf.pix()
	return Format{Width: p.width, Height: p.height, PixelFormat: p.pixelformat, Field: Field(p.field)}, nil
}

// SetCrop sets the crop rectangle.
func (v *VideoControl) SetCrop(r Rect) error {
	crop := v4l2Crop{typ: uint32(v.bufType), c: toRect(r)}
	if err := ioctl(v.fd, vidiocSCrop, unsafe.Pointer(&crop)); err != nil {
		return fmt.Errorf("VIDIOC_S_CROP: %w", err)
	}
	return nil
}

// GetCrop reads the crop rectangle.
func (v *VideoControl) GetCrop() (Rect, error) {
	crop := v4l2Crop{typ: uint32(v.bufType)}
	if err := ioctl(v.fd, vidiocGCrop, unsafe.Pointer(&crop)); err != nil {
		return Rect{}, fmt.Errorf("VIDIOC_G_CROP: %w", err)
	}
	return fromRect(crop.c), nil
}

// SetSelection sets the crop target selection.
func (v *VideoControl) SetSelection(r Rect) error {
	sel := v4l2Selection{typ: uint32(v.bufType), target: v4l2SelTgtCrop, r: toRect(r)}
	if err := ioctl(v.fd, vidiocSSelection, unsafe.Pointer(&sel)); err != nil {
		return fmt.Errorf("VIDIOC_S_SELECTION: %w", err)
	}
	return nil
}

// GetSelection reads the crop target selection.
func (v *VideoControl) GetSelection() (Rect, error) {
	sel := v4l2Selection{typ: uint32(v.bufType), target: v4l2SelTgtCrop}
	if err := ioctl(v.fd, vidiocGSelection, unsafe.Pointer(&sel)); err != nil {
		return Rect{}, fmt.Errorf("VIDIOC_G_SELECTION: %w", err)
	}
	return fromRect(sel.r), nil
}

// RequestBuffers allocates count buffers. A count of zero frees them.
func (v *VideoControl) RequestBuffers(count uint32) error {
	req := v4l2Requestbuffers{
		count:  count,
		typ:    uint32(v.bufType),
		memory: uint32(v.memory),
	}
	if err := ioctl(v.fd, vidiocReqbufs, unsafe.Pointer(&req)); err != nil {
		return fmt.Errorf("VIDIOC_REQBUFS count %d: %w", count, err)
	}
	return nil
}

// QueryBuffer returns the mmap offset and length of a buffer.
// Only available in MMAP mode.
func (v *VideoControl) QueryBuffer(index uint32) (BufferInfo, error) {
	if v.memory != MemoryMMAP {
		return BufferInfo{}, ErrNotSupported
	}
	buf := v4l2Buffer{
		index:  index,
		typ:    uint32(v.bufType),
		memory: uint32(v.memory),
	}
	if err := ioctl(v.fd, vidiocQuerybuf, unsafe.Pointer(&buf)); err != nil {
		return BufferInfo{}, fmt.Errorf("VIDIOC_QUERYBUF index %d: %w", index, err)
	}
	return BufferInfo{Index: buf.index, Offset: uint32(buf.m), Length: buf.length}, nil
}

// QueueBuffer enqueues a buffer. In DMA-BUF mode planes carries one
// descriptor per plane; in MMAP mode it must be empty.
func (v *VideoControl) QueueBuffer(index uint32, planes []Plane) error {
	buf := v4l2Buffer{
		index:  index,
		typ:    uint32(v.bufType),
		memory: uint32(v.memory),
	}

	var kplanes []v4l2Plane
	if v.bufType.IsMultiPlanar() {
		if err := checkPlanes(len(planes)); err != nil {
			return err
		}
		kplanes = make([]v4l2Plane, len(planes))
		for i, p := range planes {
			kplanes[i].m = uintptr(p.FD)
			kplanes[i].length = p.Length
		}
		buf.m = uintptr(unsafe.Pointer(&kplanes[0]))
		buf.length = uint32(len(kplanes))
	}

	err := ioctl(v.fd, vidiocQbuf, unsafe.Pointer(&buf))
	runtime.KeepAlive(kplanes)
	if err != nil {
		return fmt.Errorf("VIDIOC_QBUF index %d: %w", index, err)
	}
	return nil
}

// DequeueBuffer blocks until a filled buffer is available and returns
// its index and capture timestamp. numPlanes is ignored in MMAP mode.
func (v *VideoControl) DequeueBuffer(numPlanes int) (Buffer, error) {
	buf := v4l2Buffer{
		typ:    uint32(v.bufType),
		memory: uint32(v.memory),
	}

	var kplanes []v4l2Plane
	if v.bufType.IsMultiPlanar() {
		if err := checkPlanes(numPlanes); err != nil {
			return Buffer{}, err
		}
		kplanes = make([]v4l2Plane, numPlanes)
		buf.m = uintptr(unsafe.Pointer(&kplanes[0]))
		buf.length = uint32(numPlanes)
	}

	err := ioctl(v.fd, vidiocDqbuf, unsafe.Pointer(&buf))
	runtime.KeepAlive(kplanes)
	if err != nil {
		return Buffer{}, fmt.Errorf("VIDIOC_DQBUF: %w", err)
	}

	out := Buffer{
		Index:     buf.index,
		Sequence:  buf.sequence,
		BytesUsed: buf.bytesused,
		Timestamp: time.Unix(buf.timestamp.Unix()),
	}
	if len(kplanes) > 0 {
		out.BytesUsed = kplanes[0].bytesused
	}
	return out, nil
}

// StreamOn starts the queue.
func (v *VideoControl) StreamOn() error {
	if err := ioctlInt(v.fd, vidiocStreamon, int32(v.bufType)); err != nil {
		return fmt.Errorf("VIDIOC_STREAMON (%s): %w", v.bufType, err)
	}
	return nil
}

// StreamOff stops the queue and returns all buffers to the application.
func (v *VideoControl) StreamOff() error {
	if err := ioctlInt(v.fd, vidiocStreamoff, int32(v.bufType)); err != nil {
		return fmt.Errorf("VIDIOC_STREAMOFF (%s): %w", v.bufType, err)
	}
	return nil
}

// SetParm sets the frame period of the queue.
func (v *VideoControl) SetParm(timePerFrame Framerate) error {
	parm := v4l2Streamparm{typ: uint32(v.bufType)}
	cp := parm.captureparm()
	cp.timeperframe = v4l2Fract{numerator: timePerFrame.Numerator, denominator: timePerFrame.Denominator}
	if err := ioctl(v.fd, vidiocSParm, unsafe.Pointer(&parm)); err != nil {
		return fmt.Errorf("VIDIOC_S_PARM %d/%d: %w", timePerFrame.Numerator, timePerFrame.Denominator, err)
	}
	return nil
}

// GetParm reads the frame period of the queue.
func (v *VideoControl) GetParm() (Framerate, error) {
	parm := v4l2Streamparm{typ: uint32(v.bufType)}
	if err := ioctl(v.fd, vidiocGParm, unsafe.Pointer(&parm)); err != nil {
		return Framerate{}, fmt.Errorf("VIDIOC_G_PARM: %w", err)
	}
	tpf := parm.captureparm().timeperframe
	return Framerate{Numerator: tpf.numerator, Denominator: tpf.denominator}, nil
}

func checkPlanes(n int) error {
	if n < 1 {
		return ErrNoPlanes
	}
	if n > MaxPlanes {
		return fmt.Errorf("%w: %d > %d", ErrTooManyPlanes, n, MaxPlanes)
	}
	return nil
}

var (
	_ Control  = (*SubdevControl)(nil)
	_ Control  = (*VideoControl)(nil)
	_ Streamer = (*VideoControl)(nil)
)
