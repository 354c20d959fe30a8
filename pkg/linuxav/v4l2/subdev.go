//go:build linux

package v4l2

import (
	"fmt"
	"unsafe"
)

// SubdevControl issues the VIDIOC_SUBDEV_* variants on pad 0 of a
// sub-device, always against the ACTIVE configuration.
type SubdevControl struct {
	ctrlFD
}

// NewSubdevControl binds a sub-device file descriptor.
func NewSubdevControl(fd int) *SubdevControl {
	return &SubdevControl{ctrlFD{fd: fd}}
}

// SetFormat sets the media bus format. PixelFormat is the bus code.
func (s *SubdevControl) SetFormat(f Format) error {
	sf := v4l2SubdevFormat{which: v4l2SubdevFormatActive}
	sf.format.width = f.Width
	sf.format.height = f.Height
	sf.format.code = f.PixelFormat
	sf.format.field = uint32(f.Field)
	if f.Field == FieldAny {
		sf.format.field = uint32(FieldNone)
	}
	if err := ioctl(s.fd, vidiocSubdevSFmt, unsafe.Pointer(&sf)); err != nil {
		return fmt.Errorf("VIDIOC_SUBDEV_S_FMT: %w", err)
	}
	return nil
}

// GetFormat reads the active media bus format.
func (s *SubdevControl) GetFormat() (Format, error) {
	sf := v4l2SubdevFormat{which: v4l2SubdevFormatActive}
	if err := ioctl(s.fd, vidiocSubdevGFmt, unsafe.Pointer(&sf)); err != nil {
		return Format{}, fmt.Errorf("VIDIOC_SUBDEV_G_FMT: %w", err)
	}
	return Format{
		Width:       sf.format.width,
		Height:      sf.format.height,
		PixelFormat: sf.format.code,
		Field:       Field(sf.format.field),
	}, nil
}

// SetCrop sets the active crop rectangle.
func (s *SubdevControl) SetCrop(r Rect) error {
	crop := v4l2SubdevCrop{which: v4l2SubdevFormatActive, rect: toRect(r)}
	if err := ioctl(s.fd, vidiocSubdevSCrop, unsafe.Pointer(&crop)); err != nil {
		return fmt.Errorf("VIDIOC_SUBDEV_S_CROP: %w", err)
	}
	return nil
}

// GetCrop reads the active crop rectangle.
func (s *SubdevControl) GetCrop() (Rect, error) {
	crop := v4l2SubdevCrop{which: v4l2SubdevFormatActive}
	if err := ioctl(s.fd, vidiocSubdevGCrop, unsafe.Pointer(&crop)); err != nil {
		return Rect{}, fmt.Errorf("VIDIOC_SUBDEV_G_CROP: %w", err)
	}
	return fromRect(crop.rect), nil
}

// SetSelection sets the crop target selection.
func (s *SubdevControl) SetSelection(r Rect) error {
	sel := v4l2SubdevSelection{
		which:  v4l2SubdevFormatActive,
		target: v4l2SelTgtCrop,
		r:      toRect(r),
	}
	if err := ioctl(s.fd, vidiocSubdevSSelection, unsafe.Pointer(&sel)); err != nil {
		return fmt.Errorf("VIDIOC_SUBDEV_S_SELECTION: %w", err)
	}
	return nil
}

// GetSelection reads the crop target selection.
func (s *SubdevControl) GetSelection() (Rect, error) {
	sel := v4l2SubdevSelection{
		which:  v4l2SubdevFormatActive,
		target: v4l2SelTgtCrop,
	}
	if err := ioctl(s.fd, vidiocSubdevGSelection, unsafe.Pointer(&sel)); err != nil {
		return Rect{}, fmt.Errorf("VIDIOC_SUBDEV_G_SELECTION: %w", err)
	}
	return fromRect(sel.r), nil
}

func toRect(r Rect) v4l2Rect {
	return v4l2Rect{left: r.Left, top: r.Top, width: r.Width, height: r.Height}
}

func fromRect(r v4l2Rect) Rect {
	return Rect{Left: r.left, Top: r.top, Width: r.width, Height: r.height}
}
