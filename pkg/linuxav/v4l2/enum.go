//go:build linux

package v4l2

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// FrameSize returns the frame size at index for a pixel format. The
// driver signals the end of the enumeration with EINVAL, which is
// returned wrapped.
func (d *Device) FrameSize(pixelFormat, index uint32) (FrameSize, error) {
	frmsize := v4l2Frmsizeenum{
		index:       index,
		pixelFormat: pixelFormat,
	}
	if err := ioctl(d.fd, vidiocEnumFramesizes, unsafe.Pointer(&frmsize)); err != nil {
		return FrameSize{}, fmt.Errorf("VIDIOC_ENUM_FRAMESIZES index %d: %w", index, err)
	}

	if frmsize.typ == v4l2FrmsizeTypeDiscrete {
		w, h := frmsize.discrete()
		return FrameSize{Discrete: true, Width: w, Height: h, MinWidth: w, MinHeight: h}, nil
	}

	sw := frmsize.stepwise()
	return FrameSize{
		Width:     sw.maxWidth,
		Height:    sw.maxHeight,
		MinWidth:  sw.minWidth,
		MinHeight: sw.minHeight,
	}, nil
}

// FrameInterval returns the frame interval at index for a pixel format
// and size. For stepwise ranges the minimum interval is returned.
func (d *Device) FrameInterval(pixelFormat, width, height, index uint32) (Framerate, error) {
	frmival := v4l2Frmivalenum{
		index:       index,
		pixelFormat: pixelFormat,
		width:       width,
		height:      height,
	}
	if err := ioctl(d.fd, vidiocEnumFrameintervals, unsafe.Pointer(&frmival)); err != nil {
		return Framerate{}, fmt.Errorf("VIDIOC_ENUM_FRAMEINTERVALS %dx%d: %w", width, height, err)
	}
	f := frmival.fract()
	return Framerate{Numerator: f.numerator, Denominator: f.denominator}, nil
}

// Formats returns all pixel formats the node supports for a buffer type.
func (d *Device) Formats(bufType BufType) ([]FormatInfo, error) {
	var formats []FormatInfo

	for i := uint32(0); ; i++ {
		fmtdesc := v4l2Fmtdesc{
			index: i,
			typ:   uint32(bufType),
		}

		if err := ioctl(d.fd, vidiocEnumFmt, unsafe.Pointer(&fmtdesc)); err != nil {
			if errors.Is(err, unix.EINVAL) {
				break // End of enumeration
			}
			return nil, fmt.Errorf("failed to enumerate format %d: %w", i, err)
		}

		formats = append(formats, FormatInfo{
			PixelFormat: fmtdesc.pixelformat,
			FormatName:  cstr(fmtdesc.description[:]),
			Emulated:    fmtdesc.flags&v4l2FmtFlagEmulated != 0,
		})
	}

	return formats, nil
}

// FormatFourCC converts a 4-byte pixel format to a human-readable string.
func FormatFourCC(format uint32) string {
	b := make([]byte, 4)
	b[0] = byte(format & 0xFF)
	b[1] = byte((format >> 8) & 0xFF)
	b[2] = byte((format >> 16) & 0xFF)
	b[3] = byte((format >> 24) & 0xFF)
	return string(b)
}
