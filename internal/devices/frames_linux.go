//go:build linux

package devices

import "github.com/smazurov/nxv4l2/pkg/linuxav/v4l2"

// nodeFrames enumerates a capture node for one pixel format.
type nodeFrames struct {
	dev         *v4l2.Device
	pixelFormat uint32
}

func (n nodeFrames) FrameSize(index uint32) (uint32, uint32, error) {
	fs, err := n.dev.FrameSize(n.pixelFormat, index)
	return fs.Width, fs.Height, err
}

func (n nodeFrames) FrameInterval(width, height, index uint32) (uint32, error) {
	fr, err := n.dev.FrameInterval(n.pixelFormat, width, height, index)
	return fr.Denominator, err
}

func (n nodeFrames) Close() error {
	return n.dev.Close()
}

// NewFrameOpener returns a FrameOpener that enumerates nodes through
// VIDIOC_ENUM_FRAMESIZES for pixelFormat.
func NewFrameOpener(pixelFormat uint32) FrameOpener {
	return func(nodePath string) (FrameSource, error) {
		dev, err := v4l2.OpenReadOnly(nodePath)
		if err != nil {
			return nil, err
		}
		return nodeFrames{dev: dev, pixelFormat: pixelFormat}, nil
	}
}
