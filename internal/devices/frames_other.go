//go:build !linux

package devices

import "fmt"

// NewFrameOpener returns a FrameOpener that always fails; frame
// enumeration needs V4L2.
func NewFrameOpener(uint32) FrameOpener {
	return func(nodePath string) (FrameSource, error) {
		return nil, fmt.Errorf("%w: %s: frame enumeration requires linux", ErrNoDevice, nodePath)
	}
}
