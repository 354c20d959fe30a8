package devices

import "fmt"

// FrameInfo is one supported capture size.
type FrameInfo struct {
	Index    int      `json:"index"`
	Width    uint32   `json:"width"`
	Height   uint32   `json:"height"`
	Interval Interval `json:"interval"`
}

// Interval holds the frame interval denominators reported at the min
// and max enumeration sub-indices.
type Interval struct {
	Min uint32 `json:"min"`
	Max uint32 `json:"max"`
}

// FrameEnumerator answers frame size and interval queries for one node.
type FrameEnumerator interface {
	FrameSize(index uint32) (width, height uint32, err error)
	FrameInterval(width, height, index uint32) (denominator uint32, err error)
}

// FrameSource is an open FrameEnumerator.
type FrameSource interface {
	FrameEnumerator
	Close() error
}

// FrameOpener opens a node for frame enumeration.
type FrameOpener func(nodePath string) (FrameSource, error)

const (
	intervalMin = 0
	intervalMax = 1
)

// ProbeFrames enumerates frame sizes from index 0 until the device
// rejects one or limit entries are collected. A failed interval query
// drops that size, stops the probe and returns the sizes gathered so far
// together with an error wrapping ErrIntervalProbe.
func ProbeFrames(e FrameEnumerator, limit int) ([]FrameInfo, error) {
	var frames []FrameInfo

	for i := 0; i < limit; i++ {
		w, h, err := e.FrameSize(uint32(i))
		if err != nil {
			break // End of enumeration
		}

		f := FrameInfo{Index: i, Width: w, Height: h}
		for sub, dst := range []*uint32{intervalMin: &f.Interval.Min, intervalMax: &f.Interval.Max} {
			den, err := e.FrameInterval(w, h, uint32(sub))
			if err != nil {
				return frames, fmt.Errorf("%w: %dx%d sub-index %d: %w", ErrIntervalProbe, w, h, sub, err)
			}
			*dst = den
		}
		frames = append(frames, f)
	}

	return frames, nil
}
