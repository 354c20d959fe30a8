package devices

import (
	"fmt"
	"strings"
)

// Category is the role a device plays in the capture pipeline.
type Category int

// Categories, in table order.
const (
	SensorSubdev Category = iota
	ClipperSubdev
	DecimatorSubdev
	CSISubdev
	ClipperVideo
	DecimatorVideo
	MPEGTSVideo

	NumCategories
)

var categoryNames = [NumCategories]string{
	SensorSubdev:    "sensor-subdev",
	ClipperSubdev:   "clipper-subdev",
	DecimatorSubdev: "decimator-subdev",
	CSISubdev:       "csi-subdev",
	ClipperVideo:    "clipper-video",
	DecimatorVideo:  "decimator-video",
	MPEGTSVideo:     "mpegts-video",
}

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c >= 0 && c < NumCategories
}

// IsSubdev reports whether the category is configured through the
// sub-device ioctls rather than a buffer queue.
func (c Category) IsSubdev() bool {
	return c >= SensorSubdev && c <= CSISubdev
}

// IsCapture reports whether the category is a live capture video node
// whose frame sizes are probed during a scan.
func (c Category) IsCapture() bool {
	return c == ClipperVideo || c == DecimatorVideo
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
	return []byte(categoryNames[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCategory parses a category name such as "clipper-video".
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range categoryNames {
		if name == s {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Categories returns every category in table order.
func Categories() []Category {
	cats := make([]Category, NumCategories)
	for i := range cats {
		cats[i] = Category(i)
	}
	return cats
}
