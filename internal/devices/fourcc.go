package devices

import "fmt"

// ParseFourCC packs a four character code such as "NV12" into the
// little-endian pixel format value V4L2 uses. Shorter codes are padded
// with spaces; the empty string is 0.
func ParseFourCC(s string) (uint32, error) {
	if s == "" {
		return 0, nil
	}
	if len(s) > 4 {
		return 0, fmt.Errorf("invalid fourcc %q: longer than 4 characters", s)
	}
	var v uint32
	for i := range 4 {
		c := byte(' ')
		if i < len(s) {
			c = s[i]
		}
		if c < 0x20 || c > 0x7e {
			return 0, fmt.Errorf("invalid fourcc %q: non-printable character", s)
		}
		v |= uint32(c) << (8 * i)
	}
	return v, nil
}
