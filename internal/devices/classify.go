package devices

import (
	"fmt"
	"strconv"
	"strings"
)

// namePrefixes is checked in order; the first match wins.
var namePrefixes = []struct {
	prefix   string
	category Category
}{
	{"nx-clipper", ClipperSubdev},
	{"nx-decimator", DecimatorSubdev},
	{"nx-csi", CSISubdev},
	{"VIDEO MPEGTS", MPEGTSVideo},
	{"VIDEO CLIPPER", ClipperVideo},
	{"VIDEO DECIMATOR", DecimatorVideo},
}

// trimName strips the newline and NUL padding sysfs attributes carry.
func trimName(raw string) string {
	return strings.Trim(raw, " \t\r\n\x00")
}

// SplitName splits a reported name into its leading non-digit prefix and
// the instance number that follows it.
func SplitName(raw string) (string, int, error) {
	name := trimName(raw)
	cut := strings.IndexAny(name, "0123456789")
	if cut < 0 {
		return name, 0, fmt.Errorf("%w: %q", ErrNoInstanceIndex, name)
	}

	prefix, rest := name[:cut], name[cut:]
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	index, err := strconv.Atoi(rest[:end])
	if err != nil {
		return prefix, 0, fmt.Errorf("%w: %q", ErrIndexOutOfRange, name)
	}
	return prefix, index, nil
}

// Classify maps a reported device name to its category and instance index.
func Classify(raw string) (Category, int, error) {
	prefix, index, splitErr := SplitName(raw)

	for _, p := range namePrefixes {
		if !strings.HasPrefix(prefix, p.prefix) {
			continue
		}
		if splitErr != nil {
			return p.category, 0, splitErr
		}
		return p.category, index, nil
	}
	return 0, 0, fmt.Errorf("%w: %q", ErrUnrecognized, trimName(raw))
}
