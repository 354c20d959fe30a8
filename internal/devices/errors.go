package devices

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a lookup matches no discovered device.
	ErrNotFound = errors.New("device not found")
	// ErrNoDevice is returned when an entry exists but its node cannot be opened.
	ErrNoDevice = errors.New("no such device")
	// ErrUnknownCategory is returned for a category outside the known set.
	ErrUnknownCategory = errors.New("unknown device category")
	// ErrIndexOutOfRange is returned for an instance index outside [0, MaxInstances).
	ErrIndexOutOfRange = errors.New("instance index out of range")
	// ErrUnrecognized is returned by the classifier for an unknown name prefix.
	ErrUnrecognized = errors.New("unrecognized device name")
	// ErrNoInstanceIndex is returned for a name without a trailing instance number.
	ErrNoInstanceIndex = errors.New("device name has no instance index")
	// ErrSensorAbsent is returned for a sensor record reporting "no exist".
	ErrSensorAbsent = errors.New("camera sensor absent")
	// ErrMalformedMetadata is wrapped by every MetadataError.
	ErrMalformedMetadata = errors.New("malformed sensor metadata")
	// ErrIntervalProbe is returned when a frame interval query fails mid-probe.
	ErrIntervalProbe = errors.New("frame interval probe failed")
)

// MetadataError describes where a sensor info record deviates from
// is_mipi:<0|1>,interlaced:<0|1>,name:<string>.
type MetadataError struct {
	Field  string
	Value  string
	Reason string
}

func (e *MetadataError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: field %q: %s", ErrMalformedMetadata, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: field %q: %s (got %q)", ErrMalformedMetadata, e.Field, e.Reason, e.Value)
}

func (e *MetadataError) Unwrap() error {
	return ErrMalformedMetadata
}
