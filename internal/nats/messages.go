package nats

import (
	"encoding/json"
	"errors"

	"github.com/smazurov/nxv4l2/internal/devices"
)

// Subjects.
const (
	SubjectDevicesPrefix     = "nxv4l2.devices"
	SubjectDevicesScanned    = SubjectDevicesPrefix + ".scanned"
	SubjectDevicesInvalidate = SubjectDevicesPrefix + ".invalidated"
	SubjectDevicesHotplug    = SubjectDevicesPrefix + ".hotplug"
	SubjectDevicesLookup     = SubjectDevicesPrefix + ".lookup"
)

// Lookup error codes carried in LookupResponse.Code.
const (
	CodeNotFound    = "not_found"
	CodeBadRequest  = "bad_request"
	CodeUnavailable = "unavailable"
)

// LookupRequest selects an entry by kernel name, by node path, or by
// category and index, tried in that order.
type LookupRequest struct {
	Name     string            `json:"name,omitempty"`
	Path     string            `json:"path,omitempty"`
	Category *devices.Category `json:"category,omitempty"`
	Index    int               `json:"index,omitempty"`
}

// LookupResponse answers a LookupRequest. Code and Error are set on
// failure.
type LookupResponse struct {
	Slot  *devices.Slot  `json:"slot,omitempty"`
	Entry *devices.Entry `json:"entry,omitempty"`
	Code  string         `json:"code,omitempty"`
	Error string         `json:"error,omitempty"`
}

// Err converts a failed response back into an error wrapping the
// matching devices sentinel.
func (r LookupResponse) Err() error {
	if r.Code == "" {
		return nil
	}
	var base error
	switch r.Code {
	case CodeNotFound:
		base = devices.ErrNotFound
	case CodeBadRequest:
		base = devices.ErrUnrecognized
	default:
		base = errors.New(r.Code)
	}
	return &remoteError{base: base, msg: r.Error}
}

type remoteError struct {
	base error
	msg  string
}

func (e *remoteError) Error() string { return e.msg }
func (e *remoteError) Unwrap() error { return e.base }

// errorCode classifies a registry error for the wire.
func errorCode(err error) string {
	switch {
	case errors.Is(err, devices.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, devices.ErrUnknownCategory),
		errors.Is(err, devices.ErrIndexOutOfRange),
		errors.Is(err, devices.ErrNoInstanceIndex),
		errors.Is(err, devices.ErrUnrecognized):
		return CodeBadRequest
	default:
		return CodeUnavailable
	}
}

func marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// UnmarshalLookupRequest decodes a lookup request.
func UnmarshalLookupRequest(data []byte) (LookupRequest, error) {
	var req LookupRequest
	err := json.Unmarshal(data, &req)
	return req, err
}

// UnmarshalLookupResponse decodes a lookup response.
func UnmarshalLookupResponse(data []byte) (LookupResponse, error) {
	var resp LookupResponse
	err := json.Unmarshal(data, &resp)
	return resp, err
}
