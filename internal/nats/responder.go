package nats

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/smazurov/nxv4l2/internal/devices"
	"github.com/smazurov/nxv4l2/internal/metrics"
)

// Resolver is the part of the registry the responder serves.
type Resolver interface {
	Lookup(cat devices.Category, index int) (devices.Entry, error)
	LookupName(name string) (devices.Slot, devices.Entry, error)
	ReverseLookup(nodePath string) (devices.Slot, error)
}

// Responder answers lookup requests on SubjectDevicesLookup.
type Responder struct {
	url      string
	resolver Resolver
	conn     *nats.Conn
	sub      *nats.Subscription
	logger   *slog.Logger
	mu       sync.Mutex
}

// NewResponder creates a responder serving resolver.
func NewResponder(url string, resolver Resolver, logger *slog.Logger) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Responder{
		url:      url,
		resolver: resolver,
		logger:   logger.With("component", "nats-responder"),
	}
}

// Start connects and subscribes. Responders share a queue group, so
// several instances split the requests.
func (r *Responder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn != nil {
		return errors.New("nats responder already started")
	}

	conn, err := connect(r.url, "nxv4l2-responder", r.logger)
	if err != nil {
		return err
	}

	sub, err := conn.QueueSubscribe(SubjectDevicesLookup, "nxv4l2", r.handle)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", SubjectDevicesLookup, err)
	}

	r.conn = conn
	r.sub = sub
	r.logger.Info("NATS responder listening", "subject", SubjectDevicesLookup)
	return nil
}

func (r *Responder) handle(msg *nats.Msg) {
	resp := r.Resolve(msg.Data)
	data, err := marshal(resp)
	if err != nil {
		r.logger.Warn("Failed to marshal lookup response", "error", err)
		return
	}
	if err := msg.Respond(data); err != nil {
		r.logger.Warn("Failed to respond", "error", err)
	}
}

// Resolve decodes a request and looks it up.
func (r *Responder) Resolve(data []byte) LookupResponse {
	req, err := UnmarshalLookupRequest(data)
	if err != nil {
		return LookupResponse{Code: CodeBadRequest, Error: fmt.Sprintf("invalid request: %v", err)}
	}

	slot, entry, err := r.lookup(req)
	metrics.RecordLookup("nats", err)
	if err != nil {
		r.logger.Debug("Lookup failed", "request", string(data), "error", err)
		return LookupResponse{Code: errorCode(err), Error: err.Error()}
	}
	return LookupResponse{Slot: &slot, Entry: &entry}
}

func (r *Responder) lookup(req LookupRequest) (devices.Slot, devices.Entry, error) {
	switch {
	case req.Name != "":
		return r.resolver.LookupName(req.Name)

	case req.Path != "":
		slot, err := r.resolver.ReverseLookup(req.Path)
		if err != nil {
			return devices.Slot{}, devices.Entry{}, err
		}
		e, err := r.resolver.Lookup(slot.Category, slot.Index)
		return slot, e, err

	case req.Category != nil:
		slot := devices.Slot{Category: *req.Category, Index: req.Index}
		e, err := r.resolver.Lookup(slot.Category, slot.Index)
		return slot, e, err

	default:
		return devices.Slot{}, devices.Entry{}, fmt.Errorf("%w: request needs name, path or category", devices.ErrUnrecognized)
	}
}

// Stop unsubscribes and closes the connection.
func (r *Responder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sub != nil {
		_ = r.sub.Unsubscribe()
		r.sub = nil
	}
	if r.conn != nil {
		r.conn.Close()
		r.conn = nil
	}
}
