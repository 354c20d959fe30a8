package devices

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/smazurov/nxv4l2/internal/logging"
)

// ScanResult summarises one completed scan.
type ScanResult struct {
	Duration time.Duration
	Counts   map[Category]int
	Err      error
}

// Observer is notified after scans and invalidations. Callbacks run
// outside the registry lock and may call back into it.
type Observer interface {
	ScanCompleted(ScanResult)
	Invalidated(reason string)
}

// Registry resolves logical device identifiers to nodes. The table is
// built lazily by the first lookup and reused until Invalidate.
type Registry struct {
	mu        sync.RWMutex
	scanner   Scanner
	table     *Table
	cached    bool
	observers []Observer
	logger    *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithSysfs sets the filesystem the class directory and sensor records
// are read from. It must be rooted at the sysfs mount point.
func WithSysfs(fsys fs.FS) Option {
	return func(r *Registry) {
		r.scanner.sysfs = fsys
	}
}

// WithDevDir sets the directory device nodes live in.
func WithDevDir(dir string) Option {
	return func(r *Registry) {
		r.scanner.devDir = dir
	}
}

// WithFrameOpener sets how capture nodes are opened for probing.
func WithFrameOpener(open FrameOpener) Option {
	return func(r *Registry) {
		r.scanner.openFrames = open
	}
}

// WithObserver registers an observer.
func WithObserver(o Observer) Option {
	return func(r *Registry) {
		r.observers = append(r.observers, o)
	}
}

// WithLogger overrides the module logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
		r.scanner.logger = logger
	}
}

// NewRegistry creates a registry reading /sys and /dev unless overridden.
func NewRegistry(opts ...Option) *Registry {
	logger := logging.GetLogger("devices")
	r := &Registry{
		scanner: Scanner{
			sysfs:      os.DirFS("/sys"),
			devDir:     "/dev",
			openFrames: NewFrameOpener(0),
			logger:     logger,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconfigure applies options and invalidates the cached table.
func (r *Registry) Reconfigure(opts ...Option) {
	r.mu.Lock()
	for _, opt := range opts {
		opt(r)
	}
	r.mu.Unlock()
	r.Invalidate("reconfigured")
}

// load returns the cached table, scanning first when needed. Concurrent
// first callers scan exactly once.
func (r *Registry) load() (*Table, error) {
	r.mu.RLock()
	if r.cached {
		t := r.table
		r.mu.RUnlock()
		return t, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	if r.cached {
		t := r.table
		r.mu.Unlock()
		return t, nil
	}
	t, result := r.scanLocked(context.Background())
	r.mu.Unlock()

	r.notifyScan(result)
	return t, result.Err
}

func (r *Registry) scanLocked(ctx context.Context) (*Table, ScanResult) {
	start := time.Now()
	t, err := r.scanner.Scan(ctx)
	result := ScanResult{Duration: time.Since(start), Err: err}
	if err != nil {
		r.logger.Error("Device scan failed", "error", err)
		return nil, result
	}

	r.table = t
	r.cached = true
	result.Counts = t.Counts()
	r.logger.Info("Device scan completed", "duration", result.Duration, "devices", len(t.Existing()))
	return t, result
}

// Scan forces a rescan and swaps in the new table.
func (r *Registry) Scan(ctx context.Context) error {
	r.mu.Lock()
	_, result := r.scanLocked(ctx)
	r.mu.Unlock()

	r.notifyScan(result)
	return result.Err
}

// Invalidate drops the cached gate; the next lookup rescans. The last
// table stays in place until that scan replaces it.
func (r *Registry) Invalidate(reason string) {
	r.mu.Lock()
	wasCached := r.cached
	r.cached = false
	logger, observers := r.logger, r.observers
	r.mu.Unlock()

	logger.Debug("Device cache invalidated", "reason", reason, "was_cached", wasCached)
	for _, o := range observers {
		o.Invalidated(reason)
	}
}

// Cached reports whether a scanned table is current.
func (r *Registry) Cached() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cached
}

// notifyScan runs outside r.mu; Reconfigure may append observers
// concurrently, so it reads a snapshot.
func (r *Registry) notifyScan(result ScanResult) {
	r.mu.RLock()
	observers := r.observers
	r.mu.RUnlock()
	for _, o := range observers {
		o.ScanCompleted(result)
	}
}

// Lookup returns the entry at (cat, index). An absent device is not an
// error; check Entry.Exists.
func (r *Registry) Lookup(cat Category, index int) (Entry, error) {
	if err := checkSlot(cat, index); err != nil {
		return Entry{}, err
	}
	t, err := r.load()
	if err != nil {
		return Entry{}, err
	}
	return t.Get(cat, index)
}

// LookupName resolves a kernel-reported name such as "VIDEO CLIPPER1",
// falling back to the sensor whose name prefixes it.
func (r *Registry) LookupName(name string) (Slot, Entry, error) {
	t, err := r.load()
	if err != nil {
		return Slot{}, Entry{}, err
	}

	cat, index, err := Classify(name)
	slot := Slot{Category: cat, Index: index}
	switch {
	case errors.Is(err, ErrUnrecognized):
		var ok bool
		if slot, ok = t.matchSensor(trimName(name)); !ok {
			return Slot{}, Entry{}, fmt.Errorf("%w: %q", ErrNotFound, trimName(name))
		}
	case err != nil:
		return Slot{}, Entry{}, err
	}

	e, err := t.Get(slot.Category, slot.Index)
	if err != nil {
		return Slot{}, Entry{}, err
	}
	return slot, e, nil
}

// NodePath returns the device node of an existing entry.
func (r *Registry) NodePath(cat Category, index int) (string, error) {
	e, err := r.Lookup(cat, index)
	if err != nil {
		return "", err
	}
	if !e.Exists {
		return "", fmt.Errorf("%w: %s", ErrNotFound, Slot{Category: cat, Index: index})
	}
	return e.NodePath, nil
}

// ReverseLookup returns the slot a device node was discovered under.
func (r *Registry) ReverseLookup(nodePath string) (Slot, error) {
	t, err := r.load()
	if err != nil {
		return Slot{}, err
	}
	slot, ok := t.FindPath(nodePath)
	if !ok {
		return Slot{}, fmt.Errorf("%w: %s", ErrNotFound, nodePath)
	}
	return slot, nil
}

// Open opens the node at (cat, index) read-write and binds the control
// variant for its category. The CSI receiver is a single instance and
// always resolves to index 0. The caller owns the returned handle.
func (r *Registry) Open(cat Category, index int) (*Handle, error) {
	if cat == CSISubdev {
		index = 0
	}
	nodePath, err := r.NodePath(cat, index)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(nodePath, os.O_RDWR, 0)
	if err != nil {
		r.mu.RLock()
		logger := r.logger
		r.mu.RUnlock()
		logger.Warn("Failed to open device node", "node", nodePath, "error", err)
		return nil, fmt.Errorf("%w: %s: %w", ErrNoDevice, nodePath, err)
	}
	return newHandle(f, Slot{Category: cat, Index: index}), nil
}

// IsMIPI reports whether sensor index uses a MIPI interface. It is false
// when the sensor is absent or the scan failed.
func (r *Registry) IsMIPI(index int) bool {
	e, err := r.Lookup(SensorSubdev, index)
	return err == nil && e.Exists && e.IsMIPI
}

// IsInterlaced reports whether sensor index delivers interlaced frames.
func (r *Registry) IsInterlaced(index int) bool {
	e, err := r.Lookup(SensorSubdev, index)
	return err == nil && e.Exists && e.IsInterlaced
}

// Entries returns every existing entry in table order.
func (r *Registry) Entries() ([]SlotEntry, error) {
	t, err := r.load()
	if err != nil {
		return nil, err
	}
	return t.Existing(), nil
}

// VideoEntries returns the existing capture entries, carrying the
// sensor flags and name of their index.
func (r *Registry) VideoEntries() ([]SlotEntry, error) {
	t, err := r.load()
	if err != nil {
		return nil, err
	}
	return t.Existing(ClipperVideo, DecimatorVideo), nil
}

// CameraType returns the sensor flags behind a capture node.
func (r *Registry) CameraType(nodePath string) (mipi, interlaced bool, err error) {
	t, err := r.load()
	if err != nil {
		return false, false, err
	}
	slot, ok := t.FindPath(nodePath, ClipperVideo, DecimatorVideo)
	if !ok {
		return false, false, fmt.Errorf("%w: %s is not a capture node", ErrNotFound, nodePath)
	}
	sensor, _ := t.Get(SensorSubdev, slot.Index)
	return sensor.Exists && sensor.IsMIPI, sensor.Exists && sensor.IsInterlaced, nil
}
