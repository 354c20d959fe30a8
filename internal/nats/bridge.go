package nats

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/smazurov/nxv4l2/internal/events"
)

// Bridge republishes registry events from the event bus on NATS.
type Bridge struct {
	url      string
	eventBus *events.Bus
	conn     *nats.Conn
	unsubs   []func()
	logger   *slog.Logger
	mu       sync.Mutex
}

// NewBridge creates a bridge from eventBus to the server at url.
func NewBridge(url string, eventBus *events.Bus, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}

	return &Bridge{
		url:      url,
		eventBus: eventBus,
		logger:   logger.With("component", "nats-bridge"),
	}
}

// Start connects and subscribes to the bus.
func (b *Bridge) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn != nil {
		return errors.New("nats bridge already started")
	}

	conn, err := connect(b.url, "nxv4l2-bridge", b.logger)
	if err != nil {
		return err
	}
	b.conn = conn
	b.logger.Info("NATS bridge connected", "url", b.url)

	b.unsubs = append(b.unsubs,
		b.eventBus.Subscribe(func(e events.DevicesScannedEvent) {
			b.publish(SubjectDevicesScanned, e)
		}),
		b.eventBus.Subscribe(func(e events.DevicesInvalidatedEvent) {
			b.publish(SubjectDevicesInvalidate, e)
		}),
		b.eventBus.Subscribe(func(e events.HotplugEvent) {
			b.publish(SubjectDevicesHotplug, e)
		}),
	)
	return nil
}

func (b *Bridge) publish(subject string, v any) {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()
	if conn == nil {
		return
	}

	data, err := marshal(v)
	if err != nil {
		b.logger.Warn("Failed to marshal event", "subject", subject, "error", err)
		return
	}
	if err := conn.Publish(subject, data); err != nil {
		b.logger.Warn("Failed to publish event", "subject", subject, "error", err)
		return
	}
	b.logger.Debug("Published event", "subject", subject)
}

// Stop unsubscribes from the bus and closes the connection.
func (b *Bridge) Stop() {
	b.mu.Lock()
	unsubs, conn := b.unsubs, b.conn
	b.unsubs, b.conn = nil, nil
	b.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
	if conn != nil {
		conn.Close()
	}
	b.logger.Info("NATS bridge stopped")
}

// IsConnected reports whether the bridge holds a live connection.
func (b *Bridge) IsConnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn != nil && b.conn.IsConnected()
}

// connect dials url with reconnects enabled and connection state logged.
func connect(url, name string, logger *slog.Logger) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name(name),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("NATS reconnected")
		}),
	)
}
