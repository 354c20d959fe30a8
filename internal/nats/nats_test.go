package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/smazurov/nxv4l2/internal/devices"
	"github.com/smazurov/nxv4l2/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func startServer(t *testing.T) *Server {
	t.Helper()
	s := NewServer(ServerOptions{Port: -1, Name: "test-server", Logger: testLogger()})
	require.NoError(t, s.Start())
	t.Cleanup(s.Stop)
	return s
}

// fakeResolver serves a single clipper at index 0 on /dev/video6.
type fakeResolver struct{}

var clipper = devices.Entry{Exists: true, DeviceName: "VIDEO CLIPPER0", NodePath: "/dev/video6"}

func (fakeResolver) Lookup(cat devices.Category, index int) (devices.Entry, error) {
	if !cat.Valid() {
		return devices.Entry{}, devices.ErrUnknownCategory
	}
	if index < 0 || index >= devices.MaxInstances {
		return devices.Entry{}, devices.ErrIndexOutOfRange
	}
	if cat == devices.ClipperVideo && index == 0 {
		return clipper, nil
	}
	return devices.Entry{}, nil
}

func (fakeResolver) LookupName(name string) (devices.Slot, devices.Entry, error) {
	if name == clipper.DeviceName {
		return devices.Slot{Category: devices.ClipperVideo}, clipper, nil
	}
	return devices.Slot{}, devices.Entry{}, fmt.Errorf("%w: %q", devices.ErrNotFound, name)
}

func (fakeResolver) ReverseLookup(nodePath string) (devices.Slot, error) {
	if nodePath == clipper.NodePath {
		return devices.Slot{Category: devices.ClipperVideo}, nil
	}
	return devices.Slot{}, devices.ErrNotFound
}

func TestServerStartStop(t *testing.T) {
	server := NewServer(ServerOptions{Port: -1, Name: "test-server", Logger: testLogger()})
	require.NoError(t, server.Start())

	assert.True(t, server.IsRunning())
	assert.NotEmpty(t, server.ClientURL())

	server.Stop()
	assert.False(t, server.IsRunning())
	assert.Equal(t, 0, server.NumClients())
}

func TestResolve(t *testing.T) {
	r := NewResponder("", fakeResolver{}, testLogger())
	cat := devices.ClipperVideo

	tests := []struct {
		name     string
		req      string
		wantCode string
		wantSlot *devices.Slot
	}{
		{"by name", `{"name":"VIDEO CLIPPER0"}`, "", &devices.Slot{Category: cat}},
		{"by path", `{"path":"/dev/video6"}`, "", &devices.Slot{Category: cat}},
		{"by slot", `{"category":"clipper-video","index":0}`, "", &devices.Slot{Category: cat}},
		{"unknown name", `{"name":"VIDEO CLIPPER9"}`, CodeNotFound, nil},
		{"unknown path", `{"path":"/dev/video0"}`, CodeNotFound, nil},
		{"bad category", `{"category":"camera","index":0}`, CodeBadRequest, nil},
		{"index out of range", `{"category":"clipper-video","index":40}`, CodeBadRequest, nil},
		{"empty", `{}`, CodeBadRequest, nil},
		{"malformed", `not json`, CodeBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := r.Resolve([]byte(tt.req))
			assert.Equal(t, tt.wantCode, resp.Code, resp.Error)
			if tt.wantSlot != nil {
				require.NotNil(t, resp.Slot)
				assert.Equal(t, *tt.wantSlot, *resp.Slot)
				require.NotNil(t, resp.Entry)
				assert.Equal(t, "/dev/video6", resp.Entry.NodePath)
			}
		})
	}
}

func TestResponderOverNATS(t *testing.T) {
	server := startServer(t)

	responder := NewResponder(server.ClientURL(), fakeResolver{}, testLogger())
	require.NoError(t, responder.Start())
	t.Cleanup(responder.Stop)

	client, err := Dial(server.ClientURL(), testLogger())
	require.NoError(t, err)
	t.Cleanup(client.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	resp, err := client.Lookup(ctx, LookupRequest{Name: "VIDEO CLIPPER0"})
	require.NoError(t, err)
	require.NotNil(t, resp.Entry)
	assert.Equal(t, "/dev/video6", resp.Entry.NodePath)

	cat := devices.SensorSubdev
	resp, err = client.Lookup(ctx, LookupRequest{Category: &cat, Index: 3})
	require.NoError(t, err)
	assert.False(t, resp.Entry.Exists)

	_, err = client.Lookup(ctx, LookupRequest{Path: "/dev/video0"})
	require.ErrorIs(t, err, devices.ErrNotFound)
}

func TestBridgePublishesEvents(t *testing.T) {
	server := startServer(t)
	bus := events.New()

	bridge := NewBridge(server.ClientURL(), bus, testLogger())
	require.NoError(t, bridge.Start())
	t.Cleanup(bridge.Stop)
	assert.True(t, bridge.IsConnected())
	require.Error(t, bridge.Start(), "second start must fail")

	sub, err := nats.Connect(server.ClientURL())
	require.NoError(t, err)
	t.Cleanup(sub.Close)

	msgs := make(chan *nats.Msg, 4)
	s, err := sub.ChanSubscribe(SubjectDevicesPrefix+".*", msgs)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Unsubscribe() })
	require.NoError(t, sub.Flush())

	bus.Publish(events.DevicesInvalidatedEvent{Reason: "hotplug"})

	select {
	case msg := <-msgs:
		assert.Equal(t, SubjectDevicesInvalidate, msg.Subject)
		var ev events.DevicesInvalidatedEvent
		require.NoError(t, json.Unmarshal(msg.Data, &ev))
		assert.Equal(t, "hotplug", ev.Reason)
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}

	bus.Publish(events.DevicesScannedEvent{Devices: 3})

	select {
	case msg := <-msgs:
		assert.Equal(t, SubjectDevicesScanned, msg.Subject)
	case <-time.After(2 * time.Second):
		t.Fatal("no scan message received")
	}
}

func TestBridgeConnectFailure(t *testing.T) {
	bridge := NewBridge("nats://127.0.0.1:1", events.New(), testLogger())
	require.Error(t, bridge.Start())
	assert.False(t, bridge.IsConnected())
	bridge.Stop()
}

func TestLookupResponseErr(t *testing.T) {
	assert.NoError(t, LookupResponse{}.Err())

	err := LookupResponse{Code: CodeNotFound, Error: "not found: x"}.Err()
	require.ErrorIs(t, err, devices.ErrNotFound)
	assert.Equal(t, "not found: x", err.Error())

	err = LookupResponse{Code: CodeUnavailable, Error: "scan failed"}.Err()
	require.Error(t, err)
	assert.False(t, errors.Is(err, devices.ErrNotFound))
}
