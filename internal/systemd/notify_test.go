package systemd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/smazurov/nxv4l2/internal/devices"
)

type recorder struct {
	mu     sync.Mutex
	states []string
}

func (r *recorder) notify(state string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
	return true, nil
}

func (r *recorder) got() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.states...)
}

func newTestNotifier(r *recorder, interval time.Duration) *Notifier {
	n := NewNotifier(slog.New(slog.NewTextHandler(io.Discard, nil)))
	n.notify = r.notify
	n.watchdog = func() (time.Duration, error) { return interval, nil }
	return n
}

func TestNotifierStates(t *testing.T) {
	r := &recorder{}
	n := newTestNotifier(r, 0)

	n.Ready()
	n.ScanCompleted(devices.ScanResult{Counts: map[devices.Category]int{devices.ClipperVideo: 2, devices.SensorSubdev: 1}})
	n.ScanCompleted(devices.ScanResult{Err: errors.New("no class dir")})
	n.Invalidated("hotplug")
	n.Stopping()

	want := []string{"READY=1", "STATUS=3 devices", "STATUS=device scan failed: no class dir", "STOPPING=1"}
	got := r.got()
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("state %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestRunWatchdogDisabled(t *testing.T) {
	r := &recorder{}
	n := newTestNotifier(r, 0)

	done := make(chan struct{})
	go func() {
		n.RunWatchdog(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunWatchdog should return when the watchdog is off")
	}
}

func TestRunWatchdogPings(t *testing.T) {
	r := &recorder{}
	n := newTestNotifier(r, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	n.RunWatchdog(ctx)

	pings := 0
	for _, s := range r.got() {
		if s == "WATCHDOG=1" {
			pings++
		}
	}
	if pings < 2 {
		t.Errorf("Expected several watchdog pings, got %d", pings)
	}
}
