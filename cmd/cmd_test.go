package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/smazurov/nxv4l2/internal/config"
	"github.com/smazurov/nxv4l2/internal/devices"
	"github.com/smazurov/nxv4l2/internal/nats"
)

var errNoMoreSizes = errors.New("invalid argument")

type oneFrame struct{}

func (oneFrame) FrameSize(index uint32) (uint32, uint32, error) {
	if index > 0 {
		return 0, 0, errNoMoreSizes
	}
	return 720, 480, nil
}

func (oneFrame) FrameInterval(_, _, _ uint32) (uint32, error) { return 30, nil }
func (oneFrame) Close() error                                 { return nil }

func testRegistry() *devices.Registry {
	fsys := fstest.MapFS{
		"devices/platform/camerasensor1/info": {Data: []byte("is_mipi:0,interlaced:1,name:tw9900")},
		"class/video4linux/video3/name":       {Data: []byte("VIDEO DECIMATOR1\n")},
		"class/video4linux/v4l-subdev2/name":  {Data: []byte("nx-clipper1\n")},
	}
	return devices.NewRegistry(
		devices.WithSysfs(fsys),
		devices.WithDevDir("/dev"),
		devices.WithFrameOpener(func(string) (devices.FrameSource, error) { return oneFrame{}, nil }),
		devices.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func TestRunList(t *testing.T) {
	var buf bytes.Buffer
	if err := runList(&buf, testRegistry(), false, false); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"CATEGORY", "sensor-subdev", "clipper-subdev", "decimator-video", "/dev/video3", "720x480", "tw9900"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := runList(&buf, testRegistry(), true, false); err != nil {
		t.Fatal(err)
	}
	if lines := strings.Split(strings.TrimSpace(buf.String()), "\n"); len(lines) != 2 {
		t.Errorf("Expected header and one video entry, got:\n%s", buf.String())
	}
}

func TestRunListJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := runList(&buf, testRegistry(), true, true); err != nil {
		t.Fatal(err)
	}

	var entries []struct {
		Category     string `json:"category"`
		Index        int    `json:"index"`
		NodePath     string `json:"node_path"`
		IsInterlaced bool   `json:"is_interlaced"`
	}
	if err := json.Unmarshal(buf.Bytes(), &entries); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if len(entries) != 1 || entries[0].Category != "decimator-video" || entries[0].Index != 1 || !entries[0].IsInterlaced {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestRunResolve(t *testing.T) {
	var buf bytes.Buffer
	if err := runResolve(&buf, testRegistry(), "nx-clipper1"); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "clipper-subdev 1 /dev/v4l-subdev2\n" {
		t.Errorf("unexpected output %q", got)
	}

	err := runResolve(&buf, testRegistry(), "VIDEO CLIPPER1")
	if err != nil {
		t.Fatalf("absent but valid name should resolve: %v", err)
	}

	if err := runResolve(&buf, testRegistry(), "uvcvideo"); !errors.Is(err, devices.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRunPath(t *testing.T) {
	var buf bytes.Buffer
	if err := runPath(&buf, testRegistry(), "decimator-video", "1"); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "/dev/video3\n" {
		t.Errorf("unexpected output %q", got)
	}

	tests := []struct {
		cat, index string
		want       error
	}{
		{"decimator-video", "0", devices.ErrNotFound},
		{"decimator-video", "x", devices.ErrIndexOutOfRange},
		{"decimator-video", "12", devices.ErrIndexOutOfRange},
		{"webcam", "0", devices.ErrUnknownCategory},
	}
	for _, tt := range tests {
		if err := runPath(&buf, testRegistry(), tt.cat, tt.index); !errors.Is(err, tt.want) {
			t.Errorf("path %s %s: expected %v, got %v", tt.cat, tt.index, tt.want, err)
		}
	}
}

func TestRunReverse(t *testing.T) {
	var buf bytes.Buffer
	if err := runReverse(&buf, testRegistry(), "/dev/video3"); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "decimator-video 1 mipi=false interlaced=true\n" {
		t.Errorf("unexpected output %q", got)
	}

	buf.Reset()
	if err := runReverse(&buf, testRegistry(), "/dev/v4l-subdev2"); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "clipper-subdev 1\n" {
		t.Errorf("unexpected output %q", got)
	}

	if err := runReverse(&buf, testRegistry(), "/dev/video0"); !errors.Is(err, devices.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRunRemoteResolve(t *testing.T) {
	srv := nats.NewServer(nats.ServerOptions{Port: -1, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	if err := srv.Start(); err != nil {
		t.Fatal(err)
	}
	defer srv.Stop()

	responder := nats.NewResponder(srv.ClientURL(), testRegistry(), nil)
	if err := responder.Start(); err != nil {
		t.Fatal(err)
	}
	defer responder.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var buf bytes.Buffer
	if err := runRemoteResolve(ctx, &buf, srv.ClientURL(), "VIDEO DECIMATOR1"); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "decimator-video 1 /dev/video3\n" {
		t.Errorf("unexpected output %q", got)
	}

	if err := runRemoteResolve(ctx, &buf, srv.ClientURL(), "uvcvideo"); !errors.Is(err, devices.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRegistryOptions(t *testing.T) {
	opts := &config.Options{DevicesSysfsRoot: t.TempDir(), DevicesDevDir: "/dev", DevicesProbePixelFormat: "NV12"}
	regOpts, err := RegistryOptions(opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(regOpts) != 3 {
		t.Errorf("Expected 3 options, got %d", len(regOpts))
	}

	opts.DevicesProbePixelFormat = "TOOLONG"
	if _, err := RegistryOptions(opts); err == nil {
		t.Error("Expected error for invalid fourcc")
	}
}
