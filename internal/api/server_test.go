package api

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/smazurov/nxv4l2/internal/api/models"
	"github.com/smazurov/nxv4l2/internal/devices"
	"github.com/smazurov/nxv4l2/internal/events"
)

var errNoMoreSizes = errors.New("invalid argument")

// fixedFrames reports a single 1280x720 size at 30/15 fps.
type fixedFrames struct{}

func (fixedFrames) FrameSize(index uint32) (uint32, uint32, error) {
	if index > 0 {
		return 0, 0, errNoMoreSizes
	}
	return 1280, 720, nil
}

func (fixedFrames) FrameInterval(_, _, index uint32) (uint32, error) {
	if index == 0 {
		return 30, nil
	}
	return 15, nil
}

func (fixedFrames) Close() error { return nil }

func testSysfs() fstest.MapFS {
	return fstest.MapFS{
		"devices/platform/camerasensor0/info": {Data: []byte("is_mipi:1,interlaced:0,name:ov5640")},
		"class/video4linux/video6/name":       {Data: []byte("VIDEO CLIPPER0\n")},
		"class/video4linux/v4l-subdev0/name":  {Data: []byte("nx-csi0\n")},
		"class/video4linux/v4l-subdev1/name":  {Data: []byte("ov5640 0-003c\n")},
	}
}

func newTestRegistry(fsys fstest.MapFS) *devices.Registry {
	return devices.NewRegistry(
		devices.WithSysfs(fsys),
		devices.WithDevDir("/dev"),
		devices.WithFrameOpener(func(string) (devices.FrameSource, error) { return fixedFrames{}, nil }),
		devices.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func newTestServer(t *testing.T, opts *Options) *httptest.Server {
	t.Helper()
	if opts.Registry == nil {
		opts.Registry = newTestRegistry(testSysfs())
	}
	ts := httptest.NewServer(NewServer(opts).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, wantStatus int, out any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("GET %s: expected status %d, got %d: %s", url, wantStatus, resp.StatusCode, body)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
}

func TestListDevices(t *testing.T) {
	ts := newTestServer(t, &Options{})

	var data models.DeviceData
	getJSON(t, ts.URL+"/api/devices", http.StatusOK, &data)

	// v4l-subdev1 resolves onto the sensor slot through its name prefix
	if data.Count != 3 {
		t.Fatalf("Expected 3 devices, got %d: %+v", data.Count, data.Devices)
	}
	want := []string{"sensor-subdev", "csi-subdev", "clipper-video"}
	for i, d := range data.Devices {
		if d.Category != want[i] {
			t.Errorf("device %d: expected category %s, got %s", i, want[i], d.Category)
		}
	}
}

func TestGetDevice(t *testing.T) {
	ts := newTestServer(t, &Options{})

	var info models.DeviceInfo
	getJSON(t, ts.URL+"/api/devices/clipper-video/0", http.StatusOK, &info)

	if !info.Exists || info.NodePath != "/dev/video6" {
		t.Errorf("unexpected clipper entry: %+v", info)
	}
	if !info.IsMIPI || info.SensorName != "ov5640" {
		t.Errorf("sensor flags not inherited: %+v", info)
	}
	if len(info.Frames) != 1 || info.Frames[0].Width != 1280 || info.Frames[0].IntervalMin != 30 {
		t.Errorf("unexpected frames: %+v", info.Frames)
	}

	var absent models.DeviceInfo
	getJSON(t, ts.URL+"/api/devices/decimator-video/3", http.StatusOK, &absent)
	if absent.Exists || absent.NodePath != "" {
		t.Errorf("absent entry should be empty: %+v", absent)
	}
}

func TestGetDeviceBadRequests(t *testing.T) {
	ts := newTestServer(t, &Options{})

	getJSON(t, ts.URL+"/api/devices/clipper-video/12", http.StatusBadRequest, nil)
	getJSON(t, ts.URL+"/api/devices/clipper-video/-1", http.StatusBadRequest, nil)
	getJSON(t, ts.URL+"/api/sensors/40", http.StatusBadRequest, nil)

	resp, err := http.Get(ts.URL + "/api/devices/webcam/0")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode < 400 || resp.StatusCode >= 500 {
		t.Errorf("unknown category: expected a client error, got %d", resp.StatusCode)
	}
}

func TestGetSensor(t *testing.T) {
	ts := newTestServer(t, &Options{})

	var info models.DeviceInfo
	getJSON(t, ts.URL+"/api/sensors/0", http.StatusOK, &info)
	if info.Category != "sensor-subdev" || !info.IsMIPI || info.IsInterlaced || info.SensorName != "ov5640" {
		t.Errorf("unexpected sensor: %+v", info)
	}
}

func TestResolveName(t *testing.T) {
	ts := newTestServer(t, &Options{})

	tests := []struct {
		name     string
		query    string
		status   int
		category string
		index    int
	}{
		{name: "video node", query: "VIDEO%20CLIPPER0", status: http.StatusOK, category: "clipper-video", index: 0},
		{name: "subdev", query: "nx-csi0", status: http.StatusOK, category: "csi-subdev", index: 0},
		{name: "sensor fallback", query: "ov5640%200-003c", status: http.StatusOK, category: "sensor-subdev", index: 0},
		{name: "unknown", query: "foo-device3", status: http.StatusNotFound},
		{name: "no index", query: "VIDEO%20CLIPPER", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var info models.DeviceInfo
			var out any
			if tt.status == http.StatusOK {
				out = &info
			}
			getJSON(t, ts.URL+"/api/devices/resolve?name="+tt.query, tt.status, out)
			if tt.status != http.StatusOK {
				return
			}
			if info.Category != tt.category || info.Index != tt.index {
				t.Errorf("Expected %s[%d], got %s[%d]", tt.category, tt.index, info.Category, info.Index)
			}
		})
	}
}

func TestReverseLookup(t *testing.T) {
	ts := newTestServer(t, &Options{})

	var capture models.ReverseLookupData
	getJSON(t, ts.URL+"/api/devices/reverse?path=/dev/video6", http.StatusOK, &capture)
	if capture.Category != "clipper-video" || capture.Index != 0 {
		t.Errorf("unexpected slot: %+v", capture)
	}
	if capture.IsMIPI == nil || !*capture.IsMIPI || capture.IsInterlaced == nil || *capture.IsInterlaced {
		t.Errorf("capture node should carry sensor flags: %+v", capture)
	}

	var subdev models.ReverseLookupData
	getJSON(t, ts.URL+"/api/devices/reverse?path=/dev/v4l-subdev0", http.StatusOK, &subdev)
	if subdev.Category != "csi-subdev" || subdev.IsMIPI != nil {
		t.Errorf("unexpected subdev result: %+v", subdev)
	}

	getJSON(t, ts.URL+"/api/devices/reverse?path=/dev/video99", http.StatusNotFound, nil)
}

func TestScanFailureIsUnavailable(t *testing.T) {
	ts := newTestServer(t, &Options{Registry: newTestRegistry(fstest.MapFS{})})

	getJSON(t, ts.URL+"/api/devices", http.StatusServiceUnavailable, nil)
	getJSON(t, ts.URL+"/api/devices/clipper-video/0", http.StatusServiceUnavailable, nil)
}

func TestRescan(t *testing.T) {
	fsys := testSysfs()
	reg := newTestRegistry(fsys)
	ts := newTestServer(t, &Options{Registry: reg})

	getJSON(t, ts.URL+"/api/devices/decimator-video/1", http.StatusOK, nil)
	fsys["class/video4linux/video7/name"] = &fstest.MapFile{Data: []byte("VIDEO DECIMATOR1\n")}

	resp, err := http.Post(ts.URL+"/api/devices/rescan", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var data models.RescanData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		t.Fatal(err)
	}
	if data.Count != 4 || data.Counts["decimator-video"] != 1 {
		t.Errorf("unexpected rescan result: %+v", data)
	}

	var info models.DeviceInfo
	getJSON(t, ts.URL+"/api/devices/decimator-video/1", http.StatusOK, &info)
	if !info.Exists || info.NodePath != "/dev/video7" {
		t.Errorf("rescan did not pick up new node: %+v", info)
	}
}

func TestHealthAndVersion(t *testing.T) {
	ts := newTestServer(t, &Options{})

	var health models.HealthData
	getJSON(t, ts.URL+"/api/health", http.StatusOK, &health)
	if health.Status != "ok" || health.Cached {
		t.Errorf("unexpected health before first lookup: %+v", health)
	}

	var v models.VersionData
	getJSON(t, ts.URL+"/api/version", http.StatusOK, &v)
	if v.GoVersion == "" || v.Platform == "" {
		t.Errorf("version info incomplete: %+v", v)
	}
}

func TestBasicAuth(t *testing.T) {
	ts := newTestServer(t, &Options{AuthUsername: "admin", AuthPassword: "secret"})

	tests := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{name: "missing", status: http.StatusUnauthorized},
		{name: "wrong password", header: "Basic " + base64.StdEncoding.EncodeToString([]byte("admin:nope")), status: http.StatusUnauthorized},
		{name: "bearer", header: "Bearer token", status: http.StatusUnauthorized},
		{name: "header", header: "Basic " + base64.StdEncoding.EncodeToString([]byte("admin:secret")), status: http.StatusOK},
		{name: "query", query: "?auth=" + base64.StdEncoding.EncodeToString([]byte("admin:secret")), status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/devices"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, resp.StatusCode)
			}
		})
	}

	// health stays open
	getJSON(t, ts.URL+"/api/health", http.StatusOK, nil)
}

func TestMetricsEndpoint(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("nxv4l2_devices_scans_total 1\n"))
	})
	ts := newTestServer(t, &Options{PrometheusHandler: handler, AuthUsername: "a", AuthPassword: "b"})

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "scans_total") {
		t.Errorf("unexpected metrics response %d: %s", resp.StatusCode, body)
	}
}

func TestLogLevels(t *testing.T) {
	ts := newTestServer(t, &Options{})

	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/logging/devices", strings.NewReader(`{"level":"debug"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var data models.LogLevelsData
	getJSON(t, ts.URL+"/api/logging", http.StatusOK, &data)
	if data.Levels["devices"] != "debug" {
		t.Errorf("Expected devices at debug, got %v", data.Levels)
	}
}

func TestSSEDeviceEvents(t *testing.T) {
	bus := events.New()
	ts := newTestServer(t, &Options{EventBus: bus})

	// Headers are only flushed with the first event, and the handler
	// subscribes after it starts, so publish until one comes through.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				bus.Publish(events.HotplugEvent{Action: "add", Subsystem: "video4linux", NodePath: "/dev/video6"})
			}
		}
	}()

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(ts.URL + "/api/events")
	if err != nil {
		t.Fatalf("Failed to connect to SSE: %v", err)
	}
	defer resp.Body.Close()

	if !strings.Contains(resp.Header.Get("Content-Type"), "text/event-stream") {
		t.Fatalf("Expected SSE content type, got %s", resp.Header.Get("Content-Type"))
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event:") && !strings.Contains(line, "hotplug") {
			t.Errorf("unexpected event line: %s", line)
		}
		if strings.HasPrefix(line, "data:") {
			if !strings.Contains(line, `"node_path":"/dev/video6"`) {
				t.Errorf("unexpected data line: %s", line)
			}
			return
		}
	}
	t.Fatalf("stream ended without a hotplug event: %v", scanner.Err())
}
