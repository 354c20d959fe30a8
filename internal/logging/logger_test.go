package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func reset() {
	mu.Lock()
	defer mu.Unlock()
	loggers = make(map[string]*slog.Logger)
	levels = make(map[string]*slog.LevelVar)
	outputs = make(map[string]*swapHandler)
	config = Config{}
	initialized = false
}

func TestModuleLevelOverride(t *testing.T) {
	reset()
	Initialize(Config{
		Level:  "info",
		Format: "text",
		Modules: map[string]string{
			"devices": "debug",
			"api":     "warn",
		},
	})

	tests := []struct {
		module    string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"devices", true, true, true},
		{"api", false, false, true},
		{"hotplug", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			h := GetLogger(tt.module).Handler()
			ctx := context.Background()

			if got := h.Enabled(ctx, slog.LevelDebug); got != tt.wantDebug {
				t.Errorf("module %q: Debug enabled = %v, want %v", tt.module, got, tt.wantDebug)
			}
			if got := h.Enabled(ctx, slog.LevelInfo); got != tt.wantInfo {
				t.Errorf("module %q: Info enabled = %v, want %v", tt.module, got, tt.wantInfo)
			}
			if got := h.Enabled(ctx, slog.LevelWarn); got != tt.wantWarn {
				t.Errorf("module %q: Warn enabled = %v, want %v", tt.module, got, tt.wantWarn)
			}
		})
	}
}

func TestGetLoggerBeforeInitialize(t *testing.T) {
	reset()

	before := GetLogger("devices")
	if before.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("logger created before Initialize should default to info")
	}

	Initialize(Config{Level: "info", Modules: map[string]string{"devices": "debug"}})

	if GetLogger("devices") != before {
		t.Error("logger should be cached across Initialize")
	}
	if !before.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("cached logger should follow the level set by Initialize")
	}
}

func TestSetLevel(t *testing.T) {
	reset()
	Initialize(Config{Level: "info"})

	logger := GetLogger("nats")
	if !SetLevel("nats", "error") {
		t.Fatal("SetLevel rejected a valid level")
	}
	if logger.Handler().Enabled(context.Background(), slog.LevelWarn) {
		t.Error("warn should be disabled after SetLevel(error)")
	}
	if SetLevel("nats", "loud") {
		t.Error("SetLevel accepted an invalid level")
	}
	if got := Levels()["nats"]; got != "error" {
		t.Errorf("Levels()[nats] = %q, want error", got)
	}
}

func TestInvalidGlobalLevelFallsBackToInfo(t *testing.T) {
	reset()
	Initialize(Config{Level: "chatty", Modules: map[string]string{"api": "nonsense"}})

	h := GetLogger("api").Handler()
	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should be disabled")
	}
	if !h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be enabled")
	}
}

func TestMultiHandlerDebugOutput(t *testing.T) {
	var buf bytes.Buffer

	debugHandler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	infoHandler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})

	logger := slog.New(NewMultiHandler(debugHandler, infoHandler)).With("module", "test")
	logger.Debug("debug only message")
	logger.Info("info message")

	output := buf.String()
	if n := strings.Count(output, "debug only message"); n != 1 {
		t.Errorf("expected 1 debug message, got %d. Output: %s", n, output)
	}
	if n := strings.Count(output, "info message"); n != 2 {
		t.Errorf("expected 2 info messages, got %d. Output: %s", n, output)
	}
	if !strings.Contains(output, "module=test") {
		t.Errorf("attrs not propagated through MultiHandler. Output: %s", output)
	}
}

func TestAddAttrToFields(t *testing.T) {
	fields := map[string]string{}

	addAttrToFields(fields, slog.String("node", "/dev/video0"), nil)
	addAttrToFields(fields, slog.Int("index", 3), []string{"slot"})
	addAttrToFields(fields, slog.Bool("mipi", true), nil)
	addAttrToFields(fields, slog.Group("sensor", slog.String("name", "ov5640")), nil)
	addAttrToFields(fields, slog.Attr{}, nil)

	want := map[string]string{
		"NODE":        "/dev/video0",
		"SLOT_INDEX":  "3",
		"MIPI":        "true",
		"SENSOR_NAME": "ov5640",
	}
	if len(fields) != len(want) {
		t.Errorf("fields = %v, want %v", fields, want)
	}
	for k, v := range want {
		if fields[k] != v {
			t.Errorf("fields[%q] = %q, want %q", k, fields[k], v)
		}
	}
}

func TestParseLevelValues(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
		ok    bool
	}{
		{"debug", slog.LevelDebug, true},
		{"DEBUG", slog.LevelDebug, true},
		{"info", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"invalid", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parseLevel(tt.input)
			if ok != tt.ok || got != tt.want {
				t.Errorf("parseLevel(%q) = %v, %v, want %v, %v", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func usesJSON(h slog.Handler) bool {
	switch h := h.(type) {
	case *slog.JSONHandler:
		return true
	case *MultiHandler:
		for _, inner := range h.handlers {
			if usesJSON(inner) {
				return true
			}
		}
	}
	return false
}

func TestInitializeSwapsFormatOfCachedLoggers(t *testing.T) {
	reset()
	Initialize(Config{Level: "info", Format: "text"})

	before := GetLogger("registry")
	sh, ok := before.Handler().(*swapHandler)
	if !ok {
		t.Fatalf("module handler is %T, want *swapHandler", before.Handler())
	}
	if usesJSON(sh.current()) {
		t.Fatal("text format should not produce a JSON handler")
	}

	Initialize(Config{Level: "info", Format: "json"})

	if GetLogger("registry") != before {
		t.Fatal("logger should be cached across Initialize")
	}
	if !usesJSON(sh.current()) {
		t.Error("cached logger should switch to JSON output after Initialize")
	}
}

func TestSwapHandlerKeepsAttrs(t *testing.T) {
	var first, second bytes.Buffer
	sh := newSwapHandler(slog.NewTextHandler(&first, nil))
	logger := slog.New(sh).With("module", "nats").WithGroup("req")

	logger.Info("one", "id", 1)
	sh.swap(slog.NewJSONHandler(&second, nil))
	logger.Info("two", "id", 2)

	if !strings.Contains(first.String(), "module=nats") || !strings.Contains(first.String(), "req.id=1") {
		t.Errorf("text output = %q", first.String())
	}
	if strings.Contains(first.String(), "two") {
		t.Error("record logged after swap reached the old handler")
	}
	if !strings.Contains(second.String(), `"module":"nats"`) || !strings.Contains(second.String(), `"req":{"id":2}`) {
		t.Errorf("json output = %q", second.String())
	}
}
