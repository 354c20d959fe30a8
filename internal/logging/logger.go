package logging

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Identifier tags every journal record written by this process.
const Identifier = "nxv4l2"

var (
	mu           sync.RWMutex
	loggers      = make(map[string]*slog.Logger)
	levels       = make(map[string]*slog.LevelVar)
	outputs      = make(map[string]*swapHandler)
	config       Config
	initialized  bool
	defaultLevel = &slog.LevelVar{}
)

// Config represents logging configuration.
type Config struct {
	Level   string            `toml:"level"`
	Format  string            `toml:"format"`
	Modules map[string]string `toml:"modules"`
}

// Initialize sets the global and per-module levels and swaps the output
// handler under every module logger handed out so far.
func Initialize(cfg Config) {
	mu.Lock()
	defer mu.Unlock()

	config = cfg
	initialized = true
	defaultLevel.Set(levelFor(cfg, ""))

	for module, lv := range levels {
		lv.Set(levelFor(cfg, module))
		outputs[module].swap(newHandler(cfg.Format, lv))
	}
	slog.SetDefault(slog.New(newHandler(cfg.Format, defaultLevel)))
}

// GetLogger returns the logger for a module, creating it if needed.
// Loggers obtained before Initialize follow the level and format it sets.
func GetLogger(module string) *slog.Logger {
	mu.RLock()
	logger, ok := loggers[module]
	mu.RUnlock()
	if ok {
		return logger
	}

	mu.Lock()
	defer mu.Unlock()
	if logger, ok := loggers[module]; ok {
		return logger
	}

	lv := &slog.LevelVar{}
	format := "text"
	if initialized {
		lv.Set(levelFor(config, module))
		format = config.Format
	}

	out := newSwapHandler(newHandler(format, lv))
	logger = slog.New(out).With("module", module)
	loggers[module] = logger
	levels[module] = lv
	outputs[module] = out
	return logger
}

// SetLevel changes a module level at runtime. It reports false when the
// level string is not recognised.
func SetLevel(module, level string) bool {
	l, ok := parseLevel(level)
	if !ok {
		return false
	}
	GetLogger(module)

	mu.Lock()
	defer mu.Unlock()
	levels[module].Set(l)
	return true
}

// Levels returns the current level of every known module.
func Levels() map[string]string {
	mu.RLock()
	defer mu.RUnlock()
	out := make(map[string]string, len(levels))
	for module, lv := range levels {
		out[module] = strings.ToLower(lv.Level().String())
	}
	return out
}

func levelFor(cfg Config, module string) slog.Level {
	if s, ok := cfg.Modules[module]; ok && module != "" {
		if l, ok := parseLevel(s); ok {
			return l
		}
	}
	if l, ok := parseLevel(cfg.Level); ok {
		return l
	}
	return slog.LevelInfo
}

// newHandler writes to stdout when something is attached to it and to the
// journal when journald is running.
func newHandler(format string, level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}

	var stdout slog.Handler
	if format == "json" {
		stdout = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		stdout = slog.NewTextHandler(os.Stdout, opts)
	}

	var handlers []slog.Handler
	if isStdoutAvailable() {
		handlers = append(handlers, stdout)
	}
	if IsJournalAvailable() {
		handlers = append(handlers, NewJournalHandler(level))
	}

	switch len(handlers) {
	case 0:
		return stdout
	case 1:
		return handlers[0]
	default:
		return NewMultiHandler(handlers...)
	}
}

// isStdoutAvailable reports whether stdout is open and attached to a
// terminal, pipe, socket or file.
func isStdoutAvailable() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	mode := fi.Mode()
	return mode&(os.ModeCharDevice|os.ModeNamedPipe|os.ModeSocket) != 0 || mode.IsRegular()
}

func parseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return 0, false
	}
}
