package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// swapHandler forwards to a replaceable inner handler so module loggers
// keep their identity when Initialize changes the output format.
type swapHandler struct {
	inner *atomic.Pointer[slog.Handler]
	ops   []func(slog.Handler) slog.Handler
}

func newSwapHandler(h slog.Handler) *swapHandler {
	p := &atomic.Pointer[slog.Handler]{}
	p.Store(&h)
	return &swapHandler{inner: p}
}

func (s *swapHandler) swap(h slog.Handler) {
	s.inner.Store(&h)
}

// current resolves the inner handler with the derived attrs and groups applied.
func (s *swapHandler) current() slog.Handler {
	h := *s.inner.Load()
	for _, op := range s.ops {
		h = op(h)
	}
	return h
}

func (s *swapHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return (*s.inner.Load()).Enabled(ctx, level)
}

func (s *swapHandler) Handle(ctx context.Context, r slog.Record) error {
	return s.current().Handle(ctx, r)
}

func (s *swapHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return s.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (s *swapHandler) WithGroup(name string) slog.Handler {
	return s.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (s *swapHandler) derive(op func(slog.Handler) slog.Handler) *swapHandler {
	ops := make([]func(slog.Handler) slog.Handler, len(s.ops), len(s.ops)+1)
	copy(ops, s.ops)
	return &swapHandler{inner: s.inner, ops: append(ops, op)}
}
