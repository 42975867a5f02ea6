package logging

import (
	"context"
	"errors"
	"log/slog"
)

// FieldSessionID identifies one daemon run across every log destination.
const FieldSessionID = "session_id"

// runHandler stamps each record with the daemon session id and with the
// room, epoch, and correlation id carried by the record's context. Context
// fields already bound through WithContext are not repeated.
type runHandler struct {
	base      slog.Handler
	sessionID string
	bound     map[string]bool
}

func newRunHandler(base slog.Handler, sessionID string) slog.Handler {
	if base == nil {
		return NoopHandler{}
	}
	return &runHandler{base: base, sessionID: sessionID}
}

func (h *runHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *runHandler) Handle(ctx context.Context, record slog.Record) error {
	if h.sessionID != "" {
		record.AddAttrs(slog.String(FieldSessionID, h.sessionID))
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return h.base.Handle(ctx, record)
	}
	present := make(map[string]bool, record.NumAttrs())
	record.Attrs(func(attr slog.Attr) bool {
		present[attr.Key] = true
		return true
	})
	for _, field := range fields {
		if h.bound[field.Key] || present[field.Key] {
			continue
		}
		record.AddAttrs(field)
	}
	return h.base.Handle(ctx, record)
}

func (h *runHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	bound := make(map[string]bool, len(h.bound)+len(attrs))
	for key := range h.bound {
		bound[key] = true
	}
	for _, attr := range attrs {
		bound[attr.Key] = true
	}
	return &runHandler{base: h.base.WithAttrs(attrs), sessionID: h.sessionID, bound: bound}
}

func (h *runHandler) WithGroup(name string) slog.Handler {
	return &runHandler{base: h.base.WithGroup(name), sessionID: h.sessionID, bound: h.bound}
}

// splitHandler sends each record to every destination whose own level
// accepts it, so the run log file can stay at debug while the terminal
// follows the configured level.
type splitHandler struct {
	outputs []slog.Handler
}

func splitOutputs(outputs ...slog.Handler) slog.Handler {
	if len(outputs) == 1 {
		return outputs[0]
	}
	return &splitHandler{outputs: outputs}
}

func (h *splitHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, out := range h.outputs {
		if out.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *splitHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, out := range h.outputs {
		if !out.Enabled(ctx, record.Level) {
			continue
		}
		if err := out.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *splitHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &splitHandler{outputs: h.each(func(out slog.Handler) slog.Handler { return out.WithAttrs(attrs) })}
}

func (h *splitHandler) WithGroup(name string) slog.Handler {
	return &splitHandler{outputs: h.each(func(out slog.Handler) slog.Handler { return out.WithGroup(name) })}
}

func (h *splitHandler) each(fn func(slog.Handler) slog.Handler) []slog.Handler {
	next := make([]slog.Handler, len(h.outputs))
	for i, out := range h.outputs {
		next[i] = fn(out)
	}
	return next
}
