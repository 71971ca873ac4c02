package logger

import (
	"context"
	"log/slog"
)

type ctxKey string

const fieldsKey ctxKey = "logger_fields"

// With returns a context carrying extra log fields. Records logged through a
// ContextHandler with that context get the fields appended.
func With(ctx context.Context, fields ...any) context.Context {
	prev, _ := ctx.Value(fieldsKey).([]any)
	merged := make([]any, 0, len(prev)+len(fields))
	merged = append(merged, prev...)
	merged = append(merged, fields...)
	return context.WithValue(ctx, fieldsKey, merged)
}

// From returns the default logger with the context's fields attached.
func From(ctx context.Context) *slog.Logger {
	l := LoggerWrapper()
	if ctx == nil {
		return l
	}
	if fields, ok := ctx.Value(fieldsKey).([]any); ok {
		return l.With(fields...)
	}
	return l
}

// ContextHandler adds the fields stored by With to every record.
type ContextHandler struct {
	slog.Handler
}

func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: h}
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if fields, ok := ctx.Value(fieldsKey).([]any); ok {
			r.Add(fields...)
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithGroup(name)}
}
