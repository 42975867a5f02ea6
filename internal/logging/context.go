package logging

import (
	"context"
	"log/slog"

	"queuedisplay/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType classifies a log line for filtering (e.g. ticket_called).
	FieldEventType = "event_type"
	// FieldErrorHint carries the operator next step for warnings and errors.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldRoomID is the standardized structured logging key for room identifiers.
	FieldRoomID = "room_id"
	// FieldTicketID is the standardized structured logging key for ticket identifiers.
	FieldTicketID = "ticket_id"
	// FieldEpoch is the poll loop configuration epoch.
	FieldEpoch = "epoch"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if room, ok := services.RoomIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRoomID, room))
	}
	if epoch, ok := services.EpochFromContext(ctx); ok {
		fields = append(fields, slog.Uint64(FieldEpoch, epoch))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
