package services

import "context"

type contextKey string

const (
	roomIDKey    contextKey = "room_id"
	epochKey     contextKey = "epoch"
	requestIDKey contextKey = "request_id"
)

// WithRoomID annotates context with the consultation room identifier.
func WithRoomID(ctx context.Context, roomID string) context.Context {
	if roomID == "" {
		return ctx
	}
	return context.WithValue(ctx, roomIDKey, roomID)
}

// RoomIDFromContext returns the room identifier if present.
func RoomIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(roomIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithEpoch annotates context with the poll loop configuration epoch.
func WithEpoch(ctx context.Context, epoch uint64) context.Context {
	return context.WithValue(ctx, epochKey, epoch)
}

// EpochFromContext extracts the configuration epoch if present.
func EpochFromContext(ctx context.Context) (uint64, bool) {
	v, ok := ctx.Value(epochKey).(uint64)
	return v, ok
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
