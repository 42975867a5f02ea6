package queueapi

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"queuedisplay/internal/logging"
	"queuedisplay/internal/services"
)

// RoomResult is one room's outcome for a poll cycle. Snapshot is nil when the
// fetch failed.
type RoomResult struct {
	RoomID   string
	Snapshot *RoomSnapshot
	Err      error
}

// RoomFetcher issues one independent read per configured room each cycle.
type RoomFetcher struct {
	source Source
	logger *slog.Logger
}

// NewRoomFetcher wraps a Source. A nil logger discards output.
func NewRoomFetcher(source Source, logger *slog.Logger) *RoomFetcher {
	return &RoomFetcher{source: source, logger: logging.NewComponentLogger(logger, "room-fetcher")}
}

// FetchAll reads every room in parallel. Results are aligned with rooms; a
// failed room yields a nil Snapshot and never aborts or delays the others.
func (f *RoomFetcher) FetchAll(ctx context.Context, rooms []string, queueType int) []RoomResult {
	results := make([]RoomResult, len(rooms))
	// Workers never return an error so one failure cannot cancel the group.
	var group errgroup.Group
	for i, roomID := range rooms {
		results[i].RoomID = roomID
		group.Go(func() error {
			roomCtx := services.WithRoomID(ctx, roomID)
			snapshot, err := f.source.FetchRoom(roomCtx, roomID, queueType)
			if err != nil {
				logging.WithContext(roomCtx, f.logger).Debug("room fetch failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "room_fetch_failed"),
					logging.String(logging.FieldErrorHint, services.Hint(err)),
				)
				results[i].Err = err
				return nil
			}
			results[i].Snapshot = snapshot
			return nil
		})
	}
	_ = group.Wait()
	return results
}

// Snapshots drops failed rooms, preserving configured order.
func Snapshots(results []RoomResult) []RoomSnapshot {
	out := make([]RoomSnapshot, 0, len(results))
	for _, result := range results {
		if result.Snapshot != nil {
			out = append(out, *result.Snapshot)
		}
	}
	return out
}

// AllFailed reports whether no room returned data.
func AllFailed(results []RoomResult) bool {
	for _, result := range results {
		if result.Snapshot != nil {
			return false
		}
	}
	return true
}
