package api

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"queuedisplay/internal/config"
	"queuedisplay/internal/deps"
	"queuedisplay/internal/display"
)

// ErrInvalidMode reports a display mode other than queue or lab.
var ErrInvalidMode = errors.New("unsupported display mode")

// FromState converts a display state to its status summary.
func FromState(state display.State) DisplayStatus {
	dto := DisplayStatus{
		Status:         string(state.Status),
		Mode:           state.Settings.Mode,
		Rooms:          slices.Clone(state.Settings.Rooms),
		QueueType:      state.Settings.QueueType,
		Epoch:          state.Epoch,
		Phase:          state.Phase,
		MissingConfig:  state.MissingConfig,
		Stale:          state.Stale,
		FailedRooms:    slices.Clone(state.FailedRooms),
		AudioEnabled:   state.AudioEnabled,
		OverlayVisible: state.OverlayVisible,
		Fullscreen:     state.Fullscreen,
		Cycles:         state.Cycles,
		LastUpdated:    formatTime(state.LastUpdated),
	}
	if dto.Rooms == nil {
		dto.Rooms = []string{}
	}
	if dto.FailedRooms == nil {
		dto.FailedRooms = []string{}
	}
	return dto
}

// BoardFromState converts a display state to the board payload.
func BoardFromState(state display.State) BoardResponse {
	resp := BoardResponse{
		HospitalName: state.HospitalName,
		Clock:        state.Clock,
		Display:      FromState(state),
		Board:        state.Board,
		Lab:          state.Lab,
		Blinking:     slices.Clone(state.Blinking),
		RecentCalls:  make([]CalledTicket, 0, len(state.RecentCalls)),
	}
	if resp.Blinking == nil {
		resp.Blinking = []string{}
	}
	for _, call := range state.RecentCalls {
		resp.RecentCalls = append(resp.RecentCalls, CalledTicket{
			TicketID:   call.TicketID,
			TicketCode: call.TicketCode,
			RoomID:     call.RoomID,
			RoomName:   call.RoomName,
			CalledAt:   formatTime(call.CalledAt),
		})
	}
	return resp
}

// FromDependencies converts dependency checks to their API representation.
func FromDependencies(statuses []deps.Status) []DependencyStatus {
	out := make([]DependencyStatus, len(statuses))
	for i, dep := range statuses {
		out[i] = DependencyStatus{
			Name:        dep.Name,
			Command:     dep.Command,
			Description: dep.Description,
			Optional:    dep.Optional,
			Available:   dep.Available,
			Detail:      dep.Detail,
			Severity:    DependencySeverity(dep.Available, dep.Optional),
		}
	}
	return out
}

// DependencySeverity classifies a dependency check for status output.
func DependencySeverity(available, optional bool) string {
	switch {
	case available:
		return "ok"
	case optional:
		return "warn"
	default:
		return "error"
	}
}

// Settings merges the request onto the current settings. Room ids are
// normalized the same way as the rooms launch parameter.
func (r ConfigureRequest) Settings(current display.Settings) (display.Settings, error) {
	next := display.Settings{
		Rooms:     slices.Clone(current.Rooms),
		QueueType: current.QueueType,
		Mode:      current.Mode,
	}
	if r.Rooms != nil {
		next.Rooms = config.ParseRooms(strings.Join(r.Rooms, ","))
	}
	if r.QueueType > 0 {
		next.QueueType = r.QueueType
	}
	if next.QueueType <= 0 {
		next.QueueType = config.DefaultQueueType
	}
	if mode := strings.ToLower(strings.TrimSpace(r.Mode)); mode != "" {
		switch mode {
		case display.ModeQueue, display.ModeLab:
			next.Mode = mode
		default:
			return current, fmt.Errorf("%w %q", ErrInvalidMode, r.Mode)
		}
	}
	if next.Mode == "" {
		next.Mode = display.ModeQueue
	}
	return next, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
