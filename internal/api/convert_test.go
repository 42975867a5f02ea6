package api

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"queuedisplay/internal/board"
	"queuedisplay/internal/calls"
	"queuedisplay/internal/deps"
	"queuedisplay/internal/display"
)

func TestFromStateNormalizesEmptySlices(t *testing.T) {
	dto := FromState(display.State{Status: display.StatusIdle, MissingConfig: true})
	if dto.Rooms == nil || dto.FailedRooms == nil {
		t.Fatal("expected empty slices, got nil")
	}
	if dto.LastUpdated != "" {
		t.Fatalf("expected no timestamp, got %q", dto.LastUpdated)
	}
	data, err := json.Marshal(dto)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"rooms":[]`) {
		t.Fatalf("expected empty rooms array in %s", data)
	}
}

func TestBoardFromStateCopiesRecentCalls(t *testing.T) {
	calledAt := time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC)
	state := display.State{
		Status:       display.StatusPolling,
		HospitalName: "Bệnh viện A",
		Settings:     display.Settings{Rooms: []string{"101"}, QueueType: 2, Mode: display.ModeQueue},
		Board:        &board.View{TotalWaiting: 3},
		Blinking:     []string{"t1"},
		RecentCalls: []display.RecentCall{{
			Event:    calls.Event{TicketID: "t1", TicketCode: "A001", RoomID: "101", RoomName: "Phòng 101"},
			CalledAt: calledAt,
		}},
		LastUpdated: calledAt,
	}

	resp := BoardFromState(state)
	if resp.Board == nil || resp.Board.TotalWaiting != 3 {
		t.Fatalf("unexpected board: %+v", resp.Board)
	}
	if len(resp.RecentCalls) != 1 || resp.RecentCalls[0].CalledAt != "2025-03-01T08:30:00.000Z" {
		t.Fatalf("unexpected recent calls: %+v", resp.RecentCalls)
	}
	if resp.Display.Rooms[0] != "101" || resp.Display.LastUpdated == "" {
		t.Fatalf("unexpected display summary: %+v", resp.Display)
	}
	state.Blinking[0] = "mutated"
	if resp.Blinking[0] != "t1" {
		t.Fatal("board response aliases state blinking slice")
	}
}

func TestFromDependencies(t *testing.T) {
	out := FromDependencies([]deps.Status{{Name: "Speech", Command: "espeak-ng", Available: true}})
	if len(out) != 1 || out[0].Command != "espeak-ng" || !out[0].Available {
		t.Fatalf("unexpected conversion: %+v", out)
	}
}

func TestConfigureRequestSettings(t *testing.T) {
	current := display.Settings{Rooms: []string{"101"}, QueueType: 2, Mode: display.ModeQueue}
	tests := []struct {
		name    string
		req     ConfigureRequest
		want    display.Settings
		wantErr bool
	}{
		{
			name: "keeps current when blank",
			req:  ConfigureRequest{},
			want: current,
		},
		{
			name: "normalizes rooms",
			req:  ConfigureRequest{Rooms: []string{" 201", "", "202", "201"}},
			want: display.Settings{Rooms: []string{"201", "202"}, QueueType: 2, Mode: display.ModeQueue},
		},
		{
			name: "empty room list clears rooms",
			req:  ConfigureRequest{Rooms: []string{}},
			want: display.Settings{Rooms: []string{}, QueueType: 2, Mode: display.ModeQueue},
		},
		{
			name: "switches to lab",
			req:  ConfigureRequest{Mode: "LAB", QueueType: 3},
			want: display.Settings{Rooms: []string{"101"}, QueueType: 3, Mode: display.ModeLab},
		},
		{
			name:    "rejects unknown mode",
			req:     ConfigureRequest{Mode: "kiosk"},
			wantErr: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.req.Settings(current)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Settings: %v", err)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}
