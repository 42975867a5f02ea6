package display

import (
	"slices"
	"time"

	"queuedisplay/internal/board"
	"queuedisplay/internal/calls"
	"queuedisplay/internal/queueapi"
)

// Status is the poll loop lifecycle state.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusPolling Status = "polling"
	StatusStopped Status = "stopped"
)

// Display modes.
const (
	ModeQueue = "queue"
	ModeLab   = "lab"
)

const recentCallLimit = 10

// Settings is the launch configuration of one display: which rooms, which
// queue category, and which board.
type Settings struct {
	Rooms     []string `json:"rooms"`
	QueueType int      `json:"queueType"`
	Mode      string   `json:"mode"`
}

// Equal reports whether two settings select the same data.
func (s Settings) Equal(other Settings) bool {
	return s.QueueType == other.QueueType && s.Mode == other.Mode && slices.Equal(s.Rooms, other.Rooms)
}

// needsPolling reports whether the settings can drive a poll cycle.
func (s Settings) needsPolling() bool {
	return s.Mode == ModeLab || len(s.Rooms) > 0
}

// RecentCall is an announced ticket kept for the "recently called" strip.
type RecentCall struct {
	calls.Event
	CalledAt time.Time `json:"calledAt"`
}

// State is the render-ready picture of the display. Copies are handed to
// observers; they never alias loop-owned memory.
type State struct {
	Status         Status               `json:"status"`
	Settings       Settings             `json:"settings"`
	Epoch          uint64               `json:"epoch"`
	Phase          string               `json:"phase"`
	HospitalName   string               `json:"hospitalName"`
	MissingConfig  bool                 `json:"missingConfig"`
	Board          *board.View          `json:"board,omitempty"`
	Lab            *queueapi.LabDisplay `json:"lab,omitempty"`
	FailedRooms    []string             `json:"failedRooms"`
	Stale          bool                 `json:"stale"`
	Blinking       []string             `json:"blinking"`
	RecentCalls    []RecentCall         `json:"recentCalls"`
	AudioEnabled   bool                 `json:"audioEnabled"`
	OverlayVisible bool                 `json:"overlayVisible"`
	Fullscreen     bool                 `json:"fullscreen"`
	Clock          string               `json:"clock"`
	LastUpdated    time.Time            `json:"lastUpdated"`
	Cycles         uint64               `json:"cycles"`
}

func (s State) clone() State {
	out := s
	out.Settings.Rooms = slices.Clone(s.Settings.Rooms)
	out.FailedRooms = slices.Clone(s.FailedRooms)
	out.Blinking = slices.Clone(s.Blinking)
	out.RecentCalls = slices.Clone(s.RecentCalls)
	if out.FailedRooms == nil {
		out.FailedRooms = []string{}
	}
	if out.Blinking == nil {
		out.Blinking = []string{}
	}
	if out.RecentCalls == nil {
		out.RecentCalls = []RecentCall{}
	}
	return out
}
