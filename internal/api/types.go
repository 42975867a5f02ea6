package api

import (
	"queuedisplay/internal/board"
	"queuedisplay/internal/queueapi"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// DisplayStatus summarizes the poll loop without the board contents.
type DisplayStatus struct {
	Status         string   `json:"status"`
	Mode           string   `json:"mode"`
	Rooms          []string `json:"rooms"`
	QueueType      int      `json:"queueType"`
	Epoch          uint64   `json:"epoch"`
	Phase          string   `json:"phase"`
	MissingConfig  bool     `json:"missingConfig"`
	Stale          bool     `json:"stale"`
	FailedRooms    []string `json:"failedRooms"`
	AudioEnabled   bool     `json:"audioEnabled"`
	OverlayVisible bool     `json:"overlayVisible"`
	Fullscreen     bool     `json:"fullscreen"`
	Cycles         uint64   `json:"cycles"`
	LastUpdated    string   `json:"lastUpdated,omitempty"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
	Severity    string `json:"severity,omitempty"`
}

// DependencySummary aggregates dependency readiness.
type DependencySummary struct {
	Total           int    `json:"total"`
	Available       int    `json:"available"`
	MissingRequired int    `json:"missingRequired"`
	MissingOptional int    `json:"missingOptional"`
	Severity        string `json:"severity"`
	Detail          string `json:"detail"`
}

// StatusLine is a labeled health line rendered by the status command.
type StatusLine struct {
	Label    string `json:"label"`
	Severity string `json:"severity"`
	Detail   string `json:"detail"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	LockFilePath string             `json:"lockFilePath"`
	LogPath      string             `json:"logPath,omitempty"`
	APIAddress   string             `json:"apiAddress,omitempty"`
	Sink         string             `json:"sink"`
	KioskClients int                `json:"kioskClients"`
	Display      DisplayStatus      `json:"display"`
	Dependencies []DependencyStatus `json:"dependencies"`
}

// CalledTicket is one entry of the recently-called strip.
type CalledTicket struct {
	TicketID   string `json:"ticketId"`
	TicketCode string `json:"ticketCode"`
	RoomID     string `json:"roomId"`
	RoomName   string `json:"roomName"`
	CalledAt   string `json:"calledAt"`
}

// BoardResponse is the render-ready board for terminal and HTTP consumers.
type BoardResponse struct {
	HospitalName string               `json:"hospitalName"`
	Clock        string               `json:"clock"`
	Display      DisplayStatus        `json:"display"`
	Board        *board.View          `json:"board,omitempty"`
	Lab          *queueapi.LabDisplay `json:"lab,omitempty"`
	Blinking     []string             `json:"blinking"`
	RecentCalls  []CalledTicket       `json:"recentCalls"`
}

// ConfigureRequest changes the launch configuration. Blank fields keep the
// current value.
type ConfigureRequest struct {
	Rooms     []string `json:"rooms"`
	QueueType int      `json:"queueType"`
	Mode      string   `json:"mode"`
}

// ActionResponse reports the display after a control action.
type ActionResponse struct {
	Message string        `json:"message,omitempty"`
	Display DisplayStatus `json:"display"`
}
