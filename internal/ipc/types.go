package ipc

import "queuedisplay/internal/api"

// StartRequest starts the display.
type StartRequest struct{}

// StartResponse indicates whether the display was started.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// StopRequest stops the display.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// DependencyStatus describes availability of an external dependency.
type DependencyStatus = api.DependencyStatus

// DisplayStatus summarizes the poll loop.
type DisplayStatus = api.DisplayStatus

// StatusResponse represents combined daemon and display status information.
type StatusResponse struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	LockPath     string             `json:"lock_path"`
	LogPath      string             `json:"log_path"`
	APIAddress   string             `json:"api_address"`
	Sink         string             `json:"sink"`
	KioskClients int                `json:"kiosk_clients"`
	Display      DisplayStatus      `json:"display"`
	Dependencies []DependencyStatus `json:"dependencies"`

	// Filled in client-side by daemonctl.BuildStatusSnapshot.
	SystemChecks      []api.StatusLine      `json:"system_checks,omitempty"`
	DependencySummary api.DependencySummary `json:"dependency_summary"`
}

// BoardRequest fetches the current board.
type BoardRequest struct{}

// BoardResponse mirrors the HTTP board payload.
type BoardResponse = api.BoardResponse

// ConfigureRequest changes rooms, queue type, or mode.
type ConfigureRequest = api.ConfigureRequest

// DisplayResponse reports the display after a control action.
type DisplayResponse struct {
	Display DisplayStatus `json:"display"`
}

// AudioRequest grants or dismisses audio permission.
type AudioRequest struct{}

// FullscreenRequest toggles fullscreen on the kiosk pages.
type FullscreenRequest struct{}

// TestAnnounceRequest speaks a sample call.
type TestAnnounceRequest struct {
	TicketCode string `json:"ticket_code"`
	RoomName   string `json:"room_name"`
}

// TestAnnounceResponse reports whether the sample was played.
type TestAnnounceResponse struct {
	Played  bool   `json:"played"`
	Message string `json:"message"`
}

// LogTailRequest fetches log lines based on offset and follow semantics.
type LogTailRequest struct {
	Offset     int64  `json:"offset"`
	Limit      int    `json:"limit"`
	Follow     bool   `json:"follow"`
	WaitMillis int    `json:"wait_millis"`
	Match      string `json:"match"`
}

// LogTailResponse returns log lines and the next offset.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports the outcome of a notification test.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
