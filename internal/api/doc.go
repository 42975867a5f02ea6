// Package api defines wire-format types and converters for the IPC and HTTP
// API layer. It translates the display loop's state into transport-friendly
// DTOs that the CLI, the terminal board, and scripts can render without
// coupling to internal types.
//
// # Key Types
//
// DisplayStatus: loop status, launch settings, epoch, outage flag, and audio
// and fullscreen state.
//
// BoardResponse: the aggregated room view or lab board plus the blinking ids
// and the recently called strip.
//
// DaemonStatus: aggregated runtime information including dependencies and
// kiosk client count.
//
// ConfigureRequest: a rooms/queueType/mode change applied as a new epoch.
//
// # Design Notes
//
// DTOs use camelCase JSON tags to match the backend's payloads. Timestamps use
// RFC3339 with milliseconds and are omitted when unset.
package api
