// Package ipc exposes the daemon over JSON-RPC Unix sockets and ships the
// matching client used by the CLI.
//
// It owns socket lifecycle management and the request/response DTOs. Display
// payloads reuse the api package types so the CLI, the HTTP API, and scripts
// see the same shapes. Server-side calls into the display loop are bounded by
// a timeout so CLI commands fail fast when the loop is wedged.
package ipc
