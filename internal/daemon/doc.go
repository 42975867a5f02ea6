// Package daemon coordinates the long-running queue display process.
//
// It wires configuration, the backend client, the display poll loop, the
// kiosk websocket hub, and push notifications into a single lifecycle with
// flock-based locking to prevent multiple instances. Each Start builds a fresh
// run (hub, loop, announcement sink, notification dispatcher, HTTP API) and
// Stop tears it down; launch settings changed through Configure survive the
// restart.
//
// The HTTP API is a chi router serving the kiosk page, its websocket, and a
// small JSON control surface. Mutating routes require the configured bearer
// token.
package daemon
