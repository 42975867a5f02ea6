// Package main hosts the queuedisplay CLI entrypoint and command graph.
//
// The Cobra command tree translates terminal invocations into IPC calls
// against the daemon (start, stop, status, audio, fullscreen, rooms, logs),
// runs the daemon itself through the hidden `daemon` command, and offers
// daemon-free tools: `board` fetches one cycle straight from the queue
// service and `config` scaffolds and validates the TOML file. `watch` renders
// the live board in the terminal by polling the daemon's HTTP API.
package main
