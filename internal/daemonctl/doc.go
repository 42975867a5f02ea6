// Package daemonctl holds the CLI-side orchestration for the daemon process:
// launching it detached, waiting for its socket, shutting it down with a
// SIGKILL fallback, and assembling the status snapshot the status command
// renders.
package daemonctl
