// Package logs tails the daemon log file for `queuedisplay logs`.
//
// It reads with bounded memory, supports negative offsets for "last N lines",
// and polls for new lines in follow mode until the caller's wait elapses.
// Match narrows output to lines mentioning a room, ticket, or event type.
package logs
