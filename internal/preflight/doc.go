// Package preflight provides readiness checks for the queue backend, the
// audio programs, and the log directory.
//
// The daemon runs RunAll at startup and logs failures without refusing to
// start: a display with an unreachable backend still shows the clock and the
// stale banner. The CLI "queuedisplay status" command uses the individual
// checks to render service health.
package preflight
