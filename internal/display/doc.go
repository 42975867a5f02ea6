// Package display owns the screen's runtime state.
//
// Loop is a single goroutine that schedules backend polls, applies their
// results through change detection, drives announcements, and publishes
// immutable State snapshots. Room and mode changes bump an epoch so late
// responses for a previous configuration are discarded on arrival. The
// package also holds the one-second wall clock and the fullscreen toggle.
package display
