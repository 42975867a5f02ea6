// Package board merges per-room queue snapshots into the waiting-list view
// shown on the display.
package board
