// Package announce converts newly called tickets into speech or tone output.
//
// The Announcer owns the audio permission flag and the highlight set; output
// goes through a NotificationSink so the same logic drives a kiosk browser,
// local espeak-ng/sox commands, or nothing at all.
package announce
