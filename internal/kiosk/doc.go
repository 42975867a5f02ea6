// Package kiosk serves the browser page shown on the waiting-room screen.
//
// The Hub streams display state, speech, tone and fullscreen frames to every
// connected page over a websocket. BrowserSink and BrowserPresentation adapt
// the hub to the announcer and the fullscreen controller so audio is played
// by the page that has the user's audio permission.
package kiosk
