package kiosk

import (
	"queuedisplay/internal/display"
)

// Server to page frame types.
const (
	FrameState      = "state"
	FrameClock      = "clock"
	FrameSpeak      = "speak"
	FrameTone       = "tone"
	FrameFullscreen = "fullscreen"
	FrameError      = "error"
)

// Page to server message types.
const (
	ClientEnableAudio      = "enableAudio"
	ClientDismissAudio     = "dismissAudio"
	ClientToggleFullscreen = "toggleFullscreen"
	ClientFullscreenState  = "fullscreenState"
	ClientCapabilities     = "capabilities"
	ClientPing             = "ping"
)

// Frame is one server to page message.
type Frame struct {
	Type       string         `json:"type"`
	State      *display.State `json:"state,omitempty"`
	Speech     *SpeechFrame   `json:"speech,omitempty"`
	Tone       *ToneFrame     `json:"tone,omitempty"`
	Fullscreen *bool          `json:"fullscreen,omitempty"`
	Clock      string         `json:"clock,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// SpeechFrame asks the page to speak through its speech synthesizer.
type SpeechFrame struct {
	Text   string  `json:"text"`
	Lang   string  `json:"lang"`
	Rate   float64 `json:"rate"`
	Volume float64 `json:"volume"`
}

// ToneFrame asks the page to play a sine beep.
type ToneFrame struct {
	FrequencyHz int     `json:"frequencyHz"`
	DurationMS  int64   `json:"durationMs"`
	Gain        float64 `json:"gain"`
}

// ClientMessage is one page to server message.
type ClientMessage struct {
	Type       string `json:"type"`
	Speech     *bool  `json:"speech,omitempty"`
	Fullscreen *bool  `json:"fullscreen,omitempty"`
}

// Capabilities is what a page reports about its browser.
type Capabilities struct {
	Speech     bool `json:"speech"`
	Fullscreen bool `json:"fullscreen"`
}

// Pages are assumed capable until they say otherwise.
var defaultCapabilities = Capabilities{Speech: true, Fullscreen: true}
