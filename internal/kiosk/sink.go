package kiosk

import (
	"context"
	"errors"
	"fmt"

	"queuedisplay/internal/announce"
	"queuedisplay/internal/display"
)

// ErrNoClients reports that no connected kiosk page has enabled audio.
var ErrNoClients = fmt.Errorf("no kiosk page with audio enabled: %w", announce.ErrNoAudience)

// BrowserSink speaks through the kiosk pages that enabled audio. Frames are
// queued on the hub, so neither method waits for playback.
type BrowserSink struct {
	hub *Hub
}

// NewBrowserSink binds a sink to a hub.
func NewBrowserSink(hub *Hub) *BrowserSink {
	return &BrowserSink{hub: hub}
}

// Speak forwards the utterance. When every unmuted page lacks a speech
// synthesizer it returns announce.ErrUnsupported so the caller can beep.
func (s *BrowserSink) Speak(_ context.Context, u announce.Utterance) error {
	if s.hub.AudioClients() == 0 {
		return ErrNoClients
	}
	if s.hub.SpeechClients() == 0 {
		return announce.ErrUnsupported
	}
	frame := Frame{Type: FrameSpeak, Speech: &SpeechFrame{Text: u.Text, Lang: u.Lang, Rate: u.Rate, Volume: u.Volume}}
	if !s.hub.Publish(frame) {
		return errors.New("kiosk hub saturated")
	}
	return nil
}

// Tone forwards a beep.
func (s *BrowserSink) Tone(_ context.Context, t announce.Tone) error {
	if s.hub.AudioClients() == 0 {
		return ErrNoClients
	}
	frame := Frame{Type: FrameTone, Tone: &ToneFrame{
		FrequencyHz: t.FrequencyHz,
		DurationMS:  t.Duration.Milliseconds(),
		Gain:        t.Gain,
	}}
	if !s.hub.Publish(frame) {
		return errors.New("kiosk hub saturated")
	}
	return nil
}

// BrowserPresentation drives the Fullscreen API of the connected pages.
type BrowserPresentation struct {
	hub *Hub
}

// NewBrowserPresentation binds fullscreen control to a hub.
func NewBrowserPresentation(hub *Hub) *BrowserPresentation {
	return &BrowserPresentation{hub: hub}
}

func (p *BrowserPresentation) EnterFullscreen(context.Context) error {
	return p.set(true)
}

func (p *BrowserPresentation) ExitFullscreen(context.Context) error {
	return p.set(false)
}

func (p *BrowserPresentation) set(on bool) error {
	if p.hub.FullscreenClients() == 0 {
		return display.ErrPresentationUnsupported
	}
	p.hub.Publish(Frame{Type: FrameFullscreen, Fullscreen: &on})
	return nil
}
