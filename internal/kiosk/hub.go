package kiosk

import (
	"context"
	"log/slog"
	"sync/atomic"

	"queuedisplay/internal/display"
	"queuedisplay/internal/logging"
)

// Hub fans frames out to every connected kiosk page. It is an actor: the
// client table is only touched by the goroutine running Run.
//
// Audio permission belongs to each page. A page is muted until it sends its
// own enableAudio, speech and tone frames only reach unmuted pages, and the
// state frames a page receives carry its own audio and overlay flags.
type Hub struct {
	inbox  chan hubMsg
	logger *slog.Logger

	clients       atomic.Int64
	audioClients  atomic.Int64
	speechClients atomic.Int64
	fullClients   atomic.Int64

	// Owned by Run.
	outboxes map[string]*client
	last     *display.State
}

type client struct {
	outbox    chan Frame
	caps      Capabilities
	audio     bool
	dismissed bool
}

func (c *client) stateFrame(state display.State) Frame {
	state.AudioEnabled = c.audio
	state.OverlayVisible = !c.audio && !c.dismissed
	return Frame{Type: FrameState, State: &state}
}

func (c *client) frameFor(frame Frame) (Frame, bool) {
	switch frame.Type {
	case FrameSpeak, FrameTone:
		return frame, c.audio
	case FrameState:
		if frame.State != nil {
			return c.stateFrame(*frame.State), true
		}
	}
	return frame, true
}

type hubMsg interface{ isHubMsg() }

type join struct {
	ClientID string
	Outbox   chan Frame
}

type leave struct{ ClientID string }

type capabilities struct {
	ClientID string
	Caps     Capabilities
}

type audioChoice struct {
	ClientID string
	Enable   bool
	Reply    chan struct{}
}

type publish struct{ Frame Frame }

type countClients struct{ Reply chan int }

func (join) isHubMsg()         {}
func (leave) isHubMsg()        {}
func (capabilities) isHubMsg() {}
func (audioChoice) isHubMsg()  {}
func (publish) isHubMsg()      {}
func (countClients) isHubMsg() {}

// NewHub builds an idle hub. Call Run to start it.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		inbox:    make(chan hubMsg, 256),
		logger:   logging.NewComponentLogger(logger, "kiosk-hub"),
		outboxes: make(map[string]*client),
	}
}

// Run processes hub messages until ctx is cancelled, then closes every outbox.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case m := <-h.inbox:
			switch msg := m.(type) {
			case join:
				c := &client{outbox: msg.Outbox, caps: defaultCapabilities}
				h.outboxes[msg.ClientID] = c
				if h.last != nil {
					h.deliver(msg.ClientID, c, c.stateFrame(*h.last))
				}
				h.recount()
				h.logger.Info("kiosk page connected",
					logging.String("client_id", msg.ClientID),
					logging.Int("clients", len(h.outboxes)),
					logging.String(logging.FieldEventType, "kiosk_connected"),
				)
			case leave:
				if c, ok := h.outboxes[msg.ClientID]; ok {
					close(c.outbox)
					delete(h.outboxes, msg.ClientID)
					h.recount()
					h.logger.Info("kiosk page disconnected",
						logging.String("client_id", msg.ClientID),
						logging.Int("clients", len(h.outboxes)),
						logging.String(logging.FieldEventType, "kiosk_disconnected"),
					)
				}
			case capabilities:
				if c, ok := h.outboxes[msg.ClientID]; ok {
					c.caps = msg.Caps
					h.recount()
				}
			case audioChoice:
				if c, ok := h.outboxes[msg.ClientID]; ok {
					if msg.Enable {
						c.audio = true
					} else {
						c.dismissed = true
					}
					if h.last != nil {
						h.deliver(msg.ClientID, c, c.stateFrame(*h.last))
					}
					h.recount()
				}
				close(msg.Reply)
			case publish:
				if msg.Frame.Type == FrameState && msg.Frame.State != nil {
					state := *msg.Frame.State
					h.last = &state
				}
				h.broadcast(msg.Frame)
			case countClients:
				msg.Reply <- len(h.outboxes)
			}
		}
	}
}

func (h *Hub) shutdown() {
	for id, c := range h.outboxes {
		close(c.outbox)
		delete(h.outboxes, id)
	}
	h.recount()
}

func (h *Hub) broadcast(frame Frame) {
	for id, c := range h.outboxes {
		if out, ok := c.frameFor(frame); ok {
			h.deliver(id, c, out)
		}
	}
	h.recount()
}

// deliver drops a client whose outbox is full.
func (h *Hub) deliver(id string, c *client, frame Frame) {
	select {
	case c.outbox <- frame:
	default:
		close(c.outbox)
		delete(h.outboxes, id)
		h.logger.Warn("dropping slow kiosk page",
			logging.String("client_id", id),
			logging.String(logging.FieldEventType, "kiosk_dropped"),
			logging.String(logging.FieldErrorHint, "check the kiosk browser and network link"),
		)
	}
}

func (h *Hub) recount() {
	var audio, speech, full int64
	for _, c := range h.outboxes {
		if c.audio {
			audio++
			if c.caps.Speech {
				speech++
			}
		}
		if c.caps.Fullscreen {
			full++
		}
	}
	h.clients.Store(int64(len(h.outboxes)))
	h.audioClients.Store(audio)
	h.speechClients.Store(speech)
	h.fullClients.Store(full)
}

// Publish queues a frame for every client without blocking. A frame is
// dropped when the hub is saturated; the next state frame supersedes it.
func (h *Hub) Publish(frame Frame) bool {
	select {
	case h.inbox <- publish{Frame: frame}:
		return true
	default:
		h.logger.Debug("hub inbox full; frame dropped", logging.String("frame_type", frame.Type))
		return false
	}
}

// PublishState is the display.Hooks.OnState adapter.
func (h *Hub) PublishState(state display.State) {
	h.Publish(Frame{Type: FrameState, State: &state})
}

// PublishClock is the display.Hooks.OnClock adapter.
func (h *Hub) PublishClock(text string) {
	if h.Clients() == 0 {
		return
	}
	h.Publish(Frame{Type: FrameClock, Clock: text})
}

// Clients reports the number of connected pages.
func (h *Hub) Clients() int {
	return int(h.clients.Load())
}

// AudioClients reports connected pages that have enabled audio.
func (h *Hub) AudioClients() int {
	return int(h.audioClients.Load())
}

// SpeechClients reports unmuted pages that can synthesize speech.
func (h *Hub) SpeechClients() int {
	return int(h.speechClients.Load())
}

// FullscreenClients reports connected pages that can enter fullscreen.
func (h *Hub) FullscreenClients() int {
	return int(h.fullClients.Load())
}

// Count asks the hub goroutine for the exact client count.
func (h *Hub) Count(ctx context.Context) (int, error) {
	reply := make(chan int, 1)
	select {
	case h.inbox <- countClients{Reply: reply}:
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	select {
	case n := <-reply:
		return n, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// setAudio records a page's answer to the audio overlay and waits until the
// hub has applied it.
func (h *Hub) setAudio(ctx context.Context, clientID string, enable bool) error {
	reply := make(chan struct{})
	select {
	case h.inbox <- audioChoice{ClientID: clientID, Enable: enable, Reply: reply}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-reply:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) send(ctx context.Context, msg hubMsg) {
	select {
	case h.inbox <- msg:
	case <-ctx.Done():
	}
}
