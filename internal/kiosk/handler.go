package kiosk

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"queuedisplay/internal/display"
	"queuedisplay/internal/logging"
)

const (
	outboxSize   = 16
	writeTimeout = 3 * time.Second
	// Pages ping every 10 seconds; a silent page is considered gone.
	readTimeout = 30 * time.Second
)

// Controller is the subset of the display loop that pages may drive.
type Controller interface {
	EnableAudio(ctx context.Context) (display.State, error)
	DismissAudio(ctx context.Context) (display.State, error)
	ToggleFullscreen(ctx context.Context) (display.State, error)
	SyncFullscreen(ctx context.Context, active bool) (display.State, error)
}

// Handler upgrades a request to a websocket and streams frames to the page.
func Handler(h *Hub, ctrl Controller, logger *slog.Logger) http.HandlerFunc {
	logger = logging.NewComponentLogger(logger, "kiosk-ws")
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			logger.Debug("websocket upgrade failed", logging.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		ctx := r.Context()
		out := make(chan Frame, outboxSize)
		clientID := uuid.NewString()
		h.send(ctx, join{ClientID: clientID, Outbox: out})
		defer h.send(context.Background(), leave{ClientID: clientID})

		writeCtx, writeCancel := context.WithCancel(ctx)
		defer writeCancel()
		go func() {
			for frame := range out {
				payload, err := json.Marshal(frame)
				if err != nil {
					logger.Warn("encode kiosk frame failed", logging.Error(err))
					continue
				}
				wctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				err = conn.Write(wctx, websocket.MessageText, payload)
				cancel()
				if err != nil {
					return
				}
			}
			// Outbox closed by the hub: slow page or shutdown.
			_ = conn.Close(websocket.StatusGoingAway, "server closing")
		}()

		for {
			rctx, cancel := context.WithTimeout(ctx, readTimeout)
			_, data, err := conn.Read(rctx)
			cancel()
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					if !errors.Is(err, context.Canceled) {
						logger.Debug("kiosk read ended", logging.String("client_id", clientID), logging.Error(err))
					}
				}
				return
			}

			var msg ClientMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				writeError(ctx, conn, "bad json")
				continue
			}
			if err := dispatch(ctx, h, ctrl, clientID, msg); err != nil {
				writeError(ctx, conn, err.Error())
			}
		}
	}
}

func dispatch(ctx context.Context, h *Hub, ctrl Controller, clientID string, msg ClientMessage) error {
	switch msg.Type {
	case ClientPing:
		return nil
	case ClientCapabilities:
		caps := defaultCapabilities
		if msg.Speech != nil {
			caps.Speech = *msg.Speech
		}
		if msg.Fullscreen != nil {
			caps.Fullscreen = *msg.Fullscreen
		}
		h.send(ctx, capabilities{ClientID: clientID, Caps: caps})
		return nil
	case ClientEnableAudio:
		if err := h.setAudio(ctx, clientID, true); err != nil {
			return err
		}
		_, err := ctrl.EnableAudio(ctx)
		return err
	case ClientDismissAudio:
		if err := h.setAudio(ctx, clientID, false); err != nil {
			return err
		}
		_, err := ctrl.DismissAudio(ctx)
		return err
	case ClientToggleFullscreen:
		_, err := ctrl.ToggleFullscreen(ctx)
		return err
	case ClientFullscreenState:
		if msg.Fullscreen == nil {
			return errors.New("fullscreen state missing")
		}
		_, err := ctrl.SyncFullscreen(ctx, *msg.Fullscreen)
		return err
	default:
		return errors.New("unknown type")
	}
}

func writeError(ctx context.Context, conn *websocket.Conn, message string) {
	payload, _ := json.Marshal(Frame{Type: FrameError, Error: message})
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = conn.Write(wctx, websocket.MessageText, payload)
}
