package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"queuedisplay/internal/api"
	"queuedisplay/internal/config"
	"queuedisplay/internal/display"
	"queuedisplay/internal/kiosk"
	"queuedisplay/internal/logging"
)

const maxRequestBody = 64 << 10

type apiServer struct {
	bind   string
	token  string
	logger *slog.Logger
	daemon *Daemon
	hub    *kiosk.Hub

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, hub *kiosk.Hub, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:   bind,
		token:  strings.TrimSpace(cfg.Paths.APIToken),
		logger: logger,
		daemon: d,
		hub:    hub,
	}
	srv.server = &http.Server{
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.handlePage)
	r.Get("/healthz", s.handleHealth)
	r.Get("/api/status", s.handleStatus)
	r.Get("/api/board", s.handleBoard)

	r.Group(func(r chi.Router) {
		r.Use(requireToken(s.token))
		r.Get("/ws", kiosk.Handler(s.hub, s.daemon, s.logger))
		r.Post("/api/audio/enable", s.handleAction(s.daemon.EnableAudio, "audio enabled"))
		r.Post("/api/audio/dismiss", s.handleAction(s.daemon.DismissAudio, "audio overlay dismissed"))
		r.Post("/api/fullscreen/toggle", s.handleAction(s.daemon.ToggleFullscreen, "fullscreen toggled"))
		r.Put("/api/display", s.handleConfigure)
	})
	return r
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening",
		logging.String("address", listener.Addr().String()),
		logging.Bool("token_required", s.token != ""),
	)
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) address() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// handlePage serves the kiosk page. Launch parameters in the query string
// (rooms, queueType, mode) are applied as a configuration change.
func (s *apiServer) handlePage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if query.Has("rooms") || query.Has("queueType") || query.Has("mode") {
		if authorized(s.token, r) {
			req := api.ConfigureRequest{Mode: query.Get("mode")}
			if query.Has("rooms") {
				req.Rooms = config.ParseRooms(query.Get("rooms"))
			}
			if query.Has("queueType") {
				req.QueueType = config.ParseQueueType(query.Get("queueType"))
			}
			if _, err := s.daemon.Configure(r.Context(), req); err != nil {
				s.log().Warn("kiosk launch parameters rejected",
					logging.Error(err),
					logging.String(logging.FieldEventType, "launch_params_rejected"),
					logging.String(logging.FieldErrorHint, "use rooms=<ids>&queueType=<n>&mode=queue|lab"),
				)
			}
		} else {
			s.log().Debug("ignoring launch parameters without token")
		}
	}
	kiosk.PageHandler()(w, r)
}

func (s *apiServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.daemon.Status(r.Context()))
}

func (s *apiServer) handleBoard(w http.ResponseWriter, _ *http.Request) {
	board, err := s.daemon.Board()
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, board)
}

func (s *apiServer) handleAction(action func(context.Context) (display.State, error), message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := action(r.Context())
		if err != nil {
			s.writeError(w, statusFor(err), err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, api.ActionResponse{Message: message, Display: api.FromState(state)})
	}
}

func (s *apiServer) handleConfigure(w http.ResponseWriter, r *http.Request) {
	var req api.ConfigureRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	state, err := s.daemon.Configure(r.Context(), req)
	if err != nil {
		s.writeError(w, statusFor(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.ActionResponse{Message: "display reconfigured", Display: api.FromState(state)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotRunning), errors.Is(err, display.ErrStopped):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, api.ErrInvalidMode):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String("component", "api-server"))
	}
	return logging.NewNop()
}
