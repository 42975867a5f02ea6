package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"queuedisplay/internal/api"
	"queuedisplay/internal/daemon"
	"queuedisplay/internal/display"
	"queuedisplay/internal/logging"
	"queuedisplay/internal/logs"
)

// ServiceName is the JSON-RPC receiver name.
const ServiceName = "QueueDisplay"

// callTimeout bounds display commands so a wedged loop cannot hang the CLI.
const callTimeout = 10 * time.Second

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName(ServiceName, srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				if errors.Is(err, net.ErrClosed) {
					return
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String(logging.FieldImpact, "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "Check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"),
			logging.String(logging.FieldImpact, "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "Remove the socket file manually or rerun queuedisplay stop"))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String("component", "ipc"))
}

func (s *service) callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(s.ctx, callTimeout)
}

func (s *service) Start(_ StartRequest, resp *StartResponse) error {
	s.log().Debug("display start requested")
	if err := s.daemon.Start(s.ctx); err != nil {
		resp.Started = false
		resp.Message = err.Error()
		return nil
	}
	resp.Started = true
	resp.Message = "display started"
	s.log().Info("display started via IPC",
		logging.String(logging.FieldEventType, "daemon_start"))
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.log().Debug("display stop requested")
	s.daemon.Stop()
	resp.Stopped = true
	s.log().Info("display stopped via IPC",
		logging.String(logging.FieldEventType, "daemon_stop"))
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	ctx, cancel := s.callContext()
	defer cancel()
	status := s.daemon.Status(ctx)
	resp.Running = status.Running
	resp.PID = status.PID
	resp.LockPath = status.LockFilePath
	resp.LogPath = status.LogPath
	resp.APIAddress = status.APIAddress
	resp.Sink = status.Sink
	resp.KioskClients = status.KioskClients
	resp.Display = status.Display
	resp.Dependencies = status.Dependencies
	return nil
}

func (s *service) Board(_ BoardRequest, resp *BoardResponse) error {
	board, err := s.daemon.Board()
	if err != nil {
		return err
	}
	*resp = board
	return nil
}

func (s *service) Configure(req ConfigureRequest, resp *DisplayResponse) error {
	ctx, cancel := s.callContext()
	defer cancel()
	return fill(resp)(s.daemon.Configure(ctx, req))
}

func (s *service) EnableAudio(_ AudioRequest, resp *DisplayResponse) error {
	ctx, cancel := s.callContext()
	defer cancel()
	return fill(resp)(s.daemon.EnableAudio(ctx))
}

func (s *service) DismissAudio(_ AudioRequest, resp *DisplayResponse) error {
	ctx, cancel := s.callContext()
	defer cancel()
	return fill(resp)(s.daemon.DismissAudio(ctx))
}

func (s *service) ToggleFullscreen(_ FullscreenRequest, resp *DisplayResponse) error {
	ctx, cancel := s.callContext()
	defer cancel()
	return fill(resp)(s.daemon.ToggleFullscreen(ctx))
}

func fill(resp *DisplayResponse) func(display.State, error) error {
	return func(state display.State, err error) error {
		if err != nil {
			return err
		}
		resp.Display = api.FromState(state)
		return nil
	}
}

func (s *service) TestAnnounce(req TestAnnounceRequest, resp *TestAnnounceResponse) error {
	ctx, cancel := s.callContext()
	defer cancel()
	played, message, err := s.daemon.TestAnnounce(ctx, req.TicketCode, req.RoomName)
	resp.Played = played
	resp.Message = message
	return err
}

func (s *service) LogTail(req LogTailRequest, resp *LogTailResponse) error {
	logPath := s.daemon.LogPath()
	if logPath == "" {
		resp.Offset = 0
		return nil
	}
	wait := time.Duration(req.WaitMillis) * time.Millisecond
	if wait <= 0 && req.Follow {
		wait = time.Second
	}
	options := logs.TailOptions{
		Offset: req.Offset,
		Limit:  req.Limit,
		Follow: req.Follow,
		Wait:   wait,
		Match:  req.Match,
	}
	ctx := s.ctx
	if req.Follow && wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, wait+500*time.Millisecond)
		defer cancel()
	}
	result, err := logs.Tail(ctx, logPath, options)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			resp.Offset = result.Offset
			return nil
		}
		return err
	}
	resp.Lines = result.Lines
	resp.Offset = result.Offset
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	ctx, cancel := s.callContext()
	defer cancel()
	sent, message, err := s.daemon.TestNotification(ctx)
	resp.Sent = sent
	resp.Message = message
	return err
}
