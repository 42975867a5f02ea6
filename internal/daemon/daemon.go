package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"queuedisplay/internal/announce"
	"queuedisplay/internal/api"
	"queuedisplay/internal/blink"
	"queuedisplay/internal/calls"
	"queuedisplay/internal/config"
	"queuedisplay/internal/deps"
	"queuedisplay/internal/display"
	"queuedisplay/internal/kiosk"
	"queuedisplay/internal/logging"
	"queuedisplay/internal/notifications"
	"queuedisplay/internal/preflight"
	"queuedisplay/internal/queueapi"
)

// ErrNotRunning is returned by display commands while the daemon is stopped.
var ErrNotRunning = errors.New("display is not running")

// Daemon coordinates the poll loop, the kiosk surface, and the HTTP API, and
// enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	logPath  string
	source   queueapi.Source
	notifier notifications.Service

	lockPath string
	lock     *flock.Flock

	lifecycle sync.Mutex

	mu       sync.Mutex
	settings display.Settings
	run      *run
	deps     []deps.Status

	running atomic.Bool
}

// run holds the components owned by one Start/Stop cycle.
type run struct {
	cancel     context.CancelFunc
	hub        *kiosk.Hub
	loop       *display.Loop
	dispatcher *notifications.Dispatcher
	api        *apiServer
	sink       string
	wg         sync.WaitGroup
}

// Option customizes a Daemon.
type Option func(*Daemon)

// WithSource replaces the backend client, mainly for tests.
func WithSource(source queueapi.Source) Option {
	return func(d *Daemon) {
		if source != nil {
			d.source = source
		}
	}
}

// WithNotifier replaces the push notification service.
func WithNotifier(svc notifications.Service) Option {
	return func(d *Daemon) {
		if svc != nil {
			d.notifier = svc
		}
	}
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, logger *slog.Logger, logPath string, opts ...Option) (*Daemon, error) {
	if cfg == nil || logger == nil {
		return nil, errors.New("daemon requires config and logger")
	}

	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		logPath:  logPath,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		settings: display.Settings{
			Rooms:     slices.Clone(cfg.Display.Rooms),
			QueueType: cfg.Display.QueueType,
			Mode:      cfg.Display.Mode,
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.source == nil {
		d.source = queueapi.NewConfiguredClient(cfg)
	}
	if d.notifier == nil {
		d.notifier = notifications.NewService(cfg)
	}
	return d, nil
}

// Start acquires the daemon lock and launches the poll loop, the kiosk hub,
// and the HTTP API.
func (d *Daemon) Start(ctx context.Context) error {
	d.lifecycle.Lock()
	defer d.lifecycle.Unlock()
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another queuedisplay daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	r := d.newRun(runCtx, cancel)
	srv, err := newAPIServer(d.cfg, d, r.hub, d.logger)
	if err == nil && srv != nil {
		err = srv.start(runCtx)
	}
	if err != nil {
		cancel()
		r.wg.Wait()
		_ = d.lock.Unlock()
		return fmt.Errorf("start api server: %w", err)
	}
	r.api = srv
	r.goRun(func() { r.loop.Run(runCtx) })

	dependencies := preflight.CheckSystemDeps(d.cfg)
	d.mu.Lock()
	d.deps = dependencies
	d.run = r
	settings := d.settings
	d.mu.Unlock()
	d.running.Store(true)
	d.logger.Info("queuedisplay daemon started",
		logging.String("lock", d.lockPath),
		logging.String("sink", r.sink),
		logging.String("mode", settings.Mode),
		logging.Int("rooms", len(settings.Rooms)),
		logging.String(logging.FieldEventType, "daemon_started"),
	)
	return nil
}

func (d *Daemon) newRun(ctx context.Context, cancel context.CancelFunc) *run {
	r := &run{cancel: cancel}
	r.hub = kiosk.NewHub(d.logger)
	r.dispatcher = notifications.NewDispatcher(d.notifier, d.logger)
	r.goRun(func() { r.hub.Run(ctx) })
	r.goRun(func() { r.dispatcher.Run(ctx) })

	var sink announce.NotificationSink
	switch d.cfg.Announce.Sink {
	case config.SinkExec:
		execSink := announce.NewExecSink(announce.ExecOptions{
			SpeechCommand: d.cfg.Announce.SpeechCommand,
			ToneCommand:   d.cfg.Announce.ToneCommand,
		}, d.logger)
		sink = execSink
		r.sink = execSink.String()
		r.goRun(func() { execSink.Run(ctx) })
	case config.SinkNone:
		sink = announce.NoopSink{}
		r.sink = config.SinkNone
	default:
		sink = kiosk.NewBrowserSink(r.hub)
		r.sink = config.SinkBrowser
	}

	d.mu.Lock()
	settings := d.settings
	d.mu.Unlock()

	announcer := announce.New(sink, blink.New(d.cfg.BlinkDuration()), announceOptions(d.cfg), d.logger)
	r.loop = display.NewLoop(d.source, announcer, display.Options{
		Settings:     settings,
		Interval:     d.cfg.PollInterval(),
		HospitalName: d.cfg.Display.HospitalName,
		AutoEnable:   d.cfg.Announce.AutoEnable,
		Presentation: kiosk.NewBrowserPresentation(r.hub),
		Hooks:        d.hooks(r),
	}, d.logger)
	return r
}

func (r *run) goRun(fn func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		fn()
	}()
}

func announceOptions(cfg *config.Config) announce.Options {
	return announce.Options{
		Lang:         cfg.Announce.Locale,
		Rate:         cfg.Announce.Rate,
		CallTemplate: cfg.Announce.CallTemplate,
		LabTemplate:  cfg.Announce.LabTemplate,
		Tone: announce.Tone{
			FrequencyHz: cfg.Announce.ToneFrequencyHz,
			Duration:    time.Duration(cfg.Announce.ToneDurationMS) * time.Millisecond,
			Gain:        cfg.Announce.ToneGain,
		},
	}
}

func (d *Daemon) hooks(r *run) display.Hooks {
	baseURL := d.cfg.Backend.BaseURL
	return display.Hooks{
		OnState: r.hub.PublishState,
		OnClock: r.hub.PublishClock,
		OnCalls: func(_ context.Context, events []calls.Event) {
			for _, event := range events {
				r.dispatcher.Enqueue(notifications.EventTicketCalled, notifications.Payload{
					"ticketId":   event.TicketID,
					"ticketCode": event.TicketCode,
					"roomId":     event.RoomID,
					"roomName":   event.RoomName,
				})
			}
		},
		OnLab: func(_ context.Context, events []calls.LabEvent) {
			for _, event := range events {
				if !event.Resolved() {
					continue
				}
				r.dispatcher.Enqueue(notifications.EventLabCompleted, notifications.Payload{
					"itemId":    event.ItemID,
					"orderCode": event.OrderCode,
				})
			}
		},
		OnBackend: func(_ context.Context, available bool, err error) {
			if available {
				r.dispatcher.Enqueue(notifications.EventBackendRecovered, notifications.Payload{"baseURL": baseURL})
				return
			}
			r.dispatcher.Enqueue(notifications.EventBackendUnavailable, notifications.Payload{"baseURL": baseURL, "error": err})
		},
	}
}

// Stop tears down the current run and releases the daemon lock.
func (d *Daemon) Stop() {
	d.lifecycle.Lock()
	defer d.lifecycle.Unlock()
	if !d.running.Load() {
		return
	}

	d.mu.Lock()
	r := d.run
	d.run = nil
	d.mu.Unlock()
	d.running.Store(false)

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if final, err := r.loop.Stop(stopCtx); err == nil {
		d.mu.Lock()
		d.settings = final.Settings
		d.mu.Unlock()
	}
	r.api.stop()
	r.cancel()
	r.wg.Wait()

	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_lock_release_failed"),
			logging.String(logging.FieldErrorHint, "remove the lock file if the next start fails"),
		)
	}
	d.logger.Info("queuedisplay daemon stopped", logging.String(logging.FieldEventType, "daemon_stopped"))
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) api.DaemonStatus {
	d.mu.Lock()
	r := d.run
	dependencies := d.deps
	settings := d.settings
	d.mu.Unlock()

	if dependencies == nil {
		dependencies = preflight.CheckSystemDeps(d.cfg)
	}
	status := api.DaemonStatus{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		LockFilePath: d.lockPath,
		LogPath:      d.logPath,
		Dependencies: api.FromDependencies(dependencies),
	}
	if r == nil {
		status.Display = api.FromState(display.State{Status: display.StatusStopped, Settings: settings})
		return status
	}
	status.Sink = r.sink
	status.Display = api.FromState(r.loop.Snapshot())
	if r.api != nil {
		status.APIAddress = r.api.address()
	}
	countCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	if n, err := r.hub.Count(countCtx); err == nil {
		status.KioskClients = n
	} else {
		status.KioskClients = r.hub.Clients()
	}
	return status
}

// Board returns the latest render-ready board.
func (d *Daemon) Board() (api.BoardResponse, error) {
	r := d.current()
	if r == nil {
		return api.BoardResponse{}, ErrNotRunning
	}
	return api.BoardFromState(r.loop.Snapshot()), nil
}

func (d *Daemon) current() *run {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.run
}

// Configure changes rooms, queue type, or mode. While stopped the change is
// kept for the next start.
func (d *Daemon) Configure(ctx context.Context, req api.ConfigureRequest) (display.State, error) {
	d.mu.Lock()
	next, err := req.Settings(d.settings)
	if err != nil {
		d.mu.Unlock()
		return display.State{}, err
	}
	d.settings = next
	r := d.run
	d.mu.Unlock()

	d.logger.Info("display reconfigured",
		logging.String("mode", next.Mode),
		logging.String("rooms", strings.Join(next.Rooms, ",")),
		logging.Int("queue_type", next.QueueType),
		logging.String(logging.FieldEventType, "display_reconfigured"),
	)
	if r == nil {
		return display.State{Status: display.StatusStopped, Settings: next}, nil
	}
	return r.loop.Configure(ctx, next)
}

// EnableAudio grants audio permission on behalf of the kiosk operator.
func (d *Daemon) EnableAudio(ctx context.Context) (display.State, error) {
	r := d.current()
	if r == nil {
		return display.State{}, ErrNotRunning
	}
	return r.loop.EnableAudio(ctx)
}

// DismissAudio hides the overlay and keeps the display muted.
func (d *Daemon) DismissAudio(ctx context.Context) (display.State, error) {
	r := d.current()
	if r == nil {
		return display.State{}, ErrNotRunning
	}
	return r.loop.DismissAudio(ctx)
}

// ToggleFullscreen flips fullscreen on the kiosk pages.
func (d *Daemon) ToggleFullscreen(ctx context.Context) (display.State, error) {
	r := d.current()
	if r == nil {
		return display.State{}, ErrNotRunning
	}
	return r.loop.ToggleFullscreen(ctx)
}

// SyncFullscreen records the fullscreen mode a kiosk page reports.
func (d *Daemon) SyncFullscreen(ctx context.Context, active bool) (display.State, error) {
	r := d.current()
	if r == nil {
		return display.State{}, ErrNotRunning
	}
	return r.loop.SyncFullscreen(ctx, active)
}

// TestAnnounce speaks a sample call through the configured sink.
func (d *Daemon) TestAnnounce(ctx context.Context, ticketCode, roomName string) (bool, string, error) {
	r := d.current()
	if r == nil {
		return false, "display is not running", ErrNotRunning
	}
	announcer := r.loop.Announcer()
	if !announcer.AudioEnabled() {
		return false, "audio is not enabled; run queuedisplay audio enable", nil
	}
	text := announcer.CallText(calls.Event{TicketCode: ticketCode, RoomName: roomName})
	if !announcer.Test(ctx, text) {
		return false, "announcement was not played", nil
	}
	return true, text, nil
}

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if d.cfg == nil {
		return false, "configuration unavailable", errors.New("configuration unavailable")
	}
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	if err := d.notifier.Publish(ctx, notifications.EventTest, nil); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}
