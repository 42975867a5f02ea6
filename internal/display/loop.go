package display

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"queuedisplay/internal/announce"
	"queuedisplay/internal/board"
	"queuedisplay/internal/calls"
	"queuedisplay/internal/logging"
	"queuedisplay/internal/queueapi"
	"queuedisplay/internal/services"
)

// DefaultInterval is the poll period.
const DefaultInterval = 4 * time.Second

// ErrStopped is returned by commands sent after the loop has exited.
var ErrStopped = errors.New("display loop stopped")

// Hooks receive loop side effects. Every hook runs on the loop goroutine and
// must not block.
type Hooks struct {
	OnState   func(State)
	OnCalls   func(ctx context.Context, events []calls.Event)
	OnLab     func(ctx context.Context, events []calls.LabEvent)
	OnBackend func(ctx context.Context, available bool, err error)
	OnClock   func(text string)
}

// Options configures a Loop.
type Options struct {
	Settings     Settings
	Interval     time.Duration
	HospitalName string
	AutoEnable   bool
	Hooks        Hooks
	Presentation PresentationController
	Clock        *Clock
	Now          func() time.Time
}

type loopMsg interface{ isLoopMsg() }

type configureMsg struct {
	settings Settings
	reply    chan State
}

type roomCycleMsg struct {
	epoch   uint64
	seq     uint64
	cycleID string
	results []queueapi.RoomResult
}

type labCycleMsg struct {
	epoch   uint64
	seq     uint64
	cycleID string
	board   *queueapi.LabDisplay
	err     error
}

type clockMsg struct{ text string }

type audioMsg struct {
	enable bool
	reply  chan State
}

type fullscreenMsg struct {
	reply chan fullscreenReply
}

type fullscreenSyncMsg struct {
	active bool
	reply  chan State
}

type fullscreenReply struct {
	state State
	err   error
}

type refreshMsg struct{ reply chan State }

type inflightMsg struct{ reply chan int }

type stopMsg struct{ reply chan State }

func (configureMsg) isLoopMsg()      {}
func (roomCycleMsg) isLoopMsg()      {}
func (labCycleMsg) isLoopMsg()       {}
func (clockMsg) isLoopMsg()          {}
func (audioMsg) isLoopMsg()          {}
func (fullscreenMsg) isLoopMsg()     {}
func (fullscreenSyncMsg) isLoopMsg() {}
func (refreshMsg) isLoopMsg()        {}
func (inflightMsg) isLoopMsg()       {}
func (stopMsg) isLoopMsg()           {}

// Loop owns the poll schedule and every piece of display state. All state is
// mutated on the goroutine running Run; other goroutines talk to it through
// the inbox. Each fetch is tagged with the epoch current at issue time and a
// sequence number; results from an older epoch, or older than the last
// applied cycle, are discarded on arrival.
type Loop struct {
	inbox      chan loopMsg
	done       chan struct{}
	latest     atomic.Pointer[State]
	fetcher    *queueapi.RoomFetcher
	source     queueapi.Source
	announcer  *announce.Announcer
	fullscreen *FullscreenController
	clock      *Clock
	hooks      Hooks
	interval   time.Duration
	now        func() time.Time
	logger     *slog.Logger
	autoEnable bool

	// Owned by the Run goroutine.
	state       State
	epoch       uint64
	seq         uint64
	appliedSeq  uint64
	epochCtx    context.Context
	epochCancel context.CancelFunc
	inflight    map[uint64]context.CancelFunc
	ticker      *time.Ticker
	detector    *calls.Detector
	labDetector *calls.LabDetector
	outage      bool
	lastBlink   []string
}

// NewLoop wires a loop around a backend source and an announcer.
func NewLoop(source queueapi.Source, announcer *announce.Announcer, opts Options, logger *slog.Logger) *Loop {
	logger = logging.NewComponentLogger(logger, "poll-loop")
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Clock == nil {
		opts.Clock = NewClock()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Settings.Mode == "" {
		opts.Settings.Mode = ModeQueue
	}
	if announcer == nil {
		announcer = announce.New(nil, nil, announce.DefaultOptions(), logger)
	}
	l := &Loop{
		inbox:       make(chan loopMsg, 64),
		done:        make(chan struct{}),
		fetcher:     queueapi.NewRoomFetcher(source, logger),
		source:      source,
		announcer:   announcer,
		fullscreen:  NewFullscreenController(opts.Presentation),
		clock:       opts.Clock,
		hooks:       opts.Hooks,
		interval:    opts.Interval,
		now:         opts.Now,
		logger:      logger,
		autoEnable:  opts.AutoEnable,
		detector:    calls.NewDetector(),
		labDetector: calls.NewLabDetector(),
		inflight:    make(map[uint64]context.CancelFunc),
	}
	l.state = State{
		Status:         StatusIdle,
		Settings:       cloneSettings(opts.Settings),
		HospitalName:   opts.HospitalName,
		OverlayVisible: true,
		Phase:          calls.PhaseBootstrap.String(),
		Clock:          l.clock.Now(),
	}
	l.state.MissingConfig = !l.state.Settings.needsPolling()
	snapshot := l.state.clone()
	l.latest.Store(&snapshot)
	return l
}

// Announcer exposes the announcer driven by the loop.
func (l *Loop) Announcer() *announce.Announcer {
	return l.announcer
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Snapshot returns the most recently published state without blocking.
func (l *Loop) Snapshot() State {
	return l.latest.Load().clone()
}

// Run drives the loop until ctx is cancelled or Stop is called.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go l.clock.Run(ctx, func(text string) {
		l.send(ctx, clockMsg{text: text})
	})

	if l.autoEnable {
		l.announcer.EnableAudio(ctx)
		l.state.AudioEnabled = true
		l.state.OverlayVisible = false
	}
	l.enter(ctx)
	l.publish()

	for {
		var tick <-chan time.Time
		if l.ticker != nil {
			tick = l.ticker.C
		}
		select {
		case <-ctx.Done():
			l.stop()
			l.publish()
			return
		case <-tick:
			l.startCycle(ctx)
		case m := <-l.inbox:
			if !l.handle(ctx, m) {
				return
			}
		}
	}
}

func (l *Loop) handle(ctx context.Context, m loopMsg) bool {
	switch msg := m.(type) {
	case configureMsg:
		l.configure(ctx, msg.settings)
		msg.reply <- l.publish()
	case roomCycleMsg:
		l.applyRooms(ctx, msg)
	case labCycleMsg:
		l.applyLab(ctx, msg)
	case clockMsg:
		l.state.Clock = msg.text
		blinking := l.announcer.Blinks().Active()
		if !slices.Equal(blinking, l.lastBlink) {
			l.publish()
		} else {
			l.publishClock()
			if l.hooks.OnClock != nil {
				l.hooks.OnClock(msg.text)
			}
		}
	case audioMsg:
		if msg.enable {
			l.announcer.EnableAudio(ctx)
			l.state.AudioEnabled = true
		}
		l.state.OverlayVisible = false
		msg.reply <- l.publish()
	case fullscreenMsg:
		active, err := l.fullscreen.Toggle(ctx)
		l.state.Fullscreen = active
		msg.reply <- fullscreenReply{state: l.publish(), err: err}
	case fullscreenSyncMsg:
		l.fullscreen.Sync(msg.active)
		l.state.Fullscreen = msg.active
		msg.reply <- l.publish()
	case inflightMsg:
		msg.reply <- len(l.inflight)
	case refreshMsg:
		if l.state.Status == StatusPolling {
			l.startCycle(ctx)
		}
		msg.reply <- l.publish()
	case stopMsg:
		l.stop()
		msg.reply <- l.publish()
		return false
	}
	return true
}

// enter moves to Polling with an immediate first cycle, or to Idle when the
// settings cannot be polled.
func (l *Loop) enter(ctx context.Context) {
	l.epoch++
	if l.epochCancel != nil {
		l.epochCancel()
	}
	l.cancelCycles(l.seq)
	l.epochCtx, l.epochCancel = context.WithCancel(services.WithEpoch(ctx, l.epoch))
	l.state.Epoch = l.epoch
	l.state.MissingConfig = !l.state.Settings.needsPolling()

	if l.state.MissingConfig {
		l.stopTicker()
		l.state.Status = StatusIdle
		l.logger.Info("no rooms configured; polling paused",
			logging.String(logging.FieldEventType, "display_idle"),
			logging.Epoch(l.epoch),
		)
		return
	}
	l.state.Status = StatusPolling
	l.logger.Info("polling started",
		logging.String(logging.FieldEventType, "polling_started"),
		logging.Epoch(l.epoch),
		logging.String("mode", l.state.Settings.Mode),
		logging.Any("rooms", l.state.Settings.Rooms),
		logging.Int("queue_type", l.state.Settings.QueueType),
		logging.Duration("interval", l.interval),
	)
	l.startCycle(ctx)
	l.resetTicker()
}

func (l *Loop) configure(ctx context.Context, settings Settings) {
	settings = cloneSettings(settings)
	if settings.Mode == "" {
		settings.Mode = l.state.Settings.Mode
	}
	if settings.Equal(l.state.Settings) && l.state.Status != StatusStopped {
		return
	}
	l.logger.Info("display reconfigured",
		logging.String(logging.FieldEventType, "display_reconfigured"),
		logging.Any("previous_rooms", l.state.Settings.Rooms),
		logging.Any("rooms", settings.Rooms),
		logging.Int("queue_type", settings.QueueType),
		logging.String("mode", settings.Mode),
	)
	l.state.Settings = settings
	l.detector.Reset()
	l.labDetector.Reset()
	l.announcer.Blinks().Clear()
	l.state.Board = nil
	l.state.Lab = nil
	l.state.FailedRooms = nil
	l.state.Stale = false
	l.state.Phase = l.detector.Phase().String()
	l.appliedSeq = l.seq
	l.enter(ctx)
}

func (l *Loop) stop() {
	l.stopTicker()
	l.epoch++
	l.state.Epoch = l.epoch
	if l.epochCancel != nil {
		l.epochCancel()
	}
	l.cancelCycles(l.seq)
	l.state.Status = StatusStopped
	l.logger.Info("polling stopped", logging.String(logging.FieldEventType, "polling_stopped"))
}

func (l *Loop) resetTicker() {
	if l.ticker == nil {
		l.ticker = time.NewTicker(l.interval)
		return
	}
	l.ticker.Reset(l.interval)
}

func (l *Loop) stopTicker() {
	if l.ticker != nil {
		l.ticker.Stop()
		l.ticker = nil
	}
}

// startCycle issues one fetch for the current epoch. Cycles may overlap, but
// each one is abandoned after a single poll interval or once a newer cycle
// has been applied.
func (l *Loop) startCycle(ctx context.Context) {
	l.seq++
	epoch, seq := l.epoch, l.seq
	cycleID := uuid.NewString()
	cycleCtx, cancel := context.WithTimeout(services.WithRequestID(l.epochCtx, cycleID), l.interval)
	l.inflight[seq] = cancel
	settings := cloneSettings(l.state.Settings)

	if settings.Mode == ModeLab {
		go func() {
			defer cancel()
			lab, err := l.source.FetchLab(cycleCtx)
			l.send(ctx, labCycleMsg{epoch: epoch, seq: seq, cycleID: cycleID, board: lab, err: err})
		}()
		return
	}
	go func() {
		defer cancel()
		results := l.fetcher.FetchAll(cycleCtx, settings.Rooms, settings.QueueType)
		l.send(ctx, roomCycleMsg{epoch: epoch, seq: seq, cycleID: cycleID, results: results})
	}()
}

// cancelCycles abandons every in-flight cycle up to and including seq.
func (l *Loop) cancelCycles(seq uint64) {
	for s, cancel := range l.inflight {
		if s <= seq {
			cancel()
			delete(l.inflight, s)
		}
	}
}

// Inflight reports how many fetch cycles have not yet been applied or
// abandoned.
func (l *Loop) Inflight(ctx context.Context) (int, error) {
	reply := make(chan int, 1)
	if err := l.request(ctx, func() loopMsg { return inflightMsg{reply: reply} }); err != nil {
		return 0, err
	}
	return await(ctx, l, reply)
}

// accept applies the epoch and sequence guards.
func (l *Loop) accept(epoch, seq uint64) bool {
	if cancel, ok := l.inflight[seq]; ok {
		cancel()
		delete(l.inflight, seq)
	}
	if epoch != l.epoch || l.state.Status != StatusPolling {
		l.logger.Debug("stale cycle discarded",
			logging.Epoch(epoch),
			logging.Uint64("current_epoch", l.epoch),
			logging.String(logging.FieldEventType, "cycle_stale"),
		)
		return false
	}
	if seq <= l.appliedSeq {
		l.logger.Debug("out-of-order cycle discarded",
			logging.Uint64("seq", seq),
			logging.Uint64("applied_seq", l.appliedSeq),
			logging.String(logging.FieldEventType, "cycle_superseded"),
		)
		return false
	}
	l.appliedSeq = seq
	l.cancelCycles(seq)
	l.state.Cycles++
	return true
}

func (l *Loop) applyRooms(ctx context.Context, msg roomCycleMsg) {
	if !l.accept(msg.epoch, msg.seq) {
		return
	}
	failed := make([]string, 0)
	var firstErr error
	for _, result := range msg.results {
		if result.Snapshot == nil {
			failed = append(failed, result.RoomID)
			if firstErr == nil {
				firstErr = result.Err
			}
		}
	}
	l.state.FailedRooms = failed

	if queueapi.AllFailed(msg.results) {
		l.markOutage(ctx, firstErr)
		l.publish()
		return
	}
	l.markRecovered(ctx)

	view := board.Aggregate(queueapi.Snapshots(msg.results))
	l.state.Board = &view
	l.state.LastUpdated = l.now()

	events := l.detector.ObserveResults(msg.results)
	l.state.Phase = l.detector.Phase().String()
	if len(events) > 0 {
		callCtx := services.WithRequestID(l.epochCtx, msg.cycleID)
		for _, event := range events {
			l.logger.InfoContext(callCtx, "ticket called",
				logging.Room(event.RoomID),
				logging.Ticket(event.TicketID),
				logging.String("ticket_code", event.TicketCode),
				logging.String("room_name", event.RoomName),
				logging.String(logging.FieldEventType, "ticket_called"),
			)
		}
		l.announcer.Announce(l.epochCtx, events)
		l.remember(events)
		if l.hooks.OnCalls != nil {
			l.hooks.OnCalls(l.epochCtx, events)
		}
	}
	l.logger.Debug("poll cycle applied",
		logging.Uint64("seq", msg.seq),
		logging.String(logging.FieldCorrelationID, msg.cycleID),
		logging.Int("rooms_ok", len(msg.results)-len(failed)),
		logging.Int("rooms_failed", len(failed)),
		logging.Int("new_calls", len(events)),
	)
	l.publish()
}

func (l *Loop) applyLab(ctx context.Context, msg labCycleMsg) {
	if !l.accept(msg.epoch, msg.seq) {
		return
	}
	if msg.err != nil || msg.board == nil {
		l.logger.Debug("lab board fetch failed",
			logging.String(logging.FieldCorrelationID, msg.cycleID),
			logging.Error(msg.err),
		)
		l.markOutage(ctx, msg.err)
		l.publish()
		return
	}
	l.markRecovered(ctx)
	l.state.Lab = msg.board
	l.state.LastUpdated = l.now()

	events := l.labDetector.Observe(msg.board)
	if len(events) > 0 {
		l.logger.InfoContext(services.WithRequestID(l.epochCtx, msg.cycleID), "lab results completed",
			logging.Int("count", len(events)),
			logging.String("order_code", events[0].OrderCode),
			logging.String(logging.FieldEventType, "lab_completed"),
		)
		l.announcer.AnnounceLab(l.epochCtx, events)
		if l.hooks.OnLab != nil {
			l.hooks.OnLab(l.epochCtx, events)
		}
	}
	l.publish()
}

func (l *Loop) markOutage(ctx context.Context, err error) {
	l.state.Stale = true
	if l.outage {
		return
	}
	l.outage = true
	logging.WarnWithContext(l.logger, "backend unavailable; keeping last known queue on screen", "backend_unavailable",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, services.Hint(err)),
		logging.String(logging.FieldImpact, "display shows stale data until the backend answers"),
	)
	if l.hooks.OnBackend != nil {
		l.hooks.OnBackend(ctx, false, err)
	}
}

func (l *Loop) markRecovered(ctx context.Context) {
	l.state.Stale = false
	if !l.outage {
		return
	}
	l.outage = false
	l.logger.Info("backend reachable again", logging.String(logging.FieldEventType, "backend_recovered"))
	if l.hooks.OnBackend != nil {
		l.hooks.OnBackend(ctx, true, nil)
	}
}

func (l *Loop) remember(events []calls.Event) {
	now := l.now()
	recent := make([]RecentCall, 0, len(events)+len(l.state.RecentCalls))
	for i := len(events) - 1; i >= 0; i-- {
		recent = append(recent, RecentCall{Event: events[i], CalledAt: now})
	}
	recent = append(recent, l.state.RecentCalls...)
	if len(recent) > recentCallLimit {
		recent = recent[:recentCallLimit]
	}
	l.state.RecentCalls = recent
}

func (l *Loop) publish() State {
	l.state.AudioEnabled = l.announcer.AudioEnabled()
	l.state.Fullscreen = l.fullscreen.Active()
	l.lastBlink = l.announcer.Blinks().Active()
	l.state.Blinking = l.lastBlink
	snapshot := l.state.clone()
	l.latest.Store(&snapshot)
	if l.hooks.OnState != nil {
		l.hooks.OnState(snapshot.clone())
	}
	return snapshot
}

// publishClock updates the stored clock without notifying observers.
func (l *Loop) publishClock() {
	snapshot := l.latest.Load().clone()
	snapshot.Clock = l.state.Clock
	l.latest.Store(&snapshot)
}

func (l *Loop) send(ctx context.Context, msg loopMsg) {
	select {
	case l.inbox <- msg:
	case <-ctx.Done():
	case <-l.done:
	}
}

func (l *Loop) request(ctx context.Context, build func() loopMsg) error {
	select {
	case <-l.done:
		return ErrStopped
	default:
	}
	select {
	case l.inbox <- build():
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func await[T any](ctx context.Context, l *Loop, reply chan T) (T, error) {
	var zero T
	select {
	case value := <-reply:
		return value, nil
	case <-l.done:
		return zero, ErrStopped
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Configure replaces the settings. Any change bumps the epoch, resets change
// detection, and restarts polling with an immediate fetch.
func (l *Loop) Configure(ctx context.Context, settings Settings) (State, error) {
	reply := make(chan State, 1)
	if err := l.request(ctx, func() loopMsg { return configureMsg{settings: settings, reply: reply} }); err != nil {
		return State{}, err
	}
	return await(ctx, l, reply)
}

// EnableAudio grants audio permission and hides the overlay.
func (l *Loop) EnableAudio(ctx context.Context) (State, error) {
	reply := make(chan State, 1)
	if err := l.request(ctx, func() loopMsg { return audioMsg{enable: true, reply: reply} }); err != nil {
		return State{}, err
	}
	return await(ctx, l, reply)
}

// DismissAudio hides the overlay without granting audio.
func (l *Loop) DismissAudio(ctx context.Context) (State, error) {
	reply := make(chan State, 1)
	if err := l.request(ctx, func() loopMsg { return audioMsg{enable: false, reply: reply} }); err != nil {
		return State{}, err
	}
	return await(ctx, l, reply)
}

// ToggleFullscreen flips presentation mode; unsupported platforms are a no-op.
func (l *Loop) ToggleFullscreen(ctx context.Context) (State, error) {
	reply := make(chan fullscreenReply, 1)
	if err := l.request(ctx, func() loopMsg { return fullscreenMsg{reply: reply} }); err != nil {
		return State{}, err
	}
	res, err := await(ctx, l, reply)
	if err != nil {
		return State{}, err
	}
	return res.state, res.err
}

// SyncFullscreen adopts the fullscreen mode a kiosk page reports.
func (l *Loop) SyncFullscreen(ctx context.Context, active bool) (State, error) {
	reply := make(chan State, 1)
	if err := l.request(ctx, func() loopMsg { return fullscreenSyncMsg{active: active, reply: reply} }); err != nil {
		return State{}, err
	}
	return await(ctx, l, reply)
}

// Refresh triggers an extra fetch without waiting for the next tick.
func (l *Loop) Refresh(ctx context.Context) (State, error) {
	reply := make(chan State, 1)
	if err := l.request(ctx, func() loopMsg { return refreshMsg{reply: reply} }); err != nil {
		return State{}, err
	}
	return await(ctx, l, reply)
}

// Stop tears the loop down. In-flight fetches are cancelled and their results
// discarded.
func (l *Loop) Stop(ctx context.Context) (State, error) {
	reply := make(chan State, 1)
	if err := l.request(ctx, func() loopMsg { return stopMsg{reply: reply} }); err != nil {
		if errors.Is(err, ErrStopped) {
			return l.Snapshot(), nil
		}
		return State{}, err
	}
	return await(ctx, l, reply)
}

func cloneSettings(s Settings) Settings {
	s.Rooms = slices.Clone(s.Rooms)
	if s.Rooms == nil {
		s.Rooms = []string{}
	}
	return s
}
