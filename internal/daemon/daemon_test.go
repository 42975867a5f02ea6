package daemon_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"queuedisplay/internal/api"
	"queuedisplay/internal/daemon"
	"queuedisplay/internal/display"
	"queuedisplay/internal/logging"
	"queuedisplay/internal/notifications"
	"queuedisplay/internal/testsupport"
)

func newDaemon(t *testing.T, opts ...testsupport.ConfigOption) (*daemon.Daemon, *testsupport.Backend) {
	t.Helper()
	backend := testsupport.NewBackend(t)
	backend.SetRoom(testsupport.Room("101", "Phòng 101", "t1"))
	backend.SetRoom(testsupport.Room("102", "Phòng 102"))
	opts = append([]testsupport.ConfigOption{
		testsupport.WithBackend(backend.URL()),
		testsupport.WithRooms("101", "102"),
	}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	d, err := daemon.New(cfg, logging.NewNop(), "")
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d, backend
}

func waitForCycle(t *testing.T, d *daemon.Daemon) api.BoardResponse {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		board, err := d.Board()
		if err == nil && board.Display.Cycles > 0 {
			return board
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("display never completed a poll cycle")
	return api.BoardResponse{}
}

func TestDaemonStartStop(t *testing.T) {
	d, _ := newDaemon(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second Start to fail")
	}

	board := waitForCycle(t, d)
	if board.Board == nil || len(board.Board.Rooms) != 2 {
		t.Fatalf("unexpected board: %+v", board.Board)
	}
	if len(board.RecentCalls) != 0 {
		t.Fatalf("bootstrap cycle must not record calls, got %+v", board.RecentCalls)
	}

	status := d.Status(ctx)
	if !status.Running || status.Display.Status != string(display.StatusPolling) {
		t.Fatalf("unexpected status: %+v", status)
	}
	if status.APIAddress == "" {
		t.Fatal("expected api address while running")
	}

	d.Stop()
	status = d.Status(ctx)
	if status.Running || status.Display.Status != string(display.StatusStopped) {
		t.Fatalf("expected stopped status, got %+v", status)
	}
	if _, err := d.Board(); !errors.Is(err, daemon.ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning, got %v", err)
	}

	if err := d.Start(ctx); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	waitForCycle(t, d)
}

func TestDaemonLockPreventsSecondInstance(t *testing.T) {
	backend := testsupport.NewBackend(t)
	cfg := testsupport.NewConfig(t, testsupport.WithBackend(backend.URL()))
	first, err := daemon.New(cfg, logging.NewNop(), "")
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { _ = first.Close() })
	second, err := daemon.New(cfg, logging.NewNop(), "")
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { _ = second.Close() })

	ctx := context.Background()
	if err := first.Start(ctx); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if err := second.Start(ctx); err == nil {
		t.Fatal("expected second instance to be refused")
	}
	first.Stop()
	if err := second.Start(ctx); err != nil {
		t.Fatalf("second Start after release: %v", err)
	}
}

func TestDaemonConfigureWhileStoppedAppliesOnStart(t *testing.T) {
	d, backend := newDaemon(t)
	backend.SetRoom(testsupport.Room("201", "Phòng 201", "x9"))

	state, err := d.Configure(context.Background(), api.ConfigureRequest{Rooms: []string{"201"}})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if state.Status != display.StatusStopped || len(state.Settings.Rooms) != 1 {
		t.Fatalf("unexpected stopped state: %+v", state)
	}

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	board := waitForCycle(t, d)
	if len(board.Board.Rooms) != 1 || board.Board.Rooms[0].RoomID != "201" {
		t.Fatalf("expected configured room, got %+v", board.Board.Rooms)
	}

	if _, err := d.Configure(context.Background(), api.ConfigureRequest{Mode: "bogus"}); !errors.Is(err, api.ErrInvalidMode) {
		t.Fatalf("expected ErrInvalidMode, got %v", err)
	}
}

func TestDaemonAudioAndTestAnnounce(t *testing.T) {
	d, _ := newDaemon(t)
	ctx := context.Background()
	if ok, _, err := d.TestAnnounce(ctx, "A001", "Phòng 101"); ok || !errors.Is(err, daemon.ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning before start, got ok=%v err=%v", ok, err)
	}
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	ok, message, err := d.TestAnnounce(ctx, "A001", "Phòng 101")
	if err != nil || ok {
		t.Fatalf("expected muted announcement, got ok=%v err=%v", ok, err)
	}
	if !strings.Contains(message, "audio is not enabled") {
		t.Fatalf("unexpected message %q", message)
	}

	state, err := d.EnableAudio(ctx)
	if err != nil {
		t.Fatalf("EnableAudio: %v", err)
	}
	if !state.AudioEnabled || state.OverlayVisible {
		t.Fatalf("unexpected state after enable: %+v", state)
	}
	ok, message, err = d.TestAnnounce(ctx, "A001", "Phòng 101")
	if err != nil || !ok {
		t.Fatalf("expected announcement, got ok=%v err=%v", ok, err)
	}
	if message != "Mời số A001 vào Phòng 101" {
		t.Fatalf("unexpected spoken text %q", message)
	}

	state, err = d.ToggleFullscreen(ctx)
	if err != nil {
		t.Fatalf("ToggleFullscreen: %v", err)
	}
	if state.Fullscreen {
		t.Fatal("fullscreen must stay off without a capable kiosk page")
	}
}

type recordingNotifier struct {
	events chan notifications.Event
}

func (r *recordingNotifier) Publish(_ context.Context, event notifications.Event, _ notifications.Payload) error {
	r.events <- event
	return nil
}

func TestDaemonTestNotification(t *testing.T) {
	d, _ := newDaemon(t)
	ok, message, err := d.TestNotification(context.Background())
	if ok || err != nil || message != "ntfy topic not configured" {
		t.Fatalf("unexpected result ok=%v message=%q err=%v", ok, message, err)
	}

	backend := testsupport.NewBackend(t)
	cfg := testsupport.NewConfig(t, testsupport.WithBackend(backend.URL()))
	cfg.Notifications.NtfyTopic = "http://ntfy.invalid/topic"
	rec := &recordingNotifier{events: make(chan notifications.Event, 1)}
	d2, err := daemon.New(cfg, logging.NewNop(), "", daemon.WithNotifier(rec))
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	ok, _, err = d2.TestNotification(context.Background())
	if !ok || err != nil {
		t.Fatalf("expected notification sent, got ok=%v err=%v", ok, err)
	}
	if got := <-rec.events; got != notifications.EventTest {
		t.Fatalf("unexpected event %s", got)
	}
}

func TestDaemonOutageNotifications(t *testing.T) {
	backend := testsupport.NewBackend(t)
	backend.SetRoom(testsupport.Room("101", "Phòng 101"))
	backend.FailRoom("101", true)
	cfg := testsupport.NewConfig(t, testsupport.WithBackend(backend.URL()), testsupport.WithRooms("101"))
	rec := &recordingNotifier{events: make(chan notifications.Event, 4)}
	d, err := daemon.New(cfg, logging.NewNop(), "", daemon.WithNotifier(rec))
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case event := <-rec.events:
		if event != notifications.EventBackendUnavailable {
			t.Fatalf("unexpected event %s", event)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("expected backend outage notification")
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		board, err := d.Board()
		if err != nil {
			t.Fatalf("Board: %v", err)
		}
		if board.Display.Stale {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected stale display during outage: %+v", board.Display)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestDaemonHTTPBoard(t *testing.T) {
	d, _ := newDaemon(t)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitForCycle(t, d)

	addr := d.Status(context.Background()).APIAddress
	resp, err := http.Get("http://" + addr + "/api/board")
	if err != nil {
		t.Fatalf("GET /api/board: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	var board api.BoardResponse
	if err := json.NewDecoder(resp.Body).Decode(&board); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if board.Board == nil || len(board.Board.Rooms) != 2 {
		t.Fatalf("unexpected board payload: %+v", board)
	}
}
