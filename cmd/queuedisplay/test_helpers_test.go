package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"queuedisplay/internal/config"
	"queuedisplay/internal/daemon"
	"queuedisplay/internal/ipc"
	"queuedisplay/internal/logging"
	"queuedisplay/internal/queueapi"
	"queuedisplay/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	backend    *testsupport.Backend
	daemon     *daemon.Daemon
	server     *ipc.Server
	socketPath string
	configPath string
	logPath    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("QUEUEDISPLAY_API_URL", "")
	t.Setenv("QUEUEDISPLAY_ROOMS", "")
	t.Setenv("QUEUEDISPLAY_API_TOKEN", "")
	t.Setenv("NTFY_TOPIC", "")

	backend := testsupport.NewBackend(t)
	room := testsupport.Room("101", "Phòng 101", "a001")
	room.WaitingList = []queueapi.Ticket{
		{ID: "w1", TicketCode: "A002", QueueNumber: 2, PatientName: "Nguyễn Văn B", Priority: 1},
		{ID: "w2", TicketCode: "A003", QueueNumber: 3, PatientName: "Trần Thị C", Priority: 3},
	}
	room.TotalWaiting = 2
	room.AverageWaitMinutes = 12
	backend.SetRoom(room)
	backend.SetRoom(testsupport.Room("102", "Phòng 102"))

	cfg := testsupport.NewConfig(t,
		testsupport.WithBackend(backend.URL()),
		testsupport.WithRooms("101"),
	)
	logPath := filepath.Join(cfg.Paths.LogDir, "queuedisplay-test.log")
	if err := os.WriteFile(logPath, nil, 0o644); err != nil {
		t.Fatalf("create log file: %v", err)
	}

	configPath := filepath.Join(homeDir, ".config", "queuedisplay", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	logger := logging.NewNop()
	d, err := daemon.New(cfg, logger, logPath)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	socketPath := filepath.Join(cfg.Paths.LogDir, "cli.sock")
	srv, err := ipc.NewServer(ctx, socketPath, d, logger)
	if err != nil {
		cancel()
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping CLI test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()

	t.Cleanup(func() {
		cancel()
		srv.Close()
		_ = d.Close()
	})

	return &cliTestEnv{
		cfg:        cfg,
		backend:    backend,
		daemon:     d,
		server:     srv,
		socketPath: socketPath,
		configPath: configPath,
		logPath:    logPath,
	}
}

func runCLI(t *testing.T, args []string, socket, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--socket", socket}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(line + "\n")
	return err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	rooms := make([]string, 0, len(cfg.Display.Rooms))
	for _, room := range cfg.Display.Rooms {
		rooms = append(rooms, fmt.Sprintf("%q", room))
	}
	content := fmt.Sprintf(
		"[backend]\nbase_url = %q\n\n[display]\nrooms = [%s]\n\n[announce]\nsink = %q\n\n[paths]\nlog_dir = %q\napi_bind = %q\n",
		cfg.Backend.BaseURL,
		strings.Join(rooms, ", "),
		cfg.Announce.Sink,
		cfg.Paths.LogDir,
		cfg.Paths.APIBind,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func waitFor(t *testing.T, duration time.Duration, fn func() bool) {
	t.Helper()
	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", duration)
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
