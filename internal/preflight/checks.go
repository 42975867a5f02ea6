package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"queuedisplay/internal/config"
	"queuedisplay/internal/deps"
	"queuedisplay/internal/queueapi"
)

const backendTimeout = 5 * time.Second

// CheckBackend calls the queue service with the same request the display
// makes: the first configured room, the lab board in lab mode, or the base
// URL when no room is set.
func CheckBackend(ctx context.Context, cfg *config.Config, doer queueapi.HTTPDoer) Result {
	const name = "Queue backend"

	base := strings.TrimSpace(cfg.Backend.BaseURL)
	if base == "" {
		return Result{Name: name, Detail: "missing url"}
	}
	if doer == nil {
		doer = &http.Client{Timeout: backendTimeout}
	}
	checkCtx, cancel := context.WithTimeout(ctx, backendTimeout)
	defer cancel()

	client := queueapi.NewClient(base, doer)
	var err error
	switch {
	case cfg.Display.Mode == config.ModeLab:
		_, err = client.FetchLab(checkCtx)
	case len(cfg.Display.Rooms) > 0:
		_, err = client.FetchRoom(checkCtx, cfg.Display.Rooms[0], cfg.Display.QueueType)
	default:
		err = pingBase(checkCtx, doer, base)
	}
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (%s)", base, summarize(err))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (reachable)", base)}
}

func pingBase(ctx context.Context, doer queueapi.HTTPDoer, base string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base, nil)
	if err != nil {
		return err
	}
	resp, err := doer.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps lists the audio programs the configured sink may run.
// They are required only for the exec sink.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	optional := cfg.Announce.Sink != config.SinkExec
	return deps.CheckBinaries([]deps.Requirement{
		{
			Name:        "Speech synthesizer",
			Command:     cfg.Announce.SpeechCommand,
			Description: "Speaks ticket calls on the local speaker",
			Optional:    optional,
		},
		{
			Name:        "Tone player",
			Command:     cfg.Announce.ToneCommand,
			Description: "Beeps when speech is unavailable",
			Optional:    true,
		},
	})
}

func summarize(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timed out"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Err.Error()
	}
	return err.Error()
}
