package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"queuedisplay/internal/api"
	"queuedisplay/internal/ipc"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Queue display", statusError, "Not running", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Queue display:", "[ERROR] Not running")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Queue display", statusOK, "Running", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestStatusKindFromSeverity(t *testing.T) {
	cases := map[string]statusKind{
		"ok":      statusOK,
		" WARN ":  statusWarn,
		"error":   statusError,
		"info":    statusInfo,
		"unknown": statusInfo,
	}
	for severity, want := range cases {
		if got := statusKindFromSeverity(severity); got != want {
			t.Fatalf("severity %q: got %v want %v", severity, got, want)
		}
	}
}

func TestDependencyLines(t *testing.T) {
	status := &ipc.StatusResponse{
		Dependencies: []ipc.DependencyStatus{
			{Name: "Speech synthesizer", Available: false, Severity: "error"},
			{Name: "Tone player", Available: true, Command: "play"},
		},
		DependencySummary: api.DependencySummary{Severity: "error", Detail: "1/2 available (missing: 1 required, 0 optional)"},
	}
	lines := dependencyLines(status, false)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "[ERROR]") || !strings.Contains(lines[0], "Summary") {
		t.Fatalf("expected summary line first, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "[ERROR] not available") {
		t.Fatalf("expected error detail in second line, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "[OK] Ready (command: play)") {
		t.Fatalf("expected ready detail in third line, got %q", lines[2])
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}
