package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"queuedisplay/internal/services"
)

func TestRunHandlerStampsContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newRunHandler(slog.NewJSONHandler(&buf, nil), "run-42"))
	ctx := services.WithRequestID(services.WithEpoch(services.WithRoomID(context.Background(), "7"), 2), "cycle-9")

	logger.InfoContext(ctx, "ticket called")

	output := buf.String()
	for _, want := range []string{`"session_id":"run-42"`, `"room_id":"7"`, `"epoch":2`, `"correlation_id":"cycle-9"`} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %s in output, got: %s", want, output)
		}
	}
}

func TestRunHandlerSkipsFieldsAlreadyBound(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newRunHandler(slog.NewJSONHandler(&buf, nil), ""))
	ctx := services.WithRoomID(context.Background(), "101")

	WithContext(ctx, logger).InfoContext(ctx, "room fetch failed", String(FieldCorrelationID, "explicit"))
	logger.InfoContext(services.WithRequestID(ctx, "from-ctx"), "poll cycle applied", String(FieldCorrelationID, "explicit"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %s", len(lines), buf.String())
	}
	if got := strings.Count(lines[0], `"room_id"`); got != 1 {
		t.Fatalf("room_id repeated %d times: %s", got, lines[0])
	}
	if strings.Contains(lines[0], "session_id") {
		t.Fatalf("empty session id stamped: %s", lines[0])
	}
	if strings.Contains(lines[1], "from-ctx") {
		t.Fatalf("context correlation id overrode explicit field: %s", lines[1])
	}
	if _, ok := newRunHandler(nil, "x").(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when base is nil")
	}
}

func TestSplitHandlerRespectsPerOutputLevels(t *testing.T) {
	var terminal, file bytes.Buffer
	logger := slog.New(splitOutputs(
		slog.NewJSONHandler(&terminal, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&file, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)).With(String(FieldRoomID, "101"))

	if !logger.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected debug enabled through the file output")
	}
	logger.Debug("room fetch failed")
	logger.Info("poll cycle applied")

	if strings.Contains(terminal.String(), "room fetch failed") {
		t.Fatalf("terminal received debug line: %s", terminal.String())
	}
	if !strings.Contains(terminal.String(), "poll cycle applied") {
		t.Fatalf("terminal missing info line: %s", terminal.String())
	}
	for _, want := range []string{"room fetch failed", "poll cycle applied", `"room_id":"101"`} {
		if !strings.Contains(file.String(), want) {
			t.Fatalf("file missing %q: %s", want, file.String())
		}
	}
}

func TestConsoleValueFormatting(t *testing.T) {
	cases := []struct {
		value slog.Value
		want  string
	}{
		{slog.AnyValue([]string{"101", "102"}), "101,102"},
		{slog.DurationValue(4000123456), "4s"},
		{slog.StringValue("Phòng khám 1"), `"Phòng khám 1"`},
		{slog.StringValue(""), `""`},
		{slog.IntValue(3), "3"},
	}
	for _, tc := range cases {
		if got := formatValue(tc.value); got != tc.want {
			t.Fatalf("formatValue(%v) = %q, want %q", tc.value, got, tc.want)
		}
	}
}
