package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"queuedisplay/internal/queueapi"
)

func TestBoardCommandTable(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"board"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("board: %v", err)
	}
	requireContains(t, out, "Phòng 101")
	requireContains(t, out, "A001")
	requireContains(t, out, "2 waiting, average wait 12 min")
	// Emergency priority sorts first.
	if strings.Index(out, "A003") > strings.Index(out, "A002") {
		t.Fatalf("expected A003 before A002:\n%s", out)
	}
}

func TestBoardCommandJSONWithRoomOverride(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"board", "--rooms", "101, 102,404", "--json"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("board --json: %v", err)
	}
	var snapshot boardSnapshot
	if err := json.Unmarshal([]byte(out), &snapshot); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if snapshot.Board == nil || len(snapshot.Board.Rooms) != 2 {
		t.Fatalf("expected two answering rooms, got %+v", snapshot.Board)
	}
	if len(snapshot.FailedRooms) != 1 || snapshot.FailedRooms[0] != "404" {
		t.Fatalf("expected 404 to fail, got %v", snapshot.FailedRooms)
	}
}

func TestBoardCommandLabMode(t *testing.T) {
	env := setupCLITestEnv(t)
	env.backend.SetLab(queueapi.LabDisplay{
		TotalPending:   1,
		CompletedItems: []queueapi.LabItem{{ID: "l1", OrderCode: "XN-001", PatientName: "Lê Văn D", Status: queueapi.LabStatusCompleted}},
	})

	out, _, err := runCLI(t, []string{"board", "--mode", "lab"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("board --mode lab: %v", err)
	}
	requireContains(t, out, "XN-001")
	requireContains(t, out, "Hoàn thành")
	requireContains(t, out, "Processing: none")
}

func TestFetchBoardErrors(t *testing.T) {
	env := setupCLITestEnv(t)
	client := queueapi.NewClient(env.backend.URL(), nil)

	if _, err := fetchBoard(context.Background(), client, "queue", nil, 2); !errors.Is(err, errNoRooms) {
		t.Fatalf("expected errNoRooms, got %v", err)
	}
	if _, err := fetchBoard(context.Background(), client, "kiosk", []string{"101"}, 2); err == nil {
		t.Fatal("expected unsupported mode error")
	}
	env.backend.FailRoom("101", true)
	if _, err := fetchBoard(context.Background(), client, "queue", []string{"101"}, 2); err == nil {
		t.Fatal("expected total failure error")
	}
}

func TestWriteJSONKeepsNamesLiteral(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	if err := writeJSON(cmd, map[string]string{"room_name": "Nội & Ngoại <A>"}); err != nil {
		t.Fatalf("writeJSON: %v", err)
	}
	requireContains(t, buf.String(), `"room_name": "Nội & Ngoại <A>"`)
}
