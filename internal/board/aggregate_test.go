package board_test

import (
	"math"
	"testing"

	"queuedisplay/internal/board"
	"queuedisplay/internal/queueapi"
)

func ticket(id string, priority, queueNumber int) queueapi.Ticket {
	return queueapi.Ticket{ID: id, TicketCode: id, Priority: priority, QueueNumber: queueNumber}
}

func TestAggregateSortsByPriorityThenQueueNumber(t *testing.T) {
	rooms := []queueapi.RoomSnapshot{{
		RoomID:   "R1",
		RoomName: "Room 1",
		WaitingList: []queueapi.Ticket{
			ticket("a", 1, 5),
			ticket("b", 2, 1),
			ticket("c", 1, 2),
		},
	}}

	view := board.Aggregate(rooms)
	got := []string{view.Waiting[0].ID, view.Waiting[1].ID, view.Waiting[2].ID}
	want := []string{"b", "c", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order %v, want %v", got, want)
		}
	}
}

func TestAggregateKeepsRoomOrderForEqualKeys(t *testing.T) {
	rooms := []queueapi.RoomSnapshot{
		{RoomName: "Room 1", WaitingList: []queueapi.Ticket{ticket("r1-a", 1, 3)}},
		{RoomName: "Room 2", WaitingList: []queueapi.Ticket{ticket("r2-a", 1, 3), ticket("r2-b", 3, 9)}},
	}
	view := board.Aggregate(rooms)
	if view.Waiting[0].ID != "r2-b" || view.Waiting[0].Class != board.ClassEmergency {
		t.Fatalf("expected emergency ticket first, got %+v", view.Waiting[0])
	}
	if view.Waiting[1].ID != "r1-a" || view.Waiting[2].ID != "r2-a" {
		t.Fatalf("expected stable tie order, got %s then %s", view.Waiting[1].ID, view.Waiting[2].ID)
	}
	if view.Waiting[1].SourceRoom != "Room 1" || view.Waiting[2].SourceRoom != "Room 2" {
		t.Fatalf("expected entries tagged with source room, got %+v", view.Waiting)
	}
}

func TestAggregateExcludesFailedRoomsFromAverage(t *testing.T) {
	results := []queueapi.RoomResult{
		{RoomID: "R1", Snapshot: &queueapi.RoomSnapshot{RoomName: "Room 1", TotalWaiting: 4, AverageWaitMinutes: 10, WaitingList: []queueapi.Ticket{ticket("x", 1, 1)}}},
		{RoomID: "R2"},
		{RoomID: "R3", Snapshot: &queueapi.RoomSnapshot{RoomName: "Room 3", TotalWaiting: 2, AverageWaitMinutes: 5, WaitingList: []queueapi.Ticket{ticket("y", 1, 2)}}},
	}

	view := board.Aggregate(queueapi.Snapshots(results))
	if len(view.Waiting) != 2 {
		t.Fatalf("expected waiting tickets from rooms 1 and 3 only, got %d", len(view.Waiting))
	}
	for _, entry := range view.Waiting {
		if entry.SourceRoom == "Room 2" {
			t.Fatalf("failed room leaked into view: %+v", entry)
		}
	}
	if view.TotalWaiting != 6 {
		t.Fatalf("expected total 6, got %d", view.TotalWaiting)
	}
	if math.Abs(view.AverageWaitMinutes-7.5) > 1e-9 {
		t.Fatalf("expected average over two rooms (7.5), got %v", view.AverageWaitMinutes)
	}
	if view.AverageWaitRounded != 8 {
		t.Fatalf("expected rounded average 8, got %d", view.AverageWaitRounded)
	}
}

func TestAggregateRoundsHalfUp(t *testing.T) {
	cases := []struct {
		averages []float64
		want     int
	}{
		{[]float64{2.5}, 3},
		{[]float64{3, 4}, 4},
		{[]float64{1.49}, 1},
		{[]float64{0.5, 0}, 0},
	}
	for _, tc := range cases {
		rooms := make([]queueapi.RoomSnapshot, len(tc.averages))
		for i, avg := range tc.averages {
			rooms[i] = queueapi.RoomSnapshot{RoomID: "R", AverageWaitMinutes: avg}
		}
		if got := board.Aggregate(rooms).AverageWaitRounded; got != tc.want {
			t.Fatalf("averages %v: rounded %d, want %d", tc.averages, got, tc.want)
		}
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	view := board.Aggregate(nil)
	if len(view.Waiting) != 0 || view.TotalWaiting != 0 || view.HasAverage {
		t.Fatalf("expected empty view, got %+v", view)
	}
	if view.Waiting == nil || view.Rooms == nil {
		t.Fatal("expected non-nil slices for JSON rendering")
	}
}

func TestClassOf(t *testing.T) {
	cases := map[int]string{0: board.ClassNormal, 1: board.ClassNormal, 2: board.ClassHigh, 3: board.ClassEmergency, 7: board.ClassEmergency}
	for priority, want := range cases {
		if got := board.ClassOf(priority); got != want {
			t.Errorf("ClassOf(%d) = %q, want %q", priority, got, want)
		}
	}
}
