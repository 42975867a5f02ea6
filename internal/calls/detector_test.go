package calls_test

import (
	"testing"

	"queuedisplay/internal/calls"
	"queuedisplay/internal/queueapi"
)

func room(id, name string, serving string, calling ...string) queueapi.RoomSnapshot {
	snap := queueapi.RoomSnapshot{RoomID: id, RoomName: name}
	if serving != "" {
		snap.CurrentServing = &queueapi.Ticket{ID: serving, TicketCode: "code-" + serving}
	}
	for _, ticketID := range calling {
		snap.CallingList = append(snap.CallingList, queueapi.Ticket{ID: ticketID, TicketCode: "code-" + ticketID})
	}
	return snap
}

func ids(events []calls.Event) []string {
	out := make([]string, len(events))
	for i, event := range events {
		out[i] = event.TicketID
	}
	return out
}

func TestBootstrapIsSilent(t *testing.T) {
	d := calls.NewDetector()
	events := d.Observe([]queueapi.RoomSnapshot{room("R1", "Room 1", "A", "B", "C")})
	if len(events) != 0 {
		t.Fatalf("expected no events on first poll, got %v", ids(events))
	}
	if d.Phase() != calls.PhaseTracking {
		t.Fatalf("expected tracking after first poll, got %s", d.Phase())
	}
}

func TestNewIDDetection(t *testing.T) {
	d := calls.NewDetector()
	d.Observe([]queueapi.RoomSnapshot{room("R1", "Room 1", "", "A", "B")})
	events := d.Observe([]queueapi.RoomSnapshot{room("R1", "Room 1", "", "A", "B", "C")})
	if len(events) != 1 || events[0].TicketID != "C" {
		t.Fatalf("expected exactly C, got %v", ids(events))
	}
	if events[0].TicketCode != "code-C" || events[0].RoomName != "Room 1" || events[0].Slot != calls.SlotCalling {
		t.Fatalf("unexpected event detail: %+v", events[0])
	}
}

func TestNoReannouncement(t *testing.T) {
	d := calls.NewDetector()
	d.Observe([]queueapi.RoomSnapshot{room("R1", "Room 1", "")})
	total := 0
	for i := 0; i < 3; i++ {
		total += len(d.Observe([]queueapi.RoomSnapshot{room("R1", "Room 1", "X")}))
	}
	if total != 1 {
		t.Fatalf("expected one announcement across three polls, got %d", total)
	}
}

func TestIdentityIsIDNotCode(t *testing.T) {
	d := calls.NewDetector()
	first := room("R1", "Room 1", "")
	first.CallingList = []queueapi.Ticket{{ID: "t-1", TicketCode: "A001"}}
	d.Observe([]queueapi.RoomSnapshot{first})

	second := room("R1", "Room 1", "")
	second.CallingList = []queueapi.Ticket{{ID: "t-2", TicketCode: "A001"}}
	events := d.Observe([]queueapi.RoomSnapshot{second})
	if len(events) != 1 || events[0].TicketID != "t-2" {
		t.Fatalf("expected new id with reused code to be announced, got %v", ids(events))
	}

	third := room("R1", "Room 1", "")
	third.CallingList = []queueapi.Ticket{{ID: "t-2", TicketCode: "B777"}}
	if events := d.Observe([]queueapi.RoomSnapshot{third}); len(events) != 0 {
		t.Fatalf("expected code change on same id to be silent, got %v", ids(events))
	}
}

func TestResetOnRoomSetChange(t *testing.T) {
	d := calls.NewDetector()
	d.Observe([]queueapi.RoomSnapshot{room("R1", "Room 1", "A")})

	d.Reset()
	if d.Phase() != calls.PhaseBootstrap {
		t.Fatalf("expected bootstrap after reset, got %s", d.Phase())
	}
	events := d.Observe([]queueapi.RoomSnapshot{room("R1", "Room 1", "A"), room("R9", "Room 9", "Z")})
	if len(events) != 0 {
		t.Fatalf("expected tickets of newly added room to stay silent, got %v", ids(events))
	}
	events = d.Observe([]queueapi.RoomSnapshot{room("R1", "Room 1", "A"), room("R9", "Room 9", "Z", "N")})
	if len(events) != 1 || events[0].TicketID != "N" {
		t.Fatalf("expected genuinely new ticket after reset, got %v", ids(events))
	}
}

func TestDiscoveryOrder(t *testing.T) {
	d := calls.NewDetector()
	d.Observe([]queueapi.RoomSnapshot{room("R1", "Room 1", ""), room("R2", "Room 2", "")})
	events := d.Observe([]queueapi.RoomSnapshot{
		room("R1", "Room 1", "s1", "c1", "c2"),
		room("R2", "Room 2", "s2", "c3"),
	})
	want := []string{"s1", "c1", "c2", "s2", "c3"}
	got := ids(events)
	if len(got) != len(want) {
		t.Fatalf("unexpected events %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order %v, want %v", got, want)
		}
	}
	if events[0].Slot != calls.SlotServing {
		t.Fatalf("expected serving slot first, got %q", events[0].Slot)
	}
}

func TestDuplicateIDWithinCycleAnnouncedOnce(t *testing.T) {
	d := calls.NewDetector()
	d.Observe([]queueapi.RoomSnapshot{room("R1", "Room 1", "")})
	events := d.Observe([]queueapi.RoomSnapshot{room("R1", "Room 1", "T", "T")})
	if len(events) != 1 {
		t.Fatalf("expected one event for duplicated id, got %v", ids(events))
	}
}

func TestFailedRoomCarriesForward(t *testing.T) {
	d := calls.NewDetector()
	r1 := room("R1", "Room 1", "A")
	r2 := room("R2", "Room 2", "B")
	d.ObserveResults([]queueapi.RoomResult{{RoomID: "R1", Snapshot: &r1}, {RoomID: "R2", Snapshot: &r2}})

	// Room 2 fails for a cycle.
	events := d.ObserveResults([]queueapi.RoomResult{{RoomID: "R1", Snapshot: &r1}, {RoomID: "R2"}})
	if len(events) != 0 {
		t.Fatalf("expected no events during partial failure, got %v", ids(events))
	}

	// Room 2 recovers with the same ticket plus a new one.
	r2b := room("R2", "Room 2", "B", "C")
	events = d.ObserveResults([]queueapi.RoomResult{{RoomID: "R1", Snapshot: &r1}, {RoomID: "R2", Snapshot: &r2b}})
	if len(events) != 1 || events[0].TicketID != "C" {
		t.Fatalf("expected only C after recovery, got %v", ids(events))
	}
}

func TestRoomFirstSeenAfterBootstrapIsSilent(t *testing.T) {
	d := calls.NewDetector()
	r1 := room("R1", "Room 1", "A")
	d.ObserveResults([]queueapi.RoomResult{{RoomID: "R1", Snapshot: &r1}, {RoomID: "R2"}})

	r2 := room("R2", "Room 2", "B")
	events := d.ObserveResults([]queueapi.RoomResult{{RoomID: "R1", Snapshot: &r1}, {RoomID: "R2", Snapshot: &r2}})
	if len(events) != 0 {
		t.Fatalf("expected first successful observation of a room to be silent, got %v", ids(events))
	}
}

func TestAllFailedCycleLeavesStateUntouched(t *testing.T) {
	d := calls.NewDetector()
	if events := d.ObserveResults([]queueapi.RoomResult{{RoomID: "R1"}}); events != nil {
		t.Fatalf("expected nil events, got %v", ids(events))
	}
	if d.Phase() != calls.PhaseBootstrap {
		t.Fatal("expected detector to stay in bootstrap when nothing answered")
	}
}

func TestEndToEndTwoRooms(t *testing.T) {
	d := calls.NewDetector()
	cycle1 := d.Observe([]queueapi.RoomSnapshot{room("R1", "Room 1", "", "T1"), room("R2", "Room 2", "")})
	if len(cycle1) != 0 {
		t.Fatalf("expected bootstrap silence, got %v", ids(cycle1))
	}
	cycle2 := d.Observe([]queueapi.RoomSnapshot{room("R1", "Room 1", "", "T1"), room("R2", "Room 2", "", "T2")})
	if len(cycle2) != 1 || cycle2[0].TicketID != "T2" || cycle2[0].RoomName != "Room 2" {
		t.Fatalf("expected exactly T2, got %v", ids(cycle2))
	}
	if len(d.ActiveIDs()) != 2 {
		t.Fatalf("expected two active ids, got %v", d.ActiveIDs())
	}
}
