package calls

import (
	"queuedisplay/internal/queueapi"
)

// Phase is the detector state.
type Phase int

const (
	// PhaseBootstrap records the first successful poll without emitting events.
	PhaseBootstrap Phase = iota
	// PhaseTracking emits events for ids absent from the previous poll.
	PhaseTracking
)

func (p Phase) String() string {
	if p == PhaseTracking {
		return "tracking"
	}
	return "bootstrap"
}

type idSet map[string]struct{}

// Detector diffs active ticket ids between consecutive polls. Identity is the
// ticket id only; codes and queue numbers are never compared.
//
// Previous ids are kept per room. A room whose fetch failed keeps its last
// known ids, so its tickets are not announced again when it recovers, and a
// room observed for the first time since a reset is recorded silently.
type Detector struct {
	phase    Phase
	previous map[string]idSet
}

// NewDetector returns a detector in the bootstrap phase.
func NewDetector() *Detector {
	return &Detector{previous: make(map[string]idSet)}
}

// Phase returns the current state.
func (d *Detector) Phase() Phase {
	return d.phase
}

// Reset discards the previous snapshot and re-enters bootstrap.
func (d *Detector) Reset() {
	d.phase = PhaseBootstrap
	d.previous = make(map[string]idSet)
}

// ActiveIDs returns the ids currently tracked as active across all rooms.
func (d *Detector) ActiveIDs() []string {
	out := make([]string, 0)
	seen := make(idSet)
	for _, ids := range d.previous {
		for id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// Observe consumes successful snapshots only, as if every configured room
// answered.
func (d *Detector) Observe(rooms []queueapi.RoomSnapshot) []Event {
	results := make([]queueapi.RoomResult, len(rooms))
	for i := range rooms {
		results[i] = queueapi.RoomResult{RoomID: rooms[i].RoomID, Snapshot: &rooms[i]}
	}
	return d.ObserveResults(results)
}

// ObserveResults consumes one poll cycle and returns newly active tickets in
// discovery order: rooms in configured order, the currently served ticket
// before the calling list. Results without a snapshot carry their previous
// ids forward. A cycle with no successful room leaves the detector untouched.
func (d *Detector) ObserveResults(results []queueapi.RoomResult) []Event {
	if queueapi.AllFailed(results) {
		return nil
	}

	before := make(idSet)
	for _, ids := range d.previous {
		for id := range ids {
			before[id] = struct{}{}
		}
	}

	var events []Event
	emitted := make(idSet)
	next := make(map[string]idSet, len(results))
	for _, result := range results {
		if result.Snapshot == nil {
			if ids, ok := d.previous[result.RoomID]; ok {
				next[result.RoomID] = ids
			}
			continue
		}
		_, known := d.previous[result.RoomID]
		current := make(idSet)
		for _, active := range activeTickets(result.Snapshot) {
			current[active.TicketID] = struct{}{}
			if d.phase != PhaseTracking || !known {
				continue
			}
			if _, ok := before[active.TicketID]; ok {
				continue
			}
			if _, ok := emitted[active.TicketID]; ok {
				continue
			}
			emitted[active.TicketID] = struct{}{}
			events = append(events, active)
		}
		next[result.RoomID] = current
	}

	d.previous = next
	d.phase = PhaseTracking
	return events
}

func activeTickets(room *queueapi.RoomSnapshot) []Event {
	out := make([]Event, 0, len(room.CallingList)+1)
	roomID := room.RoomID
	if room.CurrentServing != nil && room.CurrentServing.ID != "" {
		out = append(out, newEvent(roomID, room.RoomName, SlotServing, *room.CurrentServing))
	}
	for _, ticket := range room.CallingList {
		if ticket.ID == "" {
			continue
		}
		out = append(out, newEvent(roomID, room.RoomName, SlotCalling, ticket))
	}
	return out
}

func newEvent(roomID, roomName, slot string, ticket queueapi.Ticket) Event {
	return Event{
		TicketID:   ticket.ID,
		TicketCode: ticket.TicketCode,
		RoomID:     roomID,
		RoomName:   roomName,
		Slot:       slot,
	}
}
