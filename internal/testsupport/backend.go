package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"queuedisplay/internal/queueapi"
)

// Backend is an in-process stand-in for the reception queue service.
type Backend struct {
	server *httptest.Server

	mu      sync.Mutex
	rooms   map[string]queueapi.RoomSnapshot
	lab     queueapi.LabDisplay
	failing map[string]bool
	hits    atomic.Int64
}

// NewBackend starts a fake queue service and closes it when the test ends.
func NewBackend(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		rooms:   make(map[string]queueapi.RoomSnapshot),
		failing: make(map[string]bool),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /reception/queue/display/{room}", b.handleRoom)
	mux.HandleFunc("GET /liscomplete/queue/display", b.handleLab)
	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)
	return b
}

// URL returns the base URL to configure as backend.base_url.
func (b *Backend) URL() string {
	return b.server.URL
}

// Hits reports how many display requests were served.
func (b *Backend) Hits() int64 {
	return b.hits.Load()
}

// SetRoom replaces a room's snapshot.
func (b *Backend) SetRoom(snapshot queueapi.RoomSnapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rooms[snapshot.RoomID] = snapshot
}

// SetLab replaces the lab board.
func (b *Backend) SetLab(display queueapi.LabDisplay) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lab = display
}

// FailRoom makes a room answer 503 until cleared.
func (b *Backend) FailRoom(roomID string, fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failing[roomID] = fail
}

func (b *Backend) handleRoom(w http.ResponseWriter, r *http.Request) {
	b.hits.Add(1)
	room := r.PathValue("room")
	b.mu.Lock()
	snapshot, ok := b.rooms[room]
	failing := b.failing[room]
	b.mu.Unlock()
	switch {
	case failing:
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	case !ok:
		http.NotFound(w, r)
	default:
		writeJSON(w, snapshot)
	}
}

func (b *Backend) handleLab(w http.ResponseWriter, _ *http.Request) {
	b.hits.Add(1)
	b.mu.Lock()
	lab := b.lab
	b.mu.Unlock()
	writeJSON(w, lab)
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

// Room builds a snapshot with the given calling ticket ids. Ticket codes are
// the upper-cased ids.
func Room(roomID, roomName string, calling ...string) queueapi.RoomSnapshot {
	snapshot := queueapi.RoomSnapshot{
		RoomID:      roomID,
		RoomName:    roomName,
		CallingList: make([]queueapi.Ticket, 0, len(calling)),
		WaitingList: []queueapi.Ticket{},
	}
	for i, id := range calling {
		snapshot.CallingList = append(snapshot.CallingList, queueapi.Ticket{
			ID:          id,
			TicketCode:  strings.ToUpper(id),
			QueueNumber: i + 1,
		})
	}
	return snapshot
}
