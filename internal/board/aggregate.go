package board

import (
	"math"
	"sort"

	"queuedisplay/internal/queueapi"
)

// Priority classes used to style waiting rows.
const (
	ClassNormal    = "normal"
	ClassHigh      = "high"
	ClassEmergency = "emergency"
)

// ClassOf maps a ticket priority to its display class.
func ClassOf(priority int) string {
	switch {
	case priority >= 3:
		return ClassEmergency
	case priority == 2:
		return ClassHigh
	default:
		return ClassNormal
	}
}

// WaitingEntry is a waiting ticket tagged with the room it belongs to.
type WaitingEntry struct {
	queueapi.Ticket
	SourceRoom string `json:"sourceRoom"`
	Class      string `json:"priorityClass"`
}

// View is the render-ready merge of every room that answered this cycle.
type View struct {
	Rooms              []queueapi.RoomSnapshot `json:"rooms"`
	Waiting            []WaitingEntry          `json:"waiting"`
	TotalWaiting       int                     `json:"totalWaiting"`
	AverageWaitMinutes float64                 `json:"averageWaitMinutes"`
	AverageWaitRounded int                     `json:"averageWaitRounded"`
	HasAverage         bool                    `json:"hasAverage"`
}

// Aggregate merges room snapshots into a single view. Waiting tickets are
// ordered by priority descending, then queue number ascending; equal keys keep
// their room order. The average is the plain mean of per-room averages over
// the rooms present, so failed rooms are excluded rather than counted as zero.
func Aggregate(rooms []queueapi.RoomSnapshot) View {
	view := View{
		Rooms:   rooms,
		Waiting: make([]WaitingEntry, 0),
	}
	if view.Rooms == nil {
		view.Rooms = []queueapi.RoomSnapshot{}
	}

	var sum float64
	for _, room := range rooms {
		for _, ticket := range room.WaitingList {
			view.Waiting = append(view.Waiting, WaitingEntry{
				Ticket:     ticket,
				SourceRoom: room.RoomName,
				Class:      ClassOf(ticket.Priority),
			})
		}
		view.TotalWaiting += room.TotalWaiting
		sum += room.AverageWaitMinutes
	}

	sort.SliceStable(view.Waiting, func(i, j int) bool {
		a, b := view.Waiting[i], view.Waiting[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return a.QueueNumber < b.QueueNumber
	})

	if len(rooms) > 0 {
		view.HasAverage = true
		view.AverageWaitMinutes = sum / float64(len(rooms))
		view.AverageWaitRounded = roundHalfUp(view.AverageWaitMinutes)
	}
	return view
}

// roundHalfUp rounds .5 toward positive infinity.
func roundHalfUp(value float64) int {
	return int(math.Floor(value + 0.5))
}
