package calls

// Slot names where an active ticket was found.
const (
	SlotServing = "serving"
	SlotCalling = "calling"
)

// Event announces a ticket that became active since the previous poll.
type Event struct {
	TicketID   string `json:"ticketId"`
	TicketCode string `json:"ticketCode"`
	RoomID     string `json:"roomId"`
	RoomName   string `json:"roomName"`
	Slot       string `json:"slot"`
}

// LabEvent announces a laboratory order that newly reached the completed list.
type LabEvent struct {
	ItemID    string `json:"itemId"`
	OrderCode string `json:"orderCode"`
}

// Resolved reports whether the event carries enough detail to be spoken.
func (e LabEvent) Resolved() bool {
	return e.OrderCode != ""
}
