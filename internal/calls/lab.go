package calls

import "queuedisplay/internal/queueapi"

// LabDetector tracks the completed list of the laboratory board. The first
// observation after construction or Reset is silent.
type LabDetector struct {
	bootstrapped bool
	previous     idSet
}

// NewLabDetector returns a lab detector in the bootstrap phase.
func NewLabDetector() *LabDetector {
	return &LabDetector{previous: make(idSet)}
}

// Reset re-enters bootstrap.
func (d *LabDetector) Reset() {
	d.bootstrapped = false
	d.previous = make(idSet)
}

// Observe returns completed orders absent from the previous board, in board
// order. A nil board is ignored.
func (d *LabDetector) Observe(board *queueapi.LabDisplay) []LabEvent {
	if board == nil {
		return nil
	}
	current := make(idSet, len(board.CompletedItems))
	var events []LabEvent
	for _, item := range board.CompletedItems {
		if item.ID == "" {
			continue
		}
		if _, dup := current[item.ID]; dup {
			continue
		}
		current[item.ID] = struct{}{}
		if !d.bootstrapped {
			continue
		}
		if _, ok := d.previous[item.ID]; ok {
			continue
		}
		events = append(events, LabEvent{ItemID: item.ID, OrderCode: item.OrderCode})
	}
	d.previous = current
	d.bootstrapped = true
	return events
}
