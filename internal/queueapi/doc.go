// Package queueapi reads room and laboratory queue state from the reception
// backend. RoomFetcher fans one request per room out per poll cycle and
// degrades each failure to a nil snapshot instead of an error.
package queueapi
