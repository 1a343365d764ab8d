// Package progress aggregates object completions per room, persists them,
// and owns the room-complete decision.
package progress

import "time"

// Record is the persisted representation of one room's progress for one
// visitor.
type Record struct {
	RoomID           string   `json:"roomId"`
	CompletedObjects []string `json:"completedObjects"`
	TotalObjects     int      `json:"totalObjects"`
	IsComplete       bool     `json:"isComplete"`
	Timestamp        int64    `json:"timestamp"` // unix milliseconds of the last write
}

// Store persists progress records under a (visitor, room) scoped key. A nil
// record from Load means no progress yet, which is not an error.
type Store interface {
	Save(visitorID string, rec Record) error
	Load(visitorID, roomID string) (*Record, error)
	Delete(visitorID, roomID string) error
}

func now() int64 {
	return time.Now().UnixMilli()
}
