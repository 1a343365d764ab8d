package analytics

import "time"

// ObjectStats summarizes interest in one exhibit across all visits.
type ObjectStats struct {
	ObjectID    string
	RoomID      string
	Clicks      int
	Completions int
	Rank        int
}

// RoomStats summarizes how visitors fare in one room.
type RoomStats struct {
	RoomID         string
	Completions    int
	DoorDenials    int
	ObjectClicks   int
	UniqueVisitors int
}

// VisitRecap is the per-visit activity summary shown after a tour ends.
type VisitRecap struct {
	VisitID      string
	SessionCode  string
	VisitorID    string
	StartedAt    *time.Time
	EndedAt      *time.Time
	ObjectClicks int
	Completions  int
	RoomsDone    int
}
