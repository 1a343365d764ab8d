package broadcast

import (
	"encoding/json"
	"fmt"

	"museumtour/internal/events"
)

// wireEvent is the JSON envelope sent to clients. Only the fields relevant
// to each event kind are populated.
type wireEvent struct {
	Type             string   `json:"t"`
	RoomID           string   `json:"roomId,omitempty"`
	From             string   `json:"from,omitempty"`
	To               string   `json:"to,omitempty"`
	TargetRoom       string   `json:"targetRoom,omitempty"`
	ObjectID         string   `json:"objectId,omitempty"`
	Title            string   `json:"title,omitempty"`
	Description      string   `json:"description,omitempty"`
	Image            string   `json:"image,omitempty"`
	ObjectsCompleted int      `json:"objectsCompleted,omitempty"`
	TotalObjects     int      `json:"totalObjects,omitempty"`
	Distance         float64  `json:"distance,omitempty"`
	Message          string   `json:"message,omitempty"`
	Level            string   `json:"level,omitempty"`
	DurationMS       int64    `json:"durationMs,omitempty"`
	SoundID          string   `json:"soundId,omitempty"`
	Volume           *float64 `json:"volume,omitempty"`
}

// Encode renders a bus event into its client-facing JSON form.
func Encode(e events.Event) ([]byte, error) {
	w := wireEvent{Type: string(e.Kind())}
	switch ev := e.(type) {
	case events.SwitchRoom:
		w.TargetRoom = ev.TargetRoom
	case events.RoomTransitionStart:
		w.From = ev.From
		w.To = ev.To
	case events.RoomTransitionComplete:
		w.From = ev.From
		w.To = ev.To
	case events.RoomExit:
		w.RoomID = ev.RoomID
	case events.RoomEnter:
		w.RoomID = ev.RoomID
	case events.ObjectHover:
		w.ObjectID = ev.ObjectID
		w.Title = ev.Title
	case events.ObjectHoverEnd:
		w.ObjectID = ev.ObjectID
	case events.ObjectClick:
		w.ObjectID = ev.ObjectID
		w.Title = ev.Title
		w.Description = ev.Description
		w.Image = ev.Image
	case events.ObjectCompleted:
		w.ObjectID = ev.ObjectID
	case events.RoomComplete:
		w.RoomID = ev.RoomID
		w.ObjectsCompleted = ev.ObjectsCompleted
		w.TotalObjects = ev.TotalObjects
	case events.DoorUnlocked:
		w.RoomID = ev.RoomID
		w.TargetRoom = ev.TargetRoom
	case events.DoorLocked:
		w.RoomID = ev.RoomID
		w.TargetRoom = ev.TargetRoom
	case events.DoorDenied:
		w.RoomID = ev.RoomID
		w.TargetRoom = ev.TargetRoom
	case events.PlayerNear:
		w.TargetRoom = ev.TargetRoom
		w.Distance = ev.Distance
	case events.PlayerFar:
		w.TargetRoom = ev.TargetRoom
		w.Distance = ev.Distance
	case events.Notification:
		w.Title = ev.Title
		w.Message = ev.Message
		w.Level = ev.Level
		w.DurationMS = int64(ev.Duration)
	case events.PlaySound:
		w.SoundID = ev.SoundID
		v := ev.Volume
		w.Volume = &v
	default:
		return nil, fmt.Errorf("encoding event: unknown kind %q", e.Kind())
	}
	return json.Marshal(w)
}
