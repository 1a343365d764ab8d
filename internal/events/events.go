package events

// Kind identifies an event type on the bus. The string values are the wire
// names used by the JSON protocol.
type Kind string

const (
	KindSwitchRoom             Kind = "switch-room"
	KindRoomTransitionStart    Kind = "room-transition-start"
	KindRoomExit               Kind = "room-exit"
	KindRoomEnter              Kind = "room-enter"
	KindRoomTransitionComplete Kind = "room-transition-complete"
	KindObjectHover            Kind = "object-hover"
	KindObjectHoverEnd         Kind = "object-hover-end"
	KindObjectClick            Kind = "object-click"
	KindObjectCompleted        Kind = "object-completed"
	KindRoomComplete           Kind = "room-complete"
	KindDoorUnlocked           Kind = "door-unlocked"
	KindDoorLocked             Kind = "door-locked"
	KindDoorDenied             Kind = "door-denied"
	KindPlayerNear             Kind = "player-near"
	KindPlayerFar              Kind = "player-far"
	KindNotification           Kind = "notification"
	KindPlaySound              Kind = "play-sound"
)

// Event is a single message on the bus. Concrete event structs form a closed
// set so producers and consumers agree on payload shape at compile time.
type Event interface {
	Kind() Kind
}

// SwitchRoom asks the room manager to transition to TargetRoom. Published by
// door portals on activation and by teleport-style UI.
type SwitchRoom struct {
	TargetRoom string
}

func (SwitchRoom) Kind() Kind { return KindSwitchRoom }

// RoomTransitionStart marks the beginning of a room transition.
type RoomTransitionStart struct {
	From string
	To   string
}

func (RoomTransitionStart) Kind() Kind { return KindRoomTransitionStart }

// RoomExit is published when the visitor leaves a room.
type RoomExit struct {
	RoomID string
}

func (RoomExit) Kind() Kind { return KindRoomExit }

// RoomEnter is published when the target room becomes the current room.
type RoomEnter struct {
	RoomID string
}

func (RoomEnter) Kind() Kind { return KindRoomEnter }

// RoomTransitionComplete is published once the transition settles back to idle.
type RoomTransitionComplete struct {
	From string
	To   string
}

func (RoomTransitionComplete) Kind() Kind { return KindRoomTransitionComplete }

// ObjectHover is published when the visitor starts hovering an interactive
// object. Consumed by tooltip UI.
type ObjectHover struct {
	ObjectID string
	Title    string
}

func (ObjectHover) Kind() Kind { return KindObjectHover }

// ObjectHoverEnd is published when a hover ends.
type ObjectHoverEnd struct {
	ObjectID string
}

func (ObjectHoverEnd) Kind() Kind { return KindObjectHoverEnd }

// ObjectClick is published on every activation of an interactive object,
// including re-activations of completed objects. Consumed by popup UI.
type ObjectClick struct {
	ObjectID    string
	Title       string
	Description string
	Image       string
}

func (ObjectClick) Kind() Kind { return KindObjectClick }

// ObjectCompleted is published exactly once per object lifetime, on first
// activation. Consumed by progress trackers.
type ObjectCompleted struct {
	ObjectID string
}

func (ObjectCompleted) Kind() Kind { return KindObjectCompleted }

// RoomComplete is published once when a room's required object count is met.
type RoomComplete struct {
	RoomID           string
	ObjectsCompleted int
	TotalObjects     int
}

func (RoomComplete) Kind() Kind { return KindRoomComplete }

// DoorUnlocked is published when a portal flips from locked to unlocked.
type DoorUnlocked struct {
	RoomID     string
	TargetRoom string
}

func (DoorUnlocked) Kind() Kind { return KindDoorUnlocked }

// DoorLocked is published when a portal flips from unlocked to locked.
type DoorLocked struct {
	RoomID     string
	TargetRoom string
}

func (DoorLocked) Kind() Kind { return KindDoorLocked }

// DoorDenied is the feedback signal for activating a locked door.
type DoorDenied struct {
	RoomID     string
	TargetRoom string
}

func (DoorDenied) Kind() Kind { return KindDoorDenied }

// PlayerNear fires on the edge of the visitor crossing into a portal's
// activation radius.
type PlayerNear struct {
	TargetRoom string
	Distance   float64
}

func (PlayerNear) Kind() Kind { return KindPlayerNear }

// PlayerFar fires on the edge of the visitor leaving a portal's activation
// radius.
type PlayerFar struct {
	TargetRoom string
	Distance   float64
}

func (PlayerFar) Kind() Kind { return KindPlayerFar }

// Notification is a presentation hint for banner/toast UI.
type Notification struct {
	Title    string
	Message  string
	Level    string
	Duration int // milliseconds
}

func (Notification) Kind() Kind { return KindNotification }

// PlaySound is a presentation hint for the audio layer.
type PlaySound struct {
	SoundID string
	Volume  float64
}

func (PlaySound) Kind() Kind { return KindPlaySound }
