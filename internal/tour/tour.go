// Package tour wires one visitor session's coordination core together: the
// event bus, room manager, interactive objects, door portals and per-room
// progress trackers.
package tour

import (
	"time"

	"museumtour/internal/content"
	"museumtour/internal/doors"
	"museumtour/internal/events"
	"museumtour/internal/objects"
	"museumtour/internal/progress"
	"museumtour/internal/rooms"
	"museumtour/internal/sequence"
)

// Config carries the timing knobs of the state machines.
type Config struct {
	SettleDelay     time.Duration // room transition fade window
	CompleteDelay   time.Duration // post-enter window before idle
	ClickCooldown   time.Duration // interactive object re-entrancy release
	DoorDebounce    time.Duration // door activation settling window
	PreloadDistance int
	AutoUnlock      bool
}

// DefaultConfig mirrors the tuning the tour shipped with.
func DefaultConfig() Config {
	return Config{
		SettleDelay:     1500 * time.Millisecond,
		CompleteDelay:   500 * time.Millisecond,
		ClickCooldown:   300 * time.Millisecond,
		DoorDebounce:    2 * time.Second,
		PreloadDistance: 1,
		AutoUnlock:      true,
	}
}

// Tour is one visitor's running session.
type Tour struct {
	VisitorID string
	Content   *content.Tour
	Bus       *events.Bus
	Rooms     *rooms.Manager
	Objects   *objects.Store
	Doors     *doors.Store
	Trackers  map[string]*progress.Tracker

	store progress.Store
}

// New builds and wires a session from the tour content. Rooms with no
// declared objects get no tracker; their doors stay as-declared.
func New(visitorID string, def *content.Tour, store progress.Store, runner sequence.Runner, cfg Config) *Tour {
	bus := events.NewBus()

	manager := rooms.NewManager(bus, runner, rooms.Options{
		Rooms:           def.RoomIDs(),
		StartRoom:       def.StartRoom,
		SettleDelay:     cfg.SettleDelay,
		CompleteDelay:   cfg.CompleteDelay,
		PreloadDistance: cfg.PreloadDistance,
	})

	objectStore := objects.NewStore(bus, manager, runner, cfg.ClickCooldown)
	doorStore := doors.NewStore(bus, runner, cfg.DoorDebounce)
	trackers := make(map[string]*progress.Tracker)

	for _, room := range def.Rooms {
		for _, obj := range room.Objects {
			objectStore.Add(obj)
		}
		for _, door := range room.Doors {
			doorStore.Add(room.ID, door)
		}
		if len(room.Objects) > 0 {
			trackers[room.ID] = progress.NewTracker(bus, store, objectStore, doorStore, progress.TrackerConfig{
				VisitorID:  visitorID,
				RoomID:     room.ID,
				Objects:    room.ObjectIDs(),
				Required:   room.RequiredCount(),
				AutoUnlock: cfg.AutoUnlock,
			})
		}
	}

	return &Tour{
		VisitorID: visitorID,
		Content:   def,
		Bus:       bus,
		Rooms:     manager,
		Objects:   objectStore,
		Doors:     doorStore,
		Trackers:  trackers,
		store:     store,
	}
}

// Restore replays persisted progress for every tracked room.
func (t *Tour) Restore() {
	for _, tracker := range t.Trackers {
		tracker.Restore()
	}
}

// ResetAll clears every room's progress for full replay.
func (t *Tour) ResetAll() {
	for _, tracker := range t.Trackers {
		tracker.Reset()
	}
}

// Overall aggregates persisted completion across every tracked room.
func (t *Tour) Overall() progress.OverallProgress {
	specs := make([]progress.RoomSpec, 0, len(t.Content.Rooms))
	for _, room := range t.Content.Rooms {
		if len(room.Objects) == 0 {
			continue
		}
		specs = append(specs, progress.RoomSpec{RoomID: room.ID, Required: room.RequiredCount()})
	}
	return progress.Overall(t.store, t.VisitorID, specs)
}

// RoomSnapshot describes one room for the HUD.
type RoomSnapshot struct {
	RoomID   string             `json:"roomId"`
	Name     string             `json:"name"`
	Visible  bool               `json:"visible"`
	Progress *progress.Snapshot `json:"progress,omitempty"`
	Doors    []doors.State      `json:"doors"`
}

// Snapshot is the full session state handed to a client on connect.
type Snapshot struct {
	CurrentRoom   string                   `json:"currentRoom"`
	Transitioning bool                     `json:"transitioning"`
	Rooms         []RoomSnapshot           `json:"rooms"`
	Objects       []objects.State          `json:"objects"`
	Overall       progress.OverallProgress `json:"overall"`
}

// Snapshot captures the session's current state.
func (t *Tour) Snapshot() Snapshot {
	snap := Snapshot{
		CurrentRoom:   t.Rooms.CurrentRoom(),
		Transitioning: t.Rooms.State() == rooms.StateTransitioning,
		Objects:       t.Objects.List(),
		Overall:       t.Overall(),
	}
	for _, room := range t.Content.Rooms {
		rs := RoomSnapshot{
			RoomID:  room.ID,
			Name:    room.Name,
			Visible: t.Rooms.IsRoomVisible(room.ID),
			Doors:   t.Doors.InRoom(room.ID),
		}
		if tracker, ok := t.Trackers[room.ID]; ok {
			p := tracker.Progress()
			rs.Progress = &p
		}
		snap.Rooms = append(snap.Rooms, rs)
	}
	return snap
}

// Close tears down bus subscriptions and pending transition timers.
func (t *Tour) Close() {
	for _, tracker := range t.Trackers {
		tracker.Close()
	}
	t.Rooms.Close()
}
