// Package objects holds the per-entity hover/activate/completed state
// machines for the tour's interactive points of interest.
package objects

import (
	"log"
	"sync"
	"time"

	"museumtour/internal/content"
	"museumtour/internal/events"
	"museumtour/internal/sequence"
)

// RoomQuery answers which room is currently active. Satisfied by
// rooms.Manager; injected so objects never reach for a global.
type RoomQuery interface {
	CurrentRoom() string
}

// Object is one interactive exhibit.
type Object struct {
	ID          string
	Title       string
	Description string
	Image       string
	Audio       string

	enabled    bool
	completed  bool
	hovered    bool
	processing bool // re-entrancy lock for the activation path
}

// State is a read-only snapshot of an object.
type State struct {
	ID        string
	Title     string
	Completed bool
	Enabled   bool
	Hovered   bool
}

// ActivationResult reports what a call to Activate did.
type ActivationResult struct {
	Clicked        bool // object-click was emitted
	FirstCompleted bool // this activation completed the object
}

// Store owns every interactive object of one session.
type Store struct {
	mu       sync.Mutex
	bus      *events.Bus
	rooms    RoomQuery
	runner   sequence.Runner
	cooldown time.Duration
	objects  map[string]*Object
	order    []string
}

// NewStore creates an empty object store. cooldown is the re-entrancy lock
// release window after an activation.
func NewStore(bus *events.Bus, rooms RoomQuery, runner sequence.Runner, cooldown time.Duration) *Store {
	return &Store{
		bus:      bus,
		rooms:    rooms,
		runner:   runner,
		cooldown: cooldown,
		objects:  make(map[string]*Object),
	}
}

// Add registers an object from its content declaration. Objects start
// enabled, not completed.
func (s *Store) Add(decl content.Object) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.objects[decl.ID]; exists {
		log.Printf("[InteractiveObject] Duplicate object ignored: %s\n", decl.ID)
		return
	}
	s.objects[decl.ID] = &Object{
		ID:          decl.ID,
		Title:       decl.Title,
		Description: decl.Description,
		Image:       decl.Image,
		Audio:       decl.Audio,
		enabled:     true,
	}
	s.order = append(s.order, decl.ID)
}

// inCurrentRoom applies the gating rule: the room code embedded in the object
// id must match the current room. Unparseable ids fail open and stay
// interactable everywhere.
func (s *Store) inCurrentRoom(obj *Object) bool {
	roomID, ok := content.RoomFromObjectID(obj.ID)
	if !ok {
		log.Printf("[InteractiveObject] %s: could not extract room id, treating as room-independent\n", obj.ID)
		return true
	}
	current := s.rooms.CurrentRoom()
	if roomID != current {
		log.Printf("[InteractiveObject] %s: blocked - belongs to %s, current room is %s\n", obj.ID, roomID, current)
		return false
	}
	return true
}

// HoverStart marks the object hovered and emits object-hover. No-op when the
// object is disabled or outside the current room.
func (s *Store) HoverStart(objectID string) {
	s.mu.Lock()
	obj, ok := s.objects[objectID]
	if !ok || !obj.enabled || !s.inCurrentRoom(obj) {
		s.mu.Unlock()
		return
	}
	obj.hovered = true
	hover := events.ObjectHover{ObjectID: obj.ID, Title: obj.Title}
	s.mu.Unlock()

	s.bus.Publish(hover)
}

// HoverEnd clears the hover flag. Always permitted even if the current room
// changed mid-hover, so stale highlights cannot stick.
func (s *Store) HoverEnd(objectID string) {
	s.mu.Lock()
	obj, ok := s.objects[objectID]
	if !ok || !obj.hovered {
		s.mu.Unlock()
		return
	}
	obj.hovered = false
	s.mu.Unlock()

	s.bus.Publish(events.ObjectHoverEnd{ObjectID: objectID})
}

// Activate runs the click path. Rejected when the object is unknown,
// disabled, outside the current room, or its re-entrancy lock is held.
// object-click is emitted on every accepted activation; object-completed only
// on the first one for the object's lifetime. The lock auto-releases after
// the cooldown window.
func (s *Store) Activate(objectID string) ActivationResult {
	s.mu.Lock()
	obj, ok := s.objects[objectID]
	if !ok {
		s.mu.Unlock()
		log.Printf("[InteractiveObject] Activate on unknown object: %s\n", objectID)
		return ActivationResult{}
	}
	if !obj.enabled || !s.inCurrentRoom(obj) {
		s.mu.Unlock()
		return ActivationResult{}
	}
	if obj.processing {
		s.mu.Unlock()
		log.Printf("[InteractiveObject] Activation ignored - already processing: %s\n", objectID)
		return ActivationResult{}
	}
	obj.processing = true
	first := !obj.completed
	obj.completed = true

	click := events.ObjectClick{
		ObjectID:    obj.ID,
		Title:       obj.Title,
		Description: obj.Description,
		Image:       obj.Image,
	}
	sound := obj.Audio
	s.mu.Unlock()

	if sound != "" {
		s.bus.Publish(events.PlaySound{SoundID: sound, Volume: 0.5})
	}
	s.bus.Publish(click)
	if first {
		s.bus.Publish(events.ObjectCompleted{ObjectID: objectID})
	}

	s.runner.After(s.cooldown, func() {
		s.mu.Lock()
		if o, ok := s.objects[objectID]; ok {
			o.processing = false
		}
		s.mu.Unlock()
	})

	return ActivationResult{Clicked: true, FirstCompleted: first}
}

// MarkCompleted idempotently sets the completed flag without emitting
// object-completed. Used when restoring persisted progress. Reports whether
// the object exists.
func (s *Store) MarkCompleted(objectID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[objectID]
	if !ok {
		log.Printf("[InteractiveObject] Could not find object to restore: %s\n", objectID)
		return false
	}
	obj.completed = true
	return true
}

// Reset clears completed and enabled-override state for full replay.
func (s *Store) Reset(objectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if obj, ok := s.objects[objectID]; ok {
		obj.completed = false
		obj.enabled = true
		obj.hovered = false
	}
}

// SetEnabled toggles the object's enabled flag (designer override).
func (s *Store) SetEnabled(objectID string, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if obj, ok := s.objects[objectID]; ok {
		obj.enabled = enabled
	}
}

// Get returns a snapshot of one object.
func (s *Store) Get(objectID string) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[objectID]
	if !ok {
		return State{}, false
	}
	return snapshot(obj), true
}

// List returns snapshots of every object in registration order.
func (s *Store) List() []State {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]State, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, snapshot(s.objects[id]))
	}
	return out
}

func snapshot(obj *Object) State {
	return State{
		ID:        obj.ID,
		Title:     obj.Title,
		Completed: obj.completed,
		Enabled:   obj.enabled,
		Hovered:   obj.hovered,
	}
}
