// Package doors holds the lock/proximity state machines for the portals
// between rooms.
package doors

import (
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"museumtour/internal/content"
	"museumtour/internal/events"
	"museumtour/internal/sequence"
)

// Position is a world-space point used for proximity checks.
type Position struct {
	X, Y, Z float64
}

func distance(a, b Position) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

const defaultRadius = 2.5 // meters

// Portal is one door between two rooms.
type Portal struct {
	ID         string
	RoomID     string // room the door stands in
	TargetRoom string
	Position   Position
	Radius     float64

	locked     bool
	playerNear bool
	activating bool // debounce for the activation path
}

// State is a read-only snapshot of a portal.
type State struct {
	ID         string
	RoomID     string
	TargetRoom string
	Locked     bool
	PlayerNear bool
}

// Store owns every door portal of one session.
type Store struct {
	mu       sync.Mutex
	bus      *events.Bus
	runner   sequence.Runner
	debounce time.Duration
	portals  []*Portal
}

// NewStore creates an empty door store. debounce is the settling window after
// an activation before the portal accepts another one.
func NewStore(bus *events.Bus, runner sequence.Runner, debounce time.Duration) *Store {
	return &Store{bus: bus, runner: runner, debounce: debounce}
}

// Add registers a portal declared in roomID. Doors are created locked unless
// the content says otherwise.
func (s *Store) Add(roomID string, decl content.Door) *Portal {
	radius := decl.Radius
	if radius <= 0 {
		radius = defaultRadius
	}
	p := &Portal{
		ID:         fmt.Sprintf("door-%s-%s", roomID, decl.Target),
		RoomID:     roomID,
		TargetRoom: decl.Target,
		Position:   Position{X: decl.Position.X, Y: decl.Position.Y, Z: decl.Position.Z},
		Radius:     radius,
		locked:     decl.IsLocked(),
	}
	s.mu.Lock()
	s.portals = append(s.portals, p)
	s.mu.Unlock()
	log.Printf("[DoorPortal] Initialized %s - locked: %v\n", p.ID, p.locked)
	return p
}

// Unlock flips the portal to unlocked and emits door-unlocked. Unlocking an
// already-unlocked door is a no-op.
func (s *Store) Unlock(portalID string) bool {
	s.mu.Lock()
	p := s.find(portalID)
	if p == nil || !p.locked {
		s.mu.Unlock()
		return false
	}
	p.locked = false
	unlocked := events.DoorUnlocked{RoomID: p.RoomID, TargetRoom: p.TargetRoom}
	s.mu.Unlock()

	log.Printf("[DoorPortal] Unlocking door to %s\n", unlocked.TargetRoom)
	s.bus.Publish(unlocked)
	s.bus.Publish(events.PlaySound{SoundID: "door-unlock", Volume: 0.5})
	return true
}

// Lock flips the portal to locked and emits door-locked, with the symmetric
// no-op guard.
func (s *Store) Lock(portalID string) bool {
	s.mu.Lock()
	p := s.find(portalID)
	if p == nil || p.locked {
		s.mu.Unlock()
		return false
	}
	p.locked = true
	locked := events.DoorLocked{RoomID: p.RoomID, TargetRoom: p.TargetRoom}
	s.mu.Unlock()

	log.Printf("[DoorPortal] Locking door to %s\n", locked.TargetRoom)
	s.bus.Publish(locked)
	return true
}

// UnlockLockedInRoom unlocks every still-locked door in roomID and returns
// how many flipped. Already-unlocked doors (a back door to the previous room)
// are left untouched.
func (s *Store) UnlockLockedInRoom(roomID string) int {
	s.mu.Lock()
	var ids []string
	for _, p := range s.portals {
		if p.RoomID == roomID && p.locked {
			ids = append(ids, p.ID)
		}
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.Unlock(id)
	}
	return len(ids)
}

// LockRoom re-locks every door in roomID. Used by progress reset.
func (s *Store) LockRoom(roomID string) {
	s.mu.Lock()
	var ids []string
	for _, p := range s.portals {
		if p.RoomID == roomID && !p.locked {
			ids = append(ids, p.ID)
		}
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.Lock(id)
	}
}

// UpdatePlayerPosition re-evaluates proximity for every portal and emits
// player-near/player-far exactly on the crossing edge, not every update.
func (s *Store) UpdatePlayerPosition(pos Position) {
	type edge struct {
		near bool
		evt  events.Event
	}
	s.mu.Lock()
	var edges []edge
	for _, p := range s.portals {
		d := distance(pos, p.Position)
		near := d <= p.Radius
		if near == p.playerNear {
			continue
		}
		p.playerNear = near
		if near {
			edges = append(edges, edge{near: true, evt: events.PlayerNear{TargetRoom: p.TargetRoom, Distance: d}})
		} else {
			edges = append(edges, edge{evt: events.PlayerFar{TargetRoom: p.TargetRoom, Distance: d}})
		}
	}
	s.mu.Unlock()

	for _, e := range edges {
		s.bus.Publish(e.evt)
	}
}

// Activate runs the activation path for one portal: debounce guard, locked
// feedback, or a switch-room intent for the room manager.
func (s *Store) Activate(portalID string) {
	s.mu.Lock()
	p := s.find(portalID)
	if p == nil {
		s.mu.Unlock()
		log.Printf("[DoorPortal] Activate on unknown portal: %s\n", portalID)
		return
	}
	if p.activating {
		s.mu.Unlock()
		return
	}
	if p.TargetRoom == "" {
		s.mu.Unlock()
		log.Printf("[DoorPortal] %s: no target room specified\n", portalID)
		return
	}
	if p.locked {
		denied := events.DoorDenied{RoomID: p.RoomID, TargetRoom: p.TargetRoom}
		s.mu.Unlock()

		log.Printf("[DoorPortal] Door to %s is locked\n", denied.TargetRoom)
		s.bus.Publish(denied)
		s.bus.Publish(events.PlaySound{SoundID: "door-locked", Volume: 0.5})
		return
	}
	p.activating = true
	target := p.TargetRoom
	s.mu.Unlock()

	log.Printf("[DoorPortal] Activating - switching to room %s\n", target)
	s.bus.Publish(events.SwitchRoom{TargetRoom: target})
	s.bus.Publish(events.PlaySound{SoundID: "door-open", Volume: 0.5})

	s.runner.After(s.debounce, func() {
		s.mu.Lock()
		if p := s.find(portalID); p != nil {
			p.activating = false
		}
		s.mu.Unlock()
	})
}

// ActivateNearby runs the activation path for every portal in roomID the
// player is currently near. This is the handler for the interact key press.
func (s *Store) ActivateNearby(roomID string) {
	s.mu.Lock()
	var ids []string
	for _, p := range s.portals {
		if p.RoomID == roomID && p.playerNear {
			ids = append(ids, p.ID)
		}
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.Activate(id)
	}
}

// InRoom returns snapshots of the portals standing in roomID.
func (s *Store) InRoom(roomID string) []State {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []State
	for _, p := range s.portals {
		if p.RoomID == roomID {
			out = append(out, stateOf(p))
		}
	}
	return out
}

// List returns snapshots of every portal in registration order.
func (s *Store) List() []State {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]State, 0, len(s.portals))
	for _, p := range s.portals {
		out = append(out, stateOf(p))
	}
	return out
}

func (s *Store) find(portalID string) *Portal {
	for _, p := range s.portals {
		if p.ID == portalID {
			return p
		}
	}
	return nil
}

func stateOf(p *Portal) State {
	return State{
		ID:         p.ID,
		RoomID:     p.RoomID,
		TargetRoom: p.TargetRoom,
		Locked:     p.locked,
		PlayerNear: p.playerNear,
	}
}
