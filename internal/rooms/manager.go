// Package rooms owns the authoritative current-room value and the room
// transition state machine for one tour session.
package rooms

import (
	"log"
	"sync"
	"time"

	"museumtour/internal/events"
	"museumtour/internal/sequence"
)

// TransitionState is the global transition phase of the manager.
type TransitionState string

const (
	StateIdle          TransitionState = "idle"
	StateTransitioning TransitionState = "transitioning"
)

type roomState struct {
	id      string
	visible bool
	loaded  bool
}

// Options configures a Manager.
type Options struct {
	Rooms           []string // declared room sequence, in order
	StartRoom       string
	SettleDelay     time.Duration // fade window before the source room hides
	CompleteDelay   time.Duration // window after room-enter before the state returns to idle
	PreloadDistance int           // how many rooms ahead to mark as preload-requested
}

// Manager is the room transition state machine. It subscribes to switch-room
// requests on the bus and emits room-exit, room-enter and
// room-transition-complete as the transition phases run.
type Manager struct {
	mu      sync.Mutex
	bus     *events.Bus
	seq     *sequence.Sequencer
	order   []string
	states  map[string]*roomState
	current string
	state   TransitionState
	opts    Options
	subID   int
}

// NewManager declares the room set and subscribes to switch-room requests.
// The start room begins visible; all others hidden.
func NewManager(bus *events.Bus, runner sequence.Runner, opts Options) *Manager {
	if opts.PreloadDistance <= 0 {
		opts.PreloadDistance = 1
	}
	m := &Manager{
		bus:    bus,
		seq:    sequence.NewSequencer(runner),
		order:  append([]string(nil), opts.Rooms...),
		states: make(map[string]*roomState, len(opts.Rooms)),
		state:  StateIdle,
		opts:   opts,
	}
	for _, id := range opts.Rooms {
		m.states[id] = &roomState{id: id, visible: id == opts.StartRoom, loaded: id == opts.StartRoom}
	}
	m.current = opts.StartRoom
	m.subID = bus.Subscribe(events.KindSwitchRoom, func(e events.Event) {
		if req, ok := e.(events.SwitchRoom); ok {
			m.Switch(req.TargetRoom)
		}
	})
	log.Printf("[RoomManager] Initialized with rooms %v, current %s\n", opts.Rooms, opts.StartRoom)
	return m
}

// Switch begins a transition to targetRoom. Invalid requests (unknown room,
// already there, transition in flight) are logged and dropped without state
// change.
func (m *Manager) Switch(targetRoom string) {
	m.mu.Lock()
	from := m.current

	if targetRoom == "" {
		m.mu.Unlock()
		log.Println("[RoomManager] No target room specified")
		return
	}
	if targetRoom == from {
		m.mu.Unlock()
		log.Printf("[RoomManager] Already in target room: %s\n", targetRoom)
		return
	}
	if m.state == StateTransitioning {
		m.mu.Unlock()
		log.Printf("[RoomManager] Transition already in progress, ignoring switch to %s\n", targetRoom)
		return
	}
	if _, ok := m.states[targetRoom]; !ok {
		m.mu.Unlock()
		log.Printf("[RoomManager] Target room does not exist: %s\n", targetRoom)
		return
	}

	m.state = StateTransitioning
	m.mu.Unlock()

	log.Printf("[RoomManager] Switching from %s to %s\n", from, targetRoom)
	m.bus.Publish(events.RoomTransitionStart{From: from, To: targetRoom})
	m.bus.Publish(events.RoomExit{RoomID: from})

	m.seq.Start(
		sequence.Step{Delay: m.opts.SettleDelay, Action: func() {
			m.mu.Lock()
			m.states[from].visible = false
			m.states[targetRoom].visible = true
			m.current = targetRoom
			m.mu.Unlock()

			m.bus.Publish(events.RoomEnter{RoomID: targetRoom})
			m.preloadAhead(targetRoom)
		}},
		sequence.Step{Delay: m.opts.CompleteDelay, Action: func() {
			m.mu.Lock()
			m.state = StateIdle
			m.mu.Unlock()

			m.bus.Publish(events.RoomTransitionComplete{From: from, To: targetRoom})
		}},
	)
}

// preloadAhead marks the next N rooms in declared order as loaded. This is a
// best-effort hint for external asset loaders, not a guarantee.
func (m *Manager) preloadAhead(current string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i, id := range m.order {
		if id == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	for i := 1; i <= m.opts.PreloadDistance && idx+i < len(m.order); i++ {
		next := m.order[idx+i]
		if st := m.states[next]; st != nil && !st.loaded {
			st.loaded = true
			log.Printf("[RoomManager] Preload requested: %s\n", next)
		}
	}
}

// CurrentRoom returns the authoritative current room id.
func (m *Manager) CurrentRoom() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// State returns the transition phase.
func (m *Manager) State() TransitionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsRoomVisible reports the room's visibility flag. Unknown rooms are not
// visible.
func (m *Manager) IsRoomVisible(roomID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[roomID]
	return ok && st.visible
}

// IsRoomLoaded reports whether the room was the start room or has been
// preload-requested.
func (m *Manager) IsRoomLoaded(roomID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[roomID]
	return ok && st.loaded
}

// Rooms returns the declared room sequence.
func (m *Manager) Rooms() []string {
	return append([]string(nil), m.order...)
}

// Close removes the manager's bus subscription and cancels any pending
// transition phases.
func (m *Manager) Close() {
	m.bus.Unsubscribe(m.subID)
	m.seq.Cancel()
}
