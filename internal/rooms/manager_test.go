package rooms

import (
	"testing"
	"time"

	"museumtour/internal/events"
	"museumtour/internal/sequence"
)

const (
	testSettle   = 1500 * time.Millisecond
	testComplete = 500 * time.Millisecond
)

func newTestManager(t *testing.T) (*Manager, *events.Bus, *sequence.Manual) {
	t.Helper()
	bus := events.NewBus()
	clock := sequence.NewManual()
	m := NewManager(bus, clock, Options{
		Rooms:           []string{"home", "room1", "room2", "ending"},
		StartRoom:       "home",
		SettleDelay:     testSettle,
		CompleteDelay:   testComplete,
		PreloadDistance: 1,
	})
	return m, bus, clock
}

func collect(bus *events.Bus, kind events.Kind) *[]events.Event {
	var got []events.Event
	bus.Subscribe(kind, func(e events.Event) {
		got = append(got, e)
	})
	return &got
}

func TestManager_InitialState(t *testing.T) {
	m, _, _ := newTestManager(t)

	if m.CurrentRoom() != "home" {
		t.Errorf("CurrentRoom() = %q, want %q", m.CurrentRoom(), "home")
	}
	if m.State() != StateIdle {
		t.Errorf("State() = %q, want %q", m.State(), StateIdle)
	}
	if !m.IsRoomVisible("home") {
		t.Error("start room should be visible")
	}
	if m.IsRoomVisible("room1") {
		t.Error("non-start room should be hidden")
	}
}

func TestManager_SwitchHappyPath(t *testing.T) {
	m, bus, clock := newTestManager(t)

	exits := collect(bus, events.KindRoomExit)
	enters := collect(bus, events.KindRoomEnter)
	completes := collect(bus, events.KindRoomTransitionComplete)

	m.Switch("room1")

	if m.State() != StateTransitioning {
		t.Fatalf("State() = %q after switch, want %q", m.State(), StateTransitioning)
	}
	if len(*exits) != 1 || (*exits)[0].(events.RoomExit).RoomID != "home" {
		t.Fatalf("room-exit events = %v, want one for home", *exits)
	}
	// current room does not change until the settle delay elapses
	if m.CurrentRoom() != "home" {
		t.Errorf("CurrentRoom() = %q mid-settle, want %q", m.CurrentRoom(), "home")
	}

	clock.Advance(testSettle)
	if m.CurrentRoom() != "room1" {
		t.Errorf("CurrentRoom() = %q after settle, want %q", m.CurrentRoom(), "room1")
	}
	if m.IsRoomVisible("home") {
		t.Error("source room still visible after settle")
	}
	if !m.IsRoomVisible("room1") {
		t.Error("target room not visible after settle")
	}
	if len(*enters) != 1 || (*enters)[0].(events.RoomEnter).RoomID != "room1" {
		t.Fatalf("room-enter events = %v, want one for room1", *enters)
	}
	if m.State() != StateTransitioning {
		t.Errorf("State() = %q before completion delay, want %q", m.State(), StateTransitioning)
	}
	if len(*completes) != 0 {
		t.Fatal("room-transition-complete fired before completion delay")
	}

	clock.Advance(testComplete)
	if m.State() != StateIdle {
		t.Errorf("State() = %q after completion delay, want %q", m.State(), StateIdle)
	}
	if len(*completes) != 1 {
		t.Fatalf("room-transition-complete count = %d, want 1", len(*completes))
	}
	done := (*completes)[0].(events.RoomTransitionComplete)
	if done.From != "home" || done.To != "room1" {
		t.Errorf("transition-complete = %+v, want from home to room1", done)
	}
}

func TestManager_RejectsInvalidTargets(t *testing.T) {
	m, bus, _ := newTestManager(t)
	exits := collect(bus, events.KindRoomExit)

	m.Switch("")
	m.Switch("home")    // already there
	m.Switch("gallery") // unknown

	if len(*exits) != 0 {
		t.Errorf("invalid switches emitted %d room-exit events, want 0", len(*exits))
	}
	if m.State() != StateIdle {
		t.Errorf("State() = %q, want %q", m.State(), StateIdle)
	}
}

func TestManager_TransitionMutualExclusion(t *testing.T) {
	m, bus, clock := newTestManager(t)
	enters := collect(bus, events.KindRoomEnter)

	m.Switch("room1")
	m.Switch("room2") // ignored: transition in flight

	clock.Advance(testSettle + testComplete)

	if m.CurrentRoom() != "room1" {
		t.Errorf("CurrentRoom() = %q, want %q (first transition untouched)", m.CurrentRoom(), "room1")
	}
	if len(*enters) != 1 {
		t.Errorf("room-enter count = %d, want 1", len(*enters))
	}
	if m.State() != StateIdle {
		t.Errorf("State() = %q after completion, want %q", m.State(), StateIdle)
	}
}

func TestManager_SwitchViaBusEvent(t *testing.T) {
	m, bus, clock := newTestManager(t)

	bus.Publish(events.SwitchRoom{TargetRoom: "room1"})
	clock.Advance(testSettle + testComplete)

	if m.CurrentRoom() != "room1" {
		t.Errorf("CurrentRoom() = %q, want %q", m.CurrentRoom(), "room1")
	}
}

func TestManager_PreloadAhead(t *testing.T) {
	m, _, clock := newTestManager(t)

	if m.IsRoomLoaded("room1") {
		t.Error("room1 marked loaded before any transition")
	}

	m.Switch("room1")
	clock.Advance(testSettle + testComplete)

	if !m.IsRoomLoaded("room2") {
		t.Error("room2 should be preload-requested after entering room1")
	}
	if m.IsRoomLoaded("ending") {
		t.Error("ending is beyond the preload distance")
	}
}

func TestManager_CloseCancelsPendingTransition(t *testing.T) {
	m, bus, clock := newTestManager(t)
	enters := collect(bus, events.KindRoomEnter)

	m.Switch("room1")
	m.Close()
	clock.Advance(testSettle + testComplete)

	if len(*enters) != 0 {
		t.Errorf("room-enter fired %d times after Close, want 0", len(*enters))
	}
}
