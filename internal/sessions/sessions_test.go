package sessions

import (
	"sync"
	"testing"

	"museumtour/internal/content"
	"museumtour/internal/events"
	"museumtour/internal/progress"
	"museumtour/internal/tour"
)

const testYAML = `
title: Test Tour
startRoom: home
rooms:
  - id: home
    name: Entrance
    doors:
      - target: room1
        locked: false
  - id: room1
    name: Gallery
    objects:
      - id: obj-room1-vase
        title: Vase
`

func newTestStore(t *testing.T) *Store {
	t.Helper()
	def, err := content.Parse([]byte(testYAML))
	if err != nil {
		t.Fatalf("parsing tour content: %v", err)
	}
	return NewStore(def, progress.NewMemoryStore(), tour.DefaultConfig())
}

func TestStore_Create(t *testing.T) {
	s := newTestStore(t)
	session, err := s.Create("visitor-1")
	if err != nil {
		t.Fatal(err)
	}
	if session.Code == "" {
		t.Error("session code should not be empty")
	}
	if session.VisitorID != "visitor-1" {
		t.Errorf("VisitorID = %q, want %q", session.VisitorID, "visitor-1")
	}
	if session.Tour == nil {
		t.Error("session Tour should not be nil")
	}
	if session.Hub == nil {
		t.Error("session Hub should not be nil")
	}
	if session.Broadcaster == nil {
		t.Error("session Broadcaster should not be nil")
	}
	if got := session.Tour.Rooms.CurrentRoom(); got != "home" {
		t.Errorf("new session starts in %q, want home", got)
	}
}

func TestStore_GetAndDelete(t *testing.T) {
	s := newTestStore(t)
	session, _ := s.Create("visitor-1")

	got := s.Get(session.Code)
	if got == nil {
		t.Fatal("Get() returned nil for existing session")
	}
	if got.Code != session.Code {
		t.Errorf("Code = %q, want %q", got.Code, session.Code)
	}

	if s.Get("ZZZZ") != nil {
		t.Error("Get() should return nil for nonexistent session")
	}

	s.Delete(session.Code)
	if s.Get(session.Code) != nil {
		t.Error("session should be deleted")
	}
}

func TestStore_List(t *testing.T) {
	s := newTestStore(t)
	s.Create("visitor-1")
	s.Create("visitor-2")

	if got := len(s.List()); got != 2 {
		t.Errorf("List() returned %d sessions, want 2", got)
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Create("visitor")
		}()
	}
	wg.Wait()

	if got := len(s.List()); got != 50 {
		t.Errorf("concurrent creates: got %d sessions, want 50", got)
	}
}

func TestStore_SessionIsolation(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.Create("visitor-a")
	b, _ := s.Create("visitor-b")

	a.Tour.Bus.Publish(events.SwitchRoom{TargetRoom: "room1"})

	if got := a.Tour.Rooms.State(); got == "idle" {
		t.Error("session a should be transitioning after switch")
	}
	if got := b.Tour.Rooms.CurrentRoom(); got != "home" {
		t.Errorf("session b room = %q, want home (unaffected by session a)", got)
	}
}

func TestStore_CreateRestoresSavedProgress(t *testing.T) {
	def, err := content.Parse([]byte(testYAML))
	if err != nil {
		t.Fatal(err)
	}
	ps := progress.NewMemoryStore()
	ps.Save("visitor-1", progress.Record{
		RoomID:           "room1",
		CompletedObjects: []string{"obj-room1-vase"},
		TotalObjects:     1,
		IsComplete:       true,
	})

	s := NewStore(def, ps, tour.DefaultConfig())
	session, err := s.Create("visitor-1")
	if err != nil {
		t.Fatal(err)
	}

	obj, ok := session.Tour.Objects.Get("obj-room1-vase")
	if !ok {
		t.Fatal("expected obj-room1-vase to exist")
	}
	if !obj.Completed {
		t.Error("expected saved completion to be restored on session create")
	}
}
