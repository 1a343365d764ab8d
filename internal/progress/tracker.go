package progress

import (
	"fmt"
	"log"
	"sort"
	"sync"

	"museumtour/internal/events"
)

// ObjectMarker restores or clears an interactive object's visual completion
// state. Satisfied by objects.Store.
type ObjectMarker interface {
	MarkCompleted(objectID string) bool
	Reset(objectID string)
}

// DoorUnlocker flips door locks for a whole room. Satisfied by doors.Store.
type DoorUnlocker interface {
	UnlockLockedInRoom(roomID string) int
	LockRoom(roomID string)
}

// TrackerConfig declares one room's tracker.
type TrackerConfig struct {
	VisitorID  string
	RoomID     string
	Objects    []string // authoritative membership list
	Required   int      // completions needed; defaults to len(Objects)
	AutoUnlock bool
}

// Tracker aggregates object-completed events for the objects declared to
// belong to its room. The declared list, not the id convention, decides
// membership: completions for foreign objects are dropped so a single global
// completion channel can be shared by every room's tracker.
type Tracker struct {
	mu        sync.Mutex
	bus       *events.Bus
	store     Store
	objects   ObjectMarker
	doors     DoorUnlocker
	visitorID string
	roomID    string
	declared  map[string]bool
	completed map[string]bool
	required  int
	complete  bool
	auto      bool
	subID     int
}

// NewTracker subscribes a tracker to the session bus. Call Restore afterwards
// to replay any persisted progress.
func NewTracker(bus *events.Bus, store Store, objects ObjectMarker, doors DoorUnlocker, cfg TrackerConfig) *Tracker {
	required := cfg.Required
	if required <= 0 {
		required = len(cfg.Objects)
	}
	t := &Tracker{
		bus:       bus,
		store:     store,
		objects:   objects,
		doors:     doors,
		visitorID: cfg.VisitorID,
		roomID:    cfg.RoomID,
		declared:  make(map[string]bool, len(cfg.Objects)),
		completed: make(map[string]bool),
		required:  required,
		auto:      cfg.AutoUnlock,
	}
	for _, id := range cfg.Objects {
		t.declared[id] = true
	}
	t.subID = bus.Subscribe(events.KindObjectCompleted, func(e events.Event) {
		if done, ok := e.(events.ObjectCompleted); ok {
			t.OnObjectCompleted(done.ObjectID)
		}
	})
	log.Printf("[ProgressTracker] Initialized for %s - %d objects required\n", cfg.RoomID, required)
	return t
}

// OnObjectCompleted records one completion. Duplicates and objects outside
// the declared membership list are dropped without error.
func (t *Tracker) OnObjectCompleted(objectID string) {
	t.mu.Lock()
	if t.completed[objectID] {
		t.mu.Unlock()
		log.Printf("[ProgressTracker] %s: duplicate completion ignored for %s\n", t.roomID, objectID)
		return
	}
	if !t.declared[objectID] {
		t.mu.Unlock()
		return // another room's object
	}
	t.completed[objectID] = true
	justCompleted := !t.complete && len(t.completed) >= t.required
	if justCompleted {
		t.complete = true
	}
	rec := t.recordLocked()
	count, total := len(t.completed), t.required
	t.mu.Unlock()

	log.Printf("[ProgressTracker] %s: object completed: %s (%d/%d)\n", t.roomID, objectID, count, total)
	t.persist(rec)

	if justCompleted {
		log.Printf("[ProgressTracker] Room %s complete\n", t.roomID)
		t.bus.Publish(events.RoomComplete{RoomID: t.roomID, ObjectsCompleted: count, TotalObjects: total})
		t.unlockDoors()
		t.bus.Publish(events.Notification{
			Title:    "Room complete",
			Message:  fmt.Sprintf("You explored all %d exhibits in this room.", total),
			Level:    "success",
			Duration: 3000,
		})
	}
}

// unlockDoors flips every still-locked door in the room once the room
// completes. Doors already unlocked are left untouched.
func (t *Tracker) unlockDoors() {
	if !t.auto || t.doors == nil {
		return
	}
	if n := t.doors.UnlockLockedInRoom(t.roomID); n > 0 {
		t.bus.Publish(events.Notification{
			Message:  "The door is unlocked. Press E to continue to the next room.",
			Level:    "success",
			Duration: 4000,
		})
	}
}

// Restore loads the persisted record, rebuilds the in-memory completion set,
// replays visual completion state onto the objects, and re-runs door
// unlocking when the restored room was already complete. room-complete is
// never re-emitted for restored state.
func (t *Tracker) Restore() {
	rec, err := t.store.Load(t.visitorID, t.roomID)
	if err != nil {
		log.Printf("[ProgressTracker] Failed to load progress for %s: %v\n", t.roomID, err)
		return
	}
	if rec == nil {
		return
	}

	t.mu.Lock()
	for _, id := range rec.CompletedObjects {
		if t.declared[id] {
			t.completed[id] = true
		} else {
			log.Printf("[ProgressTracker] %s: persisted object %s no longer declared, dropping\n", t.roomID, id)
		}
	}
	t.complete = rec.IsComplete || len(t.completed) >= t.required
	restored := make([]string, 0, len(t.completed))
	for id := range t.completed {
		restored = append(restored, id)
	}
	complete := t.complete
	t.mu.Unlock()

	for _, id := range restored {
		if t.objects != nil {
			t.objects.MarkCompleted(id)
		}
	}
	log.Printf("[ProgressTracker] Loaded progress for %s: %d/%d\n", t.roomID, len(restored), t.required)

	if complete {
		t.unlockDoors()
	}
}

// Reset clears the in-memory set and the completion flag, deletes the
// persisted record, resets every declared object, and re-locks the room's
// doors.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.completed = make(map[string]bool)
	t.complete = false
	declared := make([]string, 0, len(t.declared))
	for id := range t.declared {
		declared = append(declared, id)
	}
	t.mu.Unlock()

	if err := t.store.Delete(t.visitorID, t.roomID); err != nil {
		log.Printf("[ProgressTracker] Failed to delete progress for %s: %v\n", t.roomID, err)
	}
	for _, id := range declared {
		if t.objects != nil {
			t.objects.Reset(id)
		}
	}
	if t.doors != nil {
		t.doors.LockRoom(t.roomID)
	}
	log.Printf("[ProgressTracker] Reset progress for %s\n", t.roomID)
}

// Snapshot is the tracker's current progress.
type Snapshot struct {
	RoomID           string   `json:"roomId"`
	CompletedObjects []string `json:"completedObjects"`
	TotalObjects     int      `json:"totalObjects"`
	IsComplete       bool     `json:"isComplete"`
	Percentage       int      `json:"percentage"`
}

// Progress returns a snapshot for HUD display.
func (t *Tracker) Progress() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec := t.recordLocked()
	pct := 0
	if t.required > 0 {
		pct = len(t.completed) * 100 / t.required
		if pct > 100 {
			pct = 100
		}
	}
	return Snapshot{
		RoomID:           rec.RoomID,
		CompletedObjects: rec.CompletedObjects,
		TotalObjects:     rec.TotalObjects,
		IsComplete:       rec.IsComplete,
		Percentage:       pct,
	}
}

// RoomID returns the room this tracker owns.
func (t *Tracker) RoomID() string {
	return t.roomID
}

// Close removes the tracker's bus subscription.
func (t *Tracker) Close() {
	t.bus.Unsubscribe(t.subID)
}

func (t *Tracker) recordLocked() Record {
	completed := make([]string, 0, len(t.completed))
	for id := range t.completed {
		completed = append(completed, id)
	}
	sort.Strings(completed)
	return Record{
		RoomID:           t.roomID,
		CompletedObjects: completed,
		TotalObjects:     t.required,
		IsComplete:       t.complete,
		Timestamp:        now(),
	}
}

func (t *Tracker) persist(rec Record) {
	if err := t.store.Save(t.visitorID, rec); err != nil {
		// In-memory state stays authoritative for the session; the worst
		// outcome of a storage failure is progress not saved.
		log.Printf("[ProgressTracker] Failed to save progress for %s: %v\n", t.roomID, err)
	}
}
