package analytics

import (
	"os"
	"testing"
	"time"

	"museumtour/internal/db"
)

func getTestQueries(t *testing.T) *Queries {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database tests")
	}
	database, err := db.Connect(dsn)
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	if err := database.Migrate(); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}
	t.Cleanup(func() {
		database.Exec("DELETE FROM interaction_events")
		database.Exec("DELETE FROM visits")
		database.Close()
	})
	return NewQueries(database)
}

func seedVisit(t *testing.T, q *Queries, code, visitorID string, events []db.InteractionEvent) string {
	t.Helper()
	visitID, err := q.DB.CreateVisit(code, visitorID)
	if err != nil {
		t.Fatal(err)
	}
	for i := range events {
		events[i].VisitID = visitID
		events[i].VisitorID = visitorID
		events[i].OccurredAt = time.Now()
	}
	if err := q.DB.BatchRecordInteractions(events); err != nil {
		t.Fatal(err)
	}
	return visitID
}

func TestMostViewedObjects(t *testing.T) {
	q := getTestQueries(t)

	seedVisit(t, q, "ABCD", "v1", []db.InteractionEvent{
		{RoomID: "room1", ObjectID: "obj-room1-ship", Kind: "object-click"},
		{RoomID: "room1", ObjectID: "obj-room1-ship", Kind: "object-click"},
		{RoomID: "room1", ObjectID: "obj-room1-ship", Kind: "object-completed"},
		{RoomID: "room1", ObjectID: "obj-room1-sextant", Kind: "object-click"},
	})

	entries, err := q.MostViewedObjects(10)
	if err != nil {
		t.Fatalf("MostViewedObjects() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].ObjectID != "obj-room1-ship" || entries[0].Clicks != 2 || entries[0].Completions != 1 {
		t.Errorf("top entry = %+v, want ship with 2 clicks, 1 completion", entries[0])
	}
	if entries[0].Rank != 1 || entries[1].Rank != 2 {
		t.Error("entries should be ranked in order")
	}
}

func TestRoomCompletionStats(t *testing.T) {
	q := getTestQueries(t)

	seedVisit(t, q, "ABCD", "v1", []db.InteractionEvent{
		{RoomID: "room1", ObjectID: "obj-room1-ship", Kind: "object-click"},
		{RoomID: "room1", Kind: "room-complete"},
		{RoomID: "room2", Kind: "door-denied"},
	})
	seedVisit(t, q, "EFGH", "v2", []db.InteractionEvent{
		{RoomID: "room1", ObjectID: "obj-room1-ship", Kind: "object-click"},
	})

	stats, err := q.RoomCompletionStats()
	if err != nil {
		t.Fatalf("RoomCompletionStats() error: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("got %d rooms, want 2", len(stats))
	}
	room1 := stats[0]
	if room1.RoomID != "room1" || room1.Completions != 1 || room1.ObjectClicks != 2 || room1.UniqueVisitors != 2 {
		t.Errorf("room1 stats = %+v", room1)
	}
	if stats[1].DoorDenials != 1 {
		t.Errorf("room2 denials = %d, want 1", stats[1].DoorDenials)
	}
}

func TestGetVisitRecap(t *testing.T) {
	q := getTestQueries(t)

	visitID := seedVisit(t, q, "ABCD", "v1", []db.InteractionEvent{
		{RoomID: "room1", ObjectID: "obj-room1-ship", Kind: "object-click"},
		{RoomID: "room1", ObjectID: "obj-room1-ship", Kind: "object-completed"},
		{RoomID: "room1", Kind: "room-complete"},
	})

	recap, err := q.GetVisitRecap(visitID)
	if err != nil {
		t.Fatalf("GetVisitRecap() error: %v", err)
	}
	if recap.SessionCode != "ABCD" || recap.VisitorID != "v1" {
		t.Errorf("recap identity = %+v", recap)
	}
	if recap.ObjectClicks != 1 || recap.Completions != 1 || recap.RoomsDone != 1 {
		t.Errorf("recap activity = %+v", recap)
	}
}
