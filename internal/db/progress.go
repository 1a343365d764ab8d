package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"museumtour/internal/progress"
)

// ProgressStore persists per-room completion in PostgreSQL, one row per
// visitor and room. It satisfies progress.Store.
type ProgressStore struct {
	db *DB
}

func NewProgressStore(d *DB) *ProgressStore {
	return &ProgressStore{db: d}
}

func (s *ProgressStore) Save(visitorID string, rec progress.Record) error {
	_, err := s.db.Exec(`
		INSERT INTO room_progress (visitor_id, room_id, completed_objects, total_objects, is_complete, updated_ms)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (visitor_id, room_id)
		DO UPDATE SET completed_objects = $3, total_objects = $4, is_complete = $5, updated_ms = $6
	`, visitorID, rec.RoomID, pq.Array(rec.CompletedObjects), rec.TotalObjects, rec.IsComplete, rec.Timestamp)
	if err != nil {
		return fmt.Errorf("saving progress for %s/%s: %w", visitorID, rec.RoomID, err)
	}
	return nil
}

func (s *ProgressStore) Load(visitorID, roomID string) (*progress.Record, error) {
	rec := progress.Record{RoomID: roomID}
	var completed pq.StringArray
	err := s.db.QueryRow(`
		SELECT completed_objects, total_objects, is_complete, updated_ms
		FROM room_progress
		WHERE visitor_id = $1 AND room_id = $2
	`, visitorID, roomID).Scan(&completed, &rec.TotalObjects, &rec.IsComplete, &rec.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading progress for %s/%s: %w", visitorID, roomID, err)
	}
	rec.CompletedObjects = []string(completed)
	return &rec, nil
}

func (s *ProgressStore) Delete(visitorID, roomID string) error {
	_, err := s.db.Exec(`
		DELETE FROM room_progress WHERE visitor_id = $1 AND room_id = $2
	`, visitorID, roomID)
	if err != nil {
		return fmt.Errorf("deleting progress for %s/%s: %w", visitorID, roomID, err)
	}
	return nil
}
