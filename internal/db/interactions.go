package db

import (
	"fmt"
	"time"
)

// InteractionEvent is one exhibit or door interaction flushed to the
// interaction_events table for later analysis.
type InteractionEvent struct {
	VisitID    string
	VisitorID  string
	RoomID     string
	ObjectID   string
	Kind       string // object-click, object-completed, door-unlocked, door-denied, room-complete
	OccurredAt time.Time
}

func (d *DB) RecordInteraction(ev InteractionEvent) error {
	_, err := d.conn.Exec(`
		INSERT INTO interaction_events (visit_id, visitor_id, room_id, object_id, kind, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, ev.VisitID, ev.VisitorID, ev.RoomID, ev.ObjectID, ev.Kind, ev.OccurredAt)
	if err != nil {
		return fmt.Errorf("recording interaction: %w", err)
	}
	return nil
}

func (d *DB) BatchRecordInteractions(events []InteractionEvent) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO interaction_events (visit_id, visitor_id, room_id, object_id, kind, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		if _, err := stmt.Exec(ev.VisitID, ev.VisitorID, ev.RoomID, ev.ObjectID, ev.Kind, ev.OccurredAt); err != nil {
			return fmt.Errorf("recording interaction in batch: %w", err)
		}
	}

	return tx.Commit()
}
