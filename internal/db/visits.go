package db

import (
	"fmt"
	"time"
)

type VisitRecord struct {
	ID          string
	SessionCode string
	VisitorID   string
	StartedAt   *time.Time
	EndedAt     *time.Time
	CreatedAt   time.Time
}

func (d *DB) CreateVisit(sessionCode, visitorID string) (string, error) {
	var id string
	err := d.conn.QueryRow(`
		INSERT INTO visits (session_code, visitor_id, started_at)
		VALUES ($1, $2, now())
		RETURNING id
	`, sessionCode, visitorID).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("creating visit: %w", err)
	}
	return id, nil
}

func (d *DB) EndVisit(visitID string) error {
	_, err := d.conn.Exec(`
		UPDATE visits SET ended_at = now() WHERE id = $1
	`, visitID)
	if err != nil {
		return fmt.Errorf("ending visit: %w", err)
	}
	return nil
}
