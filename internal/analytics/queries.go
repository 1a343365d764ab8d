package analytics

import (
	"fmt"

	"museumtour/internal/db"
)

type Queries struct {
	DB *db.DB
}

func NewQueries(database *db.DB) *Queries {
	return &Queries{DB: database}
}

// MostViewedObjects ranks exhibits by click count across all visits.
func (q *Queries) MostViewedObjects(limit int) ([]ObjectStats, error) {
	rows, err := q.DB.Query(`
		SELECT
			object_id,
			room_id,
			COUNT(*) FILTER (WHERE kind = 'object-click') as clicks,
			COUNT(*) FILTER (WHERE kind = 'object-completed') as completions
		FROM interaction_events
		WHERE object_id <> ''
		GROUP BY object_id, room_id
		ORDER BY clicks DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("getting most viewed objects: %w", err)
	}
	defer rows.Close()

	var entries []ObjectStats
	rank := 1
	for rows.Next() {
		var e ObjectStats
		if err := rows.Scan(&e.ObjectID, &e.RoomID, &e.Clicks, &e.Completions); err != nil {
			return nil, err
		}
		e.Rank = rank
		rank++
		entries = append(entries, e)
	}
	return entries, nil
}

// RoomCompletionStats aggregates per-room completions, denials and traffic.
func (q *Queries) RoomCompletionStats() ([]RoomStats, error) {
	rows, err := q.DB.Query(`
		SELECT
			room_id,
			COUNT(*) FILTER (WHERE kind = 'room-complete') as completions,
			COUNT(*) FILTER (WHERE kind = 'door-denied') as denials,
			COUNT(*) FILTER (WHERE kind = 'object-click') as clicks,
			COUNT(DISTINCT visitor_id) as visitors
		FROM interaction_events
		GROUP BY room_id
		ORDER BY room_id
	`)
	if err != nil {
		return nil, fmt.Errorf("getting room stats: %w", err)
	}
	defer rows.Close()

	var entries []RoomStats
	for rows.Next() {
		var e RoomStats
		if err := rows.Scan(&e.RoomID, &e.Completions, &e.DoorDenials, &e.ObjectClicks, &e.UniqueVisitors); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// GetVisitRecap summarizes a single visit's activity.
func (q *Queries) GetVisitRecap(visitID string) (*VisitRecap, error) {
	recap := &VisitRecap{VisitID: visitID}

	err := q.DB.QueryRow(`
		SELECT session_code, visitor_id, started_at, ended_at FROM visits WHERE id = $1
	`, visitID).Scan(&recap.SessionCode, &recap.VisitorID, &recap.StartedAt, &recap.EndedAt)
	if err != nil {
		return nil, fmt.Errorf("getting visit: %w", err)
	}

	err = q.DB.QueryRow(`
		SELECT
			COUNT(*) FILTER (WHERE kind = 'object-click') as clicks,
			COUNT(*) FILTER (WHERE kind = 'object-completed') as completions,
			COUNT(*) FILTER (WHERE kind = 'room-complete') as rooms_done
		FROM interaction_events
		WHERE visit_id = $1
	`, visitID).Scan(&recap.ObjectClicks, &recap.Completions, &recap.RoomsDone)
	if err != nil {
		return nil, fmt.Errorf("getting visit activity: %w", err)
	}

	return recap, nil
}
