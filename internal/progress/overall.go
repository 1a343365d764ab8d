package progress

// RoomSpec names a room and its required completion count, used for overall
// totals across the whole tour.
type RoomSpec struct {
	RoomID   string
	Required int
}

// OverallProgress summarizes completion across every room of the tour.
type OverallProgress struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// Overall reads the persisted record of every room and sums completions.
// Missing records count as zero; read failures are skipped, matching the
// non-fatal storage error policy.
func Overall(store Store, visitorID string, rooms []RoomSpec) OverallProgress {
	var out OverallProgress
	for _, room := range rooms {
		out.Total += room.Required
		rec, err := store.Load(visitorID, room.RoomID)
		if err != nil || rec == nil {
			continue
		}
		n := len(rec.CompletedObjects)
		if n > room.Required {
			n = room.Required
		}
		out.Completed += n
	}
	if out.Total > 0 {
		out.Percentage = out.Completed * 100 / out.Total
	}
	return out
}
