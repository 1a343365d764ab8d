package progress

import "sync"

// MemoryStore is the Store used when no database is configured: progress
// survives for the process lifetime only.
type MemoryStore struct {
	mu   sync.Mutex
	recs map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recs: make(map[string]Record)}
}

func key(visitorID, roomID string) string {
	return visitorID + "/" + roomID
}

func (s *MemoryStore) Save(visitorID string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.CompletedObjects = append([]string(nil), rec.CompletedObjects...)
	s.recs[key(visitorID, rec.RoomID)] = rec
	return nil
}

func (s *MemoryStore) Load(visitorID, roomID string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[key(visitorID, roomID)]
	if !ok {
		return nil, nil
	}
	out := rec
	out.CompletedObjects = append([]string(nil), rec.CompletedObjects...)
	return &out, nil
}

func (s *MemoryStore) Delete(visitorID, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.recs, key(visitorID, roomID))
	return nil
}
