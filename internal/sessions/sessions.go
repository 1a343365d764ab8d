package sessions

import (
	"fmt"
	"sync"
	"time"

	"museumtour/internal/broadcast"
	"museumtour/internal/content"
	"museumtour/internal/progress"
	"museumtour/internal/sequence"
	"museumtour/internal/tour"
	"museumtour/internal/wshub"
)

const staleTTL = 1 * time.Hour

// Session is one visitor's live walk-through: their tour state machine plus
// the transports that push state changes to their devices.
type Session struct {
	Code        string
	VisitorID   string
	Tour        *tour.Tour
	Hub         *wshub.Hub
	Broadcaster *broadcast.Broadcaster
	CreatedAt   time.Time
}

type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	def      *content.Tour
	progress progress.Store
	cfg      tour.Config
}

func NewStore(def *content.Tour, ps progress.Store, cfg tour.Config) *Store {
	s := &Store{
		sessions: make(map[string]*Session),
		def:      def,
		progress: ps,
		cfg:      cfg,
	}
	go s.sweepStale()
	return s
}

// Create starts a new session for the visitor and restores any progress they
// saved on a previous visit.
func (s *Store) Create(visitorID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Try up to 10 times to generate a unique code
	for i := 0; i < 10; i++ {
		code, err := GenerateCode()
		if err != nil {
			return nil, fmt.Errorf("generating session code: %w", err)
		}
		if _, exists := s.sessions[code]; exists {
			continue
		}

		t := tour.New(visitorID, s.def, s.progress, sequence.NewRunner(), s.cfg)
		hub := wshub.NewHub()
		b := broadcast.NewBroadcaster(t.Bus, hub)
		t.Restore()

		session := &Session{
			Code:        code,
			VisitorID:   visitorID,
			Tour:        t,
			Hub:         hub,
			Broadcaster: b,
			CreatedAt:   time.Now(),
		}
		s.sessions[code] = session
		return session, nil
	}
	return nil, fmt.Errorf("failed to generate unique session code after 10 attempts")
}

func (s *Store) Get(code string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[code]
}

func (s *Store) Delete(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[code]; ok {
		session.Tour.Close()
		delete(s.sessions, code)
	}
}

func (s *Store) List() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		list = append(list, session)
	}
	return list
}

func (s *Store) sweepStale() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		s.mu.Lock()
		now := time.Now()
		for code, session := range s.sessions {
			if now.Sub(session.CreatedAt) > staleTTL {
				session.Tour.Close()
				delete(s.sessions, code)
			}
		}
		s.mu.Unlock()
	}
}
