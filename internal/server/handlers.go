package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"museumtour/internal/content"
	"museumtour/internal/db"
	"museumtour/internal/doors"
	"museumtour/internal/events"
	"museumtour/internal/sessions"
	"museumtour/internal/wshub"
)

type Server struct {
	Sessions          *sessions.Store
	DB                *db.DB                  // nil if no database configured
	InteractionBuffer chan db.InteractionEvent // nil if no database configured

	mu     sync.Mutex
	visits map[string]string // session code -> visit id
}

// getSession resolves the current session from the session_code cookie.
func (s *Server) getSession(r *http.Request) *sessions.Session {
	cookie, err := r.Cookie("session_code")
	if err != nil {
		return nil
	}
	return s.Sessions.Get(cookie.Value)
}

// visitorID returns the visitor's stable id, minting one on first contact.
func (s *Server) visitorID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie("visitor_id"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     "visitor_id",
		Value:    id,
		Path:     "/",
		HttpOnly: true,
	})
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Println(err)
	}
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	fmt.Println("[Handle:CreateSession] Request Received")

	visitorID := s.visitorID(w, r)
	session, err := s.Sessions.Create(visitorID)
	if err != nil {
		log.Println(err)
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "session_code",
		Value:    session.Code,
		Path:     "/",
		HttpOnly: true,
	})

	s.trackVisit(session)

	fmt.Printf("[Handle:CreateSession] Created session %s\n", session.Code)
	writeJSON(w, http.StatusOK, map[string]any{
		"code":     session.Code,
		"snapshot": session.Tour.Snapshot(),
	})
}

func (s *Server) handleJoinSession(w http.ResponseWriter, r *http.Request) {
	fmt.Println("[Handle:JoinSession] Request Received")

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	code := strings.ToUpper(strings.TrimSpace(r.FormValue("code")))
	session := s.Sessions.Get(code)
	if session == nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "session_code",
		Value:    code,
		Path:     "/",
		HttpOnly: true,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"code":     session.Code,
		"snapshot": session.Tour.Snapshot(),
	})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	session := s.getSession(r)
	if session == nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, session.Tour.Snapshot())
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	fmt.Println("[Handle:Leave] Request Received")
	session := s.getSession(r)
	if session == nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	s.mu.Lock()
	visitID := s.visits[session.Code]
	delete(s.visits, session.Code)
	s.mu.Unlock()
	if s.DB != nil && visitID != "" {
		if err := s.DB.EndVisit(visitID); err != nil {
			log.Printf("[DB] EndVisit error: %v\n", err)
		}
	}

	s.Sessions.Delete(session.Code)
	http.SetCookie(w, &http.Cookie{
		Name:   "session_code",
		MaxAge: -1,
		Path:   "/",
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	session := s.getSession(r)
	if session == nil {
		http.Error(w, "Session not found", http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Printf("[WS] Accept error: %v\n", err)
		return
	}

	client := &wshub.Client{
		ID:   uuid.New().String(),
		Conn: conn,
		Send: make(chan []byte, 32),
	}
	session.Hub.Register(client)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go client.WritePump(ctx)

	defer func() {
		session.Hub.Unregister(client.ID)
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var msg wshub.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[WS] Bad message: %v\n", err)
			continue
		}
		s.dispatch(session, msg)
	}
}

// dispatch routes one client input into the session's state machine.
func (s *Server) dispatch(session *sessions.Session, msg wshub.ClientMessage) {
	t := session.Tour
	switch msg.Type {
	case "hover":
		t.Objects.HoverStart(msg.ObjectID)
	case "hover-end":
		t.Objects.HoverEnd(msg.ObjectID)
	case "activate":
		t.Objects.Activate(msg.ObjectID)
	case "move":
		t.Doors.UpdatePlayerPosition(doors.Position{X: msg.X, Y: msg.Y, Z: msg.Z})
	case "interact":
		t.Doors.ActivateNearby(t.Rooms.CurrentRoom())
	case "switch":
		t.Bus.Publish(events.SwitchRoom{TargetRoom: msg.Room})
	default:
		log.Printf("[WS] Unknown message type %q\n", msg.Type)
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	session := s.getSession(r)
	if session == nil {
		http.Error(w, "Session not found", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	msgChan := session.Broadcaster.Subscribe()
	defer session.Broadcaster.Unsubscribe(msgChan)

	for {
		select {
		case <-r.Context().Done():
			return
		case msg := <-msgChan:
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	session := s.getSession(r)
	if session == nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	t := session.Tour
	perRoom := make(map[string]any)
	for roomID, tracker := range t.Trackers {
		perRoom[roomID] = tracker.Progress()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rooms":   perRoom,
		"overall": t.Overall(),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	fmt.Println("[Handle:Reset] Request Received")
	session := s.getSession(r)
	if session == nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	session.Tour.ResetAll()
	writeJSON(w, http.StatusOK, session.Tour.Snapshot())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if s.DB != nil {
		if err := s.DB.Ping(); err != nil {
			status = "db_error"
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"status":"%s","error":"%s"}`, status, err.Error())
			return
		}
	}
	fmt.Fprintf(w, `{"status":"%s"}`, status)
}

// trackVisit opens a visit record and streams the session's notable events
// into the interaction buffer.
func (s *Server) trackVisit(session *sessions.Session) {
	if s.DB == nil || s.InteractionBuffer == nil {
		return
	}

	visitID, err := s.DB.CreateVisit(session.Code, session.VisitorID)
	if err != nil {
		log.Printf("[DB] CreateVisit error: %v\n", err)
		return
	}
	s.mu.Lock()
	s.visits[session.Code] = visitID
	s.mu.Unlock()

	session.Tour.Bus.SubscribeAll(func(e events.Event) {
		ev := db.InteractionEvent{
			VisitID:    visitID,
			VisitorID:  session.VisitorID,
			Kind:       string(e.Kind()),
			OccurredAt: time.Now(),
		}
		switch typed := e.(type) {
		case events.ObjectClick:
			ev.ObjectID = typed.ObjectID
		case events.ObjectCompleted:
			ev.ObjectID = typed.ObjectID
		case events.RoomComplete:
			ev.RoomID = typed.RoomID
		case events.DoorUnlocked:
			ev.RoomID = typed.RoomID
		case events.DoorDenied:
			ev.RoomID = typed.RoomID
		default:
			return
		}
		if ev.RoomID == "" && ev.ObjectID != "" {
			if roomID, ok := content.RoomFromObjectID(ev.ObjectID); ok {
				ev.RoomID = roomID
			}
		}
		select {
		case s.InteractionBuffer <- ev:
		default:
			log.Println("[DB] Interaction buffer full, dropping event")
		}
	})
}
