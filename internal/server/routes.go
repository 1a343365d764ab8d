package server

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"museumtour/internal/config"
	"museumtour/internal/content"
	"museumtour/internal/db"
	"museumtour/internal/progress"
	"museumtour/internal/sessions"
)

func Run() error {
	appCfg := config.Load()

	def, err := content.Load(appCfg.ContentPath)
	if err != nil {
		return fmt.Errorf("loading tour content: %w", err)
	}
	log.Printf("[Content] Loaded tour %q with %d rooms\n", def.Title, len(def.Rooms))

	srv := &Server{}

	// Optional database connection; progress falls back to memory without it.
	var progressStore progress.Store = progress.NewMemoryStore()
	if appCfg.DatabaseURL != "" {
		database, err := db.Connect(appCfg.DatabaseURL)
		if err != nil {
			log.Printf("[DB] Failed to connect: %v (running without database)\n", err)
		} else {
			if err := database.Migrate(); err != nil {
				log.Printf("[DB] Migration failed: %v\n", err)
			}
			srv.DB = database
			progressStore = db.NewProgressStore(database)
			srv.InteractionBuffer = make(chan db.InteractionEvent, 1000)
			go interactionBatchWriter(database, srv.InteractionBuffer)
			log.Println("[DB] Database connected and migrations applied")
		}
	} else {
		log.Println("[DB] DATABASE_URL not set, running without database")
	}

	srv.Sessions = sessions.NewStore(def, progressStore, appCfg.TourConfig())
	srv.visits = make(map[string]string)

	mux := http.NewServeMux()
	mux.HandleFunc("/sessions/create", srv.handleCreateSession)
	mux.HandleFunc("/sessions/join", srv.handleJoinSession)
	mux.HandleFunc("/session", srv.handleSession)
	mux.HandleFunc("/session/ws", srv.handleWS)
	mux.HandleFunc("/session/events", srv.handleEvents)
	mux.HandleFunc("/session/progress", srv.handleProgress)
	mux.HandleFunc("/session/reset", srv.handleReset)
	mux.HandleFunc("/session/leave", srv.handleLeave)
	mux.HandleFunc("/health", srv.handleHealth)
	mux.HandleFunc("/analytics/objects", srv.handleAnalyticsObjects)
	mux.HandleFunc("/analytics/rooms", srv.handleAnalyticsRooms)
	mux.HandleFunc("/analytics/visit/", srv.handleAnalyticsVisit)

	addr := "0.0.0.0:" + appCfg.Port
	fmt.Printf("Server listening on http://localhost:%s\n", appCfg.Port)
	return http.ListenAndServe(addr, mux)
}

func interactionBatchWriter(database *db.DB, buffer chan db.InteractionEvent) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	batch := make([]db.InteractionEvent, 0, 50)

	for {
		select {
		case ev := <-buffer:
			batch = append(batch, ev)
			if len(batch) >= 50 {
				if err := database.BatchRecordInteractions(batch); err != nil {
					log.Printf("[DB] BatchRecordInteractions error: %v\n", err)
				}
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				if err := database.BatchRecordInteractions(batch); err != nil {
					log.Printf("[DB] BatchRecordInteractions error: %v\n", err)
				}
				batch = batch[:0]
			}
		}
	}
}
