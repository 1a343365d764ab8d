package server

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"museumtour/internal/analytics"
)

func (s *Server) handleAnalyticsObjects(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "Analytics requires a database connection", http.StatusServiceUnavailable)
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	q := analytics.NewQueries(s.DB)
	entries, err := q.MostViewedObjects(limit)
	if err != nil {
		log.Printf("[Analytics] object stats error: %v\n", err)
		http.Error(w, "Error loading object stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleAnalyticsRooms(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "Analytics requires a database connection", http.StatusServiceUnavailable)
		return
	}

	q := analytics.NewQueries(s.DB)
	stats, err := q.RoomCompletionStats()
	if err != nil {
		log.Printf("[Analytics] room stats error: %v\n", err)
		http.Error(w, "Error loading room stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleAnalyticsVisit(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "Analytics requires a database connection", http.StatusServiceUnavailable)
		return
	}

	// /analytics/visit/{id}
	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 4 || parts[3] == "" {
		http.Error(w, "Visit ID required", http.StatusBadRequest)
		return
	}
	visitID := parts[3]

	q := analytics.NewQueries(s.DB)
	recap, err := q.GetVisitRecap(visitID)
	if err != nil {
		log.Printf("[Analytics] visit recap error: %v\n", err)
		http.Error(w, "Visit not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, recap)
}
