package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/patham9/YAN/internal/engine"
	"github.com/patham9/YAN/internal/store"
)

// Server is the YAN HTTP API server.
type Server struct {
	engine  *engine.Engine
	db      *store.DB // nil when the journal is disabled
	runID   string
	router  chi.Router
	version string
	started time.Time
}

// New creates a Server over eng. db and runID identify the journal run the
// engine writes to; db may be nil.
func New(eng *engine.Engine, db *store.DB, runID, version string) *Server {
	s := &Server{
		engine:  eng,
		db:      db,
		runID:   runID,
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/events", s.handleAddEvent)
		r.Post("/time", s.handleAdvance)
		r.Post("/cycle", s.handleCycle)
		r.Post("/infer", s.handleInfer)
		r.Post("/operations", s.handleRegisterOperation)

		r.Get("/concepts", s.handleConcepts)
		r.Post("/concepts/lookup", s.handleConceptLookup)
		r.Get("/cycling", s.handleCycling)
		r.Get("/snapshot", s.handleSnapshot)
		r.Get("/summary", s.handleSummary)

		r.Get("/journal", s.handleJournal)
		r.Get("/runs", s.handleRuns)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := false
	if s.db != nil {
		dbOK = s.db.Ping() == nil
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  s.version,
		"uptime":   time.Since(s.started).Seconds(),
		"time":     s.engine.Time(),
		"concepts": s.engine.ConceptCount(),
		"journal":  dbOK,
		"run_id":   s.runID,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
