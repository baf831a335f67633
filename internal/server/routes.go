package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/patham9/YAN/internal/engine"
	"github.com/patham9/YAN/internal/store"
)

const (
	defaultLimit = 50
	maxLimit     = 1000
	maxCycles    = 1000
)

func queryLimit(r *http.Request) int {
	limit := defaultLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = min(n, maxLimit)
		}
	}
	return limit
}

func (s *Server) handleAddEvent(w http.ResponseWriter, r *http.Request) {
	var in engine.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if in.Term == nil {
		writeError(w, http.StatusBadRequest, "term required")
		return
	}

	ev, err := s.engine.Input(in)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, s.engine.View(ev))
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Steps int64 `json:"steps"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	now, err := s.engine.Advance(req.Steps)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"time": now})
}

func (s *Server) handleCycle(w http.ResponseWriter, r *http.Request) {
	req := struct {
		Cycles int `json:"cycles"`
	}{Cycles: 1}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
	}
	if req.Cycles < 1 || req.Cycles > maxCycles {
		writeError(w, http.StatusBadRequest, "cycles must be between 1 and "+strconv.Itoa(maxCycles))
		return
	}

	derived := 0
	for range req.Cycles {
		derived += s.engine.Cycle()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"derived": derived,
		"time":    s.engine.Time(),
	})
}

func (s *Server) handleInfer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		A any `json:"a"`
		B any `json:"b"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.A == nil || req.B == nil {
		writeError(w, http.StatusBadRequest, "a and b required")
		return
	}

	a, err := s.engine.ParseTerm(req.A)
	if err != nil {
		writeError(w, http.StatusBadRequest, "a: "+err.Error())
		return
	}
	b, err := s.engine.ParseTerm(req.B)
	if err != nil {
		writeError(w, http.StatusBadRequest, "b: "+err.Error())
		return
	}

	d, err := s.engine.InferLatest(a, b)
	switch {
	case errors.Is(err, engine.ErrNoBelief):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	resp := map[string]any{
		"sequence":           s.engine.View(d.Sequence),
		"implication_stored": d.ImplicationStored,
	}
	if d.Implication != nil {
		resp["implication"] = s.engine.ImplicationView(*d.Implication)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRegisterOperation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol string `json:"symbol"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	id, err := s.engine.RegisterOperation(req.Symbol)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "symbol": req.Symbol})
}

func (s *Server) handleConcepts(w http.ResponseWriter, r *http.Request) {
	concepts := s.engine.Concepts(r.URL.Query().Get("atom"))
	if limit := queryLimit(r); len(concepts) > limit {
		concepts = concepts[:limit]
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(concepts),
		"concepts": concepts,
	})
}

func (s *Server) handleConceptLookup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Term any `json:"term"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Term == nil {
		writeError(w, http.StatusBadRequest, "term required")
		return
	}

	c, ok, err := s.engine.Concept(req.Term)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "concept not in memory")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleCycling(w http.ResponseWriter, r *http.Request) {
	events := s.engine.CyclingEvents()
	writeJSON(w, http.StatusOK, map[string]any{
		"count":  len(events),
		"events": events,
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

type knowledgeJSON struct {
	RunID          string  `json:"run_id"`
	Kind           string  `json:"kind"`
	Statement      string  `json:"statement"`
	Frequency      float64 `json:"frequency"`
	Confidence     float64 `json:"confidence"`
	OccurrenceTime *int64  `json:"occurrence_time,omitempty"`
	Priority       float64 `json:"priority"`
	LoggedAt       int64   `json:"logged_at"`
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "journal not enabled")
		return
	}

	limit := queryLimit(r)
	var (
		rows []store.Knowledge
		err  error
	)
	if run := r.URL.Query().Get("run"); run != "" {
		rows, err = s.db.RunKnowledge(run)
		if len(rows) > limit {
			rows = rows[len(rows)-limit:]
		}
	} else {
		rows, err = s.db.RecentKnowledge(limit)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]knowledgeJSON, len(rows))
	for i, k := range rows {
		out[i] = knowledgeJSON{
			RunID:          k.RunID,
			Kind:           k.Kind,
			Statement:      k.Term + k.Punctuation,
			Frequency:      k.Frequency,
			Confidence:     k.Confidence,
			OccurrenceTime: k.OccurrenceTime,
			Priority:       k.Priority,
			LoggedAt:       k.LoggedAt,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(out),
		"entries": out,
	})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "journal not enabled")
		return
	}

	runs, err := s.db.RecentRuns(queryLimit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	type runJSON struct {
		RunID       string `json:"run_id"`
		Label       string `json:"label,omitempty"`
		Status      string `json:"status"`
		StartedAt   int64  `json:"started_at"`
		EndedAt     *int64 `json:"ended_at,omitempty"`
		LastCycle   int64  `json:"last_cycle"`
		RecordCount int    `json:"record_count"`
	}
	out := make([]runJSON, len(runs))
	for i, run := range runs {
		out[i] = runJSON{run.RunID, run.Label, run.Status, run.StartedAt, run.EndedAt, run.LastCycle, run.RecordCount}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(out),
		"runs":  out,
	})
}
