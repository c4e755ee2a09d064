package http

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"streamtally/internal/core"
	"streamtally/internal/log"
	"streamtally/internal/report"
)

// CreateLogResponse answers POST /api/logs.
type CreateLogResponse struct {
	ID      string `json:"id"`
	Created bool   `json:"created"`
}

type identityResponse struct {
	ID string `json:"id"`
}

func (s *Server) handleCreateLog(w http.ResponseWriter, r *http.Request) {
	var req CreateLogRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	h, err := req.Header()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	id, created, err := s.commands.CreateOrGetHeader(r.Context(), h)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		log.FromContext(r.Context()).DebugContext(r.Context(), "Create request stored a new log",
			log.NewFields().WithStream(id, h.StreamerName, h.Date.String()).ToSlice()...)
	}
	w.Header().Set("Location", "/api/logs/"+id)
	writeJSON(w, status, CreateLogResponse{ID: id, Created: created})
}

func (s *Server) handleIdentity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id, err := s.queries.IdentityFor(q.Get("date"), q.Get("streamer"), q.Get("title"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, identityResponse{ID: id})
}

func (s *Server) handleRecentLogs(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.queries.RecentLogs())
}

// handleGetLog returns the log with its activities newest first.
func (s *Server) handleGetLog(w http.ResponseWriter, r *http.Request) {
	l, ok := s.queries.Get(chi.URLParam(r, "id"))
	if !ok {
		writeNotFound(w, "stream log not found")
		return
	}
	sort.SliceStable(l.Activities, func(i, j int) bool {
		return l.Activities[i].Timestamp.After(l.Activities[j].Timestamp)
	})
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleAppendActivity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.queries.Get(id); !ok {
		writeNotFound(w, "stream log not found")
		return
	}

	var req AppendActivityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	p, err := req.Payload()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	a, err := s.commands.AppendActivity(r.Context(), id, p)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	log.FromContext(r.Context()).DebugContext(r.Context(), "Append request stored an activity",
		log.NewFields().
			WithActivity(a.ID, string(a.Kind), a.Username, a.Count, a.Amount.Cents).
			ToSlice()...)
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleDailyReport(w http.ResponseWriter, r *http.Request) {
	l, ok := s.queries.Get(chi.URLParam(r, "id"))
	if !ok {
		writeNotFound(w, "stream log not found")
		return
	}

	key := fmt.Sprintf("daily:%s:%d", l.ID, l.LastUpdated.UnixNano())
	doc, ok := s.reports.Get(key)
	if !ok {
		var err error
		if doc, err = report.DailyReport(l); err != nil {
			writeDomainError(w, r, fmt.Errorf("render daily report: %w", err))
			return
		}
		s.reports.Set(key, doc)
	}
	writeDocument(w, doc)
}

// handleExport returns the whole collection in its stored layout.
func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	logs := s.queries.All()
	if logs == nil {
		logs = []core.StreamLog{}
	}
	w.Header().Set("Content-Disposition", `attachment; filename="stream_logs.json"`)
	writeJSON(w, http.StatusOK, logs)
}
