package http

import (
	"context"
	"net/http"
	"time"
)

const readyTimeout = 2 * time.Second

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type readyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	resp := readyResponse{Status: "ready", Checks: make(map[string]string, len(s.checks))}
	status := http.StatusOK
	for name, check := range s.checks {
		if err := check.Ping(ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	period, err := ParsePeriod(r.URL.Query(), s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	report, err := s.api.MonthlyReport(r.Context(), period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NewReportResponse(report))
}

// handleInvalidate drops cached reports after the backing data changed
// out of band, e.g. a seed into the shared SQLite file. Without year and
// month every period is dropped.
func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("year") && !q.Has("month") {
		s.api.InvalidateAll()
		w.WriteHeader(http.StatusNoContent)
		return
	}
	period, err := ParsePeriod(q, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.api.Invalidate(period)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRatio(w http.ResponseWriter, r *http.Request) {
	h, ratio, err := s.api.Ratio(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newRatioResponse(h, ratio))
}

func (s *Server) handleProvisions(w http.ResponseWriter, r *http.Request) {
	totals, err := s.api.Provisions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCategoryResponse(totals))
}

func (s *Server) handleFixedExpenses(w http.ResponseWriter, r *http.Request) {
	totals, err := s.api.FixedExpenses(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCategoryResponse(totals))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	period, err := ParsePeriod(r.URL.Query(), s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	version, err := s.api.RequestExport(r.Context(), period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ExportResponse{Period: period.String(), Version: version})
}
