package http

import (
	"fmt"
	"net/http"

	"streamtally/internal/core"
	"streamtally/internal/report"
)

// Charts holds the pie projections of a monthly summary.
type Charts struct {
	Subs     []core.ChartSlice `json:"subs"`
	GiftSubs []core.ChartSlice `json:"giftSubs"`
	Revenue  []core.ChartSlice `json:"revenue"`
}

// MonthlySummaryResponse answers GET /api/analytics/years/{year}/months/{month}.
type MonthlySummaryResponse struct {
	core.Summary
	Charts Charts `json:"charts"`
}

func (s *Server) handleYears(w http.ResponseWriter, _ *http.Request) {
	years := s.queries.AvailableYears()
	if years == nil {
		years = []int{}
	}
	writeJSON(w, http.StatusOK, years)
}

func (s *Server) handleMonths(w http.ResponseWriter, r *http.Request) {
	year, ok := pathYear(r)
	if !ok {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid year")
		return
	}
	months := s.queries.AvailableMonths(year)
	if months == nil {
		months = []core.MonthOption{}
	}
	writeJSON(w, http.StatusOK, months)
}

func (s *Server) handleYearlySummary(w http.ResponseWriter, r *http.Request) {
	sum, ok := s.yearly(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	sum, ok := s.monthly(w, r)
	if !ok {
		return
	}
	revenue := core.RevenueSources(sum.Totals)
	if revenue == nil {
		revenue = []core.ChartSlice{}
	}
	writeJSON(w, http.StatusOK, MonthlySummaryResponse{
		Summary: sum,
		Charts: Charts{
			Subs:     core.SubsChart(sum.Totals),
			GiftSubs: core.GiftSubsChart(sum.Totals),
			Revenue:  revenue,
		},
	})
}

func (s *Server) handleYearlyReport(w http.ResponseWriter, r *http.Request) {
	sum, ok := s.yearly(w, r)
	if !ok {
		return
	}
	s.renderSummary(w, r, sum, "Yearly Summary")
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	sum, ok := s.monthly(w, r)
	if !ok {
		return
	}
	s.renderSummary(w, r, sum, "Monthly Summary")
}

func (s *Server) renderSummary(w http.ResponseWriter, r *http.Request, sum core.Summary, title string) {
	doc, err := report.SummaryReport(sum, title)
	if err != nil {
		writeDomainError(w, r, fmt.Errorf("render summary report: %w", err))
		return
	}
	writeDocument(w, doc)
}

// yearly resolves the summary for the {year} parameter, answering the
// request itself when there is none.
func (s *Server) yearly(w http.ResponseWriter, r *http.Request) (core.Summary, bool) {
	year, ok := pathYear(r)
	if !ok {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid year")
		return core.Summary{}, false
	}
	sum, ok := s.queries.YearlySummary(year)
	if !ok {
		writeNotFound(w, fmt.Sprintf("no stream logs in %d", year))
		return core.Summary{}, false
	}
	return sum, true
}

func (s *Server) monthly(w http.ResponseWriter, r *http.Request) (core.Summary, bool) {
	year, ok := pathYear(r)
	if !ok {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid year")
		return core.Summary{}, false
	}
	month, ok := pathMonth(r)
	if !ok {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "month must be between 0 and 11")
		return core.Summary{}, false
	}
	sum, ok := s.queries.MonthlySummary(year, month)
	if !ok {
		writeNotFound(w, fmt.Sprintf("no stream logs in %s", core.MonthPeriod(year, month)))
		return core.Summary{}, false
	}
	return sum, true
}
