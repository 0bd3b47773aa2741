package http

import (
	"net/http"

	"fintrack/internal/core"
)

// notices maps the notice query code set by redirects to its banner text.
var notices = map[string]string{
	"transaction-added":   "Transaction added",
	"transaction-deleted": "Transaction deleted",
	"budget-added":        "Budget saved",
	"budget-deleted":      "Budget deleted",
}

// pageData is embedded by every page view.
type pageData struct {
	Title    string
	Active   string
	Warnings []string
	Notice   string
}

func (s *Server) page(r *http.Request, title, active string) pageData {
	p := pageData{Title: title, Active: active, Notice: notices[r.URL.Query().Get("notice")]}
	for _, w := range s.ledger.Warnings() {
		p.Warnings = append(p.Warnings, w.String())
	}
	return p
}

type dashboardPage struct {
	pageData
	core.Dashboard
	MaxCategory float64
	MaxTrend    float64
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d := s.dashboard()
	data := dashboardPage{
		pageData:  s.page(r, "Financial Dashboard", "dashboard"),
		Dashboard: d,
	}
	for _, c := range d.CategoryBreakdown {
		data.MaxCategory = max(data.MaxCategory, c.Value)
	}
	for _, m := range d.MonthlyTrend {
		data.MaxTrend = max(data.MaxTrend, m.Income, m.Expense)
	}
	s.render(w, r, http.StatusOK, "dashboard_page.html", data)
}

func (s *Server) handleAPIDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.dashboard())
}
