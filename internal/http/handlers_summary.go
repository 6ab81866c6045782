package http

import (
	"net/http"
	"strings"

	"tally/internal/summary"
)

type categoryTotalResponse struct {
	Category   string `json:"category"`
	TotalCents int64  `json:"total_cents"`
	Total      string `json:"total"`
}

type budgetUsageResponse struct {
	Category   string  `json:"category"`
	LimitCents int64   `json:"limit_cents"`
	UsedCents  int64   `json:"used_cents"`
	Percent    float64 `json:"percent"`
	Status     string  `json:"status"`
}

type summaryResponse struct {
	Month          string                  `json:"month"`
	CategoryTotals []categoryTotalResponse `json:"category_totals"`
	Months         []string                `json:"months"`
	IncomeSeries   []int64                 `json:"income_series"`
	ExpenseSeries  []int64                 `json:"expense_series"`
	TrendSeries    []int64                 `json:"trend_series"`
	Budgets        []budgetUsageResponse   `json:"budgets"`
}

func toSummaryResponse(r summary.Report) summaryResponse {
	out := summaryResponse{
		Month:          r.Month,
		CategoryTotals: make([]categoryTotalResponse, 0, len(r.CategoryTotals)),
		Months:         r.Months,
		IncomeSeries:   make([]int64, 0, len(r.IncomeSeries)),
		ExpenseSeries:  make([]int64, 0, len(r.ExpenseSeries)),
		TrendSeries:    make([]int64, 0, len(r.TrendSeries)),
		Budgets:        make([]budgetUsageResponse, 0, len(r.Budgets)),
	}
	for _, ct := range r.CategoryTotals {
		out.CategoryTotals = append(out.CategoryTotals, categoryTotalResponse{
			Category:   ct.Category,
			TotalCents: ct.Total.Cents,
			Total:      ct.Total.String(),
		})
	}
	for _, m := range r.IncomeSeries {
		out.IncomeSeries = append(out.IncomeSeries, m.Cents)
	}
	for _, m := range r.ExpenseSeries {
		out.ExpenseSeries = append(out.ExpenseSeries, m.Cents)
	}
	for _, m := range r.TrendSeries {
		out.TrendSeries = append(out.TrendSeries, m.Cents)
	}
	for _, b := range r.Budgets {
		out.Budgets = append(out.Budgets, budgetUsageResponse{
			Category:   b.Category,
			LimitCents: b.Limit.Cents,
			UsedCents:  b.Used.Cents,
			Percent:    b.Percent,
			Status:     string(b.Status),
		})
	}
	return out
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	month := strings.TrimSpace(r.URL.Query().Get("month"))
	report, err := s.ledger.Summary(r.Context(), currentUserID(r), month)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(report))
}
