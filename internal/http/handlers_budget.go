package http

import (
	"net/http"
	"strings"

	"tally/internal/core"
)

type budgetRequest struct {
	Category string `json:"category"`
	Limit    string `json:"limit"` // decimal, e.g. "300.00"
	Month    string `json:"month"` // YYYY-MM
}

type budgetResponse struct {
	ID         int64  `json:"id"`
	Category   string `json:"category"`
	LimitCents int64  `json:"limit_cents"`
	Limit      string `json:"limit"`
	Month      string `json:"month"`
}

func (req budgetRequest) toDomain() (core.Budget, error) {
	cents, err := core.ParseDecimalToCents(req.Limit)
	if err != nil {
		return core.Budget{}, err
	}
	return core.Budget{
		Category: strings.TrimSpace(req.Category),
		Limit:    core.Money{Cents: cents},
		Month:    strings.TrimSpace(req.Month),
	}, nil
}

func toBudgetResponse(b core.Budget) budgetResponse {
	return budgetResponse{
		ID:         b.ID,
		Category:   b.Category,
		LimitCents: b.Limit.Cents,
		Limit:      b.Limit.String(),
		Month:      b.Month,
	}
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	b, err := req.toDomain()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if err := s.ledger.CreateBudget(r.Context(), currentUserID(r), &b); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBudgetResponse(b))
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	month := strings.TrimSpace(r.URL.Query().Get("month"))
	budgets, err := s.ledger.ListBudgets(r.Context(), currentUserID(r), month)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]budgetResponse, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, toBudgetResponse(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	b, err := req.toDomain()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	b.ID = id

	if err := s.ledger.UpdateBudget(r.Context(), currentUserID(r), b); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetResponse(b))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := s.ledger.DeleteBudget(r.Context(), currentUserID(r), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
