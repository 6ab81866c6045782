package http

import (
	"net/http"
	"strconv"
	"strings"

	"tally/internal/core"
	"tally/internal/storage"
)

type transactionRequest struct {
	Kind     string `json:"kind"`
	Amount   string `json:"amount"` // decimal, e.g. "12.50"
	Category string `json:"category"`
	Note     string `json:"note"`
	Date     string `json:"date"` // YYYY-MM-DD
}

type transactionResponse struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Note        string `json:"note,omitempty"`
	Date        string `json:"date"`
}

func (req transactionRequest) toDomain() (core.Transaction, error) {
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		Kind:     core.TransactionKind(req.Kind),
		Amount:   core.Money{Cents: cents},
		Category: strings.TrimSpace(req.Category),
		Note:     strings.TrimSpace(req.Note),
		Date:     date,
	}, nil
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		Kind:        string(t.Kind),
		AmountCents: t.Amount.Cents,
		Amount:      t.Amount.String(),
		Category:    t.Category,
		Note:        t.Note,
		Date:        t.Date.String(),
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	t, err := req.toDomain()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if err := s.ledger.CreateTransaction(r.Context(), currentUserID(r), &t); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(t))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	t, err := s.ledger.GetTransaction(r.Context(), currentUserID(r), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(*t))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTransactionFilter(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	transactions, err := s.ledger.ListTransactions(r.Context(), currentUserID(r), filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]transactionResponse, 0, len(transactions))
	for _, t := range transactions {
		out = append(out, toTransactionResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	t, err := req.toDomain()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	t.ID = id

	if err := s.ledger.UpdateTransaction(r.Context(), currentUserID(r), t); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := s.ledger.DeleteTransaction(r.Context(), currentUserID(r), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseTransactionFilter(r *http.Request) (storage.TransactionFilter, error) {
	q := r.URL.Query()
	filter := storage.TransactionFilter{
		Category: strings.TrimSpace(q.Get("category")),
		Search:   strings.TrimSpace(q.Get("q")),
	}

	if kind := strings.TrimSpace(q.Get("kind")); kind != "" {
		filter.Kind = core.TransactionKind(kind)
		if !filter.Kind.Valid() {
			return filter, core.ErrInvalidKind
		}
	}
	if from := strings.TrimSpace(q.Get("from")); from != "" {
		d, err := core.ParseDate(from)
		if err != nil {
			return filter, err
		}
		filter.From = d
	}
	if to := strings.TrimSpace(q.Get("to")); to != "" {
		d, err := core.ParseDate(to)
		if err != nil {
			return filter, err
		}
		filter.To = d
	}
	return filter, nil
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
