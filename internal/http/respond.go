package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"tally/internal/auth"
	"tally/internal/core"
	"tally/internal/settle"
	"tally/internal/storage"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeDomainError maps domain and storage errors onto HTTP statuses. Errors
// with no mapping become a 500 with a generic body.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrEmailExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrInvalidEmail):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidKind),
		errors.Is(err, core.ErrInvalidMonth),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrDuplicateMember),
		errors.Is(err, core.ErrUnknownMember),
		errors.Is(err, core.ErrInvalidSplit):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, settle.ErrImbalancedLedger):
		// A group whose logs do not sum to zero is corrupt state, not a
		// caller mistake.
		slog.ErrorContext(r.Context(), "imbalanced group ledger", "error", err, "url", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		slog.ErrorContext(r.Context(), "request failed", "error", err, "url", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON reads a bounded request body into dst, rejecting trailing
// garbage.
func decodeJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected trailing data")
	}
	_, _ = io.Copy(io.Discard, body)
	return nil
}
