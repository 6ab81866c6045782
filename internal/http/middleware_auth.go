package http

import (
	"context"
	"net/http"
	"strings"

	"tally/internal/auth"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	userIDKey    contextKey = "user_id"
)

// requireAuth validates the bearer token and injects the account ID into
// the request context.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeDomainError(w, r, auth.ErrMissingToken)
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			writeDomainError(w, r, auth.ErrInvalidToken)
			return
		}

		claims, err := s.tokens.Validate(token)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		next(w, r.WithContext(ctx))
	}
}

// currentUserID returns the authenticated account ID placed by requireAuth.
func currentUserID(r *http.Request) int64 {
	id, _ := r.Context().Value(userIDKey).(int64)
	return id
}
