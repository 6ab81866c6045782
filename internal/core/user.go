package core

import (
	"strings"
	"time"
)

// User is a registered account. All transactions, budgets and groups are
// owned by exactly one user; every query is scoped to the owner.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// NormalizeEmail lowercases and trims an email for lookup and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
