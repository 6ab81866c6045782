// Package auth provides password-based account management and stateless
// JWT sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"tally/internal/core"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("invalid email address")
)

// UserStore is the slice of the storage layer the authenticator needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *core.User) error
	GetUserByEmail(ctx context.Context, email string) (*core.User, error)
}

// PasswordAuthenticator implements registration and login with bcrypt
// password hashing.
type PasswordAuthenticator struct {
	store UserStore
}

func NewPasswordAuthenticator(store UserStore) *PasswordAuthenticator {
	return &PasswordAuthenticator{store: store}
}

// ValidateCredential checks minimum password requirements.
func (a *PasswordAuthenticator) ValidateCredential(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// Register creates a new account with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, email, name, password string) (*core.User, error) {
	email = core.NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if err := a.ValidateCredential(password); err != nil {
		return nil, err
	}

	if existing, err := a.store.GetUserByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &core.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
	}
	if err := a.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate verifies email and password, returning the user if valid.
// Lookup failures and hash mismatches both map to ErrInvalidCredentials so
// the response does not reveal which one happened.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, password string) (*core.User, error) {
	user, err := a.store.GetUserByEmail(ctx, core.NormalizeEmail(email))
	if err != nil || user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
