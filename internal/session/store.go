// Package session holds the credential token and derives identity and role
// from it on every read.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"sweet-shop/internal/kvstore"
	"sweet-shop/internal/model"
)

// TokenKey is the fixed storage key of the credential token. An absent key
// means logged out.
const TokenKey = "token"

type authenticator interface {
	Authenticate(ctx context.Context, username string, password string) (string, error)
}

type Store struct {
	auth  authenticator
	store kvstore.Store
}

func NewStore(auth authenticator, store kvstore.Store) *Store {
	return &Store{auth: auth, store: store}
}

// Login exchanges credentials for a token and persists it. Any failure
// leaves the stored token as it was.
func (s *Store) Login(ctx context.Context, username string, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", fmt.Errorf("%w: %w", model.ErrAuthFailure, model.ErrInvalidCredentials)
	}

	token, err := s.auth.Authenticate(ctx, username, password)
	if err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrAuthFailure, err)
	}

	if err := s.store.Set(ctx, TokenKey, token); err != nil {
		return "", fmt.Errorf("persist token: %w", err)
	}

	return token, nil
}

func (s *Store) Logout(ctx context.Context) error {
	if err := s.store.Remove(ctx, TokenKey); err != nil {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

// Token returns the current token or model.ErrNoSession.
func (s *Store) Token(ctx context.Context) (string, error) {
	token, err := s.store.Get(ctx, TokenKey)
	if errors.Is(err, model.ErrKeyNotFound) || (err == nil && strings.TrimSpace(token) == "") {
		return "", model.ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return token, nil
}

// Payload decodes the current token.
func (s *Store) Payload(ctx context.Context) (model.TokenPayload, error) {
	token, err := s.Token(ctx)
	if err != nil {
		return model.TokenPayload{}, err
	}
	return Decode(token)
}

// CurrentRole returns RoleNone when there is no token or it cannot be decoded.
func (s *Store) CurrentRole(ctx context.Context) model.Role {
	payload, err := s.Payload(ctx)
	if err != nil {
		if !errors.Is(err, model.ErrNoSession) {
			slog.Debug("current role unavailable", "error", err)
		}
		return model.RoleNone
	}
	return payload.Role
}
