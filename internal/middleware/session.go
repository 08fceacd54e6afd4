package middleware

import (
	"context"
	"net/http"

	"sweet-shop/internal/model"
)

type sessionReader interface {
	HasSession(ctx context.Context) bool
	Role(ctx context.Context) model.Role
}

// SessionMiddleware hides routes the page should not offer. A session
// exists while a token is stored, whether or not it decodes; the role is
// read from the token and is a convenience only: the sweets service
// authorizes every call again.
type SessionMiddleware struct {
	sessions sessionReader
}

func NewSessionMiddleware(sessions sessionReader) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions}
}

func (m *SessionMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.sessions.HasSession(r.Context()) {
			writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "login required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *SessionMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case !m.sessions.HasSession(r.Context()):
			writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "login required")
		case m.sessions.Role(r.Context()) != model.RoleAdmin:
			writeJSONError(w, http.StatusForbidden, "FORBIDDEN", "administrators only")
		default:
			next.ServeHTTP(w, r)
		}
	})
}
