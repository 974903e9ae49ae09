// Package session is the single source of truth for who is logged in and
// with what role. Sessions live in Redis keyed by an opaque ID carried in a
// cookie; the backend bearer token never leaves this package except through
// the request context consumed by the backend client.
package session

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"evoting-portal/internal/domain"
)

// Theme preferences persisted per session
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Session is one authenticated browser session
type Session struct {
	ID        string               `json:"id"`
	Token     string               `json:"token"`
	User      *domain.User         `json:"user"`
	Profile   *domain.VoterProfile `json:"profile,omitempty"`
	Theme     string               `json:"theme"`
	CreatedAt time.Time            `json:"created_at"`
}

// IsSuperuser reports whether the session's user is a superuser
func (s *Session) IsSuperuser() bool {
	return s.User != nil && s.User.IsSuperuser
}

// IsAdmin reports whether the session's user is an admin or superuser
func (s *Session) IsAdmin() bool {
	return s.User != nil && (s.User.Role == domain.RoleAdmin || s.User.IsSuperuser)
}

// IsInec reports whether the session's user is an INEC official
func (s *Session) IsInec() bool {
	return s.User != nil && s.User.Role == domain.RoleInec
}

// IsVoter reports whether the session's user is a voter
func (s *Session) IsVoter() bool {
	return s.User != nil && s.User.Role == domain.RoleVoter
}

// Role returns the session's role or "" for an anonymous session
func (s *Session) Role() string {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// tokenExpired peeks at a JWT's exp claim without verifying the signature;
// verification is the backend's job. Opaque tokens are never treated as
// expired here.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}

type contextKey string

const sessionContextKey contextKey = "portal_session"

// WithSession stashes the resolved session on the request context
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// FromContext returns the session resolved by the middleware, or nil
func FromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(sessionContextKey).(*Session); ok {
		return s
	}
	return nil
}

// TokenFromContext is the backend client's TokenProvider: it reads the bearer
// token of the request's session, "" when anonymous.
func TokenFromContext(ctx context.Context) string {
	if s := FromContext(ctx); s != nil {
		return s.Token
	}
	return ""
}
