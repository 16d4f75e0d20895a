// Package session holds the authenticated identity for one client session.
// The session is read by every other component to compute visibility and
// permissions, and is never mutated by them; predicates take the session as
// an explicit value, not an ambient global.
package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"taskflow-client/domain"
)

// ErrSessionExpired signals that the authority rejected the session's token.
// Callers answer it by clearing the session, not by retrying.
var ErrSessionExpired = errors.New("session expired")

// Session is the current authenticated identity: account, role and bearer
// token. The zero value is an unauthenticated session.
type Session struct {
	User  domain.User
	Token string
}

// Authenticated reports whether the session carries a token.
func (s Session) Authenticated() bool { return s.Token != "" }

// IsAdmin reports whether the session's role grants full visibility.
func (s Session) IsAdmin() bool { return s.User.Role == domain.RoleAdmin }

// CanSeeTask reports whether the task is visible to this session: admins see
// every task of the selected project, members only tasks assigned to them.
func (s Session) CanSeeTask(t domain.Task) bool {
	return s.IsAdmin() || (t.Assignee != "" && t.Assignee == s.User.ID)
}

// CanMutateTask reports whether drag-initiated status changes and the
// edit/delete affordances are permitted for this session on the task.
func (s Session) CanMutateTask(t domain.Task) bool {
	return s.IsAdmin() || (t.Assignee != "" && t.Assignee == s.User.ID)
}

// Subject extracts the subject claim from the session token without
// verifying the signature; the client trusts the token it was issued.
func (s Session) Subject() (string, error) {
	claims, err := s.claims()
	if err != nil {
		return "", err
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("missing sub")
	}
	return sub, nil
}

// ExpiresAt returns the token's expiry, or the zero time when the token
// carries no exp claim.
func (s Session) ExpiresAt() (time.Time, error) {
	claims, err := s.claims()
	if err != nil {
		return time.Time{}, err
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return time.Time{}, nil
	}
	return time.Unix(int64(exp), 0), nil
}

// Expired reports whether the token's exp claim has passed. Tokens without
// an exp claim never expire from the client's point of view.
func (s Session) Expired(now time.Time) bool {
	exp, err := s.ExpiresAt()
	if err != nil || exp.IsZero() {
		return false
	}
	return now.After(exp)
}

func (s Session) claims() (jwt.MapClaims, error) {
	if s.Token == "" {
		return nil, errors.New("no token")
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(s.Token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}
