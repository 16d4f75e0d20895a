package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"taskflow-client/domain"
	"taskflow-client/remote"
)

// API is the slice of the authority client the manager needs.
type API interface {
	Login(ctx context.Context, email, password string) (domain.User, string, error)
	Signup(ctx context.Context, name, email, password string) (domain.User, string, error)
	Profile(ctx context.Context) (domain.User, error)
	UpdatePassword(ctx context.Context, current, next string) error
}

// Manager owns the current session and the auth calls that produce it.
type Manager struct {
	mu      sync.Mutex
	current Session
	api     API
	logger  *log.Logger
}

// NewManager creates a Manager backed by api.
func NewManager(api API, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Manager{api: api, logger: logger}
}

// Current returns the session as of this call.
func (m *Manager) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Token returns the current bearer token. It is shaped to plug into
// remote.Client.Token.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.Token
}

// Login exchanges credentials for a session.
func (m *Manager) Login(ctx context.Context, email, password string) (Session, error) {
	user, token, err := m.api.Login(ctx, email, password)
	if err != nil {
		return Session{}, err
	}
	sess := Session{User: user, Token: token}
	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()
	m.logger.WithFields(log.Fields{"user": user.ID, "role": user.Role}).Info("session established")
	return sess, nil
}

// Signup registers a new member account and establishes its session.
func (m *Manager) Signup(ctx context.Context, name, email, password string) (Session, error) {
	user, token, err := m.api.Signup(ctx, name, email, password)
	if err != nil {
		return Session{}, err
	}
	sess := Session{User: user, Token: token}
	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()
	return sess, nil
}

// Refresh refetches the profile and merges it into the session. A 401 from
// the authority terminates the session: the local session is cleared and
// ErrSessionExpired is returned.
func (m *Manager) Refresh(ctx context.Context) (Session, error) {
	user, err := m.api.Profile(ctx)
	if err != nil {
		var rerr *remote.Error
		if errors.As(err, &rerr) && rerr.Unauthorized() {
			m.Logout()
			return Session{}, fmt.Errorf("%w: %s", ErrSessionExpired, rerr.Message)
		}
		return m.Current(), err
	}
	m.mu.Lock()
	m.current.User = user
	sess := m.current
	m.mu.Unlock()
	return sess, nil
}

// UpdatePassword changes the account password. The session token stays valid.
func (m *Manager) UpdatePassword(ctx context.Context, current, next string) error {
	return m.api.UpdatePassword(ctx, current, next)
}

// Logout clears the session.
func (m *Manager) Logout() {
	m.mu.Lock()
	had := m.current.Authenticated()
	m.current = Session{}
	m.mu.Unlock()
	if had {
		m.logger.Info("session cleared")
	}
}
