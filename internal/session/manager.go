package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/streakline/internal/constants"
	apperrors "github.com/julianstephens/streakline/internal/errors"
	"github.com/julianstephens/streakline/internal/logger"
	"github.com/julianstephens/streakline/internal/models"
	"github.com/julianstephens/streakline/internal/storage"
)

// Authenticator performs the remote login and register calls.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, models.User, error)
	Register(ctx context.Context, name, email, password string) (models.User, error)
}

// Store persists the token and user between runs.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Manager owns the authenticated session for the lifetime of the process.
// It is created once and handed to everything that needs the user's identity.
type Manager struct {
	auth  Authenticator
	store Store
	now   func() time.Time

	mu      sync.RWMutex
	current *models.Session
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

func NewManager(auth Authenticator, store Store, opts ...Option) *Manager {
	m := &Manager{auth: auth, store: store, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Restore loads a persisted session. An expired, malformed or incomplete
// session is cleared. A missing session is not an error.
func (m *Manager) Restore() error {
	token, err := m.store.Get(constants.SessionKeyToken)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	rawUser, err := m.store.Get(constants.SessionKeyUser)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to load session: %w", err)
	}

	var user models.User
	if err != nil || json.Unmarshal([]byte(rawUser), &user) != nil {
		logger.Warn("Stored session is incomplete, logging out")
		return m.Logout()
	}

	exp, err := TokenExpiry(token)
	if err != nil || !m.now().Before(exp) {
		logger.Info("Stored session expired, logging out", "user", user.Email)
		return m.Logout()
	}

	m.mu.Lock()
	m.current = &models.Session{Token: token, User: user, ExpiresAt: exp}
	m.mu.Unlock()
	logger.Debug("Session restored", "user", user.Email, "expires_at", exp)
	return nil
}

// Login authenticates and installs a new session. On any failure the
// existing session is left untouched.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	token, user, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}

	exp, err := TokenExpiry(token)
	if err != nil {
		return fmt.Errorf("%w: server returned an unusable token: %v", apperrors.ErrAuth, err)
	}
	if !m.now().Before(exp) {
		return fmt.Errorf("%w: server returned an expired token", apperrors.ErrAuth)
	}

	if err := m.persist(token, user); err != nil {
		return err
	}

	m.mu.Lock()
	m.current = &models.Session{Token: token, User: user, ExpiresAt: exp}
	m.mu.Unlock()
	logger.Info("Logged in", "user", user.Email)
	return nil
}

// Register creates the account and then logs in with the same credentials.
func (m *Manager) Register(ctx context.Context, name, email, password string) error {
	if _, err := m.auth.Register(ctx, name, email, password); err != nil {
		return err
	}
	return m.Login(ctx, email, password)
}

// Logout clears the session in memory and in the store. Calling it without a
// session is a no-op.
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	var errs []error
	for _, key := range []string{constants.SessionKeyToken, constants.SessionKeyUser} {
		if err := m.store.Delete(key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			errs = append(errs, fmt.Errorf("failed to clear %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// Current returns the active session. A session found to be expired is
// logged out and reported as absent.
func (m *Manager) Current() (models.Session, bool) {
	m.mu.RLock()
	s := m.current
	m.mu.RUnlock()

	if s == nil {
		return models.Session{}, false
	}
	if s.Expired(m.now()) {
		logger.Info("Session expired, logging out", "user", s.User.Email)
		if err := m.Logout(); err != nil {
			logger.Warn("Failed to clear expired session", "error", err)
		}
		return models.Session{}, false
	}
	return *s, true
}

// Token returns the bearer token of the active session.
func (m *Manager) Token() (string, bool) {
	s, ok := m.Current()
	return s.Token, ok
}

// User returns the profile of the active session.
func (m *Manager) User() (models.User, bool) {
	s, ok := m.Current()
	return s.User, ok
}

// RequireUser returns the logged-in user or an ErrAuth error.
func (m *Manager) RequireUser() (models.User, error) {
	u, ok := m.User()
	if !ok {
		return models.User{}, fmt.Errorf("%w: not logged in (run '%s login')", apperrors.ErrAuth, constants.AppName)
	}
	return u, nil
}

func (m *Manager) persist(token string, user models.User) error {
	rawUser, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := m.store.Set(constants.SessionKeyToken, token); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	if err := m.store.Set(constants.SessionKeyUser, string(rawUser)); err != nil {
		// Put back whatever token matches the stored user.
		m.mu.RLock()
		prev := m.current
		m.mu.RUnlock()
		if prev != nil {
			_ = m.store.Set(constants.SessionKeyToken, prev.Token)
		} else {
			_ = m.store.Delete(constants.SessionKeyToken)
		}
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
