package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/yair/localgeo/pkg/domain"
)

// Manager owns the authenticated session. The token is persisted under
// domain.KeyToken; the profile only lives in memory.
type Manager struct {
	api    domain.AuthAPI
	store  domain.KeyValueStore
	logger zerolog.Logger

	mu      sync.RWMutex
	current *domain.AuthSession
}

func NewManager(api domain.AuthAPI, store domain.KeyValueStore, logger zerolog.Logger) *Manager {
	return &Manager{api: api, store: store, logger: logger}
}

// Login exchanges credentials for a token and loads the profile. A failed
// login leaves any existing session untouched.
func (m *Manager) Login(ctx context.Context, username, password string) (domain.AuthSession, error) {
	creds := domain.Credentials{Username: username, Password: password}
	if err := creds.Validate(); err != nil {
		return domain.AuthSession{}, err
	}

	token, err := m.api.Login(ctx, creds)
	if err != nil {
		m.logger.Warn().Err(err).Str("username", username).Msg("login failed")
		return domain.AuthSession{}, fmt.Errorf("login: %w", err)
	}

	if err := m.store.Set(ctx, domain.KeyToken, []byte(token)); err != nil {
		// Log error but continue
		m.logger.Error().Err(err).Msg("failed to persist token")
	}

	session := m.establish(ctx, token)
	m.logger.Info().Str("user_id", session.User.UserID).Msg("logged in")
	return session, nil
}

func (m *Manager) Register(ctx context.Context, req domain.RegisterRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := m.api.Register(ctx, req); err != nil {
		return fmt.Errorf("register %s: %w", req.Username, err)
	}
	return nil
}

// Logout forgets the session locally. The backend is not contacted.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	if err := m.store.Delete(ctx, domain.KeyToken); err != nil && !errors.Is(err, domain.ErrNotFound) {
		m.logger.Error().Err(err).Msg("failed to remove persisted token")
	}
}

// Bootstrap restores a session from the persisted token, if any. Profile
// problems degrade to a placeholder user instead of logging out.
func (m *Manager) Bootstrap(ctx context.Context) (domain.AuthSession, bool) {
	raw, err := m.store.Get(ctx, domain.KeyToken)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			m.logger.Warn().Err(err).Msg("failed to read persisted token")
		}
		return domain.AuthSession{}, false
	}
	token := string(raw)
	if token == "" {
		return domain.AuthSession{}, false
	}

	return m.establish(ctx, token), true
}

func (m *Manager) establish(ctx context.Context, token string) domain.AuthSession {
	session := domain.AuthSession{Token: token, User: m.profile(ctx, token)}

	m.mu.Lock()
	m.current = &session
	m.mu.Unlock()

	return session
}

func (m *Manager) profile(ctx context.Context, token string) domain.User {
	userID, err := DecodeSubject(token)
	if err != nil {
		m.logger.Warn().Err(err).Msg("token has no usable subject")
		return placeholder("")
	}

	user, err := m.api.GetUser(ctx, token, userID)
	if err != nil {
		m.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to load profile, using placeholder")
		return placeholder(userID)
	}

	if user.DisplayName == "" {
		user.DisplayName = user.Username
	}
	if user.DisplayName == "" {
		user.DisplayName = domain.PlaceholderDisplayName
	}
	return *user
}

func placeholder(userID string) domain.User {
	return domain.User{UserID: userID, DisplayName: domain.PlaceholderDisplayName}
}

func (m *Manager) Current() (domain.AuthSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return domain.AuthSession{}, false
	}
	return *m.current, true
}

// Token returns the bearer token, or "" when logged out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return ""
	}
	return m.current.Token
}
