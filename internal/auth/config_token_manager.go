package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrNoTokenPersister = errors.New("no token persister configured")
)

// TokenPersister saves refreshed tokens so CLI sessions survive
// restarts.
type TokenPersister interface {
	UpdateToken(endpoint, accessToken string, expiresAt time.Time) error
}

// PersistingTokenManager wraps a TokenManager and writes every newly
// minted token back through a TokenPersister. Persistence failures are
// reported on stderr and never fail the request.
type PersistingTokenManager struct {
	manager   *TokenManager
	persister TokenPersister
	endpoint  string

	mu        sync.Mutex
	lastToken string
}

// NewPersistingTokenManager creates a persisting wrapper. An initial
// token, when present, seeds the cache so no refresh happens while it
// is live.
func NewPersistingTokenManager(manager *TokenManager, persister TokenPersister, endpoint, scope, initialToken string, initialExpiry time.Time) *PersistingTokenManager {
	if initialToken != "" {
		manager.SetToken(scope, initialToken, initialExpiry)
	}

	return &PersistingTokenManager{
		manager:   manager,
		persister: persister,
		endpoint:  endpoint,
		lastToken: initialToken,
	}
}

// GetToken returns a live token for the scope, persisting it when the
// underlying manager minted a new one.
func (m *PersistingTokenManager) GetToken(ctx context.Context, scope string) (string, error) {
	token, err := m.manager.GetToken(ctx, scope)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	changed := token != m.lastToken
	if changed {
		m.lastToken = token
	}
	m.mu.Unlock()

	if changed {
		expiry := m.manager.Expiry(scope)

		go func() {
			if persistErr := m.persistToken(token, expiry); persistErr != nil {
				_, _ = fmt.Fprintf(os.Stderr, "Warning: failed to persist refreshed token: %v\n", persistErr)
			}
		}()
	}

	return token, nil
}

// Invalidate drops the cached token for a scope.
func (m *PersistingTokenManager) Invalidate(scope string) {
	m.manager.Invalidate(scope)
}

func (m *PersistingTokenManager) persistToken(accessToken string, expiresAt time.Time) error {
	if m.persister == nil {
		return ErrNoTokenPersister
	}

	if err := m.persister.UpdateToken(m.endpoint, accessToken, expiresAt); err != nil {
		return fmt.Errorf("failed to update stored token: %w", err)
	}

	return nil
}
