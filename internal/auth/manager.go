package auth

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fivetwenty-io/fabric/internal/constants"
	"github.com/fivetwenty-io/fabric/pkg/fabric"
)

// TokenManager caches tokens per scope in front of a Credential. While
// no live entry exists for a scope, concurrent acquisitions collapse
// into one backend call; every caller receives that refresh's result.
// Failed refreshes are never cached.
type TokenManager struct {
	credential Credential
	store      *TokenStore
	group      singleflight.Group
}

// NewTokenManager creates a manager around the given credential.
func NewTokenManager(credential Credential) (*TokenManager, error) {
	if credential == nil {
		return nil, constants.ErrNilCredential
	}

	return &TokenManager{
		credential: credential,
		store:      NewTokenStore(),
	}, nil
}

// GetToken returns a live access token for the scope, refreshing it
// through the credential when the cached entry is missing or inside
// the refresh margin. A token past its expiry is never returned.
func (m *TokenManager) GetToken(ctx context.Context, scope string) (string, error) {
	if scope == "" {
		return "", constants.ErrEmptyScope
	}

	// Two passes: a waiter can receive a shared result that expired
	// while it was scheduled; the second pass mints its own.
	for range 2 {
		if token := m.store.Get(scope); token.Valid() {
			return token.AccessToken, nil
		}

		result, err, _ := m.group.Do(scope, func() (any, error) {
			// A refresh may have completed while this caller queued.
			if token := m.store.Get(scope); token.Valid() {
				return token, nil
			}

			token, err := m.credential.GetToken(ctx, scope)
			if err != nil {
				return nil, authorizationError(err, scope)
			}

			if token == nil || token.AccessToken == "" {
				return nil, authorizationError(ErrEmptyAccessToken, scope)
			}

			m.store.Set(scope, token)

			return token, nil
		})
		if err != nil {
			return "", err
		}

		if token, ok := result.(*Token); ok && !token.Expired() {
			return token.AccessToken, nil
		}

		m.store.Clear(scope)
	}

	return "", authorizationError(ErrEmptyAccessToken, scope)
}

// SetToken seeds the cache for a scope, for callers that already hold
// a token (CLI sessions, tests).
func (m *TokenManager) SetToken(scope, accessToken string, expiresAt time.Time) {
	m.store.Set(scope, &Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	})
}

// Invalidate drops the cached token for a scope so the next
// acquisition refreshes.
func (m *TokenManager) Invalidate(scope string) {
	m.store.Clear(scope)
}

// Expiry returns the cached token's expiry for a scope, or the zero
// time when nothing is cached.
func (m *TokenManager) Expiry(scope string) time.Time {
	token := m.store.Get(scope)
	if token == nil {
		return time.Time{}
	}

	return token.ExpiresAt
}

// authorizationError wraps an identity backend failure in the client's
// taxonomy. The scope names an audience, never a secret.
func authorizationError(err error, scope string) error {
	e := &fabric.Error{
		Kind:    fabric.ErrorKindAuthorization,
		Message: "token acquisition failed for scope " + scope,
		Payload: map[string]any{},
	}

	return e.WithCause(err)
}
