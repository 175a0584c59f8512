// Package auth acquires and caches bearer tokens for the Fabric API.
// Tokens are cached per scope; concurrent acquisitions for one scope
// share a single backend refresh.
package auth

import (
	"sync"
	"time"

	"github.com/fivetwenty-io/fabric/internal/constants"
)

// Token represents a bearer token with its expiry.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type,omitempty"`
	ExpiresIn   int64     `json:"expires_in,omitempty"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
}

// Valid reports whether the token can still be attached to a request.
// A token inside the refresh margin counts as stale so that callers
// refresh strictly before expiry.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Add(constants.TokenRefreshMargin).Before(t.ExpiresAt)
}

// Expired reports whether the token's expiry has already passed. A
// freshly minted short-lived token can be expired==false yet
// Valid()==false; it is still served once, just never cached past its
// margin.
func (t *Token) Expired() bool {
	if t == nil || t.AccessToken == "" {
		return true
	}

	if t.ExpiresAt.IsZero() {
		return false
	}

	return !time.Now().Before(t.ExpiresAt)
}

// TokenStore holds tokens keyed by scope, safe for concurrent use.
// Entries are published only once fully populated; readers never see a
// partially written token.
type TokenStore struct {
	mu     sync.RWMutex
	tokens map[string]*Token
}

// NewTokenStore creates an empty token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		tokens: make(map[string]*Token),
	}
}

// Get returns the stored token for a scope, or nil.
func (s *TokenStore) Get(scope string) *Token {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.tokens[scope]
}

// Set stores a token for a scope.
func (s *TokenStore) Set(scope string, token *Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[scope] = token
}

// Clear removes the token for a scope.
func (s *TokenStore) Clear(scope string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, scope)
}

// ClearAll removes every stored token.
func (s *TokenStore) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens = make(map[string]*Token)
}
