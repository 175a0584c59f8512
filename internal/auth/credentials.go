package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/fivetwenty-io/fabric/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrStaticTokenExpired = errors.New("static token is expired and cannot be refreshed")
	ErrEmptyAccessToken   = errors.New("identity backend returned an empty access token")
)

// Credential is the identity backend boundary: it mints a token for a
// scope. Implementations own the protocol details; callers only select
// the scope.
type Credential interface {
	GetToken(ctx context.Context, scope string) (*Token, error)
}

// StaticTokenCredential serves a fixed, caller-supplied token.
type StaticTokenCredential struct {
	token     string
	expiresAt time.Time
}

// NewStaticTokenCredential creates a credential around an existing
// token. A zero expiry means the token is treated as non-expiring.
func NewStaticTokenCredential(token string, expiresAt time.Time) *StaticTokenCredential {
	return &StaticTokenCredential{
		token:     token,
		expiresAt: expiresAt,
	}
}

// GetToken returns the fixed token. Scope is ignored: a static token
// is already bound to whatever audience it was minted for.
func (c *StaticTokenCredential) GetToken(_ context.Context, _ string) (*Token, error) {
	if !c.expiresAt.IsZero() && time.Now().Add(constants.TokenClockSkew).After(c.expiresAt) {
		return nil, ErrStaticTokenExpired
	}

	return &Token{
		AccessToken: c.token,
		TokenType:   "Bearer",
		ExpiresAt:   c.expiresAt,
	}, nil
}

// ClientSecretCredential mints tokens through the client-credentials
// grant against an AAD-style token endpoint.
type ClientSecretCredential struct {
	// TenantID is the directory the application lives in.
	TenantID string
	// ClientID and ClientSecret identify the application.
	ClientID     string
	ClientSecret string
	// AuthorityHost overrides the login authority. Defaults to the
	// public authority.
	AuthorityHost string
	// HTTPClient overrides the client used for token requests.
	HTTPClient *http.Client
}

// NewClientSecretCredential creates a client-credentials grant
// credential.
func NewClientSecretCredential(tenantID, clientID, clientSecret string) *ClientSecretCredential {
	return &ClientSecretCredential{
		TenantID:     tenantID,
		ClientID:     clientID,
		ClientSecret: clientSecret,
	}
}

// GetToken requests a token for the given scope.
func (c *ClientSecretCredential) GetToken(ctx context.Context, scope string) (*Token, error) {
	conf := &clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     tokenURL(c.AuthorityHost, c.TenantID),
		Scopes:       []string{scope},
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	tok, err := conf.Token(withHTTPClient(ctx, c.HTTPClient))
	if err != nil {
		return nil, fmt.Errorf("client credentials grant: %w", err)
	}

	return fromOAuth2Token(tok)
}

// UsernamePasswordCredential mints tokens through the resource-owner
// password grant.
type UsernamePasswordCredential struct {
	TenantID      string
	ClientID      string
	Username      string
	Password      string
	AuthorityHost string
	HTTPClient    *http.Client
}

// NewUsernamePasswordCredential creates a password grant credential.
func NewUsernamePasswordCredential(tenantID, clientID, username, password string) *UsernamePasswordCredential {
	return &UsernamePasswordCredential{
		TenantID: tenantID,
		ClientID: clientID,
		Username: username,
		Password: password,
	}
}

// GetToken requests a token for the given scope.
func (c *UsernamePasswordCredential) GetToken(ctx context.Context, scope string) (*Token, error) {
	conf := &oauth2.Config{
		ClientID: c.ClientID,
		Endpoint: oauth2.Endpoint{
			TokenURL:  tokenURL(c.AuthorityHost, c.TenantID),
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: []string{scope},
	}

	tok, err := conf.PasswordCredentialsToken(withHTTPClient(ctx, c.HTTPClient), c.Username, c.Password)
	if err != nil {
		return nil, fmt.Errorf("password grant: %w", err)
	}

	return fromOAuth2Token(tok)
}

func tokenURL(authorityHost, tenantID string) string {
	if authorityHost == "" {
		authorityHost = constants.DefaultAuthorityHost
	}

	return strings.TrimSuffix(authorityHost, "/") + "/" + tenantID + "/oauth2/v2.0/token"
}

func withHTTPClient(ctx context.Context, client *http.Client) context.Context {
	if client == nil {
		return ctx
	}

	return context.WithValue(ctx, oauth2.HTTPClient, client)
}

func fromOAuth2Token(tok *oauth2.Token) (*Token, error) {
	if tok == nil || tok.AccessToken == "" {
		return nil, ErrEmptyAccessToken
	}

	token := &Token{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		ExpiresAt:   tok.Expiry,
	}

	if !tok.Expiry.IsZero() {
		token.ExpiresIn = int64(time.Until(tok.Expiry).Seconds())
	}

	return token, nil
}
