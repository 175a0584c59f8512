// Package fabricclient provides the main entry point for creating Fabric API clients
package fabricclient

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/fivetwenty-io/fabric/internal/client"
	"github.com/fivetwenty-io/fabric/pkg/fabric"
)

// New creates a new Fabric API client from the given configuration.
func New(config *fabric.Config) (fabric.Client, error) {
	if config == nil {
		return nil, fabric.ErrConfigRequired
	}

	if config.APIEndpoint == "" {
		return nil, fabric.ErrAPIEndpointRequired
	}

	// Normalize API endpoint
	apiEndpoint := strings.TrimSuffix(config.APIEndpoint, "/")
	if !strings.HasPrefix(apiEndpoint, "http://") && !strings.HasPrefix(apiEndpoint, "https://") {
		apiEndpoint = "https://" + apiEndpoint
	}

	config.APIEndpoint = apiEndpoint

	if config.SkipTLSVerify && config.HTTPClient == nil {
		httpClient, err := insecureHTTPClient()
		if err != nil {
			return nil, err
		}

		config.HTTPClient = httpClient
	}

	client, err := client.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return client, nil
}

// isDevelopmentEnvironment checks if we're in a development environment.
func isDevelopmentEnvironment() bool {
	devMode := os.Getenv("FABRIC_DEV_MODE")

	return devMode == "true" || devMode == "1"
}

// insecureHTTPClient builds a transport that skips TLS verification.
// Only allowed in explicit development environments.
func insecureHTTPClient() (*http.Client, error) {
	if !isDevelopmentEnvironment() {
		return nil, fmt.Errorf("%w (set FABRIC_DEV_MODE=true)", fabric.ErrSkipTLSOnlyInDev)
	}

	return &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // #nosec G402 -- Protected by development environment check above
		},
	}, nil
}

// NewWithEndpoint creates a new client with just an API endpoint (no auth).
func NewWithEndpoint(endpoint string) (fabric.Client, error) {
	return New(&fabric.Config{
		APIEndpoint: endpoint,
	})
}

// NewWithToken creates a new client with an API endpoint and access token.
func NewWithToken(endpoint, token string) (fabric.Client, error) {
	return New(&fabric.Config{
		APIEndpoint: endpoint,
		AccessToken: token,
	})
}

// NewWithClientCredentials creates a new client using the OAuth2 client
// credentials grant against the given tenant.
func NewWithClientCredentials(endpoint, tenantID, clientID, clientSecret string) (fabric.Client, error) {
	return New(&fabric.Config{
		APIEndpoint:  endpoint,
		TenantID:     tenantID,
		ClientID:     clientID,
		ClientSecret: clientSecret,
	})
}

// NewWithUsernamePassword creates a new client using the OAuth2 password
// grant. Intended for tenants that still allow it; most setups should
// prefer client credentials.
func NewWithUsernamePassword(endpoint, tenantID, clientID, username, password string) (fabric.Client, error) {
	return New(&fabric.Config{
		APIEndpoint: endpoint,
		TenantID:    tenantID,
		ClientID:    clientID,
		Username:    username,
		Password:    password,
	})
}
