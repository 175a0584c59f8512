package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/fivetwenty-io/fabric/internal/auth"
	"github.com/fivetwenty-io/fabric/internal/constants"
	"github.com/fivetwenty-io/fabric/internal/http"
	"github.com/fivetwenty-io/fabric/pkg/fabric"
)

// Static errors for err113 compliance.
var (
	ErrNoTokenManagerConfigured = errors.New("no token manager configured")
)

// Client implements the fabric.Client interface.
type Client struct {
	httpClient *http.Client
	tokens     http.TokenProvider
	baseURL    string
	scope      string
	logger     fabric.Logger

	// Resource clients
	workspaces   *WorkspacesClient
	items        *ItemsClient
	lakehouses   *LakehousesClient
	warehouses   *WarehousesClient
	sqlEndpoints *SQLEndpointsClient
	jobs         *JobsClient
	operations   *OperationsClient
	capacities   *CapacitiesClient
}

// createCredential selects the credential implied by the configured
// secrets, in documented precedence order.
func createCredential(config *fabric.Config) auth.Credential {
	if config.AccessToken != "" {
		return auth.NewStaticTokenCredential(config.AccessToken, config.TokenExpiresAt)
	}

	if config.ClientID != "" && config.ClientSecret != "" {
		credential := auth.NewClientSecretCredential(config.TenantID, config.ClientID, config.ClientSecret)
		credential.AuthorityHost = config.AuthorityHost
		credential.HTTPClient = config.HTTPClient

		return credential
	}

	if config.Username != "" && config.Password != "" {
		credential := auth.NewUsernamePasswordCredential(config.TenantID, config.ClientID, config.Username, config.Password)
		credential.AuthorityHost = config.AuthorityHost
		credential.HTTPClient = config.HTTPClient

		return credential
	}

	return nil // No authentication
}

// createTokenProvider wires the credential into a caching token manager.
// A nil provider sends requests unauthenticated, which is useful only
// against local fakes.
func createTokenProvider(config *fabric.Config) (http.TokenProvider, error) {
	credential := createCredential(config)
	if credential == nil {
		return nil, nil
	}

	manager, err := auth.NewTokenManager(credential)
	if err != nil {
		return nil, fmt.Errorf("creating token manager: %w", err)
	}

	return manager, nil
}

// resolveCache picks the response cache for the client. An explicit Cache
// wins; otherwise a declarative CacheConfig is materialized together with
// its derived policy.
func resolveCache(config *fabric.Config) (fabric.Cache, *fabric.CachingPolicy, error) {
	if config.Cache != nil {
		return config.Cache, config.CachePolicy, nil
	}

	if config.CacheConfig == nil {
		return nil, nil, nil
	}

	cache, policy, err := config.CacheConfig.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("building cache from config: %w", err)
	}

	if config.CachePolicy != nil {
		policy = config.CachePolicy
	}

	return cache, policy, nil
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *fabric.Config) ([]http.Option, error) {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.Scope != "" {
		httpOpts = append(httpOpts, http.WithScope(config.Scope))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.HTTPClient != nil {
		httpOpts = append(httpOpts, http.WithHTTPClient(config.HTTPClient))
	}

	cache, policy, err := resolveCache(config)
	if err != nil {
		return nil, err
	}

	if cache != nil {
		httpOpts = append(httpOpts, http.WithCache(cache, policy))
	}

	if config.Interceptors != nil {
		httpOpts = append(httpOpts, http.WithInterceptors(config.Interceptors))
	}

	if config.RetryMax != 0 || config.RetryWaitMin > 0 || config.RetryWaitMax > 0 {
		retryMax := config.RetryMax
		if retryMax < 0 {
			retryMax = 0 // negative disables retries
		} else if retryMax == 0 {
			retryMax = constants.DefaultRetryMax
		}

		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(retryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts, nil
}

// New creates a new Fabric API client from the configured credentials.
func New(config *fabric.Config) (*Client, error) {
	if config == nil {
		return nil, fabric.ErrConfigRequired
	}

	if config.APIEndpoint == "" {
		return nil, fabric.ErrAPIEndpointRequired
	}

	tokens, err := createTokenProvider(config)
	if err != nil {
		return nil, err
	}

	return newWithTokens(config, tokens)
}

// NewWithTokenManager creates a client around a caller-supplied token
// provider, bypassing credential selection. The CLI uses this to serve
// tokens from its config store and persist refreshed ones.
func NewWithTokenManager(config *fabric.Config, tokens http.TokenProvider) (*Client, error) {
	if config == nil {
		return nil, fabric.ErrConfigRequired
	}

	if config.APIEndpoint == "" {
		return nil, fabric.ErrAPIEndpointRequired
	}

	return newWithTokens(config, tokens)
}

func newWithTokens(config *fabric.Config, tokens http.TokenProvider) (*Client, error) {
	scope := config.Scope
	if scope == "" {
		scope = constants.DefaultScope
	}

	httpOpts, err := createHTTPClientOptions(config)
	if err != nil {
		return nil, err
	}

	client := &Client{
		httpClient: http.NewClient(config.APIEndpoint, tokens, httpOpts...),
		tokens:     tokens,
		baseURL:    config.APIEndpoint,
		scope:      scope,
		logger:     config.Logger,
	}

	client.initializeResourceClients()

	return client, nil
}

// GetToken returns the current access token from the token provider.
func (c *Client) GetToken(ctx context.Context) (string, error) {
	if c.tokens == nil {
		return "", ErrNoTokenManagerConfigured
	}

	token, err := c.tokens.GetToken(ctx, c.scope)
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}

	return token, nil
}

// Resource client accessors

// Workspaces implements fabric.Client.Workspaces.
func (c *Client) Workspaces() fabric.WorkspacesClient {
	return c.workspaces
}

// Items implements fabric.Client.Items.
func (c *Client) Items() fabric.ItemsClient {
	return c.items
}

// Lakehouses implements fabric.Client.Lakehouses.
func (c *Client) Lakehouses() fabric.LakehousesClient {
	return c.lakehouses
}

// Warehouses implements fabric.Client.Warehouses.
func (c *Client) Warehouses() fabric.WarehousesClient {
	return c.warehouses
}

// SQLEndpoints implements fabric.Client.SQLEndpoints.
func (c *Client) SQLEndpoints() fabric.SQLEndpointsClient {
	return c.sqlEndpoints
}

// Jobs implements fabric.Client.Jobs.
func (c *Client) Jobs() fabric.JobsClient {
	return c.jobs
}

// Operations implements fabric.Client.Operations.
func (c *Client) Operations() fabric.OperationsClient {
	return c.operations
}

// Capacities implements fabric.Client.Capacities.
func (c *Client) Capacities() fabric.CapacitiesClient {
	return c.capacities
}

// initializeResourceClients initializes all resource-specific clients.
// The operations client is shared by every client that hands out
// pollers.
func (c *Client) initializeResourceClients() {
	c.operations = NewOperationsClient(c.httpClient)
	c.workspaces = NewWorkspacesClient(c.httpClient)
	c.items = NewItemsClient(c.httpClient, c.operations)
	c.lakehouses = NewLakehousesClient(c.httpClient, c.operations)
	c.warehouses = NewWarehousesClient(c.httpClient, c.operations)
	c.sqlEndpoints = NewSQLEndpointsClient(c.httpClient, c.operations)
	c.jobs = NewJobsClient(c.httpClient)
	c.capacities = NewCapacitiesClient(c.httpClient)
}
