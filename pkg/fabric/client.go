package fabric

import (
	"context"
	"net/http"
	"time"
)

// WorkspacesClient provides workspace management operations.
type WorkspacesClient interface {
	// Create provisions a new workspace
	Create(ctx context.Context, request *CreateWorkspaceRequest) (*Workspace, error)

	// Get fetches a workspace by ID
	Get(ctx context.Context, workspaceID string) (*Workspace, error)

	// List returns a single page of workspaces
	List(ctx context.Context, params *QueryParams) (*ListResponse[Workspace], error)

	// ListAll walks every continuation page and returns all workspaces
	ListAll(ctx context.Context) ([]Workspace, error)

	// Update changes the display name or description of a workspace
	Update(ctx context.Context, workspaceID string, request *UpdateWorkspaceRequest) (*Workspace, error)

	// Delete removes a workspace
	Delete(ctx context.Context, workspaceID string) error

	// AssignToCapacity moves a workspace onto a capacity
	AssignToCapacity(ctx context.Context, workspaceID string, request *AssignWorkspaceToCapacityRequest) error

	// UnassignFromCapacity detaches a workspace from its capacity
	UnassignFromCapacity(ctx context.Context, workspaceID string) error
}

// ItemsClient provides item management operations within a workspace.
//
// Create, GetDefinition, and UpdateDefinition may complete asynchronously;
// they return pollers that resolve immediately when the service answered
// synchronously.
type ItemsClient interface {
	// Create provisions an item, asynchronously when the service decides so
	Create(ctx context.Context, workspaceID string, request *CreateItemRequest) (*Poller[Item], error)

	// Get fetches an item by ID
	Get(ctx context.Context, workspaceID, itemID string) (*Item, error)

	// List returns a single page of items
	List(ctx context.Context, workspaceID string, params *QueryParams) (*ListResponse[Item], error)

	// ListAll walks every continuation page and returns all items
	ListAll(ctx context.Context, workspaceID string) ([]Item, error)

	// Update changes the display name or description of an item
	Update(ctx context.Context, workspaceID, itemID string, request *UpdateItemRequest) (*Item, error)

	// Delete removes an item
	Delete(ctx context.Context, workspaceID, itemID string) error

	// GetDefinition fetches the definition parts of an item
	GetDefinition(ctx context.Context, workspaceID, itemID string, format string) (*Poller[ItemDefinitionResponse], error)

	// UpdateDefinition replaces the definition parts of an item
	UpdateDefinition(ctx context.Context, workspaceID, itemID string, request *UpdateItemDefinitionRequest) (*Poller[Empty], error)
}

// LakehousesClient provides lakehouse management operations.
type LakehousesClient interface {
	// Create provisions a lakehouse
	Create(ctx context.Context, workspaceID string, request *CreateLakehouseRequest) (*Poller[Lakehouse], error)

	// Get fetches a lakehouse by ID
	Get(ctx context.Context, workspaceID, lakehouseID string) (*Lakehouse, error)

	// List returns a single page of lakehouses
	List(ctx context.Context, workspaceID string, params *QueryParams) (*ListResponse[Lakehouse], error)

	// Update changes the display name or description of a lakehouse
	Update(ctx context.Context, workspaceID, lakehouseID string, request *UpdateLakehouseRequest) (*Lakehouse, error)

	// Delete removes a lakehouse
	Delete(ctx context.Context, workspaceID, lakehouseID string) error

	// ListTables returns a single page of tables in a lakehouse
	ListTables(ctx context.Context, workspaceID, lakehouseID string, params *QueryParams) (*ListResponse[Table], error)

	// LoadTable loads files into a lakehouse table
	LoadTable(ctx context.Context, workspaceID, lakehouseID, tableName string, request *LoadTableRequest) (*Poller[Empty], error)
}

// WarehousesClient provides warehouse management operations.
type WarehousesClient interface {
	// Create provisions a warehouse
	Create(ctx context.Context, workspaceID string, request *CreateWarehouseRequest) (*Poller[Warehouse], error)

	// Get fetches a warehouse by ID
	Get(ctx context.Context, workspaceID, warehouseID string) (*Warehouse, error)

	// List returns a single page of warehouses
	List(ctx context.Context, workspaceID string, params *QueryParams) (*ListResponse[Warehouse], error)

	// Update changes the display name or description of a warehouse
	Update(ctx context.Context, workspaceID, warehouseID string, request *UpdateWarehouseRequest) (*Warehouse, error)

	// Delete removes a warehouse
	Delete(ctx context.Context, workspaceID, warehouseID string) error
}

// SQLEndpointsClient provides SQL analytics endpoint operations.
type SQLEndpointsClient interface {
	// List returns a single page of SQL endpoints in a workspace
	List(ctx context.Context, workspaceID string, params *QueryParams) (*ListResponse[SQLEndpoint], error)

	// RefreshMetadata synchronizes endpoint metadata with the lakehouse
	RefreshMetadata(ctx context.Context, workspaceID, sqlEndpointID string) (*Poller[Empty], error)
}

// JobsClient provides item job scheduling and instance operations.
type JobsClient interface {
	// RunOnDemand starts a job for an item and returns the created instance
	RunOnDemand(ctx context.Context, workspaceID, itemID, jobType string, request *RunOnDemandJobRequest) (*JobInstance, error)

	// Get fetches a job instance
	Get(ctx context.Context, workspaceID, itemID, jobInstanceID string) (*JobInstance, error)

	// List returns a single page of job instances for an item
	List(ctx context.Context, workspaceID, itemID string, params *QueryParams) (*ListResponse[JobInstance], error)

	// Cancel requests cancellation of a job instance
	Cancel(ctx context.Context, workspaceID, itemID, jobInstanceID string) error

	// PollUntilComplete polls a job instance until it reaches a terminal status
	PollUntilComplete(ctx context.Context, workspaceID, itemID, jobInstanceID string) (*JobInstance, error)
}

// OperationsClient provides access to long-running operation state.
type OperationsClient interface {
	// Get fetches the state of an operation
	Get(ctx context.Context, operationID string) (*OperationState, error)

	// GetResult fetches the result payload of a succeeded operation
	GetResult(ctx context.Context, operationID string, result any) error
}

// CapacitiesClient provides read access to capacities.
type CapacitiesClient interface {
	// List returns a single page of capacities visible to the caller
	List(ctx context.Context, params *QueryParams) (*ListResponse[Capacity], error)
}

// ResourceClients provides access to all resource-specific clients.
type ResourceClients interface {
	Workspaces() WorkspacesClient
	Items() ItemsClient
	Lakehouses() LakehousesClient
	Warehouses() WarehousesClient
	SQLEndpoints() SQLEndpointsClient
	Jobs() JobsClient
	Operations() OperationsClient
	Capacities() CapacitiesClient
}

// RawClient exposes the untyped request path for endpoints that have no
// typed wrapper yet. Responses are returned as received, with no decoding
// beyond error classification.
type RawClient interface {
	Do(ctx context.Context, method, path string, body any, opts *CallOptions) (*RawResponse, error)
}

type Client interface {
	// Composite interfaces for related resource groups
	ResourceClients
	RawClient
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a fabric.Client.
//
// # Authentication precedence
//
// The following precedence is applied by the concrete client implementation
// (see pkg/fabricclient and internal/client):
//  1. AccessToken: if set, it is used directly as a static Bearer token until
//     its expiry.
//  2. ClientID/ClientSecret: uses the OAuth2 client_credentials grant against
//     the tenant's token endpoint. TenantID is required.
//  3. Username/Password: uses the OAuth2 password grant (delegated flows,
//     primarily for test tenants). TenantID and ClientID are required.
//  4. No credentials: requests are sent without authentication and the
//     service will reject them; useful only against local fakes.
//
// # Timeouts, retries, and TLS
//
// Per-request timeouts should generally be controlled via context passed to
// client methods. Retry behavior can be tuned via RetryMax/RetryWaitMin/
// RetryWaitMax; only throttled responses, server errors, and transport
// failures are ever retried. SkipTLSVerify is honored only when the
// environment variable FABRIC_DEV_MODE is set to "true" or "1"; do not use
// it in production.
type Config struct {
	// Required fields
	// APIEndpoint: base URL for the Fabric API
	// (e.g., "https://api.fabric.microsoft.com"). fabricclient.New
	// normalizes this value by trimming a trailing slash and adding
	// "https://" if no scheme is present.
	APIEndpoint string

	// Authentication options (provide one)
	// TenantID: AAD tenant the credentials belong to. Required for the
	// client_credentials and password grants.
	TenantID string
	// ClientID: application (client) ID for OAuth2 grants.
	ClientID string
	// ClientSecret: client secret used with ClientID for the
	// client_credentials grant.
	ClientSecret string
	// Username: account username for the OAuth2 password grant.
	Username string
	// Password: account password for the OAuth2 password grant.
	Password string
	// AccessToken: if set, used directly as a Bearer token. TokenExpiresAt
	// bounds its lifetime; a zero value means the token is trusted until
	// the service rejects it.
	AccessToken string
	// TokenExpiresAt: expiry of AccessToken, when known.
	TokenExpiresAt time.Time
	// AuthorityHost: AAD authority base URL. Defaults to the public cloud
	// authority when empty.
	AuthorityHost string
	// Scope: token audience requested for API calls. Defaults to the
	// public Fabric scope when empty.
	Scope string

	// Optional configurations
	// HTTPTimeout: default per-request timeout applied when the caller's
	// context carries no deadline. If 0, a sensible default is used.
	HTTPTimeout time.Duration
	// RetryMax: maximum number of retries for transient failures (5xx, 429,
	// and connection errors). If 0, a sensible default is used; set a
	// negative value to disable retries entirely.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries. Applied when retries
	// are enabled.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries, and the cap applied to
	// server Retry-After hints.
	RetryWaitMax time.Duration
	// Debug: enables verbose HTTP request/response logging when a Logger is
	// provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer and helpers.
	Logger Logger
	// SkipTLSVerify: if true, TLS verification is skipped, and only when
	// FABRIC_DEV_MODE is set. Intended for local development against fakes.
	SkipTLSVerify bool
	// UserAgent: overrides the default User-Agent header sent by the client.
	UserAgent string
	// HTTPClient: optional caller-owned http.Client. When set, the library
	// borrows it for connection pooling and never closes or mutates it.
	HTTPClient *http.Client

	// Cache: optional response cache for GET requests. See NewMemoryCache
	// and NewNATSKVCache.
	Cache Cache
	// CachePolicy: overrides the default caching policy when Cache is set.
	CachePolicy *CachingPolicy
	// CacheConfig: declarative alternative to Cache. When Cache is nil the
	// client builds the described backend during construction, and a nil
	// CachePolicy picks up the policy derived from it.
	CacheConfig *CacheConfig

	// Interceptors: optional chain run around every request. See
	// NewInterceptorChain.
	Interceptors *InterceptorChain
}
