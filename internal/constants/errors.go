package constants

import "errors"

// Configuration and authentication errors.
var (
	ErrNoEndpointConfigured = errors.New("no API endpoint configured, use 'fab config set endpoint <url>' or --endpoint")
	ErrNoCredentials        = errors.New("no credentials configured, run 'fab login' or set an access token")
	ErrNoTenantConfigured   = errors.New("no tenant configured, use 'fab login --tenant <id>'")
	ErrTokenExpired         = errors.New("stored access token is expired, run 'fab login' again")
	ErrSSLOnlyInDev         = errors.New("skipping TLS verification is only allowed in development environments (set FABRIC_DEV_MODE=true)")
	ErrNotAuthenticated     = errors.New("not authenticated, run 'fab login' first")
)

// Pipeline misuse errors.
var (
	ErrMissingLocationHeader = errors.New("accepted response carried no Location header")
	ErrMissingOperationID    = errors.New("accepted response carried no operation id")
	ErrPollerAlreadyStarted  = errors.New("poller has already been consumed")
	ErrNilCredential         = errors.New("credential must not be nil")
	ErrEmptyScope            = errors.New("token scope must not be empty")
)

// Request validation errors.
var (
	ErrWorkspaceIDRequired = errors.New("workspace ID is required")
	ErrItemIDRequired      = errors.New("item ID is required")
	ErrJobTypeRequired     = errors.New("job type is required")
	ErrDisplayNameRequired = errors.New("display name is required")
	ErrNilRequestBody      = errors.New("request body must not be nil")
)

// Batch operation errors.
var (
	ErrUnsupportedResource  = errors.New("unsupported resource type")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrInvalidWorkspaceData = errors.New("invalid workspace data for operation")
	ErrInvalidItemData      = errors.New("invalid item data for operation")
	ErrResourceIDRequired   = errors.New("resource ID required for this operation")
)

// Cache errors.
var (
	ErrCacheKeyNotFound  = errors.New("key not found")
	ErrCacheEntryExpired = errors.New("entry expired")
	ErrCacheValueTooBig  = errors.New("value exceeds maximum cache entry size")
)

// File system errors.
var (
	ErrNotRegularFile             = errors.New("path is not a regular file")
	ErrDirectoryTraversalDetected = errors.New("directory traversal detected in file path")
)
