package constants

import "time"

// API endpoint defaults.
const (
	// DefaultAPIEndpoint is the public Fabric API endpoint.
	DefaultAPIEndpoint = "https://api.fabric.microsoft.com"

	// APIVersionPath is the versioned path prefix for all API routes.
	APIVersionPath = "/v1"

	// DefaultAuthorityHost is the AAD authority used to mint tokens.
	DefaultAuthorityHost = "https://login.microsoftonline.com"

	// DefaultScope is the token audience requested when none is configured.
	DefaultScope = "https://api.fabric.microsoft.com/.default"
)

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ExtendedHTTPTimeout is used for longer operations.
	ExtendedHTTPTimeout = 45 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry tuning.
const (
	// DefaultRetryMax is the default maximum number of retries after the
	// initial attempt.
	DefaultRetryMax = 4

	// LowRetryMax is used for operations that should retry fewer times.
	LowRetryMax = 2

	// DefaultRetryWaitMin is the floor for computed backoff waits.
	DefaultRetryWaitMin = 500 * time.Millisecond

	// DefaultRetryWaitMax caps computed backoff and Retry-After hints.
	DefaultRetryWaitMax = 30 * time.Second
)

// Token lifetime handling.
const (
	// TokenRefreshMargin is how long before expiry a cached token is
	// considered stale and refreshed.
	TokenRefreshMargin = 5 * time.Minute

	// TokenClockSkew absorbs clock drift between client and issuer when
	// interpreting expiry timestamps from static tokens.
	TokenClockSkew = 30 * time.Second
)

// Long-running operation polling.
const (
	// DefaultPollInterval is the cadence between operation status polls.
	DefaultPollInterval = 2 * time.Second

	// MaxPollInterval caps server-provided Retry-After hints between polls.
	MaxPollInterval = 30 * time.Second

	// DefaultOperationTimeout bounds PollUntilComplete style waits.
	DefaultOperationTimeout = 10 * time.Minute

	// DefaultJobPollTimeout bounds job-instance completion waits.
	DefaultJobPollTimeout = 30 * time.Minute
)

// Pagination limits.
const (
	// DefaultMaxResults is the page size requested when none is set.
	DefaultMaxResults = 100

	// MaxPages guards eager aggregation against runaway continuation loops.
	MaxPages = 1000

	// StreamBufferSize is the channel buffer used when streaming pages.
	StreamBufferSize = 10
)

// Concurrency and batching limits.
const (
	// DefaultConcurrencyLimit limits concurrent batch operations.
	DefaultConcurrencyLimit = 3

	// MaxWorkers is the ceiling for batch worker pools.
	MaxWorkers = 10
)

// Response cache sizing.
const (
	// DefaultCacheSize is the default entry limit for the memory cache.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is the default cache time-to-live.
	DefaultCacheTTL = 5 * time.Minute

	// CacheMinTTL is the minimum cache time-to-live.
	CacheMinTTL = 30 * time.Second

	// MaxCacheValueSize is the maximum size for cached values (1MB).
	MaxCacheValueSize = 1024 * 1024
)

// Circuit breaker tuning.
const (
	// CircuitBreakerThreshold is the consecutive-failure count that opens
	// the breaker.
	CircuitBreakerThreshold = 5

	// CircuitBreakerTimeout is how long the breaker stays open before
	// probing again.
	CircuitBreakerTimeout = 30 * time.Second
)

// Header names used on every request.
const (
	// HeaderClientRequestID carries the caller-generated correlation id.
	HeaderClientRequestID = "x-ms-client-request-id"

	// HeaderOperationID carries the server-assigned operation id on 202s.
	HeaderOperationID = "x-ms-operation-id"

	// HeaderRetryAfter is the standard retry hint header.
	HeaderRetryAfter = "Retry-After"
)

// Output format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for tabular output format.
	FormatTable = "table"
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// JSONIndentSize is the number of spaces for JSON indentation.
	JSONIndentSize = 2

	// DescriptionDisplayLength is the default length for displaying descriptions.
	DescriptionDisplayLength = 60
)
