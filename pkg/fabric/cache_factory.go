package fabric

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fivetwenty-io/fabric/internal/constants"
)

// CacheBackend selects the storage behind a declaratively configured cache.
type CacheBackend string

const (
	// CacheBackendMemory keeps entries in an in-process LRU map.
	CacheBackendMemory CacheBackend = "memory"

	// CacheBackendNATS stores entries in a NATS JetStream KV bucket so
	// several client processes share one cache.
	CacheBackendNATS CacheBackend = "nats"

	// CacheBackendNone disables caching while keeping the cache plumbing in
	// place.
	CacheBackendNone CacheBackend = "none"
)

// Static errors for err113 compliance.
var (
	ErrUnknownCacheBackend   = errors.New("unknown cache backend")
	ErrCacheDisabled         = errors.New("cache disabled")
	ErrKeyNotFoundInAnyCache = errors.New("key not found in any cache")
)

// CacheConfig describes a response cache declaratively. Set it on
// Config.CacheConfig and the client builds the backend and its caching
// policy during construction; an explicitly supplied Config.Cache wins.
type CacheConfig struct {
	// Backend selects the storage. Empty defaults to CacheBackendMemory.
	Backend CacheBackend

	// MaxEntries bounds the memory backend (and the local layer in front of
	// NATS). Zero or negative means DefaultCacheSize.
	MaxEntries int

	// TTL is the lifetime applied to cached responses. Zero means
	// DefaultCacheTTL; values below CacheMinTTL are raised to it.
	TTL time.Duration

	// NATS carries the connection details for CacheBackendNATS.
	NATS *NATSKVConfig

	// LocalLayer fronts the NATS backend with a memory cache so repeat
	// lookups skip the network. Ignored for other backends.
	LocalLayer bool

	// Policy overrides the derived caching policy. Nil selects
	// DefaultCachingPolicy with this config's TTL, which caches GET
	// responses and excludes the operation and job status paths that
	// pollers watch.
	Policy *CachingPolicy
}

// DefaultCacheConfig returns a memory-backed cache configuration with the
// library defaults.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Backend:    CacheBackendMemory,
		MaxEntries: constants.DefaultCacheSize,
		TTL:        constants.DefaultCacheTTL,
	}
}

// EffectiveTTL resolves the configured TTL against the library bounds.
func (c *CacheConfig) EffectiveTTL() time.Duration {
	switch {
	case c.TTL <= 0:
		return constants.DefaultCacheTTL
	case c.TTL < constants.CacheMinTTL:
		return constants.CacheMinTTL
	default:
		return c.TTL
	}
}

// Build materializes the configured backend together with the caching
// policy the client should apply to it.
func (c *CacheConfig) Build() (Cache, *CachingPolicy, error) {
	backend := c.Backend
	if backend == "" {
		backend = CacheBackendMemory
	}

	policy := c.Policy
	if policy == nil {
		policy = DefaultCachingPolicy()
		policy.TTL = c.EffectiveTTL()
	}

	switch backend {
	case CacheBackendMemory:
		return NewMemoryCache(c.MaxEntries), policy, nil

	case CacheBackendNATS:
		shared, err := NewNATSKVCache(c.NATS)
		if err != nil {
			return nil, nil, fmt.Errorf("building NATS cache: %w", err)
		}

		if c.LocalLayer {
			return NewCacheChain(NewMemoryCache(c.MaxEntries), shared), policy, nil
		}

		return shared, policy, nil

	case CacheBackendNone:
		return NewNoOpCache(), policy, nil

	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownCacheBackend, backend)
	}
}

// NoOpCache satisfies Cache without storing anything. CacheManager falls
// back to it when constructed without a backend.
type NoOpCache struct{}

// NewNoOpCache creates a cache that never stores anything.
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// Get reports every key as absent.
func (c *NoOpCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	return nil, ErrCacheDisabled
}

// Set discards the entry.
func (c *NoOpCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	return nil
}

// Delete is a no-op.
func (c *NoOpCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Clear is a no-op.
func (c *NoOpCache) Clear(ctx context.Context) error {
	return nil
}

// Has always reports false.
func (c *NoOpCache) Has(ctx context.Context, key string) bool {
	return false
}

// CacheChain reads through an ordered list of caches, typically a local
// memory layer in front of a shared NATS bucket. Hits found in a later
// layer are promoted into the layers in front of it.
type CacheChain struct {
	layers []Cache
}

// NewCacheChain creates a read-through chain over the given caches, fastest
// first.
func NewCacheChain(layers ...Cache) *CacheChain {
	return &CacheChain{layers: layers}
}

// Get returns the first hit across the chain, promoting it forward.
func (c *CacheChain) Get(ctx context.Context, key string) (*CacheEntry, error) {
	for i, layer := range c.layers {
		entry, err := layer.Get(ctx, key)
		if err != nil {
			continue
		}

		c.promote(ctx, key, entry, i)

		return entry, nil
	}

	return nil, ErrKeyNotFoundInAnyCache
}

// promote copies a hit from layer i into every faster layer. Promotion
// failures are ignored; the entry was already served.
func (c *CacheChain) promote(ctx context.Context, key string, entry *CacheEntry, i int) {
	for _, layer := range c.layers[:i] {
		_ = layer.Set(ctx, key, entry)
	}
}

// Set writes the entry to every layer, reporting all failures together.
func (c *CacheChain) Set(ctx context.Context, key string, entry *CacheEntry) error {
	var errs []error

	for _, layer := range c.layers {
		if err := layer.Set(ctx, key, entry); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Delete removes the key from every layer.
func (c *CacheChain) Delete(ctx context.Context, key string) error {
	var errs []error

	for _, layer := range c.layers {
		if err := layer.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Clear empties every layer.
func (c *CacheChain) Clear(ctx context.Context) error {
	var errs []error

	for _, layer := range c.layers {
		if err := layer.Clear(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Has reports whether any layer holds the key.
func (c *CacheChain) Has(ctx context.Context, key string) bool {
	for _, layer := range c.layers {
		if layer.Has(ctx, key) {
			return true
		}
	}

	return false
}
