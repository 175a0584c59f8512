package commands

import (
	"fmt"
	"sync"
	"time"
)

// ConfigPersister implements the auth.TokenPersister interface on top of
// the CLI config file.
type ConfigPersister struct {
	mutex sync.Mutex
}

// NewConfigPersister creates a new config persister.
func NewConfigPersister() *ConfigPersister {
	return &ConfigPersister{}
}

// UpdateToken updates the stored token and related metadata for the API
// whose endpoint matches.
func (p *ConfigPersister) UpdateToken(endpoint, accessToken string, expiresAt time.Time) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	config := loadConfig()

	apiConfig := findAPIConfigByEndpoint(config, endpoint)
	if apiConfig == nil {
		return fmt.Errorf("API configuration for '%s': %w", endpoint, ErrAPIConfigNotFound)
	}

	apiConfig.Token = accessToken
	if !expiresAt.IsZero() {
		apiConfig.TokenExpiresAt = &expiresAt
	}

	now := time.Now()
	apiConfig.LastRefreshed = &now

	return saveConfigStruct(config)
}

func findAPIConfigByEndpoint(config *Config, endpoint string) *APIConfig {
	for _, apiConfig := range config.APIs {
		if apiConfig.Endpoint == endpoint {
			return apiConfig
		}
	}

	return nil
}
