//nolint:testpackage // Need access to internal types
package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigCommand(t *testing.T) {
	t.Parallel()

	cmd := NewConfigCommand()
	assert.Equal(t, "config", cmd.Use)
	assert.Equal(t, "Manage CLI configuration", cmd.Short)

	// Check subcommands are added
	subcommands := cmd.Commands()
	assert.Len(t, subcommands, 4)

	commandNames := make([]string, 0, len(subcommands))
	for _, subcmd := range subcommands {
		commandNames = append(commandNames, subcmd.Name())
	}

	assert.Contains(t, commandNames, "show")
	assert.Contains(t, commandNames, "set")
	assert.Contains(t, commandNames, "unset")
	assert.Contains(t, commandNames, "clear")
}

func TestParseAPIConfig(t *testing.T) {
	t.Parallel()

	apiMap := map[string]interface{}{
		"endpoint":            "https://api.fabric.microsoft.com",
		"token":               "test-token",
		"tenant_id":           "tenant-1",
		"client_id":           "client-1",
		"username":            "user@example.com",
		"workspace":           "Sales",
		"workspace_id":        "ws-123",
		"skip_ssl_validation": true,
		"token_expires_at":    "2024-06-01T12:00:00Z",
		"last_refreshed":      "2024-06-01T11:00:00Z",
	}

	apiConfig := parseAPIConfig(apiMap)
	assert.Equal(t, "https://api.fabric.microsoft.com", apiConfig.Endpoint)
	assert.Equal(t, "test-token", apiConfig.Token)
	assert.Equal(t, "tenant-1", apiConfig.TenantID)
	assert.Equal(t, "client-1", apiConfig.ClientID)
	assert.Equal(t, "user@example.com", apiConfig.Username)
	assert.Equal(t, "Sales", apiConfig.Workspace)
	assert.Equal(t, "ws-123", apiConfig.WorkspaceID)
	assert.True(t, apiConfig.SkipSSLValidation)

	require.NotNil(t, apiConfig.TokenExpiresAt)
	assert.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), apiConfig.TokenExpiresAt.UTC())
	require.NotNil(t, apiConfig.LastRefreshed)
	assert.Equal(t, time.Date(2024, 6, 1, 11, 0, 0, 0, time.UTC), apiConfig.LastRefreshed.UTC())
}

func TestParseAPIConfigIgnoresBadValues(t *testing.T) {
	t.Parallel()

	apiMap := map[string]interface{}{
		"endpoint":            42,
		"skip_ssl_validation": "yes",
		"token_expires_at":    "not-a-timestamp",
	}

	apiConfig := parseAPIConfig(apiMap)
	assert.Empty(t, apiConfig.Endpoint)
	assert.False(t, apiConfig.SkipSSLValidation)
	assert.Nil(t, apiConfig.TokenExpiresAt)
}

func TestExtractDomainFromEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		endpoint string
		want     string
	}{
		{
			name:     "https endpoint",
			endpoint: "https://api.fabric.microsoft.com",
			want:     "api.fabric.microsoft.com",
		},
		{
			name:     "http endpoint",
			endpoint: "http://api.fabric.microsoft.com",
			want:     "api.fabric.microsoft.com",
		},
		{
			name:     "endpoint with path",
			endpoint: "https://api.fabric.microsoft.com/v1/workspaces",
			want:     "api.fabric.microsoft.com",
		},
		{
			name:     "endpoint with port",
			endpoint: "https://localhost:8080",
			want:     "localhost",
		},
		{
			name:     "bare domain",
			endpoint: "api.fabric.microsoft.com",
			want:     "api.fabric.microsoft.com",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.want, extractDomainFromEndpoint(testCase.endpoint))
		})
	}
}

func TestParseBoolValue(t *testing.T) {
	t.Parallel()

	assert.True(t, parseBoolValue("true"))
	assert.True(t, parseBoolValue("1"))
	assert.False(t, parseBoolValue("false"))
	assert.False(t, parseBoolValue("0"))
	assert.False(t, parseBoolValue("yes"))
	assert.False(t, parseBoolValue(""))
}

func TestSetAPIConfigValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		key   string
		value string
		check func(t *testing.T, apiConfig *APIConfig)
	}{
		{
			name:  "endpoint",
			key:   "endpoint",
			value: "https://api.fabric.microsoft.com",
			check: func(t *testing.T, apiConfig *APIConfig) {
				t.Helper()
				assert.Equal(t, "https://api.fabric.microsoft.com", apiConfig.Endpoint)
			},
		},
		{
			name:  "tenant_id",
			key:   "tenant_id",
			value: "tenant-1",
			check: func(t *testing.T, apiConfig *APIConfig) {
				t.Helper()
				assert.Equal(t, "tenant-1", apiConfig.TenantID)
			},
		},
		{
			name:  "workspace_id",
			key:   "workspace_id",
			value: "ws-123",
			check: func(t *testing.T, apiConfig *APIConfig) {
				t.Helper()
				assert.Equal(t, "ws-123", apiConfig.WorkspaceID)
			},
		},
		{
			name:  "skip_ssl_validation",
			key:   "skip_ssl_validation",
			value: "true",
			check: func(t *testing.T, apiConfig *APIConfig) {
				t.Helper()
				assert.True(t, apiConfig.SkipSSLValidation)
			},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			apiConfig := &APIConfig{}
			require.NoError(t, setAPIConfigValue(apiConfig, testCase.key, testCase.value))
			testCase.check(t, apiConfig)
		})
	}
}

func TestSetAPIConfigValueUnknownKey(t *testing.T) {
	t.Parallel()

	err := setAPIConfigValue(&APIConfig{}, "favorite_color", "blue")
	require.ErrorIs(t, err, ErrUnknownConfigKey)
}
