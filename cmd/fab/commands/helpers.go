package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fivetwenty-io/fabric/internal/auth"
	"github.com/fivetwenty-io/fabric/internal/client"
	"github.com/fivetwenty-io/fabric/internal/constants"
	fabrichttp "github.com/fivetwenty-io/fabric/internal/http"
	"github.com/fivetwenty-io/fabric/pkg/fabric"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Common string constants used throughout the commands package.
const (
	NotAvailable = "N/A"

	// Output formats.
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"

	// JSON formatting.
	defaultJSONIndent = 2

	// Common values.
	Masked = "***"
)

// Common static errors used throughout the commands package.
var (
	ErrAPINotFound                 = errors.New("API not found")
	ErrAPIConfigNotFound           = errors.New("API configuration not found")
	ErrNoAPIsConfigured            = errors.New("no APIs configured")
	ErrCurrentAPINotFound          = errors.New("current API not found")
	ErrNoAPIEndpointConfigured     = errors.New("no API endpoint configured")
	ErrAPINameOrEndpointRequired   = errors.New("API name or endpoint is required")
	ErrAPIEndpointRequired         = errors.New("API endpoint is required")
	ErrNotAuthenticated            = errors.New("not authenticated")
	ErrUnknownConfigKey            = errors.New("unknown configuration key")
	ErrTokenFieldsCannotUnset      = errors.New("token fields cannot be unset via config")
	ErrWorkspaceNotFound           = errors.New("workspace not found")
	ErrWorkspaceRequired           = errors.New("workspace is required (use --workspace or target a workspace)")
	ErrItemNotFound                = errors.New("item not found")
	ErrLakehouseNotFound           = errors.New("lakehouse not found")
	ErrWarehouseNotFound           = errors.New("warehouse not found")
	ErrCapacityNotFound            = errors.New("capacity not found")
	ErrInvalidDefinitionFile       = errors.New("definition file carries no parts")
	ErrTenantAndClientIDRequired   = errors.New("tenant ID and client ID are required")
	ErrUsernameAndPasswordRequired = errors.New("username and password are required")
)

// CreateClientWithAPI creates a Fabric client using the specified API or
// the current API from the configuration.
func CreateClientWithAPI(apiFlag string) (fabric.Client, error) {
	apiConfig, err := prepareClientConfig(apiFlag)
	if err != nil {
		return nil, err
	}

	tokens, err := createTokenManager(apiConfig)
	if err != nil {
		return nil, err
	}

	return createFinalClient(buildFabricConfig(apiConfig), tokens)
}

func prepareClientConfig(apiFlag string) (*APIConfig, error) {
	apiConfig, err := getAPIConfigByFlag(apiFlag)
	if err != nil {
		return nil, err
	}

	if apiConfig.Endpoint == "" {
		return nil, fmt.Errorf("%w, use 'fab apis add' first", ErrNoAPIEndpointConfigured)
	}

	return apiConfig, nil
}

// createTokenManager picks the CLI's credential source, in order: an
// explicit --token flag, a client secret from the environment paired with
// the stored client ID, then the token saved by a previous login. The
// returned provider persists refreshed tokens back into the config file.
func createTokenManager(apiConfig *APIConfig) (fabrichttp.TokenProvider, error) {
	credential := selectCredential(apiConfig)
	if credential == nil {
		return nil, nil
	}

	manager, err := auth.NewTokenManager(credential)
	if err != nil {
		return nil, fmt.Errorf("failed to create token manager: %w", err)
	}

	return auth.NewPersistingTokenManager(
		manager,
		NewConfigPersister(),
		apiConfig.Endpoint,
		constants.DefaultScope,
		apiConfig.Token,
		tokenExpiry(apiConfig),
	), nil
}

func selectCredential(apiConfig *APIConfig) auth.Credential {
	if token := viper.GetString("token"); token != "" {
		return auth.NewStaticTokenCredential(token, tokenExpiry(apiConfig))
	}

	if secret := viper.GetString("client_secret"); secret != "" && apiConfig.ClientID != "" {
		return auth.NewClientSecretCredential(apiConfig.TenantID, apiConfig.ClientID, secret)
	}

	if apiConfig.Token != "" {
		return auth.NewStaticTokenCredential(apiConfig.Token, tokenExpiry(apiConfig))
	}

	return nil
}

func tokenExpiry(apiConfig *APIConfig) time.Time {
	if apiConfig.TokenExpiresAt != nil {
		return *apiConfig.TokenExpiresAt
	}

	return time.Time{}
}

func buildFabricConfig(apiConfig *APIConfig) *fabric.Config {
	config := &fabric.Config{
		APIEndpoint:   apiConfig.Endpoint,
		TenantID:      apiConfig.TenantID,
		ClientID:      apiConfig.ClientID,
		SkipTLSVerify: apiConfig.SkipSSLValidation,
	}

	if viper.GetBool("verbose") {
		config.Debug = true
		config.Logger = newSlogLogger()
	}

	return config
}

func createFinalClient(config *fabric.Config, tokens fabrichttp.TokenProvider) (fabric.Client, error) {
	if tokens == nil {
		return nil, fmt.Errorf("%w, use 'fab login' first", ErrNotAuthenticated)
	}

	fabricClient, err := client.NewWithTokenManager(config, tokens)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return fabricClient, nil
}

// resolveWorkspace turns a --workspace flag value, or the targeted
// workspace when the flag is empty, into a concrete workspace.
func resolveWorkspace(ctx context.Context, fabricClient fabric.Client, nameOrID string) (*fabric.Workspace, error) {
	if nameOrID == "" {
		apiConfig, err := getCurrentAPIConfig()
		if err != nil {
			return nil, err
		}

		if apiConfig.WorkspaceID == "" {
			return nil, ErrWorkspaceRequired
		}

		nameOrID = apiConfig.WorkspaceID
	}

	return findWorkspaceByNameOrID(ctx, fabricClient, nameOrID)
}

// findWorkspaceByNameOrID tries the argument as an ID first and falls
// back to matching display names across all pages.
func findWorkspaceByNameOrID(ctx context.Context, fabricClient fabric.Client, nameOrID string) (*fabric.Workspace, error) {
	workspace, err := fabricClient.Workspaces().Get(ctx, nameOrID)
	if err == nil {
		return workspace, nil
	}

	workspaces, err := fabricClient.Workspaces().ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}

	for i := range workspaces {
		if workspaces[i].DisplayName == nameOrID {
			return &workspaces[i], nil
		}
	}

	return nil, fmt.Errorf("workspace '%s': %w", nameOrID, ErrWorkspaceNotFound)
}

// findItemByNameOrID tries the argument as an ID first and falls back to
// matching display names across all pages of the workspace.
func findItemByNameOrID(ctx context.Context, fabricClient fabric.Client, workspaceID, nameOrID string) (*fabric.Item, error) {
	item, err := fabricClient.Items().Get(ctx, workspaceID, nameOrID)
	if err == nil {
		return item, nil
	}

	items, err := fabricClient.Items().ListAll(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	for i := range items {
		if items[i].DisplayName == nameOrID {
			return &items[i], nil
		}
	}

	return nil, fmt.Errorf("item '%s': %w", nameOrID, ErrItemNotFound)
}

// StandardJSONRenderer creates a standard JSON encoder.
func StandardJSONRenderer[T any](data T) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to JSON: %w", err)
	}

	return nil
}

// StandardYAMLRenderer creates a standard YAML encoder.
func StandardYAMLRenderer[T any](data T) error {
	encoder := yaml.NewEncoder(os.Stdout)
	encoder.SetIndent(defaultJSONIndent)

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to YAML: %w", err)
	}

	return nil
}
