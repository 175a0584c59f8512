package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/fabric/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration.
type Config struct {
	// Multi-API configuration
	APIs       map[string]*APIConfig `json:"apis,omitempty"        yaml:"apis,omitempty"`
	CurrentAPI string                `json:"current_api,omitempty" yaml:"current_api,omitempty"`

	// Global settings
	Output  string `json:"output"   yaml:"output"`
	NoColor bool   `json:"no_color" yaml:"no_color"`
}

// APIConfig represents configuration for a single Fabric API endpoint.
type APIConfig struct {
	Endpoint          string     `json:"endpoint"                   yaml:"endpoint"`
	Token             string     `json:"token,omitempty"            yaml:"token,omitempty"`
	TokenExpiresAt    *time.Time `json:"token_expires_at,omitempty" yaml:"token_expires_at,omitempty"`
	LastRefreshed     *time.Time `json:"last_refreshed,omitempty"   yaml:"last_refreshed,omitempty"`
	TenantID          string     `json:"tenant_id,omitempty"        yaml:"tenant_id,omitempty"`
	ClientID          string     `json:"client_id,omitempty"        yaml:"client_id,omitempty"`
	Username          string     `json:"username,omitempty"         yaml:"username,omitempty"`
	Workspace         string     `json:"workspace,omitempty"        yaml:"workspace,omitempty"`
	WorkspaceID       string     `json:"workspace_id,omitempty"     yaml:"workspace_id,omitempty"`
	SkipSSLValidation bool       `json:"skip_ssl_validation"        yaml:"skip_ssl_validation"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage fab CLI configuration including API endpoints and settings",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())
	cmd.AddCommand(newConfigClearCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	var apiFlag string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration (global or API-specific)",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			// If --api flag is provided, show only that API's configuration
			if apiFlag != "" {
				return showAPISpecificConfig(config, apiFlag)
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				return StandardJSONRenderer(config)
			case OutputFormatYAML:
				return StandardYAMLRenderer(config)
			default:
				return displayConfigTable(config)
			}
		},
	}

	cmd.Flags().StringVar(&apiFlag, "api", "", "show configuration for specific API")

	return cmd
}

func newConfigSetCommand() *cobra.Command {
	var apiFlag string

	cmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a specific configuration value (global or API-specific)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]

			config := loadConfig()

			// If --api flag is provided, set API-specific configuration
			if apiFlag != "" {
				return setAPISpecificConfig(config, apiFlag, key, value)
			}

			// Otherwise set global configuration
			return setGlobalConfig(config, key, value)
		},
	}

	cmd.Flags().StringVar(&apiFlag, "api", "", "target specific API for configuration")

	return cmd
}

func newConfigUnsetCommand() *cobra.Command {
	var apiFlag string

	cmd := &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a specific configuration value (global or API-specific)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			config := loadConfig()

			// If --api flag is provided, unset API-specific configuration
			if apiFlag != "" {
				return unsetAPISpecificConfig(config, apiFlag, key)
			}

			// Otherwise unset global configuration
			return unsetGlobalConfig(config, key)
		},
	}

	cmd.Flags().StringVar(&apiFlag, "api", "", "target specific API for configuration")

	return cmd
}

func newConfigClearCommand() *cobra.Command {
	var apiFlag string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear configuration",
		Long:  "Remove all configuration settings (global or API-specific)",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			// If --api flag is provided, clear only that API's configuration
			if apiFlag != "" {
				return clearAPISpecificConfig(config, apiFlag)
			}

			// Otherwise clear all configuration
			configFile := viper.ConfigFileUsed()
			if configFile == "" {
				home, _ := os.UserHomeDir()
				configFile = filepath.Join(home, ".fabric", "config.yml")
			}

			err := os.Remove(configFile)
			if err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove config file: %w", err)
			}

			fmt.Println("Cleared all configuration")

			return nil
		},
	}

	cmd.Flags().StringVar(&apiFlag, "api", "", "clear configuration for specific API only")

	return cmd
}

func loadConfig() *Config {
	config := &Config{
		Output:  viper.GetString("output"),
		NoColor: viper.GetBool("no_color"),
		APIs:    make(map[string]*APIConfig),
	}

	loadAPIConfigurations(config)

	return config
}

// loadAPIConfigurations loads multi-API configuration from viper.
func loadAPIConfigurations(config *Config) {
	config.CurrentAPI = viper.GetString("current_api")

	apisRaw := viper.GetStringMap("apis")
	if apisRaw == nil {
		return
	}

	for domain, apiRaw := range apisRaw {
		if apiMap, ok := apiRaw.(map[string]interface{}); ok {
			config.APIs[domain] = parseAPIConfig(apiMap)
		}
	}
}

// parseAPIConfig parses API configuration from a map.
func parseAPIConfig(apiMap map[string]interface{}) *APIConfig {
	apiConfig := &APIConfig{}

	parseAPIStringFields(apiConfig, apiMap)
	parseAPITimestampFields(apiConfig, apiMap)

	if skipSSL, ok := apiMap["skip_ssl_validation"].(bool); ok {
		apiConfig.SkipSSLValidation = skipSSL
	}

	return apiConfig
}

// parseAPIStringFields parses string-valued API configuration fields.
func parseAPIStringFields(apiConfig *APIConfig, apiMap map[string]interface{}) {
	stringFields := map[string]*string{
		"endpoint":     &apiConfig.Endpoint,
		"token":        &apiConfig.Token,
		"tenant_id":    &apiConfig.TenantID,
		"client_id":    &apiConfig.ClientID,
		"username":     &apiConfig.Username,
		"workspace":    &apiConfig.Workspace,
		"workspace_id": &apiConfig.WorkspaceID,
	}

	for key, field := range stringFields {
		if value, ok := apiMap[key].(string); ok {
			*field = value
		}
	}
}

// parseAPITimestampFields parses timestamp fields in API configuration.
func parseAPITimestampFields(apiConfig *APIConfig, apiMap map[string]interface{}) {
	if tokenExpiresAtStr, ok := apiMap["token_expires_at"].(string); ok && tokenExpiresAtStr != "" {
		t, err := time.Parse(time.RFC3339, tokenExpiresAtStr)
		if err == nil {
			apiConfig.TokenExpiresAt = &t
		}
	}

	if lastRefreshedStr, ok := apiMap["last_refreshed"].(string); ok && lastRefreshedStr != "" {
		t, err := time.Parse(time.RFC3339, lastRefreshedStr)
		if err == nil {
			apiConfig.LastRefreshed = &t
		}
	}
}

func saveConfigStruct(config *Config) error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}

		configDir := filepath.Join(home, ".fabric")

		err = os.MkdirAll(configDir, constants.ConfigDirPerm)
		if err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		configFile = filepath.Join(configDir, "config.yml")
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// extractDomainFromEndpoint extracts the domain portion from an API endpoint.
func extractDomainFromEndpoint(endpoint string) string {
	// Remove protocol if present
	domain := endpoint
	if strings.HasPrefix(domain, "https://") {
		domain = strings.TrimPrefix(domain, "https://")
	} else if strings.HasPrefix(domain, "http://") {
		domain = strings.TrimPrefix(domain, "http://")
	}

	// Remove path if present
	if idx := strings.Index(domain, "/"); idx != -1 {
		domain = domain[:idx]
	}

	// Remove port if present
	if idx := strings.Index(domain, ":"); idx != -1 {
		domain = domain[:idx]
	}

	return domain
}

// getCurrentAPIConfig returns the configuration for the currently targeted API.
func getCurrentAPIConfig() (*APIConfig, error) {
	config := loadConfig()

	if config.CurrentAPI == "" {
		if len(config.APIs) == 0 {
			return nil, fmt.Errorf("%w, use 'fab apis add' to add one", ErrNoAPIsConfigured)
		}
		// If no current API set but APIs exist, use the first one
		for domain := range config.APIs {
			config.CurrentAPI = domain

			break
		}
	}

	apiConfig, exists := config.APIs[config.CurrentAPI]
	if !exists {
		return nil, fmt.Errorf("%w in configuration: '%s'", ErrCurrentAPINotFound, config.CurrentAPI)
	}

	return apiConfig, nil
}

// getAPIConfigByFlag returns API config based on command line flag or current API.
func getAPIConfigByFlag(apiFlag string) (*APIConfig, error) {
	config := loadConfig()

	// If --api flag is provided, use that specific API
	if apiFlag != "" {
		// Check if the flag is a short name in our config
		if apiConfig, exists := config.APIs[apiFlag]; exists {
			return apiConfig, nil
		}

		resolvedEndpoint, err := ResolveAPIEndpoint(apiFlag)
		if err != nil {
			return nil, err
		}

		// Otherwise look for it by resolved endpoint
		for _, apiConfig := range config.APIs {
			if apiConfig.Endpoint == resolvedEndpoint {
				return apiConfig, nil
			}
		}

		return nil, fmt.Errorf("%w in configuration, use 'fab apis list' to see available APIs: '%s'", ErrAPINotFound, apiFlag)
	}

	// Otherwise use current API
	return getCurrentAPIConfig()
}

// ResolveAPIEndpoint resolves a short name or returns the endpoint if it's already a URL.
func ResolveAPIEndpoint(apiNameOrEndpoint string) (string, error) {
	if apiNameOrEndpoint == "" {
		return "", ErrAPINameOrEndpointRequired
	}

	config := loadConfig()

	// Check if it's a short name in the APIs map
	if apiConfig, exists := config.APIs[apiNameOrEndpoint]; exists {
		return apiConfig.Endpoint, nil
	}

	// If not found in config, treat as direct endpoint URL
	return apiNameOrEndpoint, nil
}

// setGlobalConfig sets a global configuration value.
func setGlobalConfig(config *Config, key, value string) error {
	switch key {
	case "output":
		config.Output = value
	case "no_color":
		config.NoColor = parseBoolValue(value)
	default:
		return fmt.Errorf("%w: %s. Use --api flag for API-specific settings", ErrUnknownConfigKey, key)
	}

	err := saveConfigStruct(config)
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("Set global %s to '%s'\n", key, value)

	return nil
}

// setAPISpecificConfig sets configuration for a specific API.
func setAPISpecificConfig(config *Config, apiDomain, key, value string) error {
	apiConfig, exists := config.APIs[apiDomain]
	if !exists {
		return fmt.Errorf("%w. Use 'fab apis list' to see available APIs: '%s'", ErrAPINotFound, apiDomain)
	}

	err := setAPIConfigValue(apiConfig, key, value)
	if err != nil {
		return err
	}

	config.APIs[apiDomain] = apiConfig

	err = saveConfigStruct(config)
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("Set %s to '%s' for API '%s'\n", key, value, apiDomain)

	return nil
}

// setAPIConfigValue sets a specific configuration value for an API.
func setAPIConfigValue(apiConfig *APIConfig, key, value string) error {
	handlers := map[string]func(*APIConfig, string){
		"endpoint":            func(c *APIConfig, v string) { c.Endpoint = v },
		"tenant_id":           func(c *APIConfig, v string) { c.TenantID = v },
		"client_id":           func(c *APIConfig, v string) { c.ClientID = v },
		"username":            func(c *APIConfig, v string) { c.Username = v },
		"workspace":           func(c *APIConfig, v string) { c.Workspace = v },
		"workspace_id":        func(c *APIConfig, v string) { c.WorkspaceID = v },
		"skip_ssl_validation": func(c *APIConfig, v string) { c.SkipSSLValidation = parseBoolValue(v) },
	}

	handler, exists := handlers[key]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownConfigKey, key)
	}

	handler(apiConfig, value)

	return nil
}

// parseBoolValue parses a boolean value from string.
func parseBoolValue(value string) bool {
	return value == "true" || value == "1"
}

// unsetGlobalConfig unsets a global configuration value.
func unsetGlobalConfig(config *Config, key string) error {
	switch key {
	case "output":
		config.Output = "table"
	case "no_color":
		config.NoColor = false
	default:
		return fmt.Errorf("%w: %s. Use --api flag for API-specific settings", ErrUnknownConfigKey, key)
	}

	err := saveConfigStruct(config)
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("Unset global %s\n", key)

	return nil
}

// unsetAPISpecificConfig unsets configuration for a specific API.
func unsetAPISpecificConfig(config *Config, apiDomain, key string) error {
	apiConfig, exists := config.APIs[apiDomain]
	if !exists {
		return fmt.Errorf("API '%s': %w. Use 'fab apis list' to see available APIs", apiDomain, ErrAPINotFound)
	}

	switch key {
	case "tenant_id":
		apiConfig.TenantID = ""
	case "client_id":
		apiConfig.ClientID = ""
	case "username":
		apiConfig.Username = ""
	case "workspace":
		apiConfig.Workspace = ""
	case "workspace_id":
		apiConfig.WorkspaceID = ""
	case "skip_ssl_validation":
		apiConfig.SkipSSLValidation = false
	// Token fields should not be unset via config command for security
	case "token":
		return fmt.Errorf("%w. Use 'fab logout' instead", ErrTokenFieldsCannotUnset)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownConfigKey, key)
	}

	config.APIs[apiDomain] = apiConfig

	err := saveConfigStruct(config)
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("Unset %s for API '%s'\n", key, apiDomain)

	return nil
}

// showAPISpecificConfig shows configuration for a specific API.
func showAPISpecificConfig(config *Config, apiDomain string) error {
	apiConfig, exists := config.APIs[apiDomain]
	if !exists {
		return fmt.Errorf("API '%s': %w. Use 'fab apis list' to see available APIs", apiDomain, ErrAPINotFound)
	}

	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(apiConfig)
	case OutputFormatYAML:
		return StandardYAMLRenderer(apiConfig)
	default:
		return displayAPIConfigTable(apiDomain, apiConfig, config.CurrentAPI)
	}
}

// clearAPISpecificConfig clears configuration for a specific API.
func clearAPISpecificConfig(config *Config, apiDomain string) error {
	apiConfig, exists := config.APIs[apiDomain]
	if !exists {
		return fmt.Errorf("API '%s': %w. Use 'fab apis list' to see available APIs", apiDomain, ErrAPINotFound)
	}

	// Clear all configuration except the endpoint
	apiConfig.Token = ""
	apiConfig.TokenExpiresAt = nil
	apiConfig.LastRefreshed = nil
	apiConfig.TenantID = ""
	apiConfig.ClientID = ""
	apiConfig.Username = ""
	apiConfig.Workspace = ""
	apiConfig.WorkspaceID = ""
	apiConfig.SkipSSLValidation = false

	config.APIs[apiDomain] = apiConfig

	err := saveConfigStruct(config)
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("Cleared configuration for API '%s'\n", apiDomain)

	return nil
}

// displayConfigTable displays configuration in a table format.
func displayConfigTable(config *Config) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	_ = table.Append("Output", config.Output)
	_ = table.Append("No Color", strconv.FormatBool(config.NoColor))

	if config.CurrentAPI != "" {
		_ = table.Append("Current API", config.CurrentAPI)
	}

	_, _ = os.Stdout.WriteString("Global Configuration:\n")

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return displayAPIsTable(config)
}

func displayAPIsTable(config *Config) error {
	if len(config.APIs) == 0 {
		_, _ = os.Stdout.WriteString("\nNo APIs configured. Use 'fab apis add' to add one.\n")

		return nil
	}

	_, _ = os.Stdout.WriteString("\nConfigured APIs:\n")

	apiTable := tablewriter.NewWriter(os.Stdout)
	apiTable.Header("Domain", "Endpoint", "Username", "Workspace", "Current")

	for domain, apiConfig := range config.APIs {
		current := ""
		if domain == config.CurrentAPI {
			current = "*"
		}

		_ = apiTable.Append(domain, apiConfig.Endpoint, apiConfig.Username, apiConfig.Workspace, current)
	}

	err := apiTable.Render()
	if err != nil {
		return fmt.Errorf("failed to render API config table: %w", err)
	}

	return nil
}

func displayAPIConfigTable(apiDomain string, apiConfig *APIConfig, currentAPI string) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	_ = table.Append("Domain", apiDomain)
	_ = table.Append("Endpoint", apiConfig.Endpoint)
	_ = table.Append("Current", strconv.FormatBool(apiDomain == currentAPI))

	if apiConfig.TenantID != "" {
		_ = table.Append("Tenant ID", apiConfig.TenantID)
	}

	if apiConfig.ClientID != "" {
		_ = table.Append("Client ID", apiConfig.ClientID)
	}

	if apiConfig.Username != "" {
		_ = table.Append("Username", apiConfig.Username)
	}

	if apiConfig.Workspace != "" {
		_ = table.Append("Workspace", apiConfig.Workspace)
	}

	if apiConfig.Token != "" {
		_ = table.Append("Token", Masked)
	}

	if apiConfig.TokenExpiresAt != nil {
		_ = table.Append("Token Expires", apiConfig.TokenExpiresAt.Format(time.RFC3339))
	}

	_ = table.Append("Skip SSL Validation", strconv.FormatBool(apiConfig.SkipSSLValidation))

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}
