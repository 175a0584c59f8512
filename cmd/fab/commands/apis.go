package commands

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/fivetwenty-io/fabric/pkg/fabric"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewAPIsCommand creates the apis command group.
func NewAPIsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "apis",
		Aliases: []string{"endpoints"},
		Short:   "Manage Fabric API endpoints",
		Long:    "Add, list, delete, and target Fabric API endpoints",
	}

	cmd.AddCommand(newAPIsAddCommand())
	cmd.AddCommand(newAPIsListCommand())
	cmd.AddCommand(newAPIsDeleteCommand())
	cmd.AddCommand(newAPIsTargetCommand())

	return cmd
}

func newAPIsAddCommand() *cobra.Command {
	var skipSSLValidation bool

	cmd := &cobra.Command{
		Use:   "add NAME ENDPOINT",
		Short: "Add a new Fabric API endpoint",
		Long:  "Add a new Fabric API endpoint to the configuration",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			endpoint := args[1]

			normalizedEndpoint, err := normalizeEndpoint(endpoint)
			if err != nil {
				return fmt.Errorf("invalid endpoint: %w", err)
			}

			config := loadConfig()

			if config.APIs == nil {
				config.APIs = make(map[string]*APIConfig)
			}

			// Extract domain for use as key
			domain := extractDomainFromEndpoint(normalizedEndpoint)

			if _, exists := config.APIs[domain]; exists {
				return fmt.Errorf("API '%s' already exists for domain '%s'", name, domain)
			}

			config.APIs[domain] = &APIConfig{
				Endpoint:          normalizedEndpoint,
				SkipSSLValidation: skipSSLValidation,
			}

			// If this is the first API, make it current
			if config.CurrentAPI == "" {
				config.CurrentAPI = domain
				fmt.Printf("API '%s' (%s) added and set as current target\n", name, normalizedEndpoint)
			} else {
				fmt.Printf("API '%s' (%s) added\n", name, normalizedEndpoint)
			}

			if err := saveConfigStruct(config); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&skipSSLValidation, "skip-ssl-validation", false, "Skip SSL certificate validation")

	return cmd
}

func newAPIsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all Fabric API endpoints",
		Long:  "Display all configured Fabric API endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			if len(config.APIs) == 0 {
				fmt.Println("No APIs configured. Use 'fab apis add' to add one.")

				return nil
			}

			type APIInfo struct {
				Domain            string `json:"domain"              yaml:"domain"`
				Endpoint          string `json:"endpoint"            yaml:"endpoint"`
				Username          string `json:"username,omitempty"  yaml:"username,omitempty"`
				Workspace         string `json:"workspace,omitempty" yaml:"workspace,omitempty"`
				SkipSSLValidation bool   `json:"skip_ssl_validation" yaml:"skip_ssl_validation"`
				Current           bool   `json:"current"             yaml:"current"`
			}

			apis := make([]APIInfo, 0, len(config.APIs))
			for domain, apiConfig := range config.APIs {
				apis = append(apis, APIInfo{
					Domain:            domain,
					Endpoint:          apiConfig.Endpoint,
					Username:          apiConfig.Username,
					Workspace:         apiConfig.Workspace,
					SkipSSLValidation: apiConfig.SkipSSLValidation,
					Current:           domain == config.CurrentAPI,
				})
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				return StandardJSONRenderer(apis)
			case OutputFormatYAML:
				return StandardYAMLRenderer(apis)
			default:
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Domain", "Endpoint", "Username", "Workspace", "Current")

				for _, api := range apis {
					current := ""
					if api.Current {
						current = "*"
					}

					_ = table.Append(api.Domain, api.Endpoint, api.Username, api.Workspace, current)
				}

				_ = table.Render()
			}

			return nil
		},
	}
}

func newAPIsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete DOMAIN",
		Aliases: []string{"remove", "rm"},
		Short:   "Delete a Fabric API endpoint",
		Long:    "Remove a Fabric API endpoint from the configuration",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			domain := args[0]
			config := loadConfig()

			if _, exists := config.APIs[domain]; !exists {
				return fmt.Errorf("API '%s': %w. Use 'fab apis list' to see available APIs", domain, ErrAPINotFound)
			}

			delete(config.APIs, domain)

			// Reset the current target if it pointed at the deleted API
			if config.CurrentAPI == domain {
				config.CurrentAPI = ""
				for remaining := range config.APIs {
					config.CurrentAPI = remaining

					break
				}
			}

			if err := saveConfigStruct(config); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			fmt.Printf("API '%s' deleted\n", domain)

			return nil
		},
	}
}

func newAPIsTargetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "target DOMAIN",
		Short: "Set the current Fabric API endpoint",
		Long:  "Set the current Fabric API endpoint used by subsequent commands",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			domain := args[0]
			config := loadConfig()

			if _, exists := config.APIs[domain]; !exists {
				return fmt.Errorf("API '%s': %w. Use 'fab apis list' to see available APIs", domain, ErrAPINotFound)
			}

			config.CurrentAPI = domain

			if err := saveConfigStruct(config); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			fmt.Printf("API '%s' is now the current target\n", domain)

			return nil
		},
	}
}

// normalizeEndpoint validates and normalizes a Fabric API endpoint URL.
func normalizeEndpoint(endpoint string) (string, error) {
	// Add https:// if no protocol is specified
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	parsedURL, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	if parsedURL.Host == "" {
		return "", fabric.ErrNoHostInURL
	}

	// Remove trailing slash and path for consistency
	return fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host), nil
}
