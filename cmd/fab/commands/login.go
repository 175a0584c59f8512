package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/fivetwenty-io/fabric/internal/auth"
	"github.com/fivetwenty-io/fabric/internal/client"
	"github.com/fivetwenty-io/fabric/internal/constants"
	"github.com/fivetwenty-io/fabric/pkg/fabric"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		apiEndpoint  string
		tenantID     string
		clientID     string
		clientSecret string
		username     string
		password     string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to Microsoft Fabric",
		Long:  "Authenticate against Azure AD and verify access to a Fabric API endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Get API endpoint
			originalInput := apiEndpoint
			if apiEndpoint == "" {
				apiEndpoint = viper.GetString("api")
				originalInput = apiEndpoint
			}

			// If still no API endpoint, try to use current API from config
			if apiEndpoint == "" {
				config := loadConfig()
				if config.CurrentAPI != "" {
					if _, exists := config.APIs[config.CurrentAPI]; exists {
						apiEndpoint = config.CurrentAPI
						originalInput = config.CurrentAPI
					}
				}
			}

			if apiEndpoint == "" {
				reader := bufio.NewReader(os.Stdin)
				fmt.Print("API endpoint (or short name): ")
				apiEndpoint, _ = reader.ReadString('\n')
				apiEndpoint = strings.TrimSpace(apiEndpoint)
				originalInput = apiEndpoint
			}

			if apiEndpoint == "" {
				return ErrAPIEndpointRequired
			}

			// Resolve short name to endpoint if applicable
			resolvedEndpoint, err := ResolveAPIEndpoint(apiEndpoint)
			if err != nil {
				return err
			}
			apiEndpoint = resolvedEndpoint

			credential, err := buildLoginCredential(tenantID, clientID, clientSecret, &username, &password)
			if err != nil {
				return err
			}

			manager, err := auth.NewTokenManager(credential)
			if err != nil {
				return fmt.Errorf("failed to create token manager: %w", err)
			}

			normalizedEndpoint, err := normalizeEndpoint(apiEndpoint)
			if err != nil {
				return fmt.Errorf("invalid API endpoint: %w", err)
			}

			skipSSL := viper.GetBool("skip_ssl_validation")

			ctx := context.Background()

			// Mint a token up front so failures surface before anything
			// is written to the config file.
			token, err := manager.GetToken(ctx, constants.DefaultScope)
			if err != nil {
				return fmt.Errorf("failed to authenticate: %w", err)
			}

			fabricClient, err := client.NewWithTokenManager(&fabric.Config{
				APIEndpoint:   normalizedEndpoint,
				SkipTLSVerify: skipSSL,
			}, manager)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			// Verify the token actually works against the API
			workspaces, err := fabricClient.Workspaces().List(ctx, fabric.NewQueryParams().WithMaxResults(5))
			if err != nil {
				return fmt.Errorf("failed to connect to API: %w", err)
			}

			configKey := resolveConfigKey(originalInput, normalizedEndpoint)

			configStruct := loadConfig()
			if configStruct.APIs == nil {
				configStruct.APIs = make(map[string]*APIConfig)
			}

			apiConfig, exists := configStruct.APIs[configKey]
			if !exists {
				apiConfig = &APIConfig{
					Endpoint: normalizedEndpoint,
				}
				configStruct.APIs[configKey] = apiConfig
			}

			// Store authentication information (tokens only, never secrets)
			apiConfig.TenantID = tenantID
			apiConfig.ClientID = clientID
			apiConfig.Username = username
			apiConfig.SkipSSLValidation = skipSSL
			apiConfig.Token = token

			if expiry := manager.Expiry(constants.DefaultScope); !expiry.IsZero() {
				apiConfig.TokenExpiresAt = &expiry
			}

			// Set as current API if this is the first one or no current API is set
			if configStruct.CurrentAPI == "" || len(configStruct.APIs) == 1 {
				configStruct.CurrentAPI = configKey
			}

			if err := saveConfigStruct(configStruct); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			fmt.Printf("Successfully logged in to %s\n", normalizedEndpoint)

			if len(configStruct.APIs) == 1 {
				fmt.Printf("API '%s' set as current target\n", configKey)
			}

			if len(workspaces.Value) > 0 {
				fmt.Println("\nAvailable workspaces:")

				for _, workspace := range workspaces.Value {
					fmt.Printf("  - %s\n", workspace.DisplayName)
				}

				fmt.Println("\nUse 'fab target -w <workspace>' to target a workspace")
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&apiEndpoint, "api", "a", "", "API endpoint URL or short name from config")
	cmd.Flags().StringVar(&tenantID, "tenant", "", "Azure AD tenant ID")
	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth2 client (application) ID")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth2 client secret")
	cmd.Flags().StringVarP(&username, "username", "u", "", "username for authentication")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password for authentication")

	return cmd
}

// buildLoginCredential selects the credential from the provided flags,
// prompting for missing username/password input.
func buildLoginCredential(tenantID, clientID, clientSecret string, username, password *string) (auth.Credential, error) {
	if clientID != "" && clientSecret != "" {
		// Client credentials flow
		if tenantID == "" {
			return nil, ErrTenantAndClientIDRequired
		}

		return auth.NewClientSecretCredential(tenantID, clientID, clientSecret), nil
	}

	// Username/password flow
	if *username == "" {
		reader := bufio.NewReader(os.Stdin)
		fmt.Print("Username: ")
		input, _ := reader.ReadString('\n')
		*username = strings.TrimSpace(input)
	}

	if *password == "" {
		fmt.Print("Password: ")

		bytePassword, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return nil, fmt.Errorf("failed to read password: %w", err)
		}

		*password = string(bytePassword)

		fmt.Println()
	}

	if *username == "" || *password == "" {
		return nil, ErrUsernameAndPasswordRequired
	}

	if tenantID == "" || clientID == "" {
		return nil, ErrTenantAndClientIDRequired
	}

	return auth.NewUsernamePasswordCredential(tenantID, clientID, *username, *password), nil
}

// resolveConfigKey preserves a short name the user already configured,
// otherwise keys the API by its domain.
func resolveConfigKey(originalInput, normalizedEndpoint string) string {
	currentConfig := loadConfig()
	if _, exists := currentConfig.APIs[originalInput]; exists {
		return originalInput
	}

	return extractDomainFromEndpoint(normalizedEndpoint)
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout from Microsoft Fabric",
		Long:  "Clear stored credentials for the current API endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			if config.CurrentAPI == "" || len(config.APIs) == 0 {
				fmt.Println("No API targeted, nothing to do")

				return nil
			}

			apiConfig, exists := config.APIs[config.CurrentAPI]
			if !exists {
				return fmt.Errorf("%w in configuration: '%s'", ErrCurrentAPINotFound, config.CurrentAPI)
			}

			apiConfig.Token = ""
			apiConfig.TokenExpiresAt = nil
			apiConfig.LastRefreshed = nil
			apiConfig.Username = ""

			if err := saveConfigStruct(config); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			fmt.Println("Successfully logged out")

			return nil
		},
	}
}
