package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// TargetInfo represents the current target information.
type TargetInfo struct {
	API       string `json:"api,omitempty"       yaml:"api,omitempty"`
	Endpoint  string `json:"endpoint,omitempty"  yaml:"endpoint,omitempty"`
	User      string `json:"user,omitempty"      yaml:"user,omitempty"`
	Workspace string `json:"workspace,omitempty" yaml:"workspace,omitempty"`
}

// NewTargetCommand creates the target command.
func NewTargetCommand() *cobra.Command {
	var workspaceName string

	cmd := &cobra.Command{
		Use:   "target",
		Short: "Set or show the targeted workspace",
		Long:  "Set or display the currently targeted Fabric workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			// If no flags provided, show current target
			if workspaceName == "" {
				return showTarget()
			}

			fabricClient, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			config := loadConfig()

			apiConfig, err := getCurrentAPIConfig()
			if err != nil {
				return err
			}

			workspace, err := findWorkspaceByNameOrID(ctx, fabricClient, workspaceName)
			if err != nil {
				return err
			}

			apiConfig.Workspace = workspace.DisplayName
			apiConfig.WorkspaceID = workspace.ID
			_, _ = fmt.Fprintf(os.Stdout, "Targeted workspace: %s\n", workspace.DisplayName)

			config.APIs[config.CurrentAPI] = apiConfig

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&workspaceName, "workspace", "w", "", "target workspace (name or ID)")

	return cmd
}

func showTarget() error {
	config := loadConfig()

	if config.CurrentAPI == "" || len(config.APIs) == 0 {
		_, _ = os.Stdout.WriteString("No API targeted. Use 'fab apis add' to add an API endpoint.\n")

		return nil
	}

	apiConfig, exists := config.APIs[config.CurrentAPI]
	if !exists {
		_, _ = fmt.Fprintf(os.Stdout, "Current API '%s' not found in configuration.\n", config.CurrentAPI)

		return nil
	}

	targetInfo := TargetInfo{
		API:      config.CurrentAPI,
		Endpoint: apiConfig.Endpoint,
	}

	if apiConfig.Username != "" {
		targetInfo.User = apiConfig.Username
	}

	if apiConfig.Workspace != "" {
		targetInfo.Workspace = apiConfig.Workspace
	}

	return outputTargetInfo(targetInfo)
}

func outputTargetInfo(targetInfo TargetInfo) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(targetInfo)
	case OutputFormatYAML:
		return StandardYAMLRenderer(targetInfo)
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Property", "Value")

		_ = table.Append("API", targetInfo.API)
		_ = table.Append("Endpoint", targetInfo.Endpoint)

		if targetInfo.User != "" {
			_ = table.Append("User", targetInfo.User)
		}

		if targetInfo.Workspace != "" {
			_ = table.Append("Workspace", targetInfo.Workspace)
		}

		_ = table.Render()
	}

	return nil
}
