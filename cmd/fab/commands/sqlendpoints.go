package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/fivetwenty-io/fabric/pkg/fabric"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewSQLEndpointsCommand creates the sql-endpoints command group.
func NewSQLEndpointsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sql-endpoints",
		Aliases: []string{"sql-endpoint", "sqle"},
		Short:   "Manage SQL analytics endpoints",
		Long:    "List SQL analytics endpoints and refresh their metadata",
	}

	cmd.AddCommand(newSQLEndpointsListCommand())
	cmd.AddCommand(newSQLEndpointsRefreshCommand())

	return cmd
}

func newSQLEndpointsListCommand() *cobra.Command {
	var workspaceFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List SQL endpoints",
		Long:  "List SQL analytics endpoints in a workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			fabricClient, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			workspace, err := resolveWorkspace(ctx, fabricClient, workspaceFlag)
			if err != nil {
				return err
			}

			endpoints, err := fabricClient.SQLEndpoints().List(ctx, workspace.ID, fabric.NewQueryParams())
			if err != nil {
				return fmt.Errorf("failed to list SQL endpoints: %w", err)
			}

			return outputSQLEndpoints(endpoints.Value)
		},
	}

	cmd.Flags().StringVarP(&workspaceFlag, "workspace", "w", "", "workspace name or ID")

	return cmd
}

func outputSQLEndpoints(endpoints []fabric.SQLEndpoint) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(endpoints)
	case OutputFormatYAML:
		return StandardYAMLRenderer(endpoints)
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("ID", "Name", "Description")

		for _, endpoint := range endpoints {
			_ = table.Append(endpoint.ID, endpoint.DisplayName, endpoint.Description)
		}

		_ = table.Render()
	}

	return nil
}

func newSQLEndpointsRefreshCommand() *cobra.Command {
	var workspaceFlag string

	cmd := &cobra.Command{
		Use:   "refresh-metadata SQL_ENDPOINT_ID",
		Short: "Refresh SQL endpoint metadata",
		Long:  "Synchronize a SQL endpoint's metadata with its lakehouse and wait for completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fabricClient, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			workspace, err := resolveWorkspace(ctx, fabricClient, workspaceFlag)
			if err != nil {
				return err
			}

			poller, err := fabricClient.SQLEndpoints().RefreshMetadata(ctx, workspace.ID, args[0])
			if err != nil {
				return fmt.Errorf("failed to refresh SQL endpoint metadata: %w", err)
			}

			if _, err := poller.PollUntilDone(ctx); err != nil {
				return fmt.Errorf("metadata refresh failed: %w", err)
			}

			fmt.Printf("Metadata of SQL endpoint %s refreshed\n", args[0])

			return nil
		},
	}

	cmd.Flags().StringVarP(&workspaceFlag, "workspace", "w", "", "workspace name or ID")

	return cmd
}
