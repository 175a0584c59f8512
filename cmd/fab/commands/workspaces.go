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

// NewWorkspacesCommand creates the workspaces command group.
func NewWorkspacesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workspaces",
		Aliases: []string{"workspace", "ws"},
		Short:   "Manage workspaces",
		Long:    "List, create, update, and delete Fabric workspaces",
	}

	cmd.AddCommand(newWorkspacesListCommand())
	cmd.AddCommand(newWorkspacesGetCommand())
	cmd.AddCommand(newWorkspacesCreateCommand())
	cmd.AddCommand(newWorkspacesUpdateCommand())
	cmd.AddCommand(newWorkspacesDeleteCommand())
	cmd.AddCommand(newWorkspacesAssignCapacityCommand())
	cmd.AddCommand(newWorkspacesUnassignCapacityCommand())

	return cmd
}

func newWorkspacesListCommand() *cobra.Command {
	var allPages bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List workspaces",
		Long:  "List all workspaces visible to the caller",
		RunE: func(cmd *cobra.Command, args []string) error {
			fabricClient, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			var workspaces []fabric.Workspace

			if allPages {
				workspaces, err = fabricClient.Workspaces().ListAll(ctx)
				if err != nil {
					return fmt.Errorf("failed to list workspaces: %w", err)
				}
			} else {
				page, err := fabricClient.Workspaces().List(ctx, fabric.NewQueryParams())
				if err != nil {
					return fmt.Errorf("failed to list workspaces: %w", err)
				}

				workspaces = page.Value
			}

			return outputWorkspaces(workspaces)
		},
	}

	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")

	return cmd
}

func outputWorkspaces(workspaces []fabric.Workspace) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(workspaces)
	case OutputFormatYAML:
		return StandardYAMLRenderer(workspaces)
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("ID", "Name", "Type", "Capacity")

		for _, workspace := range workspaces {
			capacity := workspace.CapacityID
			if capacity == "" {
				capacity = NotAvailable
			}

			_ = table.Append(workspace.ID, workspace.DisplayName, string(workspace.Type), capacity)
		}

		_ = table.Render()
	}

	return nil
}

func newWorkspacesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get WORKSPACE_NAME_OR_ID",
		Short: "Get workspace details",
		Long:  "Display detailed information about a specific workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fabricClient, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			workspace, err := findWorkspaceByNameOrID(ctx, fabricClient, args[0])
			if err != nil {
				return err
			}

			return outputWorkspaceDetails(workspace)
		},
	}
}

func outputWorkspaceDetails(workspace *fabric.Workspace) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(workspace)
	case OutputFormatYAML:
		return StandardYAMLRenderer(workspace)
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Property", "Value")

		_ = table.Append("ID", workspace.ID)
		_ = table.Append("Name", workspace.DisplayName)

		if workspace.Description != "" {
			_ = table.Append("Description", workspace.Description)
		}

		if workspace.Type != "" {
			_ = table.Append("Type", string(workspace.Type))
		}

		if workspace.CapacityID != "" {
			_ = table.Append("Capacity", workspace.CapacityID)
		}

		if workspace.CapacityAssignmentProgress != "" {
			_ = table.Append("Capacity Assignment", workspace.CapacityAssignmentProgress)
		}

		if workspace.OneLakeEndpoints != nil {
			_ = table.Append("Blob Endpoint", workspace.OneLakeEndpoints.BlobEndpoint)
			_ = table.Append("DFS Endpoint", workspace.OneLakeEndpoints.DfsEndpoint)
		}

		_ = table.Render()
	}

	return nil
}

func newWorkspacesCreateCommand() *cobra.Command {
	var (
		description string
		capacityID  string
	)

	cmd := &cobra.Command{
		Use:   "create WORKSPACE_NAME",
		Short: "Create a workspace",
		Long:  "Create a new Fabric workspace, optionally assigned to a capacity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fabricClient, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			workspace, err := fabricClient.Workspaces().Create(ctx, &fabric.CreateWorkspaceRequest{
				DisplayName: args[0],
				Description: description,
				CapacityID:  capacityID,
			})
			if err != nil {
				return fmt.Errorf("failed to create workspace: %w", err)
			}

			fmt.Printf("Workspace '%s' created (ID: %s)\n", workspace.DisplayName, workspace.ID)

			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "workspace description")
	cmd.Flags().StringVar(&capacityID, "capacity", "", "capacity ID to assign at creation")

	return cmd
}

func newWorkspacesUpdateCommand() *cobra.Command {
	var (
		newName     string
		description string
	)

	cmd := &cobra.Command{
		Use:   "update WORKSPACE_NAME_OR_ID",
		Short: "Update a workspace",
		Long:  "Update the display name or description of a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fabricClient, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			workspace, err := findWorkspaceByNameOrID(ctx, fabricClient, args[0])
			if err != nil {
				return err
			}

			request := &fabric.UpdateWorkspaceRequest{}
			if cmd.Flags().Changed("name") {
				request.DisplayName = &newName
			}

			if cmd.Flags().Changed("description") {
				request.Description = &description
			}

			updated, err := fabricClient.Workspaces().Update(ctx, workspace.ID, request)
			if err != nil {
				return fmt.Errorf("failed to update workspace: %w", err)
			}

			fmt.Printf("Workspace '%s' updated\n", updated.DisplayName)

			return nil
		},
	}

	cmd.Flags().StringVar(&newName, "name", "", "new display name")
	cmd.Flags().StringVar(&description, "description", "", "new description")

	return cmd
}

func newWorkspacesDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete WORKSPACE_NAME_OR_ID",
		Aliases: []string{"remove", "rm"},
		Short:   "Delete a workspace",
		Long:    "Delete a workspace and everything in it",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fabricClient, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			workspace, err := findWorkspaceByNameOrID(ctx, fabricClient, args[0])
			if err != nil {
				return err
			}

			err = fabricClient.Workspaces().Delete(ctx, workspace.ID)
			if err != nil {
				return fmt.Errorf("failed to delete workspace: %w", err)
			}

			fmt.Printf("Workspace '%s' deleted\n", workspace.DisplayName)

			return nil
		},
	}
}

func newWorkspacesAssignCapacityCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "assign-capacity WORKSPACE_NAME_OR_ID CAPACITY_ID",
		Short: "Assign a workspace to a capacity",
		Long:  "Move a workspace onto the given capacity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fabricClient, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			workspace, err := findWorkspaceByNameOrID(ctx, fabricClient, args[0])
			if err != nil {
				return err
			}

			err = fabricClient.Workspaces().AssignToCapacity(ctx, workspace.ID, &fabric.AssignWorkspaceToCapacityRequest{
				CapacityID: args[1],
			})
			if err != nil {
				return fmt.Errorf("failed to assign workspace to capacity: %w", err)
			}

			fmt.Printf("Workspace '%s' assigned to capacity %s\n", workspace.DisplayName, args[1])

			return nil
		},
	}
}

func newWorkspacesUnassignCapacityCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unassign-capacity WORKSPACE_NAME_OR_ID",
		Short: "Unassign a workspace from its capacity",
		Long:  "Detach a workspace from the capacity it is currently assigned to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fabricClient, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			workspace, err := findWorkspaceByNameOrID(ctx, fabricClient, args[0])
			if err != nil {
				return err
			}

			err = fabricClient.Workspaces().UnassignFromCapacity(ctx, workspace.ID)
			if err != nil {
				return fmt.Errorf("failed to unassign workspace from capacity: %w", err)
			}

			fmt.Printf("Workspace '%s' unassigned from its capacity\n", workspace.DisplayName)

			return nil
		},
	}
}
