package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fivetwenty-io/fabric/pkg/fabric"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewWarehousesCommand creates the warehouses command group.
func NewWarehousesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "warehouses",
		Aliases: []string{"warehouse", "wh"},
		Short:   "Manage warehouses",
		Long:    "List, create, update, and delete Fabric warehouses",
	}

	cmd.AddCommand(newWarehousesListCommand())
	cmd.AddCommand(newWarehousesGetCommand())
	cmd.AddCommand(newWarehousesCreateCommand())
	cmd.AddCommand(newWarehousesUpdateCommand())
	cmd.AddCommand(newWarehousesDeleteCommand())

	return cmd
}

// findWarehouseByNameOrID tries the argument as an ID first and falls
// back to matching display names.
func findWarehouseByNameOrID(ctx context.Context, fabricClient fabric.Client, workspaceID, nameOrID string) (*fabric.Warehouse, error) {
	warehouse, err := fabricClient.Warehouses().Get(ctx, workspaceID, nameOrID)
	if err == nil {
		return warehouse, nil
	}

	page, err := fabricClient.Warehouses().List(ctx, workspaceID, fabric.NewQueryParams())
	if err != nil {
		return nil, fmt.Errorf("failed to list warehouses: %w", err)
	}

	for i := range page.Value {
		if page.Value[i].DisplayName == nameOrID {
			return &page.Value[i], nil
		}
	}

	return nil, fmt.Errorf("warehouse '%s': %w", nameOrID, ErrWarehouseNotFound)
}

func newWarehousesListCommand() *cobra.Command {
	var workspaceFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List warehouses",
		Long:  "List warehouses in a workspace",
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

			warehouses, err := fabricClient.Warehouses().List(ctx, workspace.ID, fabric.NewQueryParams())
			if err != nil {
				return fmt.Errorf("failed to list warehouses: %w", err)
			}

			return outputWarehouses(warehouses.Value)
		},
	}

	cmd.Flags().StringVarP(&workspaceFlag, "workspace", "w", "", "workspace name or ID")

	return cmd
}

func outputWarehouses(warehouses []fabric.Warehouse) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(warehouses)
	case OutputFormatYAML:
		return StandardYAMLRenderer(warehouses)
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("ID", "Name", "Description")

		for _, warehouse := range warehouses {
			_ = table.Append(warehouse.ID, warehouse.DisplayName, warehouse.Description)
		}

		_ = table.Render()
	}

	return nil
}

func newWarehousesGetCommand() *cobra.Command {
	var workspaceFlag string

	cmd := &cobra.Command{
		Use:   "get WAREHOUSE_NAME_OR_ID",
		Short: "Get warehouse details",
		Long:  "Display detailed information about a specific warehouse",
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

			warehouse, err := findWarehouseByNameOrID(ctx, fabricClient, workspace.ID, args[0])
			if err != nil {
				return err
			}

			return outputWarehouseDetails(warehouse)
		},
	}

	cmd.Flags().StringVarP(&workspaceFlag, "workspace", "w", "", "workspace name or ID")

	return cmd
}

func outputWarehouseDetails(warehouse *fabric.Warehouse) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(warehouse)
	case OutputFormatYAML:
		return StandardYAMLRenderer(warehouse)
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Property", "Value")

		_ = table.Append("ID", warehouse.ID)
		_ = table.Append("Name", warehouse.DisplayName)
		_ = table.Append("Workspace", warehouse.WorkspaceID)

		if warehouse.Description != "" {
			_ = table.Append("Description", warehouse.Description)
		}

		if props := warehouse.Properties; props != nil {
			if props.ConnectionString != "" {
				_ = table.Append("Connection String", props.ConnectionString)
			}

			if props.CreatedDate != nil {
				_ = table.Append("Created", props.CreatedDate.Format(time.RFC3339))
			}
		}

		_ = table.Render()
	}

	return nil
}

func newWarehousesCreateCommand() *cobra.Command {
	var (
		workspaceFlag string
		description   string
		wait          bool
	)

	cmd := &cobra.Command{
		Use:   "create WAREHOUSE_NAME",
		Short: "Create a warehouse",
		Long:  "Create a new warehouse in a workspace; provisioning is asynchronous",
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

			poller, err := fabricClient.Warehouses().Create(ctx, workspace.ID, &fabric.CreateWarehouseRequest{
				DisplayName: args[0],
				Description: description,
			})
			if err != nil {
				return fmt.Errorf("failed to create warehouse: %w", err)
			}

			if !poller.Done() && !wait {
				fmt.Printf("Warehouse creation accepted (operation: %s)\n", poller.OperationID())

				return nil
			}

			warehouse, err := poller.PollUntilDone(ctx)
			if err != nil {
				return fmt.Errorf("warehouse creation failed: %w", err)
			}

			fmt.Printf("Warehouse '%s' created (ID: %s)\n", warehouse.DisplayName, warehouse.ID)

			return nil
		},
	}

	cmd.Flags().StringVarP(&workspaceFlag, "workspace", "w", "", "workspace name or ID")
	cmd.Flags().StringVar(&description, "description", "", "warehouse description")
	cmd.Flags().BoolVar(&wait, "wait", false, "wait for asynchronous creation to finish")

	return cmd
}

func newWarehousesUpdateCommand() *cobra.Command {
	var (
		workspaceFlag string
		newName       string
		description   string
	)

	cmd := &cobra.Command{
		Use:   "update WAREHOUSE_NAME_OR_ID",
		Short: "Update a warehouse",
		Long:  "Update the display name or description of a warehouse",
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

			warehouse, err := findWarehouseByNameOrID(ctx, fabricClient, workspace.ID, args[0])
			if err != nil {
				return err
			}

			request := &fabric.UpdateWarehouseRequest{}
			if cmd.Flags().Changed("name") {
				request.DisplayName = &newName
			}

			if cmd.Flags().Changed("description") {
				request.Description = &description
			}

			updated, err := fabricClient.Warehouses().Update(ctx, workspace.ID, warehouse.ID, request)
			if err != nil {
				return fmt.Errorf("failed to update warehouse: %w", err)
			}

			fmt.Printf("Warehouse '%s' updated\n", updated.DisplayName)

			return nil
		},
	}

	cmd.Flags().StringVarP(&workspaceFlag, "workspace", "w", "", "workspace name or ID")
	cmd.Flags().StringVar(&newName, "name", "", "new display name")
	cmd.Flags().StringVar(&description, "description", "", "new description")

	return cmd
}

func newWarehousesDeleteCommand() *cobra.Command {
	var workspaceFlag string

	cmd := &cobra.Command{
		Use:     "delete WAREHOUSE_NAME_OR_ID",
		Aliases: []string{"remove", "rm"},
		Short:   "Delete a warehouse",
		Long:    "Delete a warehouse from a workspace",
		Args:    cobra.ExactArgs(1),
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

			warehouse, err := findWarehouseByNameOrID(ctx, fabricClient, workspace.ID, args[0])
			if err != nil {
				return err
			}

			err = fabricClient.Warehouses().Delete(ctx, workspace.ID, warehouse.ID)
			if err != nil {
				return fmt.Errorf("failed to delete warehouse: %w", err)
			}

			fmt.Printf("Warehouse '%s' deleted\n", warehouse.DisplayName)

			return nil
		},
	}

	cmd.Flags().StringVarP(&workspaceFlag, "workspace", "w", "", "workspace name or ID")

	return cmd
}
