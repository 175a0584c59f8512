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

// NewLakehousesCommand creates the lakehouses command group.
func NewLakehousesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "lakehouses",
		Aliases: []string{"lakehouse", "lh"},
		Short:   "Manage lakehouses",
		Long:    "List, create, update, and delete lakehouses, and load data into their tables",
	}

	cmd.AddCommand(newLakehousesListCommand())
	cmd.AddCommand(newLakehousesGetCommand())
	cmd.AddCommand(newLakehousesCreateCommand())
	cmd.AddCommand(newLakehousesUpdateCommand())
	cmd.AddCommand(newLakehousesDeleteCommand())
	cmd.AddCommand(newLakehousesTablesCommand())
	cmd.AddCommand(newLakehousesLoadTableCommand())

	return cmd
}

// findLakehouseByNameOrID tries the argument as an ID first and falls
// back to matching display names.
func findLakehouseByNameOrID(ctx context.Context, fabricClient fabric.Client, workspaceID, nameOrID string) (*fabric.Lakehouse, error) {
	lakehouse, err := fabricClient.Lakehouses().Get(ctx, workspaceID, nameOrID)
	if err == nil {
		return lakehouse, nil
	}

	page, err := fabricClient.Lakehouses().List(ctx, workspaceID, fabric.NewQueryParams())
	if err != nil {
		return nil, fmt.Errorf("failed to list lakehouses: %w", err)
	}

	for i := range page.Value {
		if page.Value[i].DisplayName == nameOrID {
			return &page.Value[i], nil
		}
	}

	return nil, fmt.Errorf("lakehouse '%s': %w", nameOrID, ErrLakehouseNotFound)
}

func newLakehousesListCommand() *cobra.Command {
	var workspaceFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List lakehouses",
		Long:  "List lakehouses in a workspace",
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

			lakehouses, err := fabricClient.Lakehouses().List(ctx, workspace.ID, fabric.NewQueryParams())
			if err != nil {
				return fmt.Errorf("failed to list lakehouses: %w", err)
			}

			return outputLakehouses(lakehouses.Value)
		},
	}

	cmd.Flags().StringVarP(&workspaceFlag, "workspace", "w", "", "workspace name or ID")

	return cmd
}

func outputLakehouses(lakehouses []fabric.Lakehouse) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(lakehouses)
	case OutputFormatYAML:
		return StandardYAMLRenderer(lakehouses)
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("ID", "Name", "Description")

		for _, lakehouse := range lakehouses {
			_ = table.Append(lakehouse.ID, lakehouse.DisplayName, lakehouse.Description)
		}

		_ = table.Render()
	}

	return nil
}

func newLakehousesGetCommand() *cobra.Command {
	var workspaceFlag string

	cmd := &cobra.Command{
		Use:   "get LAKEHOUSE_NAME_OR_ID",
		Short: "Get lakehouse details",
		Long:  "Display detailed information about a specific lakehouse",
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

			lakehouse, err := findLakehouseByNameOrID(ctx, fabricClient, workspace.ID, args[0])
			if err != nil {
				return err
			}

			return outputLakehouseDetails(lakehouse)
		},
	}

	cmd.Flags().StringVarP(&workspaceFlag, "workspace", "w", "", "workspace name or ID")

	return cmd
}

func outputLakehouseDetails(lakehouse *fabric.Lakehouse) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(lakehouse)
	case OutputFormatYAML:
		return StandardYAMLRenderer(lakehouse)
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Property", "Value")

		_ = table.Append("ID", lakehouse.ID)
		_ = table.Append("Name", lakehouse.DisplayName)
		_ = table.Append("Workspace", lakehouse.WorkspaceID)

		if lakehouse.Description != "" {
			_ = table.Append("Description", lakehouse.Description)
		}

		if props := lakehouse.Properties; props != nil {
			if props.OneLakeTablesPath != "" {
				_ = table.Append("Tables Path", props.OneLakeTablesPath)
			}

			if props.OneLakeFilesPath != "" {
				_ = table.Append("Files Path", props.OneLakeFilesPath)
			}

			if props.DefaultSchema != "" {
				_ = table.Append("Default Schema", props.DefaultSchema)
			}

			if props.SQLEndpointProperties != nil {
				_ = table.Append("SQL Endpoint", props.SQLEndpointProperties.ID)
			}
		}

		_ = table.Render()
	}

	return nil
}

func newLakehousesCreateCommand() *cobra.Command {
	var (
		workspaceFlag string
		description   string
		wait          bool
	)

	cmd := &cobra.Command{
		Use:   "create LAKEHOUSE_NAME",
		Short: "Create a lakehouse",
		Long:  "Create a new lakehouse in a workspace",
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

			poller, err := fabricClient.Lakehouses().Create(ctx, workspace.ID, &fabric.CreateLakehouseRequest{
				DisplayName: args[0],
				Description: description,
			})
			if err != nil {
				return fmt.Errorf("failed to create lakehouse: %w", err)
			}

			if !poller.Done() && !wait {
				fmt.Printf("Lakehouse creation accepted (operation: %s)\n", poller.OperationID())

				return nil
			}

			lakehouse, err := poller.PollUntilDone(ctx)
			if err != nil {
				return fmt.Errorf("lakehouse creation failed: %w", err)
			}

			fmt.Printf("Lakehouse '%s' created (ID: %s)\n", lakehouse.DisplayName, lakehouse.ID)

			return nil
		},
	}

	cmd.Flags().StringVarP(&workspaceFlag, "workspace", "w", "", "workspace name or ID")
	cmd.Flags().StringVar(&description, "description", "", "lakehouse description")
	cmd.Flags().BoolVar(&wait, "wait", false, "wait for asynchronous creation to finish")

	return cmd
}

func newLakehousesUpdateCommand() *cobra.Command {
	var (
		workspaceFlag string
		newName       string
		description   string
	)

	cmd := &cobra.Command{
		Use:   "update LAKEHOUSE_NAME_OR_ID",
		Short: "Update a lakehouse",
		Long:  "Update the display name or description of a lakehouse",
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

			lakehouse, err := findLakehouseByNameOrID(ctx, fabricClient, workspace.ID, args[0])
			if err != nil {
				return err
			}

			request := &fabric.UpdateLakehouseRequest{}
			if cmd.Flags().Changed("name") {
				request.DisplayName = &newName
			}

			if cmd.Flags().Changed("description") {
				request.Description = &description
			}

			updated, err := fabricClient.Lakehouses().Update(ctx, workspace.ID, lakehouse.ID, request)
			if err != nil {
				return fmt.Errorf("failed to update lakehouse: %w", err)
			}

			fmt.Printf("Lakehouse '%s' updated\n", updated.DisplayName)

			return nil
		},
	}

	cmd.Flags().StringVarP(&workspaceFlag, "workspace", "w", "", "workspace name or ID")
	cmd.Flags().StringVar(&newName, "name", "", "new display name")
	cmd.Flags().StringVar(&description, "description", "", "new description")

	return cmd
}

func newLakehousesDeleteCommand() *cobra.Command {
	var workspaceFlag string

	cmd := &cobra.Command{
		Use:     "delete LAKEHOUSE_NAME_OR_ID",
		Aliases: []string{"remove", "rm"},
		Short:   "Delete a lakehouse",
		Long:    "Delete a lakehouse from a workspace",
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

			lakehouse, err := findLakehouseByNameOrID(ctx, fabricClient, workspace.ID, args[0])
			if err != nil {
				return err
			}

			err = fabricClient.Lakehouses().Delete(ctx, workspace.ID, lakehouse.ID)
			if err != nil {
				return fmt.Errorf("failed to delete lakehouse: %w", err)
			}

			fmt.Printf("Lakehouse '%s' deleted\n", lakehouse.DisplayName)

			return nil
		},
	}

	cmd.Flags().StringVarP(&workspaceFlag, "workspace", "w", "", "workspace name or ID")

	return cmd
}

func newLakehousesTablesCommand() *cobra.Command {
	var workspaceFlag string

	cmd := &cobra.Command{
		Use:   "tables LAKEHOUSE_NAME_OR_ID",
		Short: "List lakehouse tables",
		Long:  "List the tables of a lakehouse",
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

			lakehouse, err := findLakehouseByNameOrID(ctx, fabricClient, workspace.ID, args[0])
			if err != nil {
				return err
			}

			tables, err := fabricClient.Lakehouses().ListTables(ctx, workspace.ID, lakehouse.ID, fabric.NewQueryParams())
			if err != nil {
				return fmt.Errorf("failed to list tables: %w", err)
			}

			return outputTables(tables.Value)
		},
	}

	cmd.Flags().StringVarP(&workspaceFlag, "workspace", "w", "", "workspace name or ID")

	return cmd
}

func outputTables(tables []fabric.Table) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(tables)
	case OutputFormatYAML:
		return StandardYAMLRenderer(tables)
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Name", "Type", "Format", "Location")

		for _, t := range tables {
			_ = table.Append(t.Name, string(t.Type), t.Format, t.Location)
		}

		_ = table.Render()
	}

	return nil
}

func newLakehousesLoadTableCommand() *cobra.Command {
	var (
		workspaceFlag string
		relativePath  string
		folder        bool
		appendMode    bool
		recursive     bool
		format        string
		header        bool
		delimiter     string
	)

	cmd := &cobra.Command{
		Use:   "load-table LAKEHOUSE_NAME_OR_ID TABLE_NAME",
		Short: "Load files into a lakehouse table",
		Long:  "Load a file or folder from the lakehouse Files area into a table",
		Args:  cobra.ExactArgs(2),
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

			lakehouse, err := findLakehouseByNameOrID(ctx, fabricClient, workspace.ID, args[0])
			if err != nil {
				return err
			}

			request := &fabric.LoadTableRequest{
				RelativePath: relativePath,
				PathType:     fabric.PathTypeFile,
				Mode:         fabric.LoadModeOverwrite,
				Recursive:    recursive,
			}

			if folder {
				request.PathType = fabric.PathTypeFolder
			}

			if appendMode {
				request.Mode = fabric.LoadModeAppend
			}

			if format != "" {
				request.FormatOptions = &fabric.FormatOptions{
					Format:    format,
					Header:    header,
					Delimiter: delimiter,
				}
			}

			poller, err := fabricClient.Lakehouses().LoadTable(ctx, workspace.ID, lakehouse.ID, args[1], request)
			if err != nil {
				return fmt.Errorf("failed to load table: %w", err)
			}

			if _, err := poller.PollUntilDone(ctx); err != nil {
				return fmt.Errorf("table load failed: %w", err)
			}

			fmt.Printf("Loaded %s into table '%s'\n", relativePath, args[1])

			return nil
		},
	}

	cmd.Flags().StringVarP(&workspaceFlag, "workspace", "w", "", "workspace name or ID")
	cmd.Flags().StringVar(&relativePath, "path", "", "source path under the lakehouse Files area")
	cmd.Flags().BoolVar(&folder, "folder", false, "treat the source path as a folder")
	cmd.Flags().BoolVar(&appendMode, "append", false, "append to the table instead of overwriting")
	cmd.Flags().BoolVar(&recursive, "recursive", false, "load nested folders recursively")
	cmd.Flags().StringVar(&format, "format", "", "source file format (csv, parquet)")
	cmd.Flags().BoolVar(&header, "header", false, "source files carry a header row")
	cmd.Flags().StringVar(&delimiter, "delimiter", "", "field delimiter for delimited formats")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}
