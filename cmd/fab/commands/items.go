package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fivetwenty-io/fabric/pkg/fabric"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewItemsCommand creates the items command group.
func NewItemsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "items",
		Aliases: []string{"item"},
		Short:   "Manage workspace items",
		Long:    "List, create, update, and delete items in a Fabric workspace",
	}

	cmd.AddCommand(newItemsListCommand())
	cmd.AddCommand(newItemsGetCommand())
	cmd.AddCommand(newItemsCreateCommand())
	cmd.AddCommand(newItemsUpdateCommand())
	cmd.AddCommand(newItemsDeleteCommand())
	cmd.AddCommand(newItemsGetDefinitionCommand())
	cmd.AddCommand(newItemsUpdateDefinitionCommand())

	return cmd
}

func newItemsListCommand() *cobra.Command {
	var (
		workspaceFlag string
		itemType      string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items",
		Long:  "List items in a workspace, optionally filtered by type",
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

			params := fabric.NewQueryParams()
			if itemType != "" {
				params.WithType(itemType)
			}

			items, err := fabricClient.Items().List(ctx, workspace.ID, params)
			if err != nil {
				return fmt.Errorf("failed to list items: %w", err)
			}

			return outputItems(items.Value)
		},
	}

	cmd.Flags().StringVarP(&workspaceFlag, "workspace", "w", "", "workspace name or ID")
	cmd.Flags().StringVar(&itemType, "type", "", "filter by item type (Notebook, Report, Lakehouse, ...)")

	return cmd
}

func outputItems(items []fabric.Item) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(items)
	case OutputFormatYAML:
		return StandardYAMLRenderer(items)
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("ID", "Name", "Type", "Description")

		for _, item := range items {
			_ = table.Append(item.ID, item.DisplayName, string(item.Type), item.Description)
		}

		_ = table.Render()
	}

	return nil
}

func newItemsGetCommand() *cobra.Command {
	var workspaceFlag string

	cmd := &cobra.Command{
		Use:   "get ITEM_NAME_OR_ID",
		Short: "Get item details",
		Long:  "Display detailed information about a specific item",
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

			item, err := findItemByNameOrID(ctx, fabricClient, workspace.ID, args[0])
			if err != nil {
				return err
			}

			return outputItemDetails(item)
		},
	}

	cmd.Flags().StringVarP(&workspaceFlag, "workspace", "w", "", "workspace name or ID")

	return cmd
}

func outputItemDetails(item *fabric.Item) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(item)
	case OutputFormatYAML:
		return StandardYAMLRenderer(item)
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Property", "Value")

		_ = table.Append("ID", item.ID)
		_ = table.Append("Name", item.DisplayName)
		_ = table.Append("Type", string(item.Type))
		_ = table.Append("Workspace", item.WorkspaceID)

		if item.Description != "" {
			_ = table.Append("Description", item.Description)
		}

		if item.FolderID != "" {
			_ = table.Append("Folder", item.FolderID)
		}

		_ = table.Render()
	}

	return nil
}

func newItemsCreateCommand() *cobra.Command {
	var (
		workspaceFlag string
		itemType      string
		description   string
		wait          bool
	)

	cmd := &cobra.Command{
		Use:   "create ITEM_NAME",
		Short: "Create an item",
		Long:  "Create a new item in a workspace; some item types complete asynchronously",
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

			poller, err := fabricClient.Items().Create(ctx, workspace.ID, &fabric.CreateItemRequest{
				DisplayName: args[0],
				Description: description,
				Type:        fabric.ItemType(itemType),
			})
			if err != nil {
				return fmt.Errorf("failed to create item: %w", err)
			}

			if !poller.Done() && !wait {
				fmt.Printf("Item creation accepted (operation: %s)\n", poller.OperationID())
				fmt.Println("Use 'fab operations get' to track it, or pass --wait to block")

				return nil
			}

			item, err := poller.PollUntilDone(ctx)
			if err != nil {
				return fmt.Errorf("item creation failed: %w", err)
			}

			fmt.Printf("Item '%s' created (ID: %s)\n", item.DisplayName, item.ID)

			return nil
		},
	}

	cmd.Flags().StringVarP(&workspaceFlag, "workspace", "w", "", "workspace name or ID")
	cmd.Flags().StringVar(&itemType, "type", "", "item type (Notebook, Report, Lakehouse, ...)")
	cmd.Flags().StringVar(&description, "description", "", "item description")
	cmd.Flags().BoolVar(&wait, "wait", false, "wait for asynchronous creation to finish")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func newItemsUpdateCommand() *cobra.Command {
	var (
		workspaceFlag string
		newName       string
		description   string
	)

	cmd := &cobra.Command{
		Use:   "update ITEM_NAME_OR_ID",
		Short: "Update an item",
		Long:  "Update the display name or description of an item",
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

			item, err := findItemByNameOrID(ctx, fabricClient, workspace.ID, args[0])
			if err != nil {
				return err
			}

			request := &fabric.UpdateItemRequest{}
			if cmd.Flags().Changed("name") {
				request.DisplayName = &newName
			}

			if cmd.Flags().Changed("description") {
				request.Description = &description
			}

			updated, err := fabricClient.Items().Update(ctx, workspace.ID, item.ID, request)
			if err != nil {
				return fmt.Errorf("failed to update item: %w", err)
			}

			fmt.Printf("Item '%s' updated\n", updated.DisplayName)

			return nil
		},
	}

	cmd.Flags().StringVarP(&workspaceFlag, "workspace", "w", "", "workspace name or ID")
	cmd.Flags().StringVar(&newName, "name", "", "new display name")
	cmd.Flags().StringVar(&description, "description", "", "new description")

	return cmd
}

func newItemsDeleteCommand() *cobra.Command {
	var workspaceFlag string

	cmd := &cobra.Command{
		Use:     "delete ITEM_NAME_OR_ID",
		Aliases: []string{"remove", "rm"},
		Short:   "Delete an item",
		Long:    "Delete an item from a workspace",
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

			item, err := findItemByNameOrID(ctx, fabricClient, workspace.ID, args[0])
			if err != nil {
				return err
			}

			err = fabricClient.Items().Delete(ctx, workspace.ID, item.ID)
			if err != nil {
				return fmt.Errorf("failed to delete item: %w", err)
			}

			fmt.Printf("Item '%s' deleted\n", item.DisplayName)

			return nil
		},
	}

	cmd.Flags().StringVarP(&workspaceFlag, "workspace", "w", "", "workspace name or ID")

	return cmd
}

func newItemsGetDefinitionCommand() *cobra.Command {
	var (
		workspaceFlag string
		format        string
	)

	cmd := &cobra.Command{
		Use:   "get-definition ITEM_NAME_OR_ID",
		Short: "Get an item definition",
		Long:  "Fetch the definition parts of an item and print them as JSON",
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

			item, err := findItemByNameOrID(ctx, fabricClient, workspace.ID, args[0])
			if err != nil {
				return err
			}

			poller, err := fabricClient.Items().GetDefinition(ctx, workspace.ID, item.ID, format)
			if err != nil {
				return fmt.Errorf("failed to get item definition: %w", err)
			}

			definition, err := poller.PollUntilDone(ctx)
			if err != nil {
				return fmt.Errorf("failed to get item definition: %w", err)
			}

			return StandardJSONRenderer(definition)
		},
	}

	cmd.Flags().StringVarP(&workspaceFlag, "workspace", "w", "", "workspace name or ID")
	cmd.Flags().StringVar(&format, "format", "", "definition format (item-type specific)")

	return cmd
}

func newItemsUpdateDefinitionCommand() *cobra.Command {
	var (
		workspaceFlag string
		filename      string
	)

	cmd := &cobra.Command{
		Use:   "update-definition ITEM_NAME_OR_ID",
		Short: "Update an item definition",
		Long:  "Replace the definition parts of an item from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			definition, err := readDefinitionFile(filename)
			if err != nil {
				return err
			}

			fabricClient, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			workspace, err := resolveWorkspace(ctx, fabricClient, workspaceFlag)
			if err != nil {
				return err
			}

			item, err := findItemByNameOrID(ctx, fabricClient, workspace.ID, args[0])
			if err != nil {
				return err
			}

			poller, err := fabricClient.Items().UpdateDefinition(ctx, workspace.ID, item.ID, &fabric.UpdateItemDefinitionRequest{
				Definition: definition,
			})
			if err != nil {
				return fmt.Errorf("failed to update item definition: %w", err)
			}

			if _, err := poller.PollUntilDone(ctx); err != nil {
				return fmt.Errorf("failed to update item definition: %w", err)
			}

			fmt.Printf("Definition of '%s' updated\n", item.DisplayName)

			return nil
		},
	}

	cmd.Flags().StringVarP(&workspaceFlag, "workspace", "w", "", "workspace name or ID")
	cmd.Flags().StringVar(&filename, "file", "", "JSON file containing the item definition")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// readDefinitionFile loads an item definition from a JSON file of the
// shape {"format": "...", "parts": [{"path", "payload", "payloadType"}]}.
func readDefinitionFile(filename string) (*fabric.ItemDefinition, error) {
	data, err := os.ReadFile(filename) // #nosec G304 -- filename comes from an explicit CLI flag
	if err != nil {
		return nil, fmt.Errorf("failed to read definition file: %w", err)
	}

	var definition fabric.ItemDefinition
	if err := json.Unmarshal(data, &definition); err != nil {
		return nil, fmt.Errorf("failed to parse definition file: %w", err)
	}

	if len(definition.Parts) == 0 {
		return nil, fmt.Errorf("%s: %w", filename, ErrInvalidDefinitionFile)
	}

	return &definition, nil
}
