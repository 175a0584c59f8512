package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewOperationsCommand creates the operations command group.
func NewOperationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "operations",
		Aliases: []string{"operation", "ops"},
		Short:   "Inspect long-running operations",
		Long:    "Check the state and result of long-running Fabric operations",
	}

	cmd.AddCommand(newOperationsGetCommand())
	cmd.AddCommand(newOperationsResultCommand())

	return cmd
}

func newOperationsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get OPERATION_ID",
		Short: "Get operation state",
		Long:  "Display the current state of a long-running operation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fabricClient, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			state, err := fabricClient.Operations().Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get operation: %w", err)
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				return StandardJSONRenderer(state)
			case OutputFormatYAML:
				return StandardYAMLRenderer(state)
			default:
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Property", "Value")

				_ = table.Append("Operation", args[0])
				_ = table.Append("Status", string(state.Status))
				_ = table.Append("Progress", strconv.Itoa(state.PercentComplete)+"%")

				if !state.CreatedTimeUTC.IsZero() {
					_ = table.Append("Created", state.CreatedTimeUTC.Format(time.RFC3339))
				}

				if !state.LastUpdatedTimeUTC.IsZero() {
					_ = table.Append("Last Updated", state.LastUpdatedTimeUTC.Format(time.RFC3339))
				}

				if state.Error != nil {
					_ = table.Append("Error", fmt.Sprintf("%s: %s", state.Error.ErrorCode, state.Error.Message))
				}

				_ = table.Render()
			}

			return nil
		},
	}
}

func newOperationsResultCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "result OPERATION_ID",
		Short: "Get operation result",
		Long:  "Fetch the result payload of a succeeded operation and print it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fabricClient, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			var result map[string]interface{}

			err = fabricClient.Operations().GetResult(ctx, args[0], &result)
			if err != nil {
				return fmt.Errorf("failed to get operation result: %w", err)
			}

			return StandardJSONRenderer(result)
		},
	}
}
