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

// NewCapacitiesCommand creates the capacities command group.
func NewCapacitiesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "capacities",
		Aliases: []string{"capacity"},
		Short:   "View capacities",
		Long:    "List the compute capacities visible to the caller",
	}

	cmd.AddCommand(newCapacitiesListCommand())

	return cmd
}

func newCapacitiesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List capacities",
		Long:  "List all capacities the caller can see",
		RunE: func(cmd *cobra.Command, args []string) error {
			fabricClient, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			capacities, err := fabricClient.Capacities().List(ctx, fabric.NewQueryParams())
			if err != nil {
				return fmt.Errorf("failed to list capacities: %w", err)
			}

			return outputCapacities(capacities.Value)
		},
	}
}

func outputCapacities(capacities []fabric.Capacity) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(capacities)
	case OutputFormatYAML:
		return StandardYAMLRenderer(capacities)
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("ID", "Name", "SKU", "Region", "State")

		for _, capacity := range capacities {
			_ = table.Append(capacity.ID, capacity.DisplayName, capacity.SKU, capacity.Region, string(capacity.State))
		}

		_ = table.Render()
	}

	return nil
}
