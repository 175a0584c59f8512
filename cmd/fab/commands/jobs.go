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

// NewJobsCommand creates the jobs command group.
func NewJobsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "jobs",
		Aliases: []string{"job"},
		Short:   "Manage item job instances",
		Long:    "Run, monitor, and cancel job instances on Fabric items",
	}

	cmd.AddCommand(newJobsRunCommand())
	cmd.AddCommand(newJobsGetCommand())
	cmd.AddCommand(newJobsListCommand())
	cmd.AddCommand(newJobsCancelCommand())
	cmd.AddCommand(newJobsPollCommand())

	return cmd
}

func newJobsRunCommand() *cobra.Command {
	var (
		workspaceFlag string
		jobType       string
		wait          bool
	)

	cmd := &cobra.Command{
		Use:   "run ITEM_NAME_OR_ID",
		Short: "Run a job on an item",
		Long:  "Start an on-demand job instance for an item, such as a notebook run",
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

			instance, err := fabricClient.Jobs().RunOnDemand(ctx, workspace.ID, item.ID, jobType, nil)
			if err != nil {
				return fmt.Errorf("failed to run job: %w", err)
			}

			fmt.Printf("Job %s started on '%s'\n", instance.ID, item.DisplayName)

			if !wait {
				return outputJobInstance(instance)
			}

			instance, err = fabricClient.Jobs().PollUntilComplete(ctx, workspace.ID, item.ID, instance.ID)
			if err != nil {
				// A failed run still carries the instance with its
				// failure details; show them before bailing out.
				if instance != nil {
					_ = outputJobInstance(instance)
				}

				return fmt.Errorf("job did not complete: %w", err)
			}

			return outputJobInstance(instance)
		},
	}

	cmd.Flags().StringVarP(&workspaceFlag, "workspace", "w", "", "workspace name or ID")
	cmd.Flags().StringVar(&jobType, "type", fabric.JobTypeRunNotebook, "job type (RunNotebook, Pipeline, sparkjob, TableMaintenance)")
	cmd.Flags().BoolVar(&wait, "wait", false, "wait for the job to reach a terminal status")

	return cmd
}

func newJobsGetCommand() *cobra.Command {
	var workspaceFlag string

	cmd := &cobra.Command{
		Use:   "get ITEM_NAME_OR_ID JOB_INSTANCE_ID",
		Short: "Get job instance details",
		Long:  "Display detailed information about a specific job instance",
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

			item, err := findItemByNameOrID(ctx, fabricClient, workspace.ID, args[0])
			if err != nil {
				return err
			}

			instance, err := fabricClient.Jobs().Get(ctx, workspace.ID, item.ID, args[1])
			if err != nil {
				return fmt.Errorf("failed to get job instance: %w", err)
			}

			return outputJobInstance(instance)
		},
	}

	cmd.Flags().StringVarP(&workspaceFlag, "workspace", "w", "", "workspace name or ID")

	return cmd
}

func newJobsListCommand() *cobra.Command {
	var workspaceFlag string

	cmd := &cobra.Command{
		Use:   "list ITEM_NAME_OR_ID",
		Short: "List job instances",
		Long:  "List job instances for an item",
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

			instances, err := fabricClient.Jobs().List(ctx, workspace.ID, item.ID, fabric.NewQueryParams())
			if err != nil {
				return fmt.Errorf("failed to list job instances: %w", err)
			}

			return outputJobInstances(instances.Value)
		},
	}

	cmd.Flags().StringVarP(&workspaceFlag, "workspace", "w", "", "workspace name or ID")

	return cmd
}

func newJobsCancelCommand() *cobra.Command {
	var workspaceFlag string

	cmd := &cobra.Command{
		Use:   "cancel ITEM_NAME_OR_ID JOB_INSTANCE_ID",
		Short: "Cancel a job instance",
		Long:  "Request cancellation of a running job instance",
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

			item, err := findItemByNameOrID(ctx, fabricClient, workspace.ID, args[0])
			if err != nil {
				return err
			}

			err = fabricClient.Jobs().Cancel(ctx, workspace.ID, item.ID, args[1])
			if err != nil {
				return fmt.Errorf("failed to cancel job instance: %w", err)
			}

			fmt.Printf("Cancellation requested for job %s\n", args[1])

			return nil
		},
	}

	cmd.Flags().StringVarP(&workspaceFlag, "workspace", "w", "", "workspace name or ID")

	return cmd
}

func newJobsPollCommand() *cobra.Command {
	var workspaceFlag string

	cmd := &cobra.Command{
		Use:   "poll ITEM_NAME_OR_ID JOB_INSTANCE_ID",
		Short: "Poll a job instance until completion",
		Long:  "Poll a job instance until it completes, fails, or is cancelled",
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

			item, err := findItemByNameOrID(ctx, fabricClient, workspace.ID, args[0])
			if err != nil {
				return err
			}

			instance, err := fabricClient.Jobs().PollUntilComplete(ctx, workspace.ID, item.ID, args[1])
			if err != nil {
				if instance != nil {
					_ = outputJobInstance(instance)
				}

				return fmt.Errorf("job did not complete: %w", err)
			}

			return outputJobInstance(instance)
		},
	}

	cmd.Flags().StringVarP(&workspaceFlag, "workspace", "w", "", "workspace name or ID")

	return cmd
}

func outputJobInstances(instances []fabric.JobInstance) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(instances)
	case OutputFormatYAML:
		return StandardYAMLRenderer(instances)
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("ID", "Job Type", "Status", "Invoke Type", "Started")

		for _, instance := range instances {
			_ = table.Append(instance.ID, instance.JobType, string(instance.Status), string(instance.InvokeType), formatJobTime(instance.StartTimeUTC))
		}

		_ = table.Render()
	}

	return nil
}

func outputJobInstance(instance *fabric.JobInstance) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(instance)
	case OutputFormatYAML:
		return StandardYAMLRenderer(instance)
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Property", "Value")

		_ = table.Append("ID", instance.ID)
		_ = table.Append("Item", instance.ItemID)
		_ = table.Append("Job Type", instance.JobType)
		_ = table.Append("Status", string(instance.Status))

		if instance.InvokeType != "" {
			_ = table.Append("Invoke Type", string(instance.InvokeType))
		}

		if instance.RootActivityID != "" {
			_ = table.Append("Root Activity", instance.RootActivityID)
		}

		_ = table.Append("Started", formatJobTime(instance.StartTimeUTC))
		_ = table.Append("Ended", formatJobTime(instance.EndTimeUTC))

		if instance.FailureReason != nil {
			_ = table.Append("Failure", fmt.Sprintf("%s: %s", instance.FailureReason.ErrorCode, instance.FailureReason.Message))
		}

		_ = table.Render()
	}

	return nil
}

func formatJobTime(t *time.Time) string {
	if t == nil {
		return NotAvailable
	}

	return t.Format("2006-01-02 15:04:05")
}
