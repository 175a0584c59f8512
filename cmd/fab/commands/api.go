package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fivetwenty-io/fabric/pkg/fabric"
	"github.com/spf13/cobra"
)

// NewAPICommand creates the raw api command, an escape hatch for
// endpoints without a typed wrapper.
func NewAPICommand() *cobra.Command {
	var (
		method string
		data   string
		wait   bool
	)

	cmd := &cobra.Command{
		Use:   "api PATH",
		Short: "Send a raw API request",
		Long: `Send a raw request to the Fabric API and print the response.

The path is relative to the API root, for example /v1/workspaces.
Request bodies are sent as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fabricClient, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			var body any
			if data != "" {
				if err := json.Unmarshal([]byte(data), &body); err != nil {
					return fmt.Errorf("request body is not valid JSON: %w", err)
				}
			}

			ctx := context.Background()

			response, err := fabricClient.Do(ctx, method, args[0], body, &fabric.CallOptions{
				WaitForCompletion: wait,
			})
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}

			return printRawResponse(response)
		},
	}

	cmd.Flags().StringVarP(&method, "method", "X", "GET", "HTTP method")
	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body")
	cmd.Flags().BoolVar(&wait, "wait", false, "wait for long-running operations to finish")

	return cmd
}

// printRawResponse pretty-prints JSON bodies and passes anything else
// through untouched.
func printRawResponse(response *fabric.RawResponse) error {
	if len(response.Body) == 0 {
		fmt.Printf("%d (no body)\n", response.StatusCode)

		return nil
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, response.Body, "", "  "); err != nil {
		_, _ = os.Stdout.Write(response.Body)
		fmt.Println()

		return nil
	}

	_, _ = pretty.WriteTo(os.Stdout)
	fmt.Println()

	return nil
}
