package commands_test

import (
	"testing"

	"github.com/fivetwenty-io/fabric/cmd/fab/commands"
	"github.com/stretchr/testify/assert"
)

func TestNewOperationsCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewOperationsCommand()
	assert.Equal(t, "operations", cmd.Use)
	assert.Equal(t, []string{"operation", "ops"}, cmd.Aliases)
	assert.Equal(t, "Inspect long-running operations", cmd.Short)

	subcommands := cmd.Commands()
	assert.Len(t, subcommands, 2)

	commandNames := make([]string, 0, len(subcommands))
	for _, subcmd := range subcommands {
		commandNames = append(commandNames, subcmd.Name())
	}

	assert.Contains(t, commandNames, "get")
	assert.Contains(t, commandNames, "result")
}

func TestOperationsGetCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewOperationsCommand()
	cmd := findSubcommand(root, "get")
	assert.Equal(t, "get OPERATION_ID", cmd.Use)
	assert.Equal(t, "Get operation state", cmd.Short)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)
}

func TestOperationsResultCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewOperationsCommand()
	cmd := findSubcommand(root, "result")
	assert.Equal(t, "result OPERATION_ID", cmd.Use)
	assert.Equal(t, "Get operation result", cmd.Short)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)
}

func TestNewSQLEndpointsCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewSQLEndpointsCommand()
	assert.Equal(t, "sql-endpoints", cmd.Use)
	assert.Equal(t, []string{"sql-endpoint", "sqle"}, cmd.Aliases)
	assert.Equal(t, "Manage SQL analytics endpoints", cmd.Short)

	subcommands := cmd.Commands()
	assert.Len(t, subcommands, 2)

	commandNames := make([]string, 0, len(subcommands))
	for _, subcmd := range subcommands {
		commandNames = append(commandNames, subcmd.Name())
	}

	assert.Contains(t, commandNames, "list")
	assert.Contains(t, commandNames, "refresh-metadata")
}

func TestSQLEndpointsRefreshCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewSQLEndpointsCommand()
	cmd := findSubcommand(root, "refresh-metadata")
	assert.Equal(t, "refresh-metadata SQL_ENDPOINT_ID", cmd.Use)
	assert.Equal(t, "Refresh SQL endpoint metadata", cmd.Short)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)

	assert.NotNil(t, cmd.Flags().Lookup("workspace"))
}

func TestNewCapacitiesCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewCapacitiesCommand()
	assert.Equal(t, "capacities", cmd.Use)
	assert.Equal(t, []string{"capacity"}, cmd.Aliases)
	assert.Equal(t, "View capacities", cmd.Short)

	subcommands := cmd.Commands()
	assert.Len(t, subcommands, 1)
	assert.Equal(t, "list", subcommands[0].Name())
}

func TestNewAPICommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewAPICommand()
	assert.Equal(t, "api PATH", cmd.Use)
	assert.Equal(t, "Send a raw API request", cmd.Short)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)

	methodFlag := cmd.Flags().Lookup("method")
	assert.NotNil(t, methodFlag)
	assert.Equal(t, "X", methodFlag.Shorthand)
	assert.Equal(t, "GET", methodFlag.DefValue)

	assert.NotNil(t, cmd.Flags().Lookup("data"))
	assert.NotNil(t, cmd.Flags().Lookup("wait"))
}
