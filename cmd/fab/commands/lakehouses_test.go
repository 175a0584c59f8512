package commands_test

import (
	"testing"

	"github.com/fivetwenty-io/fabric/cmd/fab/commands"
	"github.com/stretchr/testify/assert"
)

func TestNewLakehousesCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewLakehousesCommand()
	assert.Equal(t, "lakehouses", cmd.Use)
	assert.Equal(t, []string{"lakehouse", "lh"}, cmd.Aliases)
	assert.Equal(t, "Manage lakehouses", cmd.Short)
	assert.Equal(t, "List, create, update, and delete lakehouses, and load data into their tables", cmd.Long)

	// Check subcommands are added
	subcommands := cmd.Commands()
	assert.Len(t, subcommands, 7)

	commandNames := make([]string, 0, len(subcommands))
	for _, subcmd := range subcommands {
		commandNames = append(commandNames, subcmd.Name())
	}

	assert.Contains(t, commandNames, "list")
	assert.Contains(t, commandNames, "get")
	assert.Contains(t, commandNames, "create")
	assert.Contains(t, commandNames, "update")
	assert.Contains(t, commandNames, "delete")
	assert.Contains(t, commandNames, "tables")
	assert.Contains(t, commandNames, "load-table")
}

func TestLakehousesListCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewLakehousesCommand()
	cmd := findSubcommand(root, "list")
	assert.Equal(t, "list", cmd.Use)
	assert.Equal(t, "List lakehouses", cmd.Short)
	assert.Equal(t, "List lakehouses in a workspace", cmd.Long)
	assert.NotNil(t, cmd.RunE)

	assert.NotNil(t, cmd.Flags().Lookup("workspace"))
}

func TestLakehousesGetCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewLakehousesCommand()
	cmd := findSubcommand(root, "get")
	assert.Equal(t, "get LAKEHOUSE_NAME_OR_ID", cmd.Use)
	assert.Equal(t, "Get lakehouse details", cmd.Short)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)
}

func TestLakehousesCreateCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewLakehousesCommand()
	cmd := findSubcommand(root, "create")
	assert.Equal(t, "create LAKEHOUSE_NAME", cmd.Use)
	assert.Equal(t, "Create a lakehouse", cmd.Short)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)

	assert.NotNil(t, cmd.Flags().Lookup("description"))

	waitFlag := cmd.Flags().Lookup("wait")
	assert.NotNil(t, waitFlag)
	assert.Equal(t, "false", waitFlag.DefValue)
}

func TestLakehousesDeleteCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewLakehousesCommand()
	cmd := findSubcommand(root, "delete")
	assert.Equal(t, "delete LAKEHOUSE_NAME_OR_ID", cmd.Use)
	assert.Equal(t, []string{"remove", "rm"}, cmd.Aliases)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)
}

func TestLakehousesTablesCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewLakehousesCommand()
	cmd := findSubcommand(root, "tables")
	assert.Equal(t, "tables LAKEHOUSE_NAME_OR_ID", cmd.Use)
	assert.Equal(t, "List lakehouse tables", cmd.Short)
	assert.Equal(t, "List the tables of a lakehouse", cmd.Long)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)
}

func TestLakehousesLoadTableCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewLakehousesCommand()
	cmd := findSubcommand(root, "load-table")
	assert.Equal(t, "load-table LAKEHOUSE_NAME_OR_ID TABLE_NAME", cmd.Use)
	assert.Equal(t, "Load files into a lakehouse table", cmd.Short)
	assert.Equal(t, "Load a file or folder from the lakehouse Files area into a table", cmd.Long)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)

	// Check all load flags exist
	flags := []string{
		"workspace", "path", "folder", "append", "recursive",
		"format", "header", "delimiter",
	}

	for _, flagName := range flags {
		flag := cmd.Flags().Lookup(flagName)
		assert.NotNil(t, flag, "Flag %s should exist", flagName)
	}

	// Overwrite from a single file is the default
	assert.Equal(t, "false", cmd.Flags().Lookup("folder").DefValue)
	assert.Equal(t, "false", cmd.Flags().Lookup("append").DefValue)
}
