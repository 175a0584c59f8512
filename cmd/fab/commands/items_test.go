package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fivetwenty-io/fabric/pkg/fabric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItemsCommand(t *testing.T) {
	cmd := NewItemsCommand()
	assert.Equal(t, "items", cmd.Use)
	assert.Equal(t, []string{"item"}, cmd.Aliases)
	assert.Equal(t, "Manage workspace items", cmd.Short)
	assert.Equal(t, "List, create, update, and delete items in a Fabric workspace", cmd.Long)

	// Check subcommands are added
	subcommands := cmd.Commands()
	assert.Len(t, subcommands, 7)

	var commandNames []string
	for _, subcmd := range subcommands {
		commandNames = append(commandNames, subcmd.Name())
	}

	assert.Contains(t, commandNames, "list")
	assert.Contains(t, commandNames, "get")
	assert.Contains(t, commandNames, "create")
	assert.Contains(t, commandNames, "update")
	assert.Contains(t, commandNames, "delete")
	assert.Contains(t, commandNames, "get-definition")
	assert.Contains(t, commandNames, "update-definition")
}

func TestItemsListCommand(t *testing.T) {
	cmd := newItemsListCommand()
	assert.Equal(t, "list", cmd.Use)
	assert.Equal(t, "List items", cmd.Short)
	assert.Equal(t, "List items in a workspace, optionally filtered by type", cmd.Long)
	assert.NotNil(t, cmd.RunE)

	assert.NotNil(t, cmd.Flags().Lookup("workspace"))
	assert.NotNil(t, cmd.Flags().Lookup("type"))
}

func TestItemsCreateCommand(t *testing.T) {
	cmd := newItemsCreateCommand()
	assert.Equal(t, "create ITEM_NAME", cmd.Use)
	assert.Equal(t, "Create an item", cmd.Short)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)

	assert.NotNil(t, cmd.Flags().Lookup("workspace"))
	assert.NotNil(t, cmd.Flags().Lookup("type"))
	assert.NotNil(t, cmd.Flags().Lookup("description"))
	assert.NotNil(t, cmd.Flags().Lookup("wait"))
}

func TestItemsUpdateCommand(t *testing.T) {
	cmd := newItemsUpdateCommand()
	assert.Equal(t, "update ITEM_NAME_OR_ID", cmd.Use)
	assert.Equal(t, "Update an item", cmd.Short)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)

	assert.NotNil(t, cmd.Flags().Lookup("name"))
	assert.NotNil(t, cmd.Flags().Lookup("description"))
}

func TestItemsDeleteCommand(t *testing.T) {
	cmd := newItemsDeleteCommand()
	assert.Equal(t, "delete ITEM_NAME_OR_ID", cmd.Use)
	assert.Equal(t, []string{"remove", "rm"}, cmd.Aliases)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)
}

func TestItemsGetDefinitionCommand(t *testing.T) {
	cmd := newItemsGetDefinitionCommand()
	assert.Equal(t, "get-definition ITEM_NAME_OR_ID", cmd.Use)
	assert.Equal(t, "Get an item definition", cmd.Short)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)

	assert.NotNil(t, cmd.Flags().Lookup("format"))
}

func TestItemsUpdateDefinitionCommand(t *testing.T) {
	cmd := newItemsUpdateDefinitionCommand()
	assert.Equal(t, "update-definition ITEM_NAME_OR_ID", cmd.Use)
	assert.Equal(t, "Update an item definition", cmd.Short)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)

	assert.NotNil(t, cmd.Flags().Lookup("file"))
}

func TestReadDefinitionFile(t *testing.T) {
	dir := t.TempDir()

	writeFile := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		return path
	}

	t.Run("valid definition", func(t *testing.T) {
		path := writeFile("valid.json", `{
			"format": "ipynb",
			"parts": [
				{"path": "notebook-content.py", "payload": "cHJpbnQoMSk=", "payloadType": "InlineBase64"}
			]
		}`)

		definition, err := readDefinitionFile(path)
		require.NoError(t, err)
		assert.Equal(t, "ipynb", definition.Format)
		require.Len(t, definition.Parts, 1)
		assert.Equal(t, "notebook-content.py", definition.Parts[0].Path)
		assert.Equal(t, fabric.PayloadTypeInlineBase64, definition.Parts[0].PayloadType)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := readDefinitionFile(filepath.Join(dir, "missing.json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read definition file")
	})

	t.Run("invalid JSON", func(t *testing.T) {
		path := writeFile("broken.json", `{"parts": [`)

		_, err := readDefinitionFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse definition file")
	})

	t.Run("no parts", func(t *testing.T) {
		path := writeFile("empty.json", `{"format": "ipynb", "parts": []}`)

		_, err := readDefinitionFile(path)
		require.ErrorIs(t, err, ErrInvalidDefinitionFile)
	})
}
