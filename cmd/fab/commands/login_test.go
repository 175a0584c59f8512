package commands_test

import (
	"testing"

	"github.com/fivetwenty-io/fabric/cmd/fab/commands"
	"github.com/stretchr/testify/assert"
)

func TestNewLoginCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewLoginCommand()
	assert.Equal(t, "login", cmd.Use)
	assert.Equal(t, "Login to Microsoft Fabric", cmd.Short)
	assert.Equal(t, "Authenticate against Azure AD and verify access to a Fabric API endpoint", cmd.Long)
	assert.NotNil(t, cmd.RunE)

	// Check flags
	flags := []string{"api", "tenant", "client-id", "client-secret", "username", "password"}
	for _, flagName := range flags {
		flag := cmd.Flags().Lookup(flagName)
		assert.NotNil(t, flag, "Flag %s should exist", flagName)
	}

	assert.Equal(t, "a", cmd.Flags().Lookup("api").Shorthand)
	assert.Equal(t, "u", cmd.Flags().Lookup("username").Shorthand)
	assert.Equal(t, "p", cmd.Flags().Lookup("password").Shorthand)
}

func TestNewLogoutCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewLogoutCommand()
	assert.Equal(t, "logout", cmd.Use)
	assert.Equal(t, "Logout from Microsoft Fabric", cmd.Short)
	assert.Equal(t, "Clear stored credentials for the current API endpoint", cmd.Long)
	assert.NotNil(t, cmd.RunE)
}

func TestNewTargetCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewTargetCommand()
	assert.Equal(t, "target", cmd.Use)
	assert.Equal(t, "Set or show the targeted workspace", cmd.Short)
	assert.NotNil(t, cmd.RunE)

	workspaceFlag := cmd.Flags().Lookup("workspace")
	assert.NotNil(t, workspaceFlag)
	assert.Equal(t, "w", workspaceFlag.Shorthand)
}

func TestNewVersionCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewVersionCommand("1.2.3", "abc123", "2024-06-01")
	assert.Equal(t, "version", cmd.Use)
	assert.Equal(t, "Display version information", cmd.Short)
	assert.NotNil(t, cmd.RunE)
}
