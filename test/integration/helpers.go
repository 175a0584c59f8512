// +build integration

package integration

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	APIEndpoint  string
	TenantID     string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	WorkspaceID  string
	FabPath      string
	Verbose      bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		APIEndpoint:  os.Getenv("FABRIC_API_ENDPOINT"),
		TenantID:     os.Getenv("FABRIC_TENANT_ID"),
		ClientID:     os.Getenv("FABRIC_CLIENT_ID"),
		ClientSecret: os.Getenv("FABRIC_CLIENT_SECRET"),
		Username:     os.Getenv("FABRIC_USERNAME"),
		Password:     os.Getenv("FABRIC_PASSWORD"),
		WorkspaceID:  os.Getenv("FABRIC_WORKSPACE_ID"),
		FabPath:      getFabPath(),
		Verbose:      os.Getenv("FAB_VERBOSE") == "true",
	}
}

// getFabPath determines the path to the fab binary
func getFabPath() string {
	if path := os.Getenv("FAB_BINARY_PATH"); path != "" {
		return path
	}

	// Try common locations
	candidates := []string{
		"../../fab",
		"./fab",
		"../fab",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "fab" // Fallback to PATH
}

// SkipIfMissingConfig skips test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	if config.APIEndpoint == "" {
		t.Skip("FABRIC_API_ENDPOINT not set, skipping integration test")
	}

	if _, err := os.Stat(config.FabPath); os.IsNotExist(err) {
		t.Skipf("fab binary not found at %s, skipping integration test", config.FabPath)
	}
}

// CommandRunner provides utilities for running fab commands
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{
		config: config,
		t:      t,
	}
}

// Run executes a fab command and returns output
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command(runner.config.FabPath, args...)
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.FabPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// RunWithInput executes a fab command with stdin input
func (runner *CommandRunner) RunWithInput(input string, args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command(runner.config.FabPath, args...)
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Stdin = strings.NewReader(input)

	if runner.config.Verbose {
		runner.t.Logf("Running with input: %s %s", runner.config.FabPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// SetupAPITarget registers the Fabric API endpoint
func (runner *CommandRunner) SetupAPITarget() error {
	_, stderr, err := runner.Run("apis", "add", "integration", runner.config.APIEndpoint)
	if err != nil && !strings.Contains(stderr, "already exists") {
		return fmt.Errorf("failed to add API endpoint: %s", stderr)
	}
	return nil
}

// Authenticate logs in for test operations
func (runner *CommandRunner) Authenticate() error {
	if runner.config.Username != "" && runner.config.Password != "" {
		// Use resource owner password grant
		_, stderr, err := runner.Run("login",
			"--api", runner.config.APIEndpoint,
			"--tenant", runner.config.TenantID,
			"--client-id", runner.config.ClientID,
			"--username", runner.config.Username,
			"--password", runner.config.Password)
		if err != nil {
			return fmt.Errorf("failed to authenticate with password grant: %s", stderr)
		}
	} else if runner.config.ClientID != "" && runner.config.ClientSecret != "" {
		// Use client credentials
		_, stderr, err := runner.Run("login",
			"--api", runner.config.APIEndpoint,
			"--tenant", runner.config.TenantID,
			"--client-id", runner.config.ClientID,
			"--client-secret", runner.config.ClientSecret)
		if err != nil {
			return fmt.Errorf("failed to authenticate with client credentials: %s", stderr)
		}
	} else {
		return fmt.Errorf("no authentication credentials provided")
	}
	return nil
}

// GenerateTestName creates a unique test resource name
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().Unix())
}

// CleanupResource attempts to delete a test resource
func (runner *CommandRunner) CleanupResource(resourceType, name string, extra ...string) {
	var args []string
	switch resourceType {
	case "workspace":
		args = []string{"workspaces", "delete", name}
	case "item":
		if len(extra) == 0 {
			runner.t.Logf("Item cleanup for %s requires a workspace", name)
			return
		}
		args = []string{"items", "delete", name, "--workspace", extra[0]}
	default:
		runner.t.Logf("Unknown resource type for cleanup: %s", resourceType)
		return
	}

	stdout, stderr, err := runner.Run(args...)
	if err != nil && runner.config.Verbose {
		runner.t.Logf("Cleanup warning for %s %s: %s\nStderr: %s", resourceType, name, stdout, stderr)
	}
}

// WaitForCondition waits for a condition to be met with timeout
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration, message string) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	timeoutChan := time.After(timeout)

	for {
		select {
		case <-ticker.C:
			if condition() {
				return
			}
		case <-timeoutChan:
			t.Fatalf("Timeout waiting for condition: %s", message)
		}
	}
}

// AssertJSONOutput verifies command output is valid JSON
func AssertJSONOutput(t *testing.T, output string) {
	// Basic JSON validation
	output = strings.TrimSpace(output)
	if !strings.HasPrefix(output, "{") && !strings.HasPrefix(output, "[") {
		t.Errorf("Output does not appear to be JSON: %s", output)
	}
}

// AssertYAMLOutput verifies command output is valid YAML
func AssertYAMLOutput(t *testing.T, output string) {
	// Basic YAML validation
	output = strings.TrimSpace(output)
	if strings.Contains(output, "---") || strings.Contains(output, ":") {
		return // Looks like YAML
	}
	t.Errorf("Output does not appear to be YAML: %s", output)
}
