package fabricclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/fabric/pkg/fabric"
	"github.com/fivetwenty-io/fabric/pkg/fabricclient"
)

func TestNew(t *testing.T) {
	t.Run("creates client with config", func(t *testing.T) {
		t.Parallel()

		config := &fabric.Config{
			APIEndpoint: "https://api.fabric.microsoft.com",
		}

		client, err := fabricclient.New(config)
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("requires config", func(t *testing.T) {
		t.Parallel()

		_, err := fabricclient.New(nil)
		assert.ErrorIs(t, err, fabric.ErrConfigRequired)
	})

	t.Run("requires API endpoint", func(t *testing.T) {
		t.Parallel()

		_, err := fabricclient.New(&fabric.Config{})
		assert.ErrorIs(t, err, fabric.ErrAPIEndpointRequired)
	})

	t.Run("normalizes the endpoint", func(t *testing.T) {
		t.Parallel()

		config := &fabric.Config{
			APIEndpoint: "api.fabric.microsoft.com/",
		}

		_, err := fabricclient.New(config)
		require.NoError(t, err)
		assert.Equal(t, "https://api.fabric.microsoft.com", config.APIEndpoint)
	})

	t.Run("rejects TLS skipping outside development", func(t *testing.T) {
		t.Setenv("FABRIC_DEV_MODE", "")

		config := &fabric.Config{
			APIEndpoint:   "https://localhost:8443",
			SkipTLSVerify: true,
		}

		_, err := fabricclient.New(config)
		assert.ErrorIs(t, err, fabric.ErrSkipTLSOnlyInDev)
	})

	t.Run("allows TLS skipping in development mode", func(t *testing.T) {
		t.Setenv("FABRIC_DEV_MODE", "true")

		config := &fabric.Config{
			APIEndpoint:   "https://localhost:8443",
			SkipTLSVerify: true,
		}

		client, err := fabricclient.New(config)
		require.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestNewWithEndpoint(t *testing.T) {
	t.Parallel()

	client, err := fabricclient.NewWithEndpoint("https://api.fabric.microsoft.com")
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNewWithToken(t *testing.T) {
	t.Parallel()

	client, err := fabricclient.NewWithToken("https://api.fabric.microsoft.com", "test-token")
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNewWithClientCredentials(t *testing.T) {
	t.Parallel()

	client, err := fabricclient.NewWithClientCredentials("https://api.fabric.microsoft.com", "tenant-id", "client-id", "client-secret")
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNewWithUsernamePassword(t *testing.T) {
	t.Parallel()

	client, err := fabricclient.NewWithUsernamePassword("https://api.fabric.microsoft.com", "tenant-id", "client-id", "username", "password")
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestClientIntegration(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/v1/workspaces":
			response := fabric.ListResponse[fabric.Workspace]{
				Value: []fabric.Workspace{
					{ID: "ws-1", DisplayName: "sales-analytics"},
				},
			}
			_ = json.NewEncoder(writer).Encode(response)
		default:
			writer.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, err := fabricclient.NewWithEndpoint(server.URL)
	require.NoError(t, err)

	list, err := client.Workspaces().List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, list.Value, 1)
	assert.Equal(t, "sales-analytics", list.Value[0].DisplayName)
}
