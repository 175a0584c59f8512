package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/fabric/pkg/fabric"
)

func TestSQLEndpointsClient_List(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/workspaces/ws-1/sqlEndpoints", r.URL.Path)
		assert.Equal(t, "GET", r.Method)

		writeJSON(w, http.StatusOK, fabric.ListResponse[fabric.SQLEndpoint]{
			Value: []fabric.SQLEndpoint{
				{ID: "sqle-1", WorkspaceID: "ws-1", DisplayName: "bronze", Type: fabric.ItemTypeSQLEndpoint},
			},
		})
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	list, err := client.SQLEndpoints().List(context.Background(), "ws-1", nil)
	require.NoError(t, err)
	require.Len(t, list.Value, 1)
	assert.Equal(t, "sqle-1", list.Value[0].ID)
}

func TestSQLEndpointsClient_RefreshMetadata(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/workspaces/ws-1/sqlEndpoints/sqle-1/refreshMetadata", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)

		w.Header().Set("x-ms-operation-id", "op-refresh")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("/v1/operations/op-refresh", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, fabric.OperationState{Status: fabric.OperationSucceeded})
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewTestClient(server.URL)

	poller, err := client.SQLEndpoints().RefreshMetadata(context.Background(), "ws-1", "sqle-1")
	require.NoError(t, err)

	_, err = poller.PollUntilDone(context.Background())
	require.NoError(t, err)
}

func TestSQLEndpointsClient_RefreshMetadata_Synchronous(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	poller, err := client.SQLEndpoints().RefreshMetadata(context.Background(), "ws-1", "sqle-1")
	require.NoError(t, err)
	assert.True(t, poller.Done())
}
