package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalhttp "github.com/fivetwenty-io/fabric/internal/http"
	"github.com/fivetwenty-io/fabric/pkg/fabric"
)

func TestWorkspacesClient_Create(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/workspaces", r.URL.Path)
		assert.Equal(t, "POST", r.Method)

		var request fabric.CreateWorkspaceRequest
		err := json.NewDecoder(r.Body).Decode(&request)
		require.NoError(t, err)

		assert.Equal(t, "sales-analytics", request.DisplayName)
		assert.Equal(t, "cap-1", request.CapacityID)

		workspace := fabric.Workspace{
			ID:          "ws-1",
			DisplayName: request.DisplayName,
			Description: request.Description,
			Type:        "Workspace",
			CapacityID:  request.CapacityID,
		}

		writeJSON(w, http.StatusCreated, workspace)
	}))
	defer server.Close()

	client := &Client{httpClient: internalhttp.NewClient(server.URL, nil)}
	workspaces := NewWorkspacesClient(client.httpClient)

	workspace, err := workspaces.Create(context.Background(), &fabric.CreateWorkspaceRequest{
		DisplayName: "sales-analytics",
		Description: "quarterly reporting",
		CapacityID:  "cap-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "ws-1", workspace.ID)
	assert.Equal(t, "sales-analytics", workspace.DisplayName)
	assert.Equal(t, "quarterly reporting", workspace.Description)
}

func TestWorkspacesClient_Create_NameTaken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeServiceError(w, http.StatusConflict, "WorkspaceNameAlreadyExists", "a workspace with this name already exists")
	}))
	defer server.Close()

	client := &Client{httpClient: internalhttp.NewClient(server.URL, nil)}
	workspaces := NewWorkspacesClient(client.httpClient)

	workspace, err := workspaces.Create(context.Background(), &fabric.CreateWorkspaceRequest{
		DisplayName: "sales-analytics",
	})
	require.Error(t, err)
	assert.Nil(t, workspace)
	assert.True(t, fabric.IsConflict(err))

	apiErr, ok := fabric.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "WorkspaceNameAlreadyExists", apiErr.Code)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
}

func TestWorkspacesClient_Get(t *testing.T) {
	tests := []TestGetOperation[fabric.Workspace]{
		{
			Name:         "existing workspace",
			ID:           "ws-1",
			ExpectedPath: "/v1/workspaces/ws-1",
			StatusCode:   http.StatusOK,
			Response: &fabric.Workspace{
				ID:          "ws-1",
				DisplayName: "sales-analytics",
			},
		},
		{
			Name:         "unknown workspace",
			ID:           "ws-missing",
			ExpectedPath: "/v1/workspaces/ws-missing",
			StatusCode:   http.StatusNotFound,
			WantErr:      true,
			ErrMessage:   "not found",
		},
	}

	RunGetTests(t, tests, func(c *Client) func(context.Context, string) (*fabric.Workspace, error) {
		return c.Workspaces().Get
	})
}

func TestWorkspacesClient_List(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/workspaces", r.URL.Path)
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "25", r.URL.Query().Get("maxResults"))

		response := fabric.ListResponse[fabric.Workspace]{
			Value: []fabric.Workspace{
				{ID: "ws-1", DisplayName: "sales-analytics"},
				{ID: "ws-2", DisplayName: "marketing"},
			},
			ContinuationToken: "tok-2",
			ContinuationURI:   "https://api.fabric.microsoft.com/v1/workspaces?continuationToken=tok-2",
		}

		writeJSON(w, http.StatusOK, response)
	}))
	defer server.Close()

	client := &Client{httpClient: internalhttp.NewClient(server.URL, nil)}
	workspaces := NewWorkspacesClient(client.httpClient)

	list, err := workspaces.List(context.Background(), fabric.NewQueryParams().WithMaxResults(25))
	require.NoError(t, err)
	assert.Len(t, list.Value, 2)
	assert.Equal(t, "tok-2", list.ContinuationToken)
	assert.Equal(t, "ws-2", list.Value[1].ID)
}

func TestWorkspacesClient_ListAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/workspaces", r.URL.Path)

		var response fabric.ListResponse[fabric.Workspace]

		switch r.URL.Query().Get("continuationToken") {
		case "":
			response = fabric.ListResponse[fabric.Workspace]{
				Value:             []fabric.Workspace{{ID: "ws-1"}, {ID: "ws-2"}},
				ContinuationToken: "tok-2",
			}
		case "tok-2":
			response = fabric.ListResponse[fabric.Workspace]{
				Value: []fabric.Workspace{{ID: "ws-3"}},
			}
		default:
			t.Errorf("unexpected continuation token %q", r.URL.Query().Get("continuationToken"))
		}

		writeJSON(w, http.StatusOK, response)
	}))
	defer server.Close()

	client := &Client{httpClient: internalhttp.NewClient(server.URL, nil)}
	workspaces := NewWorkspacesClient(client.httpClient)

	all, err := workspaces.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "ws-1", all[0].ID)
	assert.Equal(t, "ws-3", all[2].ID)
}

func TestWorkspacesClient_Update(t *testing.T) {
	tests := []TestUpdateOperation[fabric.UpdateWorkspaceRequest, fabric.Workspace]{
		{
			Name:         "rename workspace",
			ID:           "ws-1",
			Request:      &fabric.UpdateWorkspaceRequest{DisplayName: StringPtr("finance")},
			ExpectedPath: "/v1/workspaces/ws-1",
			StatusCode:   http.StatusOK,
			Response:     &fabric.Workspace{ID: "ws-1", DisplayName: "finance"},
		},
		{
			Name:         "invalid rename",
			ID:           "ws-1",
			Request:      &fabric.UpdateWorkspaceRequest{DisplayName: StringPtr("")},
			ExpectedPath: "/v1/workspaces/ws-1",
			StatusCode:   http.StatusBadRequest,
			WantErr:      true,
			ErrMessage:   "invalid",
		},
	}

	RunUpdateTests(t, tests, func(c *Client) func(context.Context, string, *fabric.UpdateWorkspaceRequest) (*fabric.Workspace, error) {
		return c.Workspaces().Update
	})
}

func TestWorkspacesClient_Delete(t *testing.T) {
	tests := []TestDeleteOperation{
		{
			Name:         "existing workspace",
			ID:           "ws-1",
			ExpectedPath: "/v1/workspaces/ws-1",
			StatusCode:   http.StatusOK,
		},
		{
			Name:         "unknown workspace",
			ID:           "ws-missing",
			ExpectedPath: "/v1/workspaces/ws-missing",
			StatusCode:   http.StatusNotFound,
			WantErr:      true,
			ErrMessage:   "not found",
		},
	}

	RunDeleteTests(t, tests, func(c *Client) func(context.Context, string) error {
		return c.Workspaces().Delete
	})
}

func TestWorkspacesClient_AssignToCapacity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/workspaces/ws-1/assignToCapacity", r.URL.Path)
		assert.Equal(t, "POST", r.Method)

		var request fabric.AssignWorkspaceToCapacityRequest
		err := json.NewDecoder(r.Body).Decode(&request)
		require.NoError(t, err)
		assert.Equal(t, "cap-1", request.CapacityID)

		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := &Client{httpClient: internalhttp.NewClient(server.URL, nil)}
	workspaces := NewWorkspacesClient(client.httpClient)

	err := workspaces.AssignToCapacity(context.Background(), "ws-1", &fabric.AssignWorkspaceToCapacityRequest{
		CapacityID: "cap-1",
	})
	require.NoError(t, err)
}

func TestWorkspacesClient_UnassignFromCapacity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/workspaces/ws-1/unassignFromCapacity", r.URL.Path)
		assert.Equal(t, "POST", r.Method)

		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := &Client{httpClient: internalhttp.NewClient(server.URL, nil)}
	workspaces := NewWorkspacesClient(client.httpClient)

	err := workspaces.UnassignFromCapacity(context.Background(), "ws-1")
	require.NoError(t, err)
}
