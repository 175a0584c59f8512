package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/fabric/internal/http"
	"github.com/fivetwenty-io/fabric/pkg/fabric"
)

// WorkspacesClient implements fabric.WorkspacesClient.
type WorkspacesClient struct {
	httpClient *http.Client
}

// NewWorkspacesClient creates a new workspaces client.
func NewWorkspacesClient(httpClient *http.Client) *WorkspacesClient {
	return &WorkspacesClient{httpClient: httpClient}
}

// Create implements fabric.WorkspacesClient.Create.
func (c *WorkspacesClient) Create(ctx context.Context, request *fabric.CreateWorkspaceRequest) (*fabric.Workspace, error) {
	resp, err := c.httpClient.Post(ctx, "/v1/workspaces", request)
	if err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}

	var workspace fabric.Workspace

	err = json.Unmarshal(resp.Body, &workspace)
	if err != nil {
		return nil, fmt.Errorf("parsing workspace: %w", err)
	}

	return &workspace, nil
}

// Get implements fabric.WorkspacesClient.Get.
func (c *WorkspacesClient) Get(ctx context.Context, workspaceID string) (*fabric.Workspace, error) {
	path := "/v1/workspaces/" + workspaceID

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting workspace: %w", err)
	}

	var workspace fabric.Workspace

	err = json.Unmarshal(resp.Body, &workspace)
	if err != nil {
		return nil, fmt.Errorf("parsing workspace: %w", err)
	}

	return &workspace, nil
}

// List implements fabric.WorkspacesClient.List.
func (c *WorkspacesClient) List(ctx context.Context, params *fabric.QueryParams) (*fabric.ListResponse[fabric.Workspace], error) {
	return c.ListWithPath(ctx, "/v1/workspaces", params)
}

// ListWithPath fetches one page of workspaces from the given path, so
// pagination iterators can drive the listing.
func (c *WorkspacesClient) ListWithPath(ctx context.Context, path string, params *fabric.QueryParams) (*fabric.ListResponse[fabric.Workspace], error) {
	var query url.Values
	if params != nil {
		query = params.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, fmt.Errorf("listing workspaces: %w", err)
	}

	var list fabric.ListResponse[fabric.Workspace]

	err = json.Unmarshal(resp.Body, &list)
	if err != nil {
		return nil, fmt.Errorf("parsing workspaces list: %w", err)
	}

	return &list, nil
}

// ListAll implements fabric.WorkspacesClient.ListAll. It walks every
// continuation page.
func (c *WorkspacesClient) ListAll(ctx context.Context) ([]fabric.Workspace, error) {
	iter := fabric.NewPaginationIterator[fabric.Workspace](ctx, c, "/v1/workspaces", nil)

	return iter.All()
}

// Update implements fabric.WorkspacesClient.Update.
func (c *WorkspacesClient) Update(ctx context.Context, workspaceID string, request *fabric.UpdateWorkspaceRequest) (*fabric.Workspace, error) {
	path := "/v1/workspaces/" + workspaceID

	resp, err := c.httpClient.Patch(ctx, path, request)
	if err != nil {
		return nil, fmt.Errorf("updating workspace: %w", err)
	}

	var workspace fabric.Workspace

	err = json.Unmarshal(resp.Body, &workspace)
	if err != nil {
		return nil, fmt.Errorf("parsing workspace: %w", err)
	}

	return &workspace, nil
}

// Delete implements fabric.WorkspacesClient.Delete.
func (c *WorkspacesClient) Delete(ctx context.Context, workspaceID string) error {
	path := "/v1/workspaces/" + workspaceID

	_, err := c.httpClient.Delete(ctx, path)
	if err != nil {
		return fmt.Errorf("deleting workspace: %w", err)
	}

	return nil
}

// AssignToCapacity implements fabric.WorkspacesClient.AssignToCapacity.
func (c *WorkspacesClient) AssignToCapacity(ctx context.Context, workspaceID string, request *fabric.AssignWorkspaceToCapacityRequest) error {
	path := "/v1/workspaces/" + workspaceID + "/assignToCapacity"

	_, err := c.httpClient.Post(ctx, path, request)
	if err != nil {
		return fmt.Errorf("assigning workspace to capacity: %w", err)
	}

	return nil
}

// UnassignFromCapacity implements fabric.WorkspacesClient.UnassignFromCapacity.
func (c *WorkspacesClient) UnassignFromCapacity(ctx context.Context, workspaceID string) error {
	path := "/v1/workspaces/" + workspaceID + "/unassignFromCapacity"

	_, err := c.httpClient.Post(ctx, path, nil)
	if err != nil {
		return fmt.Errorf("unassigning workspace from capacity: %w", err)
	}

	return nil
}
