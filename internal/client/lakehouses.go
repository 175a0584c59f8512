package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/fabric/internal/http"
	"github.com/fivetwenty-io/fabric/pkg/fabric"
)

// LakehousesClient implements fabric.LakehousesClient.
type LakehousesClient struct {
	httpClient *http.Client
	operations *OperationsClient
}

// NewLakehousesClient creates a new lakehouses client.
func NewLakehousesClient(httpClient *http.Client, operations *OperationsClient) *LakehousesClient {
	return &LakehousesClient{
		httpClient: httpClient,
		operations: operations,
	}
}

// Create implements fabric.LakehousesClient.Create.
func (c *LakehousesClient) Create(ctx context.Context, workspaceID string, request *fabric.CreateLakehouseRequest) (*fabric.Poller[fabric.Lakehouse], error) {
	path := "/v1/workspaces/" + workspaceID + "/lakehouses"

	resp, err := c.httpClient.Post(ctx, path, request)
	if err != nil {
		return nil, fmt.Errorf("creating lakehouse: %w", err)
	}

	return resolveLRO[fabric.Lakehouse](c.operations, resp)
}

// Get implements fabric.LakehousesClient.Get.
func (c *LakehousesClient) Get(ctx context.Context, workspaceID, lakehouseID string) (*fabric.Lakehouse, error) {
	path := "/v1/workspaces/" + workspaceID + "/lakehouses/" + lakehouseID

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting lakehouse: %w", err)
	}

	var lakehouse fabric.Lakehouse

	err = json.Unmarshal(resp.Body, &lakehouse)
	if err != nil {
		return nil, fmt.Errorf("parsing lakehouse: %w", err)
	}

	return &lakehouse, nil
}

// List implements fabric.LakehousesClient.List.
func (c *LakehousesClient) List(ctx context.Context, workspaceID string, params *fabric.QueryParams) (*fabric.ListResponse[fabric.Lakehouse], error) {
	return c.ListWithPath(ctx, "/v1/workspaces/"+workspaceID+"/lakehouses", params)
}

// ListWithPath fetches one page of lakehouses from the given path, so
// pagination iterators can drive the listing.
func (c *LakehousesClient) ListWithPath(ctx context.Context, path string, params *fabric.QueryParams) (*fabric.ListResponse[fabric.Lakehouse], error) {
	var query url.Values
	if params != nil {
		query = params.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, fmt.Errorf("listing lakehouses: %w", err)
	}

	var list fabric.ListResponse[fabric.Lakehouse]

	err = json.Unmarshal(resp.Body, &list)
	if err != nil {
		return nil, fmt.Errorf("parsing lakehouses list: %w", err)
	}

	return &list, nil
}

// Update implements fabric.LakehousesClient.Update.
func (c *LakehousesClient) Update(ctx context.Context, workspaceID, lakehouseID string, request *fabric.UpdateLakehouseRequest) (*fabric.Lakehouse, error) {
	path := "/v1/workspaces/" + workspaceID + "/lakehouses/" + lakehouseID

	resp, err := c.httpClient.Patch(ctx, path, request)
	if err != nil {
		return nil, fmt.Errorf("updating lakehouse: %w", err)
	}

	var lakehouse fabric.Lakehouse

	err = json.Unmarshal(resp.Body, &lakehouse)
	if err != nil {
		return nil, fmt.Errorf("parsing lakehouse: %w", err)
	}

	return &lakehouse, nil
}

// Delete implements fabric.LakehousesClient.Delete.
func (c *LakehousesClient) Delete(ctx context.Context, workspaceID, lakehouseID string) error {
	path := "/v1/workspaces/" + workspaceID + "/lakehouses/" + lakehouseID

	_, err := c.httpClient.Delete(ctx, path)
	if err != nil {
		return fmt.Errorf("deleting lakehouse: %w", err)
	}

	return nil
}

// ListTables implements fabric.LakehousesClient.ListTables.
func (c *LakehousesClient) ListTables(ctx context.Context, workspaceID, lakehouseID string, params *fabric.QueryParams) (*fabric.ListResponse[fabric.Table], error) {
	path := "/v1/workspaces/" + workspaceID + "/lakehouses/" + lakehouseID + "/tables"

	var query url.Values
	if params != nil {
		query = params.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, fmt.Errorf("listing lakehouse tables: %w", err)
	}

	var list fabric.ListResponse[fabric.Table]

	err = json.Unmarshal(resp.Body, &list)
	if err != nil {
		return nil, fmt.Errorf("parsing tables list: %w", err)
	}

	return &list, nil
}

// LoadTable implements fabric.LakehousesClient.LoadTable.
func (c *LakehousesClient) LoadTable(ctx context.Context, workspaceID, lakehouseID, tableName string, request *fabric.LoadTableRequest) (*fabric.Poller[fabric.Empty], error) {
	path := "/v1/workspaces/" + workspaceID + "/lakehouses/" + lakehouseID + "/tables/" + tableName + "/load"

	resp, err := c.httpClient.Post(ctx, path, request)
	if err != nil {
		return nil, fmt.Errorf("loading lakehouse table: %w", err)
	}

	return resolveStatusLRO(c.operations, resp)
}
