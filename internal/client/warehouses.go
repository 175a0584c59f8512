package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/fabric/internal/http"
	"github.com/fivetwenty-io/fabric/pkg/fabric"
)

// WarehousesClient implements fabric.WarehousesClient.
type WarehousesClient struct {
	httpClient *http.Client
	operations *OperationsClient
}

// NewWarehousesClient creates a new warehouses client.
func NewWarehousesClient(httpClient *http.Client, operations *OperationsClient) *WarehousesClient {
	return &WarehousesClient{
		httpClient: httpClient,
		operations: operations,
	}
}

// Create implements fabric.WarehousesClient.Create.
func (c *WarehousesClient) Create(ctx context.Context, workspaceID string, request *fabric.CreateWarehouseRequest) (*fabric.Poller[fabric.Warehouse], error) {
	path := "/v1/workspaces/" + workspaceID + "/warehouses"

	resp, err := c.httpClient.Post(ctx, path, request)
	if err != nil {
		return nil, fmt.Errorf("creating warehouse: %w", err)
	}

	return resolveLRO[fabric.Warehouse](c.operations, resp)
}

// Get implements fabric.WarehousesClient.Get.
func (c *WarehousesClient) Get(ctx context.Context, workspaceID, warehouseID string) (*fabric.Warehouse, error) {
	path := "/v1/workspaces/" + workspaceID + "/warehouses/" + warehouseID

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting warehouse: %w", err)
	}

	var warehouse fabric.Warehouse

	err = json.Unmarshal(resp.Body, &warehouse)
	if err != nil {
		return nil, fmt.Errorf("parsing warehouse: %w", err)
	}

	return &warehouse, nil
}

// List implements fabric.WarehousesClient.List.
func (c *WarehousesClient) List(ctx context.Context, workspaceID string, params *fabric.QueryParams) (*fabric.ListResponse[fabric.Warehouse], error) {
	return c.ListWithPath(ctx, "/v1/workspaces/"+workspaceID+"/warehouses", params)
}

// ListWithPath fetches one page of warehouses from the given path, so
// pagination iterators can drive the listing.
func (c *WarehousesClient) ListWithPath(ctx context.Context, path string, params *fabric.QueryParams) (*fabric.ListResponse[fabric.Warehouse], error) {
	var query url.Values
	if params != nil {
		query = params.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, fmt.Errorf("listing warehouses: %w", err)
	}

	var list fabric.ListResponse[fabric.Warehouse]

	err = json.Unmarshal(resp.Body, &list)
	if err != nil {
		return nil, fmt.Errorf("parsing warehouses list: %w", err)
	}

	return &list, nil
}

// Update implements fabric.WarehousesClient.Update.
func (c *WarehousesClient) Update(ctx context.Context, workspaceID, warehouseID string, request *fabric.UpdateWarehouseRequest) (*fabric.Warehouse, error) {
	path := "/v1/workspaces/" + workspaceID + "/warehouses/" + warehouseID

	resp, err := c.httpClient.Patch(ctx, path, request)
	if err != nil {
		return nil, fmt.Errorf("updating warehouse: %w", err)
	}

	var warehouse fabric.Warehouse

	err = json.Unmarshal(resp.Body, &warehouse)
	if err != nil {
		return nil, fmt.Errorf("parsing warehouse: %w", err)
	}

	return &warehouse, nil
}

// Delete implements fabric.WarehousesClient.Delete.
func (c *WarehousesClient) Delete(ctx context.Context, workspaceID, warehouseID string) error {
	path := "/v1/workspaces/" + workspaceID + "/warehouses/" + warehouseID

	_, err := c.httpClient.Delete(ctx, path)
	if err != nil {
		return fmt.Errorf("deleting warehouse: %w", err)
	}

	return nil
}
