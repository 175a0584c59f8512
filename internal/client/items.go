package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/fabric/internal/http"
	"github.com/fivetwenty-io/fabric/pkg/fabric"
)

// ItemsClient implements fabric.ItemsClient.
type ItemsClient struct {
	httpClient *http.Client
	operations *OperationsClient
}

// NewItemsClient creates a new items client.
func NewItemsClient(httpClient *http.Client, operations *OperationsClient) *ItemsClient {
	return &ItemsClient{
		httpClient: httpClient,
		operations: operations,
	}
}

// Create implements fabric.ItemsClient.Create. Item provisioning is
// asynchronous for most item types; the returned poller resolves
// immediately when the service answered with the created item.
func (c *ItemsClient) Create(ctx context.Context, workspaceID string, request *fabric.CreateItemRequest) (*fabric.Poller[fabric.Item], error) {
	path := "/v1/workspaces/" + workspaceID + "/items"

	resp, err := c.httpClient.Post(ctx, path, request)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	return resolveLRO[fabric.Item](c.operations, resp)
}

// Get implements fabric.ItemsClient.Get.
func (c *ItemsClient) Get(ctx context.Context, workspaceID, itemID string) (*fabric.Item, error) {
	path := "/v1/workspaces/" + workspaceID + "/items/" + itemID

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}

	var item fabric.Item

	err = json.Unmarshal(resp.Body, &item)
	if err != nil {
		return nil, fmt.Errorf("parsing item: %w", err)
	}

	return &item, nil
}

// List implements fabric.ItemsClient.List.
func (c *ItemsClient) List(ctx context.Context, workspaceID string, params *fabric.QueryParams) (*fabric.ListResponse[fabric.Item], error) {
	return c.ListWithPath(ctx, "/v1/workspaces/"+workspaceID+"/items", params)
}

// ListWithPath fetches one page of items from the given path, so
// pagination iterators can drive the listing.
func (c *ItemsClient) ListWithPath(ctx context.Context, path string, params *fabric.QueryParams) (*fabric.ListResponse[fabric.Item], error) {
	var query url.Values
	if params != nil {
		query = params.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}

	var list fabric.ListResponse[fabric.Item]

	err = json.Unmarshal(resp.Body, &list)
	if err != nil {
		return nil, fmt.Errorf("parsing items list: %w", err)
	}

	return &list, nil
}

// ListAll implements fabric.ItemsClient.ListAll. It walks every
// continuation page.
func (c *ItemsClient) ListAll(ctx context.Context, workspaceID string) ([]fabric.Item, error) {
	iter := fabric.NewPaginationIterator[fabric.Item](ctx, c, "/v1/workspaces/"+workspaceID+"/items", nil)

	return iter.All()
}

// Update implements fabric.ItemsClient.Update.
func (c *ItemsClient) Update(ctx context.Context, workspaceID, itemID string, request *fabric.UpdateItemRequest) (*fabric.Item, error) {
	path := "/v1/workspaces/" + workspaceID + "/items/" + itemID

	resp, err := c.httpClient.Patch(ctx, path, request)
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}

	var item fabric.Item

	err = json.Unmarshal(resp.Body, &item)
	if err != nil {
		return nil, fmt.Errorf("parsing item: %w", err)
	}

	return &item, nil
}

// Delete implements fabric.ItemsClient.Delete.
func (c *ItemsClient) Delete(ctx context.Context, workspaceID, itemID string) error {
	path := "/v1/workspaces/" + workspaceID + "/items/" + itemID

	_, err := c.httpClient.Delete(ctx, path)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}

	return nil
}

// GetDefinition implements fabric.ItemsClient.GetDefinition. An empty
// format requests the item type's default format.
func (c *ItemsClient) GetDefinition(ctx context.Context, workspaceID, itemID, format string) (*fabric.Poller[fabric.ItemDefinitionResponse], error) {
	req := &http.Request{
		Method: "POST",
		Path:   "/v1/workspaces/" + workspaceID + "/items/" + itemID + "/getDefinition",
	}

	if format != "" {
		req.Query = url.Values{"format": []string{format}}
	}

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("getting item definition: %w", err)
	}

	return resolveLRO[fabric.ItemDefinitionResponse](c.operations, resp)
}

// UpdateDefinition implements fabric.ItemsClient.UpdateDefinition.
func (c *ItemsClient) UpdateDefinition(ctx context.Context, workspaceID, itemID string, request *fabric.UpdateItemDefinitionRequest) (*fabric.Poller[fabric.Empty], error) {
	path := "/v1/workspaces/" + workspaceID + "/items/" + itemID + "/updateDefinition"

	resp, err := c.httpClient.Post(ctx, path, request)
	if err != nil {
		return nil, fmt.Errorf("updating item definition: %w", err)
	}

	return resolveStatusLRO(c.operations, resp)
}
