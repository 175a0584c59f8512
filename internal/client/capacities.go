package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/fabric/internal/http"
	"github.com/fivetwenty-io/fabric/pkg/fabric"
)

// CapacitiesClient implements fabric.CapacitiesClient.
type CapacitiesClient struct {
	httpClient *http.Client
}

// NewCapacitiesClient creates a new capacities client.
func NewCapacitiesClient(httpClient *http.Client) *CapacitiesClient {
	return &CapacitiesClient{httpClient: httpClient}
}

// List implements fabric.CapacitiesClient.List.
func (c *CapacitiesClient) List(ctx context.Context, params *fabric.QueryParams) (*fabric.ListResponse[fabric.Capacity], error) {
	return c.ListWithPath(ctx, "/v1/capacities", params)
}

// ListWithPath fetches one page of capacities from the given path, so
// pagination iterators can drive the listing.
func (c *CapacitiesClient) ListWithPath(ctx context.Context, path string, params *fabric.QueryParams) (*fabric.ListResponse[fabric.Capacity], error) {
	var query url.Values
	if params != nil {
		query = params.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, fmt.Errorf("listing capacities: %w", err)
	}

	var list fabric.ListResponse[fabric.Capacity]

	err = json.Unmarshal(resp.Body, &list)
	if err != nil {
		return nil, fmt.Errorf("parsing capacities list: %w", err)
	}

	return &list, nil
}
