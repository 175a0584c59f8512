package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/fabric/internal/http"
	"github.com/fivetwenty-io/fabric/pkg/fabric"
)

// SQLEndpointsClient implements fabric.SQLEndpointsClient.
type SQLEndpointsClient struct {
	httpClient *http.Client
	operations *OperationsClient
}

// NewSQLEndpointsClient creates a new SQL endpoints client.
func NewSQLEndpointsClient(httpClient *http.Client, operations *OperationsClient) *SQLEndpointsClient {
	return &SQLEndpointsClient{
		httpClient: httpClient,
		operations: operations,
	}
}

// List implements fabric.SQLEndpointsClient.List.
func (c *SQLEndpointsClient) List(ctx context.Context, workspaceID string, params *fabric.QueryParams) (*fabric.ListResponse[fabric.SQLEndpoint], error) {
	path := "/v1/workspaces/" + workspaceID + "/sqlEndpoints"

	var query url.Values
	if params != nil {
		query = params.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, fmt.Errorf("listing SQL endpoints: %w", err)
	}

	var list fabric.ListResponse[fabric.SQLEndpoint]

	err = json.Unmarshal(resp.Body, &list)
	if err != nil {
		return nil, fmt.Errorf("parsing SQL endpoints list: %w", err)
	}

	return &list, nil
}

// RefreshMetadata implements fabric.SQLEndpointsClient.RefreshMetadata.
func (c *SQLEndpointsClient) RefreshMetadata(ctx context.Context, workspaceID, sqlEndpointID string) (*fabric.Poller[fabric.Empty], error) {
	path := "/v1/workspaces/" + workspaceID + "/sqlEndpoints/" + sqlEndpointID + "/refreshMetadata"

	resp, err := c.httpClient.Post(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("refreshing SQL endpoint metadata: %w", err)
	}

	return resolveStatusLRO(c.operations, resp)
}
