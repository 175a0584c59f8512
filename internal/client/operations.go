package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fivetwenty-io/fabric/internal/constants"
	"github.com/fivetwenty-io/fabric/internal/http"
	"github.com/fivetwenty-io/fabric/pkg/fabric"
)

// OperationsClient implements fabric.OperationsClient.
type OperationsClient struct {
	httpClient *http.Client
}

// NewOperationsClient creates a new operations client.
func NewOperationsClient(httpClient *http.Client) *OperationsClient {
	return &OperationsClient{httpClient: httpClient}
}

// Get implements fabric.OperationsClient.Get.
func (c *OperationsClient) Get(ctx context.Context, operationID string) (*fabric.OperationState, error) {
	state, _, err := c.getState(ctx, operationID)

	return state, err
}

// getState fetches the operation state together with the server's
// polling hint from the Retry-After header.
func (c *OperationsClient) getState(ctx context.Context, operationID string) (*fabric.OperationState, time.Duration, error) {
	path := "/v1/operations/" + operationID

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("getting operation: %w", err)
	}

	var state fabric.OperationState

	err = json.Unmarshal(resp.Body, &state)
	if err != nil {
		return nil, 0, fmt.Errorf("parsing operation state: %w", err)
	}

	hint, _ := fabric.ParseRetryAfter(resp.Headers.Get(constants.HeaderRetryAfter))

	return &state, hint, nil
}

// GetResult implements fabric.OperationsClient.GetResult. The payload is
// decoded into result when result is non-nil and the operation produced
// one.
func (c *OperationsClient) GetResult(ctx context.Context, operationID string, result any) error {
	path := "/v1/operations/" + operationID + "/result"

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return fmt.Errorf("getting operation result: %w", err)
	}

	if result == nil || len(resp.Body) == 0 {
		return nil
	}

	err = json.Unmarshal(resp.Body, result)
	if err != nil {
		return fmt.Errorf("parsing operation result: %w", err)
	}

	return nil
}
