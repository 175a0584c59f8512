package client

import (
	"context"
	"net/http"

	internalhttp "github.com/fivetwenty-io/fabric/internal/http"
	"github.com/fivetwenty-io/fabric/pkg/fabric"
)

// Do implements fabric.RawClient. The response is returned as received,
// with no decoding beyond error classification. With WaitForCompletion
// set, an accepted response is tracked through the operations endpoint
// and the final result payload (or operation state) is returned instead.
func (c *Client) Do(ctx context.Context, method, path string, body any, opts *fabric.CallOptions) (*fabric.RawResponse, error) {
	req := &internalhttp.Request{
		Method: method,
		Path:   path,
		Body:   body,
	}

	if opts != nil {
		req.Timeout = opts.Timeout
		req.MaxRetries = opts.MaxRetries
	}

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	if opts != nil && opts.WaitForCompletion && resp.StatusCode == http.StatusAccepted {
		return c.awaitOperation(ctx, resp, opts)
	}

	return rawResponse(resp), nil
}

// awaitOperation polls the operation behind an accepted response until
// it is terminal, then returns its result payload. Operations without a
// result payload yield the final operation state instead.
func (c *Client) awaitOperation(ctx context.Context, resp *internalhttp.Response, opts *fabric.CallOptions) (*fabric.RawResponse, error) {
	operationID, hint, err := acceptedOperation(resp)
	if err != nil {
		return nil, err
	}

	if opts.PollInterval > 0 {
		hint = opts.PollInterval
	}

	poller := statusPoller(c.operations, operationID, hint)

	err = poller.Wait(ctx)
	if err != nil {
		return nil, err
	}

	if poller.Status() == fabric.OperationFailed {
		_, err = poller.Result(ctx)

		return nil, err
	}

	resultResp, err := c.httpClient.Get(ctx, "/v1/operations/"+operationID+"/result", nil)
	if err != nil {
		// Operations without a result payload reject this endpoint;
		// the final state is the best answer available.
		stateResp, stateErr := c.httpClient.Get(ctx, "/v1/operations/"+operationID, nil)
		if stateErr != nil {
			return nil, stateErr
		}

		return rawResponse(stateResp), nil
	}

	return rawResponse(resultResp), nil
}

func rawResponse(resp *internalhttp.Response) *fabric.RawResponse {
	return &fabric.RawResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
	}
}
