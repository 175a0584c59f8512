package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fivetwenty-io/fabric/internal/constants"
	internalhttp "github.com/fivetwenty-io/fabric/internal/http"
	"github.com/fivetwenty-io/fabric/pkg/fabric"
)

// Static errors for err113 compliance.
var (
	ErrMissingOperationID = errors.New("accepted response carries no operation id")
)

// acceptedOperation extracts the operation id and the server's polling
// hint from a 202 response. The id comes from the x-ms-operation-id
// header, falling back to the last segment of the Location URL.
func acceptedOperation(resp *internalhttp.Response) (string, time.Duration, error) {
	operationID := resp.Headers.Get(constants.HeaderOperationID)
	if operationID == "" {
		operationID = tailSegment(resp.Headers.Get("Location"))
	}

	if operationID == "" {
		return "", 0, ErrMissingOperationID
	}

	hint, _ := fabric.ParseRetryAfter(resp.Headers.Get(constants.HeaderRetryAfter))

	return operationID, hint, nil
}

// tailSegment returns the last path segment of a URL, without its query.
func tailSegment(location string) string {
	if location == "" {
		return ""
	}

	if parsed, err := url.Parse(location); err == nil {
		location = parsed.Path
	}

	location = strings.TrimSuffix(location, "/")

	idx := strings.LastIndex(location, "/")
	if idx < 0 {
		return location
	}

	return location[idx+1:]
}

// operationPoller builds a poller that tracks an operation through the
// operations endpoint and fetches its result payload once succeeded.
func operationPoller[T any](ops *OperationsClient, operationID string, hint time.Duration) *fabric.Poller[T] {
	poll := func(ctx context.Context) (*fabric.OperationState, time.Duration, error) {
		return ops.getState(ctx, operationID)
	}

	fetch := func(ctx context.Context) (*T, error) {
		var result T

		err := ops.GetResult(ctx, operationID, &result)
		if err != nil {
			return nil, err
		}

		return &result, nil
	}

	var opts []fabric.PollerOption[T]
	if hint > 0 {
		opts = append(opts, fabric.WithPollInterval[T](hint))
	}

	return fabric.NewPoller(operationID, poll, fetch, opts...)
}

// statusPoller builds a poller for operations that never produce a
// result payload.
func statusPoller(ops *OperationsClient, operationID string, hint time.Duration) *fabric.Poller[fabric.Empty] {
	poll := func(ctx context.Context) (*fabric.OperationState, time.Duration, error) {
		return ops.getState(ctx, operationID)
	}

	var opts []fabric.PollerOption[fabric.Empty]
	if hint > 0 {
		opts = append(opts, fabric.WithPollInterval[fabric.Empty](hint))
	}

	return fabric.NewPoller[fabric.Empty](operationID, poll, nil, opts...)
}

// resolveLRO turns a provisioning response into a poller: accepted
// responses poll the operations endpoint, synchronous responses decode
// the body and resolve immediately.
func resolveLRO[T any](ops *OperationsClient, resp *internalhttp.Response) (*fabric.Poller[T], error) {
	if resp.StatusCode == http.StatusAccepted {
		operationID, hint, err := acceptedOperation(resp)
		if err != nil {
			return nil, err
		}

		return operationPoller[T](ops, operationID, hint), nil
	}

	result := new(T)

	if len(resp.Body) > 0 {
		err := json.Unmarshal(resp.Body, result)
		if err != nil {
			return nil, fmt.Errorf("parsing response: %w", err)
		}
	}

	return fabric.NewResolvedPoller(result), nil
}

// resolveStatusLRO is resolveLRO for operations whose success carries no
// payload.
func resolveStatusLRO(ops *OperationsClient, resp *internalhttp.Response) (*fabric.Poller[fabric.Empty], error) {
	if resp.StatusCode == http.StatusAccepted {
		operationID, hint, err := acceptedOperation(resp)
		if err != nil {
			return nil, err
		}

		return statusPoller(ops, operationID, hint), nil
	}

	return fabric.NewResolvedPoller(&fabric.Empty{}), nil
}
