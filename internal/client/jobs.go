package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/fivetwenty-io/fabric/internal/constants"
	"github.com/fivetwenty-io/fabric/internal/http"
	"github.com/fivetwenty-io/fabric/pkg/fabric"
)

// Static errors for err113 compliance.
var (
	ErrJobFailed          = errors.New("job failed")
	ErrJobCanceled        = errors.New("job was cancelled")
	ErrMissingJobLocation = errors.New("accepted job response carries no Location header")
)

// JobsClient implements fabric.JobsClient.
type JobsClient struct {
	httpClient   *http.Client
	pollInterval time.Duration
	pollTimeout  time.Duration
}

// NewJobsClient creates a new jobs client.
func NewJobsClient(httpClient *http.Client) *JobsClient {
	return &JobsClient{
		httpClient:   httpClient,
		pollInterval: constants.DefaultPollInterval,
		pollTimeout:  constants.DefaultJobPollTimeout,
	}
}

// RunOnDemand implements fabric.JobsClient.RunOnDemand. The service
// answers with the Location of the created instance, which is fetched
// so callers receive the instance state immediately.
func (c *JobsClient) RunOnDemand(ctx context.Context, workspaceID, itemID, jobType string, request *fabric.RunOnDemandJobRequest) (*fabric.JobInstance, error) {
	req := &http.Request{
		Method: "POST",
		Path:   "/v1/workspaces/" + workspaceID + "/items/" + itemID + "/jobs/instances",
		Query:  url.Values{"jobType": []string{jobType}},
	}

	if request != nil {
		req.Body = request
	}

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("running job: %w", err)
	}

	// Some job types return the instance inline.
	if len(resp.Body) > 0 {
		var instance fabric.JobInstance

		err = json.Unmarshal(resp.Body, &instance)
		if err == nil && instance.ID != "" {
			return &instance, nil
		}
	}

	instanceID := tailSegment(resp.Headers.Get("Location"))
	if instanceID == "" {
		return nil, ErrMissingJobLocation
	}

	return c.Get(ctx, workspaceID, itemID, instanceID)
}

// Get implements fabric.JobsClient.Get.
func (c *JobsClient) Get(ctx context.Context, workspaceID, itemID, jobInstanceID string) (*fabric.JobInstance, error) {
	path := "/v1/workspaces/" + workspaceID + "/items/" + itemID + "/jobs/instances/" + jobInstanceID

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting job instance: %w", err)
	}

	var instance fabric.JobInstance

	err = json.Unmarshal(resp.Body, &instance)
	if err != nil {
		return nil, fmt.Errorf("parsing job instance: %w", err)
	}

	return &instance, nil
}

// List implements fabric.JobsClient.List.
func (c *JobsClient) List(ctx context.Context, workspaceID, itemID string, params *fabric.QueryParams) (*fabric.ListResponse[fabric.JobInstance], error) {
	return c.ListWithPath(ctx, "/v1/workspaces/"+workspaceID+"/items/"+itemID+"/jobs/instances", params)
}

// ListWithPath fetches one page of job instances from the given path,
// so pagination iterators can drive the listing.
func (c *JobsClient) ListWithPath(ctx context.Context, path string, params *fabric.QueryParams) (*fabric.ListResponse[fabric.JobInstance], error) {
	var query url.Values
	if params != nil {
		query = params.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, fmt.Errorf("listing job instances: %w", err)
	}

	var list fabric.ListResponse[fabric.JobInstance]

	err = json.Unmarshal(resp.Body, &list)
	if err != nil {
		return nil, fmt.Errorf("parsing job instances list: %w", err)
	}

	return &list, nil
}

// Cancel implements fabric.JobsClient.Cancel. Cancellation is
// asynchronous; poll the instance to observe the Cancelled status.
func (c *JobsClient) Cancel(ctx context.Context, workspaceID, itemID, jobInstanceID string) error {
	path := "/v1/workspaces/" + workspaceID + "/items/" + itemID + "/jobs/instances/" + jobInstanceID + "/cancel"

	_, err := c.httpClient.Post(ctx, path, nil)
	if err != nil {
		return fmt.Errorf("cancelling job instance: %w", err)
	}

	return nil
}

// PollUntilComplete implements fabric.JobsClient.PollUntilComplete.
// It polls the instance until it reaches a terminal status.
func (c *JobsClient) PollUntilComplete(ctx context.Context, workspaceID, itemID, jobInstanceID string) (*fabric.JobInstance, error) {
	pollCtx, cancel := context.WithTimeout(ctx, c.pollTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	// First check immediately
	instance, err := c.Get(pollCtx, workspaceID, itemID, jobInstanceID)
	if err != nil {
		return nil, fmt.Errorf("getting job status: %w", err)
	}

	if instance.Status.Terminal() {
		return instance, jobCompletionError(instance)
	}

	for {
		select {
		case <-pollCtx.Done():
			// Return the last known state on timeout
			return instance, fmt.Errorf("timeout waiting for job to complete: %w", pollCtx.Err())
		case <-ticker.C:
			instance, err = c.Get(pollCtx, workspaceID, itemID, jobInstanceID)
			if err != nil {
				return nil, fmt.Errorf("getting job status: %w", err)
			}

			if instance.Status.Terminal() {
				return instance, jobCompletionError(instance)
			}
		}
	}
}

// jobCompletionError maps a terminal instance to its outcome error.
// Completed and Deduped instances finish cleanly.
func jobCompletionError(instance *fabric.JobInstance) error {
	switch instance.Status {
	case fabric.JobFailed:
		return fmt.Errorf("%w: %s", ErrJobFailed, formatJobFailure(instance))
	case fabric.JobCancelled:
		return ErrJobCanceled
	default:
		return nil
	}
}

// formatJobFailure formats the failure reason for display.
func formatJobFailure(instance *fabric.JobInstance) string {
	if instance.FailureReason == nil {
		return "no error details available"
	}

	if instance.FailureReason.ErrorCode != "" {
		return instance.FailureReason.ErrorCode + ": " + instance.FailureReason.Message
	}

	return instance.FailureReason.Message
}
