package fabric

import (
	"net/http"
	"time"
)

// ListResponse represents one page of a list endpoint. An empty
// ContinuationToken means the listing is exhausted.
type ListResponse[T any] struct {
	Value             []T    `json:"value"                       yaml:"value"`
	ContinuationToken string `json:"continuationToken,omitempty" yaml:"continuationToken,omitempty"`
	ContinuationURI   string `json:"continuationUri,omitempty"   yaml:"continuationUri,omitempty"`
}

// OperationStatus is the state of a long-running operation.
type OperationStatus string

// Operation states. Canceled is client-side only: it marks a poller
// whose caller gave up, the remote operation keeps running.
const (
	OperationNotStarted OperationStatus = "NotStarted"
	OperationRunning    OperationStatus = "Running"
	OperationSucceeded  OperationStatus = "Succeeded"
	OperationFailed     OperationStatus = "Failed"
	OperationCanceled   OperationStatus = "Canceled"
)

// Terminal reports whether no further transitions can occur.
func (s OperationStatus) Terminal() bool {
	return s == OperationSucceeded || s == OperationFailed || s == OperationCanceled
}

// OperationState is the poll document returned for a long-running
// operation.
type OperationState struct {
	Status             OperationStatus `json:"status"                    yaml:"status"`
	CreatedTimeUTC     time.Time       `json:"createdTimeUtc"            yaml:"createdTimeUtc"`
	LastUpdatedTimeUTC time.Time       `json:"lastUpdatedTimeUtc"        yaml:"lastUpdatedTimeUtc"`
	PercentComplete    int             `json:"percentComplete,omitempty" yaml:"percentComplete,omitempty"`
	Error              *ErrorResponse  `json:"error,omitempty"           yaml:"error,omitempty"`
}

// JobStatus is the state of an item job instance.
type JobStatus string

// Job instance states.
const (
	JobNotStarted JobStatus = "NotStarted"
	JobInProgress JobStatus = "InProgress"
	JobCompleted  JobStatus = "Completed"
	JobFailed     JobStatus = "Failed"
	JobCancelled  JobStatus = "Cancelled"
	JobDeduped    JobStatus = "Deduped"
)

// Terminal reports whether the job can change state again.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobCompleted, JobFailed, JobCancelled, JobDeduped:
		return true
	case JobNotStarted, JobInProgress:
		return false
	default:
		return false
	}
}

// CallOptions is the per-call configuration bundle. Every field has a
// documented default; a nil *CallOptions means all defaults.
type CallOptions struct {
	// Timeout overrides the request deadline for this call. Zero keeps
	// the client-wide HTTP timeout.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// MaxRetries overrides the retry budget for this call. Nil keeps
	// the client-wide budget; zero disables retries entirely.
	MaxRetries *int `json:"maxRetries,omitempty" yaml:"maxRetries,omitempty"`

	// WaitForCompletion makes long-running calls block until the
	// operation reaches a terminal state instead of returning an
	// unresolved Poller. Defaults to false. Honored by the untyped
	// Client.Do escape hatch; the typed resource methods return a
	// Poller instead, whose PollUntilDone provides the same blocking
	// behavior.
	WaitForCompletion bool `json:"waitForCompletion,omitempty" yaml:"waitForCompletion,omitempty"`

	// PollInterval overrides the cadence between status polls for this
	// call's Poller. Zero keeps the client-wide default.
	PollInterval time.Duration `json:"pollInterval,omitempty" yaml:"pollInterval,omitempty"`
}

// RawResponse is an unparsed transport response, returned by the
// untyped Do escape hatch for callers that want the exact bytes.
type RawResponse struct {
	StatusCode int         `json:"statusCode" yaml:"statusCode"`
	Headers    http.Header `json:"-"          yaml:"-"`
	Body       []byte      `json:"-"          yaml:"-"`
}
