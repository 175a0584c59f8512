package fabric

import (
	"context"
	"sync"
	"time"

	"github.com/fivetwenty-io/fabric/internal/constants"
)

// Empty is the result type of pollers whose operation produces no result
// payload, such as definition updates and table loads.
type Empty struct{}

// PollFunc fetches the current state of a long-running operation. The
// returned duration is the server's Retry-After hint for the next poll;
// zero means no hint.
type PollFunc func(ctx context.Context) (*OperationState, time.Duration, error)

// ResultFunc fetches the result payload of a succeeded operation. A nil
// ResultFunc marks an operation without a result endpoint.
type ResultFunc[T any] func(ctx context.Context) (*T, error)

// Poller tracks one long-running operation through the NotStarted, Running,
// Succeeded, Failed, Canceled state machine. Transitions are monotonic:
// terminal states absorb all later observations, and a remote status that
// appears to move backward is ignored. A Poller is safe for concurrent use.
type Poller[T any] struct {
	mu          sync.Mutex
	operationID string
	poll        PollFunc
	fetch       ResultFunc[T]
	status      OperationStatus
	interval    time.Duration
	nextWait    time.Duration
	failure     *Error
	result      *T
	canceled    chan struct{}
	cancelOnce  sync.Once
}

// PollerOption configures a Poller.
type PollerOption[T any] func(*Poller[T])

// WithPollInterval sets the cadence between polls. Server Retry-After
// hints override it per poll, capped at the maximum poll interval.
func WithPollInterval[T any](interval time.Duration) PollerOption[T] {
	return func(p *Poller[T]) {
		if interval > 0 {
			p.interval = interval
			p.nextWait = interval
		}
	}
}

// NewPoller creates a poller over an accepted operation. poll drives the
// state machine; fetch retrieves the result once the operation succeeds and
// may be nil for operations without a result payload.
func NewPoller[T any](operationID string, poll PollFunc, fetch ResultFunc[T], opts ...PollerOption[T]) *Poller[T] {
	p := &Poller[T]{
		operationID: operationID,
		poll:        poll,
		fetch:       fetch,
		status:      OperationNotStarted,
		interval:    constants.DefaultPollInterval,
		nextWait:    constants.DefaultPollInterval,
		canceled:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// NewResolvedPoller creates a poller that is already Succeeded with the
// given result. Endpoints that complete synchronously use it so callers see
// one return shape for both outcomes.
func NewResolvedPoller[T any](result *T) *Poller[T] {
	return &Poller[T]{
		status:   OperationSucceeded,
		result:   result,
		interval: constants.DefaultPollInterval,
		nextWait: constants.DefaultPollInterval,
		canceled: make(chan struct{}),
	}
}

// OperationID returns the server-assigned operation id, empty for resolved
// pollers.
func (p *Poller[T]) OperationID() string {
	return p.operationID
}

// Status returns the current state.
func (p *Poller[T]) Status() OperationStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.status
}

// Done reports whether the poller reached a terminal state.
func (p *Poller[T]) Done() bool {
	return p.Status().Terminal()
}

// Poll performs a single status poll and returns the resulting state. On a
// terminal poller it returns immediately without a request. Poll errors are
// returned unchanged and leave the state machine where it was, so the next
// Poll retries the same observation.
func (p *Poller[T]) Poll(ctx context.Context) (OperationStatus, error) {
	p.mu.Lock()
	if p.status.Terminal() {
		status := p.status
		p.mu.Unlock()

		return status, nil
	}
	p.mu.Unlock()

	state, hint, err := p.poll(ctx)
	if err != nil {
		return p.Status(), err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextWait = p.interval
	if hint > 0 {
		p.nextWait = min(hint, constants.MaxPollInterval)
	}

	p.advance(state)

	return p.status, nil
}

// advance applies one observed state. Callers hold p.mu.
func (p *Poller[T]) advance(state *OperationState) {
	if p.status.Terminal() || state == nil {
		return
	}

	switch state.Status {
	case OperationRunning:
		p.status = OperationRunning
	case OperationSucceeded:
		p.status = OperationSucceeded
	case OperationFailed:
		p.status = OperationFailed
		p.failure = ClassifyOperationFailure(state.Error, p.operationID)
	case OperationNotStarted, OperationCanceled:
		// NotStarted after Running would be a regression; Canceled is a
		// local decision, never taken from the wire.
	}
}

// Wait polls at the configured cadence until the operation reaches a
// terminal state, the context expires, or the poller is canceled. A nil
// return means the poller is terminal; inspect Result for the outcome.
// Context errors and poll errors are returned unchanged, leaving the
// poller in its last observed state so Wait can be called again.
func (p *Poller[T]) Wait(ctx context.Context) error {
	for {
		status, err := p.Poll(ctx)
		if err != nil {
			return err
		}

		if status.Terminal() {
			return nil
		}

		p.mu.Lock()
		wait := p.nextWait
		p.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-p.canceled:
			timer.Stop()

			return nil
		case <-ctx.Done():
			timer.Stop()

			return ctx.Err()
		}
	}
}

// Result returns the operation's outcome. Before a terminal state it fails
// with an invalid-state error; after Cancel it fails with a canceled error;
// on Failed it returns the recorded failure with its classified kind. The
// result payload is fetched once and cached.
func (p *Poller[T]) Result(ctx context.Context) (*T, error) {
	p.mu.Lock()
	status := p.status
	failure := p.failure
	result := p.result
	p.mu.Unlock()

	switch status {
	case OperationSucceeded:
		if result != nil {
			return result, nil
		}

		if p.fetch == nil {
			value := new(T)

			p.mu.Lock()
			p.result = value
			p.mu.Unlock()

			return value, nil
		}

		value, err := p.fetch(ctx)
		if err != nil {
			return nil, err
		}

		p.mu.Lock()
		p.result = value
		p.mu.Unlock()

		return value, nil

	case OperationFailed:
		return nil, failure

	case OperationCanceled:
		return nil, &Error{
			Kind:    ErrorKindCanceled,
			Message: "operation polling was canceled",
			Path:    operationPath(p.operationID),
			Payload: map[string]any{},
		}

	case OperationNotStarted, OperationRunning:
		return nil, &Error{
			Kind:    ErrorKindInvalidState,
			Message: "operation has not reached a terminal state",
			Path:    operationPath(p.operationID),
			Payload: map[string]any{},
		}

	default:
		return nil, &Error{
			Kind:    ErrorKindInvalidState,
			Message: "operation is in an unknown state",
			Path:    operationPath(p.operationID),
			Payload: map[string]any{},
		}
	}
}

// Cancel stops future polling. It only marks this poller: the remote
// operation keeps running, and a terminal poller is left untouched. Job
// instances expose remote cancellation as their own resource operation.
func (p *Poller[T]) Cancel() {
	p.mu.Lock()
	if !p.status.Terminal() {
		p.status = OperationCanceled
	}
	p.mu.Unlock()

	p.cancelOnce.Do(func() {
		close(p.canceled)
	})
}

// PollUntilDone waits for the operation to finish and returns its result.
func (p *Poller[T]) PollUntilDone(ctx context.Context) (*T, error) {
	err := p.Wait(ctx)
	if err != nil {
		return nil, err
	}

	return p.Result(ctx)
}

func operationPath(operationID string) string {
	if operationID == "" {
		return ""
	}

	return "/v1/operations/" + operationID
}
