package fabric

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrorKind partitions every failure surfaced by the client into one
// category. Resource clients, the pager, and the poller all propagate
// these kinds unchanged.
type ErrorKind string

// Error kinds.
const (
	ErrorKindAuthorization ErrorKind = "authorization"
	ErrorKindNotFound      ErrorKind = "not_found"
	ErrorKindConflict      ErrorKind = "conflict"
	ErrorKindValidation    ErrorKind = "validation"
	ErrorKindThrottled     ErrorKind = "throttled"
	ErrorKindServer        ErrorKind = "server"
	ErrorKindTransport     ErrorKind = "transport"
	ErrorKindCanceled      ErrorKind = "canceled"
	ErrorKindInvalidState  ErrorKind = "invalid_state"
)

// ErrorResponse is the error envelope returned by the API, both as an
// HTTP error body and inside a failed operation's status document.
type ErrorResponse struct {
	ErrorCode   string        `json:"errorCode"             yaml:"errorCode"`
	Message     string        `json:"message"               yaml:"message"`
	RequestID   string        `json:"requestId,omitempty"   yaml:"requestId,omitempty"`
	MoreDetails []ErrorDetail `json:"moreDetails,omitempty" yaml:"moreDetails,omitempty"`
}

// ErrorDetail is one entry of an ErrorResponse's moreDetails list.
type ErrorDetail struct {
	ErrorCode       string           `json:"errorCode,omitempty"       yaml:"errorCode,omitempty"`
	Message         string           `json:"message,omitempty"         yaml:"message,omitempty"`
	RelatedResource *RelatedResource `json:"relatedResource,omitempty" yaml:"relatedResource,omitempty"`
}

// RelatedResource identifies the resource an error detail refers to.
type RelatedResource struct {
	ResourceID   string `json:"resourceId,omitempty"   yaml:"resourceId,omitempty"`
	ResourceType string `json:"resourceType,omitempty" yaml:"resourceType,omitempty"`
}

// Error is the one error type surfaced by the client. It is built once
// per failed call, after retries are exhausted, and carries enough
// context to diagnose the failure without ever including credentials.
type Error struct {
	Kind       ErrorKind      `json:"kind"                  yaml:"kind"`
	StatusCode int            `json:"statusCode,omitempty"  yaml:"statusCode,omitempty"`
	Code       string         `json:"errorCode,omitempty"   yaml:"errorCode,omitempty"`
	Message    string         `json:"message,omitempty"     yaml:"message,omitempty"`
	RequestID  string         `json:"requestId,omitempty"   yaml:"requestId,omitempty"`
	Method     string         `json:"method,omitempty"      yaml:"method,omitempty"`
	Path       string         `json:"path,omitempty"        yaml:"path,omitempty"`
	RetryAfter time.Duration  `json:"-"                     yaml:"-"`
	Payload    map[string]any `json:"-"                     yaml:"-"`

	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.StatusCode > 0 {
		msg = http.StatusText(e.StatusCode)
	}

	if msg == "" {
		msg = "request failed"
	}

	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(": ")

	if e.Code != "" {
		b.WriteString(e.Code)
		b.WriteString(": ")
	}

	b.WriteString(msg)

	var details []string
	if e.Method != "" && e.Path != "" {
		details = append(details, e.Method+" "+e.Path)
	}

	if e.StatusCode > 0 {
		details = append(details, "status "+strconv.Itoa(e.StatusCode))
	}

	if e.RequestID != "" {
		details = append(details, "request "+e.RequestID)
	}

	if len(details) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(details, ", "))
		b.WriteString(")")
	}

	return b.String()
}

// Unwrap exposes the underlying cause, if any, for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *Error) WithCause(err error) *Error {
	clone := *e
	clone.cause = err

	return &clone
}

// Classify maps a terminal HTTP failure onto the error taxonomy. The
// body is decoded best-effort: a malformed or absent body degrades to
// an empty payload and never masks the status-derived kind.
func Classify(statusCode int, body []byte, method, path string) *Error {
	e := &Error{
		Kind:       kindForStatus(statusCode),
		StatusCode: statusCode,
		Method:     method,
		Path:       path,
		Payload:    map[string]any{},
	}

	if len(body) == 0 {
		return e
	}

	var envelope ErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil {
		e.Code = envelope.ErrorCode
		e.Message = envelope.Message
		e.RequestID = envelope.RequestID
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil && payload != nil {
		e.Payload = payload
	}

	return e
}

// ClassifyResponse is Classify plus Retry-After extraction, for callers
// holding the response headers.
func ClassifyResponse(statusCode int, header http.Header, body []byte, method, path string) *Error {
	e := Classify(statusCode, body, method, path)

	if hint, ok := ParseRetryAfter(header.Get("Retry-After")); ok {
		e.RetryAfter = hint
	}

	return e
}

// ClassifyTransport maps a connection-level failure (no status code was
// ever received) onto the taxonomy. Context cancellation is reported as
// its own kind; timeouts and all other network errors are transport
// failures.
func ClassifyTransport(err error, method, path string) *Error {
	kind := ErrorKindTransport
	if errors.Is(err, context.Canceled) {
		kind = ErrorKindCanceled
	}

	return &Error{
		Kind:    kind,
		Message: err.Error(),
		Method:  method,
		Path:    path,
		Payload: map[string]any{},
		cause:   err,
	}
}

// ClassifyOperationFailure maps a failed operation's recorded error
// payload onto the taxonomy using its error code, so a conflict
// reported by an asynchronous job surfaces as a conflict rather than a
// generic server failure.
func ClassifyOperationFailure(opErr *ErrorResponse, operationID string) *Error {
	e := &Error{
		Kind:    ErrorKindServer,
		Method:  http.MethodGet,
		Path:    "/v1/operations/" + operationID,
		Payload: map[string]any{},
	}

	if opErr == nil {
		e.Message = "operation failed"

		return e
	}

	e.Kind = kindForCode(opErr.ErrorCode)
	e.Code = opErr.ErrorCode
	e.Message = opErr.Message
	e.RequestID = opErr.RequestID

	return e
}

func kindForStatus(statusCode int) ErrorKind {
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return ErrorKindAuthorization
	case statusCode == http.StatusNotFound:
		return ErrorKindNotFound
	case statusCode == http.StatusConflict:
		return ErrorKindConflict
	case statusCode == http.StatusTooManyRequests:
		return ErrorKindThrottled
	case statusCode >= http.StatusInternalServerError:
		return ErrorKindServer
	case statusCode >= http.StatusBadRequest:
		return ErrorKindValidation
	default:
		return ErrorKindServer
	}
}

func kindForCode(code string) ErrorKind {
	switch {
	case code == "":
		return ErrorKindServer
	case strings.Contains(code, "Conflict"):
		return ErrorKindConflict
	case strings.HasSuffix(code, "NotFound"):
		return ErrorKindNotFound
	case code == "Unauthorized" || code == "Forbidden" || code == "InsufficientPrivileges" || code == "AuthenticationFailed":
		return ErrorKindAuthorization
	case code == "TooManyRequests" || code == "RequestBlocked" || code == "Throttled":
		return ErrorKindThrottled
	case strings.HasPrefix(code, "Invalid") || code == "BadRequest" || code == "ValidationFailed" || code == "UnsupportedItemType":
		return ErrorKindValidation
	default:
		return ErrorKindServer
	}
}

// ParseRetryAfter interprets a Retry-After header value in either
// delta-seconds or HTTP-date form.
func ParseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0, false
		}

		return time.Duration(secs) * time.Second, true
	}

	if t, err := http.ParseTime(value); err == nil {
		d := time.Until(t)
		if d < 0 {
			d = 0
		}

		return d, true
	}

	return 0, false
}

// Common static errors that can be wrapped with context.
var (
	ErrConfigRequired      = errors.New("config is required")
	ErrAPIEndpointRequired = errors.New("API endpoint is required")
	ErrNoHostInURL         = errors.New("no host specified in URL")
	ErrNoMoreItems         = errors.New("no more items")
	ErrCircuitBreakerOpen  = errors.New("circuit breaker is open")
	ErrSkipTLSOnlyInDev    = errors.New("skipTLS is only allowed in development environments")
	ErrNoCredentials       = errors.New("no valid credentials available")
	ErrNATSURLRequired     = errors.New("NATS URL required for NATS cache")
)

// AsError extracts the typed client error from an error chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}

	return nil, false
}

// kindIs reports whether err carries the given kind.
func kindIs(err error, kind ErrorKind) bool {
	if e, ok := AsError(err); ok {
		return e.Kind == kind
	}

	return false
}

// IsAuthorization checks if the error is an authorization error.
func IsAuthorization(err error) bool {
	return kindIs(err, ErrorKindAuthorization)
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return kindIs(err, ErrorKindNotFound)
}

// IsConflict checks if the error is a conflict error.
func IsConflict(err error) bool {
	return kindIs(err, ErrorKindConflict)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return kindIs(err, ErrorKindValidation)
}

// IsThrottled checks if the error is a throttling error.
func IsThrottled(err error) bool {
	return kindIs(err, ErrorKindThrottled)
}

// IsServer checks if the error is a server-side error.
func IsServer(err error) bool {
	return kindIs(err, ErrorKindServer)
}

// IsTransport checks if the error is a connection-level error.
func IsTransport(err error) bool {
	return kindIs(err, ErrorKindTransport)
}

// IsCanceled checks if the error reports a canceled call or poller.
func IsCanceled(err error) bool {
	return kindIs(err, ErrorKindCanceled)
}

// IsInvalidState checks if the error reports poller misuse.
func IsInvalidState(err error) bool {
	return kindIs(err, ErrorKindInvalidState)
}

// IsRetryable reports whether the error's kind is one the transport
// would have retried (throttling, server-side, or connection-level).
func IsRetryable(err error) bool {
	if e, ok := AsError(err); ok {
		switch e.Kind {
		case ErrorKindThrottled, ErrorKindServer, ErrorKindTransport:
			return true
		case ErrorKindAuthorization, ErrorKindNotFound, ErrorKindConflict,
			ErrorKindValidation, ErrorKindCanceled, ErrorKindInvalidState:
			return false
		}
	}

	return false
}
