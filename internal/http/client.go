// Package http implements the shared request pipeline underneath every
// resource client: authentication, retry with backoff, response caching,
// interceptors, and error classification.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/fabric/internal/constants"
	"github.com/fivetwenty-io/fabric/pkg/fabric"
)

// TokenProvider supplies bearer tokens for a scope.
type TokenProvider interface {
	GetToken(ctx context.Context, scope string) (string, error)
}

// Request represents an API request.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Headers map[string]string
	Body    interface{}

	// Timeout bounds this call, including retries, when positive. The
	// client default applies when zero.
	Timeout time.Duration

	// MaxRetries overrides the client's retry budget for this call. The
	// value is honored verbatim; zero disables retries.
	MaxRetries *int
}

// Response represents an API response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Client is the HTTP transport shared by all resource clients. A zero
// retry budget turns it into a single-shot transport; by default it retries
// throttled responses, server errors, and connection failures with
// exponential backoff.
type Client struct {
	baseURL      string
	tokens       TokenProvider
	scope        string
	httpClient   *http.Client
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
	timeout      time.Duration
	userAgent    string
	debug        bool
	logger       fabric.Logger
	cache        *fabric.CacheManager
	interceptors *fabric.InterceptorChain
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the structured logger used for debug output.
func WithLogger(logger fabric.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging through the configured logger.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig tunes the retry budget and backoff window.
func WithRetryConfig(maxRetries int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.retryMax = maxRetries
		c.retryWaitMin = waitMin
		c.retryWaitMax = waitMax
	}
}

// WithTimeout sets the default per-call timeout, covering all retry
// attempts of a call.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient makes the client borrow a caller-owned http.Client for its
// connection pool. The borrowed client is never closed or mutated.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithScope sets the token scope requested for API calls.
func WithScope(scope string) Option {
	return func(c *Client) {
		if scope != "" {
			c.scope = scope
		}
	}
}

// WithCache enables response caching for requests the policy admits. A nil
// policy selects the default policy.
func WithCache(cache fabric.Cache, policy *fabric.CachingPolicy) Option {
	return func(c *Client) {
		if cache != nil {
			c.cache = fabric.NewCacheManager(cache, policy)
		}
	}
}

// WithInterceptors installs an interceptor chain run around every request.
func WithInterceptors(chain *fabric.InterceptorChain) Option {
	return func(c *Client) {
		if chain != nil {
			c.interceptors = chain
		}
	}
}

// NewClient creates an HTTP client for the given API base URL. A nil token
// provider sends unauthenticated requests, which is useful against local
// fakes.
func NewClient(baseURL string, tokens TokenProvider, opts ...Option) *Client {
	client := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		tokens:       tokens,
		scope:        constants.DefaultScope,
		httpClient:   &http.Client{},
		retryMax:     constants.DefaultRetryMax,
		retryWaitMin: constants.DefaultRetryWaitMin,
		retryWaitMax: constants.DefaultRetryWaitMax,
		timeout:      constants.DefaultHTTPTimeout,
		userAgent:    "fabric-client-go/1.0",
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// BaseURL returns the API base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do executes a request and returns the response. Responses with error
// status codes are returned together with a classified *fabric.Error so
// callers can inspect both.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}

	if timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	fullURL := c.baseURL + req.Path
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	body, err := encodeBody(req.Body)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}

	headers := c.buildHeaders(req, body != nil)

	cacheKey, cached := c.checkCache(ctx, req, headers)
	if cached != nil && cached.ETag == "" {
		// Fresh entry with nothing to revalidate: serve without a request.
		return &Response{StatusCode: http.StatusOK, Headers: make(http.Header), Body: cached.Data}, nil
	}

	view := &fabric.Request{
		Method:  req.Method,
		Path:    req.Path,
		Headers: headers,
		Body:    body,
	}

	if c.interceptors != nil {
		err = c.interceptors.ExecuteRequestInterceptors(ctx, view)
		if err != nil {
			return nil, err
		}

		body = view.Body
	}

	// The bearer token is attached after interceptors so that a custom
	// Authorization header set by the caller or an interceptor wins.
	if c.tokens != nil && headers.Get("Authorization") == "" {
		token, tokenErr := c.tokens.GetToken(ctx, c.scope)
		if tokenErr != nil {
			return nil, tokenErr
		}

		headers.Set("Authorization", "Bearer "+token)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"path":   req.Path,
			"query":  req.Query.Encode(),
		})
	}

	started := time.Now()

	resp, err := c.send(ctx, req, fullURL, headers, body)
	if err != nil && resp == nil {
		return nil, fabric.ClassifyTransport(err, req.Method, req.Path)
	}
	// A non-nil response alongside an error means the retry budget ran out
	// on a retryable status; the terminal response is classified below.

	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fabric.ClassifyTransport(err, req.Method, req.Path)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method":      req.Method,
			"path":        req.Path,
			"status_code": resp.StatusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		})
	}

	if resp.StatusCode == http.StatusNotModified && cached != nil {
		c.storeCache(ctx, req, cacheKey, http.StatusOK, cached.Data, cached.ETag)

		return &Response{StatusCode: http.StatusOK, Headers: resp.Header, Body: cached.Data}, nil
	}

	response := &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       respBody,
	}

	var apiErr error
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr = fabric.ClassifyResponse(resp.StatusCode, resp.Header, respBody, req.Method, req.Path)
	}

	if c.interceptors != nil {
		interceptErr := c.interceptors.ExecuteResponseInterceptors(ctx, view, &fabric.Response{
			StatusCode: resp.StatusCode,
			Headers:    resp.Header,
			Body:       respBody,
			Error:      apiErr,
		})
		if interceptErr != nil {
			return response, interceptErr
		}
	}

	if apiErr == nil {
		c.storeCache(ctx, req, cacheKey, resp.StatusCode, respBody, resp.Header.Get("ETag"))
	}

	return response, apiErr
}

// send executes the request with retries. Only throttled responses, server
// errors, and transport failures are retried; the terminal response is
// returned for classification instead of being swallowed.
func (c *Client) send(ctx context.Context, req *Request, fullURL string, headers http.Header, body []byte) (*http.Response, error) {
	retryMax := c.retryMax
	if req.MaxRetries != nil {
		retryMax = *req.MaxRetries
	}

	retryClient := &retryablehttp.Client{
		HTTPClient:   c.httpClient,
		RetryMax:     retryMax,
		RetryWaitMin: c.retryWaitMin,
		RetryWaitMax: c.retryWaitMax,
		CheckRetry:   retryPolicy,
		Backoff:      retryBackoff,
		ErrorHandler: retryablehttp.PassthroughErrorHandler,
	}

	var rawBody interface{}
	if body != nil {
		rawBody = body
	}

	retryReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, rawBody)
	if err != nil {
		return nil, err
	}

	for key, values := range headers {
		for _, value := range values {
			retryReq.Header.Add(key, value)
		}
	}

	return retryClient.Do(retryReq)
}

// buildHeaders assembles the outgoing header set from client defaults and
// per-request headers.
func (c *Client) buildHeaders(req *Request, hasBody bool) http.Header {
	headers := make(http.Header)
	headers.Set("Accept", "application/json")
	headers.Set("User-Agent", c.userAgent)
	headers.Set(constants.HeaderClientRequestID, uuid.NewString())

	if hasBody {
		headers.Set("Content-Type", "application/json")
	}

	for key, value := range req.Headers {
		headers.Set(key, value)
	}

	return headers
}

// checkCache looks up a cached response for the request. When a live entry
// carries an ETag, an If-None-Match header is added so the service can
// answer 304.
func (c *Client) checkCache(ctx context.Context, req *Request, headers http.Header) (string, *fabric.CacheEntry) {
	if c.cache == nil || req.Method != http.MethodGet {
		return "", nil
	}

	if !c.cache.Policy().ShouldCache(req.Method, req.Path, http.StatusOK) {
		return "", nil
	}

	key := c.cache.GetCacheKey(req.Method, req.Path, flattenQuery(req.Query))

	entry, err := c.cache.GetEntry(ctx, key)
	if err != nil {
		return key, nil
	}

	if entry.ETag != "" {
		headers.Set("If-None-Match", entry.ETag)
	}

	return key, entry
}

// storeCache stores a response when the policy admits it.
func (c *Client) storeCache(ctx context.Context, req *Request, key string, statusCode int, body []byte, etag string) {
	if c.cache == nil || key == "" {
		return
	}

	if !c.cache.Policy().ShouldCache(req.Method, req.Path, statusCode) {
		return
	}

	_ = c.cache.SetWithETag(ctx, key, body, etag, c.cache.Policy().TTL)
}

// flattenQuery reshapes query values for cache key construction. Repeated
// parameters are comma-joined.
func flattenQuery(query url.Values) map[string]string {
	if len(query) == 0 {
		return nil
	}

	flat := make(map[string]string, len(query))
	for key, values := range query {
		flat[key] = strings.Join(values, ",")
	}

	return flat
}

// encodeBody serializes the request body. Raw bytes pass through untouched
// so retries can replay them.
func encodeBody(body interface{}) ([]byte, error) {
	switch value := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return value, nil
	case io.Reader:
		return io.ReadAll(value)
	default:
		return json.Marshal(value)
	}
}

// retryPolicy decides whether an attempt is repeated. Throttled
// responses, server errors, and connection-level failures are retried;
// every other status returns to the caller after a single attempt. A
// done context always stops the call.
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil {
		return true, nil
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return true, nil
	}

	return false, nil
}

// retryBackoff computes the wait before the next attempt: exponential
// growth from waitMin with uniform jitter in [wait/2, wait), capped at
// waitMax. A parsable Retry-After hint on a throttled or server error
// response overrides the computed wait, capped at waitMax.
func retryBackoff(waitMin, waitMax time.Duration, attemptNum int, resp *http.Response) time.Duration {
	if resp != nil {
		if value := resp.Header.Get(constants.HeaderRetryAfter); value != "" {
			if hint, ok := fabric.ParseRetryAfter(value); ok {
				return min(hint, waitMax)
			}
		}
	}

	wait := waitMin << uint(attemptNum)
	if wait <= 0 || wait > waitMax {
		wait = waitMax
	}

	half := wait / 2
	if half <= 0 {
		return wait
	}

	return half + rand.N(wait-half)
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
	})
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   body,
	})
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPut,
		Path:   path,
		Body:   body,
	})
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPatch,
		Path:   path,
		Body:   body,
	})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodDelete,
		Path:   path,
	})
}
