package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fabrichttp "github.com/fivetwenty-io/fabric/internal/http"
	"github.com/fivetwenty-io/fabric/pkg/fabric"
)

// MockTokenProvider for testing.
type MockTokenProvider struct {
	token string
	err   error
	calls int32
	scope string
}

func (m *MockTokenProvider) GetToken(_ context.Context, scope string) (string, error) {
	atomic.AddInt32(&m.calls, 1)
	m.scope = scope

	return m.token, m.err
}

// MockLogger for testing.
type MockLogger struct {
	logs []map[string]interface{}
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "debug", "msg": msg, "fields": fields})
}

func (l *MockLogger) Info(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "info", "msg": msg, "fields": fields})
}

func (l *MockLogger) Warn(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "warn", "msg": msg, "fields": fields})
}

func (l *MockLogger) Error(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "error", "msg": msg, "fields": fields})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Do(t *testing.T) {
	t.Parallel()
	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/v1/workspaces", request.URL.Path)
			assert.Equal(t, "GET", request.Method)
			assert.Equal(t, "Bearer test-token", request.Header.Get("Authorization"))
			assert.Equal(t, "application/json", request.Header.Get("Accept"))
			assert.NotEmpty(t, request.Header.Get("x-ms-client-request-id"))

			response := map[string]string{"id": "ws-1", "displayName": "Sales"}
			_ = json.NewEncoder(writer).Encode(response)
		}))
		defer server.Close()

		tokens := &MockTokenProvider{token: "test-token"}
		client := fabrichttp.NewClient(server.URL, tokens)

		req := &fabrichttp.Request{
			Method: "GET",
			Path:   "/v1/workspaces",
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var result map[string]string

		err = json.Unmarshal(resp.Body, &result)
		require.NoError(t, err)
		assert.Equal(t, "ws-1", result["id"])
		assert.Equal(t, "Sales", result["displayName"])
	})

	t.Run("requests the configured scope", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		tokens := &MockTokenProvider{token: "test-token"}
		client := fabrichttp.NewClient(server.URL, tokens, fabrichttp.WithScope("custom/.default"))

		_, err := client.Get(context.Background(), "/v1/workspaces", nil)
		require.NoError(t, err)
		assert.Equal(t, "custom/.default", tokens.scope)
	})

	t.Run("token failure aborts before the request", func(t *testing.T) {
		t.Parallel()

		var hits int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			atomic.AddInt32(&hits, 1)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		denied := &fabric.Error{Kind: fabric.ErrorKindAuthorization, Message: "denied"}
		tokens := &MockTokenProvider{err: denied}
		client := fabrichttp.NewClient(server.URL, tokens)

		_, err := client.Get(context.Background(), "/v1/workspaces", nil)
		require.Error(t, err)
		assert.True(t, fabric.IsAuthorization(err))
		assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
	})

	t.Run("request with query parameters", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/v1/workspaces", request.URL.Path)
			assert.Equal(t, "continuationToken=tok-2", request.URL.RawQuery)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := fabrichttp.NewClient(server.URL, nil)

		req := &fabrichttp.Request{
			Method: "GET",
			Path:   "/v1/workspaces",
			Query:  url.Values{"continuationToken": []string{"tok-2"}},
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("request with body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "POST", request.Method)
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

			var body map[string]string

			_ = json.NewDecoder(request.Body).Decode(&body)
			assert.Equal(t, "Sales", body["displayName"])

			writer.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		client := fabrichttp.NewClient(server.URL, nil)

		req := &fabrichttp.Request{
			Method: "POST",
			Path:   "/v1/workspaces",
			Body:   map[string]string{"displayName": "Sales"},
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 201, resp.StatusCode)
	})

	t.Run("error response is classified", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNotFound)

			response := fabric.ErrorResponse{
				ErrorCode: "ItemNotFound",
				Message:   "Workspace not found",
				RequestID: "req-42",
			}
			_ = json.NewEncoder(writer).Encode(response)
		}))
		defer server.Close()

		client := fabrichttp.NewClient(server.URL, nil)

		req := &fabrichttp.Request{
			Method: "GET",
			Path:   "/v1/workspaces/invalid",
		}

		resp, err := client.Do(context.Background(), req)
		require.Error(t, err)
		assert.Equal(t, 404, resp.StatusCode)

		apiErr, ok := fabric.AsError(err)
		require.True(t, ok)
		assert.Equal(t, fabric.ErrorKindNotFound, apiErr.Kind)
		assert.Equal(t, "ItemNotFound", apiErr.Code)
		assert.Equal(t, "req-42", apiErr.RequestID)
		assert.Equal(t, "/v1/workspaces/invalid", apiErr.Path)
	})

	t.Run("malformed error body still classifies by status", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusForbidden)
			_, _ = writer.Write([]byte("<html>forbidden</html>"))
		}))
		defer server.Close()

		client := fabrichttp.NewClient(server.URL, nil)

		_, err := client.Get(context.Background(), "/v1/workspaces", nil)
		require.Error(t, err)
		assert.True(t, fabric.IsAuthorization(err))
	})

	t.Run("custom headers", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "custom-value", request.Header.Get("X-Custom-Header"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := fabrichttp.NewClient(server.URL, nil)

		req := &fabrichttp.Request{
			Method: "GET",
			Path:   "/v1/workspaces",
			Headers: map[string]string{
				"X-Custom-Header": "custom-value",
			},
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("with debug logging", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(writer).Encode(map[string]string{"result": "ok"})
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := fabrichttp.NewClient(server.URL, nil, fabrichttp.WithLogger(logger), fabrichttp.WithDebug(true))

		req := &fabrichttp.Request{
			Method: "GET",
			Path:   "/v1/workspaces",
		}

		_, err := client.Do(context.Background(), req)
		require.NoError(t, err)

		// Should have logged request and response
		assert.Len(t, logger.logs, 2)
		assert.Equal(t, "HTTP Request", logger.logs[0]["msg"])
		assert.Equal(t, "HTTP Response", logger.logs[1]["msg"])
	})

	t.Run("borrowed http client is used", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		var rounds int32

		borrowed := &http.Client{
			Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
				atomic.AddInt32(&rounds, 1)

				return http.DefaultTransport.RoundTrip(req)
			}),
		}

		client := fabrichttp.NewClient(server.URL, nil, fabrichttp.WithHTTPClient(borrowed))

		_, err := client.Get(context.Background(), "/v1/workspaces", nil)
		require.NoError(t, err)
		assert.Equal(t, int32(1), atomic.LoadInt32(&rounds))
	})
}

// roundTripFunc adapts a function to http.RoundTripper.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Methods(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		fn     func(*fabrichttp.Client, context.Context) (*fabrichttp.Response, error)
	}{
		{
			name:   "GET",
			method: "GET",
			fn: func(c *fabrichttp.Client, ctx context.Context) (*fabrichttp.Response, error) {
				return c.Get(ctx, "/test", nil)
			},
		},
		{
			name:   "POST",
			method: "POST",
			fn: func(c *fabrichttp.Client, ctx context.Context) (*fabrichttp.Response, error) {
				return c.Post(ctx, "/test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "PUT",
			method: "PUT",
			fn: func(c *fabrichttp.Client, ctx context.Context) (*fabrichttp.Response, error) {
				return c.Put(ctx, "/test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "PATCH",
			method: "PATCH",
			fn: func(c *fabrichttp.Client, ctx context.Context) (*fabrichttp.Response, error) {
				return c.Patch(ctx, "/test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "DELETE",
			method: "DELETE",
			fn: func(c *fabrichttp.Client, ctx context.Context) (*fabrichttp.Response, error) {
				return c.Delete(ctx, "/test")
			},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, testCase.method, request.Method)
				assert.Equal(t, "/test", request.URL.Path)
				writer.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			client := fabrichttp.NewClient(server.URL, nil)
			resp, err := testCase.fn(client, context.Background())
			require.NoError(t, err)
			assert.Equal(t, 200, resp.StatusCode)
		})
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_RetryLogic(t *testing.T) {
	t.Parallel()
	t.Run("retries on 5xx errors", func(t *testing.T) {
		t.Parallel()

		attempts := 0

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts++
			if attempts < 3 {
				writer.WriteHeader(http.StatusInternalServerError)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := fabrichttp.NewClient(server.URL, nil, fabrichttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, 3, attempts)
	})

	t.Run("retries on rate limiting", func(t *testing.T) {
		t.Parallel()

		attempts := 0

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts++
			if attempts < 2 {
				writer.WriteHeader(http.StatusTooManyRequests)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := fabrichttp.NewClient(server.URL, nil, fabrichttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, 2, attempts)
	})

	t.Run("honors Retry-After on throttled responses", func(t *testing.T) {
		t.Parallel()

		attempts := 0

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts++
			if attempts == 1 {
				writer.Header().Set("Retry-After", "1")
				writer.WriteHeader(http.StatusTooManyRequests)
			} else {
				writer.WriteHeader(http.StatusCreated)
			}
		}))
		defer server.Close()

		client := fabrichttp.NewClient(server.URL, nil, fabrichttp.WithRetryConfig(3, 10*time.Millisecond, 30*time.Second))

		started := time.Now()
		resp, err := client.Post(context.Background(), "/v1/workspaces", map[string]string{"displayName": "x"})
		elapsed := time.Since(started)

		require.NoError(t, err)
		assert.Equal(t, 201, resp.StatusCode)
		assert.Equal(t, 2, attempts)
		assert.GreaterOrEqual(t, elapsed, time.Second)
	})

	t.Run("caps Retry-After at the backoff ceiling", func(t *testing.T) {
		t.Parallel()

		attempts := 0

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts++
			if attempts == 1 {
				writer.Header().Set("Retry-After", "3600")
				writer.WriteHeader(http.StatusTooManyRequests)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := fabrichttp.NewClient(server.URL, nil, fabrichttp.WithRetryConfig(3, 10*time.Millisecond, 50*time.Millisecond))

		started := time.Now()
		resp, err := client.Get(context.Background(), "/test", nil)
		elapsed := time.Since(started)

		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, 2, attempts)
		assert.Less(t, elapsed, time.Second)
	})

	t.Run("does not retry on client errors", func(t *testing.T) {
		t.Parallel()

		attempts := 0

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts++

			writer.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := fabrichttp.NewClient(server.URL, nil, fabrichttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.Error(t, err)
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, 1, attempts) // Should not retry
	})

	t.Run("per-call retry budget is honored verbatim", func(t *testing.T) {
		t.Parallel()

		attempts := 0

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts++

			writer.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := fabrichttp.NewClient(server.URL, nil, fabrichttp.WithRetryConfig(5, 10*time.Millisecond, 100*time.Millisecond))

		zero := 0
		req := &fabrichttp.Request{
			Method:     "GET",
			Path:       "/test",
			MaxRetries: &zero,
		}

		resp, err := client.Do(context.Background(), req)
		require.Error(t, err)
		assert.Equal(t, 503, resp.StatusCode)
		assert.Equal(t, 1, attempts)
	})

	t.Run("terminal retryable status is classified, not swallowed", func(t *testing.T) {
		t.Parallel()

		attempts := 0

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts++
			writer.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(writer).Encode(fabric.ErrorResponse{
				ErrorCode: "ServiceUnavailable",
				Message:   "try again later",
			})
		}))
		defer server.Close()

		client := fabrichttp.NewClient(server.URL, nil, fabrichttp.WithRetryConfig(2, 5*time.Millisecond, 20*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.Error(t, err)
		assert.Equal(t, 503, resp.StatusCode)
		assert.Equal(t, 3, attempts) // initial try plus two retries

		apiErr, ok := fabric.AsError(err)
		require.True(t, ok)
		assert.Equal(t, fabric.ErrorKindServer, apiErr.Kind)
		assert.Equal(t, "ServiceUnavailable", apiErr.Code)
	})

	t.Run("transport failures are retried and classified", func(t *testing.T) {
		t.Parallel()

		client := fabrichttp.NewClient("http://127.0.0.1:1", nil, fabrichttp.WithRetryConfig(1, 5*time.Millisecond, 20*time.Millisecond))

		_, err := client.Get(context.Background(), "/test", nil)
		require.Error(t, err)
		assert.True(t, fabric.IsTransport(err))
	})
}

func TestClient_ResponseCache(t *testing.T) {
	t.Parallel()
	t.Run("cache hit is served without a network call", func(t *testing.T) {
		t.Parallel()

		var hits int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			atomic.AddInt32(&hits, 1)
			_ = json.NewEncoder(writer).Encode(map[string]string{"id": "ws-1", "displayName": "Sales"})
		}))
		defer server.Close()

		client := fabrichttp.NewClient(server.URL, nil, fabrichttp.WithCache(fabric.NewMemoryCache(10), nil))

		first, err := client.Get(context.Background(), "/v1/workspaces", nil)
		require.NoError(t, err)
		require.Equal(t, 200, first.StatusCode)
		require.Equal(t, int32(1), atomic.LoadInt32(&hits))

		second, err := client.Get(context.Background(), "/v1/workspaces", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, second.StatusCode)
		assert.Equal(t, first.Body, second.Body)
		assert.Equal(t, int32(1), atomic.LoadInt32(&hits)) // served from cache
	})

	t.Run("not-modified revalidation serves the cached body", func(t *testing.T) {
		t.Parallel()

		var hits int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if atomic.AddInt32(&hits, 1) == 1 {
				writer.Header().Set("ETag", `"v1"`)
				_ = json.NewEncoder(writer).Encode(map[string]string{"id": "ws-1", "displayName": "Sales"})

				return
			}

			assert.Equal(t, `"v1"`, request.Header.Get("If-None-Match"))
			writer.WriteHeader(http.StatusNotModified)
		}))
		defer server.Close()

		client := fabrichttp.NewClient(server.URL, nil, fabrichttp.WithCache(fabric.NewMemoryCache(10), nil))

		first, err := client.Get(context.Background(), "/v1/workspaces", nil)
		require.NoError(t, err)
		require.Equal(t, 200, first.StatusCode)

		second, err := client.Get(context.Background(), "/v1/workspaces", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, second.StatusCode)
		assert.Equal(t, first.Body, second.Body)
		assert.Equal(t, int32(2), atomic.LoadInt32(&hits)) // revalidated, not re-fetched
	})

	t.Run("mutating methods bypass the cache", func(t *testing.T) {
		t.Parallel()

		var hits int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			atomic.AddInt32(&hits, 1)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := fabrichttp.NewClient(server.URL, nil, fabrichttp.WithCache(fabric.NewMemoryCache(10), nil))

		for range 2 {
			_, err := client.Post(context.Background(), "/v1/workspaces", map[string]string{"displayName": "Sales"})
			require.NoError(t, err)
		}

		assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	})
}
