package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalhttp "github.com/fivetwenty-io/fabric/internal/http"
	"github.com/fivetwenty-io/fabric/pkg/fabric"
)

func TestOperationsClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/operations/op-1", r.URL.Path)
		assert.Equal(t, "GET", r.Method)

		writeJSON(w, http.StatusOK, fabric.OperationState{
			Status:          fabric.OperationRunning,
			PercentComplete: 40,
		})
	}))
	defer server.Close()

	operations := NewOperationsClient(internalhttp.NewClient(server.URL, nil))

	state, err := operations.Get(context.Background(), "op-1")
	require.NoError(t, err)
	assert.Equal(t, fabric.OperationRunning, state.Status)
	assert.Equal(t, 40, state.PercentComplete)
}

func TestOperationsClient_Get_Unknown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeServiceError(w, http.StatusNotFound, "OperationNotFound", "the operation does not exist")
	}))
	defer server.Close()

	operations := NewOperationsClient(internalhttp.NewClient(server.URL, nil))

	state, err := operations.Get(context.Background(), "op-missing")
	require.Error(t, err)
	assert.Nil(t, state)
	assert.True(t, fabric.IsNotFound(err))
}

func TestOperationsClient_GetState_RetryAfterHint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "15")
		writeJSON(w, http.StatusOK, fabric.OperationState{Status: fabric.OperationRunning})
	}))
	defer server.Close()

	operations := NewOperationsClient(internalhttp.NewClient(server.URL, nil))

	state, hint, err := operations.getState(context.Background(), "op-1")
	require.NoError(t, err)
	assert.Equal(t, fabric.OperationRunning, state.Status)
	assert.Equal(t, 15*time.Second, hint)
}

func TestOperationsClient_GetState_NoHint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, fabric.OperationState{Status: fabric.OperationRunning})
	}))
	defer server.Close()

	operations := NewOperationsClient(internalhttp.NewClient(server.URL, nil))

	_, hint, err := operations.getState(context.Background(), "op-1")
	require.NoError(t, err)
	assert.Zero(t, hint)
}

func TestOperationsClient_GetResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/operations/op-1/result", r.URL.Path)

		writeJSON(w, http.StatusOK, fabric.Item{ID: "item-1", DisplayName: "daily-ingest"})
	}))
	defer server.Close()

	operations := NewOperationsClient(internalhttp.NewClient(server.URL, nil))

	var item fabric.Item

	err := operations.GetResult(context.Background(), "op-1", &item)
	require.NoError(t, err)
	assert.Equal(t, "item-1", item.ID)
}

func TestOperationsClient_GetResult_NilTarget(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, fabric.Item{ID: "item-1"})
	}))
	defer server.Close()

	operations := NewOperationsClient(internalhttp.NewClient(server.URL, nil))

	err := operations.GetResult(context.Background(), "op-1", nil)
	assert.NoError(t, err)
}

func TestAcceptedOperation(t *testing.T) {
	resp := &internalhttp.Response{
		StatusCode: http.StatusAccepted,
		Headers:    http.Header{},
	}
	resp.Headers.Set("x-ms-operation-id", "op-1")
	resp.Headers.Set("Retry-After", "30")

	id, hint, err := acceptedOperation(resp)
	require.NoError(t, err)
	assert.Equal(t, "op-1", id)
	assert.Equal(t, 30*time.Second, hint)
}

func TestAcceptedOperation_LocationOnly(t *testing.T) {
	resp := &internalhttp.Response{
		StatusCode: http.StatusAccepted,
		Headers:    http.Header{},
	}
	resp.Headers.Set("Location", "https://api.fabric.microsoft.com/v1/operations/op-2/")

	id, _, err := acceptedOperation(resp)
	require.NoError(t, err)
	assert.Equal(t, "op-2", id)
}

func TestAcceptedOperation_NoIdentifiers(t *testing.T) {
	resp := &internalhttp.Response{
		StatusCode: http.StatusAccepted,
		Headers:    http.Header{},
	}

	_, _, err := acceptedOperation(resp)
	assert.ErrorIs(t, err, ErrMissingOperationID)
}

func TestTailSegment(t *testing.T) {
	assert.Equal(t, "op-1", tailSegment("https://api.fabric.microsoft.com/v1/operations/op-1"))
	assert.Equal(t, "op-1", tailSegment("https://api.fabric.microsoft.com/v1/operations/op-1/"))
	assert.Equal(t, "op-1", tailSegment("/v1/operations/op-1"))
	assert.Equal(t, "op-3", tailSegment("https://api.fabric.microsoft.com/v1/operations/op-3?api-version=1"))
	assert.Empty(t, tailSegment(""))
}
