package fabric_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/fabric/pkg/fabric"
)

// MockClient implements fabric.Client for testing
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Workspaces() fabric.WorkspacesClient {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(fabric.WorkspacesClient)
}

func (m *MockClient) Items() fabric.ItemsClient {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(fabric.ItemsClient)
}

func (m *MockClient) Lakehouses() fabric.LakehousesClient {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(fabric.LakehousesClient)
}

func (m *MockClient) Warehouses() fabric.WarehousesClient {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(fabric.WarehousesClient)
}

func (m *MockClient) SQLEndpoints() fabric.SQLEndpointsClient {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(fabric.SQLEndpointsClient)
}

func (m *MockClient) Jobs() fabric.JobsClient {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(fabric.JobsClient)
}

func (m *MockClient) Operations() fabric.OperationsClient {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(fabric.OperationsClient)
}

func (m *MockClient) Capacities() fabric.CapacitiesClient {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(fabric.CapacitiesClient)
}

func (m *MockClient) Do(ctx context.Context, method, path string, body any, opts *fabric.CallOptions) (*fabric.RawResponse, error) {
	args := m.Called(ctx, method, path, body, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fabric.RawResponse), args.Error(1)
}

// MockWorkspacesClient implements fabric.WorkspacesClient for testing
type MockWorkspacesClient struct {
	mock.Mock
}

func (m *MockWorkspacesClient) Create(ctx context.Context, request *fabric.CreateWorkspaceRequest) (*fabric.Workspace, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fabric.Workspace), args.Error(1)
}

func (m *MockWorkspacesClient) Get(ctx context.Context, workspaceID string) (*fabric.Workspace, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fabric.Workspace), args.Error(1)
}

func (m *MockWorkspacesClient) List(ctx context.Context, params *fabric.QueryParams) (*fabric.ListResponse[fabric.Workspace], error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fabric.ListResponse[fabric.Workspace]), args.Error(1)
}

func (m *MockWorkspacesClient) ListAll(ctx context.Context) ([]fabric.Workspace, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]fabric.Workspace), args.Error(1)
}

func (m *MockWorkspacesClient) Update(ctx context.Context, workspaceID string, request *fabric.UpdateWorkspaceRequest) (*fabric.Workspace, error) {
	args := m.Called(ctx, workspaceID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fabric.Workspace), args.Error(1)
}

func (m *MockWorkspacesClient) Delete(ctx context.Context, workspaceID string) error {
	args := m.Called(ctx, workspaceID)
	return args.Error(0)
}

func (m *MockWorkspacesClient) AssignToCapacity(ctx context.Context, workspaceID string, request *fabric.AssignWorkspaceToCapacityRequest) error {
	args := m.Called(ctx, workspaceID, request)
	return args.Error(0)
}

func (m *MockWorkspacesClient) UnassignFromCapacity(ctx context.Context, workspaceID string) error {
	args := m.Called(ctx, workspaceID)
	return args.Error(0)
}

// MockItemsClient implements fabric.ItemsClient for testing
type MockItemsClient struct {
	mock.Mock
}

func (m *MockItemsClient) Create(ctx context.Context, workspaceID string, request *fabric.CreateItemRequest) (*fabric.Poller[fabric.Item], error) {
	args := m.Called(ctx, workspaceID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fabric.Poller[fabric.Item]), args.Error(1)
}

func (m *MockItemsClient) Get(ctx context.Context, workspaceID, itemID string) (*fabric.Item, error) {
	args := m.Called(ctx, workspaceID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fabric.Item), args.Error(1)
}

func (m *MockItemsClient) List(ctx context.Context, workspaceID string, params *fabric.QueryParams) (*fabric.ListResponse[fabric.Item], error) {
	args := m.Called(ctx, workspaceID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fabric.ListResponse[fabric.Item]), args.Error(1)
}

func (m *MockItemsClient) ListAll(ctx context.Context, workspaceID string) ([]fabric.Item, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]fabric.Item), args.Error(1)
}

func (m *MockItemsClient) Update(ctx context.Context, workspaceID, itemID string, request *fabric.UpdateItemRequest) (*fabric.Item, error) {
	args := m.Called(ctx, workspaceID, itemID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fabric.Item), args.Error(1)
}

func (m *MockItemsClient) Delete(ctx context.Context, workspaceID, itemID string) error {
	args := m.Called(ctx, workspaceID, itemID)
	return args.Error(0)
}

func (m *MockItemsClient) GetDefinition(ctx context.Context, workspaceID, itemID string, format string) (*fabric.Poller[fabric.ItemDefinitionResponse], error) {
	args := m.Called(ctx, workspaceID, itemID, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fabric.Poller[fabric.ItemDefinitionResponse]), args.Error(1)
}

func (m *MockItemsClient) UpdateDefinition(ctx context.Context, workspaceID, itemID string, request *fabric.UpdateItemDefinitionRequest) (*fabric.Poller[fabric.Empty], error) {
	args := m.Called(ctx, workspaceID, itemID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fabric.Poller[fabric.Empty]), args.Error(1)
}

func TestBatchExecutor_Execute(t *testing.T) {
	mockClient := &MockClient{}
	mockWorkspaces := &MockWorkspacesClient{}
	mockClient.On("Workspaces").Return(mockWorkspaces)

	executor := fabric.NewBatchExecutor(mockClient, 2)
	ctx := context.Background()

	// Set up mock expectations
	ws1 := &fabric.Workspace{ID: "ws-1", DisplayName: "Sales"}
	ws2 := &fabric.Workspace{ID: "ws-2", DisplayName: "Finance"}

	mockWorkspaces.On("Get", mock.Anything, "ws-1").Return(ws1, nil)
	mockWorkspaces.On("Get", mock.Anything, "ws-2").Return(ws2, nil)

	operations := []fabric.BatchOperation{
		{
			ID:       "op1",
			Type:     "get",
			Resource: "workspace",
			Data:     "ws-1",
		},
		{
			ID:       "op2",
			Type:     "get",
			Resource: "workspace",
			Data:     "ws-2",
		},
	}

	results, err := executor.Execute(ctx, operations)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	// Check results
	for _, result := range results {
		assert.True(t, result.Success)
		assert.NoError(t, result.Error)
		assert.NotNil(t, result.Data)
		assert.True(t, result.Duration > 0)
	}

	mockClient.AssertExpectations(t)
	mockWorkspaces.AssertExpectations(t)
}

func TestBatchExecutor_WithCallback(t *testing.T) {
	mockClient := &MockClient{}
	mockWorkspaces := &MockWorkspacesClient{}
	mockClient.On("Workspaces").Return(mockWorkspaces)

	executor := fabric.NewBatchExecutor(mockClient, 1)
	ctx := context.Background()

	workspace := &fabric.Workspace{ID: "ws-1", DisplayName: "Sales"}
	mockWorkspaces.On("Get", mock.Anything, "ws-1").Return(workspace, nil)

	var callbackCalled bool
	var callbackResult *fabric.BatchResult

	operation := fabric.BatchOperation{
		ID:       "op1",
		Type:     "get",
		Resource: "workspace",
		Data:     "ws-1",
		Callback: func(result *fabric.BatchResult) {
			callbackCalled = true
			callbackResult = result
		},
	}

	_, err := executor.Execute(ctx, []fabric.BatchOperation{operation})
	require.NoError(t, err)

	assert.True(t, callbackCalled)
	assert.NotNil(t, callbackResult)
	assert.True(t, callbackResult.Success)
	assert.Equal(t, "op1", callbackResult.ID)

	mockClient.AssertExpectations(t)
	mockWorkspaces.AssertExpectations(t)
}

func TestBatchExecutor_WithError(t *testing.T) {
	mockClient := &MockClient{}
	mockWorkspaces := &MockWorkspacesClient{}
	mockClient.On("Workspaces").Return(mockWorkspaces)

	executor := fabric.NewBatchExecutor(mockClient, 1)
	ctx := context.Background()

	notFound := &fabric.Error{Kind: fabric.ErrorKindNotFound, Message: "workspace not found"}
	mockWorkspaces.On("Get", mock.Anything, "ws-missing").Return(nil, notFound)

	operation := fabric.BatchOperation{
		ID:       "op1",
		Type:     "get",
		Resource: "workspace",
		Data:     "ws-missing",
	}

	results, err := executor.Execute(ctx, []fabric.BatchOperation{operation})
	require.NoError(t, err) // Execute itself shouldn't fail
	assert.Len(t, results, 1)

	result := results[0]
	assert.False(t, result.Success)
	require.Error(t, result.Error)
	assert.True(t, fabric.IsNotFound(result.Error))

	mockClient.AssertExpectations(t)
	mockWorkspaces.AssertExpectations(t)
}

func TestBatchExecutor_ItemCreateResolvesPoller(t *testing.T) {
	mockClient := &MockClient{}
	mockItems := &MockItemsClient{}
	mockClient.On("Items").Return(mockItems)

	executor := fabric.NewBatchExecutor(mockClient, 1)
	ctx := context.Background()

	created := &fabric.Item{ID: "item-1", WorkspaceID: "ws-1", DisplayName: "Sales Model"}
	mockItems.On("Create", mock.Anything, "ws-1", mock.Anything).
		Return(fabric.NewResolvedPoller(created), nil)

	operations := fabric.NewBatchBuilder().
		AddCreateItem("create-1", "ws-1", &fabric.CreateItemRequest{
			DisplayName: "Sales Model",
			Type:        fabric.ItemTypeSemanticModel,
		}).
		Build()

	results, err := executor.Execute(ctx, operations)
	require.NoError(t, err)
	require.Len(t, results, 1)

	result := results[0]
	assert.True(t, result.Success)

	item, ok := result.Data.(*fabric.Item)
	require.True(t, ok)
	assert.Equal(t, "item-1", item.ID)

	mockClient.AssertExpectations(t)
	mockItems.AssertExpectations(t)
}

func TestBatchBuilder(t *testing.T) {
	builder := fabric.NewBatchBuilder()

	req1 := &fabric.CreateWorkspaceRequest{
		DisplayName: "Sales",
	}
	name := "Sales EU"
	req2 := &fabric.UpdateWorkspaceRequest{
		DisplayName: &name,
	}

	builder.
		AddCreateWorkspace("create-1", req1).
		AddUpdateWorkspace("update-1", "ws-1", req2).
		AddDeleteWorkspace("delete-1", "ws-old").
		AddGetWorkspace("get-1", "ws-2").
		AddDeleteItem("delete-2", "ws-1", "item-1")

	operations := builder.Build()
	assert.Len(t, operations, 5)

	assert.Equal(t, "create-1", operations[0].ID)
	assert.Equal(t, "create", operations[0].Type)
	assert.Equal(t, "workspace", operations[0].Resource)

	assert.Equal(t, "update-1", operations[1].ID)
	assert.Equal(t, "update", operations[1].Type)

	assert.Equal(t, "delete-1", operations[2].ID)
	assert.Equal(t, "delete", operations[2].Type)

	assert.Equal(t, "get-1", operations[3].ID)
	assert.Equal(t, "get", operations[3].Type)

	ref, ok := operations[4].Data.(*fabric.ResourceRef)
	require.True(t, ok)
	assert.Equal(t, "ws-1", ref.WorkspaceID)
	assert.Equal(t, "item-1", ref.ID)
}

func TestBatchExecutor_UnsupportedResource(t *testing.T) {
	mockClient := &MockClient{}
	executor := fabric.NewBatchExecutor(mockClient, 1)
	executor.SetTimeout(1 * time.Second)

	operation := fabric.BatchOperation{
		ID:       "op1",
		Type:     "get",
		Resource: "capacity", // capacities are list-only, no batch support
		Data:     "cap-1",
	}

	ctx := context.Background()
	results, err := executor.Execute(ctx, []fabric.BatchOperation{operation})
	require.NoError(t, err)
	assert.Len(t, results, 1)

	result := results[0]
	assert.False(t, result.Success)
	require.Error(t, result.Error)
	assert.ErrorIs(t, result.Error, fabric.ErrUnsupportedResourceType)
}

func TestBatchExecutor_UnsupportedOperationType(t *testing.T) {
	mockClient := &MockClient{}
	mockWorkspaces := &MockWorkspacesClient{}
	mockClient.On("Workspaces").Return(mockWorkspaces)

	executor := fabric.NewBatchExecutor(mockClient, 1)

	operation := fabric.BatchOperation{
		ID:       "op1",
		Type:     "rename",
		Resource: "workspace",
		Data:     "ws-1",
	}

	ctx := context.Background()
	results, err := executor.Execute(ctx, []fabric.BatchOperation{operation})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Error, fabric.ErrUnsupportedOperationType)
}

func TestBatchTransaction_RollbackDeletesCreates(t *testing.T) {
	mockClient := &MockClient{}
	mockWorkspaces := &MockWorkspacesClient{}
	mockItems := &MockItemsClient{}
	mockClient.On("Workspaces").Return(mockWorkspaces)
	mockClient.On("Items").Return(mockItems)

	created := &fabric.Workspace{ID: "ws-new", DisplayName: "Sales"}
	conflict := &fabric.Error{Kind: fabric.ErrorKindConflict, Message: "item name already exists"}

	mockWorkspaces.On("Create", mock.Anything, mock.Anything).Return(created, nil)
	mockItems.On("Create", mock.Anything, "ws-other", mock.Anything).Return(nil, conflict)
	// Rollback deletes the workspace that was created
	mockWorkspaces.On("Delete", mock.Anything, "ws-new").Return(nil)

	executor := fabric.NewBatchExecutor(mockClient, 1)
	transaction := fabric.NewBatchTransaction(executor)

	operations := fabric.NewBatchBuilder().
		AddCreateWorkspace("create-ws", &fabric.CreateWorkspaceRequest{DisplayName: "Sales"}).
		AddCreateItem("create-item", "ws-other", &fabric.CreateItemRequest{
			DisplayName: "Sales Model",
			Type:        fabric.ItemTypeSemanticModel,
		}).
		Build()

	for _, operation := range operations {
		transaction.Add(operation)
	}

	results, err := transaction.Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, fabric.ErrTransactionFailed)
	assert.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)

	mockWorkspaces.AssertExpectations(t)
	mockItems.AssertExpectations(t)
}

func TestBatchTransaction_RollbackDisabled(t *testing.T) {
	mockClient := &MockClient{}
	mockWorkspaces := &MockWorkspacesClient{}
	mockClient.On("Workspaces").Return(mockWorkspaces)

	notFound := &fabric.Error{Kind: fabric.ErrorKindNotFound, Message: "workspace not found"}
	mockWorkspaces.On("Get", mock.Anything, "ws-missing").Return(nil, notFound)

	executor := fabric.NewBatchExecutor(mockClient, 1)
	transaction := fabric.NewBatchTransaction(executor).SetRollback(false)

	transaction.Add(fabric.BatchOperation{
		ID:       "get-1",
		Type:     "get",
		Resource: "workspace",
		Data:     "ws-missing",
	})

	results, err := transaction.Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)

	mockWorkspaces.AssertExpectations(t)
}
