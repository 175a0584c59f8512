package fabric

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fivetwenty-io/fabric/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrUnsupportedResourceType  = errors.New("unsupported resource type")
	ErrUnsupportedOperationType = errors.New("unsupported operation type")
	ErrInvalidDataTypeWorkspace = errors.New("invalid data type for workspace operation")
	ErrInvalidDataTypeItem      = errors.New("invalid data type for item operation")
	ErrInvalidDataTypeLakehouse = errors.New("invalid data type for lakehouse operation")
	ErrInvalidDataTypeWarehouse = errors.New("invalid data type for warehouse operation")
	ErrTransactionFailed        = errors.New("transaction failed")
)

// ResourceRef addresses a workspace-scoped resource for get and delete
// operations.
type ResourceRef struct {
	WorkspaceID string
	ID          string
}

// CreateDataWrapper wraps create data with its target workspace.
type CreateDataWrapper[T any] struct {
	WorkspaceID string
	Request     *T
}

// UpdateDataWrapper wraps update data with the target resource identity.
// Workspace updates leave WorkspaceID empty and address by ID alone.
type UpdateDataWrapper[T any] struct {
	WorkspaceID string
	ID          string
	Request     *T
}

// handleCrudOperation is a helper that handles the common CRUD pattern.
func handleCrudOperation(
	operation BatchOperation,
	createFunc func() (interface{}, error),
	updateFunc func() (interface{}, error),
	deleteFunc func() (interface{}, error),
	getFunc func() (interface{}, error),
) *BatchResult {
	result := &BatchResult{ID: operation.ID}

	switch operation.Type {
	case "create":
		data, err := createFunc()
		result.Success = err == nil
		result.Data = data
		result.Error = err
	case "update":
		data, err := updateFunc()
		result.Success = err == nil
		result.Data = data
		result.Error = err
	case "delete":
		data, err := deleteFunc()
		result.Success = err == nil
		result.Data = data
		result.Error = err
	case "get":
		data, err := getFunc()
		result.Success = err == nil
		result.Data = data
		result.Error = err
	default:
		result.Error = fmt.Errorf("%w: %s", ErrUnsupportedOperationType, operation.Type)
	}

	return result
}

// CRUDOperationConfig holds configuration for CRUD operations.
type CRUDOperationConfig struct {
	InvalidDataTypeErr error
	CreateFunc         func(ctx context.Context, operation BatchOperation) (interface{}, error)
	UpdateFunc         func(ctx context.Context, operation BatchOperation) (interface{}, error)
	DeleteFunc         func(ctx context.Context, operation BatchOperation) (interface{}, error)
	GetFunc            func(ctx context.Context, operation BatchOperation) (interface{}, error)
}

// scopedCrudOps is the method set shared by workspace-scoped resource
// clients whose create path may be asynchronous.
type scopedCrudOps[TCreate, TUpdate, TResponse any] interface {
	Create(ctx context.Context, workspaceID string, request *TCreate) (*Poller[TResponse], error)
	Get(ctx context.Context, workspaceID, id string) (*TResponse, error)
	Update(ctx context.Context, workspaceID, id string, request *TUpdate) (*TResponse, error)
	Delete(ctx context.Context, workspaceID, id string) error
}

// createScopedCrudConfig creates a generic CRUD operation configuration for
// a workspace-scoped resource. Creates resolve their poller before the
// result is recorded, so batch results are always final values.
func createScopedCrudConfig[TCreate, TUpdate, TResponse any](
	invalidDataTypeErr error,
	client scopedCrudOps[TCreate, TUpdate, TResponse],
) CRUDOperationConfig {
	return CRUDOperationConfig{
		InvalidDataTypeErr: invalidDataTypeErr,
		CreateFunc: func(ctx context.Context, operation BatchOperation) (interface{}, error) {
			if data, ok := operation.Data.(*CreateDataWrapper[TCreate]); ok {
				poller, err := client.Create(ctx, data.WorkspaceID, data.Request)
				if err != nil {
					return nil, err
				}

				return poller.PollUntilDone(ctx)
			}

			return nil, fmt.Errorf("%w create", invalidDataTypeErr)
		},
		UpdateFunc: func(ctx context.Context, operation BatchOperation) (interface{}, error) {
			if data, ok := operation.Data.(*UpdateDataWrapper[TUpdate]); ok {
				return client.Update(ctx, data.WorkspaceID, data.ID, data.Request)
			}

			return nil, fmt.Errorf("%w update", invalidDataTypeErr)
		},
		DeleteFunc: func(ctx context.Context, operation BatchOperation) (interface{}, error) {
			if ref, ok := operation.Data.(*ResourceRef); ok {
				err := client.Delete(ctx, ref.WorkspaceID, ref.ID)
				if err != nil {
					return nil, err
				}

				return nil, nil
			}

			return nil, fmt.Errorf("%w delete", invalidDataTypeErr)
		},
		GetFunc: func(ctx context.Context, operation BatchOperation) (interface{}, error) {
			if ref, ok := operation.Data.(*ResourceRef); ok {
				return client.Get(ctx, ref.WorkspaceID, ref.ID)
			}

			return nil, fmt.Errorf("%w get", invalidDataTypeErr)
		},
	}
}

// BatchOperation represents a single operation in a batch.
type BatchOperation struct {
	ID       string
	Type     string // "create", "update", "delete", "get"
	Resource string // "workspace", "item", "lakehouse", "warehouse"
	Data     interface{}
	Callback func(result *BatchResult)
}

// BatchResult represents the result of a batch operation.
type BatchResult struct {
	ID       string
	Success  bool
	Data     interface{}
	Error    error
	Duration time.Duration
}

// BatchExecutor executes batch operations with bounded concurrency.
type BatchExecutor struct {
	client      Client
	concurrency int
	timeout     time.Duration
}

// NewBatchExecutor creates a new batch executor.
func NewBatchExecutor(client Client, concurrency int) *BatchExecutor {
	if concurrency <= 0 {
		concurrency = constants.DefaultConcurrencyLimit
	}

	if concurrency > constants.MaxWorkers {
		concurrency = constants.MaxWorkers
	}

	return &BatchExecutor{
		client:      client,
		concurrency: concurrency,
		// Creates wait for their operation to finish, so each slot gets
		// the operation timeout rather than the single-request one.
		timeout: constants.DefaultOperationTimeout,
	}
}

// SetTimeout sets the per-operation timeout.
func (b *BatchExecutor) SetTimeout(timeout time.Duration) {
	b.timeout = timeout
}

// Execute runs a batch of operations. Results are positionally aligned with
// the input; individual failures are recorded per result rather than
// aborting the batch.
func (b *BatchExecutor) Execute(ctx context.Context, operations []BatchOperation) ([]BatchResult, error) {
	results := make([]BatchResult, len(operations))

	var waitGroup sync.WaitGroup

	semaphore := make(chan struct{}, b.concurrency)

	for index, operation := range operations {
		waitGroup.Add(1)

		go func(index int, operation BatchOperation) {
			defer waitGroup.Done()

			// Acquire semaphore
			semaphore <- struct{}{}

			defer func() { <-semaphore }()

			// Execute operation with timeout
			opCtx, cancel := context.WithTimeout(ctx, b.timeout)
			defer cancel()

			start := time.Now()
			result := b.executeOperation(opCtx, operation)
			result.Duration = time.Since(start)
			results[index] = *result

			// Call callback if provided
			if operation.Callback != nil {
				operation.Callback(result)
			}
		}(index, operation)
	}

	waitGroup.Wait()

	return results, nil
}

// executeGenericCrudOperation handles generic CRUD operations using the provided configuration.
func (b *BatchExecutor) executeGenericCrudOperation(ctx context.Context, operation BatchOperation, config CRUDOperationConfig) *BatchResult {
	return handleCrudOperation(operation,
		func() (interface{}, error) { return config.CreateFunc(ctx, operation) },
		func() (interface{}, error) { return config.UpdateFunc(ctx, operation) },
		func() (interface{}, error) { return config.DeleteFunc(ctx, operation) },
		func() (interface{}, error) { return config.GetFunc(ctx, operation) },
	)
}

// createItemOperationConfig creates CRUD operation configuration for items.
func (b *BatchExecutor) createItemOperationConfig() CRUDOperationConfig {
	return createScopedCrudConfig[CreateItemRequest, UpdateItemRequest, Item](ErrInvalidDataTypeItem, b.client.Items())
}

// createLakehouseOperationConfig creates CRUD operation configuration for lakehouses.
func (b *BatchExecutor) createLakehouseOperationConfig() CRUDOperationConfig {
	return createScopedCrudConfig[CreateLakehouseRequest, UpdateLakehouseRequest, Lakehouse](ErrInvalidDataTypeLakehouse, b.client.Lakehouses())
}

// createWarehouseOperationConfig creates CRUD operation configuration for warehouses.
func (b *BatchExecutor) createWarehouseOperationConfig() CRUDOperationConfig {
	return createScopedCrudConfig[CreateWarehouseRequest, UpdateWarehouseRequest, Warehouse](ErrInvalidDataTypeWarehouse, b.client.Warehouses())
}

// executeOperation executes a single operation.
func (b *BatchExecutor) executeOperation(ctx context.Context, operation BatchOperation) *BatchResult {
	result := &BatchResult{
		ID: operation.ID,
	}

	switch operation.Resource {
	case "workspace":
		result = b.executeWorkspaceOperation(ctx, operation)
	case "item":
		result = b.executeGenericCrudOperation(ctx, operation, b.createItemOperationConfig())
	case "lakehouse":
		result = b.executeGenericCrudOperation(ctx, operation, b.createLakehouseOperationConfig())
	case "warehouse":
		result = b.executeGenericCrudOperation(ctx, operation, b.createWarehouseOperationConfig())
	default:
		result.Success = false
		result.Error = fmt.Errorf("%w: %s", ErrUnsupportedResourceType, operation.Resource)
	}

	return result
}

// executeWorkspaceOperation handles workspace operations. Workspaces are
// tenant-level, so get and delete address them by a bare ID string.
func (b *BatchExecutor) executeWorkspaceOperation(ctx context.Context, operation BatchOperation) *BatchResult {
	return handleCrudOperation(operation,
		func() (interface{}, error) {
			if req, ok := operation.Data.(*CreateWorkspaceRequest); ok {
				return b.client.Workspaces().Create(ctx, req)
			}

			return nil, fmt.Errorf("%w create", ErrInvalidDataTypeWorkspace)
		},
		func() (interface{}, error) {
			if data, ok := operation.Data.(*UpdateDataWrapper[UpdateWorkspaceRequest]); ok {
				return b.client.Workspaces().Update(ctx, data.ID, data.Request)
			}

			return nil, fmt.Errorf("%w update", ErrInvalidDataTypeWorkspace)
		},
		func() (interface{}, error) {
			if workspaceID, ok := operation.Data.(string); ok {
				err := b.client.Workspaces().Delete(ctx, workspaceID)
				if err != nil {
					return nil, err
				}

				return nil, nil
			}

			return nil, fmt.Errorf("%w delete", ErrInvalidDataTypeWorkspace)
		},
		func() (interface{}, error) {
			if workspaceID, ok := operation.Data.(string); ok {
				return b.client.Workspaces().Get(ctx, workspaceID)
			}

			return nil, fmt.Errorf("%w get", ErrInvalidDataTypeWorkspace)
		},
	)
}

// BatchBuilder helps build batch operations.
type BatchBuilder struct {
	operations []BatchOperation
}

// NewBatchBuilder creates a new batch builder.
func NewBatchBuilder() *BatchBuilder {
	return &BatchBuilder{
		operations: make([]BatchOperation, 0),
	}
}

// AddCreateWorkspace adds a workspace creation operation.
func (b *BatchBuilder) AddCreateWorkspace(id string, request *CreateWorkspaceRequest) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "create",
		Resource: "workspace",
		Data:     request,
	})

	return b
}

// AddUpdateWorkspace adds a workspace update operation.
func (b *BatchBuilder) AddUpdateWorkspace(id, workspaceID string, request *UpdateWorkspaceRequest) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "update",
		Resource: "workspace",
		Data: &UpdateDataWrapper[UpdateWorkspaceRequest]{
			ID:      workspaceID,
			Request: request,
		},
	})

	return b
}

// AddDeleteWorkspace adds a workspace deletion operation.
func (b *BatchBuilder) AddDeleteWorkspace(id, workspaceID string) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "delete",
		Resource: "workspace",
		Data:     workspaceID,
	})

	return b
}

// AddGetWorkspace adds a workspace get operation.
func (b *BatchBuilder) AddGetWorkspace(id, workspaceID string) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "get",
		Resource: "workspace",
		Data:     workspaceID,
	})

	return b
}

// AddCreateItem adds an item creation operation.
func (b *BatchBuilder) AddCreateItem(id, workspaceID string, request *CreateItemRequest) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "create",
		Resource: "item",
		Data: &CreateDataWrapper[CreateItemRequest]{
			WorkspaceID: workspaceID,
			Request:     request,
		},
	})

	return b
}

// AddUpdateItem adds an item update operation.
func (b *BatchBuilder) AddUpdateItem(id, workspaceID, itemID string, request *UpdateItemRequest) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "update",
		Resource: "item",
		Data: &UpdateDataWrapper[UpdateItemRequest]{
			WorkspaceID: workspaceID,
			ID:          itemID,
			Request:     request,
		},
	})

	return b
}

// AddDeleteItem adds an item deletion operation.
func (b *BatchBuilder) AddDeleteItem(id, workspaceID, itemID string) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "delete",
		Resource: "item",
		Data: &ResourceRef{
			WorkspaceID: workspaceID,
			ID:          itemID,
		},
	})

	return b
}

// AddGetItem adds an item get operation.
func (b *BatchBuilder) AddGetItem(id, workspaceID, itemID string) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "get",
		Resource: "item",
		Data: &ResourceRef{
			WorkspaceID: workspaceID,
			ID:          itemID,
		},
	})

	return b
}

// AddCreateLakehouse adds a lakehouse creation operation.
func (b *BatchBuilder) AddCreateLakehouse(id, workspaceID string, request *CreateLakehouseRequest) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "create",
		Resource: "lakehouse",
		Data: &CreateDataWrapper[CreateLakehouseRequest]{
			WorkspaceID: workspaceID,
			Request:     request,
		},
	})

	return b
}

// AddCreateWarehouse adds a warehouse creation operation.
func (b *BatchBuilder) AddCreateWarehouse(id, workspaceID string, request *CreateWarehouseRequest) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "create",
		Resource: "warehouse",
		Data: &CreateDataWrapper[CreateWarehouseRequest]{
			WorkspaceID: workspaceID,
			Request:     request,
		},
	})

	return b
}

// AddOperation adds a custom operation.
func (b *BatchBuilder) AddOperation(operation BatchOperation) *BatchBuilder {
	b.operations = append(b.operations, operation)

	return b
}

// Build returns the built operations.
func (b *BatchBuilder) Build() []BatchOperation {
	return b.operations
}

// BatchTransaction represents a transactional batch of operations.
type BatchTransaction struct {
	operations []BatchOperation
	results    []BatchResult
	executor   *BatchExecutor
	rollback   bool
}

// NewBatchTransaction creates a new batch transaction.
func NewBatchTransaction(executor *BatchExecutor) *BatchTransaction {
	return &BatchTransaction{
		executor:   executor,
		operations: make([]BatchOperation, 0),
		rollback:   true,
	}
}

// Add adds an operation to the transaction.
func (t *BatchTransaction) Add(operation BatchOperation) *BatchTransaction {
	t.operations = append(t.operations, operation)

	return t
}

// SetRollback sets whether to rollback on failure.
func (t *BatchTransaction) SetRollback(rollback bool) *BatchTransaction {
	t.rollback = rollback

	return t
}

// Execute executes the transaction. When any operation fails and rollback is
// enabled, resources created by the successful operations are deleted again
// and the transaction reports failure.
func (t *BatchTransaction) Execute(ctx context.Context) ([]BatchResult, error) {
	results, err := t.executor.Execute(ctx, t.operations)
	t.results = results

	// Check for failures
	var failedOps []string

	for _, result := range results {
		if !result.Success {
			failedOps = append(failedOps, result.ID)
		}
	}

	// If there were failures and rollback is enabled
	if len(failedOps) > 0 && t.rollback {
		t.performRollback(ctx)

		return results, fmt.Errorf("%w, %d operations failed: %v", ErrTransactionFailed, len(failedOps), failedOps)
	}

	return results, err
}

// performRollback deletes the resources created by successful operations.
// Deletes and updates have no recorded inverse and are left alone.
func (t *BatchTransaction) performRollback(ctx context.Context) {
	var rollbackOps []BatchOperation

	for i, result := range t.results {
		if !result.Success {
			continue
		}

		op, ok := inverseOperation(t.operations[i], result)
		if ok {
			rollbackOps = append(rollbackOps, op)
		}
	}

	if len(rollbackOps) > 0 {
		_, _ = t.executor.Execute(ctx, rollbackOps)
	}
}

// inverseOperation derives the delete that undoes a successful create,
// using the created resource's recorded identity.
func inverseOperation(original BatchOperation, result BatchResult) (BatchOperation, bool) {
	if original.Type != "create" {
		return BatchOperation{}, false
	}

	op := BatchOperation{
		ID:       "rollback_" + original.ID,
		Type:     "delete",
		Resource: original.Resource,
	}

	switch data := result.Data.(type) {
	case *Workspace:
		op.Data = data.ID
	case *Item:
		op.Data = &ResourceRef{WorkspaceID: data.WorkspaceID, ID: data.ID}
	case *Lakehouse:
		op.Data = &ResourceRef{WorkspaceID: data.WorkspaceID, ID: data.ID}
	case *Warehouse:
		op.Data = &ResourceRef{WorkspaceID: data.WorkspaceID, ID: data.ID}
	default:
		return BatchOperation{}, false
	}

	return op, true
}
