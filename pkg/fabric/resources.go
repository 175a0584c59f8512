package fabric

import "time"

// WorkspaceType distinguishes personal, shared, and admin workspaces.
type WorkspaceType string

// Workspace types.
const (
	WorkspaceTypePersonal  WorkspaceType = "Personal"
	WorkspaceTypeWorkspace WorkspaceType = "Workspace"
	WorkspaceTypeAdmin     WorkspaceType = "AdminWorkspace"
)

// Workspace represents a workspace.
type Workspace struct {
	ID                         string            `json:"id"                                   yaml:"id"`
	DisplayName                string            `json:"displayName"                          yaml:"displayName"`
	Description                string            `json:"description,omitempty"                yaml:"description,omitempty"`
	Type                       WorkspaceType     `json:"type,omitempty"                       yaml:"type,omitempty"`
	CapacityID                 string            `json:"capacityId,omitempty"                 yaml:"capacityId,omitempty"`
	CapacityAssignmentProgress string            `json:"capacityAssignmentProgress,omitempty" yaml:"capacityAssignmentProgress,omitempty"`
	OneLakeEndpoints           *OneLakeEndpoints `json:"oneLakeEndpoints,omitempty"           yaml:"oneLakeEndpoints,omitempty"`
}

// OneLakeEndpoints carries the storage endpoints of a workspace.
type OneLakeEndpoints struct {
	BlobEndpoint string `json:"blobEndpoint,omitempty" yaml:"blobEndpoint,omitempty"`
	DfsEndpoint  string `json:"dfsEndpoint,omitempty"  yaml:"dfsEndpoint,omitempty"`
}

// CreateWorkspaceRequest represents a request to create a workspace.
type CreateWorkspaceRequest struct {
	// DisplayName is the workspace name (unique within the tenant).
	DisplayName string `json:"displayName" yaml:"displayName"`
	// Description is an optional free-form description.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// CapacityID optionally assigns the workspace to a capacity at
	// creation time.
	CapacityID string `json:"capacityId,omitempty" yaml:"capacityId,omitempty"`
}

// UpdateWorkspaceRequest represents a request to update a workspace.
type UpdateWorkspaceRequest struct {
	// DisplayName updates the workspace name; nil leaves it unchanged.
	DisplayName *string `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	// Description updates the description; nil leaves it unchanged.
	Description *string `json:"description,omitempty" yaml:"description,omitempty"`
}

// AssignWorkspaceToCapacityRequest binds a workspace to a capacity.
type AssignWorkspaceToCapacityRequest struct {
	CapacityID string `json:"capacityId" yaml:"capacityId"`
}

// ItemType identifies the kind of an item.
type ItemType string

// Item types.
const (
	ItemTypeLakehouse          ItemType = "Lakehouse"
	ItemTypeWarehouse          ItemType = "Warehouse"
	ItemTypeNotebook           ItemType = "Notebook"
	ItemTypeReport             ItemType = "Report"
	ItemTypeSemanticModel      ItemType = "SemanticModel"
	ItemTypeSQLEndpoint        ItemType = "SQLEndpoint"
	ItemTypeDataPipeline       ItemType = "DataPipeline"
	ItemTypeSparkJobDefinition ItemType = "SparkJobDefinition"
	ItemTypeKQLDatabase        ItemType = "KQLDatabase"
	ItemTypeEventstream        ItemType = "Eventstream"
)

// Item represents a workspace item.
type Item struct {
	ID          string   `json:"id"                    yaml:"id"`
	WorkspaceID string   `json:"workspaceId"           yaml:"workspaceId"`
	DisplayName string   `json:"displayName"           yaml:"displayName"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Type        ItemType `json:"type"                  yaml:"type"`
	FolderID    string   `json:"folderId,omitempty"    yaml:"folderId,omitempty"`
}

// CreateItemRequest represents a request to create an item.
type CreateItemRequest struct {
	// DisplayName is the item name (unique per type within a workspace).
	DisplayName string `json:"displayName" yaml:"displayName"`
	// Description is an optional free-form description.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// Type selects the kind of item to create.
	Type ItemType `json:"type" yaml:"type"`
	// Definition optionally supplies the item's content parts; items
	// created with a definition complete asynchronously.
	Definition *ItemDefinition `json:"definition,omitempty" yaml:"definition,omitempty"`
	// FolderID optionally places the item inside a workspace folder.
	FolderID string `json:"folderId,omitempty" yaml:"folderId,omitempty"`
}

// UpdateItemRequest represents a request to update an item.
type UpdateItemRequest struct {
	// DisplayName updates the item name; nil leaves it unchanged.
	DisplayName *string `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	// Description updates the description; nil leaves it unchanged.
	Description *string `json:"description,omitempty" yaml:"description,omitempty"`
}

// PayloadType identifies how a definition part's payload is encoded.
type PayloadType string

// Payload encodings.
const (
	PayloadTypeInlineBase64 PayloadType = "InlineBase64"
)

// ItemDefinition is the content of an item as a set of parts.
type ItemDefinition struct {
	Format string               `json:"format,omitempty" yaml:"format,omitempty"`
	Parts  []ItemDefinitionPart `json:"parts"            yaml:"parts"`
}

// ItemDefinitionPart is a single file-like part of an item definition.
type ItemDefinitionPart struct {
	Path        string      `json:"path"        yaml:"path"`
	Payload     string      `json:"payload"     yaml:"payload"`
	PayloadType PayloadType `json:"payloadType" yaml:"payloadType"`
}

// ItemDefinitionResponse wraps a fetched item definition.
type ItemDefinitionResponse struct {
	Definition *ItemDefinition `json:"definition" yaml:"definition"`
}

// UpdateItemDefinitionRequest replaces an item's definition.
type UpdateItemDefinitionRequest struct {
	Definition *ItemDefinition `json:"definition" yaml:"definition"`
}

// Lakehouse represents a lakehouse item with its storage properties.
type Lakehouse struct {
	ID          string               `json:"id"                    yaml:"id"`
	WorkspaceID string               `json:"workspaceId"           yaml:"workspaceId"`
	DisplayName string               `json:"displayName"           yaml:"displayName"`
	Description string               `json:"description,omitempty" yaml:"description,omitempty"`
	Type        ItemType             `json:"type"                  yaml:"type"`
	Properties  *LakehouseProperties `json:"properties,omitempty"  yaml:"properties,omitempty"`
}

// LakehouseProperties carries lakehouse storage paths and the attached
// SQL endpoint.
type LakehouseProperties struct {
	OneLakeTablesPath     string                 `json:"oneLakeTablesPath,omitempty"     yaml:"oneLakeTablesPath,omitempty"`
	OneLakeFilesPath      string                 `json:"oneLakeFilesPath,omitempty"      yaml:"oneLakeFilesPath,omitempty"`
	DefaultSchema         string                 `json:"defaultSchema,omitempty"         yaml:"defaultSchema,omitempty"`
	SQLEndpointProperties *SQLEndpointProperties `json:"sqlEndpointProperties,omitempty" yaml:"sqlEndpointProperties,omitempty"`
}

// SQLEndpointProperties describes the SQL endpoint attached to a
// lakehouse.
type SQLEndpointProperties struct {
	ID                 string `json:"id,omitempty"                 yaml:"id,omitempty"`
	ConnectionString   string `json:"connectionString,omitempty"   yaml:"connectionString,omitempty"`
	ProvisioningStatus string `json:"provisioningStatus,omitempty" yaml:"provisioningStatus,omitempty"`
}

// CreateLakehouseRequest represents a request to create a lakehouse.
type CreateLakehouseRequest struct {
	DisplayName string `json:"displayName"           yaml:"displayName"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// UpdateLakehouseRequest represents a request to update a lakehouse.
type UpdateLakehouseRequest struct {
	DisplayName *string `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	Description *string `json:"description,omitempty" yaml:"description,omitempty"`
}

// TableType distinguishes managed from external tables.
type TableType string

// Table types.
const (
	TableTypeManaged  TableType = "Managed"
	TableTypeExternal TableType = "External"
)

// Table represents a lakehouse table.
type Table struct {
	Name     string    `json:"name"               yaml:"name"`
	Type     TableType `json:"type"               yaml:"type"`
	Location string    `json:"location,omitempty" yaml:"location,omitempty"`
	Format   string    `json:"format,omitempty"   yaml:"format,omitempty"`
}

// PathType identifies what a load-table path points at.
type PathType string

// Load path types.
const (
	PathTypeFile   PathType = "File"
	PathTypeFolder PathType = "Folder"
)

// LoadMode selects how loaded data is applied to the target table.
type LoadMode string

// Load modes.
const (
	LoadModeOverwrite LoadMode = "Overwrite"
	LoadModeAppend    LoadMode = "Append"
)

// LoadTableRequest loads files from the lakehouse's file area into a
// table.
type LoadTableRequest struct {
	// RelativePath locates the source file or folder under the
	// lakehouse Files area.
	RelativePath string `json:"relativePath" yaml:"relativePath"`
	// PathType says whether RelativePath is a single file or a folder.
	PathType PathType `json:"pathType" yaml:"pathType"`
	// Mode selects overwrite or append semantics. Defaults to overwrite
	// server-side when omitted.
	Mode LoadMode `json:"mode,omitempty" yaml:"mode,omitempty"`
	// Recursive loads nested folders when PathType is Folder.
	Recursive bool `json:"recursive,omitempty" yaml:"recursive,omitempty"`
	// FormatOptions describe the source file format.
	FormatOptions *FormatOptions `json:"formatOptions,omitempty" yaml:"formatOptions,omitempty"`
}

// FormatOptions describe a source file format for table loads.
type FormatOptions struct {
	Format    string `json:"format,omitempty"    yaml:"format,omitempty"`
	Header    bool   `json:"header,omitempty"    yaml:"header,omitempty"`
	Delimiter string `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`
}

// Warehouse represents a warehouse item.
type Warehouse struct {
	ID          string               `json:"id"                    yaml:"id"`
	WorkspaceID string               `json:"workspaceId"           yaml:"workspaceId"`
	DisplayName string               `json:"displayName"           yaml:"displayName"`
	Description string               `json:"description,omitempty" yaml:"description,omitempty"`
	Type        ItemType             `json:"type"                  yaml:"type"`
	Properties  *WarehouseProperties `json:"properties,omitempty"  yaml:"properties,omitempty"`
}

// WarehouseProperties carries warehouse connection details.
type WarehouseProperties struct {
	ConnectionString string     `json:"connectionString,omitempty"   yaml:"connectionString,omitempty"`
	CreatedDate      *time.Time `json:"createdDate,omitempty"        yaml:"createdDate,omitempty"`
	LastUpdatedTime  *time.Time `json:"lastUpdatedTimeUtc,omitempty" yaml:"lastUpdatedTimeUtc,omitempty"`
}

// CreateWarehouseRequest represents a request to create a warehouse.
type CreateWarehouseRequest struct {
	DisplayName string `json:"displayName"           yaml:"displayName"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// UpdateWarehouseRequest represents a request to update a warehouse.
type UpdateWarehouseRequest struct {
	DisplayName *string `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	Description *string `json:"description,omitempty" yaml:"description,omitempty"`
}

// SQLEndpoint represents a workspace SQL endpoint item.
type SQLEndpoint struct {
	ID          string   `json:"id"                    yaml:"id"`
	WorkspaceID string   `json:"workspaceId"           yaml:"workspaceId"`
	DisplayName string   `json:"displayName"           yaml:"displayName"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Type        ItemType `json:"type"                  yaml:"type"`
}

// CapacityState is the provisioning state of a capacity.
type CapacityState string

// Capacity states.
const (
	CapacityStateActive   CapacityState = "Active"
	CapacityStateInactive CapacityState = "Inactive"
)

// Capacity represents a compute capacity visible to the caller.
type Capacity struct {
	ID          string        `json:"id"               yaml:"id"`
	DisplayName string        `json:"displayName"      yaml:"displayName"`
	SKU         string        `json:"sku"              yaml:"sku"`
	Region      string        `json:"region,omitempty" yaml:"region,omitempty"`
	State       CapacityState `json:"state"            yaml:"state"`
}

// Job types runnable on items.
const (
	JobTypeRunNotebook      = "RunNotebook"
	JobTypePipeline         = "Pipeline"
	JobTypeSparkJob         = "sparkjob"
	JobTypeTableMaintenance = "TableMaintenance"
	JobTypeDefault          = "DefaultJob"
)

// InvokeType says how a job instance was started.
type InvokeType string

// Invoke types.
const (
	InvokeTypeManual    InvokeType = "Manual"
	InvokeTypeScheduled InvokeType = "Scheduled"
)

// JobInstance represents one run of an item job.
type JobInstance struct {
	ID             string         `json:"id"                      yaml:"id"`
	ItemID         string         `json:"itemId"                  yaml:"itemId"`
	JobType        string         `json:"jobType"                 yaml:"jobType"`
	InvokeType     InvokeType     `json:"invokeType,omitempty"    yaml:"invokeType,omitempty"`
	Status         JobStatus      `json:"status"                  yaml:"status"`
	RootActivityID string         `json:"rootActivityId,omitempty" yaml:"rootActivityId,omitempty"`
	StartTimeUTC   *time.Time     `json:"startTimeUtc,omitempty"  yaml:"startTimeUtc,omitempty"`
	EndTimeUTC     *time.Time     `json:"endTimeUtc,omitempty"    yaml:"endTimeUtc,omitempty"`
	FailureReason  *ErrorResponse `json:"failureReason,omitempty" yaml:"failureReason,omitempty"`
}

// RunOnDemandJobRequest starts a job instance with optional
// job-type-specific parameters.
type RunOnDemandJobRequest struct {
	ExecutionData map[string]any `json:"executionData,omitempty" yaml:"executionData,omitempty"`
}
