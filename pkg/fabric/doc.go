// Package fabric provides types, interfaces, and helpers for working with the
// Microsoft Fabric REST API.
//
// # Overview
//
// The fabric package defines the domain types (e.g., Workspace, Item,
// Lakehouse, Warehouse, Capacity, JobInstance) and the interfaces for
// resource-oriented clients (e.g., WorkspacesClient, ItemsClient). A concrete
// implementation of these clients is provided by the fabricclient package,
// which wires configuration, transport, authentication, and retry behavior.
// Most consumers should import fabricclient to construct a client and then
// interact with the resource client interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/fabric/pkg/fabric"
//	  "github.com/fivetwenty-io/fabric/pkg/fabricclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := fabricclient.NewWithClientCredentials(
//	    "tenant-id", "client-id", "client-secret")
//	  if err != nil { log.Fatal(err) }
//
//	  // List the first page of workspaces
//	  workspaces, err := cli.Workspaces().List(ctx, fabric.NewQueryParams().WithMaxResults(50))
//	  if err != nil { log.Fatal(err) }
//	  _ = workspaces
//	}
//
// # Queries and pagination
//
// Use QueryParams to express common list options (maxResults, type filters,
// continuation tokens). List responses carry an opaque ContinuationToken;
// passing it back via WithContinuationToken fetches the next page. The
// package also provides generic helpers for iterating or collecting
// paginated results:
//
//	it := fabric.NewPaginationIterator(ctx, pc, "/v1/workspaces", fabric.NewQueryParams())
//	for it.HasNext() {
//	  workspace, err := it.Next()
//	  if err != nil { break }
//	  _ = workspace
//	}
//
// or fetch all results at once:
//
//	all, err := fabric.FetchAllPages(ctx, pc, "/v1/workspaces", nil, &fabric.PaginationOptions{PageSize: 100})
//	if err != nil { /* handle error */ }
//	_ = all
//
// # Errors
//
// API errors are represented by Error, which classifies every failure into
// an ErrorKind (authorization, not_found, conflict, validation, throttled,
// server, transport). Helpers such as IsNotFound, IsThrottled, and
// IsRetryable make it easy to branch on common cases without inspecting
// status codes.
//
// # Long-running operations
//
// Item creation, definition updates, and similar calls may be accepted
// asynchronously. These return a Poller that tracks the operation through
// its state machine; PollUntilDone blocks until a terminal state and then
// fetches the result. Job runs use the JobsClient's polling helpers instead.
//
// # Interceptors and caching
//
// The package includes generic building blocks such as request/response
// interceptors (for logging, auth headers, metrics, rate limiting, circuit
// breaking) and a simple pluggable Cache abstraction. The fabricclient
// package composes these pieces for a sensible default client; applications
// with advanced needs can also use these primitives directly.
//
// # Resources
//
// Resource clients follow a consistent CRUD-and-actions pattern across
// Fabric resources (Workspaces, Items, Lakehouses, Warehouses, SQL
// Endpoints, Jobs, Operations, Capacities). See the individual interfaces in
// client.go for the full surface area.
package fabric
