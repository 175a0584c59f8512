// Package fabricclient provides the primary entry point for constructing a
// Microsoft Fabric REST API client that implements the fabric.Client
// interface.
//
// It layers configuration, HTTP transport, and Entra ID authentication on
// top of the resource interfaces and types defined in the fabric package.
// Most applications should import fabricclient to build a client, then use
// the returned fabric.Client to access resource-specific clients, for
// example Workspaces(), Items(), Jobs(), etc.
//
// Quick start
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
//
//	  // Minimal: just an API endpoint (no auth).
//	  cli, err := fabricclient.New(&fabric.Config{APIEndpoint: "https://api.fabric.microsoft.com"})
//	  if err != nil { log.Fatal(err) }
//
//	  // Or with an access token you already have:
//	  cli, err = fabricclient.New(&fabric.Config{
//	    APIEndpoint: "https://api.fabric.microsoft.com",
//	    AccessToken: "eyJhbGciOi...", // bearer token
//	  })
//
//	  // Or with a service principal. Tokens are acquired from Entra ID
//	  // and refreshed automatically before they expire.
//	  cli, err = fabricclient.New(&fabric.Config{
//	    APIEndpoint:  "https://api.fabric.microsoft.com",
//	    TenantID:     "tenant-id",
//	    ClientID:     "client-id",
//	    ClientSecret: "client-secret",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // Use resource clients via the fabric.Client interface
//	  workspaces, err := cli.Workspaces().List(ctx, fabric.NewQueryParams().WithMaxResults(10))
//	  if err != nil { log.Fatal(err) }
//	  _ = workspaces
//	}
//
// # TLS and development mode
//
// For local development against fakes, you can set Config.SkipTLSVerify=true.
// This is gated by the environment variable FABRIC_DEV_MODE to avoid
// accidental insecure usage in production environments.
//
// # Helpers
//
// The package also provides convenience constructors NewWithEndpoint,
// NewWithToken, NewWithClientCredentials, and NewWithUsernamePassword that
// wrap New with the appropriate configuration.
package fabricclient
