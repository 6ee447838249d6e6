// Package aotclient provides the entry point for constructing an Array of
// Things API client that implements the aot.Client interface.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/aot/pkg/aot"
//	  "github.com/fivetwenty-io/aot/pkg/aotclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  // Public endpoint with defaults.
//	  cli, err := aotclient.New(nil)
//	  if err != nil { log.Fatal(err) }
//
//	  // Observations below 42 in a time window, newest first.
//	  filters := aot.Lt("value", 42).
//	    And(aot.Ge("timestamp", "2018-04-21T15:00:00")).
//	    And(aot.Lt("timestamp", "2018-04-22T02:00:00")).
//	    And(aot.Order("desc", "timestamp"))
//
//	  first, err := cli.ListObservations(ctx, filters)
//	  if err != nil { log.Fatal(err) }
//
//	  observations, err := aot.CollectAll[aot.Observation](ctx, cli, first, aot.WithMaxPages(10))
//	  if err != nil { log.Fatal(err) }
//	  _ = observations
//	}
//
// # Hostname
//
// The hostname is the API base including its path, for example
// https://api.arrayofthings.org/api. A missing scheme defaults to https and a
// trailing slash is removed.
package aotclient
