// Package main provides the herdbook CLI: the HTTP API, schema migrations,
// farm registration and on-demand herd reports.
package main

import (
	"context"
	"os"
)

var (
	// Version is set by build flags
	Version = "dev"
)

func main() {
	if err := getRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
