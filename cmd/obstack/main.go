// Package main is the entry point for the obstack CLI.
//
// obstack deploys a demo observability stack (OpenSearch, OpenSearch
// Dashboards, Jaeger, and the OpenTelemetry demo application) onto a
// Kubernetes cluster, and can provision the OKE cluster it runs on.
//
// Commands: deploy, destroy, provision, doctor, version.
//
// For detailed usage information, run:
//
//	obstack --help
package main

import (
	"fmt"
	"os"

	"github.com/obstack/obstack/cmd/obstack/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
