// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument
// parsing, flag binding, and validation. Command execution is delegated to
// handler functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the obstack CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "obstack",
		Short: "Deploy the demo observability stack onto Kubernetes",
	}

	cmd.AddCommand(Deploy())
	cmd.AddCommand(Destroy())
	cmd.AddCommand(Provision())
	cmd.AddCommand(Doctor())
	cmd.AddCommand(Version())

	return cmd
}
