package commands

import (
	"github.com/spf13/cobra"

	"github.com/obstack/obstack/cmd/obstack/handlers"
)

// Destroy returns the command that tears the stack down.
//
// Teardown is best-effort: releases are uninstalled in reverse dependency
// order, namespaces are force-deleted with zero grace period, and releases
// that were never installed are treated as already gone. The command never
// fails because of a missing release.
func Destroy() *cobra.Command {
	var opts handlers.DestroyOptions

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Uninstall the observability stack",
		Long: `Remove the observability stack from the current cluster.

Releases are uninstalled in reverse dependency order and their namespaces
force-deleted. Resource reclamation completes in the background shortly
after the command returns.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Destroy(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.KubeconfigPath, "kubeconfig", "", "Path to the kubeconfig file (default: client-go rules)")
	cmd.Flags().StringVar(&opts.KubeContext, "context", "", "Kubeconfig context to use (default: current context)")

	return cmd
}
