package commands

import (
	"github.com/spf13/cobra"

	"github.com/obstack/obstack/cmd/obstack/handlers"
)

// Doctor returns the command that runs the preflight checks on their own.
func Doctor() *cobra.Command {
	var opts handlers.DoctorOptions

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check tools, files, and cluster reachability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Doctor(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.KubeconfigPath, "kubeconfig", "", "Path to the kubeconfig file (default: client-go rules)")
	cmd.Flags().StringVar(&opts.KubeContext, "context", "", "Kubeconfig context to use (default: current context)")
	cmd.Flags().StringVar(&opts.ValuesDir, "values", "values", "Directory holding the per-release values overlays")

	return cmd
}
