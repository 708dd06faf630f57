package commands

import (
	"github.com/spf13/cobra"

	"github.com/obstack/obstack/cmd/obstack/handlers"
)

// Deploy returns the command that installs the observability stack.
//
// The pipeline is: preflight checks, image pre-pull, then per release in
// dependency order an install, a readiness gate, and a best-effort
// reachability check. Any fatal error stops the pipeline at the point of
// failure; previously installed releases are not rolled back.
//
// Optional flags:
//
//	--auto-port-forward: start verification tunnels without prompting
//	--no-port-forward:   never start tunnels
//	--skip-prepull:      bypass the image pre-pull phase
//	--timeout:           readiness timeout per workload in seconds (default 600)
//	--kubeconfig, --context, --values
func Deploy() *cobra.Command {
	var opts handlers.DeployOptions

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Install the observability stack",
		Long: `Install the demo observability stack onto the current cluster.

Releases are installed in dependency order: OpenSearch first, then
OpenSearch Dashboards and Jaeger, then the OpenTelemetry demo application.
Each install is followed by a readiness gate and a best-effort reachability
probe through a temporary port-forward tunnel.

Examples:
  # Deploy with defaults, prompting about tunnels at the end
  obstack deploy

  # Non-interactive deploy for CI
  obstack deploy --no-port-forward --timeout 900

  # Deploy without pre-pulling images
  obstack deploy --skip-prepull`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Deploy(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.AutoPortForward, "auto-port-forward", false, "Start verification tunnels without prompting")
	cmd.Flags().BoolVar(&opts.NoPortForward, "no-port-forward", false, "Never start verification tunnels")
	cmd.Flags().BoolVar(&opts.SkipPrepull, "skip-prepull", false, "Bypass the image pre-pull phase")
	cmd.Flags().IntVar(&opts.TimeoutSeconds, "timeout", 600, "Readiness timeout per workload in seconds")
	cmd.Flags().StringVar(&opts.KubeconfigPath, "kubeconfig", "", "Path to the kubeconfig file (default: client-go rules)")
	cmd.Flags().StringVar(&opts.KubeContext, "context", "", "Kubeconfig context to use (default: current context)")
	cmd.Flags().StringVar(&opts.ValuesDir, "values", "values", "Directory holding the per-release values overlays")
	cmd.MarkFlagsMutuallyExclusive("auto-port-forward", "no-port-forward")

	return cmd
}
