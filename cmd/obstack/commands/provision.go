package commands

import (
	"github.com/spf13/cobra"

	"github.com/obstack/obstack/cmd/obstack/handlers"
)

// Provision returns the command that creates the OKE cluster and node pool.
//
// Inputs (compartment, VCN, subnets, cluster name, Kubernetes version, node
// shape and count) come from a flat KEY=value config file. The OCIDs of the
// created cluster and node pool are written back into the same file next to
// the original keys.
func Provision() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Create the OKE cluster and node pool",
		Long: `Create an OKE cluster and node pool using the oci CLI.

Reads identifiers from the config file, creates whatever is not yet
recorded there, waits for each resource to become ACTIVE, and rewrites the
file with CLUSTER_ID and NODEPOOL_ID added.

Example:
  obstack provision --config obstack.conf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Provision(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "obstack.conf", "Path to the KEY=value config file")

	return cmd
}
