package handlers

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obstack/obstack/internal/orchestration"
	"github.com/obstack/obstack/internal/provision"
	"github.com/obstack/obstack/pkg/logging"
)

type stubProvisioner struct{}

func (stubProvisioner) CreateCluster(_ context.Context, _ provision.ClusterRequest) (string, error) {
	return "cluster-123", nil
}

func (stubProvisioner) ClusterState(_ context.Context, _ string) (string, error) {
	return provision.StateActive, nil
}

func (stubProvisioner) CreateNodePool(_ context.Context, _ provision.NodePoolRequest) (string, error) {
	return "nodepool-456", nil
}

func (stubProvisioner) NodePoolState(_ context.Context, _ string) (string, error) {
	return provision.StateActive, nil
}

func TestProvision(t *testing.T) {
	origLogger := newLogger
	origChecker := newChecker
	origProvisioner := newProvisioner
	defer func() {
		newLogger = origLogger
		newChecker = origChecker
		newProvisioner = origProvisioner
	}()

	newLogger = logging.Discard
	newChecker = func(_ *slog.Logger) orchestration.Preflighter { return passingPreflight{} }
	newProvisioner = func() provision.Provisioner { return stubProvisioner{} }

	path := filepath.Join(t.TempDir(), "obstack.conf")
	input := "COMPARTMENT_ID=ocid1.compartment.oc1..aaa\n" +
		"VCN_ID=ocid1.vcn.oc1..bbb\n" +
		"ENDPOINT_SUBNET_ID=ocid1.subnet.oc1..ccc\n" +
		"LB_SUBNET_ID=ocid1.subnet.oc1..ddd\n" +
		"NODE_SUBNET_ID=ocid1.subnet.oc1..eee\n" +
		"CLUSTER_NAME=obstack-demo\n" +
		"KUBERNETES_VERSION=v1.30.1\n" +
		"NODE_SHAPE=VM.Standard.E4.Flex\n" +
		"NODE_COUNT=3\n"
	require.NoError(t, os.WriteFile(path, []byte(input), 0o600))

	err := Provision(context.Background(), path)
	require.NoError(t, err)

	// The record is rewritten with the new IDs appended after the inputs.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, input+"CLUSTER_ID=cluster-123\nNODEPOOL_ID=nodepool-456\n", string(data))
}

func TestProvisionMissingInput(t *testing.T) {
	origLogger := newLogger
	origChecker := newChecker
	origProvisioner := newProvisioner
	defer func() {
		newLogger = origLogger
		newChecker = origChecker
		newProvisioner = origProvisioner
	}()

	newLogger = logging.Discard
	newChecker = func(_ *slog.Logger) orchestration.Preflighter { return passingPreflight{} }
	newProvisioner = func() provision.Provisioner { return stubProvisioner{} }

	path := filepath.Join(t.TempDir(), "obstack.conf")
	require.NoError(t, os.WriteFile(path, []byte("CLUSTER_NAME=demo\n"), 0o600))

	err := Provision(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required key")
}
