package provision

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/obstack/obstack/internal/config"
	"github.com/obstack/obstack/pkg/logging"
)

type fakeProvisioner struct {
	clusterID  string
	nodePoolID string

	clusterCreates  int
	nodePoolCreates int

	clusterStates  []string
	nodePoolStates []string

	createClusterErr error
}

func (f *fakeProvisioner) CreateCluster(_ context.Context, _ ClusterRequest) (string, error) {
	f.clusterCreates++
	if f.createClusterErr != nil {
		return "", f.createClusterErr
	}
	return f.clusterID, nil
}

func (f *fakeProvisioner) ClusterState(_ context.Context, _ string) (string, error) {
	return f.nextState(&f.clusterStates)
}

func (f *fakeProvisioner) CreateNodePool(_ context.Context, _ NodePoolRequest) (string, error) {
	f.nodePoolCreates++
	return f.nodePoolID, nil
}

func (f *fakeProvisioner) NodePoolState(_ context.Context, _ string) (string, error) {
	return f.nextState(&f.nodePoolStates)
}

func (f *fakeProvisioner) nextState(states *[]string) (string, error) {
	if len(*states) == 0 {
		return StateActive, nil
	}
	state := (*states)[0]
	if len(*states) > 1 {
		*states = (*states)[1:]
	}
	return state, nil
}

func provisioningRecord() *config.Record {
	record := config.NewRecord()
	record.Set(KeyCompartmentID, "ocid1.compartment.oc1..aaa")
	record.Set(KeyVCNID, "ocid1.vcn.oc1..bbb")
	record.Set(KeyEndpointSubnet, "ocid1.subnet.oc1..ccc")
	record.Set(KeyLBSubnet, "ocid1.subnet.oc1..ddd")
	record.Set(KeyNodeSubnet, "ocid1.subnet.oc1..eee")
	record.Set(KeyClusterName, "obstack-demo")
	record.Set(KeyKubernetesVer, "v1.30.1")
	record.Set(KeyNodeShape, "VM.Standard.E4.Flex")
	record.Set(KeyNodeCount, "3")
	return record
}

func testWorkflow(p Provisioner) *Workflow {
	return NewWorkflow(p, logging.Discard()).
		WithClock(clocktesting.NewFakeClock(time.Now()), time.Second, time.Minute)
}

func TestRunRecordsCreatedIDs(t *testing.T) {
	t.Parallel()

	provisioner := &fakeProvisioner{clusterID: "cluster-123", nodePoolID: "nodepool-456"}
	record := provisioningRecord()
	originalKeys := record.Keys()

	err := testWorkflow(provisioner).Run(context.Background(), record)
	require.NoError(t, err)

	clusterID, ok := record.Get(KeyClusterID)
	require.True(t, ok)
	assert.Equal(t, "cluster-123", clusterID)

	nodePoolID, ok := record.Get(KeyNodePoolID)
	require.True(t, ok)
	assert.Equal(t, "nodepool-456", nodePoolID)

	// Original keys keep their positions; the IDs are appended.
	assert.Equal(t, append(originalKeys, KeyClusterID, KeyNodePoolID), record.Keys())
}

func TestRunPollsUntilActive(t *testing.T) {
	t.Parallel()

	provisioner := &fakeProvisioner{
		clusterID:     "cluster-123",
		nodePoolID:    "nodepool-456",
		clusterStates: []string{StateCreating, StateCreating, StateActive},
	}

	clk := clocktesting.NewFakeClock(time.Now())
	workflow := NewWorkflow(provisioner, logging.Discard()).WithClock(clk, time.Second, time.Minute)

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			default:
			}
			if clk.HasWaiters() {
				clk.Step(time.Second)
			}
			time.Sleep(time.Millisecond)
		}
	}()

	err := workflow.Run(context.Background(), provisioningRecord())
	require.NoError(t, err)
	// Both CREATING responses were consumed before ACTIVE.
	assert.Equal(t, []string{StateActive}, provisioner.clusterStates)
}

func TestRunResumesFromRecordedIDs(t *testing.T) {
	t.Parallel()

	provisioner := &fakeProvisioner{clusterID: "cluster-new", nodePoolID: "nodepool-new"}
	record := provisioningRecord()
	record.Set(KeyClusterID, "cluster-123")
	record.Set(KeyNodePoolID, "nodepool-456")

	err := testWorkflow(provisioner).Run(context.Background(), record)
	require.NoError(t, err)

	// Nothing is re-created; the recorded IDs stand.
	assert.Equal(t, 0, provisioner.clusterCreates)
	assert.Equal(t, 0, provisioner.nodePoolCreates)
	clusterID, _ := record.Get(KeyClusterID)
	assert.Equal(t, "cluster-123", clusterID)
}

func TestRunFailedStateIsTerminal(t *testing.T) {
	t.Parallel()

	provisioner := &fakeProvisioner{clusterID: "cluster-123", clusterStates: []string{StateFailed}}

	err := testWorkflow(provisioner).Run(context.Background(), provisioningRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FAILED")
}

func TestRunTimesOutWaitingForActive(t *testing.T) {
	t.Parallel()

	provisioner := &fakeProvisioner{clusterID: "cluster-123", clusterStates: []string{StateCreating}}

	clk := clocktesting.NewFakeClock(time.Now())
	workflow := NewWorkflow(provisioner, logging.Discard()).WithClock(clk, time.Second, 3*time.Second)

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			default:
			}
			if clk.HasWaiters() {
				clk.Step(time.Second)
			}
			time.Sleep(time.Millisecond)
		}
	}()

	err := workflow.Run(context.Background(), provisioningRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not ACTIVE after")
}

func TestRunMissingRequiredKey(t *testing.T) {
	t.Parallel()

	record := provisioningRecord()
	incomplete := config.NewRecord()
	for _, key := range record.Keys() {
		if key == KeyVCNID {
			continue
		}
		v, _ := record.Get(key)
		incomplete.Set(key, v)
	}

	provisioner := &fakeProvisioner{clusterID: "cluster-123"}
	err := testWorkflow(provisioner).Run(context.Background(), incomplete)
	require.Error(t, err)
	assert.Contains(t, err.Error(), KeyVCNID)
	assert.Equal(t, 0, provisioner.clusterCreates)
}

func TestRunCreateFailureKeepsRecordUnchanged(t *testing.T) {
	t.Parallel()

	provisioner := &fakeProvisioner{createClusterErr: errors.New("quota exceeded")}
	record := provisioningRecord()

	err := testWorkflow(provisioner).Run(context.Background(), record)
	require.Error(t, err)
	_, ok := record.Get(KeyClusterID)
	assert.False(t, ok)
}

func TestRunInvalidNodeCount(t *testing.T) {
	t.Parallel()

	record := provisioningRecord()
	record.Set(KeyNodeCount, "zero")

	provisioner := &fakeProvisioner{clusterID: "cluster-123"}
	err := testWorkflow(provisioner).Run(context.Background(), record)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid NODE_COUNT")
}
