// Package provision creates the OKE cluster and node pool the stack deploys
// onto. It is a one-off workflow: read the flat config record, create what
// is missing, poll until ACTIVE, and write the returned OCIDs back into the
// record alongside the original keys.
package provision

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"k8s.io/utils/clock"

	"github.com/obstack/obstack/internal/config"
)

// Lifecycle states reported by the container engine API.
const (
	StateActive   = "ACTIVE"
	StateCreating = "CREATING"
	StateFailed   = "FAILED"
)

// ClusterRequest describes the cluster to create.
type ClusterRequest struct {
	CompartmentID     string
	VCNID             string
	Name              string
	KubernetesVersion string
	EndpointSubnetID  string
	LBSubnetID        string
}

// NodePoolRequest describes the node pool to attach.
type NodePoolRequest struct {
	CompartmentID     string
	ClusterID         string
	Name              string
	KubernetesVersion string
	Shape             string
	Size              int
	SubnetID          string
}

// Provisioner is the cluster-provisioning API consumed as a black box.
type Provisioner interface {
	CreateCluster(ctx context.Context, req ClusterRequest) (string, error)
	ClusterState(ctx context.Context, id string) (string, error)
	CreateNodePool(ctx context.Context, req NodePoolRequest) (string, error)
	NodePoolState(ctx context.Context, id string) (string, error)
}

// Record keys the workflow reads and writes.
const (
	KeyCompartmentID  = "COMPARTMENT_ID"
	KeyVCNID          = "VCN_ID"
	KeyEndpointSubnet = "ENDPOINT_SUBNET_ID"
	KeyLBSubnet       = "LB_SUBNET_ID"
	KeyNodeSubnet     = "NODE_SUBNET_ID"
	KeyClusterName    = "CLUSTER_NAME"
	KeyKubernetesVer  = "KUBERNETES_VERSION"
	KeyNodeShape      = "NODE_SHAPE"
	KeyNodeCount      = "NODE_COUNT"
	KeyClusterID      = "CLUSTER_ID"
	KeyNodePoolID     = "NODEPOOL_ID"
)

// Workflow drives provisioning against a Provisioner and a config record.
type Workflow struct {
	provisioner Provisioner
	clock       clock.Clock
	interval    time.Duration
	timeout     time.Duration
	logger      *slog.Logger
}

// NewWorkflow returns a Workflow polling every 30s for up to 30 minutes per
// resource.
func NewWorkflow(p Provisioner, logger *slog.Logger) *Workflow {
	return &Workflow{
		provisioner: p,
		clock:       clock.RealClock{},
		interval:    30 * time.Second,
		timeout:     30 * time.Minute,
		logger:      logger,
	}
}

// WithClock substitutes the clock and polling parameters. Used in tests.
func (w *Workflow) WithClock(clk clock.Clock, interval, timeout time.Duration) *Workflow {
	w.clock = clk
	w.interval = interval
	w.timeout = timeout
	return w
}

// Run creates the cluster and node pool if the record does not already name
// them, polling each until ACTIVE. The record is mutated in memory; the
// caller persists it at the end of the run (single checkpoint).
func (w *Workflow) Run(ctx context.Context, record *config.Record) error {
	clusterID, ok := record.Get(KeyClusterID)
	if !ok {
		req, err := w.clusterRequest(record)
		if err != nil {
			return err
		}
		w.logger.Info("creating cluster", "name", req.Name, "version", req.KubernetesVersion)
		clusterID, err = w.provisioner.CreateCluster(ctx, req)
		if err != nil {
			return fmt.Errorf("cluster create failed: %w", err)
		}
		record.Set(KeyClusterID, clusterID)
	}

	if err := w.waitActive(ctx, "cluster", clusterID, w.provisioner.ClusterState); err != nil {
		return err
	}

	nodePoolID, ok := record.Get(KeyNodePoolID)
	if !ok {
		req, err := w.nodePoolRequest(record, clusterID)
		if err != nil {
			return err
		}
		w.logger.Info("creating node pool", "name", req.Name, "shape", req.Shape, "size", req.Size)
		nodePoolID, err = w.provisioner.CreateNodePool(ctx, req)
		if err != nil {
			return fmt.Errorf("node pool create failed: %w", err)
		}
		record.Set(KeyNodePoolID, nodePoolID)
	}

	if err := w.waitActive(ctx, "node pool", nodePoolID, w.provisioner.NodePoolState); err != nil {
		return err
	}

	w.logger.Info("provisioning complete", "cluster", clusterID, "nodePool", nodePoolID)
	return nil
}

// waitActive polls the resource state until ACTIVE, FAILED, or the bound.
func (w *Workflow) waitActive(ctx context.Context, what, id string, stateFn func(context.Context, string) (string, error)) error {
	deadline := w.clock.Now().Add(w.timeout)

	for {
		state, err := stateFn(ctx, id)
		if err != nil {
			w.logger.Debug("state query failed", "resource", what, "error", err)
		} else {
			switch state {
			case StateActive:
				w.logger.Info("resource active", "resource", what, "id", id)
				return nil
			case StateFailed:
				return fmt.Errorf("%s %s entered FAILED state", what, id)
			default:
				w.logger.Info("waiting for resource", "resource", what, "state", state)
			}
		}

		if !w.clock.Now().Before(deadline) {
			return fmt.Errorf("%s %s not ACTIVE after %s", what, id, w.timeout)
		}

		timer := w.clock.NewTimer(w.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C():
		}
	}
}

func (w *Workflow) clusterRequest(record *config.Record) (ClusterRequest, error) {
	req := ClusterRequest{}
	var err error
	if req.CompartmentID, err = requireKey(record, KeyCompartmentID); err != nil {
		return req, err
	}
	if req.VCNID, err = requireKey(record, KeyVCNID); err != nil {
		return req, err
	}
	if req.EndpointSubnetID, err = requireKey(record, KeyEndpointSubnet); err != nil {
		return req, err
	}
	if req.LBSubnetID, err = requireKey(record, KeyLBSubnet); err != nil {
		return req, err
	}
	if req.Name, err = requireKey(record, KeyClusterName); err != nil {
		return req, err
	}
	if req.KubernetesVersion, err = requireKey(record, KeyKubernetesVer); err != nil {
		return req, err
	}
	return req, nil
}

func (w *Workflow) nodePoolRequest(record *config.Record, clusterID string) (NodePoolRequest, error) {
	req := NodePoolRequest{ClusterID: clusterID, Size: 3}
	var err error
	if req.CompartmentID, err = requireKey(record, KeyCompartmentID); err != nil {
		return req, err
	}
	if req.SubnetID, err = requireKey(record, KeyNodeSubnet); err != nil {
		return req, err
	}
	if req.KubernetesVersion, err = requireKey(record, KeyKubernetesVer); err != nil {
		return req, err
	}
	if req.Shape, err = requireKey(record, KeyNodeShape); err != nil {
		return req, err
	}
	name, _ := record.Get(KeyClusterName)
	req.Name = name + "-pool"
	if v, ok := record.Get(KeyNodeCount); ok {
		n, convErr := strconv.Atoi(v)
		if convErr != nil || n < 1 {
			return req, fmt.Errorf("invalid %s value %q", KeyNodeCount, v)
		}
		req.Size = n
	}
	return req, nil
}

func requireKey(record *config.Record, key string) (string, error) {
	v, ok := record.Get(key)
	if !ok || v == "" {
		return "", fmt.Errorf("config record is missing required key %s", key)
	}
	return v, nil
}
