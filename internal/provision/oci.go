package provision

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// OCIProvisioner drives the `oci` CLI. The container-engine API is consumed
// as a black box; only the success/failure signals and lifecycle states are
// interpreted here.
type OCIProvisioner struct {
	runner func(ctx context.Context, args ...string) ([]byte, error)
}

// NewOCIProvisioner returns a Provisioner shelling out to `oci`.
func NewOCIProvisioner() *OCIProvisioner {
	return &OCIProvisioner{}
}

func (p *OCIProvisioner) run(ctx context.Context, args ...string) ([]byte, error) {
	if p.runner != nil {
		return p.runner(ctx, args...)
	}
	// #nosec G204 - args are assembled from record values the operator controls
	out, err := exec.CommandContext(ctx, "oci", args...).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("oci %s failed: %w: %s", args[0], err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("oci %s failed: %w", args[0], err)
	}
	return out, nil
}

// CreateCluster submits the create and resolves the new cluster's OCID by
// name, since the create response only carries a work request.
func (p *OCIProvisioner) CreateCluster(ctx context.Context, req ClusterRequest) (string, error) {
	_, err := p.run(ctx,
		"ce", "cluster", "create",
		"--compartment-id", req.CompartmentID,
		"--name", req.Name,
		"--kubernetes-version", req.KubernetesVersion,
		"--vcn-id", req.VCNID,
		"--endpoint-subnet-id", req.EndpointSubnetID,
		"--service-lb-subnet-ids", fmt.Sprintf(`["%s"]`, req.LBSubnetID),
	)
	if err != nil {
		return "", err
	}

	out, err := p.run(ctx,
		"ce", "cluster", "list",
		"--compartment-id", req.CompartmentID,
		"--name", req.Name,
		"--lifecycle-state", "CREATING",
		"--lifecycle-state", "ACTIVE",
		"--query", "data[0].id",
		"--raw-output",
	)
	if err != nil {
		return "", fmt.Errorf("could not resolve new cluster id: %w", err)
	}
	id := strings.TrimSpace(string(out))
	if id == "" || id == "null" {
		return "", fmt.Errorf("cluster %s not found after create", req.Name)
	}
	return id, nil
}

// ClusterState returns the cluster's lifecycle state.
func (p *OCIProvisioner) ClusterState(ctx context.Context, id string) (string, error) {
	return p.lifecycleState(ctx, "cluster", "--cluster-id", id)
}

// CreateNodePool submits the node pool create and resolves its OCID.
func (p *OCIProvisioner) CreateNodePool(ctx context.Context, req NodePoolRequest) (string, error) {
	placement := fmt.Sprintf(`[{"availabilityDomain": null, "subnetId": "%s"}]`, req.SubnetID)
	_, err := p.run(ctx,
		"ce", "node-pool", "create",
		"--cluster-id", req.ClusterID,
		"--compartment-id", req.CompartmentID,
		"--name", req.Name,
		"--kubernetes-version", req.KubernetesVersion,
		"--node-shape", req.Shape,
		"--size", strconv.Itoa(req.Size),
		"--placement-configs", placement,
	)
	if err != nil {
		return "", err
	}

	out, err := p.run(ctx,
		"ce", "node-pool", "list",
		"--cluster-id", req.ClusterID,
		"--compartment-id", req.CompartmentID,
		"--name", req.Name,
		"--query", "data[0].id",
		"--raw-output",
	)
	if err != nil {
		return "", fmt.Errorf("could not resolve new node pool id: %w", err)
	}
	id := strings.TrimSpace(string(out))
	if id == "" || id == "null" {
		return "", fmt.Errorf("node pool %s not found after create", req.Name)
	}
	return id, nil
}

// NodePoolState returns the node pool's lifecycle state.
func (p *OCIProvisioner) NodePoolState(ctx context.Context, id string) (string, error) {
	return p.lifecycleState(ctx, "node-pool", "--node-pool-id", id)
}

func (p *OCIProvisioner) lifecycleState(ctx context.Context, resource, idFlag, id string) (string, error) {
	out, err := p.run(ctx, "ce", resource, "get", idFlag, id)
	if err != nil {
		return "", err
	}

	var payload struct {
		Data struct {
			LifecycleState string `json:"lifecycle-state"`
		} `json:"data"`
	}
	if err := json.Unmarshal(out, &payload); err != nil {
		return "", fmt.Errorf("unexpected %s get output: %w", resource, err)
	}
	if payload.Data.LifecycleState == "" {
		return "", fmt.Errorf("no lifecycle state in %s get output", resource)
	}
	return payload.Data.LifecycleState, nil
}
