// Package release defines the deployable units of the observability stack
// and installs them as Helm releases.
//
// A Release declares its dependencies explicitly via Needs; the install order
// is derived by topological sort rather than encoded in call order.
package release

import (
	"fmt"
	"time"
)

// WorkloadKind is the workload type a release's readiness gate watches.
type WorkloadKind string

const (
	KindDeployment  WorkloadKind = "Deployment"
	KindStatefulSet WorkloadKind = "StatefulSet"
)

// Workload identifies one workload the readiness gate must see fully
// available before the pipeline continues.
type Workload struct {
	Kind WorkloadKind
	Name string
}

// Probe describes the best-effort reachability check run after a release
// becomes ready: a temporary tunnel to Service on Port, polling Path.
type Probe struct {
	Service string
	Port    int
	Path    string

	// TimeoutSeconds bounds the once-per-second probe loop.
	TimeoutSeconds int
}

// Release is one named, independently installable unit: chart plus values.
// Uniquely identified by (Name, Namespace).
type Release struct {
	Name      string
	Namespace string

	RepoURL string
	Chart   string
	Version string

	// ValuesFiles are YAML overlay files merged in order, later files
	// taking precedence.
	ValuesFiles []string

	// Timeout bounds the synchronous install.
	Timeout time.Duration

	// Needs lists release names that must be installed and ready first.
	Needs []string

	// Workloads are the readiness targets gated after install.
	Workloads []Workload

	// Verify is the optional post-readiness reachability probe.
	Verify *Probe
}

// Validate checks the descriptor is complete enough to install.
func (r Release) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("release has no name")
	}
	if r.Namespace == "" {
		return fmt.Errorf("release %s has no namespace", r.Name)
	}
	if r.Chart == "" {
		return fmt.Errorf("release %s has no chart", r.Name)
	}
	return nil
}
