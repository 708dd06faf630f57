// Package orchestration sequences the deploy pipeline: preflight, image
// pre-pull, then install / readiness-gate / verify per release in dependency
// order, followed by a final report.
//
// The pipeline is a single logical thread of control. Nothing runs in
// parallel except verification tunnels, which are child connections tracked
// by the Tracker and torn down before their probe window closes.
package orchestration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/obstack/obstack/internal/config"
	"github.com/obstack/obstack/internal/k8s"
	"github.com/obstack/obstack/internal/preflight"
	"github.com/obstack/obstack/internal/prepull"
	"github.com/obstack/obstack/internal/release"
)

// Preflighter runs the preflight checks.
type Preflighter interface {
	Run(ctx context.Context, req preflight.Requirements) error
}

// ReadinessGate blocks until a workload is ready or a timeout elapses.
type ReadinessGate interface {
	WaitReady(ctx context.Context, target k8s.Target, timeout time.Duration) error
}

// ServiceVerifier probes a service endpoint through a temporary tunnel.
type ServiceVerifier interface {
	Verify(ctx context.Context, namespace string, probe release.Probe) error
}

// Pipeline wires the deploy phases together.
type Pipeline struct {
	cfg       *config.Config
	preflight Preflighter
	backends  []prepull.Backend
	installer release.Installer
	gate      ReadinessGate
	verifier  ServiceVerifier
	logger    *slog.Logger
}

// New assembles a Pipeline from its phases.
func New(
	cfg *config.Config,
	pf Preflighter,
	backends []prepull.Backend,
	installer release.Installer,
	gate ReadinessGate,
	verifier ServiceVerifier,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		preflight: pf,
		backends:  backends,
		installer: installer,
		gate:      gate,
		verifier:  verifier,
		logger:    logger,
	}
}

// Run executes the pipeline against the given releases and pre-pull
// manifest. Fatal errors abort at the point of failure with no rollback of
// earlier releases; teardown is a separate, manual pipeline. The returned
// Report covers whatever phases completed.
func (p *Pipeline) Run(ctx context.Context, releases []release.Release, images []string, pingCluster func(context.Context) error) (*Report, error) {
	report := &Report{Started: time.Now()}

	ordered, err := release.Order(releases)
	if err != nil {
		return report, fmt.Errorf("invalid release set: %w", err)
	}

	p.logger.Info("running preflight checks")
	req := preflight.Requirements{
		Tools:         preflight.DefaultTools(),
		RequiredFiles: config.RequiredFiles(p.cfg),
		MinCPUCores:   p.cfg.MinCPUCores,
		MinMemoryMB:   p.cfg.MinMemoryMB,
		PingCluster:   pingCluster,
	}
	if err := p.preflight.Run(ctx, req); err != nil {
		return report, fmt.Errorf("preflight failed: %w", err)
	}
	report.PreflightOK = true

	if p.cfg.SkipPrepull {
		p.logger.Info("image pre-pull skipped")
	} else {
		prepullReport, err := p.prepullPhase(ctx, images)
		if err != nil {
			return report, err
		}
		report.Prepull = prepullReport
	}

	for _, rel := range ordered {
		result, err := p.deployRelease(ctx, rel)
		report.Releases = append(report.Releases, result)
		if err != nil {
			return report, err
		}
	}

	report.Finished = time.Now()
	return report, nil
}

// prepullPhase selects a backend and pulls the manifest. A missing backend
// is fatal; individual pull failures are not.
func (p *Pipeline) prepullPhase(ctx context.Context, images []string) (*prepull.Report, error) {
	backend, err := prepull.Detect(ctx, p.backends)
	if err != nil {
		return nil, fmt.Errorf("pre-pull unavailable (use --skip-prepull to bypass): %w", err)
	}

	p.logger.Info("pre-pulling images", "backend", backend.Name(), "count", len(images))
	r := prepull.NewPuller(backend, p.logger).Pull(ctx, images)
	p.logger.Info("pre-pull done", "succeeded", len(r.Succeeded), "failed", len(r.Failed))
	return &r, nil
}

// deployRelease runs install, readiness gate, and verification for one
// release. Install and readiness failures are fatal; verification failure
// only marks the result.
func (p *Pipeline) deployRelease(ctx context.Context, rel release.Release) (ReleaseResult, error) {
	result := ReleaseResult{Name: rel.Name, Namespace: rel.Namespace}

	values, err := release.LoadValues(rel.ValuesFiles)
	if err != nil {
		return result, &release.InstallError{Name: rel.Name, Err: err}
	}

	if err := p.installer.Install(ctx, rel, values); err != nil {
		return result, err
	}
	result.Installed = true

	for _, workload := range rel.Workloads {
		target := k8s.Target{
			Namespace: rel.Namespace,
			Kind:      k8s.WorkloadKind(workload.Kind),
			Name:      workload.Name,
		}
		if err := p.gate.WaitReady(ctx, target, rel.Timeout); err != nil {
			return result, err
		}
	}
	result.Ready = true

	if rel.Verify != nil {
		if err := p.verifier.Verify(ctx, rel.Namespace, *rel.Verify); err != nil {
			p.logger.Warn("verification failed, continuing", "release", rel.Name, "error", err)
			result.VerifyWarning = err.Error()
		} else {
			result.Verified = true
		}
	}

	return result, nil
}
