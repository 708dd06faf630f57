package handlers

import (
	"context"
	"fmt"

	"github.com/obstack/obstack/internal/config"
	"github.com/obstack/obstack/internal/preflight"
	"github.com/obstack/obstack/internal/ui"
)

// DoctorOptions carries the doctor command flags.
type DoctorOptions struct {
	KubeconfigPath string
	KubeContext    string
	ValuesDir      string
}

// Doctor runs every preflight check against the current host and cluster
// without deploying anything: required tools and version floors, values
// overlay files, cluster reachability, and the advisory resource floors.
func Doctor(ctx context.Context, opts DoctorOptions) error {
	logger := newLogger()
	cfg := config.NewConfig()
	cfg.KubeconfigPath = opts.KubeconfigPath
	if opts.KubeContext != "" {
		cfg.KubeContext = opts.KubeContext
	}
	if opts.ValuesDir != "" {
		cfg.ValuesDir = opts.ValuesDir
	}

	req := preflight.Requirements{
		Tools:         preflight.DefaultTools(),
		RequiredFiles: config.RequiredFiles(cfg),
		MinCPUCores:   cfg.MinCPUCores,
		MinMemoryMB:   cfg.MinMemoryMB,
	}

	client, err := newK8sClient(cfg.KubeconfigPath, cfg.KubeContext, logger)
	if err != nil {
		logger.Warn("could not build cluster client", "error", err)
	} else {
		req.PingCluster = client.Ping
	}

	checker := newChecker(logger)
	if err := checker.Run(ctx, req); err != nil {
		fmt.Printf("%s %v\n", ui.WarnMark, err)
		return err
	}

	// Provisioning tooling is only needed for the provision command, so its
	// absence is advisory here.
	if err := checker.Run(ctx, preflight.Requirements{Tools: preflight.ProvisionTools()}); err != nil {
		logger.Warn("provisioning tooling not ready", "error", err)
	}

	fmt.Printf("%s host and cluster are ready for a deploy\n", ui.OKMark)
	return nil
}
