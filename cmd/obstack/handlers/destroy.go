package handlers

import (
	"context"
	"fmt"

	"github.com/obstack/obstack/internal/config"
	"github.com/obstack/obstack/internal/release"
	"github.com/obstack/obstack/internal/teardown"
)

// DestroyOptions carries the destroy command flags.
type DestroyOptions struct {
	KubeconfigPath string
	KubeContext    string
}

// Destroy removes the stack: releases in reverse dependency order, then the
// stack namespaces. Individual failures are logged and skipped so the run
// always completes; destroying a cluster that never saw a deploy is a no-op.
func Destroy(ctx context.Context, opts DestroyOptions) error {
	logger := newLogger()
	cfg := config.NewConfig()
	cfg.KubeconfigPath = opts.KubeconfigPath
	if opts.KubeContext != "" {
		cfg.KubeContext = opts.KubeContext
	}

	client, err := newK8sClient(cfg.KubeconfigPath, cfg.KubeContext, logger)
	if err != nil {
		return fmt.Errorf("building cluster client: %w", err)
	}

	ordered, err := release.Order(stackReleases(cfg))
	if err != nil {
		return fmt.Errorf("invalid release set: %w", err)
	}

	installer := newInstaller(cfg.KubeconfigPath, cfg.KubeContext, logger)
	teardown.New(installer, client, nil, logger).Run(ctx, ordered)
	return nil
}
