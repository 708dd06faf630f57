package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/obstack/obstack/internal/config"
	"github.com/obstack/obstack/internal/orchestration"
	"github.com/obstack/obstack/internal/release"
	"github.com/obstack/obstack/internal/ui"
	"github.com/obstack/obstack/internal/verify"
)

// DeployOptions carries the deploy command flags.
type DeployOptions struct {
	AutoPortForward bool
	NoPortForward   bool
	SkipPrepull     bool
	TimeoutSeconds  int
	KubeconfigPath  string
	KubeContext     string
	ValuesDir       string
}

// Deploy runs the full deploy pipeline: preflight, image pre-pull, install
// each release in dependency order with a readiness gate and verification
// probe, then optionally start port-forward tunnels to the deployed
// services.
func Deploy(ctx context.Context, opts DeployOptions) error {
	logger := newLogger()
	cfg := deployConfig(opts)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := newK8sClient(cfg.KubeconfigPath, cfg.KubeContext, logger)
	if err != nil {
		return fmt.Errorf("building cluster client: %w", err)
	}

	tracker := verify.NewTracker()
	defer tracker.CloseAll()

	tunnels := newTunnelFactory(client, logger)
	pipeline := orchestration.New(
		cfg,
		newChecker(logger),
		pullBackends(),
		newInstaller(cfg.KubeconfigPath, cfg.KubeContext, logger),
		client.Waiter(),
		verify.NewVerifier(tunnels, logger),
		logger,
	)

	releases := stackReleases(cfg)
	report, runErr := pipeline.Run(ctx, releases, stackImages(), client.Ping)
	ui.RenderReport(os.Stdout, report)
	if runErr != nil {
		return runErr
	}

	return startTunnels(ctx, cfg, releases, tunnels, tracker)
}

// deployConfig resolves flags over environment defaults.
func deployConfig(opts DeployOptions) *config.Config {
	cfg := config.NewConfig()
	cfg.KubeconfigPath = opts.KubeconfigPath
	if opts.KubeContext != "" {
		cfg.KubeContext = opts.KubeContext
	}
	if opts.TimeoutSeconds > 0 {
		cfg.ReadinessTimeout = time.Duration(opts.TimeoutSeconds) * time.Second
	}
	if opts.ValuesDir != "" {
		cfg.ValuesDir = opts.ValuesDir
	}
	cfg.SkipPrepull = opts.SkipPrepull
	switch {
	case opts.NoPortForward:
		cfg.PortForward = config.PortForwardNever
	case opts.AutoPortForward:
		cfg.PortForward = config.PortForwardAuto
	default:
		cfg.PortForward = config.PortForwardPrompt
	}
	return cfg
}

// startTunnels opens a tunnel per probed service and blocks until the run is
// interrupted. Individual tunnel failures are printed and skipped; the deploy
// itself has already succeeded.
func startTunnels(ctx context.Context, cfg *config.Config, releases []release.Release, tunnels verify.TunnelFactory, tracker *verify.Tracker) error {
	switch cfg.PortForward {
	case config.PortForwardNever:
		return nil
	case config.PortForwardPrompt:
		if !isInteractive() || !confirmTunnels() {
			return nil
		}
	}

	opened := 0
	for _, rel := range releases {
		if rel.Verify == nil {
			continue
		}
		tunnel, err := tunnels(ctx, rel.Namespace, rel.Verify.Service, rel.Verify.Port)
		if err != nil {
			fmt.Printf("%s %s: %v\n", ui.WarnMark, rel.Verify.Service, err)
			continue
		}
		tracker.Track(tunnel)
		fmt.Printf("%s %s -> http://%s\n", ui.OKMark, rel.Verify.Service, tunnel.Addr())
		opened++
	}
	if opened == 0 {
		return nil
	}

	fmt.Println("Press Ctrl-C to stop the tunnels.")
	<-ctx.Done()
	return nil
}
