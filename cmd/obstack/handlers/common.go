// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command
// definitions in the commands package. Handlers are framework-agnostic and
// can be tested independently of the CLI framework.
package handlers

import (
	"log/slog"

	"github.com/obstack/obstack/internal/config"
	"github.com/obstack/obstack/internal/k8s"
	"github.com/obstack/obstack/internal/orchestration"
	"github.com/obstack/obstack/internal/preflight"
	"github.com/obstack/obstack/internal/prepull"
	"github.com/obstack/obstack/internal/provision"
	"github.com/obstack/obstack/internal/release"
	"github.com/obstack/obstack/internal/ui"
	"github.com/obstack/obstack/internal/verify"
	"github.com/obstack/obstack/pkg/logging"
)

// Factory function variables - can be replaced in tests for dependency
// injection.
var (
	// newLogger builds the process logger.
	newLogger = logging.Default

	// newK8sClient connects to the target cluster.
	newK8sClient = func(kubeconfigPath, kubeContext string, logger *slog.Logger) (*k8s.Client, error) {
		return k8s.NewClient(kubeconfigPath, kubeContext, logger)
	}

	// newInstaller builds the release installer.
	newInstaller = func(kubeconfigPath, kubeContext string, logger *slog.Logger) release.Installer {
		return release.NewHelmInstaller(kubeconfigPath, kubeContext, logger)
	}

	// newChecker builds the preflight checker.
	newChecker = func(logger *slog.Logger) orchestration.Preflighter {
		return preflight.New(logger)
	}

	// newTunnelFactory builds the port-forward tunnel factory.
	newTunnelFactory = func(client *k8s.Client, logger *slog.Logger) verify.TunnelFactory {
		return verify.NewPortForwardFactory(client, logger)
	}

	// newProvisioner builds the cluster-provisioning client.
	newProvisioner = func() provision.Provisioner {
		return provision.NewOCIProvisioner()
	}

	// stackReleases and stackImages describe the stack being deployed.
	stackReleases = config.StackReleases
	stackImages   = config.StackImages

	// pullBackends returns the candidate pre-pull backends.
	pullBackends = prepull.DefaultBackends

	// loadRecord reads the flat config record.
	loadRecord = config.LoadRecord

	// isInteractive and confirmTunnels drive the post-deploy prompt.
	isInteractive  = ui.IsInteractive
	confirmTunnels = ui.ConfirmTunnels
)
