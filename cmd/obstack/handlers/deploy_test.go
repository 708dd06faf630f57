package handlers

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/obstack/obstack/internal/config"
	"github.com/obstack/obstack/internal/k8s"
	"github.com/obstack/obstack/internal/orchestration"
	"github.com/obstack/obstack/internal/preflight"
	"github.com/obstack/obstack/internal/prepull"
	"github.com/obstack/obstack/internal/release"
	"github.com/obstack/obstack/internal/verify"
	"github.com/obstack/obstack/pkg/logging"
)

type passingPreflight struct{}

func (passingPreflight) Run(_ context.Context, _ preflight.Requirements) error { return nil }

type recordingInstaller struct {
	installed   []string
	uninstalled []string
}

func (r *recordingInstaller) Install(_ context.Context, rel release.Release, _ release.Values) error {
	r.installed = append(r.installed, rel.Name)
	return nil
}

func (r *recordingInstaller) Uninstall(rel release.Release) error {
	r.uninstalled = append(r.uninstalled, rel.Name)
	return nil
}

type stubBackend struct{}

func (stubBackend) Name() string                           { return "stub" }
func (stubBackend) Available(_ context.Context) bool       { return true }
func (stubBackend) Pull(_ context.Context, _ string) error { return nil }

func testStackReleases(_ *config.Config) []release.Release {
	return []release.Release{
		{Name: "store", Namespace: "observability", Chart: "opensearch"},
		{Name: "tracing", Namespace: "observability", Chart: "jaeger", Needs: []string{"store"}},
	}
}

func TestDeploy(t *testing.T) {
	origLogger := newLogger
	origClient := newK8sClient
	origInstaller := newInstaller
	origChecker := newChecker
	origTunnels := newTunnelFactory
	origReleases := stackReleases
	origImages := stackImages
	origBackends := pullBackends
	origInteractive := isInteractive
	defer func() {
		newLogger = origLogger
		newK8sClient = origClient
		newInstaller = origInstaller
		newChecker = origChecker
		newTunnelFactory = origTunnels
		stackReleases = origReleases
		stackImages = origImages
		pullBackends = origBackends
		isInteractive = origInteractive
	}()

	installer := &recordingInstaller{}
	newLogger = logging.Discard
	newK8sClient = func(_, _ string, logger *slog.Logger) (*k8s.Client, error) {
		return k8s.NewClientForTesting(fake.NewClientset(), logger), nil
	}
	newInstaller = func(_, _ string, _ *slog.Logger) release.Installer { return installer }
	newChecker = func(_ *slog.Logger) orchestration.Preflighter { return passingPreflight{} }
	newTunnelFactory = func(_ *k8s.Client, _ *slog.Logger) verify.TunnelFactory {
		return func(_ context.Context, _, _ string, _ int) (verify.Tunnel, error) {
			t.Fatal("no tunnel should be opened in a non-interactive run")
			return nil, nil
		}
	}
	stackReleases = testStackReleases
	stackImages = func() []string { return []string{"img/a:1"} }
	pullBackends = func() []prepull.Backend { return []prepull.Backend{stubBackend{}} }
	isInteractive = func() bool { return false }

	err := Deploy(context.Background(), DeployOptions{TimeoutSeconds: 60})
	require.NoError(t, err)
	assert.Equal(t, []string{"store", "tracing"}, installer.installed)
}

func TestDeployConfigFlagMapping(t *testing.T) {
	t.Parallel()

	cfg := deployConfig(DeployOptions{
		NoPortForward:  true,
		SkipPrepull:    true,
		TimeoutSeconds: 120,
		KubeContext:    "minikube",
		ValuesDir:      "overlays",
	})
	assert.Equal(t, config.PortForwardNever, cfg.PortForward)
	assert.True(t, cfg.SkipPrepull)
	assert.Equal(t, "minikube", cfg.KubeContext)
	assert.Equal(t, "overlays", cfg.ValuesDir)
	assert.Equal(t, int64(120), int64(cfg.ReadinessTimeout.Seconds()))

	auto := deployConfig(DeployOptions{AutoPortForward: true})
	assert.Equal(t, config.PortForwardAuto, auto.PortForward)

	prompt := deployConfig(DeployOptions{})
	assert.Equal(t, config.PortForwardPrompt, prompt.PortForward)
	assert.Equal(t, config.DefaultReadinessTimeout, prompt.ReadinessTimeout)
}
