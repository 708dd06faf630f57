package release

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/cli"
	"helm.sh/helm/v3/pkg/kube"
	"helm.sh/helm/v3/pkg/storage/driver"
)

// Installer installs and uninstalls named releases.
type Installer interface {
	Install(ctx context.Context, rel Release, values Values) error
	Uninstall(rel Release) error
}

// InstallError is the fatal failure of a single release install. It aborts
// the whole pipeline; previously installed releases are not rolled back.
type InstallError struct {
	Name string
	Err  error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("install of release %s failed: %v", e.Name, e.Err)
}

func (e *InstallError) Unwrap() error { return e.Err }

// HelmInstaller installs releases through the Helm SDK.
type HelmInstaller struct {
	kubeconfigPath string
	kubeContext    string
	settings       *cli.EnvSettings
	logger         *slog.Logger
}

// NewHelmInstaller returns an installer targeting the given kubeconfig and
// context. Empty strings select the client-go defaults.
func NewHelmInstaller(kubeconfigPath, kubeContext string, logger *slog.Logger) *HelmInstaller {
	return &HelmInstaller{
		kubeconfigPath: kubeconfigPath,
		kubeContext:    kubeContext,
		settings:       cli.New(),
		logger:         logger,
	}
}

// Install performs a synchronous `helm install` of the release, waiting up
// to the release's timeout for the hooks and resources to land. Re-running
// against an already-installed release name fails with an InstallError;
// upgrade semantics are intentionally not provided.
func (h *HelmInstaller) Install(ctx context.Context, rel Release, values Values) error {
	if err := rel.Validate(); err != nil {
		return &InstallError{Name: rel.Name, Err: err}
	}

	actionConfig, err := h.actionConfig(rel.Namespace)
	if err != nil {
		return &InstallError{Name: rel.Name, Err: err}
	}

	install := action.NewInstall(actionConfig)
	install.ReleaseName = rel.Name
	install.Namespace = rel.Namespace
	install.CreateNamespace = true
	install.Version = rel.Version
	install.Wait = true
	install.Timeout = rel.Timeout
	if install.Timeout == 0 {
		install.Timeout = 10 * time.Minute
	}
	install.ChartPathOptions.RepoURL = rel.RepoURL
	install.ChartPathOptions.Version = rel.Version

	chartPath, err := install.ChartPathOptions.LocateChart(rel.Chart, h.settings)
	if err != nil {
		return &InstallError{Name: rel.Name, Err: fmt.Errorf("failed to locate chart %s: %w", rel.Chart, err)}
	}

	chart, err := loader.Load(chartPath)
	if err != nil {
		return &InstallError{Name: rel.Name, Err: fmt.Errorf("failed to load chart: %w", err)}
	}

	h.logger.Info("installing release", "release", rel.Name, "namespace", rel.Namespace, "chart", rel.Chart)
	if _, err := install.RunWithContext(ctx, chart, values); err != nil {
		return &InstallError{Name: rel.Name, Err: err}
	}
	return nil
}

// Uninstall removes the release. A release that was never installed is not
// an error; teardown must never fail its caller on not-found.
func (h *HelmInstaller) Uninstall(rel Release) error {
	actionConfig, err := h.actionConfig(rel.Namespace)
	if err != nil {
		return err
	}

	uninstall := action.NewUninstall(actionConfig)
	uninstall.Timeout = 5 * time.Minute

	if _, err := uninstall.Run(rel.Name); err != nil {
		if errors.Is(err, driver.ErrReleaseNotFound) {
			return nil
		}
		return fmt.Errorf("uninstall of release %s failed: %w", rel.Name, err)
	}
	return nil
}

func (h *HelmInstaller) actionConfig(namespace string) (*action.Configuration, error) {
	actionConfig := new(action.Configuration)
	getter := kube.GetConfig(h.kubeconfigPath, h.kubeContext, namespace)
	logf := func(format string, v ...interface{}) {
		h.logger.Debug(fmt.Sprintf(format, v...))
	}
	if err := actionConfig.Init(getter, namespace, os.Getenv("HELM_DRIVER"), logf); err != nil {
		return nil, fmt.Errorf("failed to init helm action config: %w", err)
	}
	return actionConfig, nil
}
