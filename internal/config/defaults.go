package config

import (
	"path/filepath"
	"time"

	"github.com/obstack/obstack/internal/release"
)

// Namespaces used by the stack.
const (
	NamespaceObservability = "observability"
	NamespaceDemo          = "otel-demo"
)

// StackReleases returns the releases making up the demo observability stack,
// dependencies declared explicitly. Later releases assume earlier ones are
// reachable (Jaeger points at the OpenSearch service name), so the edges
// matter, not the slice order.
func StackReleases(cfg *Config) []release.Release {
	timeout := cfg.ReadinessTimeout
	values := func(name string) []string {
		return []string{filepath.Join(cfg.ValuesDir, name+"-values.yaml")}
	}

	return []release.Release{
		{
			Name:        "opensearch",
			Namespace:   NamespaceObservability,
			RepoURL:     "https://opensearch-project.github.io/helm-charts",
			Chart:       "opensearch",
			Version:     "2.23.1",
			ValuesFiles: values("opensearch"),
			Timeout:     timeout,
			Workloads: []release.Workload{
				{Kind: release.KindStatefulSet, Name: "opensearch-cluster-master"},
			},
		},
		{
			Name:        "opensearch-dashboards",
			Namespace:   NamespaceObservability,
			RepoURL:     "https://opensearch-project.github.io/helm-charts",
			Chart:       "opensearch-dashboards",
			Version:     "2.21.1",
			ValuesFiles: values("dashboards"),
			Timeout:     timeout,
			Needs:       []string{"opensearch"},
			Workloads: []release.Workload{
				{Kind: release.KindDeployment, Name: "opensearch-dashboards"},
			},
			Verify: &release.Probe{
				Service:        "opensearch-dashboards",
				Port:           5601,
				Path:           "/api/status",
				TimeoutSeconds: 30,
			},
		},
		{
			Name:        "jaeger",
			Namespace:   NamespaceObservability,
			RepoURL:     "https://jaegertracing.github.io/helm-charts",
			Chart:       "jaeger",
			Version:     "3.3.1",
			ValuesFiles: values("jaeger"),
			Timeout:     timeout,
			Needs:       []string{"opensearch"},
			Workloads: []release.Workload{
				{Kind: release.KindDeployment, Name: "jaeger-collector"},
				{Kind: release.KindDeployment, Name: "jaeger-query"},
			},
			Verify: &release.Probe{
				Service:        "jaeger-query",
				Port:           16686,
				Path:           "/",
				TimeoutSeconds: 30,
			},
		},
		{
			Name:        "otel-demo",
			Namespace:   NamespaceDemo,
			RepoURL:     "https://open-telemetry.github.io/opentelemetry-helm-charts",
			Chart:       "opentelemetry-demo",
			Version:     "0.33.8",
			ValuesFiles: values("otel-demo"),
			Timeout:     timeout,
			Needs:       []string{"jaeger"},
			Workloads: []release.Workload{
				{Kind: release.KindDeployment, Name: "otel-demo-frontend"},
				{Kind: release.KindDeployment, Name: "otel-demo-frontendproxy"},
			},
			Verify: &release.Probe{
				Service:        "otel-demo-frontendproxy",
				Port:           8080,
				Path:           "/",
				TimeoutSeconds: 30,
			},
		},
	}
}

// StackImages is the ordered pre-pull manifest: every image the stack
// schedules, pinned. Order only affects log presentation.
func StackImages() []string {
	return []string{
		"opensearchproject/opensearch:2.19.1",
		"opensearchproject/opensearch-dashboards:2.19.1",
		"jaegertracing/jaeger-collector:1.67.0",
		"jaegertracing/jaeger-query:1.67.0",
		"ghcr.io/open-telemetry/demo:1.12.0-frontend",
		"ghcr.io/open-telemetry/demo:1.12.0-frontendproxy",
		"ghcr.io/open-telemetry/demo:1.12.0-checkoutservice",
		"ghcr.io/open-telemetry/demo:1.12.0-cartservice",
		"ghcr.io/open-telemetry/demo:1.12.0-productcatalogservice",
		"ghcr.io/open-telemetry/demo:1.12.0-loadgenerator",
		"ghcr.io/open-telemetry/otel-collector:0.111.0",
	}
}

// RequiredFiles returns the values overlay files every deploy needs on disk.
// The first absent path is a fatal preflight error.
func RequiredFiles(cfg *Config) []string {
	files := make([]string, 0, 4)
	for _, name := range []string{"opensearch", "dashboards", "jaeger", "otel-demo"} {
		files = append(files, filepath.Join(cfg.ValuesDir, name+"-values.yaml"))
	}
	return files
}

// VerifyPollInterval is the spacing of reachability probe attempts.
const VerifyPollInterval = time.Second
