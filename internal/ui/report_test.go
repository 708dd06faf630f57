package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/obstack/obstack/internal/orchestration"
	"github.com/obstack/obstack/internal/prepull"
)

func TestRenderReportFullRun(t *testing.T) {
	t.Parallel()

	started := time.Now()
	report := &orchestration.Report{
		Started:     started,
		Finished:    started.Add(3 * time.Minute),
		PreflightOK: true,
		Prepull: &prepull.Report{
			Backend:   "minikube",
			Succeeded: []string{"img/a:1", "img/b:1"},
			Failed:    []string{"img/c:1"},
		},
		Releases: []orchestration.ReleaseResult{
			{Name: "opensearch", Installed: true, Ready: true, Verified: true},
			{Name: "jaeger", Installed: true, Ready: true, VerifyWarning: "not responding after 30 attempts"},
			{Name: "otel-demo", Installed: true},
		},
	}

	var out strings.Builder
	RenderReport(&out, report)
	got := out.String()

	assert.Contains(t, got, "Deployment report")
	assert.Contains(t, got, "preflight")
	assert.Contains(t, got, "pre-pull via minikube: 2 pulled, 1 deferred")
	assert.Contains(t, got, "opensearch: ready")
	assert.Contains(t, got, "jaeger: ready, verification warning: not responding after 30 attempts")
	assert.Contains(t, got, "otel-demo: installed, not ready")
	assert.Contains(t, got, "completed in 3m0s")
}

func TestRenderReportSkippedPrepull(t *testing.T) {
	t.Parallel()

	var out strings.Builder
	RenderReport(&out, &orchestration.Report{PreflightOK: true})
	got := out.String()

	assert.Contains(t, got, "pre-pull skipped")
	assert.NotContains(t, got, "completed in")
}

func TestRenderReportInstallFailure(t *testing.T) {
	t.Parallel()

	report := &orchestration.Report{
		PreflightOK: true,
		Releases:    []orchestration.ReleaseResult{{Name: "opensearch"}},
	}

	var out strings.Builder
	RenderReport(&out, report)
	assert.Contains(t, out.String(), "opensearch: install failed")
}
