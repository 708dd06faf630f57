// Package prepull fetches the stack's container images onto cluster nodes
// before any workload is scheduled, to cut pod start latency.
//
// A pull failure is recorded and skipped, never fatal: the kubelet retries
// the pull on demand when the workload is scheduled.
package prepull

import (
	"context"
	"log/slog"
)

// Backend pulls a single image. Implementations probe their own
// availability once at selection time.
type Backend interface {
	// Name identifies the backend in logs and reports.
	Name() string

	// Available reports whether the backend can be used on this host.
	Available(ctx context.Context) bool

	// Pull fetches one image reference.
	Pull(ctx context.Context, image string) error
}

// NoPullBackendError means none of the candidate backends is usable. Fatal
// unless pre-pull is explicitly skipped.
type NoPullBackendError struct {
	Tried []string
}

func (e *NoPullBackendError) Error() string {
	return "no image pull backend available"
}

// Detect tries the candidate backends once, in priority order, and returns
// the first available one.
func Detect(ctx context.Context, backends []Backend) (Backend, error) {
	tried := make([]string, 0, len(backends))
	for _, b := range backends {
		if b.Available(ctx) {
			return b, nil
		}
		tried = append(tried, b.Name())
	}
	return nil, &NoPullBackendError{Tried: tried}
}

// Report summarizes a pre-pull phase. Purely informational; the pipeline
// proceeds regardless of how many pulls failed.
type Report struct {
	Backend   string
	Succeeded []string
	Failed    []string
}

// Puller runs the pre-pull phase against a selected backend.
type Puller struct {
	backend Backend
	logger  *slog.Logger
}

// NewPuller returns a Puller using the given backend.
func NewPuller(backend Backend, logger *slog.Logger) *Puller {
	return &Puller{backend: backend, logger: logger}
}

// Pull attempts every image in order. Individual failures are logged and
// collected; there is no retry within this phase.
func (p *Puller) Pull(ctx context.Context, images []string) Report {
	report := Report{Backend: p.backend.Name()}
	for _, image := range images {
		if err := p.backend.Pull(ctx, image); err != nil {
			p.logger.Warn("image pull failed, deferring to scheduler pull", "image", image, "error", err)
			report.Failed = append(report.Failed, image)
			continue
		}
		p.logger.Info("image pulled", "image", image, "backend", p.backend.Name())
		report.Succeeded = append(report.Succeeded, image)
	}
	return report
}
