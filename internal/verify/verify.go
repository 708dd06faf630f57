// Package verify runs the best-effort reachability check after a release
// becomes ready: a short-lived tunnel plus a bounded HTTP probe loop.
//
// Verification failure is a warning by design, never fatal; the one hard
// rule is that the tunnel is released on every exit path.
package verify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/obstack/obstack/internal/release"
)

// Verifier probes service endpoints through temporary tunnels.
type Verifier struct {
	openTunnel TunnelFactory
	httpClient *http.Client
	interval   time.Duration
	logger     *slog.Logger
}

// NewVerifier returns a Verifier probing once per second through tunnels
// from the given factory.
func NewVerifier(openTunnel TunnelFactory, logger *slog.Logger) *Verifier {
	return &Verifier{
		openTunnel: openTunnel,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		interval:   time.Second,
		logger:     logger,
	}
}

// WithInterval overrides the probe spacing. Used in tests.
func (v *Verifier) WithInterval(d time.Duration) *Verifier {
	v.interval = d
	return v
}

// Verify opens a tunnel to the probe's service and polls its HTTP endpoint
// until it responds or the probe window closes. 200 and 404 both count as
// responding; some endpoints intentionally 404 on the bare path. The tunnel
// is closed whether the probe succeeds, times out, or errors out.
func (v *Verifier) Verify(ctx context.Context, namespace string, probe release.Probe) error {
	tunnel, err := v.openTunnel(ctx, namespace, probe.Service, probe.Port)
	if err != nil {
		return fmt.Errorf("could not open tunnel to %s/%s: %w", namespace, probe.Service, err)
	}
	defer tunnel.Close()

	url := fmt.Sprintf("http://%s%s", tunnel.Addr(), probe.Path)
	attempts := probe.TimeoutSeconds
	if attempts <= 0 {
		attempts = 30
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(v.interval):
			}
		}

		code, err := v.probeOnce(ctx, url)
		if err != nil {
			lastErr = err
			continue
		}
		if code == http.StatusOK || code == http.StatusNotFound {
			v.logger.Info("service responding", "service", probe.Service, "url", url, "status", code)
			return nil
		}
		lastErr = fmt.Errorf("unexpected status %d", code)
	}

	return fmt.Errorf("service %s/%s not responding after %d attempts: %w",
		namespace, probe.Service, attempts, lastErr)
}

func (v *Verifier) probeOnce(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := v.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}
