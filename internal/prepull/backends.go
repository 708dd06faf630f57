package prepull

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// execBackend shells out to a container tool. All four stock backends share
// this shape: a probe command that must exit zero and a pull argv.
type execBackend struct {
	name      string
	probeArgs []string
	pullArgs  func(image string) []string

	runner func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func (b *execBackend) Name() string { return b.name }

func (b *execBackend) Available(ctx context.Context) bool {
	if _, err := exec.LookPath(b.name); err != nil {
		return false
	}
	_, err := b.run(ctx, b.name, b.probeArgs...)
	return err == nil
}

func (b *execBackend) Pull(ctx context.Context, image string) error {
	out, err := b.run(ctx, b.name, b.pullArgs(image)...)
	if err != nil {
		return fmt.Errorf("%s pull failed: %w: %s", b.name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (b *execBackend) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if b.runner != nil {
		return b.runner(ctx, name, args...)
	}
	// #nosec G204 - name and args come from the fixed backend definitions
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// DefaultBackends returns the candidate backends in priority order:
// minikube first (pulls straight onto the node), then the host runtimes.
func DefaultBackends() []Backend {
	return []Backend{
		&execBackend{
			name:      "minikube",
			probeArgs: []string{"status"},
			pullArgs:  func(image string) []string { return []string{"image", "pull", image} },
		},
		&execBackend{
			name:      "docker",
			probeArgs: []string{"info"},
			pullArgs:  func(image string) []string { return []string{"pull", image} },
		},
		&execBackend{
			name:      "nerdctl",
			probeArgs: []string{"info"},
			pullArgs:  func(image string) []string { return []string{"pull", image} },
		},
		&execBackend{
			name:      "crictl",
			probeArgs: []string{"version"},
			pullArgs:  func(image string) []string { return []string{"pull", image} },
		},
	}
}
