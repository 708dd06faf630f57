package prepull

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obstack/obstack/pkg/logging"
)

type fakeBackend struct {
	name      string
	available bool
	pullErr   map[string]error
	pulled    []string
}

func (f *fakeBackend) Name() string                     { return f.name }
func (f *fakeBackend) Available(_ context.Context) bool { return f.available }
func (f *fakeBackend) Pull(_ context.Context, image string) error {
	f.pulled = append(f.pulled, image)
	return f.pullErr[image]
}

func TestDetectPicksFirstAvailable(t *testing.T) {
	t.Parallel()

	backends := []Backend{
		&fakeBackend{name: "minikube", available: false},
		&fakeBackend{name: "docker", available: true},
		&fakeBackend{name: "nerdctl", available: true},
	}

	backend, err := Detect(context.Background(), backends)
	require.NoError(t, err)
	assert.Equal(t, "docker", backend.Name())
}

func TestDetectNoneAvailable(t *testing.T) {
	t.Parallel()

	backends := []Backend{
		&fakeBackend{name: "minikube"},
		&fakeBackend{name: "docker"},
	}

	_, err := Detect(context.Background(), backends)
	var noBackend *NoPullBackendError
	require.ErrorAs(t, err, &noBackend)
	assert.Equal(t, []string{"minikube", "docker"}, noBackend.Tried)
}

func TestPullContinuesPastFailures(t *testing.T) {
	t.Parallel()

	images := []string{"img/a:1", "img/b:1", "img/c:1", "img/d:1"}
	backend := &fakeBackend{
		name:      "docker",
		available: true,
		pullErr: map[string]error{
			"img/b:1": errors.New("pull denied"),
			"img/d:1": errors.New("timeout"),
		},
	}

	report := NewPuller(backend, logging.Discard()).Pull(context.Background(), images)

	assert.Equal(t, "docker", report.Backend)
	assert.Equal(t, []string{"img/a:1", "img/c:1"}, report.Succeeded)
	assert.Equal(t, []string{"img/b:1", "img/d:1"}, report.Failed)
	// Every image was attempted exactly once; no retries within the phase.
	assert.Equal(t, images, backend.pulled)
}

func TestExecBackendAvailableRequiresProbe(t *testing.T) {
	t.Parallel()

	backend := &execBackend{
		name:      "sh",
		probeArgs: []string{"probe"},
		runner: func(_ context.Context, _ string, args ...string) ([]byte, error) {
			return nil, fmt.Errorf("probe %v failed", args)
		},
	}
	// Binary exists on PATH but the probe command fails.
	assert.False(t, backend.Available(context.Background()))
}

func TestExecBackendPullWrapsOutput(t *testing.T) {
	t.Parallel()

	backend := &execBackend{
		name:     "docker",
		pullArgs: func(image string) []string { return []string{"pull", image} },
		runner: func(_ context.Context, _ string, _ ...string) ([]byte, error) {
			return []byte("manifest unknown\n"), errors.New("exit status 1")
		},
	}

	err := backend.Pull(context.Background(), "img/a:1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "docker pull failed")
	assert.Contains(t, err.Error(), "manifest unknown")
}

func TestDefaultBackendsPriorityOrder(t *testing.T) {
	t.Parallel()

	var found []string
	for _, b := range DefaultBackends() {
		found = append(found, b.Name())
	}
	assert.Equal(t, []string{"minikube", "docker", "nerdctl", "crictl"}, found)
}
