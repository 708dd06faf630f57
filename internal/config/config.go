// Package config defines the deployment configuration threaded through the
// pipeline and the flat KEY=value record used by cluster provisioning.
//
// Configuration is an explicit struct passed through the pipeline; it is
// never mutated by components mid-run. The record file is read once at start
// and rewritten at defined checkpoints only.
package config

import (
	"os"
	"strconv"
	"time"
)

// PortForwardMode controls whether verification tunnels are started after a
// successful deploy.
type PortForwardMode int

const (
	// PortForwardPrompt asks interactively (skipped on non-TTY runs).
	PortForwardPrompt PortForwardMode = iota
	// PortForwardAuto starts tunnels without asking.
	PortForwardAuto
	// PortForwardNever never starts tunnels.
	PortForwardNever
)

// Default resource floors and timeouts. The floors are advisory; falling
// below them produces a warning, not a failure.
const (
	DefaultReadinessTimeout = 600 * time.Second
	DefaultMinCPUCores      = 4
	DefaultMinMemoryMB      = 8192
)

// Environment override variables.
const (
	EnvMinCPU      = "OBSTACK_MIN_CPU"
	EnvMinMemoryMB = "OBSTACK_MIN_MEMORY_MB"
	EnvKubeContext = "OBSTACK_KUBE_CONTEXT"
)

// Config carries everything a deploy run needs.
type Config struct {
	// KubeconfigPath is the kubeconfig to use. Empty means the client-go
	// default loading rules.
	KubeconfigPath string

	// KubeContext selects a context from the kubeconfig. Empty means the
	// current context.
	KubeContext string

	// ReadinessTimeout bounds every per-workload readiness wait.
	ReadinessTimeout time.Duration

	// SkipPrepull bypasses the image pre-pull phase entirely.
	SkipPrepull bool

	// PortForward controls verification tunnel startup after deploy.
	PortForward PortForwardMode

	// MinCPUCores and MinMemoryMB are the advisory host resource floors.
	MinCPUCores int
	MinMemoryMB int

	// ValuesDir is the directory holding per-release values overlay files.
	ValuesDir string
}

// NewConfig returns a Config with defaults applied and environment
// overrides resolved.
func NewConfig() *Config {
	cfg := &Config{
		ReadinessTimeout: DefaultReadinessTimeout,
		MinCPUCores:      DefaultMinCPUCores,
		MinMemoryMB:      DefaultMinMemoryMB,
		ValuesDir:        "values",
	}
	cfg.applyEnv()
	return cfg
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvMinCPU); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MinCPUCores = n
		}
	}
	if v := os.Getenv(EnvMinMemoryMB); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MinMemoryMB = n
		}
	}
	if v := os.Getenv(EnvKubeContext); v != "" {
		c.KubeContext = v
	}
}
