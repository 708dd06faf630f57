// Package k8s wraps the Kubernetes API operations the pipeline needs:
// cluster reachability, workload readiness gates, diagnostics snapshots,
// and namespace deletion.
package k8s

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/utils/clock"
)

// Client wraps a typed clientset plus the rest config used to build it.
type Client struct {
	clientset  kubernetes.Interface
	restConfig *rest.Config
	logger     *slog.Logger
}

// NewClient builds a client from a kubeconfig path and context name. Empty
// values fall back to the client-go default loading rules and the current
// context.
func NewClient(kubeconfigPath, kubeContext string, logger *slog.Logger) (*Client, error) {
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	if kubeconfigPath != "" {
		loadingRules.ExplicitPath = kubeconfigPath
	}
	overrides := &clientcmd.ConfigOverrides{CurrentContext: kubeContext}

	restConfig, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, overrides).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}
	restConfig.Timeout = 30 * time.Second

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}

	return &Client{clientset: clientset, restConfig: restConfig, logger: logger}, nil
}

// NewClientForTesting wraps a pre-built clientset. Used in tests with the
// fake clientset.
func NewClientForTesting(clientset kubernetes.Interface, logger *slog.Logger) *Client {
	return &Client{clientset: clientset, logger: logger}
}

// Clientset exposes the underlying typed client.
func (c *Client) Clientset() kubernetes.Interface { return c.clientset }

// RESTConfig exposes the rest config, needed by the port-forward dialer.
func (c *Client) RESTConfig() *rest.Config { return c.restConfig }

// Ping performs the lightweight cluster-info query preflight uses for the
// reachability check.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.clientset.Discovery().ServerVersion()
	if err != nil {
		return fmt.Errorf("server version query failed: %w", err)
	}
	return ctx.Err()
}

// Waiter returns a readiness waiter polling through this client with the
// real clock and the standard 5s interval.
func (c *Client) Waiter() *Waiter {
	return NewWaiter(c.clientset, clock.RealClock{}, 5*time.Second, c.logger)
}
