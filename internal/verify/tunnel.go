package verify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/portforward"
	"k8s.io/client-go/transport/spdy"

	"github.com/obstack/obstack/internal/k8s"
)

// Tunnel is a temporary local forward to a cluster-internal service. It is
// a scoped resource: whoever opens it must Close it on every exit path.
type Tunnel interface {
	// Addr is the local host:port the tunnel listens on.
	Addr() string

	// Close tears the tunnel down. Safe to call more than once.
	Close()
}

// TunnelFactory opens a tunnel to a service port. Injected so tests can
// substitute fakes.
type TunnelFactory func(ctx context.Context, namespace, service string, port int) (Tunnel, error)

// NewPortForwardFactory returns a TunnelFactory backed by the Kubernetes
// port-forward subresource over SPDY.
func NewPortForwardFactory(client *k8s.Client, logger *slog.Logger) TunnelFactory {
	return func(ctx context.Context, namespace, service string, port int) (Tunnel, error) {
		clientset := client.Clientset()

		podName, err := podForService(ctx, clientset, namespace, service)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve pod for service %s/%s: %w", namespace, service, err)
		}

		reqURL := clientset.CoreV1().RESTClient().Post().
			Resource("pods").
			Namespace(namespace).
			Name(podName).
			SubResource("portforward").
			URL()

		transport, upgrader, err := spdy.RoundTripperFor(client.RESTConfig())
		if err != nil {
			return nil, fmt.Errorf("failed to create SPDY round tripper: %w", err)
		}
		dialer := spdy.NewDialer(upgrader, &http.Client{Transport: transport}, http.MethodPost, reqURL)

		stopChan := make(chan struct{})
		readyChan := make(chan struct{})

		// Local port 0: the forwarder picks a free port, read back below.
		ports := []string{fmt.Sprintf("0:%d", port)}
		forwarder, err := portforward.NewOnAddresses(dialer, []string{"127.0.0.1"}, ports, stopChan, readyChan, io.Discard, io.Discard)
		if err != nil {
			return nil, fmt.Errorf("failed to create port forwarder: %w", err)
		}

		tunnel := &portForwardTunnel{stop: stopChan}

		errChan := make(chan error, 1)
		go func() { errChan <- forwarder.ForwardPorts() }()

		select {
		case err := <-errChan:
			return nil, fmt.Errorf("port forward to %s/%s failed: %w", namespace, podName, err)
		case <-ctx.Done():
			tunnel.Close()
			return nil, ctx.Err()
		case <-time.After(30 * time.Second):
			tunnel.Close()
			return nil, fmt.Errorf("timed out waiting for port forward to %s/%s", namespace, podName)
		case <-readyChan:
		}

		actual, err := forwarder.GetPorts()
		if err != nil || len(actual) == 0 {
			tunnel.Close()
			return nil, fmt.Errorf("could not determine local tunnel port: %w", err)
		}
		tunnel.addr = fmt.Sprintf("127.0.0.1:%d", actual[0].Local)

		logger.Debug("tunnel established", "service", service, "pod", podName, "addr", tunnel.addr)
		return tunnel, nil
	}
}

type portForwardTunnel struct {
	addr string
	stop chan struct{}
	once sync.Once
}

func (t *portForwardTunnel) Addr() string { return t.addr }

func (t *portForwardTunnel) Close() {
	t.once.Do(func() { close(t.stop) })
}

// podForService resolves a service to one ready backing pod.
func podForService(ctx context.Context, clientset kubernetes.Interface, namespace, service string) (string, error) {
	svc, err := clientset.CoreV1().Services(namespace).Get(ctx, service, metav1.GetOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to get service: %w", err)
	}
	if len(svc.Spec.Selector) == 0 {
		return "", fmt.Errorf("service %s has no selector", service)
	}

	selector := labels.SelectorFromSet(svc.Spec.Selector)
	pods, err := clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{LabelSelector: selector.String()})
	if err != nil {
		return "", fmt.Errorf("failed to list pods: %w", err)
	}

	for _, pod := range pods.Items {
		if isPodReady(&pod) {
			return pod.Name, nil
		}
	}
	if len(pods.Items) > 0 {
		// Fall back to any pod; the probe loop reports unreachability.
		return pods.Items[0].Name, nil
	}
	return "", fmt.Errorf("no pods back service %s", service)
}

func isPodReady(pod *corev1.Pod) bool {
	if pod.Status.Phase != corev1.PodRunning {
		return false
	}
	for _, condition := range pod.Status.Conditions {
		if condition.Type == corev1.PodReady {
			return condition.Status == corev1.ConditionTrue
		}
	}
	return false
}
