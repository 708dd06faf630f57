package k8s

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/utils/clock"
)

// WorkloadKind names the workload types the readiness gate understands.
type WorkloadKind string

const (
	KindDeployment  WorkloadKind = "Deployment"
	KindStatefulSet WorkloadKind = "StatefulSet"
)

// Target identifies one workload to gate on.
type Target struct {
	Namespace string
	Kind      WorkloadKind
	Name      string
}

// TimeoutError is the terminal failure of a readiness wait. It is fatal to
// the whole pipeline.
type TimeoutError struct {
	Target  Target
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s %s/%s not ready after %s",
		e.Target.Kind, e.Target.Namespace, e.Target.Name, e.Timeout)
}

// Waiter blocks until a workload's observed replica count matches its
// desired count, or a deadline passes. The clock is injected so the timeout
// boundary is testable without wall-clock waits.
type Waiter struct {
	clientset kubernetes.Interface
	clock     clock.Clock
	interval  time.Duration
	logger    *slog.Logger
}

// NewWaiter returns a Waiter polling at the given interval.
func NewWaiter(clientset kubernetes.Interface, clk clock.Clock, interval time.Duration, logger *slog.Logger) *Waiter {
	return &Waiter{clientset: clientset, clock: clk, interval: interval, logger: logger}
}

// WaitReady polls the target until ready or until timeout elapses. The wait
// is the pipeline's one true blocking phase: Ready is terminal success,
// timeout is terminal failure with a best-effort diagnostics dump.
func (w *Waiter) WaitReady(ctx context.Context, target Target, timeout time.Duration) error {
	deadline := w.clock.Now().Add(timeout)

	for {
		ready, err := w.check(ctx, target)
		if err != nil {
			// Transient API errors count as not-ready; the deadline
			// still bounds the wait.
			w.logger.Debug("readiness poll failed", "target", target.Name, "error", err)
		}
		if ready {
			w.logger.Info("workload ready", "kind", string(target.Kind), "namespace", target.Namespace, "name", target.Name)
			return nil
		}

		if !w.clock.Now().Before(deadline) {
			w.dumpDiagnostics(ctx, target)
			return &TimeoutError{Target: target, Timeout: timeout}
		}

		timer := w.clock.NewTimer(w.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C():
		}
	}
}

func (w *Waiter) check(ctx context.Context, target Target) (bool, error) {
	switch target.Kind {
	case KindDeployment:
		deployment, err := w.clientset.AppsV1().Deployments(target.Namespace).Get(ctx, target.Name, metav1.GetOptions{})
		if err != nil {
			return false, err
		}
		return isDeploymentReady(deployment), nil
	case KindStatefulSet:
		sts, err := w.clientset.AppsV1().StatefulSets(target.Namespace).Get(ctx, target.Name, metav1.GetOptions{})
		if err != nil {
			return false, err
		}
		return isStatefulSetReady(sts), nil
	default:
		return false, fmt.Errorf("unsupported workload kind %q", target.Kind)
	}
}

// isDeploymentReady reports whether the deployment's desired replica count
// is fully updated and available.
func isDeploymentReady(deployment *appsv1.Deployment) bool {
	if deployment.Spec.Replicas == nil {
		return false
	}
	desired := *deployment.Spec.Replicas
	return deployment.Status.UpdatedReplicas == desired &&
		deployment.Status.AvailableReplicas == desired &&
		deployment.Status.ReadyReplicas == desired
}

// isStatefulSetReady reports whether all desired replicas are ready and on
// the current revision.
func isStatefulSetReady(sts *appsv1.StatefulSet) bool {
	if sts.Spec.Replicas == nil {
		return false
	}
	desired := *sts.Spec.Replicas
	return sts.Status.ReadyReplicas == desired &&
		sts.Status.UpdatedReplicas == desired
}
