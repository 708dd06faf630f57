package k8s

import (
	"context"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// dumpDiagnostics logs a snapshot of the timed-out workload and its pods.
// Everything here is best-effort: failures while gathering diagnostics are
// swallowed so they never mask the timeout itself.
func (w *Waiter) dumpDiagnostics(ctx context.Context, target Target) {
	w.logger.Error("readiness timeout, dumping diagnostics",
		"kind", string(target.Kind), "namespace", target.Namespace, "name", target.Name)

	var selector *metav1.LabelSelector
	switch target.Kind {
	case KindDeployment:
		deployment, err := w.clientset.AppsV1().Deployments(target.Namespace).Get(ctx, target.Name, metav1.GetOptions{})
		if err == nil {
			w.logger.Error("deployment status", "status", deploymentSummary(deployment))
			selector = deployment.Spec.Selector
		}
	case KindStatefulSet:
		sts, err := w.clientset.AppsV1().StatefulSets(target.Namespace).Get(ctx, target.Name, metav1.GetOptions{})
		if err == nil {
			w.logger.Error("statefulset status", "status", statefulSetSummary(sts))
			selector = sts.Spec.Selector
		}
	}

	opts := metav1.ListOptions{}
	if selector != nil {
		opts.LabelSelector = metav1.FormatLabelSelector(selector)
	}
	pods, err := w.clientset.CoreV1().Pods(target.Namespace).List(ctx, opts)
	if err != nil {
		return
	}
	for _, pod := range pods.Items {
		w.logger.Error("pod state",
			"pod", pod.Name,
			"phase", string(pod.Status.Phase),
			"reason", pod.Status.Reason,
			"message", pod.Status.Message)
	}
}

func deploymentSummary(d *appsv1.Deployment) string {
	desired := int32(0)
	if d.Spec.Replicas != nil {
		desired = *d.Spec.Replicas
	}
	return fmt.Sprintf("desired=%d updated=%d available=%d ready=%d",
		desired, d.Status.UpdatedReplicas, d.Status.AvailableReplicas, d.Status.ReadyReplicas)
}

func statefulSetSummary(s *appsv1.StatefulSet) string {
	desired := int32(0)
	if s.Spec.Replicas != nil {
		desired = *s.Spec.Replicas
	}
	return fmt.Sprintf("desired=%d updated=%d ready=%d",
		desired, s.Status.UpdatedReplicas, s.Status.ReadyReplicas)
}
