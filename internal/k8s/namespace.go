package k8s

import (
	"context"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// DeleteNamespace force-deletes a namespace with zero grace period. It does
// not wait for resource reclamation; the cascade happens in the background.
// A namespace that is already gone is not an error.
func (c *Client) DeleteNamespace(ctx context.Context, name string) error {
	grace := int64(0)
	propagation := metav1.DeletePropagationBackground

	err := c.clientset.CoreV1().Namespaces().Delete(ctx, name, metav1.DeleteOptions{
		GracePeriodSeconds: &grace,
		PropagationPolicy:  &propagation,
	})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete namespace %s: %w", name, err)
	}
	return nil
}
