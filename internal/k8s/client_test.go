package k8s

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/obstack/obstack/pkg/logging"
)

func TestPing(t *testing.T) {
	t.Parallel()

	client := NewClientForTesting(fake.NewClientset(), logging.Discard())
	assert.NoError(t, client.Ping(context.Background()))
}

func TestDeleteNamespace(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset(&corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{Name: "observability"},
	})
	client := NewClientForTesting(clientset, logging.Discard())

	require.NoError(t, client.DeleteNamespace(context.Background(), "observability"))

	_, err := clientset.CoreV1().Namespaces().Get(context.Background(), "observability", metav1.GetOptions{})
	assert.Error(t, err)
}

func TestDeleteNamespaceAlreadyGone(t *testing.T) {
	t.Parallel()

	client := NewClientForTesting(fake.NewClientset(), logging.Discard())
	assert.NoError(t, client.DeleteNamespace(context.Background(), "never-existed"))
}
