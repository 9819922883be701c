package kube

import (
	"context"
	"testing"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func TestEnsureNamespace(t *testing.T) {
	ctx := context.Background()
	existing := &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "flows"}}
	cs := fake.NewSimpleClientset(existing)
	c := NewClientFromClientset(cs)

	if err := c.EnsureNamespace(ctx, "flows"); err != nil {
		t.Fatalf("existing namespace: %v", err)
	}
	if err := c.EnsureNamespace(ctx, "batch"); err != nil {
		t.Fatalf("new namespace: %v", err)
	}
	ns, err := cs.CoreV1().Namespaces().Get(ctx, "batch", metav1.GetOptions{})
	if err != nil {
		t.Fatalf("namespace not created: %v", err)
	}
	if got := ns.Labels["app.kubernetes.io/managed-by"]; got != "flowops" {
		t.Errorf("managed-by label = %q", got)
	}
	if err := c.EnsureNamespace(ctx, ""); err == nil {
		t.Error("empty name should fail")
	}
}
