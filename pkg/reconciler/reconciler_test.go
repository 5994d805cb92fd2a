package reconciler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/fx147/pod-label-controller/pkg/config"
	"github.com/fx147/pod-label-controller/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
)

func newTestPod(namespace, name string, labels map[string]string) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Namespace: namespace,
			Name:      name,
			Labels:    labels,
		},
	}
}

// patchActions 返回 fake client 记录下的所有 patch 请求。
func patchActions(client *fake.Clientset) []k8stesting.PatchAction {
	var patches []k8stesting.PatchAction
	for _, action := range client.Actions() {
		if p, ok := action.(k8stesting.PatchAction); ok && action.GetVerb() == "patch" {
			patches = append(patches, p)
		}
	}
	return patches
}

// patchedLabels 解码 patch 文档中的 metadata.labels。
func patchedLabels(t *testing.T, p k8stesting.PatchAction) map[string]string {
	t.Helper()
	var doc struct {
		Metadata struct {
			Labels map[string]string `json:"labels"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(p.GetPatch(), &doc))
	return doc.Metadata.Labels
}

func TestHasDesiredLabel(t *testing.T) {
	assert.True(t, HasDesiredLabel(newTestPod("default", "p", map[string]string{"learning": "rust"}), "learning", "rust"))
	assert.False(t, HasDesiredLabel(newTestPod("default", "p", map[string]string{"learning": "go"}), "learning", "rust"))
	assert.False(t, HasDesiredLabel(newTestPod("default", "p", nil), "learning", "rust"))
	assert.False(t, HasDesiredLabel(nil, "learning", "rust"))
}

func TestDesiredLabels(t *testing.T) {
	existing := map[string]string{"tier": "x", "learning": "go"}
	got := DesiredLabels(existing, "learning", "rust")

	assert.Equal(t, map[string]string{"tier": "x", "learning": "rust"}, got)
	assert.Equal(t, "go", existing["learning"], "输入的 map 不应被修改")
	assert.Equal(t, map[string]string{"learning": "rust"}, DesiredLabels(nil, "learning", "rust"))
}

func TestReconcileApply(t *testing.T) {
	ctx := context.Background()
	opts := config.NewDefaultOptions()

	t.Run("LabelsPodWithoutLabels", func(t *testing.T) {
		pod := newTestPod("default", "p1", map[string]string{})
		client := fake.NewSimpleClientset(pod)
		r := NewReconciler(client, opts)

		result, err := r.ReconcileApply(ctx, pod.DeepCopy())
		require.NoError(t, err)
		assert.Equal(t, Labeled, result)

		patches := patchActions(client)
		require.Len(t, patches, 1)
		assert.Equal(t, "default", patches[0].GetNamespace())
		assert.Equal(t, "p1", patches[0].GetName())
		assert.Equal(t, types.MergePatchType, patches[0].GetPatchType())
		assert.Equal(t, map[string]string{"learning": "rust"}, patchedLabels(t, patches[0]))

		updated, err := client.CoreV1().Pods("default").Get(ctx, "p1", metav1.GetOptions{})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"learning": "rust"}, updated.Labels)
	})

	t.Run("PreservesOtherLabels", func(t *testing.T) {
		pod := newTestPod("ops", "web", map[string]string{"app": "web", "learning": "go"})
		client := fake.NewSimpleClientset(pod)
		r := NewReconciler(client, opts)

		result, err := r.ReconcileApply(ctx, pod.DeepCopy())
		require.NoError(t, err)
		assert.Equal(t, Labeled, result)

		patches := patchActions(client)
		require.Len(t, patches, 1)
		assert.Equal(t, map[string]string{"app": "web", "learning": "rust"}, patchedLabels(t, patches[0]))

		updated, err := client.CoreV1().Pods("ops").Get(ctx, "web", metav1.GetOptions{})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"app": "web", "learning": "rust"}, updated.Labels)
	})

	t.Run("AlreadyLabeledIsNoop", func(t *testing.T) {
		pod := newTestPod("ops", "p2", map[string]string{"learning": "rust", "tier": "x"})
		client := fake.NewSimpleClientset(pod)
		r := NewReconciler(client, opts)

		for i := 0; i < 3; i++ {
			result, err := r.ReconcileApply(ctx, pod.DeepCopy())
			require.NoError(t, err)
			assert.Equal(t, AlreadyLabeled, result)
		}
		assert.Empty(t, patchActions(client))
	})

	t.Run("DefaultsNamespace", func(t *testing.T) {
		stored := newTestPod("default", "p4", nil)
		client := fake.NewSimpleClientset(stored)
		r := NewReconciler(client, opts)

		snapshot := stored.DeepCopy()
		snapshot.Namespace = ""

		result, err := r.ReconcileApply(ctx, snapshot)
		require.NoError(t, err)
		assert.Equal(t, Labeled, result)

		patches := patchActions(client)
		require.Len(t, patches, 1)
		assert.Equal(t, "default", patches[0].GetNamespace())
	})

	t.Run("SkipsPodWithoutName", func(t *testing.T) {
		client := fake.NewSimpleClientset()
		r := NewReconciler(client, opts)

		result, err := r.ReconcileApply(ctx, newTestPod("default", "", nil))
		require.NoError(t, err)
		assert.Equal(t, SkippedNoName, result)

		result, err = r.ReconcileApply(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, SkippedNoName, result)

		assert.Empty(t, client.Actions())
	})

	t.Run("SkipsTerminatingPod", func(t *testing.T) {
		now := metav1.Now()
		pod := newTestPod("default", "dying", nil)
		pod.DeletionTimestamp = &now
		client := fake.NewSimpleClientset()
		r := NewReconciler(client, opts)

		result, err := r.ReconcileApply(ctx, pod)
		require.NoError(t, err)
		assert.Equal(t, SkippedTerminating, result)
		assert.Empty(t, client.Actions())
	})

	t.Run("NotFoundPropagates", func(t *testing.T) {
		client := fake.NewSimpleClientset()
		r := NewReconciler(client, opts)

		result, err := r.ReconcileApply(ctx, newTestPod("default", "gone", nil))
		require.Error(t, err)
		assert.Empty(t, result)
		assert.True(t, util.IsNotFound(err))
		assert.True(t, apierrors.IsNotFound(err))
		assert.Len(t, patchActions(client), 1)
	})

	t.Run("ConflictPropagates", func(t *testing.T) {
		pod := newTestPod("default", "p5", nil)
		client := fake.NewSimpleClientset(pod)
		client.PrependReactor("patch", "pods", func(action k8stesting.Action) (bool, runtime.Object, error) {
			return true, nil, apierrors.NewConflict(schema.GroupResource{Resource: "pods"}, "p5", errors.New("conflict with another manager"))
		})
		r := NewReconciler(client, opts)

		_, err := r.ReconcileApply(ctx, pod.DeepCopy())
		require.Error(t, err)
		assert.True(t, util.IsConflict(err))
	})

	t.Run("TransportErrorPropagates", func(t *testing.T) {
		pod := newTestPod("default", "p6", nil)
		client := fake.NewSimpleClientset(pod)
		client.PrependReactor("patch", "pods", func(action k8stesting.Action) (bool, runtime.Object, error) {
			return true, nil, errors.New("connection reset by peer")
		})
		r := NewReconciler(client, opts)

		_, err := r.ReconcileApply(ctx, pod.DeepCopy())
		require.Error(t, err)
		assert.True(t, util.IsTransportError(err))
	})

	t.Run("CustomLabel", func(t *testing.T) {
		custom := opts
		custom.LabelKey = "example.com/owner"
		custom.LabelValue = "platform"

		pod := newTestPod("default", "p7", map[string]string{"learning": "rust"})
		client := fake.NewSimpleClientset(pod)
		r := NewReconciler(client, custom)

		result, err := r.ReconcileApply(ctx, pod.DeepCopy())
		require.NoError(t, err)
		assert.Equal(t, Labeled, result)

		patches := patchActions(client)
		require.Len(t, patches, 1)
		assert.Equal(t, map[string]string{"learning": "rust", "example.com/owner": "platform"}, patchedLabels(t, patches[0]))
	})
}

func TestReconcileRemoved(t *testing.T) {
	ctx := context.Background()
	client := fake.NewSimpleClientset()
	r := NewReconciler(client, config.NewDefaultOptions())

	r.ReconcileRemoved(ctx, newTestPod("default", "p3", nil))
	r.ReconcileRemoved(ctx, newTestPod("default", "p3", map[string]string{"learning": "rust"}))
	r.ReconcileRemoved(ctx, newTestPod("", "", nil))
	r.ReconcileRemoved(ctx, nil)

	assert.Empty(t, client.Actions(), "删除事件不应产生任何 API 调用")
}
