// file: pkg/reconciler/reconciler.go

package reconciler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fx147/pod-label-controller/pkg/config"
	"github.com/fx147/pod-label-controller/pkg/util"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"
	"k8s.io/klog/v2"
)

// Result 描述一次 ReconcileApply 的结果。
type Result string

const (
	// Labeled 表示发出了一次 patch。
	Labeled Result = "Labeled"
	// AlreadyLabeled 表示对象已经处于期望状态，没有任何副作用。
	AlreadyLabeled Result = "AlreadyLabeled"
	// SkippedNoName 表示对象没有名字，无法被调谐。
	SkippedNoName Result = "SkippedNoName"
	// SkippedTerminating 表示对象正在被删除。
	SkippedTerminating Result = "SkippedTerminating"
)

// Reconciler 负责让每个 Pod 带上固定的标签。
// 它不持有可变状态，client 在构造后只读使用。
type Reconciler struct {
	client kubernetes.Interface
	opts   config.Options
}

// NewReconciler 创建一个新的 Reconciler 实例。
func NewReconciler(client kubernetes.Interface, opts config.Options) *Reconciler {
	return &Reconciler{
		client: client,
		opts:   opts,
	}
}

// HasDesiredLabel 报告 Pod 是否已经带有 key=value。nil 的标签表视为空。
func HasDesiredLabel(pod *corev1.Pod, key, value string) bool {
	if pod == nil {
		return false
	}
	v, ok := pod.Labels[key]
	return ok && v == value
}

// DesiredLabels 返回插入 key=value 之后的完整标签表，不修改传入的 map。
func DesiredLabels(existing map[string]string, key, value string) map[string]string {
	labels := make(map[string]string, len(existing)+1)
	for k, v := range existing {
		labels[k] = v
	}
	labels[key] = value
	return labels
}

// labelPatch 是只作用于 metadata.labels 的 merge patch 文档。
type labelPatch struct {
	Metadata labelPatchMetadata `json:"metadata"`
}

type labelPatchMetadata struct {
	Labels map[string]string `json:"labels"`
}

// ReconcileApply 处理 Applied 事件：如果 Pod 缺少期望的标签，就发出一次 merge patch。
// patch 失败的错误会被分类后原样返回，这里不做重试。
func (r *Reconciler) ReconcileApply(ctx context.Context, pod *corev1.Pod) (Result, error) {
	logger := klog.FromContext(ctx)

	ref := r.refFor(pod)
	logger.V(4).Info("ReconcileApply called", "pod", klog.KRef(ref.Namespace, ref.DisplayName()))

	if !ref.HasName() {
		// 没有名字就没有可以 patch 的目标，用占位符去请求只会得到 NotFound。
		logger.Info("Skipping pod without a name", "pod", klog.KRef(ref.Namespace, ref.DisplayName()))
		return SkippedNoName, nil
	}

	if HasDesiredLabel(pod, r.opts.LabelKey, r.opts.LabelValue) {
		logger.Info("Pod already labeled", "pod", klog.KRef(ref.Namespace, ref.Name), "label", r.labelString())
		return AlreadyLabeled, nil
	}

	if pod.DeletionTimestamp != nil {
		logger.Info("Skipping terminating pod", "pod", klog.KRef(ref.Namespace, ref.Name))
		return SkippedTerminating, nil
	}

	patch := labelPatch{Metadata: labelPatchMetadata{
		Labels: DesiredLabels(pod.Labels, r.opts.LabelKey, r.opts.LabelValue),
	}}
	data, err := json.Marshal(patch)
	if err != nil {
		return "", fmt.Errorf("failed to marshal label patch for pod %s: %w", ref, err)
	}

	_, err = r.client.CoreV1().Pods(ref.Namespace).Patch(ctx, ref.Name, types.MergePatchType, data, metav1.PatchOptions{
		FieldManager: r.opts.FieldManager,
	})
	if err != nil {
		return "", util.NewPatchError(ref.Namespace, ref.Name, err)
	}

	logger.Info("Added label to pod", "pod", klog.KRef(ref.Namespace, ref.Name), "label", r.labelString())
	return Labeled, nil
}

// ReconcileRemoved 处理 Removed 事件，只做记录。
func (r *Reconciler) ReconcileRemoved(ctx context.Context, pod *corev1.Pod) {
	ref := r.refFor(pod)
	klog.FromContext(ctx).Info("Pod has been deleted", "pod", klog.KRef(ref.Namespace, ref.DisplayName()))
}

// refFor 解析 Pod 的 namespace 和 name。nil 的 Pod 被当作没有名字的对象。
func (r *Reconciler) refFor(pod *corev1.Pod) util.ObjectRef {
	if pod == nil {
		return util.ObjectRef{Namespace: r.opts.DefaultNamespace}
	}
	ref, _ := util.ObjectRefFor(pod, r.opts.DefaultNamespace)
	return ref
}

func (r *Reconciler) labelString() string {
	return r.opts.LabelKey + "=" + r.opts.LabelValue
}
