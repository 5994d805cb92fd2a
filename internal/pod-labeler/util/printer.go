// file: internal/pod-labeler/util/printer.go

package util

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fx147/pod-label-controller/pkg/config"
	"github.com/fx147/pod-label-controller/pkg/reconciler"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/util/duration"
)

// PrintPodsTable 将 Pod 列表以表格形式打印到指定的 writer。
func PrintPodsTable(out io.Writer, pods []corev1.Pod, opts config.Options) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	defer w.Flush()

	// 打印表头
	fmt.Fprintf(w, "NAMESPACE\tNAME\tPHASE\t%s\tAGE\n", opts.LabelKey)

	for i := range pods {
		pod := &pods[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			pod.Namespace,
			pod.Name,
			pod.Status.Phase,
			labelState(pod, opts),
			formatAge(pod.CreationTimestamp.Time),
		)
	}
}

// FilterUnlabeled 只保留缺少期望标签的 Pod。
func FilterUnlabeled(pods []corev1.Pod, opts config.Options) []corev1.Pod {
	var out []corev1.Pod
	for i := range pods {
		if !reconciler.HasDesiredLabel(&pods[i], opts.LabelKey, opts.LabelValue) {
			out = append(out, pods[i])
		}
	}
	return out
}

// labelState 返回 "ok"，或者当前的值（缺失时为 "<missing>"）。
func labelState(pod *corev1.Pod, opts config.Options) string {
	if reconciler.HasDesiredLabel(pod, opts.LabelKey, opts.LabelValue) {
		return "ok"
	}
	if v, ok := pod.Labels[opts.LabelKey]; ok {
		return fmt.Sprintf("%q", v)
	}
	return "<missing>"
}

func formatAge(created time.Time) string {
	if created.IsZero() {
		return "<unknown>"
	}
	return duration.HumanDuration(time.Since(created))
}
