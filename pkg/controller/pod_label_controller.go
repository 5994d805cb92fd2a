// file: pkg/controller/pod_label_controller.go

package controller

import (
	"context"
	"errors"

	"github.com/fx147/pod-label-controller/pkg/reconciler"
	"github.com/fx147/pod-label-controller/pkg/watcher"
	"k8s.io/apimachinery/pkg/util/runtime"
	"k8s.io/klog/v2"
)

// PodLabelController 从事件源逐个拉取 Pod 事件，并交给 Reconciler 处理。
// 只有一个循环，没有工作队列，也没有重试：
// 第 N 个事件处理完之前不会去拉取第 N+1 个事件，任何错误都会终止 Run。
type PodLabelController struct {
	source     watcher.Interface
	reconciler *reconciler.Reconciler
}

// NewPodLabelController 创建一个新的控制器实例。
func NewPodLabelController(source watcher.Interface, rec *reconciler.Reconciler) *PodLabelController {
	return &PodLabelController{
		source:     source,
		reconciler: rec,
	}
}

// Run 启动控制器的主循环。
// 事件流正常结束时返回 nil；事件流出错或调谐出错时返回该错误。
func (c *PodLabelController) Run(ctx context.Context) error {
	defer runtime.HandleCrash()
	defer c.source.Stop()

	logger := klog.FromContext(ctx)
	logger.Info("Starting label controller")
	defer logger.Info("Shutting down label controller")

	for {
		event, err := c.source.Next(ctx)
		if errors.Is(err, watcher.ErrStreamClosed) {
			logger.Info("Watch stream ended")
			return nil
		}
		if err != nil {
			return err
		}

		if err := c.handle(ctx, event); err != nil {
			return err
		}
	}
}

// handle 按事件类型分发。Applied 和 Removed 以外的事件都被忽略。
func (c *PodLabelController) handle(ctx context.Context, event watcher.Event) error {
	logger := klog.FromContext(ctx)
	logger.V(4).Info("Received event", "type", event.Type, "key", event.Key, "resourceVersion", event.ResourceVersion)

	switch event.Type {
	case watcher.Applied:
		_, err := c.reconciler.ReconcileApply(ctx, event.Object)
		return err
	case watcher.Removed:
		c.reconciler.ReconcileRemoved(ctx, event.Object)
		return nil
	case watcher.Restarted, watcher.Bookmark:
		return nil
	default:
		logger.V(4).Info("Ignoring event of unknown type", "type", event.Type)
		return nil
	}
}
