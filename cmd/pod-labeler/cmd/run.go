// file: cmd/pod-labeler/cmd/run.go

package cmd

import (
	"context"

	"github.com/fx147/pod-label-controller/internal/pod-labeler/util"
	"github.com/fx147/pod-label-controller/pkg/controller"
	"github.com/fx147/pod-label-controller/pkg/reconciler"
	"github.com/fx147/pod-label-controller/pkg/watcher"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

// newRunCmd 创建 run 命令，启动控制器并一直运行到事件流结束或出错。
func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Watch Pods and label the ones missing the desired label",
		Long: `Starts the controller. It lists and watches Pods, patches every Pod that
does not carry the desired label, and logs Pod deletions.

Any error (lost watch stream, failed patch) stops the controller and the
process exits with a non-zero status; restarting it is left to the process
manager or the Pod restart policy.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := util.OptionsFromFlags()
			if err != nil {
				return err
			}

			cs, err := util.NewClientsetFromFlags()
			if err != nil {
				return err
			}

			// 每次启动都带一个 runID，方便在日志里区分进程的多次重启。
			logger := klog.LoggerWithValues(klog.Background(), "controller", opts.FieldManager, "runID", uuid.NewString())
			ctx := klog.NewContext(context.Background(), logger)
			logger.Info("Controller configured",
				"label", opts.LabelKey+"="+opts.LabelValue,
				"namespace", opts.Namespace,
				"selector", opts.LabelSelector,
			)

			source := watcher.NewPodSource(cs, opts.Namespace, opts.LabelSelector)
			rec := reconciler.NewReconciler(cs, opts)
			return controller.NewPodLabelController(source, rec).Run(ctx)
		},
	}
	return cmd
}
