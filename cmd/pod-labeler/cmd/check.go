// file: cmd/pod-labeler/cmd/check.go

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fx147/pod-label-controller/internal/pod-labeler/util"
	"github.com/spf13/cobra"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// newCheckCmd 创建 check 命令，只读地列出 Pod 以及它们是否已经带有期望的标签。
func newCheckCmd() *cobra.Command {
	var missingOnly bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Display Pods and whether they carry the desired label",
		Long:  `Prints a table of Pods in scope and whether each one already carries the desired label. Nothing is modified.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := util.OptionsFromFlags()
			if err != nil {
				return err
			}

			cs, err := util.NewClientsetFromFlags()
			if err != nil {
				return err
			}

			pods, err := cs.CoreV1().Pods(opts.Namespace).List(context.Background(), metav1.ListOptions{
				LabelSelector: opts.LabelSelector,
			})
			if err != nil {
				return fmt.Errorf("failed to list pods: %w", err)
			}

			items := pods.Items
			if missingOnly {
				items = util.FilterUnlabeled(items, opts)
			}

			if len(items) == 0 {
				fmt.Fprintln(os.Stdout, "No pods found.")
				return nil
			}
			util.PrintPodsTable(os.Stdout, items, opts)
			return nil
		},
	}

	cmd.Flags().BoolVar(&missingOnly, "missing", false, "Only show Pods that are missing the desired label")
	return cmd
}
