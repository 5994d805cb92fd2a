// file: cmd/pod-labeler/main.go

package main

import (
	"flag"

	"github.com/fx147/pod-label-controller/cmd/pod-labeler/cmd"
	"k8s.io/klog/v2"
)

func main() {
	// klog 只认 Go 原生的 flag，这里把它们挂到 cobra 的持久标志上，
	// pod-labeler run -v=4 就能打开逐事件的诊断日志。
	klogFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(klogFlags)
	cmd.GetRootCmd().PersistentFlags().AddGoFlagSet(klogFlags)

	cmd.Execute()
}
