// file: cmd/pod-labeler/cmd/root.go

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fx147/pod-label-controller/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"k8s.io/klog/v2"
)

var (
	// cfgFile 用于存储配置文件的路径
	cfgFile string

	// rootCmd 代表没有调用子命令时的基础命令
	rootCmd = &cobra.Command{
		Use:   "pod-labeler",
		Short: "A minimal controller that keeps a fixed label on every Pod",
		Long: `pod-labeler watches Pods cluster-wide and makes sure each one carries
a fixed label (learning=rust by default), patching the ones that do not.

Run "pod-labeler run" to start the controller, or "pod-labeler check" to
see which Pods are missing the label without changing anything.`,
		SilenceUsage: true,
		// 如果用户只输入 pod-labeler 而没有子命令，就打印帮助信息
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
)

// Execute 将所有子命令添加到根命令中，并设置标志。
// 任何子命令返回的错误都会导致进程以非零状态退出。
func Execute() {
	defer klog.Flush()
	if err := rootCmd.Execute(); err != nil {
		klog.Flush()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// --- 定义全局持久标志 ---
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.pod-labeler.yaml)")

	// 集群连接相关的标志
	rootCmd.PersistentFlags().String("kubeconfig", "", "Path to a kubeconfig file (defaults to the standard loading rules, then in-cluster config)")
	rootCmd.PersistentFlags().String("context", "", "The kubeconfig context to use")

	// 控制器行为相关的标志，默认值与固定常量一致
	rootCmd.PersistentFlags().String("label-key", config.DefaultLabelKey, "The label key every Pod must carry")
	rootCmd.PersistentFlags().String("label-value", config.DefaultLabelValue, "The value of the label every Pod must carry")
	rootCmd.PersistentFlags().String("field-manager", config.DefaultFieldManager, "The field manager recorded with every patch")
	rootCmd.PersistentFlags().String("default-namespace", config.DefaultNamespace, "Namespace used for Pods without namespace metadata")
	rootCmd.PersistentFlags().StringP("namespace", "n", "", "Only watch Pods in this namespace (default is all namespaces)")
	rootCmd.PersistentFlags().StringP("selector", "l", "", "Only watch Pods matching this label selector")

	// --- 将标志与 Viper 绑定 ---
	for _, name := range []string{
		"kubeconfig", "context",
		"label-key", "label-value", "field-manager", "default-namespace",
		"namespace", "selector",
	} {
		viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newCheckCmd())
}

// initConfig 读取配置文件和环境变量（如果设置了的话）。
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// 1. 先在当前工作目录查找
		viper.AddConfigPath(".")
		// 2. 再在家目录查找
		viper.AddConfigPath(home)

		viper.SetConfigName(".pod-labeler")
		viper.SetConfigType("yaml")
	}

	// 设置环境变量前缀，例如 POD_LABELER_LABEL_KEY
	viper.SetEnvPrefix("POD_LABELER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			klog.Warningf("Error reading config file: %v", err)
		}
	} else {
		klog.V(2).Infof("Using config file %s", viper.ConfigFileUsed())
	}
}

// GetRootCmd 导出 rootCmd 以便 main.go 可以添加 klog 标志
func GetRootCmd() *cobra.Command {
	return rootCmd
}
