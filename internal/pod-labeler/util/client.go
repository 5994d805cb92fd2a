// file: internal/pod-labeler/util/client.go

package util

import (
	"fmt"

	"github.com/spf13/viper"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// RESTConfigFromFlags 从 viper 中读取 kubeconfig 和 context，构造 rest.Config。
// 没有指定 kubeconfig 时使用默认的加载规则，找不到任何 kubeconfig 时回退到 in-cluster 配置。
func RESTConfigFromFlags() (*rest.Config, error) {
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	if path := viper.GetString("kubeconfig"); path != "" {
		loadingRules.ExplicitPath = path
	}

	overrides := &clientcmd.ConfigOverrides{}
	if kubeContext := viper.GetString("context"); kubeContext != "" {
		overrides.CurrentContext = kubeContext
	}

	cfg, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, overrides).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubernetes client config: %w", err)
	}
	return cfg, nil
}

// NewClientsetFromFlags 从 viper 中读取全局标志，并创建一个新的 Kubernetes Clientset。
// 返回的 Clientset 在整个进程中只构造一次，由 watch 和 patch 共享。
func NewClientsetFromFlags() (*kubernetes.Clientset, error) {
	cfg, err := RESTConfigFromFlags()
	if err != nil {
		return nil, err
	}

	cs, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes clientset: %w", err)
	}
	return cs, nil
}
