// file: internal/pod-labeler/util/options.go

package util

import (
	"github.com/fx147/pod-label-controller/pkg/config"
	"github.com/spf13/viper"
)

// OptionsFromFlags 把 viper 中的标志、环境变量和配置文件合并成控制器的配置，并做校验。
func OptionsFromFlags() (config.Options, error) {
	opts := config.NewDefaultOptions()

	if v := viper.GetString("label-key"); v != "" {
		opts.LabelKey = v
	}
	// label value 允许为空字符串，所以只有在显式设置时才覆盖默认值。
	if viper.IsSet("label-value") {
		opts.LabelValue = viper.GetString("label-value")
	}
	if v := viper.GetString("field-manager"); v != "" {
		opts.FieldManager = v
	}
	if v := viper.GetString("default-namespace"); v != "" {
		opts.DefaultNamespace = v
	}
	opts.Namespace = viper.GetString("namespace")
	opts.LabelSelector = viper.GetString("selector")

	if err := opts.Validate(); err != nil {
		return config.Options{}, err
	}
	return opts, nil
}
