// file: pkg/config/config.go

package config

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/util/validation"
)

const (
	// DefaultLabelKey 和 DefaultLabelValue 是控制器负责维护的标签。
	DefaultLabelKey   = "learning"
	DefaultLabelValue = "rust"

	// DefaultFieldManager 是每次 patch 时记录的 field manager 身份。
	DefaultFieldManager = "my_controller"

	// DefaultNamespace 用于没有 namespace 元数据的对象。
	DefaultNamespace = "default"
)

// Options 是控制器的全部可调参数。
// 零值不可用，请使用 NewDefaultOptions。
type Options struct {
	LabelKey         string
	LabelValue       string
	FieldManager     string
	DefaultNamespace string

	// Namespace 限定 watch 的范围，空字符串表示所有命名空间。
	Namespace string
	// LabelSelector 进一步过滤被 watch 的 Pod，空字符串表示全部。
	LabelSelector string
}

// NewDefaultOptions 返回与固定常量一致的配置。
func NewDefaultOptions() Options {
	return Options{
		LabelKey:         DefaultLabelKey,
		LabelValue:       DefaultLabelValue,
		FieldManager:     DefaultFieldManager,
		DefaultNamespace: DefaultNamespace,
	}
}

// Validate 检查配置是否能产生合法的 patch 和 watch 请求。
func (o Options) Validate() error {
	var problems []string

	for _, msg := range validation.IsQualifiedName(o.LabelKey) {
		problems = append(problems, fmt.Sprintf("label key %q: %s", o.LabelKey, msg))
	}
	for _, msg := range validation.IsValidLabelValue(o.LabelValue) {
		problems = append(problems, fmt.Sprintf("label value %q: %s", o.LabelValue, msg))
	}
	if o.FieldManager == "" {
		problems = append(problems, "field manager must not be empty")
	}
	for _, msg := range validation.IsDNS1123Label(o.DefaultNamespace) {
		problems = append(problems, fmt.Sprintf("default namespace %q: %s", o.DefaultNamespace, msg))
	}
	if o.Namespace != "" {
		for _, msg := range validation.IsDNS1123Label(o.Namespace) {
			problems = append(problems, fmt.Sprintf("namespace %q: %s", o.Namespace, msg))
		}
	}
	if _, err := labels.Parse(o.LabelSelector); err != nil {
		problems = append(problems, fmt.Sprintf("label selector %q: %v", o.LabelSelector, err))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid options: %s", strings.Join(problems, "; "))
	}
	return nil
}
