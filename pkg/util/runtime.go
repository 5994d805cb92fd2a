// file: pkg/util/runtime.go

package util

import (
	"fmt"

	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/apimachinery/pkg/runtime"
)

// UnknownName 是在对象没有名字时，仅用于日志记录的占位符。
// 它永远不会被用作 API 调用的目标。
const UnknownName = "unknown"

// ObjectRef 是从 runtime.Object 中解析出来的 (namespace, name) 对。
type ObjectRef struct {
	Namespace string
	Name      string
}

// HasName 报告对象是否有可用于 API 调用的名字。
func (r ObjectRef) HasName() bool {
	return r.Name != ""
}

// DisplayName 返回用于日志的名字，名字缺失时使用占位符。
func (r ObjectRef) DisplayName() string {
	if r.Name == "" {
		return UnknownName
	}
	return r.Name
}

// String 返回 "namespace/name" 形式的 key。
func (r ObjectRef) String() string {
	return r.Namespace + "/" + r.DisplayName()
}

// ObjectRefFor 是一个辅助函数，用于从 runtime.Object 中提取 namespace 和 name。
// namespace 为空时使用 defaultNamespace；name 为空时保持为空，由调用者决定如何处理。
func ObjectRefFor(obj runtime.Object, defaultNamespace string) (ObjectRef, error) {
	if obj == nil {
		return ObjectRef{Namespace: defaultNamespace}, fmt.Errorf("object is nil")
	}

	accessor, err := meta.Accessor(obj)
	if err != nil {
		return ObjectRef{Namespace: defaultNamespace}, fmt.Errorf("object does not expose metadata: %w", err)
	}

	ns := accessor.GetNamespace()
	if ns == "" {
		ns = defaultNamespace
	}
	return ObjectRef{Namespace: ns, Name: accessor.GetName()}, nil
}
