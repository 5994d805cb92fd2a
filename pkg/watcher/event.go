// file: pkg/watcher/event.go

package watcher

import (
	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/tools/cache"
)

// EventType 定义了事件的类型
type EventType string

const (
	// Applied 表示对象被创建或更新，底层的流不区分这两种情况。
	Applied EventType = "APPLIED"
	// Removed 表示对象已被删除，携带的快照可能已经过期。
	Removed EventType = "REMOVED"
	// Restarted 表示流（重新）开始了一次全量同步，随后是每个现存对象的 Applied 事件。
	Restarted EventType = "RESTARTED"
	// Bookmark 只推进 resourceVersion，不携带对象。
	Bookmark EventType = "BOOKMARK"
)

// Event 是一个描述 Pod 变更的事件。
type Event struct {
	Type EventType
	// Key 是对象的唯一标识，例如 "default/my-app"
	Key string
	// Object 是事件关联的 Pod，Restarted 和 Bookmark 事件中为 nil
	Object *corev1.Pod
	// ResourceVersion 是变更后对象的 resourceVersion
	ResourceVersion string
}

func newPodEvent(eventType EventType, pod *corev1.Pod) Event {
	key, _ := cache.MetaNamespaceKeyFunc(pod)
	return Event{
		Type:            eventType,
		Key:             key,
		Object:          pod,
		ResourceVersion: pod.ResourceVersion,
	}
}
