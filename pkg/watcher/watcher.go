// file: pkg/watcher/watcher.go

package watcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/fx147/pod-label-controller/pkg/util"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/cache"
	watchtools "k8s.io/client-go/tools/watch"
	"k8s.io/klog/v2"
)

// ErrStreamClosed 表示事件流已经结束，之后不会再有事件。
var ErrStreamClosed = errors.New("watch stream closed")

// Interface 是一个按需拉取的 Pod 事件流。
// 调用者在处理完当前事件之前不会请求下一个事件，因此背压是天然的。
type Interface interface {
	// Next 阻塞直到下一个事件到达。
	// 流结束时返回 ErrStreamClosed，其他失败都是 StreamError。
	Next(ctx context.Context) (Event, error)
	// Stop 释放底层的 watch 连接。
	Stop()
}

// watcherFunc 从给定的 resourceVersion 开始建立一个 watch。
type watcherFunc func(ctx context.Context, resourceVersion string) (watch.Interface, error)

// podSource 是 Interface 的具体实现。
type podSource struct {
	client    kubernetes.Interface
	namespace string
	selector  string

	newWatcher watcherFunc

	started bool
	pending []Event // 初始 List 产生、尚未交付的事件
	w       watch.Interface
}

// NewPodSource 创建一个新的 Pod 事件源。
// namespace 为空表示所有命名空间；selector 为空表示不过滤。
// 连接在第一次调用 Next 时才建立。
func NewPodSource(client kubernetes.Interface, namespace, selector string) Interface {
	s := &podSource{
		client:    client,
		namespace: namespace,
		selector:  selector,
	}
	s.newWatcher = s.retryWatcher
	return s
}

// retryWatcher 使用 client-go 的 RetryWatcher，它负责断线重连和 resourceVersion 的续接。
func (s *podSource) retryWatcher(ctx context.Context, resourceVersion string) (watch.Interface, error) {
	lw := &cache.ListWatch{
		WatchFunc: func(options metav1.ListOptions) (watch.Interface, error) {
			return s.client.CoreV1().Pods(s.namespace).Watch(ctx, s.watchOptions(options))
		},
	}
	return watchtools.NewRetryWatcher(resourceVersion, lw)
}

// watchOptions 在 RetryWatcher 给出的选项上加上我们的 label selector，并请求 bookmark。
func (s *podSource) watchOptions(options metav1.ListOptions) metav1.ListOptions {
	options.LabelSelector = s.selector
	options.AllowWatchBookmarks = true
	return options
}

// start 做一次全量 List，把结果转换成 Restarted + Applied 事件，
// 然后从 List 的 resourceVersion 开始 watch。
func (s *podSource) start(ctx context.Context) error {
	logger := klog.FromContext(ctx)
	logger.V(2).Info("Listing pods", "namespace", s.namespace, "selector", s.selector)

	list, err := s.client.CoreV1().Pods(s.namespace).List(ctx, metav1.ListOptions{LabelSelector: s.selector})
	if err != nil {
		return util.NewStreamError(fmt.Errorf("failed to list pods: %w", err))
	}

	w, err := s.newWatcher(ctx, list.ResourceVersion)
	if err != nil {
		return util.NewStreamError(fmt.Errorf("failed to watch pods from resourceVersion %q: %w", list.ResourceVersion, err))
	}

	pending := make([]Event, 0, len(list.Items)+1)
	pending = append(pending, Event{Type: Restarted, ResourceVersion: list.ResourceVersion})
	for i := range list.Items {
		pending = append(pending, newPodEvent(Applied, &list.Items[i]))
	}

	s.pending = pending
	s.w = w
	s.started = true
	logger.V(2).Info("Initial pod list complete", "count", len(list.Items), "resourceVersion", list.ResourceVersion)
	return nil
}

func (s *podSource) Next(ctx context.Context) (Event, error) {
	if !s.started {
		if err := s.start(ctx); err != nil {
			return Event{}, err
		}
	}

	if len(s.pending) > 0 {
		ev := s.pending[0]
		s.pending = s.pending[1:]
		return ev, nil
	}

	select {
	case e, ok := <-s.w.ResultChan():
		if !ok {
			return Event{}, ErrStreamClosed
		}
		if isExpired(e) {
			return s.relist(ctx, e)
		}
		return toEvent(e)
	case <-ctx.Done():
		return Event{}, util.NewStreamError(ctx.Err())
	}
}

// relist 在 resourceVersion 过期（410 Gone）后丢弃当前 watch，重新 List 并从新的版本继续。
// 返回的是新一轮同步的 Restarted 事件。
func (s *podSource) relist(ctx context.Context, e watch.Event) (Event, error) {
	klog.FromContext(ctx).Info("Watch resourceVersion expired, relisting pods", "reason", apierrors.FromObject(e.Object))

	s.w.Stop()
	s.w = nil
	s.started = false
	s.pending = nil

	return s.Next(ctx)
}

// isExpired 报告一个 watch.Error 事件是否意味着需要重新 List。
func isExpired(e watch.Event) bool {
	if e.Type != watch.Error {
		return false
	}
	err := apierrors.FromObject(e.Object)
	return apierrors.IsResourceExpired(err) || apierrors.IsGone(err)
}

func (s *podSource) Stop() {
	if s.w != nil {
		s.w.Stop()
	}
}

// toEvent 把 client-go 的 watch.Event 转换成我们自己的事件。
func toEvent(e watch.Event) (Event, error) {
	switch e.Type {
	case watch.Error:
		return Event{}, util.NewStreamError(apierrors.FromObject(e.Object))
	case watch.Bookmark:
		ev := Event{Type: Bookmark}
		if accessor, err := meta.Accessor(e.Object); err == nil {
			ev.ResourceVersion = accessor.GetResourceVersion()
		}
		return ev, nil
	}

	pod, ok := e.Object.(*corev1.Pod)
	if !ok {
		return Event{}, util.NewStreamError(fmt.Errorf("unexpected object type %T in %s event", e.Object, e.Type))
	}

	switch e.Type {
	case watch.Added, watch.Modified:
		return newPodEvent(Applied, pod), nil
	case watch.Deleted:
		return newPodEvent(Removed, pod), nil
	default:
		return Event{}, util.NewStreamError(fmt.Errorf("unknown watch event type %q", e.Type))
	}
}
