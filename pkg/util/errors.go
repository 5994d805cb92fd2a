// file: pkg/util/errors.go

package util

import (
	"errors"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// ErrorReason 标识控制器错误的种类。
type ErrorReason string

const (
	// ReasonStream 表示 watch 订阅本身失败。
	ReasonStream ErrorReason = "StreamError"
	// ReasonTransport 表示 patch 调用过程中的网络或 API 失败。
	ReasonTransport ErrorReason = "TransportError"
	// ReasonNotFound 表示对象在 patch 之前已经消失。
	ReasonNotFound ErrorReason = "NotFoundError"
	// ReasonConflict 表示 field manager 所有权冲突。
	ReasonConflict ErrorReason = "ConflictError"
)

// ControllerError 是控制器向上传播的错误类型。
// 它保留了原始错误，因此 apierrors 的判断函数依然可用。
type ControllerError struct {
	Reason    ErrorReason
	Namespace string
	Name      string
	Err       error
}

func (e *ControllerError) Error() string {
	if e.Name == "" && e.Namespace == "" {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: pod %s/%s: %v", e.Reason, e.Namespace, e.Name, e.Err)
}

func (e *ControllerError) Unwrap() error {
	return e.Err
}

// NewStreamError 把 watch 流上的失败包装成 StreamError。
func NewStreamError(err error) error {
	return &ControllerError{Reason: ReasonStream, Err: err}
}

// NewPatchError 根据 API Server 返回的状态对 patch 错误进行分类。
func NewPatchError(namespace, name string, err error) error {
	if err == nil {
		return nil
	}

	reason := ReasonTransport
	switch {
	case apierrors.IsNotFound(err):
		reason = ReasonNotFound
	case apierrors.IsConflict(err):
		reason = ReasonConflict
	}
	return &ControllerError{Reason: reason, Namespace: namespace, Name: name, Err: err}
}

// ReasonForError 返回错误链中第一个 ControllerError 的种类，没有则返回空字符串。
func ReasonForError(err error) ErrorReason {
	var ce *ControllerError
	if errors.As(err, &ce) {
		return ce.Reason
	}
	return ""
}

// IsStreamError 判断错误是否来自 watch 流本身。
func IsStreamError(err error) bool { return ReasonForError(err) == ReasonStream }

// IsTransportError 判断错误是否是 patch 时的网络或 API 失败。
func IsTransportError(err error) bool { return ReasonForError(err) == ReasonTransport }

// IsNotFound 判断对象是否在 patch 之前已经被删除。
func IsNotFound(err error) bool { return ReasonForError(err) == ReasonNotFound }

// IsConflict 判断错误是否是 field manager 所有权冲突。
func IsConflict(err error) bool { return ReasonForError(err) == ReasonConflict }
