package rpc

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport 标识一次调用未能完成请求/应答往返。
	ErrTransport = errors.New("rpc: transport failure")
	// ErrClosed 表示通道已关闭。
	ErrClosed = errors.New("rpc: channel closed")
)

// TransportError 记录失败的方法名及底层原因。
type TransportError struct {
	Method string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("rpc: 调用 %s 失败: %v", e.Method, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is 使 errors.Is(err, ErrTransport) 成立。
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// RemoteError 为终端侧执行方法时返回的错误。
type RemoteError struct {
	Method  string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("rpc: 终端执行 %s 出错: %s", e.Method, e.Message)
}

func (e *RemoteError) Is(target error) bool {
	return target == ErrTransport
}

// IsTransport 判断错误是否来自传输层。
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}
