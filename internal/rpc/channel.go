// Package rpc 实现与 stockmq 终端桥接进程之间的请求/应答通道。
package rpc

import "context"

// Channel 抽象同步 RPC 调用原语，调用失败时返回 ErrTransport 族错误。
type Channel interface {
	Call(ctx context.Context, method string, args ...interface{}) (interface{}, error)
}

// ChannelFunc 允许普通函数充当 Channel。
type ChannelFunc func(ctx context.Context, method string, args ...interface{}) (interface{}, error)

// Call 调用 f 本身。
func (f ChannelFunc) Call(ctx context.Context, method string, args ...interface{}) (interface{}, error) {
	return f(ctx, method, args...)
}

var (
	_ Channel = (*ZMQChannel)(nil)
	_ Channel = ChannelFunc(nil)
)
