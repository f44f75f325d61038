// Package terminal 提供交易终端的表格查询与脚本执行等辅助调用。
package terminal

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"stockmq/internal/rpc"
)

const (
	MethodTableLength = "getNumberOf"
	MethodTableItem   = "stockmq_get_item"
	MethodRepl        = "stockmq_repl"
)

// Client 为终端辅助调用的轻量封装，不做重试。
type Client struct {
	channel rpc.Channel
	logger  *zap.Logger
}

// NewClient 创建终端客户端。
func NewClient(channel rpc.Channel, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		channel: channel,
		logger:  logger,
	}
}

// Eval 在终端中执行一段 Lua 代码并返回其结果。
func (c *Client) Eval(ctx context.Context, code string) (interface{}, error) {
	res, err := c.channel.Call(ctx, MethodRepl, code)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("终端脚本执行完成", zap.Int("code_len", len(code)))
	return res, nil
}

// Table 返回指定名称的终端表。
func (c *Client) Table(name string) *Table {
	return &Table{client: c, name: name}
}

func toInt(method string, v interface{}) (int, error) {
	switch n := v.(type) {
	case int64:
		if n < 0 || n > math.MaxInt {
			return 0, fmt.Errorf("%w: %s 返回值越界 %d", ErrUnexpectedReply, method, n)
		}
		return int(n), nil
	case uint64:
		if n > math.MaxInt {
			return 0, fmt.Errorf("%w: %s 返回值越界 %d", ErrUnexpectedReply, method, n)
		}
		return int(n), nil
	case float64:
		if n != math.Trunc(n) || n < 0 || n >= math.MaxInt64 {
			return 0, fmt.Errorf("%w: %s 返回非整数 %v", ErrUnexpectedReply, method, n)
		}
		return int(n), nil
	case int:
		if n < 0 {
			return 0, fmt.Errorf("%w: %s 返回值越界 %d", ErrUnexpectedReply, method, n)
		}
		return n, nil
	}
	return 0, unexpected(method, v)
}
