package execution

import (
	"errors"
	"fmt"
	"time"

	"stockmq/internal/rpc"
)

var (
	// ErrTimeout 表示交易在等待期限内未进入终态。
	ErrTimeout = errors.New("execution: transaction wait timed out")
	// ErrRejected 表示终端拒绝了交易。
	ErrRejected = errors.New("execution: transaction rejected")
	// ErrDecode 表示应答缺少字段或取值非法。
	ErrDecode = errors.New("execution: malformed transaction")
	// ErrInvalidRequest 表示调用参数在发出请求前即被拒绝。
	ErrInvalidRequest = errors.New("execution: invalid request")
	// ErrTransport 与 rpc.ErrTransport 相同，便于调用方只依赖本包。
	ErrTransport = rpc.ErrTransport
)

// TimeoutError 携带超时时最后观察到的交易。
type TimeoutError struct {
	Tx      Transaction
	Timeout time.Duration
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("execution: 交易 %d 在 %s 内未完成 (已等待 %s)", e.Tx.ID, e.Timeout, e.Elapsed)
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// RejectedError 携带终端给出的拒绝原因。
type RejectedError struct {
	Tx      Transaction
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("execution: 交易 %d 被拒绝: %s", e.Tx.ID, e.Message)
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

// DecodeError 指出无法解析的字段。
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("execution: 解析交易失败: %v", e.Err)
	}
	return fmt.Sprintf("execution: 解析交易字段 %s 失败: %v", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

func invalidRequest(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}
