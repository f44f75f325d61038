package terminal

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSuchRow 表示终端表中不存在指定下标的行。
	ErrNoSuchRow = errors.New("terminal: no such row")
	// ErrUnexpectedReply 表示终端返回值类型与方法约定不符。
	ErrUnexpectedReply = errors.New("terminal: unexpected reply")
)

func unexpected(method string, v interface{}) error {
	return fmt.Errorf("%w: %s 返回 %T", ErrUnexpectedReply, method, v)
}
