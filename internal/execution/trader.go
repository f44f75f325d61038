package execution

import (
	"context"
	"time"
)

// Trader 抽象端到端的下单与撤单操作，方便在上层替换实现。
type Trader interface {
	CreateOrder(ctx context.Context, req OrderRequest, timeout time.Duration) (Transaction, error)
	CreateStopOrder(ctx context.Context, req StopOrderRequest, timeout time.Duration) (Transaction, error)
	CancelOrder(ctx context.Context, req CancelRequest, timeout time.Duration) (Transaction, error)
	CancelStopOrder(ctx context.Context, req CancelRequest, timeout time.Duration) (Transaction, error)
}

var _ Trader = (*Executor)(nil)
