package execution

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultPollInterval 为两次刷新之间的固定间隔，未做退避。
const DefaultPollInterval = 10 * time.Millisecond

type refresher interface {
	Refresh(ctx context.Context, tx Transaction) (Transaction, error)
}

// Poller 反复刷新交易直到其进入终态或超时。
type Poller struct {
	refresher refresher
	interval  time.Duration
	logger    *zap.Logger
}

// NewPoller 创建轮询器，interval 非正时使用 DefaultPollInterval。
func NewPoller(r refresher, interval time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		refresher: r,
		interval:  interval,
		logger:    logger,
	}
}

// Interval 返回轮询间隔。
func (p *Poller) Interval() time.Duration {
	return p.interval
}

func (p *Poller) with(logger *zap.Logger) *Poller {
	clone := *p
	clone.logger = logger
	return &clone
}

// Wait 等待交易进入终态。
//
// 超时从调用 Wait 时开始计算，而不是从交易创建时开始；超时检查只发生在每轮休眠之前，
// 因此实际耗时最多比 timeout 多一个轮询间隔。ctx 取消时返回 ctx.Err()，终端上的交易不受影响。
// 出错时同时返回最后一次观察到的交易。
//
// timeout 不做默认值替换：非正值意味着尚未终结的交易在首次检查时即超时。
// 需要默认期限的调用方应使用 Executor。
func (p *Poller) Wait(ctx context.Context, tx Transaction, timeout time.Duration) (Transaction, error) {
	start := time.Now()
	logger := p.logger.With(zap.Int64("tx_id", tx.ID), zap.String("action", string(tx.Action)))

	timer := time.NewTimer(p.interval)
	timer.Stop()
	defer timer.Stop()

	for polls := 0; ; polls++ {
		switch tx.State {
		case StateExecuted:
			logger.Debug("交易已执行",
				zap.Int("polls", polls),
				zap.Duration("elapsed", time.Since(start)),
			)
			return tx, nil
		case StateRejected:
			return tx, &RejectedError{Tx: tx, Message: tx.Message}
		case StateAccepted:
			elapsed := time.Since(start)
			if elapsed >= timeout {
				return tx, &TimeoutError{Tx: tx, Timeout: timeout, Elapsed: elapsed}
			}

			timer.Reset(p.interval)
			select {
			case <-ctx.Done():
				return tx, ctx.Err()
			case <-timer.C:
			}

			next, err := p.refresher.Refresh(ctx, tx)
			if err != nil {
				return tx, err
			}
			logger.Debug("交易状态刷新",
				zap.Int("poll", polls+1),
				zap.String("state", string(next.State)),
			)
			tx = next
		default:
			return tx, &DecodeError{Field: "state", Err: errUnknownState(tx.State)}
		}
	}
}
