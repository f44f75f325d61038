package execution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stockmq/internal/rpc"
)

const (
	// DefaultTimeout 为等待交易终态的默认期限。
	DefaultTimeout          = time.Second
	defaultBatchConcurrency = 4
)

// Options 控制等待与批量撤单行为。
type Options struct {
	Timeout          time.Duration
	PollInterval     time.Duration
	BatchConcurrency int
}

// Executor 组合请求构造器与轮询器，对外提供端到端的下单与撤单操作。
// 各方法可并发调用，每次调用独立完成提交与轮询。
type Executor struct {
	builder     *Builder
	poller      *Poller
	timeout     time.Duration
	concurrency int
	logger      *zap.Logger
}

// NewExecutor 创建执行器。channel 在执行器生命周期内由其使用。
func NewExecutor(channel rpc.Channel, opts Options, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.BatchConcurrency <= 0 {
		opts.BatchConcurrency = defaultBatchConcurrency
	}

	builder := NewBuilder(channel, logger)
	return &Executor{
		builder:     builder,
		poller:      NewPoller(builder, opts.PollInterval, logger),
		timeout:     opts.Timeout,
		concurrency: opts.BatchConcurrency,
		logger:      logger,
	}
}

// Builder 返回底层请求构造器，供需要自行控制轮询的调用方使用。
func (e *Executor) Builder() *Builder {
	return e.builder
}

// CreateOrder 提交限价委托并等待其执行。
// timeout 非正时使用 Options.Timeout（缺省为 DefaultTimeout），这与 Poller.Wait 不同，
// 后者把非正 timeout 视为立即超时。其余方法的 timeout 语义与此相同。
func (e *Executor) CreateOrder(ctx context.Context, req OrderRequest, timeout time.Duration) (Transaction, error) {
	return e.run(ctx, "create_order", timeout, func(ctx context.Context) (Transaction, error) {
		return e.builder.SubmitOrder(ctx, req)
	},
		zap.String("board", req.Board),
		zap.String("ticker", req.Ticker),
		zap.String("side", req.Side.Name()),
		zap.String("price", req.Price.String()),
		zap.Int64("quantity", req.Quantity),
	)
}

// CreateStopOrder 提交止损委托并等待其执行。
func (e *Executor) CreateStopOrder(ctx context.Context, req StopOrderRequest, timeout time.Duration) (Transaction, error) {
	return e.run(ctx, "create_stop_order", timeout, func(ctx context.Context) (Transaction, error) {
		return e.builder.SubmitStopOrder(ctx, req)
	},
		zap.String("board", req.Board),
		zap.String("ticker", req.Ticker),
		zap.String("side", req.Side.Name()),
		zap.String("price", req.Price.String()),
		zap.String("stop_price", req.StopPrice.String()),
		zap.Int64("quantity", req.Quantity),
	)
}

// CancelOrder 撤销委托并等待终端确认。
func (e *Executor) CancelOrder(ctx context.Context, req CancelRequest, timeout time.Duration) (Transaction, error) {
	return e.run(ctx, "cancel_order", timeout, func(ctx context.Context) (Transaction, error) {
		return e.builder.CancelOrder(ctx, req)
	},
		zap.String("board", req.Board),
		zap.String("ticker", req.Ticker),
		zap.Int64("order_id", req.OrderID),
	)
}

// CancelStopOrder 撤销止损委托并等待终端确认。
func (e *Executor) CancelStopOrder(ctx context.Context, req CancelRequest, timeout time.Duration) (Transaction, error) {
	return e.run(ctx, "cancel_stop_order", timeout, func(ctx context.Context) (Transaction, error) {
		return e.builder.CancelStopOrder(ctx, req)
	},
		zap.String("board", req.Board),
		zap.String("ticker", req.Ticker),
		zap.Int64("order_id", req.OrderID),
	)
}

// BatchResult 为批量撤单中单笔委托的结果。
type BatchResult struct {
	OrderID int64       `json:"order_id"`
	Tx      Transaction `json:"tx"`
	Err     error       `json:"-"`
}

// CancelOrders 并发撤销 template 所指品种下的多笔委托。
// 每笔委托都会被尝试，结果按 orderIDs 的顺序返回，所有失败合并为一个错误。
func (e *Executor) CancelOrders(ctx context.Context, template CancelRequest, orderIDs []int64, timeout time.Duration) ([]BatchResult, error) {
	results := make([]BatchResult, len(orderIDs))

	var group errgroup.Group
	group.SetLimit(e.concurrency)

	for i, id := range orderIDs {
		group.Go(func() error {
			req := template
			req.OrderID = id
			tx, err := e.CancelOrder(ctx, req, timeout)
			results[i] = BatchResult{OrderID: id, Tx: tx, Err: err}
			return nil
		})
	}
	_ = group.Wait()

	var err error
	for _, res := range results {
		if res.Err != nil {
			err = multierr.Append(err, fmt.Errorf("委托 %d: %w", res.OrderID, res.Err))
		}
	}
	return results, err
}

func (e *Executor) run(
	ctx context.Context,
	op string,
	timeout time.Duration,
	submit func(context.Context) (Transaction, error),
	fields ...zap.Field,
) (Transaction, error) {
	if timeout <= 0 {
		timeout = e.timeout
	}

	logger := e.logger.With(zap.String("op", op), zap.String("op_id", uuid.NewString()))
	logger = logger.With(fields...)

	tx, err := submit(ctx)
	if err != nil {
		logger.Error("提交交易失败", zap.Error(err))
		return Transaction{}, err
	}

	logger.Debug("交易已提交",
		zap.Int64("tx_id", tx.ID),
		zap.String("state", string(tx.State)),
		zap.Duration("timeout", timeout),
	)

	final, err := e.poller.with(logger).Wait(ctx, tx, timeout)

	var (
		rejected *RejectedError
		timedOut *TimeoutError
	)
	switch {
	case err == nil:
		logger.Info("交易已执行",
			zap.Int64("tx_id", final.ID),
			zap.Int64("order_id", final.OrderID),
			zap.Duration("latency", final.Latency()),
		)
	case errors.As(err, &rejected):
		logger.Warn("交易被拒绝",
			zap.Int64("tx_id", final.ID),
			zap.String("message", rejected.Message),
		)
	case errors.As(err, &timedOut):
		logger.Warn("等待交易超时",
			zap.Int64("tx_id", final.ID),
			zap.Duration("elapsed", timedOut.Elapsed),
		)
	default:
		logger.Error("等待交易失败", zap.Int64("tx_id", final.ID), zap.Error(err))
	}

	return final, err
}
