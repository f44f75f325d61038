package execution

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"stockmq/internal/rpc"
)

// 终端桥接进程导出的方法名。
const (
	MethodCreateOrder     = "stockmq_create_order"
	MethodCreateStopOrder = "stockmq_create_simple_stop_order"
	MethodCancelOrder     = "stockmq_cancel_order"
	MethodCancelStopOrder = "stockmq_cancel_stop_order"
	MethodUpdateTx        = "stockmq_update_tx"
)

// Builder 把交易意图转换为一次 RPC 调用并解析返回的交易。
// 每个方法恰好发起一次请求，不做任何重试。
type Builder struct {
	channel rpc.Channel
	logger  *zap.Logger
}

// NewBuilder 创建请求构造器。
func NewBuilder(channel rpc.Channel, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		channel: channel,
		logger:  logger,
	}
}

// SubmitOrder 提交限价委托。
func (b *Builder) SubmitOrder(ctx context.Context, req OrderRequest) (Transaction, error) {
	if err := validateOrder(req); err != nil {
		return Transaction{}, err
	}

	return b.call(ctx, MethodCreateOrder,
		req.Client,
		req.Board,
		req.Ticker,
		string(req.TimeInForce),
		string(req.Side),
		req.Price.InexactFloat64(),
		req.Quantity,
	)
}

// SubmitStopOrder 提交简单止损委托。
func (b *Builder) SubmitStopOrder(ctx context.Context, req StopOrderRequest) (Transaction, error) {
	if err := validateOrder(req.OrderRequest); err != nil {
		return Transaction{}, err
	}
	if !req.StopPrice.IsPositive() {
		return Transaction{}, invalidRequest("止损价必须为正: %s", req.StopPrice)
	}

	return b.call(ctx, MethodCreateStopOrder,
		req.Client,
		req.Board,
		req.Ticker,
		string(req.TimeInForce),
		string(req.Side),
		req.Price.InexactFloat64(),
		req.StopPrice.InexactFloat64(),
		req.Quantity,
	)
}

// CancelOrder 撤销委托。
func (b *Builder) CancelOrder(ctx context.Context, req CancelRequest) (Transaction, error) {
	if err := validateCancel(req); err != nil {
		return Transaction{}, err
	}
	return b.call(ctx, MethodCancelOrder, req.Client, req.Board, req.Ticker, req.OrderID)
}

// CancelStopOrder 撤销止损委托。
func (b *Builder) CancelStopOrder(ctx context.Context, req CancelRequest) (Transaction, error) {
	if err := validateCancel(req); err != nil {
		return Transaction{}, err
	}
	return b.call(ctx, MethodCancelStopOrder, req.Client, req.Board, req.Ticker, req.OrderID)
}

// Refresh 以完整交易记录重新查询其当前状态。
func (b *Builder) Refresh(ctx context.Context, tx Transaction) (Transaction, error) {
	return b.call(ctx, MethodUpdateTx, tx)
}

func (b *Builder) call(ctx context.Context, method string, args ...interface{}) (Transaction, error) {
	resp, err := b.channel.Call(ctx, method, args...)
	if err != nil {
		return Transaction{}, err
	}

	tx, err := DecodeTransaction(resp)
	if err != nil {
		return Transaction{}, fmt.Errorf("%s: %w", method, err)
	}

	b.logger.Debug("收到交易记录",
		zap.String("method", method),
		zap.Int64("tx_id", tx.ID),
		zap.Int64("order_id", tx.OrderID),
		zap.String("state", string(tx.State)),
	)
	return tx, nil
}

func validateOrder(req OrderRequest) error {
	if err := validateRoute(req.Client, req.Board, req.Ticker); err != nil {
		return err
	}
	if !req.TimeInForce.Valid() {
		return invalidRequest("未知的有效期条件 %q", req.TimeInForce)
	}
	if !req.Side.Valid() {
		return invalidRequest("未知的买卖方向 %q", req.Side)
	}
	if !req.Price.IsPositive() {
		return invalidRequest("价格必须为正: %s", req.Price)
	}
	if req.Quantity <= 0 {
		return invalidRequest("数量必须为正整数: %d", req.Quantity)
	}
	return nil
}

func validateCancel(req CancelRequest) error {
	if err := validateRoute(req.Client, req.Board, req.Ticker); err != nil {
		return err
	}
	if req.OrderID <= 0 {
		return invalidRequest("委托编号无效: %d", req.OrderID)
	}
	return nil
}

func validateRoute(client, board, ticker string) error {
	switch {
	case client == "":
		return invalidRequest("client 不能为空")
	case board == "":
		return invalidRequest("board 不能为空")
	case ticker == "":
		return invalidRequest("ticker 不能为空")
	}
	return nil
}
