package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stockmq/internal/config"
	"stockmq/internal/execution"
	"stockmq/internal/rpc"
	"stockmq/internal/terminal"
)

// 支持的命令。
const (
	OpOrder      = "order"
	OpStopOrder  = "stop"
	OpCancel     = "cancel"
	OpCancelStop = "cancel-stop"
	OpCancelAll  = "cancel-all"
	OpTable      = "table"
	OpEval       = "eval"
)

// Command 描述一次命令行调用。
type Command struct {
	Op          string
	Client      string
	Board       string
	Ticker      string
	Side        string
	TimeInForce string
	Price       string
	StopPrice   string
	Quantity    int64
	OrderIDs    []int64
	Tables      []string
	Code        string
	Timeout     time.Duration
}

// App 聚合核心依赖并执行命令。
type App struct {
	cfg      *config.Config
	logger   *zap.Logger
	trader   *execution.Executor
	terminal *terminal.Client
}

// New 创建 App 实例。
func New(cfg *config.Config, logger *zap.Logger, channel rpc.Channel) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		cfg:    cfg,
		logger: logger,
		trader: execution.NewExecutor(channel, execution.Options{
			Timeout:          cfg.Orders.Timeout,
			PollInterval:     cfg.Orders.PollInterval,
			BatchConcurrency: cfg.Orders.BatchConcurrency,
		}, logger.Named("execution")),
		terminal: terminal.NewClient(channel, logger.Named("terminal")),
	}
}

// Run 执行命令并返回可序列化的结果。
func (a *App) Run(ctx context.Context, cmd Command) (interface{}, error) {
	a.logger.Debug("执行命令",
		zap.String("environment", a.cfg.App.Environment),
		zap.String("op", cmd.Op),
	)

	cmd = a.withDefaults(cmd)

	switch cmd.Op {
	case OpOrder:
		req, err := orderRequest(cmd)
		if err != nil {
			return nil, err
		}
		return a.trader.CreateOrder(ctx, req, cmd.Timeout)
	case OpStopOrder:
		req, err := orderRequest(cmd)
		if err != nil {
			return nil, err
		}
		stop, err := parsePrice("stop", cmd.StopPrice)
		if err != nil {
			return nil, err
		}
		return a.trader.CreateStopOrder(ctx, execution.StopOrderRequest{OrderRequest: req, StopPrice: stop}, cmd.Timeout)
	case OpCancel, OpCancelStop:
		if len(cmd.OrderIDs) != 1 {
			return nil, fmt.Errorf("%s 需要且只需要一个委托编号", cmd.Op)
		}
		req := cancelRequest(cmd, cmd.OrderIDs[0])
		if cmd.Op == OpCancelStop {
			return a.trader.CancelStopOrder(ctx, req, cmd.Timeout)
		}
		return a.trader.CancelOrder(ctx, req, cmd.Timeout)
	case OpCancelAll:
		if len(cmd.OrderIDs) == 0 {
			return nil, errors.New("cancel-all 至少需要一个委托编号")
		}
		return a.trader.CancelOrders(ctx, cancelRequest(cmd, 0), cmd.OrderIDs, cmd.Timeout)
	case OpTable:
		switch len(cmd.Tables) {
		case 0:
			return nil, errors.New("table 需要至少一个表名")
		case 1:
			return a.terminal.Table(cmd.Tables[0]).Rows(ctx)
		default:
			return a.terminal.Counts(ctx, cmd.Tables...)
		}
	case OpEval:
		if cmd.Code == "" {
			return nil, errors.New("eval 需要脚本内容")
		}
		return a.terminal.Eval(ctx, cmd.Code)
	}

	return nil, fmt.Errorf("未知命令 %q", cmd.Op)
}

func (a *App) withDefaults(cmd Command) Command {
	if cmd.Client == "" {
		cmd.Client = a.cfg.Orders.Client
	}
	if cmd.Board == "" {
		cmd.Board = a.cfg.Orders.Board
	}
	if cmd.Timeout <= 0 {
		cmd.Timeout = a.cfg.Orders.Timeout
	}
	return cmd
}

func orderRequest(cmd Command) (execution.OrderRequest, error) {
	side, err := execution.ParseSide(cmd.Side)
	if err != nil {
		return execution.OrderRequest{}, err
	}
	tif, err := execution.ParseTimeInForce(cmd.TimeInForce)
	if err != nil {
		return execution.OrderRequest{}, err
	}
	price, err := parsePrice("price", cmd.Price)
	if err != nil {
		return execution.OrderRequest{}, err
	}

	return execution.OrderRequest{
		Client:      cmd.Client,
		Board:       cmd.Board,
		Ticker:      cmd.Ticker,
		TimeInForce: tif,
		Side:        side,
		Price:       price,
		Quantity:    cmd.Quantity,
	}, nil
}

func cancelRequest(cmd Command, orderID int64) execution.CancelRequest {
	return execution.CancelRequest{
		Client:  cmd.Client,
		Board:   cmd.Board,
		Ticker:  cmd.Ticker,
		OrderID: orderID,
	}
}

func parsePrice(name, v string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("解析 %s 失败: %w", name, err)
	}
	return price, nil
}
