//go:build integration
// +build integration

package execution

import (
	"context"
	"errors"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stockmq/internal/config"
	"stockmq/internal/rpc"
)

// 需要一个可用的 QUIK 终端及 stockmq 桥接脚本。
// STOCKMQ_TICKER 与 STOCKMQ_PRICE 指定挂单品种与价格，价格应远离市价以免成交。
func TestExecutorIntegration_PlaceAndCancel(t *testing.T) {
	configPath := os.Getenv("STOCKMQ_CONFIG")
	if configPath == "" {
		configPath = "../../configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	if cfg.Orders.Client == "" || cfg.Orders.Board == "" {
		t.Skip("配置缺少 orders.client 或 orders.board，跳过测试")
	}

	ticker := os.Getenv("STOCKMQ_TICKER")
	priceText := os.Getenv("STOCKMQ_PRICE")
	if ticker == "" || priceText == "" {
		t.Skip("未设置 STOCKMQ_TICKER/STOCKMQ_PRICE，跳过真实下单测试")
	}
	price, err := decimal.NewFromString(priceText)
	if err != nil {
		t.Fatalf("解析价格失败: %v", err)
	}

	channel, err := rpc.Dial(cfg.Terminal, zap.NewNop())
	if err != nil {
		t.Skipf("无法连接终端 %s: %v", cfg.Terminal.Endpoint, err)
	}
	defer channel.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	exec := NewExecutor(channel, Options{
		Timeout:      cfg.Orders.Timeout,
		PollInterval: cfg.Orders.PollInterval,
	}, zap.NewNop())

	qty, _ := strconv.ParseInt(os.Getenv("STOCKMQ_QTY"), 10, 64)
	if qty <= 0 {
		qty = 1
	}

	placed, err := exec.CreateOrder(ctx, OrderRequest{
		Client:      cfg.Orders.Client,
		Board:       cfg.Orders.Board,
		Ticker:      ticker,
		TimeInForce: TimeInForceDAY,
		Side:        SideBuy,
		Price:       price,
		Quantity:    qty,
	}, 4*time.Second)
	if err != nil {
		var rejected *RejectedError
		if errors.As(err, &rejected) {
			t.Skipf("终端拒绝挂单: %s", rejected.Message)
		}
		t.Fatalf("CreateOrder 失败: %v", err)
	}
	t.Logf("挂单成功 order_id=%d latency=%s", placed.OrderID, placed.Latency())

	cancelled, err := exec.CancelOrder(ctx, CancelRequest{
		Client:  cfg.Orders.Client,
		Board:   cfg.Orders.Board,
		Ticker:  ticker,
		OrderID: placed.OrderID,
	}, 4*time.Second)
	if err != nil {
		t.Fatalf("CancelOrder 失败: %v", err)
	}
	t.Logf("撤单成功 tx_id=%d latency=%s", cancelled.ID, cancelled.Latency())
}
