package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"stockmq/internal/app"
	"stockmq/internal/config"
	"stockmq/internal/execution"
	"stockmq/internal/log"
	"stockmq/internal/rpc"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run 执行一次命令并返回退出码；os.Exit 只在 main 中调用，以便延迟的关闭与日志刷新得以执行。
func run(args []string, stdout, stderr io.Writer) int {
	var (
		configPath string
		orderIDs   string
		tables     string
		cmd        app.Command
	)
	flags := flag.NewFlagSet("stockmq", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&configPath, "config", "", "配置文件路径，默认使用 configs/config.yaml")
	flags.StringVar(&cmd.Op, "op", "", "命令: order|stop|cancel|cancel-stop|cancel-all|table|eval")
	flags.StringVar(&cmd.Client, "client", "", "客户代码，默认取 orders.client")
	flags.StringVar(&cmd.Board, "board", "", "交易板块，默认取 orders.board")
	flags.StringVar(&cmd.Ticker, "ticker", "", "证券代码")
	flags.StringVar(&cmd.Side, "side", "BUY", "买卖方向: BUY|SELL")
	flags.StringVar(&cmd.TimeInForce, "tif", "DAY", "有效期条件: FOK|IOC|DAY")
	flags.StringVar(&cmd.Price, "price", "", "委托价格")
	flags.StringVar(&cmd.StopPrice, "stop-price", "", "止损触发价格")
	flags.Int64Var(&cmd.Quantity, "qty", 1, "委托数量")
	flags.StringVar(&orderIDs, "order", "", "委托编号，cancel-all 可用逗号分隔多个")
	flags.StringVar(&tables, "table", "", "终端表名，多个以逗号分隔时仅返回行数")
	flags.StringVar(&cmd.Code, "code", "", "eval 执行的 Lua 代码")
	flags.DurationVar(&cmd.Timeout, "timeout", 0, "等待交易终态的期限，默认取 orders.timeout")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "加载配置失败: %v\n", err)
		return 1
	}

	logger, err := log.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(stderr, "初始化日志失败: %v\n", err)
		return 1
	}
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	if cmd.OrderIDs, err = parseIDs(orderIDs); err != nil {
		logger.Error("解析委托编号失败", zap.Error(err))
		return 2
	}
	cmd.Tables = splitList(tables)

	channel, err := rpc.Dial(cfg.Terminal, logger)
	if err != nil {
		logger.Error("连接终端失败", zap.String("endpoint", cfg.Terminal.Endpoint), zap.Error(err))
		return 1
	}
	defer func() {
		if closeErr := channel.Close(); closeErr != nil {
			logger.Warn("关闭终端连接失败", zap.Error(closeErr))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, runErr := app.New(cfg, logger, channel).Run(ctx, cmd)
	_, partial := result.([]execution.BatchResult)
	if runErr == nil || partial {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			logger.Warn("输出结果失败", zap.Error(err))
		}
	}
	if runErr != nil {
		logger.Error("命令执行失败", zap.String("op", cmd.Op), zap.Error(runErr))
		return exitCode(runErr)
	}
	return 0
}

// exitCode 让脚本能够区分超时、拒绝与环境故障。
func exitCode(err error) int {
	switch {
	case errors.Is(err, execution.ErrTimeout):
		return 3
	case errors.Is(err, execution.ErrRejected):
		return 4
	case errors.Is(err, execution.ErrTransport), errors.Is(err, execution.ErrDecode):
		return 5
	}
	return 1
}

func parseIDs(v string) ([]int64, error) {
	parts := splitList(v)
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("委托编号 %q 无效: %w", p, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
