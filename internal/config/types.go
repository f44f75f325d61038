package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// Config 聚合了客户端运行所需的全部配置项。
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Terminal TerminalConfig `mapstructure:"terminal"`
	Orders   OrdersConfig   `mapstructure:"orders"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// AppConfig 控制应用级参数。
type AppConfig struct {
	Environment string `mapstructure:"environment"`
}

// TerminalConfig 描述交易终端 RPC 通道。
type TerminalConfig struct {
	Endpoint    string        `mapstructure:"endpoint"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	CallTimeout time.Duration `mapstructure:"call_timeout"`
}

// OrdersConfig 控制下单与交易状态轮询。
type OrdersConfig struct {
	Client           string        `mapstructure:"client"`
	Board            string        `mapstructure:"board"`
	Timeout          time.Duration `mapstructure:"timeout"`
	PollInterval     time.Duration `mapstructure:"poll_interval"`
	BatchConcurrency int           `mapstructure:"batch_concurrency"`
}

// LoggingConfig 控制日志输出。
type LoggingConfig struct {
	Level            string   `mapstructure:"level"`
	Encoding         string   `mapstructure:"encoding"`
	Development      bool     `mapstructure:"development"`
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// Validate 对配置进行基本校验。
func (c *Config) Validate() error {
	var err error

	if c.App.Environment == "" {
		err = multierr.Append(err, errors.New("app.environment 不能为空"))
	}
	if c.Terminal.Endpoint == "" {
		err = multierr.Append(err, errors.New("terminal.endpoint 不能为空"))
	} else if !strings.Contains(c.Terminal.Endpoint, "://") {
		err = multierr.Append(err, fmt.Errorf("terminal.endpoint 缺少传输协议前缀: %q", c.Terminal.Endpoint))
	}
	if c.Terminal.DialTimeout <= 0 {
		err = multierr.Append(err, errors.New("terminal.dial_timeout 必须大于0"))
	}
	if c.Terminal.CallTimeout <= 0 {
		err = multierr.Append(err, errors.New("terminal.call_timeout 必须大于0"))
	}
	if c.Orders.Timeout <= 0 {
		err = multierr.Append(err, errors.New("orders.timeout 必须大于0"))
	}
	if c.Orders.PollInterval <= 0 {
		err = multierr.Append(err, errors.New("orders.poll_interval 必须大于0"))
	}
	if c.Orders.PollInterval > c.Orders.Timeout {
		err = multierr.Append(err, errors.New("orders.poll_interval 不应大于 orders.timeout"))
	}
	if c.Orders.BatchConcurrency <= 0 {
		err = multierr.Append(err, errors.New("orders.batch_concurrency 必须大于0"))
	}
	if c.Logging.Level == "" {
		err = multierr.Append(err, errors.New("logging.level 不能为空"))
	}
	if c.Logging.Encoding == "" {
		err = multierr.Append(err, errors.New("logging.encoding 不能为空"))
	}
	if len(c.Logging.OutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.output_paths 至少包含一个输出目标"))
	}
	if len(c.Logging.ErrorOutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.error_output_paths 至少包含一个输出目标"))
	}

	if err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}

	return nil
}
