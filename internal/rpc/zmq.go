package rpc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-zeromq/zmq4"
	"go.uber.org/zap"

	"stockmq/internal/config"
)

const (
	defaultDialTimeout = 3 * time.Second
	defaultCallTimeout = 5 * time.Second
)

// ZMQChannel 通过 ZeroMQ REQ 套接字与终端桥接进程通信。
//
// REQ 套接字要求严格的发送/接收交替，因此所有调用在同一把锁下串行执行。
// 一次往返中断后套接字即被丢弃，下一次调用时重新建立连接；失败的调用本身不会重试。
type ZMQChannel struct {
	endpoint    string
	dialTimeout time.Duration
	callTimeout time.Duration
	logger      *zap.Logger

	mu     sync.Mutex
	sock   zmq4.Socket
	closed bool
}

// NewZMQChannel 创建通道，首次调用时才建立连接。
func NewZMQChannel(cfg config.TerminalConfig, logger *zap.Logger) *ZMQChannel {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaultDialTimeout
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}

	return &ZMQChannel{
		endpoint:    cfg.Endpoint,
		dialTimeout: cfg.DialTimeout,
		callTimeout: cfg.CallTimeout,
		logger:      logger.Named("rpc"),
	}
}

// Dial 创建通道并立即连接终端。
func Dial(cfg config.TerminalConfig, logger *zap.Logger) (*ZMQChannel, error) {
	ch := NewZMQChannel(cfg, logger)

	ch.mu.Lock()
	defer ch.mu.Unlock()

	if err := ch.dialLocked(); err != nil {
		return nil, &TransportError{Method: "dial", Err: err}
	}
	return ch, nil
}

// Endpoint 返回终端地址。
func (c *ZMQChannel) Endpoint() string {
	return c.endpoint
}

// Call 发送一次请求并等待应答。
func (c *ZMQChannel) Call(ctx context.Context, method string, args ...interface{}) (interface{}, error) {
	payload, err := encodeRequest(method, args)
	if err != nil {
		return nil, &TransportError{Method: method, Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, &TransportError{Method: method, Err: ErrClosed}
	}

	if c.sock == nil {
		if err := c.dialLocked(); err != nil {
			return nil, &TransportError{Method: method, Err: err}
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	start := time.Now()
	reply, err := c.exchangeLocked(callCtx, payload)
	if err != nil {
		c.logger.Warn("终端调用失败，丢弃当前连接",
			zap.String("method", method),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
		c.resetLocked()
		return nil, &TransportError{Method: method, Err: err}
	}

	c.logger.Debug("终端调用完成",
		zap.String("method", method),
		zap.Duration("latency", time.Since(start)),
	)

	return decodeResponse(method, reply)
}

// Close 关闭底层套接字，之后的调用返回 ErrClosed。
func (c *ZMQChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.sock == nil {
		return nil
	}
	err := c.sock.Close()
	c.sock = nil
	return err
}

func (c *ZMQChannel) dialLocked() error {
	sock := zmq4.NewReq(context.Background(), zmq4.WithDialerTimeout(c.dialTimeout))
	if err := sock.Dial(c.endpoint); err != nil {
		_ = sock.Close()
		return fmt.Errorf("连接终端 %s 失败: %w", c.endpoint, err)
	}

	c.sock = sock
	c.logger.Info("已连接终端", zap.String("endpoint", c.endpoint))
	return nil
}

func (c *ZMQChannel) resetLocked() {
	if c.sock == nil {
		return
	}
	if err := c.sock.Close(); err != nil {
		c.logger.Debug("关闭套接字失败", zap.Error(err))
	}
	c.sock = nil
}

type exchangeResult struct {
	data []byte
	err  error
}

func (c *ZMQChannel) exchangeLocked(ctx context.Context, payload []byte) ([]byte, error) {
	sock := c.sock
	done := make(chan exchangeResult, 1)

	go func() {
		if err := sock.Send(zmq4.NewMsg(payload)); err != nil {
			done <- exchangeResult{err: fmt.Errorf("发送请求失败: %w", err)}
			return
		}
		msg, err := sock.Recv()
		if err != nil {
			done <- exchangeResult{err: fmt.Errorf("接收应答失败: %w", err)}
			return
		}
		done <- exchangeResult{data: msg.Bytes()}
	}()

	select {
	case res := <-done:
		return res.data, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
