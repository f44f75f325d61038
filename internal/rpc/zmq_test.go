package rpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/go-zeromq/zmq4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"stockmq/internal/config"
)

// startBridge 启动一个 REP 端，handler 返回 nil 时不应答。
func startBridge(t *testing.T, handler func(req []interface{}) []interface{}) string {
	t.Helper()

	endpoint := fmt.Sprintf("tcp://127.0.0.1:%d", freePort(t))

	ctx, cancel := context.WithCancel(context.Background())
	rep := zmq4.NewRep(ctx)
	require.NoError(t, rep.Listen(endpoint))
	t.Cleanup(func() {
		cancel()
		_ = rep.Close()
	})

	go func() {
		for {
			msg, err := rep.Recv()
			if err != nil {
				return
			}
			v, err := decodeValue(msg.Bytes())
			if err != nil {
				return
			}
			req, _ := v.([]interface{})
			reply := handler(req)
			if reply == nil {
				continue
			}
			data, err := msgpack.Marshal(reply)
			if err != nil {
				return
			}
			if err := rep.Send(zmq4.NewMsg(data)); err != nil {
				return
			}
		}
	}()

	return endpoint
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func testConfig(endpoint string) config.TerminalConfig {
	return config.TerminalConfig{
		Endpoint:    endpoint,
		DialTimeout: time.Second,
		CallTimeout: time.Second,
	}
}

func TestZMQChannel_Call(t *testing.T) {
	endpoint := startBridge(t, func(req []interface{}) []interface{} {
		if req[0] == "getNumberOf" {
			return []interface{}{true, 3}
		}
		return []interface{}{true, req[1:]}
	})

	ch, err := Dial(testConfig(endpoint), nil)
	require.NoError(t, err)
	defer ch.Close()

	n, err := ch.Call(context.Background(), "getNumberOf", "orders")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	echo, err := ch.Call(context.Background(), "stockmq_create_order", "CLIENT", "SPBFUT", "VBU2", "PUT_IN_QUEUE", "B", 1600.0, int64(1))
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"CLIENT", "SPBFUT", "VBU2", "PUT_IN_QUEUE", "B", 1600.0, int64(1)}, echo)
}

func TestZMQChannel_RemoteError(t *testing.T) {
	endpoint := startBridge(t, func(req []interface{}) []interface{} {
		return []interface{}{false, "unknown method"}
	})

	ch := NewZMQChannel(testConfig(endpoint), nil)
	defer ch.Close()

	_, err := ch.Call(context.Background(), "stockmq_nope")
	var remote *RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, "unknown method", remote.Message)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestZMQChannel_CallTimeout(t *testing.T) {
	endpoint := startBridge(t, func(req []interface{}) []interface{} {
		return nil
	})

	cfg := testConfig(endpoint)
	cfg.CallTimeout = 50 * time.Millisecond
	ch := NewZMQChannel(cfg, nil)
	defer ch.Close()

	start := time.Now()
	_, err := ch.Call(context.Background(), "stockmq_update_tx", map[string]interface{}{"id": 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestZMQChannel_Closed(t *testing.T) {
	ch := NewZMQChannel(testConfig("tcp://127.0.0.1:1"), nil)
	require.NoError(t, ch.Close())

	_, err := ch.Call(context.Background(), "getNumberOf", "orders")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestChannelFunc(t *testing.T) {
	var got string
	ch := ChannelFunc(func(ctx context.Context, method string, args ...interface{}) (interface{}, error) {
		got = method
		return len(args), nil
	})

	n, err := ch.Call(context.Background(), "stockmq_repl", "return 1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "stockmq_repl", got)
}
