package execution

import (
	"context"
	"sync"
)

type fakeCall struct {
	method string
	args   []interface{}
}

// fakeChannel 记录每次调用并交给 handler 生成应答。
type fakeChannel struct {
	mu      sync.Mutex
	calls   []fakeCall
	handler func(method string, args []interface{}) (interface{}, error)
}

func (f *fakeChannel) Call(_ context.Context, method string, args ...interface{}) (interface{}, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fakeCall{method: method, args: args})
	f.mu.Unlock()
	return f.handler(method, args)
}

func (f *fakeChannel) methods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.method)
	}
	return out
}

func (f *fakeChannel) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// scripted 依次返回给定应答，用尽后重复最后一个。
func scripted(responses ...map[string]interface{}) *fakeChannel {
	var (
		mu   sync.Mutex
		next int
	)
	return &fakeChannel{
		handler: func(string, []interface{}) (interface{}, error) {
			mu.Lock()
			defer mu.Unlock()
			resp := responses[next]
			if next < len(responses)-1 {
				next++
			}
			return resp, nil
		},
	}
}

func txFields(id int64, action Action, orderID int64, state State, message string) map[string]interface{} {
	return map[string]interface{}{
		"id":         id,
		"action":     string(action),
		"board":      "SPBFUT",
		"order_id":   orderID,
		"created_ts": 1660000000.25,
		"updated_ts": 1660000000.5,
		"state":      string(state),
		"message":    message,
	}
}
