package execution

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Action 表示交易终端中的交易类型。
type Action string

const (
	ActionNewOrder      Action = "NEW_ORDER"
	ActionNewStopOrder  Action = "NEW_STOP_ORDER"
	ActionKillOrder     Action = "KILL_ORDER"
	ActionKillStopOrder Action = "KILL_STOP_ORDER"
)

// Valid 判断是否为已知的交易类型。
func (a Action) Valid() bool {
	switch a {
	case ActionNewOrder, ActionNewStopOrder, ActionKillOrder, ActionKillStopOrder:
		return true
	}
	return false
}

// Side 表示买卖方向，取值即线上编码。
type Side string

const (
	SideBuy  Side = "B"
	SideSell Side = "S"
)

func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// Name 返回方向名称。
func (s Side) Name() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	}
	return string(s)
}

// ParseSide 接受 BUY/SELL 或线上编码 B/S。
func ParseSide(v string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "BUY", "B":
		return SideBuy, nil
	case "SELL", "S":
		return SideSell, nil
	}
	return "", fmt.Errorf("execution: 未知的买卖方向 %q", v)
}

// OrderType 表示委托类型。
type OrderType string

const (
	OrderTypeLimit  OrderType = "L"
	OrderTypeMarket OrderType = "M"
)

func (t OrderType) Valid() bool {
	return t == OrderTypeLimit || t == OrderTypeMarket
}

// ParseOrderType 接受 LIMIT/MARKET 或线上编码 L/M。
func ParseOrderType(v string) (OrderType, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "LIMIT", "L":
		return OrderTypeLimit, nil
	case "MARKET", "M":
		return OrderTypeMarket, nil
	}
	return "", fmt.Errorf("execution: 未知的委托类型 %q", v)
}

// TimeInForce 表示委托有效期条件。
type TimeInForce string

const (
	TimeInForceFOK TimeInForce = "FILL_OR_KILL"
	TimeInForceIOC TimeInForce = "KILL_BALANCE"
	TimeInForceDAY TimeInForce = "PUT_IN_QUEUE"
)

func (t TimeInForce) Valid() bool {
	switch t {
	case TimeInForceFOK, TimeInForceIOC, TimeInForceDAY:
		return true
	}
	return false
}

// ParseTimeInForce 接受 FOK/IOC/DAY 或线上编码。
func ParseTimeInForce(v string) (TimeInForce, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "FOK", string(TimeInForceFOK):
		return TimeInForceFOK, nil
	case "IOC", string(TimeInForceIOC):
		return TimeInForceIOC, nil
	case "DAY", string(TimeInForceDAY):
		return TimeInForceDAY, nil
	}
	return "", fmt.Errorf("execution: 未知的有效期条件 %q", v)
}

// State 表示交易状态。ACCEPTED 为唯一的非终态。
type State string

const (
	StateAccepted State = "ACCEPTED"
	StateRejected State = "REJECTED"
	StateExecuted State = "EXECUTED"
)

func (s State) Valid() bool {
	switch s {
	case StateAccepted, StateRejected, StateExecuted:
		return true
	}
	return false
}

// Terminal 判断是否为终态。
func (s State) Terminal() bool {
	return s == StateExecuted || s == StateRejected
}

// Transaction 为终端返回的交易记录，每次刷新整体替换。
type Transaction struct {
	ID        int64   `msgpack:"id" mapstructure:"id" json:"id"`
	Action    Action  `msgpack:"action" mapstructure:"action" json:"action"`
	Board     string  `msgpack:"board" mapstructure:"board" json:"board"`
	OrderID   int64   `msgpack:"order_id" mapstructure:"order_id" json:"order_id"`
	CreatedTS float64 `msgpack:"created_ts" mapstructure:"created_ts" json:"created_ts"`
	UpdatedTS float64 `msgpack:"updated_ts" mapstructure:"updated_ts" json:"updated_ts"`
	State     State   `msgpack:"state" mapstructure:"state" json:"state"`
	Message   string  `msgpack:"message" mapstructure:"message" json:"message"`
}

// Latency 返回终端记录的创建到最近更新之间的耗时。
func (t Transaction) Latency() time.Duration {
	return time.Duration((t.UpdatedTS - t.CreatedTS) * float64(time.Second))
}

// OrderRequest 描述一笔限价委托。
type OrderRequest struct {
	Client      string
	Board       string
	Ticker      string
	TimeInForce TimeInForce
	Side        Side
	Price       decimal.Decimal
	Quantity    int64
}

// StopOrderRequest 描述一笔简单止损委托。
type StopOrderRequest struct {
	OrderRequest
	StopPrice decimal.Decimal
}

// CancelRequest 描述撤销委托或止损委托。
type CancelRequest struct {
	Client  string
	Board   string
	Ticker  string
	OrderID int64
}
