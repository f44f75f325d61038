package execution

import (
	"fmt"
	"math"
	"reflect"

	mapstructure "github.com/go-viper/mapstructure/v2"
)

var requiredFields = []string{"id", "action", "board", "order_id", "created_ts", "updated_ts", "state", "message"}

// DecodeTransaction 将终端应答解析为 Transaction，任何缺失字段、类型错误或未知枚举值
// 都返回 *DecodeError，不会返回部分填充的结果。
func DecodeTransaction(v interface{}) (Transaction, error) {
	fields, ok := v.(map[string]interface{})
	if !ok {
		return Transaction{}, &DecodeError{Err: fmt.Errorf("期望对象，实际为 %T", v)}
	}

	for _, key := range requiredFields {
		value, present := fields[key]
		if !present {
			return Transaction{}, &DecodeError{Field: key, Err: fmt.Errorf("缺少字段")}
		}
		if value == nil {
			return Transaction{}, &DecodeError{Field: key, Err: fmt.Errorf("字段为空")}
		}
	}

	var tx Transaction
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &tx,
		TagName:          "mapstructure",
		ErrorUnset:       true,
		WeaklyTypedInput: false,
		DecodeHook:       integralFloatHook,
	})
	if err != nil {
		return Transaction{}, &DecodeError{Err: err}
	}
	if err := decoder.Decode(fields); err != nil {
		return Transaction{}, &DecodeError{Err: err}
	}

	if !tx.Action.Valid() {
		return Transaction{}, &DecodeError{Field: "action", Err: fmt.Errorf("未知的交易类型 %q", tx.Action)}
	}
	if !tx.State.Valid() {
		return Transaction{}, &DecodeError{Field: "state", Err: errUnknownState(tx.State)}
	}
	if tx.UpdatedTS < tx.CreatedTS {
		return Transaction{}, &DecodeError{
			Field: "updated_ts",
			Err:   fmt.Errorf("更新时间 %f 早于创建时间 %f", tx.UpdatedTS, tx.CreatedTS),
		}
	}

	return tx, nil
}

// integralFloatHook 拒绝把带小数的浮点数截断成整数标识。
func integralFloatHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to.Kind() != reflect.Int64 {
		return data, nil
	}
	switch from.Kind() {
	case reflect.Float32, reflect.Float64:
		f := reflect.ValueOf(data).Float()
		if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, fmt.Errorf("期望整数，实际为 %v", data)
		}
		// float64(math.MaxInt64) 恰为 2^63，已超出 int64 范围。
		if f < math.MinInt64 || f >= math.MaxInt64 {
			return nil, fmt.Errorf("整数越界 %v", data)
		}
		return int64(f), nil
	}
	return data, nil
}

func errUnknownState(s State) error {
	return fmt.Errorf("未知的交易状态 %q", s)
}
