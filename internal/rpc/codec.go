package rpc

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// encodeRequest 将调用编码为 [method, arg1, arg2, ...]。
func encodeRequest(method string, args []interface{}) ([]byte, error) {
	frame := make([]interface{}, 0, len(args)+1)
	frame = append(frame, method)
	frame = append(frame, args...)

	data, err := msgpack.Marshal(frame)
	if err != nil {
		return nil, fmt.Errorf("编码请求失败: %w", err)
	}
	return data, nil
}

// decodeResponse 解析 [ok, value] 应答。ok 为 false 时 value 为终端错误文本。
func decodeResponse(method string, data []byte) (interface{}, error) {
	v, err := decodeValue(data)
	if err != nil {
		return nil, &TransportError{Method: method, Err: fmt.Errorf("解码应答失败: %w", err)}
	}

	envelope, ok := v.([]interface{})
	if !ok || len(envelope) != 2 {
		return nil, &TransportError{Method: method, Err: fmt.Errorf("应答格式无效: %T", v)}
	}

	status, ok := envelope[0].(bool)
	if !ok {
		return nil, &TransportError{Method: method, Err: fmt.Errorf("应答状态位无效: %v", envelope[0])}
	}
	if !status {
		return nil, &RemoteError{Method: method, Message: fmt.Sprint(envelope[1])}
	}

	return envelope[1], nil
}

// decodeValue 使用宽松模式解码：整数统一为 int64/uint64，浮点统一为 float64。
func decodeValue(data []byte) (interface{}, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.UseLooseInterfaceDecoding(true)

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
