package terminal

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Table 对应终端中的一张表，下标从 0 开始。
type Table struct {
	client *Client
	name   string
}

// Name 返回表名。
func (t *Table) Name() string {
	return t.name
}

// Len 返回表的行数。
func (t *Table) Len(ctx context.Context) (int, error) {
	res, err := t.client.channel.Call(ctx, MethodTableLength, t.name)
	if err != nil {
		return 0, err
	}
	return toInt(MethodTableLength, res)
}

// Item 返回第 index 行，行不存在时返回 ErrNoSuchRow。
func (t *Table) Item(ctx context.Context, index int) (interface{}, error) {
	res, err := t.client.channel.Call(ctx, MethodTableItem, t.name, int64(index))
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, ErrNoSuchRow
	}
	return res, nil
}

// Rows 读取整张表。读取期间表被缩短时返回已读到的行。
func (t *Table) Rows(ctx context.Context) ([]interface{}, error) {
	n, err := t.Len(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]interface{}, 0, n)
	for i := 0; i < n; i++ {
		row, err := t.Item(ctx, i)
		if errors.Is(err, ErrNoSuchRow) {
			t.client.logger.Debug("读取过程中表被缩短",
				zap.String("table", t.name),
				zap.Int("expected", n),
				zap.Int("read", i),
			)
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
