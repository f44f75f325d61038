package terminal

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Counts 并发查询多张表的行数，任一查询失败即返回错误。
func (c *Client) Counts(ctx context.Context, names ...string) (map[string]int, error) {
	counts := make([]int, len(names))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, name := range names {
		group.Go(func() error {
			n, err := c.Table(name).Len(groupCtx)
			if err != nil {
				return err
			}
			counts[i] = n
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	result := make(map[string]int, len(names))
	for i, name := range names {
		result[name] = counts[i]
	}

	c.logger.Debug("终端表行数查询完成", zap.Int("tables", len(names)))
	return result, nil
}
