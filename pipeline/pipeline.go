package pipeline

import (
	"context"
	"fmt"

	"github.com/rushteam/cinekit/core"
)

// Pipeline 是 Cinekit 的核心抽象：把一次推荐请求拆成可组合的 Node 链
// （召回 → 混合 → 过滤 → 截断）。
type Pipeline struct {
	Nodes []Node
}

// Run 依次执行各 Node，前一个的输出是后一个的输入。
// 每个 Node 执行前检查请求取消；领域错误（DomainError）原样上抛，
// 其余错误包上 Node 名便于定位。
func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			if core.GetDomainError(err) != nil {
				return nil, err
			}
			return nil, fmt.Errorf("node %s: %w", node.Name(), err)
		}
		cur = next
	}
	return cur, nil
}
