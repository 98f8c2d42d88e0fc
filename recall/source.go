package recall

import (
	"context"

	"github.com/rushteam/cinekit/core"
)

// Source 表示一个可复用的召回源（内容相似 / 隐因子 / 热门兜底）。
// 你可以把它理解为"可并发 fan-out 的策略单元"。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}
