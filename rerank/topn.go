package rerank

import (
	"context"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/pipeline"
)

// TopNNode 是一个 Top-N 截断节点，在混合/过滤之后截取前 N 个候选。
// N <= 0 时取请求的 TopN；都未指定则不截断。
type TopNNode struct {
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.N
	if limit <= 0 && rctx != nil {
		limit = rctx.TopN
	}
	if limit <= 0 || len(items) <= limit {
		return items, nil
	}
	return items[:limit], nil
}
