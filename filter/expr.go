package filter

import (
	"context"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/pipeline"
	"github.com/rushteam/cinekit/pkg/dsl"
)

// ExprNode 按请求携带的 CEL 表达式过滤最终排序结果。
// 表达式为真的候选保留；请求无表达式时原样透传。
// 表达式编译失败视为调用方输入错误，整个请求返回 VALIDATION。
type ExprNode struct{}

func (n *ExprNode) Name() string {
	return "filter.expr"
}

func (n *ExprNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *ExprNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if rctx == nil || rctx.Filter == "" || len(items) == 0 {
		return items, nil
	}

	eval, err := dsl.NewEval(rctx.Filter)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeValidation,
			"invalid filter expression: "+err.Error())
	}

	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		keep, err := eval.Matches(it, rctx)
		if err != nil {
			// 单个候选求值失败不致命，按不匹配处理
			continue
		}
		if keep {
			out = append(out, it)
		}
	}
	return out, nil
}
