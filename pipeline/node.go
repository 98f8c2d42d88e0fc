package pipeline

import (
	"context"

	"github.com/rushteam/cinekit/core"
)

// Kind 用于标记 Node 类型，方便观测/治理/编排（例如按阶段打点）。
type Kind string

const (
	KindRecall      Kind = "recall"      // 召回阶段：内容/协同/热门生成候选集
	KindBlend       Kind = "blend"       // 混合阶段：归一化并按自适应权重合并双源分数
	KindFilter      Kind = "filter"      // 过滤阶段：剔除已看过/不符合表达式的候选
	KindReRank      Kind = "rerank"      // 重排阶段：截断、多样性调优
	KindPostProcess Kind = "postprocess" // 后处理阶段：补充解释或最终结果修饰
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用"输入 items -> 输出 items"的形态，方便召回生成、过滤截断、混合重排等操作。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		items []*core.Item,
	) ([]*core.Item, error)
}
