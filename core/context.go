package core

import (
	"context"

	"github.com/rushteam/cinekit/pkg/utils"
)

// RecommendContext 承载一次推荐请求的全部上下文，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	// UserID 请求用户，可为空（纯内容/冷启动请求）
	UserID string

	// LikedIDs 用户显式给出的喜欢电影列表，可为空
	LikedIDs []string

	// TopN 期望返回的结果数
	TopN int

	// GenrePrefs 偏好的题材，用于冷启动兜底与最终结果过滤
	GenrePrefs []string

	// Filter 是作用于最终排序结果的 CEL 表达式，例如
	// `label.recall_source != "fallback" && item.score > 0.2`
	Filter string

	// RatingCount 是用户在当前 fit 数据中的评分条数，由引擎在请求入口填充，
	// 自适应权重与冷启动判定都以它为准
	RatingCount int

	// Labels 是请求级标签，可驱动整个 Pipeline 行为
	Labels map[string]utils.Label

	// Params 请求级扩展参数（如外部特征服务补充的题材偏好权重）
	Params map[string]any
}

// Enricher 在推荐开始前补全请求上下文，典型实现是外部特征服务适配器
// （如 ext/feast 的 PreferenceAdapter 补题材偏好与历史评分数）。
// 约定只补缺：请求里已显式携带的字段不覆盖。
type Enricher interface {
	Name() string
	Enrich(ctx context.Context, rctx *RecommendContext) error
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}

// LikedSet 返回去重后的喜欢电影集合（同一部电影被多次提交不重复计）。
func (rctx *RecommendContext) LikedSet() map[string]struct{} {
	set := make(map[string]struct{}, len(rctx.LikedIDs))
	for _, id := range rctx.LikedIDs {
		if id == "" {
			continue
		}
		set[id] = struct{}{}
	}
	return set
}
