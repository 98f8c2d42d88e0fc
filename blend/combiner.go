package blend

import (
	"context"
	"sort"
	"strconv"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/pipeline"
	"github.com/rushteam/cinekit/pkg/utils"
)

// Combiner 是混合节点：把内容召回与协同召回的候选合并为一份最终排序。
//
// 内容侧的余弦相似度与协同侧的预测评分量纲不同，不能直接比较，
// 因此先对每个来源在本次请求内做 min-max 归一化，再按自适应权重加权：
//
//	final = w·content_norm + (1-w)·collab_norm
//
// 只出现在单个来源的电影，另一项按 0 计（出现总好过不出现，
// 不做缺失值剔除）。按 ID 去重，降序排序，同分按 ID 升序。
type Combiner struct {
	Weights WeightConfig
}

func (n *Combiner) Name() string        { return "blend.combiner" }
func (n *Combiner) Kind() pipeline.Kind { return pipeline.KindBlend }

func (n *Combiner) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return nil, nil
	}

	likedCount := 0
	ratingCount := 0
	if rctx != nil {
		likedCount = len(rctx.LikedSet())
		ratingCount = rctx.RatingCount
	}
	w := Weight(n.Weights, ratingCount, likedCount)

	// 按 ID 合并双源候选
	merged := make(map[string]*core.Item, len(items))
	order := make([]string, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		if old, ok := merged[it.ID]; ok {
			for k, v := range it.Features {
				old.Features[k] = v
			}
			for k, v := range it.Labels {
				old.PutLabel(k, v)
			}
			continue
		}
		merged[it.ID] = it
		order = append(order, it.ID)
	}

	contentNorm := normalize(merged, order, "content_raw")
	collabNorm := normalize(merged, order, "collab_raw")

	out := make([]*core.Item, 0, len(order))
	for _, id := range order {
		it := merged[id]
		c := contentNorm[id]
		cf := collabNorm[id]
		it.Features["content_norm"] = c
		it.Features["collab_norm"] = cf
		it.Features["blend_weight"] = w
		it.Score = w*c + (1-w)*cf
		it.PutLabel("blend_weight", utils.Label{
			Value:  strconv.FormatFloat(w, 'f', 4, 64),
			Source: "blend",
		})
		out = append(out, it)
	}

	sort.Slice(out, func(a, b int) bool {
		if out[a].Score != out[b].Score {
			return out[a].Score > out[b].Score
		}
		return out[a].ID < out[b].ID
	})
	return out, nil
}

// normalize 对一个来源的原始分做请求内 min-max 归一化。
// 来源只有一条候选、或所有候选同分时统一记 1.0；
// 不含该来源特征的电影不在结果 map 中（读取零值即为 0）。
func normalize(merged map[string]*core.Item, order []string, key string) map[string]float64 {
	var (
		ids  []string
		vals []float64
	)
	for _, id := range order {
		if v, ok := merged[id].Features[key]; ok {
			ids = append(ids, id)
			vals = append(vals, v)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	min, max := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	out := make(map[string]float64, len(ids))
	if max == min {
		for _, id := range ids {
			out[id] = 1.0
		}
		return out
	}
	for i, id := range ids {
		out[id] = (vals[i] - min) / (max - min)
	}
	return out
}
