package recall

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/feature"
	"github.com/rushteam/cinekit/pkg/utils"
)

// ContentSource 是内容相似召回源：对用户喜欢的每部电影，
// 计算其特征向量与库内其他电影的余弦相似度，按候选取均值聚合。
//
// 语义约定：
//   - 喜欢列表先去重，同一部电影被多次提交不重复计
//   - 不在特征集合中的喜欢 ID 记一条 UNKNOWN_MOVIE 日志后跳过，不让整次调用失败
//   - 喜欢的电影本身不进入候选
//   - 全部喜欢 ID 都未知时返回空列表，由上游落入冷启动兜底
type ContentSource struct {
	Provider feature.Provider

	// TopK 返回的候选数，<=0 时不截断
	TopK int

	Log *zap.SugaredLogger
}

func (r *ContentSource) Name() string { return "recall.content" }

func (r *ContentSource) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if rctx == nil || r.Provider == nil {
		return nil, nil
	}
	set := r.Provider.Current()
	if set == nil {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeNotFitted,
			"feature store not fitted: call Fit before recommending")
	}

	liked := rctx.LikedSet()
	if len(liked) == 0 {
		return nil, nil
	}

	log := r.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	// 未知的喜欢 ID：记日志、跳过，不致命
	known := make([]string, 0, len(liked))
	for id := range liked {
		if !set.Has(id) {
			unknown := core.NewDomainError(core.ModuleFeature, core.ErrorCodeUnknownMovie,
				fmt.Sprintf("liked movie %q not in fitted feature set", id))
			log.Warnw("skip unknown liked movie", "movie_id", id, "err", unknown)
			continue
		}
		known = append(known, id)
	}
	if len(known) == 0 {
		return nil, nil
	}
	sort.Strings(known) // 遍历顺序确定

	// 平均余弦相似度聚合
	sums := make(map[string]float64, set.Size())
	for _, likedID := range known {
		lv := set.Vectors[likedID]
		for _, candID := range set.IDs {
			if _, isLiked := liked[candID]; isLiked {
				continue
			}
			sums[candID] += lv.Dot(set.Vectors[candID])
		}
	}

	type scored struct {
		id    string
		score float64
	}
	out := make([]scored, 0, len(sums))
	denom := float64(len(known))
	for id, sum := range sums {
		if sum <= 0 {
			continue
		}
		out = append(out, scored{id: id, score: sum / denom})
	}

	// 降序排序；同分先比热度（高者优先）再比 ID（小者优先）
	sort.Slice(out, func(a, b int) bool {
		if out[a].score != out[b].score {
			return out[a].score > out[b].score
		}
		pa, pb := set.Movies[out[a].id].Popularity, set.Movies[out[b].id].Popularity
		if pa != pb {
			return pa > pb
		}
		return out[a].id < out[b].id
	})
	if r.TopK > 0 && len(out) > r.TopK {
		out = out[:r.TopK]
	}

	items := make([]*core.Item, 0, len(out))
	for _, s := range out {
		it := core.NewItem(s.id)
		it.Score = s.score
		it.Features["content_raw"] = s.score
		it.PutLabel("recall_source", utils.Label{Value: "content", Source: "recall"})
		items = append(items, it)
	}
	return items, nil
}
