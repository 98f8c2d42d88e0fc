package engine

import (
	"context"

	"github.com/rushteam/cinekit/blend"
	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/feature"
	"github.com/rushteam/cinekit/filter"
	"github.com/rushteam/cinekit/pipeline"
	"github.com/rushteam/cinekit/pkg/utils"
	"github.com/rushteam/cinekit/recall"
	"github.com/rushteam/cinekit/rerank"
)

// Recommend 为一次请求生成 Top-N 推荐。
//
// 路径选择：
//   - 用户无评分历史且无喜欢列表：直接走热门兜底，保证非空（目录有热度数据时）
//   - 其余：内容 + 隐因子双路召回 → 自适应加权混合 → 过滤 → 截断，
//     结果不足 TopN 时从热门列表补齐
//
// 同一引擎状态、同一请求重复调用返回完全一致的结果。
func (e *Engine) Recommend(ctx context.Context, rctx *core.RecommendContext) ([]*core.Recommendation, error) {
	st := e.state.Load()
	if st == nil {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeNotFitted,
			"engine not fitted: call Fit before recommending")
	}
	if rctx == nil {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeValidation,
			"recommend context is required")
	}

	topN := rctx.TopN
	if topN <= 0 {
		topN = e.cfg.DefaultTopN
		rctx.TopN = topN
	}

	// 外部特征补全（只补缺不覆盖）。失败降级为不带补全的请求
	for _, en := range e.enrichers {
		if err := en.Enrich(ctx, rctx); err != nil {
			e.log.Warnw("context enrichment failed, continuing without",
				"enricher", en.Name(), "user", rctx.UserID, "err", err)
		}
	}

	// 评分条数以当前 fit 数据为准；矩阵中不存在的用户保留请求值
	// （外部特征服务可能补充过）
	if c := st.matrix.UserRatingCount(rctx.UserID); c > 0 {
		rctx.RatingCount = c
	}

	// 冷启动：两类信号都没有，个性化路径必然空转，直接兜底
	if rctx.RatingCount == 0 && len(rctx.LikedSet()) == 0 {
		items, err := e.fallback(ctx, st, rctx, topN)
		if err != nil {
			return nil, err
		}
		return e.toRecommendations(st, rctx, items), nil
	}

	topK := topN * e.cfg.CandidateMultiplier
	rated := ratedSet(st, rctx.UserID)

	p := &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			&recall.Fanout{
				Sources: []recall.Source{
					&recall.ContentSource{Provider: pinnedFeatures{st.features}, TopK: topK, Log: e.log},
					&recall.LatentSource{Model: st.model, TopK: topK, MinItemRatings: e.cfg.MinItemRatings},
				},
				Log: e.log,
			},
			&blend.Combiner{Weights: blend.WeightConfigFrom(e.cfg)},
			&filter.FilterNode{Filters: []filter.Filter{
				&filter.SeenFilter{RatedIDs: rated},
				&filter.GenreFilter{Movies: st.features.Movies},
			}},
			&filter.ExprNode{},
			&rerank.TopNNode{N: topN},
		},
	}

	items, err := p.Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}

	items = e.backfill(ctx, st, rctx, items, rated, topN)
	return e.toRecommendations(st, rctx, items), nil
}

// Explain 为一条已生成的推荐重新生成 (理由, 归因)。
// Recommend 返回的结果已带解释，这个入口给调用方按需复算（如切换语言前的兜底）。
func (e *Engine) Explain(rctx *core.RecommendContext, rec *core.Recommendation) (string, map[string]float64, error) {
	st := e.state.Load()
	if st == nil {
		return "", nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeNotFitted,
			"engine not fitted: call Fit before explaining")
	}
	var liked []string
	if rctx != nil {
		liked = rctx.LikedIDs
	}
	reason, attribution := st.explain.Explain(liked, rec)
	return reason, attribution, nil
}

// fallback 走热门兜底召回。题材过滤后为空时放开题材限制重试，
// 保证只要目录有热度数据就返回非空列表。
func (e *Engine) fallback(ctx context.Context, st *fittedState, rctx *core.RecommendContext, topN int) ([]*core.Item, error) {
	src := &recall.PopularitySource{
		Entries: st.popular,
		Movies:  st.features.Movies,
		Store:   e.store,
		Key:     HotListKey,
		TopK:    topN,
	}
	items, err := src.Recall(ctx, rctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 && len(rctx.GenrePrefs) > 0 {
		relaxed := *rctx
		relaxed.GenrePrefs = nil
		e.log.Debugw("fallback genre filter too strict, relaxing", "user", rctx.UserID)
		items, err = src.Recall(ctx, &relaxed)
		if err != nil {
			return nil, err
		}
	}
	return items, nil
}

// backfill 在个性化结果不足 TopN 时从热门列表补齐。
// 已在结果中、已看过、题材不符的电影跳过；补进来的候选分数记 0，
// 排在个性化结果之后，不打破分数的非增序。
func (e *Engine) backfill(ctx context.Context, st *fittedState, rctx *core.RecommendContext, items []*core.Item, rated map[string]struct{}, topN int) []*core.Item {
	if len(items) >= topN || len(st.popular) == 0 {
		return items
	}

	present := make(map[string]struct{}, len(items))
	for _, it := range items {
		present[it.ID] = struct{}{}
	}
	liked := rctx.LikedSet()
	genre := &filter.GenreFilter{Movies: st.features.Movies}

	for _, p := range st.popular {
		if len(items) >= topN {
			break
		}
		if _, ok := present[p.MovieID]; ok {
			continue
		}
		if _, ok := liked[p.MovieID]; ok {
			continue
		}
		if _, ok := rated[p.MovieID]; ok {
			continue
		}
		it := core.NewItem(p.MovieID)
		it.Features["popularity"] = p.Score
		it.PutLabel("recall_source", utils.Label{Value: "fallback", Source: "recall"})
		if skip, _ := genre.ShouldFilter(ctx, rctx, it); skip {
			continue
		}
		items = append(items, it)
		present[p.MovieID] = struct{}{}
	}
	return items
}

// toRecommendations 把 Pipeline 产出的候选转成最终结果：
// 补标题、定来源、生成解释与归因。
func (e *Engine) toRecommendations(st *fittedState, rctx *core.RecommendContext, items []*core.Item) []*core.Recommendation {
	out := make([]*core.Recommendation, 0, len(items))
	for i, it := range items {
		if it == nil {
			continue
		}
		rec := &core.Recommendation{
			MovieID:      it.ID,
			Score:        it.Score,
			Position:     i + 1,
			Source:       itemSource(it),
			ContentScore: it.Features["content_norm"],
			CollabScore:  it.Features["collab_norm"],
			BlendWeight:  it.Features["blend_weight"],
		}
		if m, ok := st.features.Movies[it.ID]; ok {
			rec.Title = m.Title
		}
		rec.Reason, rec.Attribution = st.explain.Explain(rctx.LikedIDs, rec)
		out = append(out, rec)
	}
	return out
}

// itemSource 判定来源：兜底标签优先，其后看两路原始分是否都在场。
func itemSource(it *core.Item) string {
	if lbl, ok := it.GetLabel("recall_source"); ok && lbl.Value == "fallback" {
		return "fallback"
	}
	_, hasContent := it.Features["content_raw"]
	_, hasCollab := it.Features["collab_raw"]
	switch {
	case hasContent && hasCollab:
		return "hybrid"
	case hasContent:
		return "content"
	case hasCollab:
		return "collab"
	default:
		return "fallback"
	}
}

// pinnedFeatures 把请求入口加载的那一代特征集合固定为 Provider：
// 请求进行中完成的 refit 不会把内容召回切到新代，整个请求只看一代数据。
type pinnedFeatures struct {
	set *feature.FeatureSet
}

func (p pinnedFeatures) Current() *feature.FeatureSet { return p.set }

// ratedSet 返回用户在训练数据中评过分的电影集合。
func ratedSet(st *fittedState, userID string) map[string]struct{} {
	uIdx, ok := st.matrix.UserIndex[userID]
	if !ok {
		return nil
	}
	out := make(map[string]struct{}, len(st.matrix.Rows[uIdx]))
	for _, entry := range st.matrix.Rows[uIdx] {
		out[st.matrix.Items[entry.Index]] = struct{}{}
	}
	return out
}
