package engine

import (
	"context"
	"sort"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/eval"
)

// Evaluate 用留出集做离线评估：对留出集中的每个用户生成 max(ks) 条推荐，
// 以评分不低于 RelevanceThreshold 的留出条目为相关集合，计算各深度的
// 精度/召回/NDCG/MAP，附带多样性、新颖度与目录覆盖率。
//
// 留出集中没有相关条目的用户不参与平均。训练集中不存在的用户会落到
// 冷启动兜底，按兜底结果评估（这正是线上会发生的事）。
func (e *Engine) Evaluate(ctx context.Context, heldOut []core.Rating, ks []int) (eval.Report, error) {
	st := e.state.Load()
	if st == nil {
		return eval.Report{}, core.NewDomainError(core.ModuleEngine, core.ErrorCodeNotFitted,
			"engine not fitted: call Fit before evaluating")
	}
	if len(heldOut) == 0 {
		return eval.Report{}, core.NewDomainError(core.ModuleEngine, core.ErrorCodeValidation,
			"held-out ratings are required")
	}
	if len(ks) == 0 {
		ks = []int{5, 10}
	}

	relevantByUser := make(map[string]map[string]bool)
	for _, r := range heldOut {
		if r.Score < e.cfg.RelevanceThreshold {
			continue
		}
		if relevantByUser[r.UserID] == nil {
			relevantByUser[r.UserID] = make(map[string]bool)
		}
		relevantByUser[r.UserID][r.MovieID] = true
	}

	maxK := ks[0]
	for _, k := range ks[1:] {
		if k > maxK {
			maxK = k
		}
	}

	users := make([]string, 0, len(relevantByUser))
	for u := range relevantByUser {
		users = append(users, u)
	}
	sort.Strings(users)

	recommendedByUser := make(map[string][]string, len(users))
	for _, u := range users {
		if err := ctx.Err(); err != nil {
			return eval.Report{}, err
		}
		recs, err := e.Recommend(ctx, &core.RecommendContext{UserID: u, TopN: maxK})
		if err != nil {
			e.log.Warnw("evaluate: recommend failed, skipping user", "user", u, "err", err)
			continue
		}
		ids := make([]string, 0, len(recs))
		for _, rec := range recs {
			ids = append(ids, rec.MovieID)
		}
		recommendedByUser[u] = ids
	}

	ratingCounts := make(map[string]int, len(st.matrix.Items))
	for iIdx, id := range st.matrix.Items {
		ratingCounts[id] = len(st.matrix.Cols[iIdx])
	}

	report := eval.Evaluate(recommendedByUser, relevantByUser, ks,
		eval.WithVectors(st.features.Vectors),
		eval.WithPopularity(ratingCounts, len(st.features.IDs)),
	)
	e.log.Infow("offline evaluation finished",
		"users", report.Users, "ks", ks, "coverage", report.Coverage)
	return report, nil
}
