package recall

import (
	"context"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/model"
	"github.com/rushteam/cinekit/pkg/utils"
)

// LatentSource 是隐因子召回源：用已训练的矩阵分解模型为用户预测
// 未评分电影的分数。
//
// 语义约定：
//   - 用户无评分历史时返回 UNKNOWN_USER（冷启动的主要触发点，调用方不致命处理）
//   - 已评分的电影不进入候选
//   - 交互数低于 MinItemRatings 的电影被协同路径跳过（内容路径仍可召回）
//   - 预测分可超出原始评分区间，只保证相对序
type LatentSource struct {
	Model *model.LatentFactorModel

	// TopK 返回的候选数，<=0 时不截断
	TopK int

	// MinItemRatings 物品进入协同路径所需的最少交互数
	MinItemRatings int
}

func (r *LatentSource) Name() string { return "recall.latent" }

func (r *LatentSource) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Model == nil || rctx == nil || rctx.UserID == "" {
		return nil, nil
	}

	scored, err := r.Model.ScoreUser(rctx.UserID, r.TopK, r.MinItemRatings)
	if err != nil {
		return nil, err
	}

	out := make([]*core.Item, 0, len(scored))
	for _, s := range scored {
		it := core.NewItem(s.MovieID)
		it.Score = s.Score
		it.Features["collab_raw"] = s.Score
		it.PutLabel("recall_source", utils.Label{Value: "collab", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
