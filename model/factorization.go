package model

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"github.com/rushteam/cinekit/core"
)

// LatentFactorModel 是低秩分解的产物：用户/物品因子矩阵 + 全局/用户/物品
// 偏置。一次 Train 产出一组，整体不可变，refit 时整组替换。
//
// 预测分 = 全局偏置 + 用户偏置 + 物品偏置 + 用户因子·物品因子。
// 预测分不保证落在原始评分区间内，调用方只应依赖相对序。
type LatentFactorModel struct {
	Matrix *Matrix

	UserFactors [][]float64
	ItemFactors [][]float64
	UserBias    []float64
	ItemBias    []float64
	GlobalBias  float64

	Rank int
}

// Predict 按稠密下标计算预测分。
func (m *LatentFactorModel) Predict(uIdx, iIdx int) float64 {
	score := m.GlobalBias + m.UserBias[uIdx] + m.ItemBias[iIdx]
	pu, qi := m.UserFactors[uIdx], m.ItemFactors[iIdx]
	for k := 0; k < m.Rank; k++ {
		score += pu[k] * qi[k]
	}
	return score
}

// Scored 是 (电影 ID, 预测分) 对。
type Scored struct {
	MovieID string
	Score   float64
}

// ScoreUser 为用户预测所有未评分电影的分数，按分数降序取 topN，
// 同分按电影 ID 升序保证确定性。
//
// minItemRatings 是物品进入协同路径的最少交互数：交互太少的电影
// 从协同候选中剔除（内容路径仍可召回它们）。
// 用户无评分历史时返回 UNKNOWN_USER，调用方以此触发冷启动兜底。
func (m *LatentFactorModel) ScoreUser(userID string, topN, minItemRatings int) ([]Scored, error) {
	uIdx, ok := m.Matrix.UserIndex[userID]
	if !ok {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeUnknownUser,
			fmt.Sprintf("user %q has no rating history", userID))
	}

	rated := make(map[int]struct{}, len(m.Matrix.Rows[uIdx]))
	for _, e := range m.Matrix.Rows[uIdx] {
		rated[e.Index] = struct{}{}
	}

	out := make([]Scored, 0, len(m.Matrix.Items))
	for iIdx, id := range m.Matrix.Items {
		if _, ok := rated[iIdx]; ok {
			continue
		}
		if minItemRatings > 0 && len(m.Matrix.Cols[iIdx]) < minItemRatings {
			continue
		}
		out = append(out, Scored{MovieID: id, Score: m.Predict(uIdx, iIdx)})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Score != out[b].Score {
			return out[a].Score > out[b].Score
		}
		return out[a].MovieID < out[b].MovieID
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out, nil
}

// Solver 是低秩分解的求解器抽象：SGD 与 ALS 都实现它，
// 两者最小化同一个带 L2 正则的平方重构误差。
type Solver interface {
	Name() string
	Train(ctx context.Context, m *Matrix, cfg core.EngineConfig) (*LatentFactorModel, error)
}

// NewSolver 按配置名选择求解器。
func NewSolver(cfg core.EngineConfig) Solver {
	if cfg.Solver == "als" {
		return &ALSSolver{}
	}
	return &SGDSolver{}
}

// initModel 初始化因子矩阵：N(0, 0.1) 随机因子 + 零偏置 + 全局均值。
// 固定种子保证训练可重复。
func initModel(m *Matrix, rank int, seed int64) *LatentFactorModel {
	rng := rand.New(rand.NewSource(seed))
	mdl := &LatentFactorModel{
		Matrix:      m,
		UserFactors: make([][]float64, len(m.Users)),
		ItemFactors: make([][]float64, len(m.Items)),
		UserBias:    make([]float64, len(m.Users)),
		ItemBias:    make([]float64, len(m.Items)),
		GlobalBias:  m.Mean,
		Rank:        rank,
	}
	for u := range mdl.UserFactors {
		row := make([]float64, rank)
		for k := range row {
			row[k] = rng.NormFloat64() * 0.1
		}
		mdl.UserFactors[u] = row
	}
	for i := range mdl.ItemFactors {
		row := make([]float64, rank)
		for k := range row {
			row[k] = rng.NormFloat64() * 0.1
		}
		mdl.ItemFactors[i] = row
	}
	return mdl
}

// SGDSolver 以随机梯度下降训练带偏置的矩阵分解。
// 每轮按固定顺序遍历全部评分；轮间检查 ctx，取消时丢弃在建模型。
type SGDSolver struct{}

func (s *SGDSolver) Name() string { return "sgd" }

func (s *SGDSolver) Train(ctx context.Context, m *Matrix, cfg core.EngineConfig) (*LatentFactorModel, error) {
	cfg = cfg.Normalize()
	mdl := initModel(m, cfg.Factors, cfg.Seed)
	lr, reg := cfg.LearningRate, cfg.Regularization

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("sgd aborted at epoch %d: %w", epoch, err)
		}
		for uIdx, row := range m.Rows {
			pu := mdl.UserFactors[uIdx]
			for _, e := range row {
				iIdx := e.Index
				qi := mdl.ItemFactors[iIdx]

				pred := mdl.Predict(uIdx, iIdx)
				errv := e.Score - pred

				mdl.UserBias[uIdx] += lr * (errv - reg*mdl.UserBias[uIdx])
				mdl.ItemBias[iIdx] += lr * (errv - reg*mdl.ItemBias[iIdx])
				for k := 0; k < cfg.Factors; k++ {
					puk, qik := pu[k], qi[k]
					pu[k] += lr * (errv*qik - reg*puk)
					qi[k] += lr * (errv*puk - reg*qik)
				}
			}
		}
	}
	return mdl, nil
}

// ALSSolver 以交替最小二乘训练：固定一侧因子，另一侧逐行解
// (Q^T Q + reg·I) p = Q^T r 的 k×k 正规方程。
type ALSSolver struct{}

func (s *ALSSolver) Name() string { return "als" }

func (s *ALSSolver) Train(ctx context.Context, m *Matrix, cfg core.EngineConfig) (*LatentFactorModel, error) {
	cfg = cfg.Normalize()
	mdl := initModel(m, cfg.Factors, cfg.Seed)
	k, reg := cfg.Factors, cfg.Regularization

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("als aborted at epoch %d: %w", epoch, err)
		}

		// 固定物品侧，更新用户因子与偏置
		for uIdx, row := range m.Rows {
			if len(row) == 0 {
				continue
			}
			a := newSymMatrix(k, reg)
			b := make([]float64, k)
			for _, e := range row {
				qi := mdl.ItemFactors[e.Index]
				resid := e.Score - mdl.GlobalBias - mdl.UserBias[uIdx] - mdl.ItemBias[e.Index]
				accumulate(a, b, qi, resid)
			}
			if sol, ok := solveLinear(a, b); ok {
				mdl.UserFactors[uIdx] = sol
			}
			var biasSum float64
			for _, e := range row {
				qi := mdl.ItemFactors[e.Index]
				biasSum += e.Score - mdl.GlobalBias - mdl.ItemBias[e.Index] - dot(mdl.UserFactors[uIdx], qi)
			}
			mdl.UserBias[uIdx] = biasSum / (float64(len(row)) + reg)
		}

		// 固定用户侧，更新物品因子与偏置
		for iIdx, col := range m.Cols {
			if len(col) == 0 {
				continue
			}
			a := newSymMatrix(k, reg)
			b := make([]float64, k)
			for _, e := range col {
				pu := mdl.UserFactors[e.Index]
				resid := e.Score - mdl.GlobalBias - mdl.UserBias[e.Index] - mdl.ItemBias[iIdx]
				accumulate(a, b, pu, resid)
			}
			if sol, ok := solveLinear(a, b); ok {
				mdl.ItemFactors[iIdx] = sol
			}
			var biasSum float64
			for _, e := range col {
				pu := mdl.UserFactors[e.Index]
				biasSum += e.Score - mdl.GlobalBias - mdl.UserBias[e.Index] - dot(pu, mdl.ItemFactors[iIdx])
			}
			mdl.ItemBias[iIdx] = biasSum / (float64(len(col)) + reg)
		}
	}
	return mdl, nil
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// newSymMatrix 构造 reg·I 的 k×k 矩阵。
func newSymMatrix(k int, reg float64) [][]float64 {
	a := make([][]float64, k)
	for i := range a {
		a[i] = make([]float64, k)
		a[i][i] = reg
	}
	return a
}

// accumulate 累加 v·v^T 到 a、resid·v 到 b。
func accumulate(a [][]float64, b, v []float64, resid float64) {
	for i := range v {
		for j := range v {
			a[i][j] += v[i] * v[j]
		}
		b[i] += resid * v[i]
	}
}

// solveLinear 以部分主元高斯消元解 a·x = b。
// a 会被原地修改；近奇异时返回 ok=false，调用方保留旧因子。
func solveLinear(a [][]float64, b []float64) ([]float64, bool) {
	n := len(b)
	for col := 0; col < n; col++ {
		// 选主元
		pivot := col
		for r := col + 1; r < n; r++ {
			if abs(a[r][col]) > abs(a[pivot][col]) {
				pivot = r
			}
		}
		if abs(a[pivot][col]) < 1e-12 {
			return nil, false
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for r := col + 1; r < n; r++ {
			f := a[r][col] / a[col][col]
			if f == 0 {
				continue
			}
			for c := col; c < n; c++ {
				a[r][c] -= f * a[col][c]
			}
			b[r] -= f * b[col]
		}
	}
	x := make([]float64, n)
	for r := n - 1; r >= 0; r-- {
		sum := b[r]
		for c := r + 1; c < n; c++ {
			sum -= a[r][c] * x[c]
		}
		x[r] = sum / a[r][r]
	}
	return x, true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// FromRatings 把 core.Rating 批量转为 model.Rating。
func FromRatings(ratings []core.Rating) []Rating {
	out := make([]Rating, 0, len(ratings))
	for _, r := range ratings {
		out = append(out, Rating{UserID: r.UserID, MovieID: r.MovieID, Score: r.Score})
	}
	return out
}
