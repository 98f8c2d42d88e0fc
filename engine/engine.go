package engine

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/explain"
	"github.com/rushteam/cinekit/feature"
	"github.com/rushteam/cinekit/model"
	"github.com/rushteam/cinekit/recall"
)

// HotListKey 是热门电影有序集合在 KeyValueStore 中的 key，
// fit 时物化，多实例部署可共享同一份兜底列表。
const HotListKey = "cinekit:hot_movies"

// fittedState 是一次 Fit 产出的全部运行态：特征集合、隐因子模型、
// 评分统计与热门列表。整体不可变，refit 在旁侧构建后原子替换。
type fittedState struct {
	features *feature.FeatureSet
	matrix   *model.Matrix
	model    *model.LatentFactorModel
	stats    map[string]explain.ItemStats
	popular  []recall.PopEntry
	explain  *explain.Generator
}

// Engine 是混合推荐引擎：内容相似与隐因子协同两路召回，
// 自适应加权混合，冷启动时落到热门兜底。
//
// 并发约定：Fit 与 Recommend 可并发调用。Recommend 在入口加载一次
// 运行态引用，整个请求期间只看这一代数据。
type Engine struct {
	cfg       core.EngineConfig
	log       *zap.SugaredLogger
	solver    model.Solver
	store     core.KeyValueStore
	enrichers []core.Enricher

	state atomic.Pointer[fittedState]
}

// Option 配置 Engine 的可选项。
type Option func(*Engine)

// WithLogger 设置日志器，默认 Nop。
func WithLogger(log *zap.SugaredLogger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithSolver 覆盖配置选出的求解器（如注入测试用的假求解器）。
func WithSolver(s model.Solver) Option {
	return func(e *Engine) {
		if s != nil {
			e.solver = s
		}
	}
}

// WithStore 设置共享存储，fit 时把热门列表物化进去。
func WithStore(store core.KeyValueStore) Option {
	return func(e *Engine) { e.store = store }
}

// WithEnricher 追加一个请求上下文补全器（如 ext/feast 的偏好适配器），
// Recommend 入口按注册顺序执行。补全失败记日志后降级，不中断请求。
func WithEnricher(en core.Enricher) Option {
	return func(e *Engine) {
		if en != nil {
			e.enrichers = append(e.enrichers, en)
		}
	}
}

// New 创建引擎。配置先 Normalize 再 Validate，非法配置直接报错。
func New(cfg core.EngineConfig, opts ...Option) (*Engine, error) {
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:    cfg,
		log:    zap.NewNop().Sugar(),
		solver: model.NewSolver(cfg),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Current 实现 feature.Provider：返回当前生效的特征集合。
func (e *Engine) Current() *feature.FeatureSet {
	st := e.state.Load()
	if st == nil {
		return nil
	}
	return st.features
}

// Fitted 报告引擎是否已完成至少一次 Fit。
func (e *Engine) Fitted() bool {
	return e.state.Load() != nil
}

// Fit 用全量电影与评分训练引擎：构建特征集合、分解评分矩阵、
// 统计热度，并在全部就绪后原子替换运行态。
//
// 失败时旧的运行态保持生效，正在进行的 Recommend 不受影响。
func (e *Engine) Fit(ctx context.Context, movies []*core.Movie, ratings []core.Rating) error {
	if len(movies) < e.cfg.MinMovies {
		return core.NewDomainError(core.ModuleEngine, core.ErrorCodeInsufficientData,
			fmt.Sprintf("need at least %d movies, got %d", e.cfg.MinMovies, len(movies)))
	}
	if len(ratings) < e.cfg.MinRatings {
		return core.NewDomainError(core.ModuleEngine, core.ErrorCodeInsufficientData,
			fmt.Sprintf("need at least %d ratings, got %d", e.cfg.MinRatings, len(ratings)))
	}
	for i := range ratings {
		if ratings[i].UserID == "" || ratings[i].MovieID == "" {
			return core.NewDomainError(core.ModuleEngine, core.ErrorCodeValidation,
				fmt.Sprintf("rating %d: user id and movie id are required", i))
		}
	}

	set, err := feature.Build(movies, e.cfg.CategoricalBoost, e.cfg.TopCast)
	if err != nil {
		return err
	}

	matrix := model.NewMatrix(model.FromRatings(ratings))
	lfm, err := e.solver.Train(ctx, matrix, e.cfg)
	if err != nil {
		return err
	}

	stats := buildStats(ratings)
	popular := buildPopular(set, stats, e.cfg.PopularityPrior)

	st := &fittedState{
		features: set,
		matrix:   matrix,
		model:    lfm,
		stats:    stats,
		popular:  popular,
		explain:  explain.NewGenerator(set, stats),
	}
	e.state.Store(st)

	e.materializeHotList(ctx, popular)

	e.log.Infow("engine fitted",
		"movies", set.Size(),
		"ratings", matrix.NumRatings,
		"users", len(matrix.Users),
		"solver", e.solver.Name(),
		"sparsity", fmt.Sprintf("%.4f", matrix.Sparsity()),
	)
	return nil
}

// buildStats 汇总每部电影的评分条数与均值。
func buildStats(ratings []core.Rating) map[string]explain.ItemStats {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range ratings {
		sums[r.MovieID] += r.Score
		counts[r.MovieID]++
	}
	stats := make(map[string]explain.ItemStats, len(counts))
	for id, n := range counts {
		stats[id] = explain.ItemStats{Count: n, Avg: sums[id] / float64(n)}
	}
	return stats
}

// buildPopular 按贝叶斯热度分给目录内的电影排序：
//
//	score = avg · count / (count + prior)
//
// 均值向全局拉回，评分稀少的电影不会只凭几条高分霸榜。
// 只收目录内（特征集合里）有评分的电影，降序、同分按 ID 升序。
func buildPopular(set *feature.FeatureSet, stats map[string]explain.ItemStats, prior float64) []recall.PopEntry {
	out := make([]recall.PopEntry, 0, len(stats))
	for _, id := range set.IDs {
		st, ok := stats[id]
		if !ok || st.Count == 0 {
			continue
		}
		score := st.Avg * float64(st.Count) / (float64(st.Count) + prior)
		out = append(out, recall.PopEntry{MovieID: id, Score: score})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Score != out[b].Score {
			return out[a].Score > out[b].Score
		}
		return out[a].MovieID < out[b].MovieID
	})
	return out
}

// materializeHotList 把热门列表的前 HotListSize 条写入共享存储。
// 写失败只记日志：热门兜底还有内存列表可用，不让 Fit 失败。
func (e *Engine) materializeHotList(ctx context.Context, popular []recall.PopEntry) {
	if e.store == nil {
		return
	}
	n := e.cfg.HotListSize
	if n > len(popular) {
		n = len(popular)
	}
	for i := 0; i < n; i++ {
		if err := e.store.ZAdd(ctx, HotListKey, popular[i].Score, popular[i].MovieID); err != nil {
			e.log.Warnw("materialize hot list failed",
				"store", e.store.Name(), "movie", popular[i].MovieID, "err", err)
			return
		}
	}
	e.log.Debugw("hot list materialized", "store", e.store.Name(), "size", n)
}
