package eval

import (
	"sort"

	"github.com/rushteam/cinekit/feature"
)

// KMetrics 是单个截断深度 K 上的平均指标。
type KMetrics struct {
	K         int     `json:"k"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	NDCG      float64 `json:"ndcg"`
	MAP       float64 `json:"map"`
	Diversity float64 `json:"diversity"`
	Novelty   float64 `json:"novelty"`
}

// Report 是一轮离线评估的汇总结果。
type Report struct {
	// ByK 按 K 升序排列的各深度指标
	ByK []KMetrics `json:"by_k"`
	// Coverage 全目录覆盖率，按最大 K 的推荐列表计算
	Coverage float64 `json:"coverage"`
	// Users 参与评估的用户数（至少有一条相关条目）
	Users int `json:"users"`
}

// Option 为 Evaluate 附加可选输入（内容向量、流行度统计）。
type Option func(*options)

type options struct {
	vectors      map[string]feature.Vector
	ratingCounts map[string]int
	catalogSize  int
}

// WithVectors 提供电影内容向量，启用 Diversity 指标。
func WithVectors(vectors map[string]feature.Vector) Option {
	return func(o *options) { o.vectors = vectors }
}

// WithPopularity 提供每部电影的评分条数与目录大小，启用 Novelty 与 Coverage。
func WithPopularity(ratingCounts map[string]int, catalogSize int) Option {
	return func(o *options) {
		o.ratingCounts = ratingCounts
		o.catalogSize = catalogSize
	}
}

// Evaluate 对每个用户、每个 K 计算指标并取用户平均。
// 没有相关条目的用户不参与平均（无法定义召回/精度）。
func Evaluate(
	recommendedByUser map[string][]string,
	relevantByUser map[string]map[string]bool,
	ks []int,
	opts ...Option,
) Report {
	cfg := options{}
	for _, o := range opts {
		o(&cfg)
	}

	ks = append([]int(nil), ks...)
	sort.Ints(ks)

	// 固定用户遍历顺序，保证浮点求和结果可复现
	users := make([]string, 0, len(relevantByUser))
	for u := range relevantByUser {
		if len(relevantByUser[u]) > 0 {
			users = append(users, u)
		}
	}
	sort.Strings(users)

	report := Report{Users: len(users)}
	if len(users) == 0 || len(ks) == 0 {
		return report
	}

	for _, k := range ks {
		var m KMetrics
		m.K = k
		for _, u := range users {
			recs := recommendedByUser[u]
			rel := relevantByUser[u]
			m.Precision += PrecisionAtK(recs, rel, k)
			m.Recall += RecallAtK(recs, rel, k)
			m.NDCG += NDCGAtK(recs, rel, k)
			m.MAP += MAPAtK(recs, rel, k)
			if cfg.vectors != nil {
				m.Diversity += Diversity(topK(recs, k), cfg.vectors)
			}
			if cfg.catalogSize > 0 {
				m.Novelty += Novelty(topK(recs, k), cfg.ratingCounts, cfg.catalogSize)
			}
		}
		n := float64(len(users))
		m.Precision /= n
		m.Recall /= n
		m.NDCG /= n
		m.MAP /= n
		m.Diversity /= n
		m.Novelty /= n
		report.ByK = append(report.ByK, m)
	}

	if cfg.catalogSize > 0 {
		maxK := ks[len(ks)-1]
		truncated := make(map[string][]string, len(recommendedByUser))
		for u, recs := range recommendedByUser {
			truncated[u] = topK(recs, maxK)
		}
		report.Coverage = Coverage(truncated, cfg.catalogSize)
	}
	return report
}

func topK(recs []string, k int) []string {
	if k > len(recs) {
		return recs
	}
	return recs[:k]
}
