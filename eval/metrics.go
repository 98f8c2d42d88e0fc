package eval

import (
	"math"

	"github.com/rushteam/cinekit/feature"
)

// 离线评估指标。所有函数都是纯函数：输入推荐列表与相关集合，输出 [0,1]
// 或自信息量纲的分数，不依赖引擎状态，可单独用于任意排序结果。

// PrecisionAtK 返回前 K 个推荐中相关条目的占比（分母固定为 K）。
// K <= 0 或列表为空返回 0；列表不足 K 个按实际长度截取，分母仍为 K。
func PrecisionAtK(recommended []string, relevant map[string]bool, k int) float64 {
	if k <= 0 || len(recommended) == 0 {
		return 0
	}
	hits := hitsAtK(recommended, relevant, k)
	return float64(hits) / float64(k)
}

// RecallAtK 返回前 K 个推荐覆盖的相关条目占全部相关条目的比例。
// 相关集合为空返回 0。
func RecallAtK(recommended []string, relevant map[string]bool, k int) float64 {
	if len(relevant) == 0 {
		return 0
	}
	hits := hitsAtK(recommended, relevant, k)
	return float64(hits) / float64(len(relevant))
}

// NDCGAtK 返回归一化折损累计增益，二值相关性，位置折损 log2(pos+1)。
// 理想排序为所有相关条目排在最前（最多 min(K, |relevant|) 个）。
// K 超出列表长度时空缺位按不相关计：理想值仍按 K 折算，短列表被折价。
func NDCGAtK(recommended []string, relevant map[string]bool, k int) float64 {
	if k <= 0 || len(recommended) == 0 || len(relevant) == 0 {
		return 0
	}

	n := k
	if n > len(recommended) {
		n = len(recommended)
	}
	dcg := 0.0
	for i := 0; i < n; i++ {
		if relevant[recommended[i]] {
			dcg += 1.0 / math.Log2(float64(i)+2)
		}
	}

	ideal := len(relevant)
	if ideal > k {
		ideal = k
	}
	idcg := 0.0
	for i := 0; i < ideal; i++ {
		idcg += 1.0 / math.Log2(float64(i)+2)
	}
	if idcg == 0 {
		return 0
	}
	return dcg / idcg
}

// MAPAtK 返回平均精度：每命中一个相关条目累加当前位置的精度，
// 再除以相关条目总数。
func MAPAtK(recommended []string, relevant map[string]bool, k int) float64 {
	if k <= 0 || len(relevant) == 0 {
		return 0
	}
	if k > len(recommended) {
		k = len(recommended)
	}

	hits := 0
	sum := 0.0
	for i := 0; i < k; i++ {
		if relevant[recommended[i]] {
			hits++
			sum += float64(hits) / float64(i+1)
		}
	}
	if hits == 0 {
		return 0
	}
	return sum / float64(len(relevant))
}

// Diversity 返回推荐列表内部的平均两两相异度（1 - 余弦相似度）。
// 向量缺失的电影跳过；有效向量不足两个返回 0。
func Diversity(recommended []string, vectors map[string]feature.Vector) float64 {
	vecs := make([]feature.Vector, 0, len(recommended))
	for _, id := range recommended {
		if v, ok := vectors[id]; ok && len(v) > 0 {
			vecs = append(vecs, v)
		}
	}
	if len(vecs) < 2 {
		return 0
	}

	sum := 0.0
	pairs := 0
	for i := 0; i < len(vecs); i++ {
		for j := i + 1; j < len(vecs); j++ {
			sum += 1 - feature.Cosine(vecs[i], vecs[j])
			pairs++
		}
	}
	return sum / float64(pairs)
}

// Novelty 返回推荐列表的平均自信息 -log2(流行度)，
// 流行度 = 评分条数 / 目录大小。越冷门的推荐自信息越高。
func Novelty(recommended []string, ratingCounts map[string]int, catalogSize int) float64 {
	if len(recommended) == 0 || catalogSize <= 0 {
		return 0
	}
	sum := 0.0
	for _, id := range recommended {
		pop := float64(ratingCounts[id]) / float64(catalogSize)
		if pop < 1e-10 {
			pop = 1e-10
		}
		sum += -math.Log2(pop)
	}
	return sum / float64(len(recommended))
}

// Coverage 返回一轮评估内所有用户的推荐条目合计覆盖目录的比例。
func Coverage(recommendedByUser map[string][]string, catalogSize int) float64 {
	if catalogSize <= 0 {
		return 0
	}
	seen := make(map[string]bool)
	for _, recs := range recommendedByUser {
		for _, id := range recs {
			seen[id] = true
		}
	}
	return float64(len(seen)) / float64(catalogSize)
}

func hitsAtK(recommended []string, relevant map[string]bool, k int) int {
	if k > len(recommended) {
		k = len(recommended)
	}
	hits := 0
	for i := 0; i < k; i++ {
		if relevant[recommended[i]] {
			hits++
		}
	}
	return hits
}
