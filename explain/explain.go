package explain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/feature"
)

// ItemStats 是一部电影的评分统计，协同侧解释与热门兜底解释使用。
type ItemStats struct {
	Count int
	Avg   float64
}

// Generator 为每条推荐生成人类可读的理由与数值化的特征归因。
//
// 归因契约：内容归因时，报告的各维度（genre/director/cast/synopsis）
// 占比之和为 1.0，UI 可直接消费；协同侧的隐因子不可直接解释，
// 只给整体性的"相似口味"表述。
type Generator struct {
	Set   *feature.FeatureSet
	Stats map[string]ItemStats
}

// NewGenerator 创建解释生成器。
func NewGenerator(set *feature.FeatureSet, stats map[string]ItemStats) *Generator {
	return &Generator{Set: set, Stats: stats}
}

// Explain 为一条推荐生成 (理由, 归因)。likedIDs 是请求给出的喜欢列表。
func (g *Generator) Explain(likedIDs []string, rec *core.Recommendation) (string, map[string]float64) {
	if rec == nil {
		return "", nil
	}
	switch {
	case rec.Source == "fallback":
		return g.explainFallback(rec), map[string]float64{"popularity": 1.0}
	case rec.ContentScore > 0:
		return g.explainContent(likedIDs, rec)
	default:
		return g.explainCollaborative(rec), map[string]float64{"collaborative": 1.0}
	}
}

// explainContent 找出贡献最大的喜欢电影与共享属性，
// 按 "Because you liked X, which shares ... with Y" 的句式表述。
func (g *Generator) explainContent(likedIDs []string, rec *core.Recommendation) (string, map[string]float64) {
	if g.Set == nil || !g.Set.Has(rec.MovieID) {
		return "Recommended for you", map[string]float64{"synopsis": 1.0}
	}
	target := g.Set.Vectors[rec.MovieID]

	// 维度贡献按字段聚合；同时记录贡献最大的喜欢电影
	fields := map[string]float64{}
	bestLiked, bestSim := "", 0.0
	sharedTokens := map[string]float64{}

	seen := map[string]struct{}{}
	for _, likedID := range likedIDs {
		if likedID == "" || likedID == rec.MovieID {
			continue
		}
		if _, dup := seen[likedID]; dup {
			continue
		}
		seen[likedID] = struct{}{}
		lv, ok := g.Set.Vectors[likedID]
		if !ok {
			continue
		}
		var sim float64
		for idx, w := range lv {
			tw, shared := target[idx]
			if !shared {
				continue
			}
			contrib := w * tw
			sim += contrib
			fields[feature.TokenField(g.Set.Terms[idx])] += contrib
			sharedTokens[g.Set.Terms[idx]] += contrib
		}
		if sim > bestSim || (sim == bestSim && (bestLiked == "" || likedID < bestLiked)) {
			bestLiked, bestSim = likedID, sim
		}
	}

	attribution := normalizeFields(fields)
	if bestLiked == "" {
		return "Recommended for you", attribution
	}

	reason := fmt.Sprintf("Because you liked %s, which shares %s with %s",
		g.title(bestLiked), g.sharedPhrase(sharedTokens), g.title(rec.MovieID))
	if rec.CollabScore > 0 {
		reason += "; users with similar taste also rated it highly"
	}
	return reason, attribution
}

// sharedPhrase 把贡献最大的共享属性组织成 "the same director (X) and genre (Y)" 式短语。
func (g *Generator) sharedPhrase(sharedTokens map[string]float64) string {
	type tok struct {
		term  string
		score float64
	}
	toks := make([]tok, 0, len(sharedTokens))
	for t, s := range sharedTokens {
		toks = append(toks, tok{term: t, score: s})
	}
	sort.Slice(toks, func(a, b int) bool {
		if toks[a].score != toks[b].score {
			return toks[a].score > toks[b].score
		}
		return toks[a].term < toks[b].term
	})

	parts := make([]string, 0, 3)
	seenField := map[string]struct{}{}
	for _, t := range toks {
		field := feature.TokenField(t.term)
		if _, dup := seenField[field]; dup {
			continue
		}
		seenField[field] = struct{}{}
		value := feature.TokenValue(t.term)
		switch field {
		case "director":
			parts = append(parts, fmt.Sprintf("the same director (%s)", titleCase(value)))
		case "genre":
			parts = append(parts, fmt.Sprintf("the %s genre", titleCase(value)))
		case "cast":
			parts = append(parts, fmt.Sprintf("cast member %s", titleCase(value)))
		default:
			parts = append(parts, "similar themes")
		}
		if len(parts) == 3 {
			break
		}
	}
	if len(parts) == 0 {
		return "similar themes"
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
}

func (g *Generator) explainCollaborative(rec *core.Recommendation) string {
	reason := "Users with similar taste also rated this highly"
	if st, ok := g.Stats[rec.MovieID]; ok && st.Count > 0 {
		reason += fmt.Sprintf(" (%.1f average from %d ratings)", st.Avg, st.Count)
	}
	return reason
}

func (g *Generator) explainFallback(rec *core.Recommendation) string {
	if g.Set != nil {
		if m, ok := g.Set.Movies[rec.MovieID]; ok && len(m.Genres) > 0 {
			if st, ok := g.Stats[rec.MovieID]; ok && st.Count > 0 {
				return fmt.Sprintf("Popular and highly-rated %s movie (%.1f average from %d ratings)",
					m.Genres[0], st.Avg, st.Count)
			}
			return fmt.Sprintf("Popular %s movie", m.Genres[0])
		}
	}
	return "Popular and highly-rated movie"
}

func (g *Generator) title(movieID string) string {
	if g.Set != nil {
		if m, ok := g.Set.Movies[movieID]; ok && m.Title != "" {
			return m.Title
		}
	}
	return movieID
}

// titleCase 把 token 词面还原为标题格式（"director x" -> "Director X"）。
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// normalizeFields 把字段贡献归一化为和为 1.0 的占比。
// 全零时归因到 synopsis，保证契约始终成立。
func normalizeFields(fields map[string]float64) map[string]float64 {
	var total float64
	for _, v := range fields {
		if v > 0 {
			total += v
		}
	}
	if total == 0 {
		return map[string]float64{"synopsis": 1.0}
	}
	out := make(map[string]float64, len(fields))
	for k, v := range fields {
		if v > 0 {
			out[k] = v / total
		}
	}
	return out
}
