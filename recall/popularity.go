package recall

import (
	"context"
	"sort"
	"strings"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/pkg/utils"
)

// PopEntry 是一条热度记录：fit 时由引擎按贝叶斯热度分
// avg * count / (count + prior) 预计算并降序排好。
type PopEntry struct {
	MovieID string
	Score   float64
}

// PopularitySource 是热门兜底召回源，冷启动策略的核心：
// 新用户（无评分、无喜欢列表）落到这里，拿到按热度排序的非空列表。
//
// 读取优先级：
//   - Store 中的热门有序集合（fit 时物化，见引擎），适合多实例共享
//   - 内存 Entries 列表作为 fallback
//
// 支持按请求的题材偏好过滤。
type PopularitySource struct {
	// Entries 内存热度列表，降序
	Entries []PopEntry

	// Movies 电影元数据索引，题材过滤用
	Movies map[string]*core.Movie

	// Store 可选的共享存储；Key 是热门列表的有序集合 key
	Store core.KeyValueStore
	Key   string

	// TopK 返回的候选数，<=0 时不截断
	TopK int
}

func (r *PopularitySource) Name() string { return "recall.popularity" }

func (r *PopularitySource) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	entries := r.load(ctx)
	if len(entries) == 0 {
		return nil, nil
	}

	var prefs []string
	if rctx != nil {
		prefs = rctx.GenrePrefs
	}

	out := make([]*core.Item, 0, len(entries))
	for _, e := range entries {
		if len(prefs) > 0 && !r.matchesGenre(e.MovieID, prefs) {
			continue
		}
		it := core.NewItem(e.MovieID)
		it.Score = e.Score
		it.Features["popularity"] = e.Score
		it.PutLabel("recall_source", utils.Label{Value: "fallback", Source: "recall"})
		out = append(out, it)
		if r.TopK > 0 && len(out) >= r.TopK {
			break
		}
	}
	return out, nil
}

// load 优先读 Store 的有序集合，失败或为空时退回内存列表。
func (r *PopularitySource) load(ctx context.Context) []PopEntry {
	if r.Store != nil && r.Key != "" {
		stop := int64(len(r.Entries))
		if r.TopK > 0 {
			stop = int64(r.TopK) * 4 // 题材过滤可能裁掉一批，多取一些
		}
		if stop <= 0 {
			stop = 99
		}
		members, err := r.Store.ZRange(ctx, r.Key, 0, stop)
		if err == nil && len(members) > 0 {
			scores := make(map[string]float64, len(r.Entries))
			for _, e := range r.Entries {
				scores[e.MovieID] = e.Score
			}
			entries := make([]PopEntry, 0, len(members))
			for _, id := range members {
				score, ok := scores[id]
				if !ok {
					if s, err := r.Store.ZScore(ctx, r.Key, id); err == nil {
						score = s
					}
				}
				entries = append(entries, PopEntry{MovieID: id, Score: score})
			}
			// ZRange 已按分数降序，这里再按 (score desc, id asc) 稳定一次
			sort.SliceStable(entries, func(a, b int) bool {
				if entries[a].Score != entries[b].Score {
					return entries[a].Score > entries[b].Score
				}
				return entries[a].MovieID < entries[b].MovieID
			})
			return entries
		}
	}
	return r.Entries
}

func (r *PopularitySource) matchesGenre(movieID string, prefs []string) bool {
	if r.Movies == nil {
		return true
	}
	m, ok := r.Movies[movieID]
	if !ok {
		return false
	}
	for _, g := range m.Genres {
		for _, p := range prefs {
			if strings.EqualFold(strings.TrimSpace(g), strings.TrimSpace(p)) {
				return true
			}
		}
	}
	return false
}
