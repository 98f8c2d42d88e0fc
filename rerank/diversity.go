package rerank

import (
	"context"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/pipeline"
)

// Diversity 是一个简单的多样性 ReRank 节点：按主题材去重，
// 每个题材只保留排序最靠前的 MaxPerGenre 部电影。
// 可选节点，默认的引擎流水线不启用，通过配置驱动挂载。
type Diversity struct {
	// Movies 电影元数据索引，取主题材（Genres[0]）
	Movies map[string]*core.Movie

	// MaxPerGenre 每个题材最多保留几部，默认 2
	MaxPerGenre int
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 || n.Movies == nil {
		return items, nil
	}
	maxPer := n.MaxPerGenre
	if maxPer <= 0 {
		maxPer = 2
	}

	counts := make(map[string]int, 16)
	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		m, ok := n.Movies[it.ID]
		if !ok || len(m.Genres) == 0 {
			out = append(out, it)
			continue
		}
		primary := m.Genres[0]
		if counts[primary] >= maxPer {
			continue
		}
		counts[primary]++
		out = append(out, it)
	}
	return out, nil
}
