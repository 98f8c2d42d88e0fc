package filter

import (
	"context"
	"strings"

	"github.com/rushteam/cinekit/core"
)

// GenreFilter 按请求的题材偏好过滤最终排序结果：
// 与任一偏好题材不匹配的电影被移除。请求未给出偏好时不生效。
type GenreFilter struct {
	// Movies 电影元数据索引（取自当前 fit 的特征集合）
	Movies map[string]*core.Movie
}

func (f *GenreFilter) Name() string {
	return "filter.genre"
}

func (f *GenreFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil || rctx == nil || len(rctx.GenrePrefs) == 0 {
		return false, nil
	}
	if f.Movies == nil {
		return false, nil
	}
	m, ok := f.Movies[item.ID]
	if !ok {
		return true, nil
	}
	for _, g := range m.Genres {
		for _, p := range rctx.GenrePrefs {
			if strings.EqualFold(strings.TrimSpace(g), strings.TrimSpace(p)) {
				return false, nil
			}
		}
	}
	return true, nil
}
