package filter

import (
	"context"

	"github.com/rushteam/cinekit/core"
)

// SeenFilter 剔除用户已经看过的电影：显式喜欢列表中的，
// 以及（由引擎注入的）当前 fit 数据中用户已评分的。
type SeenFilter struct {
	// RatedIDs 用户已评分的电影集合，由调用方从评分矩阵构造
	RatedIDs map[string]struct{}
}

func (f *SeenFilter) Name() string {
	return "filter.seen"
}

func (f *SeenFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return false, nil
	}
	if rctx != nil {
		for _, id := range rctx.LikedIDs {
			if item.ID == id {
				return true, nil
			}
		}
	}
	if f.RatedIDs != nil {
		if _, ok := f.RatedIDs[item.ID]; ok {
			return true, nil
		}
	}
	return false, nil
}
