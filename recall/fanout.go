package recall

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/pipeline"
)

// Fanout 是一个 Recall Node：并发执行多个召回源，汇总全部候选。
// 内容召回与隐因子召回各自独立出分，合并去重交给下游的混合节点，
// 因此这里默认不去重（保留同一电影的两条来源记录）。
//
// 单个召回源出错（含 UNKNOWN_USER / UNKNOWN_MOVIE 这类预期条件）只记日志，
// 不中断其他召回源，也不让整个请求失败。
type Fanout struct {
	Sources []Source

	// Timeout 每个召回源的超时时间，<=0 不限制
	Timeout time.Duration

	// Dedup 为 true 时按 ID 保留首个出现的候选（来源优先级按 Sources 顺序）
	Dedup bool

	Log *zap.SugaredLogger
}

func (n *Fanout) Name() string        { return "recall.fanout" }
func (n *Fanout) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *Fanout) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	if len(n.Sources) == 0 {
		return nil, nil
	}
	log := n.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	var (
		mu      sync.Mutex
		results = make([][]*core.Item, len(n.Sources))
		eg, _   = errgroup.WithContext(ctx)
	)

	for i, src := range n.Sources {
		idx, s := i, src
		eg.Go(func() error {
			recallCtx := ctx
			if n.Timeout > 0 {
				var cancel context.CancelFunc
				recallCtx, cancel = context.WithTimeout(ctx, n.Timeout)
				defer cancel()
			}

			items, err := s.Recall(recallCtx, rctx)
			if err != nil {
				// 结构性错误（NOT_FITTED）上抛；其余降级为空结果
				if core.IsNotFitted(err) {
					return err
				}
				log.Infow("recall source degraded to empty",
					"source", s.Name(), "err", err)
				return nil
			}

			mu.Lock()
			results[idx] = items
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// 按 Sources 顺序拼接，保证输出顺序与并发调度无关
	var all []*core.Item
	for _, items := range results {
		all = append(all, items...)
	}
	if !n.Dedup {
		return all, nil
	}

	seen := make(map[string]*core.Item, len(all))
	out := make([]*core.Item, 0, len(all))
	for _, it := range all {
		if it == nil {
			continue
		}
		if old, ok := seen[it.ID]; ok {
			for k, v := range it.Labels {
				old.PutLabel(k, v)
			}
			continue
		}
		seen[it.ID] = it
		out = append(out, it)
	}
	return out, nil
}
