package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/cinekit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
	celEnvErr  error
)

// initCELEnv 初始化 CEL 环境，定义变量
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("rctx", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Eval 是结果过滤 DSL 的解释器，使用 CEL (Common Expression Language) 实现。
// 表达式在创建时编译一次，之后对每个候选复用编译好的程序。
//
// 表达式语法（CEL 标准语法）：
//   - 基础：label.recall_source == "content" / label.recall_source != "fallback"
//   - 数值：item.score > 0.2 / item.features.collab_norm >= 0.5
//   - 逻辑：label.recall_source == "content" && item.score > 0.3
//   - 包含："content" in label.recall_source（合并来源时 value 以 '|' 累积）
//
// 典型用法是请求级的心情/题材过滤：
//
//	eval, _ := dsl.NewEval(`item.score > 0.1 && label.recall_source != "fallback"`)
//	keep, _ := eval.Matches(item, rctx)
type Eval struct {
	prg cel.Program
}

// NewEval 编译表达式。空表达式返回 nil Eval（匹配一切）。
func NewEval(expr string) (*Eval, error) {
	if expr == "" {
		return nil, nil
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %v", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Eval{prg: prg}, nil
}

// Matches 对单个候选执行表达式，返回布尔结果。
// nil Eval 视为无过滤，恒为 true。
func (e *Eval) Matches(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	if e == nil {
		return true, nil
	}
	out, _, err := e.prg.Eval(buildInput(item, rctx))
	if err != nil {
		// 访问不存在的 key 时 CEL 返回错误；
		// 用 label.key != null 的写法检查存在性
		return false, fmt.Errorf("eval error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(item *core.Item, rctx *core.RecommendContext) map[string]interface{} {
	labels := make(map[string]interface{})
	labelAccessor := make(map[string]interface{})
	if item != nil {
		for k, v := range item.Labels {
			labels[k] = map[string]interface{}{
				"value":  v.Value,
				"source": v.Source,
			}
			// label.recall_source 直接取 value，兼容简写
			labelAccessor[k] = v.Value
		}
	}

	itemMap := map[string]interface{}{}
	if item != nil {
		itemMap = map[string]interface{}{
			"id":       item.ID,
			"score":    item.Score,
			"features": item.Features,
			"meta":     item.Meta,
			"labels":   labels,
		}
	}

	rctxMap := map[string]interface{}{}
	if rctx != nil {
		rctxMap = map[string]interface{}{
			"user_id":      rctx.UserID,
			"liked_ids":    rctx.LikedIDs,
			"genre_prefs":  rctx.GenrePrefs,
			"rating_count": rctx.RatingCount,
			"params":       rctx.Params,
		}
	}

	return map[string]interface{}{
		"item":  itemMap,
		"label": labelAccessor,
		"rctx":  rctxMap,
	}
}
