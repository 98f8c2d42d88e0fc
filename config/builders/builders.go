package builders

import (
	"github.com/rushteam/cinekit/blend"
	"github.com/rushteam/cinekit/config"
	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/filter"
	"github.com/rushteam/cinekit/pipeline"
	"github.com/rushteam/cinekit/pkg/conv"
	"github.com/rushteam/cinekit/rerank"
)

func init() {
	config.Register("blend.combiner", BuildCombinerNode)
	config.Register("filter.expr", BuildExprNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("rerank.diversity", BuildDiversityNode)
}

// BuildCombinerNode 构建混合节点，权重参数缺省取引擎默认值。
func BuildCombinerNode(cfg map[string]interface{}) (pipeline.Node, error) {
	def := core.DefaultEngineConfig()
	return &blend.Combiner{
		Weights: blend.WeightConfig{
			Default:        conv.ConfigGetFloat(cfg, "default_weight", def.DefaultWeight),
			MaxShift:       conv.ConfigGetFloat(cfg, "max_shift", def.MaxShift),
			LikedHalfLife:  conv.ConfigGetFloat(cfg, "liked_half_life", def.LikedHalfLife),
			RatingHalfLife: conv.ConfigGetFloat(cfg, "rating_half_life", def.RatingHalfLife),
			Min:            conv.ConfigGetFloat(cfg, "min_weight", def.MinWeight),
			Max:            conv.ConfigGetFloat(cfg, "max_weight", def.MaxWeight),
		},
	}, nil
}

// BuildExprNode 构建表达式过滤节点，表达式本身来自请求而非配置。
func BuildExprNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &filter.ExprNode{}, nil
}

func BuildTopNNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rerank.TopNNode{
		N: conv.ConfigGetInt(cfg, "n", 0),
	}, nil
}

// BuildDiversityNode 构建多样性节点。电影元数据索引持有运行态数据，
// 由引擎在装配流水线后注入；未注入时节点原样透传。
func BuildDiversityNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rerank.Diversity{
		MaxPerGenre: conv.ConfigGetInt(cfg, "max_per_genre", 2),
	}, nil
}
