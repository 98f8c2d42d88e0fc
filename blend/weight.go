package blend

import "github.com/rushteam/cinekit/core"

// WeightConfig 是自适应权重的全部参数，取自 EngineConfig。
type WeightConfig struct {
	// Default 无任何信号时的内容侧权重
	Default float64
	// MaxShift 单个信号最多能推离默认值多少
	MaxShift float64
	// LikedHalfLife / RatingHalfLife 两个信号的半饱和点
	LikedHalfLife  float64
	RatingHalfLife float64
	// Min / Max 饱和区间，任何一侧的贡献都不会被压到 0
	Min float64
	Max float64
}

// WeightConfigFrom 从引擎配置抽取权重参数。
func WeightConfigFrom(cfg core.EngineConfig) WeightConfig {
	cfg = cfg.Normalize()
	return WeightConfig{
		Default:        cfg.DefaultWeight,
		MaxShift:       cfg.MaxShift,
		LikedHalfLife:  cfg.LikedHalfLife,
		RatingHalfLife: cfg.RatingHalfLife,
		Min:            cfg.MinWeight,
		Max:            cfg.MaxWeight,
	}
}

// Weight 计算一次请求的内容侧混合权重（1 - 权重为协同侧）。
//
// 形式：default + maxShift·liked/(liked+Lh) - maxShift·ratings/(ratings+Rh)，
// 再截断到 [Min, Max]。
//
// 约束（调用方可依赖）：
//   - 对 ratingCount 单调不增：行为数据越多越信任协同侧
//   - 对 likedCount 单调不减：显式喜欢列表越长越信任内容侧
//   - 两个信号都饱和，权重最终停在 [Min, Max] 内，双方贡献永不为 0
//
// 无副作用，权重是请求级瞬态值，不持久化。
func Weight(cfg WeightConfig, ratingCount, likedCount int) float64 {
	if ratingCount < 0 {
		ratingCount = 0
	}
	if likedCount < 0 {
		likedCount = 0
	}

	liked := float64(likedCount)
	ratings := float64(ratingCount)

	w := cfg.Default
	w += cfg.MaxShift * liked / (liked + cfg.LikedHalfLife)
	w -= cfg.MaxShift * ratings / (ratings + cfg.RatingHalfLife)

	if w < cfg.Min {
		return cfg.Min
	}
	if w > cfg.Max {
		return cfg.Max
	}
	return w
}
