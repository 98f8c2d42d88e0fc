package core

import "fmt"

// EngineConfig 是混合推荐引擎的全量配置：命名字段、显式默认值、集中校验。
// 动态 map 形式的配置一律在边界处转换为该结构体。
type EngineConfig struct {
	// ---- 特征层（content）----

	// CategoricalBoost 类别字段（题材/导演/演员）相对简介文本的权重倍数。
	// 显式元数据是比自由文本更强的相似信号，默认 2.0。
	CategoricalBoost float64 `yaml:"categorical_boost"`

	// TopCast 每部电影参与特征构建的演员数，默认 5
	TopCast int `yaml:"top_cast"`

	// ---- 隐因子模型（collab）----

	// Factors 隐向量维度，默认 32
	Factors int `yaml:"factors"`
	// Regularization L2 正则强度，默认 0.05
	Regularization float64 `yaml:"regularization"`
	// LearningRate SGD 学习率，默认 0.01
	LearningRate float64 `yaml:"learning_rate"`
	// Epochs 训练轮数，默认 30
	Epochs int `yaml:"epochs"`
	// Solver 求解器：sgd / als，默认 sgd
	Solver string `yaml:"solver"`
	// Seed 因子初始化随机种子，固定默认值保证可重复
	Seed int64 `yaml:"seed"`

	// ---- 自适应权重 ----

	// DefaultWeight 内容侧默认权重，默认 0.5
	DefaultWeight float64 `yaml:"default_weight"`
	// MaxShift 单个信号最多能把权重推离默认值多少，默认 0.4
	MaxShift float64 `yaml:"max_shift"`
	// LikedHalfLife 喜欢列表信号的半饱和点，默认 2
	LikedHalfLife float64 `yaml:"liked_half_life"`
	// RatingHalfLife 评分历史信号的半饱和点，默认 20
	RatingHalfLife float64 `yaml:"rating_half_life"`
	// MinWeight / MaxWeight 权重饱和区间，默认 [0.1, 0.9]。
	// 不允许任何一侧被压到 0：解释层需要引用双方，冷路径也可能需要部分信号。
	MinWeight float64 `yaml:"min_weight"`
	MaxWeight float64 `yaml:"max_weight"`

	// ---- 冷启动 ----

	// MinItemRatings 物品进入协同打分路径所需的最少交互数，默认 3。
	// 不足的电影仍可被内容路径召回。
	MinItemRatings int `yaml:"min_item_ratings"`
	// PopularityPrior 贝叶斯热度分 avg*count/(count+C) 的先验 C，默认 10
	PopularityPrior float64 `yaml:"popularity_prior"`
	// HotListSize 物化到存储的热门列表长度，默认 100
	HotListSize int `yaml:"hot_list_size"`

	// ---- fit 门槛 ----

	// MinMovies / MinRatings fit 的最小数据量，不足返回 INSUFFICIENT_DATA，默认 2 / 2
	MinMovies  int `yaml:"min_movies"`
	MinRatings int `yaml:"min_ratings"`

	// ---- 请求期 ----

	// CandidateMultiplier 每个召回源取 TopN * 该倍数的候选，默认 2
	CandidateMultiplier int `yaml:"candidate_multiplier"`
	// DefaultTopN 请求未指定时的返回条数，默认 10
	DefaultTopN int `yaml:"default_top_n"`

	// ---- 评估 ----

	// RelevanceThreshold 离线评估中视为"相关"的评分阈值，默认 4.0
	RelevanceThreshold float64 `yaml:"relevance_threshold"`
}

// DefaultEngineConfig 返回带全部默认值的配置。
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		CategoricalBoost:    2.0,
		TopCast:             5,
		Factors:             32,
		Regularization:      0.05,
		LearningRate:        0.01,
		Epochs:              30,
		Solver:              "sgd",
		Seed:                42,
		DefaultWeight:       0.5,
		MaxShift:            0.4,
		LikedHalfLife:       2,
		RatingHalfLife:      20,
		MinWeight:           0.1,
		MaxWeight:           0.9,
		MinItemRatings:      3,
		PopularityPrior:     10,
		HotListSize:         100,
		MinMovies:           2,
		MinRatings:          2,
		CandidateMultiplier: 2,
		DefaultTopN:         10,
		RelevanceThreshold:  4.0,
	}
}

// Normalize 把零值字段补成默认值，返回规整后的副本。
func (c EngineConfig) Normalize() EngineConfig {
	def := DefaultEngineConfig()
	if c.CategoricalBoost <= 0 {
		c.CategoricalBoost = def.CategoricalBoost
	}
	if c.TopCast <= 0 {
		c.TopCast = def.TopCast
	}
	if c.Factors <= 0 {
		c.Factors = def.Factors
	}
	if c.Regularization <= 0 {
		c.Regularization = def.Regularization
	}
	if c.LearningRate <= 0 {
		c.LearningRate = def.LearningRate
	}
	if c.Epochs <= 0 {
		c.Epochs = def.Epochs
	}
	if c.Solver == "" {
		c.Solver = def.Solver
	}
	if c.Seed == 0 {
		c.Seed = def.Seed
	}
	if c.DefaultWeight <= 0 {
		c.DefaultWeight = def.DefaultWeight
	}
	if c.MaxShift <= 0 {
		c.MaxShift = def.MaxShift
	}
	if c.LikedHalfLife <= 0 {
		c.LikedHalfLife = def.LikedHalfLife
	}
	if c.RatingHalfLife <= 0 {
		c.RatingHalfLife = def.RatingHalfLife
	}
	if c.MinWeight <= 0 {
		c.MinWeight = def.MinWeight
	}
	if c.MaxWeight <= 0 {
		c.MaxWeight = def.MaxWeight
	}
	if c.MinItemRatings <= 0 {
		c.MinItemRatings = def.MinItemRatings
	}
	if c.PopularityPrior <= 0 {
		c.PopularityPrior = def.PopularityPrior
	}
	if c.HotListSize <= 0 {
		c.HotListSize = def.HotListSize
	}
	if c.MinMovies <= 0 {
		c.MinMovies = def.MinMovies
	}
	if c.MinRatings <= 0 {
		c.MinRatings = def.MinRatings
	}
	if c.CandidateMultiplier <= 0 {
		c.CandidateMultiplier = def.CandidateMultiplier
	}
	if c.DefaultTopN <= 0 {
		c.DefaultTopN = def.DefaultTopN
	}
	if c.RelevanceThreshold <= 0 {
		c.RelevanceThreshold = def.RelevanceThreshold
	}
	return c
}

// Validate 校验配置自洽性。
func (c EngineConfig) Validate() error {
	if c.MinWeight >= c.MaxWeight {
		return NewDomainError(ModuleEngine, ErrorCodeValidation,
			fmt.Sprintf("min_weight %.2f must be below max_weight %.2f", c.MinWeight, c.MaxWeight))
	}
	if c.MinWeight < 0 || c.MaxWeight > 1 {
		return NewDomainError(ModuleEngine, ErrorCodeValidation,
			"weight bounds must stay within [0, 1]")
	}
	if c.DefaultWeight < c.MinWeight || c.DefaultWeight > c.MaxWeight {
		return NewDomainError(ModuleEngine, ErrorCodeValidation,
			fmt.Sprintf("default_weight %.2f outside [%.2f, %.2f]", c.DefaultWeight, c.MinWeight, c.MaxWeight))
	}
	switch c.Solver {
	case "sgd", "als":
	default:
		return NewDomainError(ModuleEngine, ErrorCodeValidation,
			fmt.Sprintf("unknown solver %q (supported: sgd, als)", c.Solver))
	}
	return nil
}
