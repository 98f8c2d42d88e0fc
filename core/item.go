package core

import "github.com/rushteam/cinekit/pkg/utils"

// Movie 是引擎的输入物料：一部电影的结构化元数据与文本。
// fit 之后由特征层独占持有，视为不可变。
type Movie struct {
	ID       string
	Title    string
	Genres   []string
	Director string
	Cast     []string // 仅取前 N（默认 5）参与特征构建
	Synopsis string
	Tags     []string
	// Popularity 是外部给定的热度值（如评分次数），只用于同分时的确定性排序
	Popularity float64
}

// Rating 是用户对电影的一次评分，(UserID, MovieID) 对唯一。
type Rating struct {
	UserID    string
	MovieID   string
	Score     float64
	Timestamp int64
}

// Item 是推荐链路中的统一承载结构：特征、分数、元信息、标签。
// Features 承载各来源的原始分与归一化分；Score 用于最终排序决策。
type Item struct {
	ID       string
	Score    float64
	Features map[string]float64
	Meta     map[string]any
	Labels   map[string]utils.Label
}

func NewItem(id string) *Item {
	return &Item{
		ID:       id,
		Score:    0,
		Features: make(map[string]float64),
		Meta:     make(map[string]any),
		Labels:   make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// GetLabel 获取 Label。
func (it *Item) GetLabel(key string) (utils.Label, bool) {
	if it.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := it.Labels[key]
	return lbl, ok
}

// Recommendation 是引擎返回给调用方的最终结果，请求级创建、不可变。
// Attribution 是解释层给出的特征归因，内容归因时各维度占比之和为 1.0。
type Recommendation struct {
	MovieID      string
	Title        string
	Score        float64 // 混合后的最终分
	Position     int     // 排名，从 1 开始
	Reason       string
	Source       string  // hybrid / content / collab / fallback
	ContentScore float64 // 归一化后的内容侧得分
	CollabScore  float64 // 归一化后的协同侧得分
	BlendWeight  float64 // 本次请求的内容侧权重
	Attribution  map[string]float64
}
