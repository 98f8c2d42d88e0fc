package feature

import (
	"fmt"
	"math"
	"sort"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/rushteam/cinekit/core"
)

// FeatureSet 是一次 fit 产出的完整特征集合：联合词表 + 每部电影的
// TF-IDF 向量 + 电影元数据索引。整体不可变，refit 时整组替换。
type FeatureSet struct {
	// Vocab token -> 维度下标
	Vocab map[string]int
	// Terms 维度下标 -> token，解释层反查词面
	Terms []string
	// Vectors 电影 ID -> 归一化特征向量
	Vectors map[string]Vector
	// Movies 电影 ID -> 元数据
	Movies map[string]*core.Movie
	// IDs 全量电影 ID，按字典序，保证遍历确定性
	IDs []string
}

// Has 判断电影是否在特征集合中。
func (s *FeatureSet) Has(movieID string) bool {
	_, ok := s.Vectors[movieID]
	return ok
}

// Size 返回特征集合的电影数。
func (s *FeatureSet) Size() int {
	return len(s.IDs)
}

// Provider 提供当前生效的特征集合，召回层只依赖该接口。
type Provider interface {
	Current() *FeatureSet
}

// Store 是特征存储：持有当前生效的 FeatureSet，fit 时在旁侧完整构建
// 新集合后原子替换引用。并发读方要么看到旧集合、要么看到新集合，
// 不会看到半成品。
type Store struct {
	cur atomic.Pointer[FeatureSet]

	boost   float64
	topCast int
	log     *zap.SugaredLogger
}

// NewStore 创建特征存储。logger 为 nil 时使用 Nop。
func NewStore(cfg core.EngineConfig, log *zap.SugaredLogger) *Store {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	cfg = cfg.Normalize()
	return &Store{
		boost:   cfg.CategoricalBoost,
		topCast: cfg.TopCast,
		log:     log,
	}
}

// Current 返回当前生效的特征集合，未 fit 时为 nil。
func (s *Store) Current() *FeatureSet {
	return s.cur.Load()
}

// Fit 从电影批量构建特征集合并原子替换旧集合。
// 任一电影既无 ID 又无标题时返回 VALIDATION 错误，旧集合保持生效。
func (s *Store) Fit(movies []*core.Movie) error {
	set, err := Build(movies, s.boost, s.topCast)
	if err != nil {
		return err
	}
	s.cur.Store(set)
	s.log.Infow("feature set fitted",
		"movies", set.Size(), "vocab", len(set.Vocab))
	return nil
}

// Build 是无状态的特征构建：联合词表 + TF-IDF + L2 归一化。
// 类别 token（题材/导演/演员）的词频乘以 boost 倍数，
// 显式元数据因此比简介文本携带更强的相似信号。
func Build(movies []*core.Movie, boost float64, topCast int) (*FeatureSet, error) {
	if boost <= 0 {
		boost = 2.0
	}
	if topCast <= 0 {
		topCast = 5
	}

	// token 计数，类别字段加权
	counts := make([]map[string]float64, 0, len(movies))
	kept := make([]*core.Movie, 0, len(movies))
	seen := make(map[string]struct{}, len(movies))

	for i, m := range movies {
		if m == nil {
			continue
		}
		if m.ID == "" && m.Title == "" {
			return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeValidation,
				fmt.Sprintf("movie at index %d has neither id nor title", i))
		}
		id := m.ID
		if id == "" {
			id = m.Title
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		tc := make(map[string]float64)
		for _, g := range m.Genres {
			if t := CategoricalToken(PrefixGenre, g); t != "" {
				tc[t] += boost
			}
		}
		if t := CategoricalToken(PrefixDirector, m.Director); t != "" {
			tc[t] += boost
		}
		cast := m.Cast
		if len(cast) > topCast {
			cast = cast[:topCast]
		}
		for _, c := range cast {
			if t := CategoricalToken(PrefixCast, c); t != "" {
				tc[t] += boost
			}
		}
		for _, t := range TokenizeText(m.Synopsis) {
			tc[t]++
		}
		for _, tag := range m.Tags {
			for _, t := range TokenizeText(tag) {
				tc[t]++
			}
		}

		cp := *m
		cp.ID = id
		kept = append(kept, &cp)
		counts = append(counts, tc)
	}

	// 联合词表，字典序定维，保证向量可重复构建
	df := make(map[string]int)
	for _, tc := range counts {
		for t := range tc {
			df[t]++
		}
	}
	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	vocab := make(map[string]int, len(terms))
	for i, t := range terms {
		vocab[t] = i
	}

	n := float64(len(kept))
	set := &FeatureSet{
		Vocab:   vocab,
		Terms:   terms,
		Vectors: make(map[string]Vector, len(kept)),
		Movies:  make(map[string]*core.Movie, len(kept)),
		IDs:     make([]string, 0, len(kept)),
	}

	for i, m := range kept {
		vec := make(Vector, len(counts[i]))
		for t, tf := range counts[i] {
			// 平滑 IDF（sklearn 形式），全量出现的词仍保留非零权重
			idf := math.Log((1+n)/(1+float64(df[t]))) + 1
			vec[vocab[t]] = tf * idf
		}
		vec.normalize()
		set.Vectors[m.ID] = vec
		set.Movies[m.ID] = m
		set.IDs = append(set.IDs, m.ID)
	}
	sort.Strings(set.IDs)

	return set, nil
}
