// Package cinekit 是一个混合电影推荐引擎工具包（Cinema Kit）。
//
// 设计要点：
// - Hybrid-first: 内容相似（TF-IDF 余弦）与隐因子协同（矩阵分解）双路召回，按用户画像自适应加权混合
// - Pipeline-first: 推荐逻辑通过 Node 串联（Recall → Blend → Filter → ReRank）
// - Labels-first: labels 全链路透传与标准化 merge，支持 explain / 观测 / 策略驱动
// - 冷启动兜底: 无任何行为信号的用户获得按贝叶斯热度排序的非空推荐
package cinekit

import (
	"github.com/rushteam/cinekit/engine"
	"github.com/rushteam/cinekit/pipeline"
)

// 轻量 facade：便于用户直接 import "cinekit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

type Engine = engine.Engine

var NewEngine = engine.New

const (
	KindRecall      = pipeline.KindRecall
	KindBlend       = pipeline.KindBlend
	KindFilter      = pipeline.KindFilter
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
