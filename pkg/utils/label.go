package utils

// Label 是推荐链路中的一等公民：可解释、可追踪、可透传。
// 在 Cinekit 中主要用于标记候选电影的来源（content / collab / fallback）
// 与解释信息；Value 与 Source 的语义由业务自定义，这里只提供标准化合并规则。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // recall / blend / filter / explain ...
}

// MergeLabel 用于合并同名 Label，遵循"保留历史、可追踪"的默认策略。
// - Value: 以 '|' 累积
// - Source: 以 ',' 累积
//
// 例如同一部电影同时被内容召回与协同召回命中时，
// recall_source 会合并为 "content|collab"。
func MergeLabel(existing Label, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}

	merged := existing
	merged.Value = existing.Value + "|" + incoming.Value
	switch {
	case existing.Source == "":
		merged.Source = incoming.Source
	case incoming.Source == "":
		merged.Source = existing.Source
	default:
		merged.Source = existing.Source + "," + incoming.Source
	}
	return merged
}
