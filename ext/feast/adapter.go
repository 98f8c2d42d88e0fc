package feast

import (
	"context"
	"fmt"
	"strings"

	"github.com/rushteam/cinekit/core"
)

// PreferenceAdapter 从 Feast 在线特征里取用户偏好，补全推荐请求的上下文：
// 题材偏好列表与历史评分数。请求里已显式携带的字段不覆盖。
//
// 实现 core.Enricher，通过 engine.WithEnricher 挂到 Recommend 入口。
type PreferenceAdapter struct {
	client  Client
	mapping PreferenceMapping
}

var _ core.Enricher = (*PreferenceAdapter)(nil)

// NewPreferenceAdapter 创建偏好适配器。
// client 可为 NewGrpcClient 返回的客户端。
func NewPreferenceAdapter(client Client, mapping PreferenceMapping) *PreferenceAdapter {
	if mapping.UserEntityKey == "" {
		mapping.UserEntityKey = "user_id"
	}
	return &PreferenceAdapter{client: client, mapping: mapping}
}

// Name 返回特征服务名称
func (a *PreferenceAdapter) Name() string {
	return "feast"
}

// Enrich 按 rctx.UserID 查询在线特征并写回上下文。
// 查询失败返回错误，由调用方决定是否降级为不带偏好的请求。
func (a *PreferenceAdapter) Enrich(ctx context.Context, rctx *core.RecommendContext) error {
	if rctx == nil || rctx.UserID == "" {
		return nil
	}
	features := make([]string, 0, 2)
	if a.mapping.GenrePrefFeature != "" {
		features = append(features, a.mapping.GenrePrefFeature)
	}
	if a.mapping.RatingCountFeature != "" {
		features = append(features, a.mapping.RatingCountFeature)
	}
	if len(features) == 0 {
		return nil
	}

	req := &GetOnlineFeaturesRequest{
		Features:   features,
		EntityRows: []map[string]interface{}{{a.mapping.UserEntityKey: rctx.UserID}},
	}
	resp, err := a.client.GetOnlineFeatures(ctx, req)
	if err != nil {
		return fmt.Errorf("feast get user preferences failed: %w", err)
	}
	if len(resp.FeatureVectors) == 0 {
		return nil
	}
	values := resp.FeatureVectors[0].Values

	if len(rctx.GenrePrefs) == 0 && a.mapping.GenrePrefFeature != "" {
		if raw, ok := values[a.mapping.GenrePrefFeature].(string); ok && raw != "" {
			rctx.GenrePrefs = splitGenres(raw)
		}
	}
	if rctx.RatingCount == 0 && a.mapping.RatingCountFeature != "" {
		if n, ok := values[a.mapping.RatingCountFeature].(float64); ok && n > 0 {
			rctx.RatingCount = int(n)
		}
	}
	return nil
}

// Close 关闭特征服务
func (a *PreferenceAdapter) Close() error {
	return a.client.Close()
}

// splitGenres 拆分逗号分隔的题材列表，去掉空项与首尾空白。
func splitGenres(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if g := strings.TrimSpace(p); g != "" {
			out = append(out, g)
		}
	}
	return out
}
