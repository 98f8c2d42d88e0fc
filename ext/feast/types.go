package feast

import (
	"context"
	"time"
)

// Client 是 Feast Feature Store 的客户端接口。
//
// 参考：https://github.com/feast-dev/feast
type Client interface {
	GetOnlineFeatures(ctx context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error)
	Close() error
}

// GetOnlineFeaturesRequest 获取在线特征请求
type GetOnlineFeaturesRequest struct {
	Features   []string
	EntityRows []map[string]interface{}
	Project    string
}

// GetOnlineFeaturesResponse 获取在线特征响应
type GetOnlineFeaturesResponse struct {
	FeatureVectors []FeatureVector
	Metadata       map[string]interface{}
}

// FeatureVector 特征向量
type FeatureVector struct {
	Values    map[string]interface{}
	EntityRow map[string]interface{}
}

// PreferenceMapping 用户偏好特征的映射配置：
// 哪些 Feast 特征对应题材偏好、用哪个实体键查询。
type PreferenceMapping struct {
	// GenrePrefFeature 逗号分隔题材列表的特征名，如 "user_stats:favorite_genres"
	GenrePrefFeature string
	// RatingCountFeature 用户历史评分数的特征名，可为空
	RatingCountFeature string
	// UserEntityKey 默认 "user_id"
	UserEntityKey string
}

// ClientOption 客户端配置选项
type ClientOption func(*ClientConfig)

// ClientConfig 客户端配置
type ClientConfig struct {
	Endpoint string
	Project  string
	Timeout  time.Duration
	Auth     *AuthConfig
}

// AuthConfig 认证配置
type AuthConfig struct {
	Type  string
	Token string
}

// WithTimeout 设置超时时间
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.Timeout = timeout
	}
}

// WithAuth 设置认证信息
func WithAuth(auth *AuthConfig) ClientOption {
	return func(c *ClientConfig) {
		c.Auth = auth
	}
}
