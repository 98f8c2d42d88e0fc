package core

import "context"

// Store 是存储的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 遵循依赖倒置原则：领域层定义接口，基础设施层实现接口
//
// 在 Cinekit 中的角色：引擎对周边系统（缓存/持久化协作方）的出站契约。
// fit 时把热门列表物化进去，冷启动召回可从中读取；引擎核心本身不做持久化。
type Store interface {
	// Name 返回存储后端名称（用于日志/监控）
	Name() string

	// Get 获取 key 对应的值，不存在返回 ErrStoreNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set 设置 key 的值，可选 TTL（秒）
	Set(ctx context.Context, key string, value []byte, ttl ...int) error

	// Delete 删除 key
	Delete(ctx context.Context, key string) error

	// Close 关闭存储连接
	Close() error
}

// KeyValueStore 在 Store 之上扩展有序集合与哈希操作，
// 热门电影列表按贝叶斯热度分写入有序集合。
type KeyValueStore interface {
	Store

	// ZAdd 向有序集合添加成员
	ZAdd(ctx context.Context, key string, score float64, member string) error

	// ZRange 按分数降序返回 [start, stop] 区间的成员
	ZRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	// ZScore 返回成员的分数，不存在返回 ErrStoreNotFound
	ZScore(ctx context.Context, key string, member string) (float64, error)

	// HGet / HSet / HGetAll 哈希操作
	HGet(ctx context.Context, key, field string) ([]byte, error)
	HSet(ctx context.Context, key, field string, value []byte) error
	HGetAll(ctx context.Context, key string) (map[string][]byte, error)
}
