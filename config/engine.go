package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/cinekit/core"
)

// LoadEngineConfig 从 YAML 文件加载引擎配置。
// 文件中省略的字段回退到 DefaultEngineConfig 的默认值，加载后立即校验。
func LoadEngineConfig(path string) (core.EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.EngineConfig{}, fmt.Errorf("read file: %w", err)
	}
	return ParseEngineConfig(data)
}

// ParseEngineConfig 从 YAML 字节解析引擎配置。
func ParseEngineConfig(data []byte) (core.EngineConfig, error) {
	cfg := core.DefaultEngineConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return core.EngineConfig{}, fmt.Errorf("parse yaml: %w", err)
	}
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return core.EngineConfig{}, err
	}
	return cfg, nil
}
