package config

import "gopkg.in/yaml.v3"

// Config: 运行期只读配置（一次解析，运行期不变）。
// YAML 使用 snake_case；未知字段在解析期失败。
type Config struct {
	// Preset: 内置 ID 列表名；仅在 IDs 为空时生效。
	Preset string `yaml:"preset"`
	// IDs: 显式的有序 ID 列表（优先于 Preset）。
	IDs      []int64 `yaml:"ids"`
	InputDir string  `yaml:"input_dir"`
	Logging  Logging `yaml:"logging"`

	// 组件名选择（空则使用默认名）。
	Components Components `yaml:"components"`

	// 各组件 Options 子树，原样传入工厂。
	Options Options `yaml:"options"`
}

// Logging: 日志级别与落盘目录（空目录表示 stderr）。
type Logging struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// Components: 组件名选择（注册表中的实现名）。
type Components struct {
	Reader     string `yaml:"reader"`
	Parser     string `yaml:"parser"`
	Aggregator string `yaml:"aggregator"`
	Writer     string `yaml:"writer"`
}

// Options: 各组件的原样 YAML Options。
type Options struct {
	Reader     yaml.Node `yaml:"reader,omitempty"`
	Parser     yaml.Node `yaml:"parser,omitempty"`
	Aggregator yaml.Node `yaml:"aggregator,omitempty"`
	Writer     yaml.Node `yaml:"writer,omitempty"`
}
