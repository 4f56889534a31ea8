package config

import "gopkg.in/yaml.v3"

// DefaultTemplateConfig 返回一个“可运行”的默认配置模板：
// - ids 留空，由 preset 决定 ID 列表（便于 --preset / GMCRUNCH_PRESET 切换）；
// - 组件名采用仓库内置实现；
// - Options 给出全部键及中性默认值，确保键存在。
func DefaultTemplateConfig() Config {
	d := Defaults()
	cfg := Config{
		Preset:     d.Preset,
		InputDir:   d.InputDir,
		Logging:    Logging{Level: "error", Dir: ""},
		Components: d.Components,
	}
	cfg.Options.Reader = mustNode(`path_template: "{dir}/{id}.txt"
buf_size: 65536`)
	cfg.Options.Parser = mustNode(`separator: " "
max_line_bytes: 0`)
	// geomean 无配置项，保持空映射
	cfg.Options.Aggregator = mustNode(`{}`)
	cfg.Options.Writer = mustNode(`precision: -1
separator: ": "`)
	return cfg
}

// mustNode 将内置 YAML 片段解析为映射节点（仅用于常量模板）。
func mustNode(src string) yaml.Node {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		panic(err)
	}
	return *doc.Content[0]
}

// Marshal 以 YAML 序列化配置（用于模板生成与诊断输出）。
func Marshal(cfg Config) ([]byte, error) { return yaml.Marshal(cfg) }
