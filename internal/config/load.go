package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPrefix 为环境变量前缀。
const EnvPrefix = "GMCRUNCH_"

// Defaults 返回带有安全默认值的 Config 雏形。
func Defaults() Config {
	return Config{
		Preset:   DefaultPreset,
		InputDir: "entrada",
		Logging:  Logging{Level: "error"},
		Components: Components{
			Reader:     "fs",
			Parser:     "firstline",
			Aggregator: "geomean",
			Writer:     "line",
		},
	}
}

// LoadYAML 从文件路径或原始 YAML 解析 Config（严格拒绝未知字段）。
// raw 非空时优先于 path。JSON 作为 YAML 子集同样可用。
func LoadYAML(path string, raw []byte) (Config, error) {
	var cfg Config
	var r io.Reader
	switch {
	case len(raw) > 0:
		r = bytes.NewReader(raw)
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return cfg, err
		}
		defer f.Close()
		r = f
	default:
		return cfg, errors.New("no config source provided")
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		// 空文档视为空配置
		if errors.Is(err, io.EOF) {
			return Config{}, nil
		}
		return cfg, err
	}
	return cfg, nil
}

// Merge 按优先级合并（后者覆盖前者）。
// 仅标量/字符串/列表/原样 Options 为“替换”；不做深度合并。
// ID 来源按层整体替换：over 给出 preset 而无 ids 时，清空 base 的 ids。
func Merge(base, over Config) Config {
	out := base
	if len(over.IDs) > 0 {
		out.IDs = cloneIDs(over.IDs)
	}
	if s := strings.TrimSpace(over.Preset); s != "" {
		out.Preset = s
		// 同层未给出 ids 时，preset 覆盖低层继承的 ids
		if len(over.IDs) == 0 {
			out.IDs = nil
		}
	}
	if s := strings.TrimSpace(over.InputDir); s != "" {
		out.InputDir = s
	}
	if s := strings.TrimSpace(over.Logging.Level); s != "" {
		out.Logging.Level = s
	}
	if s := strings.TrimSpace(over.Logging.Dir); s != "" {
		out.Logging.Dir = s
	}

	// 组件名（空不覆盖）
	if over.Components.Reader != "" {
		out.Components.Reader = over.Components.Reader
	}
	if over.Components.Parser != "" {
		out.Components.Parser = over.Components.Parser
	}
	if over.Components.Aggregator != "" {
		out.Components.Aggregator = over.Components.Aggregator
	}
	if over.Components.Writer != "" {
		out.Components.Writer = over.Components.Writer
	}

	// Options（完整替换对应键）
	if over.Options.Reader.Kind != 0 {
		out.Options.Reader = over.Options.Reader
	}
	if over.Options.Parser.Kind != 0 {
		out.Options.Parser = over.Options.Parser
	}
	if over.Options.Aggregator.Kind != 0 {
		out.Options.Aggregator = over.Options.Aggregator
	}
	if over.Options.Writer.Kind != 0 {
		out.Options.Writer = over.Options.Writer
	}
	return out
}

// EnvOverlay 从环境变量构建一个 Config 覆盖（仅解析有限键集合）。
// 规则：前缀 GMCRUNCH_；集合之外的键忽略。数值非法时返回错误。
// 支持：IDS（逗号分隔）, PRESET, INPUT_DIR, LOG_LEVEL, LOG_DIR, COMPONENTS_*
func EnvOverlay(environ []string) (Config, error) {
	var over Config
	for _, kv := range environ {
		if !strings.HasPrefix(kv, EnvPrefix) {
			continue
		}
		eq := strings.IndexByte(kv, '=')
		if eq <= len(EnvPrefix) {
			continue
		}
		key := strings.TrimPrefix(kv[:eq], EnvPrefix)
		val := strings.TrimSpace(kv[eq+1:])
		switch key {
		case "IDS":
			ids, err := ParseIDList(val)
			if err != nil {
				return Config{}, fmt.Errorf("env %sIDS: %w", EnvPrefix, err)
			}
			over.IDs = ids
		case "PRESET":
			over.Preset = val
		case "INPUT_DIR":
			over.InputDir = val
		case "LOG_LEVEL":
			over.Logging.Level = val
		case "LOG_DIR":
			over.Logging.Dir = val
		case "COMPONENTS_READER":
			over.Components.Reader = val
		case "COMPONENTS_PARSER":
			over.Components.Parser = val
		case "COMPONENTS_AGGREGATOR":
			over.Components.Aggregator = val
		case "COMPONENTS_WRITER":
			over.Components.Writer = val
		}
	}
	return over, nil
}

// ParseIDList 解析逗号/空白分隔的整数 ID 列表；空串返回 nil。
func ParseIDList(s string) ([]int64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	if len(fields) == 0 {
		return nil, nil
	}
	out := make([]int64, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", f)
		}
		out = append(out, n)
	}
	return out, nil
}

func cloneIDs(in []int64) []int64 {
	if len(in) == 0 {
		return nil
	}
	out := make([]int64, len(in))
	copy(out, in)
	return out
}
