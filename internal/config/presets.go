package config

import "sort"

// 内置 ID 列表（历史上分别硬编码在两个批处理脚本中）。
var presets = map[string][]int64{
	"geometric_mean": {
		10000001, 10000003, 1000003, 2000003, 3000003, 4000001, 4000003,
	},
	"data_crunch": {
		1000003, 2000003, 3000003, 4000003,
		10000001, 10000003, 10000005, 10000011, 10000021, 10000055,
		12000123, 12000155, 13000155, 13010155, 15000121,
	},
}

// DefaultPreset 为未指定 preset 时使用的列表名。
const DefaultPreset = "geometric_mean"

// Preset 返回指定列表的副本。
func Preset(name string) ([]int64, bool) {
	ids, ok := presets[name]
	if !ok {
		return nil, false
	}
	return cloneIDs(ids), true
}

// PresetNames 返回全部列表名（字典序）。
func PresetNames() []string {
	out := make([]string, 0, len(presets))
	for k := range presets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
