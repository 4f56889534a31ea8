package contract

import "errors"

// 最小错误分类（哨兵），各阶段以 %w 包装后上抛。
var (
	// ErrMissingInput: 输入文件不存在。包装原始 *fs.PathError，可同时 errors.As。
	ErrMissingInput = errors.New("missing input")
	// ErrMalformedSample: 样本行为空，或存在无法解析为数值的 token（含空 token）。
	ErrMalformedSample = errors.New("malformed sample")
	// ErrInvalidDomain: 数值不在几何平均定义域内（<=0、非有限值或空序列）。
	ErrInvalidDomain = errors.New("invalid domain")
	// ErrInvalidInput: 组件/配置入参非法（如模板缺少 {id}）。
	ErrInvalidInput = errors.New("invalid input")
)
