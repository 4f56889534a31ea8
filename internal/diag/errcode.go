package diag

import (
	"context"
	"errors"
	"io/fs"

	"gmcrunch/pkg/contract"
)

// Code 是最小错误分类代码。
// 仅用于日志/指标汇总，与退出码解耦。
type Code string

const (
	CodeUnknown         Code = "unknown"
	CodeMissingInput    Code = "missing_input"
	CodeMalformedSample Code = "malformed_sample"
	CodeInvalidDomain   Code = "invalid_domain"
	CodeInvariant       Code = "invariant"
	CodeCancel          Code = "cancel"
	CodeIO              Code = "io"
)

// Classify 将错误归为最小分类。
// 说明：仅依赖哨兵错误与标准库错误类型，不做字符串匹配。
func Classify(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	// 取消/超时优先
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCancel
	}
	// 缺失输入先于通用 I/O（同时包装 *fs.PathError）
	if errors.Is(err, contract.ErrMissingInput) {
		return CodeMissingInput
	}
	if errors.Is(err, contract.ErrMalformedSample) {
		return CodeMalformedSample
	}
	if errors.Is(err, contract.ErrInvalidDomain) {
		return CodeInvalidDomain
	}
	if errors.Is(err, contract.ErrInvalidInput) {
		return CodeInvariant
	}
	var perr *fs.PathError
	if errors.As(err, &perr) {
		return CodeIO
	}
	return CodeUnknown
}
