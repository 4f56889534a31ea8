package contract

import "context"

// Aggregator: 由 Sample 计算 Result。纯计算，无 I/O。
// 定义域外的输入返回包装 ErrInvalidDomain 的错误。
type Aggregator interface {
	Aggregate(ctx context.Context, id ID, s Sample) (Result, error)
}
