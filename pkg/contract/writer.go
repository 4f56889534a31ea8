package contract

import "context"

// Writer: 逐条写出 Result。
// 约束：
//  1. 调用顺序即输出顺序；
//  2. 每条结果写出后即可见（不跨条缓冲）；
//  3. 错误直接上抛（不做重试/回退）。
type Writer interface {
	Write(ctx context.Context, r Result) error
}
