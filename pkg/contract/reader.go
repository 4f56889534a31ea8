package contract

import (
	"context"
	"io"
)

// Reader: 输入源抽象。
// 约束：
// 1) 严格按 ids 顺序逐个打开，同一时刻至多一个打开的句柄；
// 2) yield 返回后（含出错）由 Reader 负责关闭句柄，yield 不得自行关闭；
// 3) 打开失败立即返回，不重试、不跳过；
// 4) 不做解析，仅提供字节流；不在内部起并发。
type Reader interface {
	Iterate(ctx context.Context, dir string, ids []ID, yield func(id ID, r io.Reader) error) error
}
