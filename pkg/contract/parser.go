package contract

import (
	"context"
	"io"
)

// Parser: 将单个输入流解析为 Sample。
// 解析失败返回包装 ErrMalformedSample 的错误；不做定义域校验。
type Parser interface {
	Parse(ctx context.Context, id ID, r io.Reader) (Sample, error)
}
