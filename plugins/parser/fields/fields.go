package fields

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gmcrunch/pkg/contract"
)

// Options 为全文解析器的可选配置（最小必要）。
type Options struct {
	// MaxTokenBytes: 单个 token 的最大字节数。默认 1KiB。
	MaxTokenBytes int `yaml:"max_token_bytes"`
}

// Parser 读取整个输入，按任意空白（空格/制表/换行）切分为数值。
// 空白不会产生空 token；适用于多行样本文件。
type Parser struct {
	maxTok int
}

const defaultMaxToken = 1024

// New 创建全文解析器。
func New(opts *Options) *Parser {
	p := &Parser{maxTok: defaultMaxToken}
	if opts != nil && opts.MaxTokenBytes > 0 {
		p.maxTok = opts.MaxTokenBytes
	}
	return p
}

var _ contract.Parser = (*Parser)(nil)

// Parse 逐 token 解析；整个输入无 token 视为空样本。
func (p *Parser) Parse(ctx context.Context, id contract.ID, r io.Reader) (contract.Sample, error) {
	sc := bufio.NewScanner(r)
	// 缓冲需额外容纳一个分隔符，恰为 maxTok 字节的 token 才能被完整切出
	sc.Buffer(make([]byte, 0, p.maxTok+1), p.maxTok+1)
	sc.Split(bufio.ScanWords)
	var out contract.Sample
	for i := 0; sc.Scan(); i++ {
		// 大文件按 4096 token 检查一次取消
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		tok := sc.Text()
		if len(tok) > p.maxTok {
			return nil, fmt.Errorf("%w: token exceeds %d bytes", contract.ErrMalformedSample, p.maxTok)
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: token #%d %q is not a number", contract.ErrMalformedSample, i, tok)
		}
		out = append(out, v)
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, fmt.Errorf("%w: token exceeds %d bytes", contract.ErrMalformedSample, p.maxTok)
		}
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no values", contract.ErrMalformedSample)
	}
	return out, nil
}
