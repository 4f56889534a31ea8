package firstline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gmcrunch/pkg/contract"
)

// Options 为首行解析器的可选配置（最小必要）。
type Options struct {
	// Separator: token 分隔符，按字面精确切分（连续分隔符产生空 token）。默认单个空格。
	Separator string `yaml:"separator"`
	// MaxLineBytes: 首行最大字节数；0 表示不限制。
	MaxLineBytes int `yaml:"max_line_bytes"`
}

// Parser 只读取输入的第一行，并按分隔符切分为数值。
// 其余行忽略。
type Parser struct {
	sep     string
	maxLine int
}

// New 创建首行解析器。
func New(opts *Options) *Parser {
	p := &Parser{sep: " "}
	if opts != nil {
		if opts.Separator != "" {
			p.sep = opts.Separator
		}
		if opts.MaxLineBytes > 0 {
			p.maxLine = opts.MaxLineBytes
		}
	}
	return p
}

var _ contract.Parser = (*Parser)(nil)

// Parse 读取首行（去掉行尾 \n 与 \r），切分并逐个解析为 float64。
// 空行、空 token、非数值 token 均返回 contract.ErrMalformedSample。
func (p *Parser) Parse(ctx context.Context, id contract.ID, r io.Reader) (contract.Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	line, err := p.readFirstLine(r)
	if err != nil {
		return nil, err
	}
	if line == "" {
		return nil, fmt.Errorf("%w: empty first line", contract.ErrMalformedSample)
	}
	toks := strings.Split(line, p.sep)
	out := make(contract.Sample, 0, len(toks))
	for i, tok := range toks {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: token #%d %q is not a number", contract.ErrMalformedSample, i, tok)
		}
		out = append(out, v)
	}
	return out, nil
}

func (p *Parser) readFirstLine(r io.Reader) (string, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	var sb strings.Builder
	for {
		frag, err := br.ReadSlice('\n')
		sb.Write(frag)
		if p.maxLine > 0 && sb.Len() > p.maxLine+2 {
			return "", fmt.Errorf("%w: first line exceeds %d bytes", contract.ErrMalformedSample, p.maxLine)
		}
		if err == nil || errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return "", err
	}
	line := strings.TrimSuffix(sb.String(), "\n")
	line = strings.TrimSuffix(line, "\r")
	if p.maxLine > 0 && len(line) > p.maxLine {
		return "", fmt.Errorf("%w: first line exceeds %d bytes", contract.ErrMalformedSample, p.maxLine)
	}
	return line, nil
}
