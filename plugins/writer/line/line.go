package line

import (
	"bufio"
	"context"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"

	"gmcrunch/pkg/contract"
)

// Options: 最小必要选项。
type Options struct {
	// Precision: 有效数字位数；<0（默认 -1）表示最短可往返表示。
	Precision *int `yaml:"precision,omitempty"`
	// Separator: ID 与数值之间的分隔符。默认 ": "。
	Separator string `yaml:"separator"`
}

// Writer 以行格式写出结果：
//
//	<id><sep><value>[ <name>=<value>...]
//
// 每条结果写出后立即 Flush。
type Writer struct {
	mu   sync.Mutex
	bw   *bufio.Writer
	prec int
	sep  string
}

// New 创建行 Writer；w 为 nil 时返回 contract.ErrInvalidInput。
func New(w io.Writer, opts *Options) (*Writer, error) {
	if w == nil {
		return nil, contract.ErrInvalidInput
	}
	lw := &Writer{bw: bufio.NewWriter(w), prec: -1, sep: ": "}
	if opts != nil {
		if opts.Precision != nil {
			lw.prec = *opts.Precision
		}
		if opts.Separator != "" {
			lw.sep = opts.Separator
		}
	}
	return lw, nil
}

var _ contract.Writer = (*Writer)(nil)

func (w *Writer) Write(ctx context.Context, r contract.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	line := Format(r, w.sep, w.prec)

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.bw.WriteString(line); err != nil {
		return err
	}
	return w.bw.Flush()
}

// Format 返回一条结果的完整输出行（含换行符）。
func Format(r contract.Result, sep string, prec int) string {
	var sb strings.Builder
	sb.WriteString(strconv.FormatInt(int64(r.ID), 10))
	sb.WriteString(sep)
	sb.WriteString(FormatValue(r.Value, prec))
	for _, s := range r.Extra {
		sb.WriteByte(' ')
		sb.WriteString(s.Name)
		sb.WriteByte('=')
		sb.WriteString(FormatValue(s.Value, prec))
	}
	sb.WriteByte('\n')
	return sb.String()
}

// FormatValue 返回浮点数的十进制表示。
// prec<0 时为最短可往返表示：1e-4 <= |v| < 1e16 用定点（整数值补 ".0"，如 4.0），
// 其余用指数形式（如 1e+16）。prec>=0 时按有效数字位数格式化（%g 语义）。
func FormatValue(v float64, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	if prec >= 0 {
		return strconv.FormatFloat(v, 'g', prec, 64)
	}
	abs := math.Abs(v)
	if v == 0 || (abs >= 1e-4 && abs < 1e16) {
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if !strings.ContainsRune(s, '.') {
			s += ".0"
		}
		return s
	}
	return strconv.FormatFloat(v, 'e', -1, 64)
}
