package file

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gmcrunch/pkg/contract"
	"gmcrunch/plugins/writer/line"
)

// Options: 最小必要选项。
type Options struct {
	// Path: 报告文件路径（必需）。
	Path string `yaml:"path"`
	// Precision/Separator 与 line writer 同义。
	Precision *int   `yaml:"precision,omitempty"`
	Separator string `yaml:"separator"`
	// PermFile/PermDir: 可选权限；为 0 表示默认 0644/0755。
	PermFile os.FileMode `yaml:"perm_file,omitempty"`
	PermDir  os.FileMode `yaml:"perm_dir,omitempty"`
}

// Writer 把结果行写入报告文件。
// 每条结果写出后以“同目录临时文件 + rename”整体替换目标文件，
// 因此报告文件总是包含截至最近一次成功的完整行，不会出现半行。
type Writer struct {
	mu    sync.Mutex
	path  string
	prec  int
	sep   string
	permF os.FileMode
	permD os.FileMode
	buf   bytes.Buffer
}

// New 创建报告文件 Writer；Path 为空时返回 contract.ErrInvalidInput。
func New(opts *Options) (*Writer, error) {
	if opts == nil || strings.TrimSpace(opts.Path) == "" {
		return nil, fmt.Errorf("%w: file writer path empty", contract.ErrInvalidInput)
	}
	w := &Writer{path: filepath.Clean(opts.Path), prec: -1, sep: ": ", permF: 0o644, permD: 0o755}
	if opts.Precision != nil {
		w.prec = *opts.Precision
	}
	if opts.Separator != "" {
		w.sep = opts.Separator
	}
	if opts.PermFile != 0 {
		w.permF = opts.PermFile
	}
	if opts.PermDir != 0 {
		w.permD = opts.PermDir
	}
	return w, nil
}

var _ contract.Writer = (*Writer)(nil)

func (w *Writer) Write(ctx context.Context, r contract.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ln := line.Format(r, w.sep, w.prec)

	w.mu.Lock()
	defer w.mu.Unlock()
	prev := w.buf.Len()
	w.buf.WriteString(ln)
	if err := w.commit(); err != nil {
		// 失败时回滚缓冲，保持与磁盘内容一致
		w.buf.Truncate(prev)
		return err
	}
	return nil
}

// commit 以原子替换方式写出当前缓冲。
func (w *Writer) commit() error {
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, w.permD); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	_ = os.Chmod(tmpPath, w.permF)

	if _, err := tmp.Write(w.buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, w.path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	// 最佳努力：同步父目录元数据
	_ = syncDir(dir)
	return nil
}
