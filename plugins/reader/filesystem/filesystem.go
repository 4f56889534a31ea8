package filesystem

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gmcrunch/pkg/contract"
)

// Options 为 FileSystem Reader 的可选配置（最小必要）。
type Options struct {
	// PathTemplate: 输入路径模板，占位符 {dir}、{id}。默认 "{dir}/{id}.txt"。
	PathTemplate string `yaml:"path_template"`
	// BufSize 为读缓冲区大小（字节）。默认 64KiB。
	BufSize int `yaml:"buf_size"`
}

// FileSystem 按 ID 列表逐个打开 {dir}/{id}.txt 形式的输入文件。
type FileSystem struct {
	tmpl    string
	bufSize int
}

// New 创建 FileSystem Reader；模板缺少 {id} 时返回 contract.ErrInvalidInput。
func New(opts *Options) (*FileSystem, error) {
	const defaultBuf = 64 * 1024
	r := &FileSystem{tmpl: contract.DefaultPathTemplate, bufSize: defaultBuf}
	if opts != nil {
		if opts.PathTemplate != "" {
			r.tmpl = opts.PathTemplate
		}
		if opts.BufSize > 0 {
			r.bufSize = opts.BufSize
		}
	}
	// 提前校验模板
	if _, err := contract.PathFor(r.tmpl, ".", 0); err != nil {
		return nil, err
	}
	return r, nil
}

var _ contract.Reader = (*FileSystem)(nil)

// Iterate 按 ids 顺序逐个打开文件并调用 yield；yield 返回后立即关闭文件。
// 文件不存在返回包装 contract.ErrMissingInput 的错误，后续 ID 不再处理。
func (r *FileSystem) Iterate(ctx context.Context, dir string, ids []contract.ID, yield func(id contract.ID, rd io.Reader) error) error {
	for _, id := range ids {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := r.one(dir, id, yield); err != nil {
			return err
		}
	}
	return nil
}

// one 打开单个文件；打开与关闭限定在本函数作用域内。
func (r *FileSystem) one(dir string, id contract.ID, yield func(contract.ID, io.Reader) error) (err error) {
	p, err := contract.PathFor(r.tmpl, dir, id)
	if err != nil {
		return err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %w", contract.ErrMissingInput, err)
		}
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", contract.ErrMissingInput, p)
	}
	return yield(id, bufio.NewReaderSize(f, r.bufSize))
}
