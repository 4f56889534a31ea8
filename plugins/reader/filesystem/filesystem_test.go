package filesystem

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gmcrunch/pkg/contract"
)

func writeInputs(t *testing.T, dir string, files map[contract.ID]string) {
	t.Helper()
	for id, body := range files {
		p := filepath.Join(dir, strconv.FormatInt(int64(id), 10)+".txt")
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
}

// TestIterateOrder 按 ids 顺序读取，与文件系统顺序无关
func TestIterateOrder(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir, map[contract.ID]string{1: "one", 2: "two", 3: "three"})
	r, err := New(nil)
	require.NoError(t, err)

	var order []contract.ID
	var bodies []string
	err = r.Iterate(context.Background(), dir, []contract.ID{3, 1, 2, 1}, func(id contract.ID, rd io.Reader) error {
		b, err := io.ReadAll(rd)
		require.NoError(t, err)
		order = append(order, id)
		bodies = append(bodies, string(b))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []contract.ID{3, 1, 2, 1}, order)
	assert.Equal(t, []string{"three", "one", "two", "one"}, bodies)
}

// TestIterateMissing 缺失文件立即终止，后续 ID 不处理
func TestIterateMissing(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir, map[contract.ID]string{1: "x", 3: "z"})
	r, _ := New(nil)

	var seen []contract.ID
	err := r.Iterate(context.Background(), dir, []contract.ID{1, 2, 3}, func(id contract.ID, rd io.Reader) error {
		seen = append(seen, id)
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, contract.ErrMissingInput)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	var perr *fs.PathError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, filepath.Join(dir, "2.txt"), perr.Path)
	assert.Equal(t, []contract.ID{1}, seen)
}

// TestIterateYieldError yield 出错时终止并原样上抛
func TestIterateYieldError(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir, map[contract.ID]string{1: "x", 2: "y"})
	r, _ := New(nil)
	boom := errors.New("boom")
	calls := 0
	err := r.Iterate(context.Background(), dir, []contract.ID{1, 2}, func(contract.ID, io.Reader) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

// TestIterateClosesFile yield 返回后文件已关闭（读取会失败）
func TestIterateClosesFile(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir, map[contract.ID]string{1: "hello"})
	r, _ := New(&Options{BufSize: 16})
	var kept io.Reader
	require.NoError(t, r.Iterate(context.Background(), dir, []contract.ID{1}, func(_ contract.ID, rd io.Reader) error {
		kept = rd
		return nil
	}))
	_, err := io.ReadAll(kept)
	assert.Error(t, err)
}

func TestIterateTemplate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "N5"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "N5", "data.dat"), []byte("ok"), 0o644))
	r, err := New(&Options{PathTemplate: "{dir}/N{id}/data.dat"})
	require.NoError(t, err)
	var got string
	require.NoError(t, r.Iterate(context.Background(), dir, []contract.ID{5}, func(_ contract.ID, rd io.Reader) error {
		b, _ := io.ReadAll(rd)
		got = string(b)
		return nil
	}))
	assert.Equal(t, "ok", got)
}

func TestNewBadTemplate(t *testing.T) {
	_, err := New(&Options{PathTemplate: "{dir}/static.txt"})
	assert.ErrorIs(t, err, contract.ErrInvalidInput)
}

// 路径指向目录视为缺失输入
func TestIterateDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "8.txt"), 0o755))
	r, _ := New(nil)
	err := r.Iterate(context.Background(), dir, []contract.ID{8}, func(contract.ID, io.Reader) error { return nil })
	assert.ErrorIs(t, err, contract.ErrMissingInput)
}

func TestIterateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, _ := New(nil)
	err := r.Iterate(ctx, t.TempDir(), []contract.ID{1}, func(contract.ID, io.Reader) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
