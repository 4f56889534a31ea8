package contract

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultPathTemplate 为默认输入路径模板。
const DefaultPathTemplate = "{dir}/{id}.txt"

// PathFor 将 id 与 dir 代入模板，返回本地路径。
// 占位符：{dir}、{id}；模板必须包含 {id}。
// 模板中的 '/' 视为分隔符，结果按本地平台规范化。
func PathFor(tmpl, dir string, id ID) (string, error) {
	if tmpl == "" {
		tmpl = DefaultPathTemplate
	}
	if dir == "" {
		dir = "."
	}
	if !strings.Contains(tmpl, "{id}") {
		return "", fmt.Errorf("%w: path template %q lacks {id}", ErrInvalidInput, tmpl)
	}
	r := strings.NewReplacer("{dir}", dir, "{id}", strconv.FormatInt(int64(id), 10))
	return filepath.Clean(filepath.FromSlash(r.Replace(tmpl))), nil
}

// ParseID 解析十进制 ID（允许前后空白）。
func ParseID(s string) (ID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: id %q: %v", ErrInvalidInput, s, err)
	}
	return ID(n), nil
}
