package diag

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// Terminal: 终端进度提示（非日志，非结果）。
// - 输出到提供的 io.Writer（建议 stderr，stdout 只承载结果）。
// - TTY: 当前 ID 单行 \r 覆盖；非 TTY: 每个 ID 完成时打一行。
// - 并发安全；写失败后进入禁用态为 no-op。
type Terminal struct {
	w       io.Writer
	enabled bool
	isTTY   bool

	total    int
	done     int
	curID    string
	runStart time.Time
	lastLen  int

	mu sync.Mutex
}

// 进程级终端（可选，全局设置后供 pipeline 旁路调用）。
var (
	termMu sync.RWMutex
	term   *Terminal
)

// SetTerminal 设置全局终端指针（nil 可清除）。
func SetTerminal(t *Terminal) { termMu.Lock(); term = t; termMu.Unlock() }

// GetTerminal 返回全局终端（可能为 nil）。
func GetTerminal() *Terminal { termMu.RLock(); defer termMu.RUnlock(); return term }

// NewTerminal 构造终端提示器。enabled=false 时总是 no-op。
func NewTerminal(w io.Writer, enabled bool) *Terminal {
	if w == nil {
		w = os.Stderr
	}
	t := &Terminal{w: w, enabled: enabled}
	// CI 环境视为非 TTY
	if f, ok := w.(*os.File); ok && os.Getenv("CI") == "" {
		t.isTTY = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return t
}

// RunStart 记录计划处理的 ID 数。
func (t *Terminal) RunStart(total int) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	t.total = total
	t.done = 0
	t.runStart = time.Now()
	t.println(fmt.Sprintf("[run] ids=%d", total))
}

// FileStart 标记当前 ID（仅 TTY 显示）。
func (t *Terminal) FileStart(id string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	t.curID = id
	if t.isTTY {
		t.printInline(fmt.Sprintf("[%d/%d] %s …", t.done+1, t.total, id))
	}
}

// FileFinish 完成当前 ID。
func (t *Terminal) FileFinish(ok bool, dur time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	t.done++
	status := "done"
	if !ok {
		status = "fail"
	}
	if t.isTTY && t.lastLen > 0 {
		t.printInline("")
		_, _ = io.WriteString(t.w, "\r")
	}
	t.println(fmt.Sprintf("[%s] %s | %d/%d | %s", status, t.curID, t.done, t.total, formatDur(dur)))
}

// RunFinish 结束总览。
func (t *Terminal) RunFinish(ok bool, dur time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	tag := "ok"
	if !ok {
		tag = "fail"
	}
	t.println(fmt.Sprintf("[%s] ids %d/%d | %s", tag, t.done, t.total, formatDur(dur)))
}

func (t *Terminal) println(s string) {
	if _, err := io.WriteString(t.w, s+"\n"); err != nil {
		t.enabled = false
	}
	t.lastLen = 0
}

// printInline 以 \r 覆盖当前行；新行较短时补空格清尾。
func (t *Terminal) printInline(s string) {
	l := len([]rune(s))
	pad := ""
	if t.lastLen > l {
		pad = fmt.Sprintf("%*s", t.lastLen-l, "")
	}
	if _, err := io.WriteString(t.w, "\r"+s+pad); err != nil {
		t.enabled = false
		return
	}
	t.lastLen = l
}

func formatDur(d time.Duration) string {
	if d < time.Second {
		ms := d.Milliseconds()
		if ms < 0 {
			ms = 0
		}
		return fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%.1fs", float64(d.Milliseconds())/1000.0)
}
