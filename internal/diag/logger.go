package diag

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger 为结构化日志器：每事件一行 JSON（zerolog）。
// 固定字段：level, time, corr_id, comp, stage(start|finish|error)；
// 可选字段：code, dur_ms, count, id, kv。
type Logger struct {
	zl   zerolog.Logger
	sink io.Closer
}

// NewLogger 以给定 level 初始化。dir 为空时写 stderr，否则写入 dir 下的轮转文件（10MiB）。
// 未知 level 退化为 info。
func NewLogger(corrID, level, dir string) *Logger {
	var w io.Writer = os.Stderr
	var sink io.Closer
	if strings.TrimSpace(dir) != "" {
		rf := NewRotatingFile(dir, defaultLogMaxMB)
		w, sink = rf, rf
	}
	l := newLogger(w, corrID, level)
	l.sink = sink
	return l
}

// NewLoggerTo 将日志写入任意 io.Writer（测试与嵌入场景）。
func NewLoggerTo(w io.Writer, corrID, level string) *Logger {
	return newLogger(w, corrID, level)
}

func newLogger(w io.Writer, corrID, level string) *Logger {
	zl := zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Str("corr_id", corrID).Logger()
	return &Logger{zl: zl}
}

// ParseLevel 解析日志级别；未知或空值返回 info。
func ParseLevel(s string) zerolog.Level {
	lv, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lv == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lv
}

// ValidLevel 报告 s 是否为受支持的级别名称。
func ValidLevel(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "info", "warn", "error", "disabled":
		return true
	}
	return false
}

// Close 关闭文件 sink（若有）。
func (l *Logger) Close() error {
	if l == nil || l.sink == nil {
		return nil
	}
	return l.sink.Close()
}

func withKV(e *zerolog.Event, kv map[string]string) *zerolog.Event {
	if len(kv) > 0 {
		d := zerolog.Dict()
		for k, v := range kv {
			d = d.Str(k, v)
		}
		e = e.Dict("kv", d)
	}
	return e
}

func withID(e *zerolog.Event, id string) *zerolog.Event {
	if id != "" {
		e = e.Str("id", id)
	}
	return e
}

// Start 记录 start 事件；返回计时器用于 Finish。
func (l *Logger) Start(comp, msg string) *Timer {
	return l.StartWithKV(comp, msg, "", nil)
}

// StartWith 记录带 id 的 start。
func (l *Logger) StartWith(comp, msg, id string) *Timer {
	return l.StartWithKV(comp, msg, id, nil)
}

// StartWithKV 记录带 id 与键值的 start。
func (l *Logger) StartWithKV(comp, msg, id string, kv map[string]string) *Timer {
	if l == nil {
		return nil
	}
	withKV(withID(l.zl.Info().Str("comp", comp).Str("stage", "start"), id), kv).Msg(msg)
	return &Timer{l: l, comp: comp, id: id, t0: time.Now()}
}

// Error 记录 error 事件。
func (l *Logger) Error(comp, code, msg string, durSince *time.Time) {
	l.ErrorWith(comp, code, msg, durSince, "")
}

// ErrorWith 支持 id。
func (l *Logger) ErrorWith(comp, code, msg string, durSince *time.Time, id string) {
	l.ErrorWithKV(comp, code, msg, durSince, id, nil)
}

// ErrorWithKV 支持附带键值对（例如错误详情）。
func (l *Logger) ErrorWithKV(comp, code, msg string, durSince *time.Time, id string, kv map[string]string) {
	if l == nil {
		return
	}
	e := l.zl.Error().Str("comp", comp).Str("stage", "error")
	if code != "" {
		e = e.Str("code", code)
	}
	if durSince != nil {
		e = e.Int64("dur_ms", time.Since(*durSince).Milliseconds())
	}
	withKV(withID(e, id), kv).Msg(msg)
}

// DebugKV 输出调试级别事件（仅在 level=debug 时生效）。
func (l *Logger) DebugKV(comp, msg, id string, kv map[string]string) {
	if l == nil {
		return
	}
	withKV(withID(l.zl.Debug().Str("comp", comp).Str("stage", "start"), id), kv).Msg(msg)
}

// Timer 用于 start→finish 计时。
type Timer struct {
	l    *Logger
	comp string
	id   string
	t0   time.Time
}

// Finish 记录 finish；可选 count。
func (t *Timer) Finish(msg string, count int64) {
	if t == nil || t.l == nil {
		return
	}
	e := t.l.zl.Info().Str("comp", t.comp).Str("stage", "finish").Int64("dur_ms", time.Since(t.t0).Milliseconds())
	if count != 0 {
		e = e.Int64("count", count)
	}
	withID(e, t.id).Msg(msg)
}

// IDString 将整数 ID 转为日志字段值。
func IDString(id int64) string { return strconv.FormatInt(id, 10) }
