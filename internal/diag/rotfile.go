package diag

import (
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// 当前日志文件固定名；轮转后的备份为 gmcrunch-current-<UTC 时间戳>.log。
const currentLogName = "gmcrunch-current.log"

// defaultLogMaxMB 为单个日志文件的默认上限（MiB）。
const defaultLogMaxMB = 10

// NewRotatingFile 返回写入 dir/gmcrunch-current.log 的按大小轮转 sink。
// maxMB<=0 时使用 10MiB；目录在首次写入时创建。
func NewRotatingFile(dir string, maxMB int) *lumberjack.Logger {
	if maxMB <= 0 {
		maxMB = defaultLogMaxMB
	}
	return &lumberjack.Logger{
		Filename: filepath.Join(dir, currentLogName),
		MaxSize:  maxMB,
	}
}
