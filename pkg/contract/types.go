package contract

// ID: 样本标识（整数）。既是查找键，也是输入路径片段。
// 不强制唯一：重复的 ID 会被重复处理。
type ID int64

// Sample: 一个输入文件解析出的数值序列（保持文件内顺序）。
type Sample []float64

// Stat: 附加统计量（名称 + 数值），由 Aggregator 按需产出。
type Stat struct {
	Name  string
	Value float64
}

// Result: 单个 ID 的聚合结果（瞬态，产出即写出，不保留）。
// 约束：
// - Value 恒为几何平均；
// - Extra 可为空；非空时按产出顺序写出。
type Result struct {
	ID    ID
	Value float64
	Extra []Stat
}
