package summary

import (
	"context"

	"gmcrunch/internal/stats"
	"gmcrunch/pkg/contract"
)

// Options 为摘要聚合器的可选配置。
type Options struct {
	// Fields: 输出的附加统计量及顺序；为空时输出全部。
	// 可选：n, mean, stddev, median, p95, min, max。
	Fields []string `yaml:"fields"`
}

// 全部附加统计量（默认顺序）。
var allFields = []string{"n", "mean", "stddev", "median", "p95", "min", "max"}

// Aggregator 计算几何平均并附带描述统计。
type Aggregator struct {
	fields []string
}

// New 创建摘要聚合器；未知字段名返回 contract.ErrInvalidInput。
func New(opts *Options) (*Aggregator, error) {
	fields := allFields
	if opts != nil && len(opts.Fields) > 0 {
		for _, f := range opts.Fields {
			if !known(f) {
				return nil, &UnknownFieldError{Name: f}
			}
		}
		fields = append([]string(nil), opts.Fields...)
	}
	return &Aggregator{fields: fields}, nil
}

var _ contract.Aggregator = (*Aggregator)(nil)

func (a *Aggregator) Aggregate(ctx context.Context, id contract.ID, s contract.Sample) (contract.Result, error) {
	if err := ctx.Err(); err != nil {
		return contract.Result{}, err
	}
	sum, err := stats.Describe(s)
	if err != nil {
		return contract.Result{}, err
	}
	extra := make([]contract.Stat, 0, len(a.fields))
	for _, f := range a.fields {
		extra = append(extra, contract.Stat{Name: f, Value: pick(sum, f)})
	}
	return contract.Result{ID: id, Value: sum.GeoMean, Extra: extra}, nil
}

func pick(s stats.Summary, name string) float64 {
	switch name {
	case "n":
		return float64(s.N)
	case "mean":
		return s.Mean
	case "stddev":
		return s.StdDev
	case "median":
		return s.Median
	case "p95":
		return s.P95
	case "min":
		return s.Min
	case "max":
		return s.Max
	}
	return 0
}

func known(name string) bool {
	for _, f := range allFields {
		if f == name {
			return true
		}
	}
	return false
}

// UnknownFieldError 表示配置了不支持的统计量名称。
type UnknownFieldError struct{ Name string }

func (e *UnknownFieldError) Error() string { return "summary: unknown field " + e.Name }

// Unwrap 归入 contract.ErrInvalidInput。
func (e *UnknownFieldError) Unwrap() error { return contract.ErrInvalidInput }
