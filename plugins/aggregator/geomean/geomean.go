package geomean

import (
	"context"

	"gmcrunch/internal/stats"
	"gmcrunch/pkg/contract"
)

// Aggregator 仅计算几何平均。
type Aggregator struct{}

// New 创建几何平均聚合器（无配置项）。
func New() *Aggregator { return &Aggregator{} }

var _ contract.Aggregator = (*Aggregator)(nil)

func (a *Aggregator) Aggregate(ctx context.Context, id contract.ID, s contract.Sample) (contract.Result, error) {
	if err := ctx.Err(); err != nil {
		return contract.Result{}, err
	}
	gm, err := stats.GeometricMean(s)
	if err != nil {
		return contract.Result{}, err
	}
	return contract.Result{ID: id, Value: gm}, nil
}
