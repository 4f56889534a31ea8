// Package stats 提供样本聚合所需的数值计算（纯函数，无 I/O）。
package stats

import (
	"fmt"
	"math"

	"gmcrunch/pkg/contract"
)

// GeometricMean 返回 xs 的几何平均：exp(mean(ln x_i))。
// 取对数求和而非连乘，避免大样本溢出/下溢；对数和经 Fsum 正确舍入。
// 空序列、存在 <=0 或非有限值时返回包装 contract.ErrInvalidDomain 的错误。
func GeometricMean(xs []float64) (float64, error) {
	logs, err := logValues(xs)
	if err != nil {
		return 0, err
	}
	return math.Exp(Fsum(logs) / float64(len(logs))), nil
}

// logValues 校验定义域并返回逐项自然对数。
func logValues(xs []float64) ([]float64, error) {
	if len(xs) == 0 {
		return nil, fmt.Errorf("%w: empty sample", contract.ErrInvalidDomain)
	}
	logs := make([]float64, len(xs))
	for i, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("%w: value #%d is not finite (%v)", contract.ErrInvalidDomain, i, x)
		}
		if x <= 0 {
			return nil, fmt.Errorf("%w: value #%d is not positive (%v)", contract.ErrInvalidDomain, i, x)
		}
		logs[i] = math.Log(x)
	}
	return logs, nil
}
