package stats

import (
	"math"

	"github.com/aclements/go-moremath/stats"
	"gonum.org/v1/gonum/floats"
)

// Summary 为单个样本的描述统计。
// StdDev 为总体标准差（除以 N）；Median/P95 为 stats.Sample.Quantile，
// 即 Hyndman-Fan R8 插值分位数。
type Summary struct {
	N       int
	Mean    float64
	StdDev  float64
	GeoMean float64
	Median  float64
	P95     float64
	Min     float64
	Max     float64
}

// Describe 计算 xs 的描述统计；定义域与 GeometricMean 相同。
// 不修改 xs。
func Describe(xs []float64) (Summary, error) {
	gm, err := GeometricMean(xs)
	if err != nil {
		return Summary{}, err
	}
	cp := make([]float64, len(xs))
	copy(cp, xs)
	s := stats.Sample{Xs: cp}
	s.Sort()

	n := len(cp)
	sum := Summary{
		N:       n,
		Mean:    s.Mean(),
		GeoMean: gm,
		Median:  s.Quantile(0.5),
		P95:     s.Quantile(0.95),
		Min:     floats.Min(cp),
		Max:     floats.Max(cp),
	}
	if n > 1 {
		// Variance 为样本方差（N-1），换算为总体方差
		sum.StdDev = math.Sqrt(s.Variance() * float64(n-1) / float64(n))
	}
	return sum, nil
}
