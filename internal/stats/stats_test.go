package stats

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gmcrunch/pkg/contract"
)

func TestGeometricMeanKnownValues(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		want float64
	}{
		{"全为 1", []float64{1, 1, 1, 1}, 1.0},
		{"2 与 8", []float64{2, 8}, 4.0},
		{"1..5", []float64{1, 2, 3, 4, 5}, 2.605171084697352},
		{"单值", []float64{7.5}, 7.5},
		{"小数", []float64{0.5, 2}, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GeometricMean(tt.xs)
			require.NoError(t, err)
			assert.InEpsilon(t, tt.want, got, 1e-9)
		})
	}
}

// n 次方根定义与对数定义一致（1e-9 相对误差）
func TestGeometricMeanMatchesNthRoot(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for round := 0; round < 50; round++ {
		n := 1 + rng.Intn(20)
		xs := make([]float64, n)
		prod := 1.0
		for i := range xs {
			xs[i] = 0.1 + rng.Float64()*10
			prod *= xs[i]
		}
		want := math.Pow(prod, 1/float64(n))
		got, err := GeometricMean(xs)
		require.NoError(t, err)
		assert.InEpsilon(t, want, got, 1e-9, "round %d xs=%v", round, xs)
	}
}

// 顺序无关：任意置换结果相同
func TestGeometricMeanPermutationInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	xs := []float64{3, 1.5, 9, 27, 0.25, 12, 100}
	base, err := GeometricMean(xs)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		p := append([]float64(nil), xs...)
		rng.Shuffle(len(p), func(a, b int) { p[a], p[b] = p[b], p[a] })
		got, err := GeometricMean(p)
		require.NoError(t, err)
		assert.InEpsilon(t, base, got, 1e-12)
	}
}

// 大样本不溢出：直接连乘会得到 +Inf
func TestGeometricMeanNoOverflow(t *testing.T) {
	xs := make([]float64, 1000)
	for i := range xs {
		xs[i] = 1e300
	}
	got, err := GeometricMean(xs)
	require.NoError(t, err)
	assert.InEpsilon(t, 1e300, got, 1e-9)
}

func TestGeometricMeanInvalidDomain(t *testing.T) {
	cases := map[string][]float64{
		"含零":   {0, 5, 5},
		"含负数":  {5, -1, 5},
		"空序列":  {},
		"NaN":  {1, math.NaN()},
		"+Inf": {1, math.Inf(1)},
	}
	for name, xs := range cases {
		_, err := GeometricMean(xs)
		assert.ErrorIs(t, err, contract.ErrInvalidDomain, name)
	}
}

func TestDescribe(t *testing.T) {
	xs := []float64{5, 1, 4, 2, 3}
	s, err := Describe(xs)
	require.NoError(t, err)
	assert.Equal(t, 5, s.N)
	assert.InDelta(t, 3.0, s.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(2), s.StdDev, 1e-12)
	assert.InEpsilon(t, 2.605171084697352, s.GeoMean, 1e-9)
	assert.InDelta(t, 3.0, s.Median, 1e-12)
	assert.InDelta(t, 1.0, s.Min, 0)
	assert.InDelta(t, 5.0, s.Max, 0)
	assert.True(t, s.P95 > s.Median && s.P95 <= s.Max, "p95=%v", s.P95)
	// 不修改入参
	assert.Equal(t, []float64{5, 1, 4, 2, 3}, xs)
}

func TestDescribeSingleValue(t *testing.T) {
	s, err := Describe([]float64{2.5})
	require.NoError(t, err)
	assert.Equal(t, 1, s.N)
	assert.Zero(t, s.StdDev)
	assert.InDelta(t, 2.5, s.Min, 0)
	assert.InDelta(t, 2.5, s.Max, 0)
}

func TestDescribeInvalidDomain(t *testing.T) {
	_, err := Describe([]float64{1, 0})
	assert.ErrorIs(t, err, contract.ErrInvalidDomain)
}

func TestFsum(t *testing.T) {
	tenth := make([]float64, 10)
	for i := range tenth {
		tenth[i] = 0.1
	}
	tests := []struct {
		name string
		xs   []float64
		want float64
	}{
		{"空", nil, 0},
		{"十个 0.1", tenth, 1.0},
		{"大数抵消", []float64{1, 1e100, 1, -1e100}, 2.0},
		{"多级抵消", []float64{1e100, 1.0, -1e100, 1e-100, 1e50, -1.0, -1e50}, 1e-100},
		{"半舍入修正", []float64{1, 1e-16, 1e-16}, 1.0000000000000002},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fsum(tt.xs))
		})
	}
}

// 对数和正确舍入：结果与求和顺序无关（逐位相同）
func TestGeometricMeanOrderExact(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	xs := make([]float64, 200)
	for i := range xs {
		xs[i] = 1e-3 + rng.Float64()*1e6
	}
	base, err := GeometricMean(xs)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		rng.Shuffle(len(xs), func(a, b int) { xs[a], xs[b] = xs[b], xs[a] })
		got, err := GeometricMean(xs)
		require.NoError(t, err)
		assert.Equal(t, base, got)
	}
}

// 分位数为 R8 插值：n=5 时中位数为第 3 个值，p95 位于第 4、5 个值之间
func TestDescribeQuantiles(t *testing.T) {
	s, err := Describe([]float64{10, 20, 30, 40, 50})
	require.NoError(t, err)
	assert.InDelta(t, 30.0, s.Median, 1e-12)
	// R8: h = 1/3 + 0.95*(5+1/3) = 5.4 → 取最大值
	assert.InDelta(t, 50.0, s.P95, 1e-12)
}
