package stress

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	cfgpkg "gmcrunch/internal/config"
	"gmcrunch/internal/pipeline"
	"gmcrunch/internal/stats"
)

// genInputs 在 dir 下生成 n 个样本文件，每个首行含 width 个正数。
func genInputs(t *testing.T, dir string, n, width int) []int64 {
	t.Helper()
	rng := rand.New(rand.NewSource(1))
	ids := make([]int64, n)
	for i := range ids {
		id := int64(1000000 + i)
		ids[i] = id
		var sb strings.Builder
		for j := 0; j < width; j++ {
			if j > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strconv.FormatFloat(0.001+rng.Float64()*1e6, 'g', -1, 64))
		}
		sb.WriteByte('\n')
		require.NoError(t, os.WriteFile(filepath.Join(dir, strconv.FormatInt(id, 10)+".txt"), []byte(sb.String()), 0o644))
	}
	return ids
}

// runPipeline 执行完整流水线，结果丢弃。
func runPipeline(cfg cfgpkg.Config) error {
	comp, set, err := cfgpkg.Assemble(cfg, io.Discard)
	if err != nil {
		return err
	}
	return pipeline.Run(context.Background(), comp, set, nil)
}

// TestStress 在不同样本宽度与聚合器下重复运行流水线并记录延迟统计。
func TestStress(t *testing.T) {
	if testing.Short() {
		t.Skip("stress skipped in -short")
	}
	dir := t.TempDir()
	const files = 200
	for _, width := range []int{10, 1000, 20000} {
		sub := filepath.Join(dir, fmt.Sprintf("w%d", width))
		require.NoError(t, os.MkdirAll(sub, 0o755))
		ids := genInputs(t, sub, files, width)
		for _, agg := range []string{"geomean", "summary"} {
			t.Run(fmt.Sprintf("width_%d_%s", width, agg), func(t *testing.T) {
				cfg := cfgpkg.Merge(cfgpkg.Defaults(), cfgpkg.Config{
					IDs:        ids,
					InputDir:   sub,
					Components: cfgpkg.Components{Aggregator: agg},
				})
				const runs = 5
				lat := make([]float64, 0, runs)
				for i := 0; i < runs; i++ {
					start := time.Now()
					require.NoError(t, runPipeline(cfg))
					lat = append(lat, float64(time.Since(start).Microseconds())/1000)
				}
				sum, err := stats.Describe(lat)
				require.NoError(t, err)
				t.Logf("文件%d 宽度%d 平均%.2fms 95%%延迟%.2fms 最大%.2fms", files, width, sum.Mean, sum.P95, sum.Max)
			})
		}
	}
}
