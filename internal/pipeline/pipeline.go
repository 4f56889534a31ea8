package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"gmcrunch/internal/diag"
	"gmcrunch/pkg/contract"
)

// - 严格顺序：按 IDs 顺序逐个处理，单线程、同步，无跨 ID 累积状态。
// - 首错终止：任一阶段出错立即返回，后续 ID 不处理；已写出的结果保留。
// - 资源：每个输入文件在处理下一个 ID 前关闭（由 Reader 保证）。

// Components 聚合运行所需的原子组件。
type Components struct {
	Reader     contract.Reader
	Parser     contract.Parser
	Aggregator contract.Aggregator
	Writer     contract.Writer
}

// Settings 运行期配置（最小必要）。
type Settings struct {
	// IDs 为有序 ID 列表（允许重复）。
	IDs []contract.ID
	// InputDir 为路径模板中的 {dir}。
	InputDir string
}

// Run 执行完整流水线：Reader → Parser → Aggregator → Writer。
// logger 可为 nil。
func Run(ctx context.Context, comp Components, set Settings, logger *diag.Logger) error {
	if err := sanity(comp, set); err != nil {
		return fmt.Errorf("sanity: %w", err)
	}
	term := diag.GetTerminal()

	perID := func(id contract.ID, r io.Reader) (err error) {
		ids := diag.IDString(int64(id))
		start := time.Now()
		term.FileStart(ids)
		defer func() { term.FileFinish(err == nil, time.Since(start)) }()

		ptimer := logger.StartWith("parser", "parse", ids)
		sample, err := comp.Parser.Parse(ctx, id, r)
		if err != nil {
			stageError(logger, "parser", "parse failed", ids, err)
			return fmt.Errorf("id %d: parser parse: %w", id, err)
		}
		ptimer.Finish("parse", int64(len(sample)))
		diag.IncOp("parser", "finish", "success")

		atimer := logger.StartWith("aggregator", "aggregate", ids)
		res, err := comp.Aggregator.Aggregate(ctx, id, sample)
		if err != nil {
			stageError(logger, "aggregator", "aggregate failed", ids, err)
			return fmt.Errorf("id %d: aggregator aggregate: %w", id, err)
		}
		atimer.Finish("aggregate", 1)
		diag.IncOp("aggregator", "finish", "success")

		wtimer := logger.StartWith("writer", "write", ids)
		if err := comp.Writer.Write(ctx, res); err != nil {
			stageError(logger, "writer", "write failed", ids, err)
			return fmt.Errorf("id %d: writer write: %w", id, err)
		}
		wtimer.Finish("write", 1)
		diag.IncOp("writer", "finish", "success")
		diag.ObserveDuration("pipeline", "id", time.Since(start).Milliseconds())
		return nil
	}

	failed := false
	err := comp.Reader.Iterate(ctx, set.InputDir, set.IDs, func(id contract.ID, r io.Reader) error {
		if err := perID(id, r); err != nil {
			failed = true
			return err
		}
		return nil
	})
	if err != nil && !failed {
		// 打开阶段的错误（缺失输入等）：尚未进入解析
		stageError(logger, "reader", "open failed", "", err)
		return fmt.Errorf("reader iterate: %w", err)
	}
	return err
}

// stageError 记录阶段错误并累加指标。
func stageError(logger *diag.Logger, comp, msg, id string, err error) {
	code := diag.Classify(err)
	logger.ErrorWithKV(comp, string(code), msg, nil, id, map[string]string{"err": err.Error()})
	diag.IncOp(comp, "error", "error")
	if code != diag.CodeUnknown {
		diag.IncError(comp, string(code))
	}
}

func sanity(comp Components, set Settings) error {
	if comp.Reader == nil || comp.Parser == nil || comp.Aggregator == nil || comp.Writer == nil {
		return errors.New("nil component")
	}
	if len(set.IDs) == 0 {
		return fmt.Errorf("%w: no ids", contract.ErrInvalidInput)
	}
	return nil
}
