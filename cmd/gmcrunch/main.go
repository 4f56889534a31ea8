package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	cfgpkg "gmcrunch/internal/config"
	"gmcrunch/internal/diag"
	"gmcrunch/internal/pipeline"
)

var pipelineRun = pipeline.Run

// 退出码
const (
	exitOK      = 0
	exitRuntime = 1
	exitUsage   = 2
	exitConfig  = 3
)

const (
	defaultConfigName = "gmcrunch.yaml"
	envConfigFile     = cfgpkg.EnvPrefix + "CONFIG_FILE"
	envConfigYAML     = cfgpkg.EnvPrefix + "CONFIG_YAML"
)

// exitError 携带退出码；err 为空时不再向 stderr 打印。
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func configErr(format string, a ...any) error {
	return &exitError{code: exitConfig, err: fmt.Errorf(format, a...)}
}

type rootFlags struct {
	config     string
	preset     string
	inputDir   string
	parser     string
	aggregator string
	logLevel   string
	logDir     string
	status     bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	// 在任何 ENV 读取前加载工作目录下的 .env（不覆盖已有 ENV）。
	_ = loadDotEnv(".env")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fprintf(stderr, "%v\n", ee.err)
		}
		return ee.code
	}
	// 其余均来自 cobra 的参数/旗标解析
	fprintf(stderr, "用法错误: %v\n", err)
	return exitUsage
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var f rootFlags
	root := &cobra.Command{
		Use:   "gmcrunch [ids...]",
		Short: "按 ID 列表批量读取样本文件并输出几何平均数",
		Long: `gmcrunch 依次处理每个 ID：打开 {input_dir}/{id}.txt，解析首行的数值样本，
计算几何平均数并以 "{id}: {value}" 的形式写到 stdout。首个错误即终止。

ID 来源（优先级从高到低）：位置参数 > GMCRUNCH_IDS > 配置文件 ids > preset 列表。

QUICK START:
  gmcrunch                          # 处理默认 preset (geometric_mean)
  gmcrunch --preset data_crunch     # 处理另一组内置 ID
  gmcrunch 1 2 3 --input-dir data   # 显式 ID
  gmcrunch init                     # 生成 gmcrunch.yaml 模板`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd.Context(), &f, args, stdout, stderr)
		},
	}
	fl := root.Flags()
	fl.StringVar(&f.config, "config", "", "配置文件路径（YAML/JSON）；缺省读取 ./gmcrunch.yaml（若存在）")
	fl.StringVar(&f.preset, "preset", "", "内置 ID 列表名（未给出 ids 时生效）")
	fl.StringVar(&f.inputDir, "input-dir", "", "输入目录（覆盖配置）")
	fl.StringVar(&f.parser, "parser", "", "parser 组件名：firstline | fields")
	fl.StringVar(&f.aggregator, "aggregator", "", "aggregator 组件名：geomean | summary")
	fl.StringVar(&f.logLevel, "log-level", "", "日志级别：debug | info | warn | error | disabled")
	fl.StringVar(&f.logDir, "log-dir", "", "日志目录；为空时写 stderr")
	fl.BoolVar(&f.status, "status", false, "终端状态提示（stderr）。TTY 动态刷新；非 TTY 打点输出")

	root.AddCommand(newInitCmd(stdout), newPresetsCmd(stdout))
	return root
}

func newInitCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "init [dir]",
		Short: "在目录中生成 gmcrunch.yaml 与 .env 模板（已存在则不覆盖）",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				dir = strings.TrimSpace(args[0])
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return configErr("生成默认配置失败: %w", err)
			}
			path := filepath.Join(dir, defaultConfigName)
			if err := writeConfig(path, cfgpkg.DefaultTemplateConfig()); err != nil {
				return configErr("生成默认配置失败: %w", err)
			}
			if err := writeDotEnv(filepath.Join(dir, ".env")); err != nil {
				fprintf(cmd.ErrOrStderr(), "提示：.env 生成失败（已跳过）：%v\n", err)
			}
			fprintf(stdout, "已生成 %s\n", path)
			return nil
		},
	}
}

func newPresetsCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "列出内置 ID 列表",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range cfgpkg.PresetNames() {
				ids, _ := cfgpkg.Preset(name)
				parts := make([]string, len(ids))
				for i, id := range ids {
					parts[i] = diag.IDString(id)
				}
				mark := ""
				if name == cfgpkg.DefaultPreset {
					mark = " (default)"
				}
				fprintf(stdout, "%s%s: %s\n", name, mark, strings.Join(parts, " "))
			}
			return nil
		},
	}
}

func runBatch(ctx context.Context, f *rootFlags, args []string, stdout, stderr io.Writer) error {
	start := time.Now()
	corrID := genCorrID()
	// 先以默认级别占位，合并配置后按最终 level/dir 重建
	logger := diag.NewLoggerTo(stderr, corrID, "error")

	cfg, err := loadConfig(f, args)
	if err != nil {
		logger.Error("config", string(diag.Classify(err)), "load failed", &start)
		return err
	}
	if err := cfgpkg.Validate(cfg); err != nil {
		fprintf(stderr, "配置校验失败: %v\n", err)
		dumpConfig(stderr, cfg)
		logger.Error("config", string(diag.Classify(err)), "validate failed", &start)
		return &exitError{code: exitConfig}
	}

	if dir := strings.TrimSpace(cfg.Logging.Dir); dir != "" {
		logger = diag.NewLogger(corrID, cfg.Logging.Level, dir)
	} else {
		logger = diag.NewLoggerTo(stderr, corrID, cfg.Logging.Level)
	}
	defer logger.Close()

	comp, set, err := cfgpkg.Assemble(cfg, stdout)
	if err != nil {
		logger.Error("config", string(diag.Classify(err)), "assemble failed", &start)
		return configErr("装配失败: %w", err)
	}

	logger.DebugKV("config", "effective", "", map[string]string{
		"ids_count":  fmt.Sprintf("%d", len(set.IDs)),
		"input_dir":  set.InputDir,
		"preset":     cfg.Preset,
		"reader":     cfg.Components.Reader,
		"parser":     cfg.Components.Parser,
		"aggregator": cfg.Components.Aggregator,
		"writer":     cfg.Components.Writer,
	})

	// 终端信息提示（非日志）：按 --status 启用
	term := diag.NewTerminal(stderr, f.status)
	diag.SetTerminal(term)
	defer diag.SetTerminal(nil)
	term.RunStart(len(set.IDs))

	t := logger.Start("pipeline", "run")
	if err := pipelineRun(ctx, comp, set, logger); err != nil {
		code := string(diag.Classify(err))
		logger.Error("pipeline", code, "first error", &start)
		diag.IncOp("pipeline", "error", "error")
		if code != string(diag.CodeUnknown) {
			diag.IncError("pipeline", code)
		}
		term.RunFinish(false, time.Since(start))
		if errors.Is(err, context.Canceled) {
			return &exitError{code: exitRuntime}
		}
		return &exitError{code: exitRuntime, err: fmt.Errorf("运行失败: %w", err)}
	}
	t.Finish("run", int64(len(set.IDs)))
	diag.IncOp("pipeline", "finish", "success")
	diag.ObserveDuration("pipeline", "finish", time.Since(start).Milliseconds())
	logger.DebugKV("metrics", "snapshot", "", diag.SnapshotKV())
	term.RunFinish(true, time.Since(start))
	return nil
}

// loadConfig 按 defaults < 文件 < ENV < CLI 合并。
func loadConfig(f *rootFlags, args []string) (cfgpkg.Config, error) {
	var raw []byte
	if s := os.Getenv(envConfigYAML); s != "" {
		raw = []byte(s)
	}
	path := f.config
	if path == "" {
		path = os.Getenv(envConfigFile)
	}
	if path == "" {
		if _, err := os.Stat(defaultConfigName); err == nil {
			path = defaultConfigName
		}
	}

	cfg := cfgpkg.Defaults()
	if path != "" || len(raw) > 0 {
		base, err := cfgpkg.LoadYAML(path, raw)
		if err != nil {
			return cfg, configErr("配置解析失败: %w", err)
		}
		cfg = cfgpkg.Merge(cfg, base)
	}

	overEnv, err := cfgpkg.EnvOverlay(os.Environ())
	if err != nil {
		return cfg, configErr("环境变量解析失败: %w", err)
	}
	cfg = cfgpkg.Merge(cfg, overEnv)

	overCLI := cfgpkg.Config{
		Preset:   f.preset,
		InputDir: f.inputDir,
		Logging:  cfgpkg.Logging{Level: f.logLevel, Dir: f.logDir},
		Components: cfgpkg.Components{
			Parser:     f.parser,
			Aggregator: f.aggregator,
		},
	}
	for _, a := range args {
		ids, err := cfgpkg.ParseIDList(a)
		if err != nil {
			return cfg, configErr("参数解析失败: %w", err)
		}
		overCLI.IDs = append(overCLI.IDs, ids...)
	}
	return cfgpkg.Merge(cfg, overCLI), nil
}

func fprintf(w io.Writer, format string, a ...any) { _, _ = fmt.Fprintf(w, format, a...) }

func dumpConfig(w io.Writer, c cfgpkg.Config) {
	b, err := cfgpkg.Marshal(c)
	if err != nil {
		return
	}
	fprintf(w, "有效配置:\n%s", b)
}

func writeConfig(path string, c cfgpkg.Config) error {
	b, err := cfgpkg.Marshal(c)
	if err != nil {
		return err
	}
	// 不覆盖已存在文件
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteString("# gmcrunch 配置（由 gmcrunch init 生成）\n# 优先级：CLI > ENV(.env) > 本文件\n"); err != nil {
		return err
	}
	_, err = f.Write(b)
	return err
}

func genCorrID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return ""
	}
	return hex.EncodeToString(b[:])
}

// loadDotEnv 读取 .env 并注入进程环境；文件不存在时忽略。
// 已存在的环境变量不被覆盖（godotenv.Load 语义）。
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// writeDotEnv 生成 .env 模板；文件已存在时跳过。
func writeDotEnv(path string) error {
	var b strings.Builder
	b.WriteString("# gmcrunch .env 模板（由 gmcrunch init 生成）\n")
	b.WriteString("# 空值表示未设置。\n\n")
	b.WriteString("# 配置来源（可二选一）\n")
	b.WriteString(envConfigFile + "=\n")
	b.WriteString(envConfigYAML + "=\n\n")
	b.WriteString("# 运行参数覆盖\n")
	for _, k := range []string{"IDS", "PRESET", "INPUT_DIR", "LOG_LEVEL", "LOG_DIR"} {
		b.WriteString(cfgpkg.EnvPrefix + k + "=\n")
	}
	b.WriteString("\n# 组件选择\n")
	for _, k := range []string{"READER", "PARSER", "AGGREGATOR", "WRITER"} {
		b.WriteString(cfgpkg.EnvPrefix + "COMPONENTS_" + k + "=\n")
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	_, err = f.WriteString(b.String())
	return err
}
