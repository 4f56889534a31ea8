package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gmcrunch/internal/diag"
	"gmcrunch/internal/pipeline"
	"gmcrunch/pkg/contract"
	"gmcrunch/pkg/registry"
)

// ResolveIDs 返回最终 ID 列表：显式 IDs 优先，否则取 Preset（空则默认列表）。
func ResolveIDs(cfg Config) ([]contract.ID, error) {
	src := cfg.IDs
	if len(src) == 0 {
		name := effName(strings.TrimSpace(cfg.Preset), DefaultPreset)
		ids, ok := Preset(name)
		if !ok {
			return nil, fmt.Errorf("config: preset %q not found (known: %s)", name, strings.Join(PresetNames(), ", "))
		}
		src = ids
	}
	out := make([]contract.ID, len(src))
	for i, v := range src {
		out[i] = contract.ID(v)
	}
	return out, nil
}

// Validate 对最小必要边界做静态校验。
func Validate(cfg Config) error {
	ids, err := ResolveIDs(cfg)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return errors.New("config: ids empty")
	}
	if strings.TrimSpace(cfg.InputDir) == "" {
		return errors.New("config: input_dir empty")
	}
	if lv := cfg.Logging.Level; lv != "" && !diag.ValidLevel(lv) {
		return fmt.Errorf("config: logging.level %q invalid", lv)
	}
	// 组件名若为空，使用默认名（由 Defaults() 提供）。此处只要最终有值即可。
	d := Defaults().Components
	if name := effName(cfg.Components.Reader, d.Reader); registry.Reader[name] == nil {
		return fmt.Errorf("config: reader %q not registered", name)
	}
	if name := effName(cfg.Components.Parser, d.Parser); registry.Parser[name] == nil {
		return fmt.Errorf("config: parser %q not registered", name)
	}
	if name := effName(cfg.Components.Aggregator, d.Aggregator); registry.Aggregator[name] == nil {
		return fmt.Errorf("config: aggregator %q not registered", name)
	}
	if name := effName(cfg.Components.Writer, d.Writer); registry.Writer[name] == nil {
		return fmt.Errorf("config: writer %q not registered", name)
	}
	return nil
}

// Assemble 构造 Components 与 Settings；out 为结果输出目标（通常为 stdout）。
// 严格 Options 解析在 registry（工厂）层进行；此处只传原样节点。
func Assemble(cfg Config, out io.Writer) (pipeline.Components, pipeline.Settings, error) {
	if err := Validate(cfg); err != nil {
		return pipeline.Components{}, pipeline.Settings{}, err
	}
	d := Defaults().Components

	r, err := registry.Reader[effName(cfg.Components.Reader, d.Reader)](&cfg.Options.Reader)
	if err != nil {
		return pipeline.Components{}, pipeline.Settings{}, fmt.Errorf("options.reader: %w", err)
	}
	p, err := registry.Parser[effName(cfg.Components.Parser, d.Parser)](&cfg.Options.Parser)
	if err != nil {
		return pipeline.Components{}, pipeline.Settings{}, fmt.Errorf("options.parser: %w", err)
	}
	a, err := registry.Aggregator[effName(cfg.Components.Aggregator, d.Aggregator)](&cfg.Options.Aggregator)
	if err != nil {
		return pipeline.Components{}, pipeline.Settings{}, fmt.Errorf("options.aggregator: %w", err)
	}
	w, err := registry.Writer[effName(cfg.Components.Writer, d.Writer)](&cfg.Options.Writer, out)
	if err != nil {
		return pipeline.Components{}, pipeline.Settings{}, fmt.Errorf("options.writer: %w", err)
	}

	ids, _ := ResolveIDs(cfg)
	comp := pipeline.Components{Reader: r, Parser: p, Aggregator: a, Writer: w}
	set := pipeline.Settings{IDs: ids, InputDir: strings.TrimSpace(cfg.InputDir)}
	return comp, set, nil
}

func effName(got, def string) string {
	if got == "" {
		return def
	}
	return got
}
