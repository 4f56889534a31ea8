package registry

import (
	"bytes"
	"errors"
	"io"

	"gopkg.in/yaml.v3"

	"gmcrunch/pkg/contract"
	gagg "gmcrunch/plugins/aggregator/geomean"
	sagg "gmcrunch/plugins/aggregator/summary"
	pfld "gmcrunch/plugins/parser/fields"
	pfl "gmcrunch/plugins/parser/firstline"
	rfs "gmcrunch/plugins/reader/filesystem"
	wfile "gmcrunch/plugins/writer/file"
	wline "gmcrunch/plugins/writer/line"
)

// strictDecode: 以 KnownFields 严格解码 Options 子树，拒绝未知字段。
// node 为 nil 或空节点时保持零值（默认选项）。
func strictDecode(node *yaml.Node, v any) error {
	if node == nil || node.Kind == 0 {
		return nil
	}
	b, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// NewReader 工厂签名：接收原样 YAML Options。
type NewReader func(opts *yaml.Node) (contract.Reader, error)

// NewParser 工厂签名：接收原样 YAML Options。
type NewParser func(opts *yaml.Node) (contract.Parser, error)

// NewAggregator 工厂签名：接收原样 YAML Options。
type NewAggregator func(opts *yaml.Node) (contract.Aggregator, error)

// NewWriter 工厂签名：接收原样 YAML Options 与输出目标。
type NewWriter func(opts *yaml.Node, out io.Writer) (contract.Writer, error)

// Reader 工厂注册表（显式、零反射）。
var Reader = map[string]NewReader{
	// fs: 按路径模板读取本地文件
	"fs": func(node *yaml.Node) (contract.Reader, error) {
		var opts rfs.Options
		if err := strictDecode(node, &opts); err != nil {
			return nil, err
		}
		return rfs.New(&opts)
	},
}

// Parser 工厂注册表。
var Parser = map[string]NewParser{
	// firstline: 首行、单空格切分
	"firstline": func(node *yaml.Node) (contract.Parser, error) {
		var opts pfl.Options
		if err := strictDecode(node, &opts); err != nil {
			return nil, err
		}
		return pfl.New(&opts), nil
	},
	// fields: 全文、任意空白切分
	"fields": func(node *yaml.Node) (contract.Parser, error) {
		var opts pfld.Options
		if err := strictDecode(node, &opts); err != nil {
			return nil, err
		}
		return pfld.New(&opts), nil
	},
}

// Aggregator 工厂注册表。
var Aggregator = map[string]NewAggregator{
	// geomean: 仅几何平均（无配置项，拒绝任何键）
	"geomean": func(node *yaml.Node) (contract.Aggregator, error) {
		var opts struct{}
		if err := strictDecode(node, &opts); err != nil {
			return nil, err
		}
		return gagg.New(), nil
	},
	// summary: 几何平均 + 描述统计
	"summary": func(node *yaml.Node) (contract.Aggregator, error) {
		var opts sagg.Options
		if err := strictDecode(node, &opts); err != nil {
			return nil, err
		}
		return sagg.New(&opts)
	},
}

// Writer 工厂注册表。
var Writer = map[string]NewWriter{
	// line: "<id>: <value>" 行输出
	"line": func(node *yaml.Node, out io.Writer) (contract.Writer, error) {
		var opts wline.Options
		if err := strictDecode(node, &opts); err != nil {
			return nil, err
		}
		return wline.New(out, &opts)
	},
	// file: 同格式写入报告文件（逐条原子替换）
	"file": func(node *yaml.Node, _ io.Writer) (contract.Writer, error) {
		var opts wfile.Options
		if err := strictDecode(node, &opts); err != nil {
			return nil, err
		}
		return wfile.New(&opts)
	},
}
