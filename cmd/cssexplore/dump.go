package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-yaml"

	ast "github.com/honeybbq/cssexplore/pkg/ast/css"
	"github.com/honeybbq/cssexplore/pkg/cxerrors"
)

// writeAST 以 YAML 形式输出类型化 AST，多个文件之间用 "---" 分隔。
func writeAST(w io.Writer, index int, path string, doc *ast.Stylesheet) error {
	rules, err := dumpNodes(doc.Rules)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	payload, err := yaml.Marshal(yaml.MapSlice{
		{Key: "path", Value: path},
		{Key: "rules", Value: rules},
	})
	if err != nil {
		return fmt.Errorf("encode ast: %w", err)
	}
	if index > 0 {
		if _, err := io.WriteString(w, "---\n"); err != nil {
			return err
		}
	}
	_, err = w.Write(payload)
	return err
}

func dumpNodes(nodes []ast.Node) ([]yaml.MapSlice, error) {
	result := make([]yaml.MapSlice, 0, len(nodes))
	for _, node := range nodes {
		entry, err := dumpNode(node)
		if err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, nil
}

func dumpNode(node ast.Node) (yaml.MapSlice, error) {
	switch n := node.(type) {
	case ast.Charset:
		return yaml.MapSlice{
			{Key: "kind", Value: n.Kind()},
			{Key: "charset", Value: n.Charset},
		}, nil
	case ast.Rule:
		return yaml.MapSlice{
			{Key: "kind", Value: n.Kind()},
			{Key: "selectors", Value: n.Selectors},
			{Key: "properties", Value: dumpProperties(n.Properties)},
		}, nil
	case ast.KeyFrames:
		frames := make([]yaml.MapSlice, 0, len(n.KeyFrames))
		for _, frame := range n.KeyFrames {
			frames = append(frames, yaml.MapSlice{
				{Key: "values", Value: frame.Values},
				{Key: "properties", Value: dumpProperties(frame.Properties)},
			})
		}
		return yaml.MapSlice{
			{Key: "kind", Value: n.Kind()},
			{Key: "vendor", Value: n.Vendor},
			{Key: "name", Value: n.Name},
			{Key: "keyframes", Value: frames},
		}, nil
	case ast.MediaQuery:
		rules, err := dumpNodes(n.Rules)
		if err != nil {
			return nil, err
		}
		return yaml.MapSlice{
			{Key: "kind", Value: n.Kind()},
			{Key: "media", Value: n.Media},
			{Key: "rules", Value: rules},
		}, nil
	default:
		// 只有 nil 能走到这里
		return nil, cxerrors.New(cxerrors.KindRender, fmt.Errorf("cannot dump node %T", node))
	}
}

func dumpProperties(properties []ast.Property) []yaml.MapSlice {
	result := make([]yaml.MapSlice, 0, len(properties))
	for _, p := range properties {
		result = append(result, yaml.MapSlice{
			{Key: "name", Value: p.Name},
			{Key: "value", Value: p.Value},
		})
	}
	return result
}
