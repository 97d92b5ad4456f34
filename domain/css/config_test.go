package css

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"google.golang.org/protobuf/types/known/structpb"

	ast "github.com/honeybbq/cssexplore/pkg/ast/css"
	"github.com/honeybbq/cssexplore/pkg/cxerrors"
)

func newTree(t *testing.T, rules ...any) *structpb.Struct {
	t.Helper()
	msg, err := structpb.NewStruct(map[string]any{
		"type": "stylesheet",
		"stylesheet": map[string]any{
			"rules":         rules,
			"parsingErrors": []any{},
		},
	})
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	return msg
}

func build(t *testing.T, rules ...any) (*ast.Stylesheet, error) {
	t.Helper()
	cfg, err := FromProto(newTree(t, rules...))
	if err != nil {
		t.Fatalf("FromProto: %v", err)
	}
	return cfg.ToAST()
}

func decl(property, value string) map[string]any {
	return map[string]any{
		"type":     "declaration",
		"property": property,
		"value":    value,
		"position": map[string]any{"start": map[string]any{"line": 1, "column": 1}},
	}
}

func TestToAST(t *testing.T) {
	tests := []struct {
		name  string
		rules []any
		want  []ast.Node
	}{
		{
			name: "rule joins selectors",
			rules: []any{
				map[string]any{
					"type":         "rule",
					"selectors":    []any{"a", ".b"},
					"declarations": []any{decl("color", "red"), decl("margin", "0")},
				},
			},
			want: []ast.Node{
				ast.Rule{Selectors: "a, .b", Properties: []ast.Property{
					{Name: "color", Value: "red"},
					{Name: "margin", Value: "0"},
				}},
			},
		},
		{
			name: "charset",
			rules: []any{
				map[string]any{"type": "charset", "charset": `"UTF-8"`},
			},
			want: []ast.Node{ast.Charset{Charset: `"UTF-8"`}},
		},
		{
			name: "keyframes without vendor",
			rules: []any{
				map[string]any{
					"type": "keyframes",
					"name": "spin",
					"keyframes": []any{
						map[string]any{"type": "keyframe", "values": []any{"0%"}, "declarations": []any{}},
						map[string]any{"type": "keyframe", "values": []any{"50%", "100%"}, "declarations": []any{decl("opacity", "1")}},
					},
				},
			},
			want: []ast.Node{
				ast.KeyFrames{Name: "spin", KeyFrames: []ast.KeyFrame{
					{Values: "0%"},
					{Values: "50%, 100%", Properties: []ast.Property{{Name: "opacity", Value: "1"}}},
				}},
			},
		},
		{
			name: "keyframes with vendor",
			rules: []any{
				map[string]any{"type": "keyframes", "vendor": "-webkit-", "name": "fade", "keyframes": []any{}},
			},
			want: []ast.Node{ast.KeyFrames{Vendor: "-webkit-", Name: "fade"}},
		},
		{
			name: "media nests every node kind",
			rules: []any{
				map[string]any{
					"type":  "media",
					"media": "screen",
					"rules": []any{
						map[string]any{"type": "rule", "selectors": []any{"p"}, "declarations": []any{}},
						map[string]any{"type": "charset", "charset": `"UTF-8"`},
						map[string]any{
							"type":  "media",
							"media": "print",
							"rules": []any{map[string]any{"type": "rule", "selectors": []any{"q"}, "declarations": []any{}}},
						},
						map[string]any{"type": "keyframes", "name": "k", "keyframes": []any{}},
					},
				},
			},
			want: []ast.Node{
				ast.MediaQuery{Media: "screen", Rules: []ast.Node{
					ast.Rule{Selectors: "p"},
					ast.Charset{Charset: `"UTF-8"`},
					ast.MediaQuery{Media: "print", Rules: []ast.Node{ast.Rule{Selectors: "q"}}},
					ast.KeyFrames{Name: "k"},
				}},
			},
		},
		{
			name: "order preserved",
			rules: []any{
				map[string]any{"type": "rule", "selectors": []any{"z", "a"}, "declarations": []any{decl("z-index", "1"), decl("a", "2")}},
				map[string]any{"type": "charset", "charset": "x"},
			},
			want: []ast.Node{
				ast.Rule{Selectors: "z, a", Properties: []ast.Property{{Name: "z-index", Value: "1"}, {Name: "a", Value: "2"}}},
				ast.Charset{Charset: "x"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := build(t, tt.rules...)
			if err != nil {
				t.Fatalf("ToAST: %v", err)
			}
			if diff := cmp.Diff(tt.want, doc.Rules, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestToASTSchemaViolation(t *testing.T) {
	tests := []struct {
		name     string
		rule     map[string]any
		nodeType string
		keys     []string
		allowed  []string
	}{
		{
			name: "unexpected key on rule",
			rule: map[string]any{
				"type":         "rule",
				"selectors":    []any{"a"},
				"declarations": []any{},
				"unexpected":   "x",
			},
			nodeType: "rule",
			keys:     []string{"declarations", "selectors", "type", "unexpected"},
			allowed:  []string{"declarations", "position", "selectors", "type"},
		},
		{
			name: "declaration with wrong type",
			rule: map[string]any{
				"type":      "rule",
				"selectors": []any{"a"},
				"declarations": []any{
					map[string]any{"type": "comment", "comment": " hi "},
				},
			},
			nodeType: "declaration",
			keys:     []string{"comment", "type"},
			allowed:  []string{"position", "property", "type", "value"},
		},
		{
			name: "unexpected key on nested keyframe",
			rule: map[string]any{
				"type": "keyframes",
				"name": "k",
				"keyframes": []any{
					map[string]any{"values": []any{"0%"}, "declarations": []any{}, "extra": true},
				},
			},
			nodeType: "keyframe",
			keys:     []string{"declarations", "extra", "values"},
			allowed:  []string{"declarations", "position", "type", "values"},
		},
		{
			name:     "missing required field",
			rule:     map[string]any{"type": "media", "rules": []any{}},
			nodeType: "media",
			keys:     []string{"rules", "type"},
			allowed:  []string{"media", "position", "rules", "type"},
		},
		{
			name:     "selectors not strings",
			rule:     map[string]any{"type": "rule", "selectors": []any{1.0}, "declarations": []any{}},
			nodeType: "rule",
			keys:     []string{"declarations", "selectors", "type"},
			allowed:  []string{"declarations", "position", "selectors", "type"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := build(t, tt.rule)
			if err == nil {
				t.Fatal("expected error")
			}
			if kind := cxerrors.KindOf(err); kind != cxerrors.KindSchema {
				t.Fatalf("kind = %q, want %q", kind, cxerrors.KindSchema)
			}
			var schemaErr *cxerrors.SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected *SchemaError, got %T: %v", err, err)
			}
			if schemaErr.NodeType != tt.nodeType {
				t.Errorf("NodeType = %q, want %q", schemaErr.NodeType, tt.nodeType)
			}
			if diff := cmp.Diff(tt.keys, schemaErr.Keys); diff != "" {
				t.Errorf("Keys (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.allowed, schemaErr.Allowed); diff != "" {
				t.Errorf("Allowed (-want +got):\n%s", diff)
			}
		})
	}
}

func TestToASTUnknownNodeType(t *testing.T) {
	for _, rule := range []map[string]any{
		{"type": "unknown"},
		{"type": "comment", "comment": "x"},
		{"selectors": []any{"a"}},
	} {
		_, err := build(t, rule)
		var unknown *cxerrors.UnknownNodeTypeError
		if !errors.As(err, &unknown) {
			t.Fatalf("expected *UnknownNodeTypeError for %v, got %v", rule, err)
		}
		if want, _ := rule["type"].(string); unknown.Type != want {
			t.Errorf("Type = %q, want %q", unknown.Type, want)
		}
		if cxerrors.KindOf(err) != cxerrors.KindUnknownNode {
			t.Errorf("kind = %q", cxerrors.KindOf(err))
		}
	}
}

func TestToASTUnknownNodeInsideMedia(t *testing.T) {
	_, err := build(t, map[string]any{
		"type":  "media",
		"media": "screen",
		"rules": []any{map[string]any{"type": "font-face", "declarations": []any{}}},
	})
	var unknown *cxerrors.UnknownNodeTypeError
	if !errors.As(err, &unknown) || unknown.Type != "font-face" {
		t.Fatalf("expected unknown font-face node, got %v", err)
	}
}

func TestToASTMissingStylesheet(t *testing.T) {
	msg, err := structpb.NewStruct(map[string]any{"type": "stylesheet"})
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := FromProto(msg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cfg.ToAST(); cxerrors.KindOf(err) != cxerrors.KindSchema {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestFromProtoNil(t *testing.T) {
	if _, err := FromProto(nil); cxerrors.KindOf(err) != cxerrors.KindInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
}
