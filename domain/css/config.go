package css

import (
	"fmt"
	"sort"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"

	ast "github.com/honeybbq/cssexplore/pkg/ast/css"
	"github.com/honeybbq/cssexplore/pkg/cxerrors"
)

// Config 表示外部解析器输出的样式表领域模型。
type Config struct {
	Message *structpb.Struct
}

type schema struct {
	fields   []string
	required []string
}

// 所有节点都允许携带 position 与 type。
var bookkeepingKeys = []string{"position", "type"}

var schemas = map[string]schema{
	"charset":     {fields: []string{"charset"}, required: []string{"charset"}},
	"keyframes":   {fields: []string{"vendor", "name", "keyframes"}, required: []string{"name", "keyframes"}},
	"media":       {fields: []string{"media", "rules"}, required: []string{"media", "rules"}},
	"rule":        {fields: []string{"selectors", "declarations"}, required: []string{"selectors", "declarations"}},
	"declaration": {fields: []string{"property", "value"}, required: []string{"property", "value"}},
	"keyframe":    {fields: []string{"values", "declarations"}, required: []string{"values", "declarations"}},
}

// FromProto wraps the parser's top-level object, which must look like
// {"stylesheet": {"rules": [...]}}.
func FromProto(msg *structpb.Struct) (*Config, error) {
	if msg == nil {
		return nil, cxerrors.New(cxerrors.KindInternal, fmt.Errorf("parse tree is nil"))
	}
	return &Config{Message: msg}, nil
}

// ToAST converts every top-level node. The first failing node aborts the
// whole conversion.
func (c *Config) ToAST() (*ast.Stylesheet, error) {
	if c == nil || c.Message == nil {
		return nil, cxerrors.New(cxerrors.KindInternal, fmt.Errorf("parse tree is nil"))
	}

	sheet := c.Message.GetFields()["stylesheet"].GetStructValue()
	if sheet == nil {
		return nil, schemaError("stylesheet", c.Message, `field "stylesheet" must be an object`)
	}
	rules, err := listField(sheet, "stylesheet", "rules")
	if err != nil {
		return nil, err
	}

	doc := &ast.Stylesheet{Rules: make([]ast.Node, 0, len(rules))}
	for _, value := range rules {
		node, err := toNode(value)
		if err != nil {
			return nil, err
		}
		doc.Rules = append(doc.Rules, node)
	}
	return doc, nil
}

// toNode 根据 type 字段分发到对应的转换函数。
func toNode(value *structpb.Value) (ast.Node, error) {
	rec := value.GetStructValue()
	if rec == nil {
		return nil, cxerrors.New(cxerrors.KindSchema, &cxerrors.SchemaError{
			NodeType: "node",
			Reason:   "node must be an object",
		})
	}

	typ := rec.GetFields()["type"].GetStringValue()
	switch typ {
	case "charset":
		return toCharset(rec)
	case "keyframes":
		return toKeyFrames(rec)
	case "media":
		return toMediaQuery(rec)
	case "rule":
		return toRule(rec)
	default:
		return nil, cxerrors.New(cxerrors.KindUnknownNode, &cxerrors.UnknownNodeTypeError{Type: typ})
	}
}

func toCharset(rec *structpb.Struct) (ast.Node, error) {
	if err := checkKeys(rec, "charset"); err != nil {
		return nil, err
	}
	charset, err := stringField(rec, "charset", "charset")
	if err != nil {
		return nil, err
	}
	return ast.Charset{Charset: charset}, nil
}

func toRule(rec *structpb.Struct) (ast.Node, error) {
	if err := checkKeys(rec, "rule"); err != nil {
		return nil, err
	}
	selectors, err := stringsField(rec, "rule", "selectors")
	if err != nil {
		return nil, err
	}
	properties, err := toProperties(rec, "rule")
	if err != nil {
		return nil, err
	}
	return ast.Rule{
		Selectors:  strings.Join(selectors, ", "),
		Properties: properties,
	}, nil
}

func toKeyFrames(rec *structpb.Struct) (ast.Node, error) {
	if err := checkKeys(rec, "keyframes"); err != nil {
		return nil, err
	}
	vendor, err := stringField(rec, "keyframes", "vendor")
	if err != nil {
		return nil, err
	}
	name, err := stringField(rec, "keyframes", "name")
	if err != nil {
		return nil, err
	}
	values, err := listField(rec, "keyframes", "keyframes")
	if err != nil {
		return nil, err
	}

	frames := make([]ast.KeyFrame, 0, len(values))
	for _, value := range values {
		frame, err := toKeyFrame(value)
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame)
	}
	return ast.KeyFrames{Vendor: vendor, Name: name, KeyFrames: frames}, nil
}

func toKeyFrame(value *structpb.Value) (ast.KeyFrame, error) {
	rec := value.GetStructValue()
	if rec == nil {
		return ast.KeyFrame{}, schemaError("keyframe", nil, "keyframe must be an object")
	}
	if err := checkKeys(rec, "keyframe"); err != nil {
		return ast.KeyFrame{}, err
	}
	values, err := stringsField(rec, "keyframe", "values")
	if err != nil {
		return ast.KeyFrame{}, err
	}
	properties, err := toProperties(rec, "keyframe")
	if err != nil {
		return ast.KeyFrame{}, err
	}
	return ast.KeyFrame{
		Values:     strings.Join(values, ", "),
		Properties: properties,
	}, nil
}

func toMediaQuery(rec *structpb.Struct) (ast.Node, error) {
	if err := checkKeys(rec, "media"); err != nil {
		return nil, err
	}
	media, err := stringField(rec, "media", "media")
	if err != nil {
		return nil, err
	}
	values, err := listField(rec, "media", "rules")
	if err != nil {
		return nil, err
	}

	// @media 内部走完整分发，允许嵌套 rule、keyframes、media 以及 charset。
	rules := make([]ast.Node, 0, len(values))
	for _, value := range values {
		node, err := toNode(value)
		if err != nil {
			return nil, err
		}
		rules = append(rules, node)
	}
	return ast.MediaQuery{Media: media, Rules: rules}, nil
}

func toProperties(rec *structpb.Struct, nodeType string) ([]ast.Property, error) {
	values, err := listField(rec, nodeType, "declarations")
	if err != nil {
		return nil, err
	}
	properties := make([]ast.Property, 0, len(values))
	for _, value := range values {
		property, err := toProperty(value)
		if err != nil {
			return nil, err
		}
		properties = append(properties, property)
	}
	return properties, nil
}

// toProperty 直接按字段访问声明节点，因此需要显式校验 type。
func toProperty(value *structpb.Value) (ast.Property, error) {
	rec := value.GetStructValue()
	if rec == nil {
		return ast.Property{}, schemaError("declaration", nil, "declaration must be an object")
	}
	if typ := rec.GetFields()["type"].GetStringValue(); typ != "declaration" {
		return ast.Property{}, schemaError("declaration", rec, fmt.Sprintf("type is %q, want %q", typ, "declaration"))
	}
	if err := checkKeys(rec, "declaration"); err != nil {
		return ast.Property{}, err
	}
	name, err := stringField(rec, "declaration", "property")
	if err != nil {
		return ast.Property{}, err
	}
	val, err := stringField(rec, "declaration", "value")
	if err != nil {
		return ast.Property{}, err
	}
	return ast.Property{Name: name, Value: val}, nil
}

func checkKeys(rec *structpb.Struct, nodeType string) error {
	allowed := make(map[string]bool)
	for _, key := range allowedKeys(nodeType) {
		allowed[key] = true
	}

	var unexpected []string
	for key := range rec.GetFields() {
		if !allowed[key] {
			unexpected = append(unexpected, key)
		}
	}
	if len(unexpected) > 0 {
		sort.Strings(unexpected)
		return schemaError(nodeType, rec, fmt.Sprintf("unexpected keys %s", strings.Join(unexpected, ", ")))
	}

	for _, key := range schemas[nodeType].required {
		if _, ok := rec.GetFields()[key]; !ok {
			return schemaError(nodeType, rec, fmt.Sprintf("missing field %q", key))
		}
	}
	return nil
}

// stringField 读取可选字符串字段，缺失时返回空串。
func stringField(rec *structpb.Struct, nodeType, key string) (string, error) {
	value, ok := rec.GetFields()[key]
	if !ok {
		return "", nil
	}
	str, ok := value.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", schemaError(nodeType, rec, fmt.Sprintf("field %q must be a string", key))
	}
	return str.StringValue, nil
}

func stringsField(rec *structpb.Struct, nodeType, key string) ([]string, error) {
	values, err := listField(rec, nodeType, key)
	if err != nil {
		return nil, err
	}
	result := make([]string, 0, len(values))
	for _, value := range values {
		str, ok := value.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, schemaError(nodeType, rec, fmt.Sprintf("field %q must be a list of strings", key))
		}
		result = append(result, str.StringValue)
	}
	return result, nil
}

func listField(rec *structpb.Struct, nodeType, key string) ([]*structpb.Value, error) {
	list := rec.GetFields()[key].GetListValue()
	if list == nil {
		return nil, schemaError(nodeType, rec, fmt.Sprintf("field %q must be a list", key))
	}
	return list.GetValues(), nil
}

func schemaError(nodeType string, rec *structpb.Struct, reason string) error {
	return cxerrors.New(cxerrors.KindSchema, &cxerrors.SchemaError{
		NodeType: nodeType,
		Keys:     sortedKeys(rec),
		Allowed:  allowedKeys(nodeType),
		Reason:   reason,
	})
}

func allowedKeys(nodeType string) []string {
	s, ok := schemas[nodeType]
	if !ok {
		return nil
	}
	keys := append(append([]string(nil), s.fields...), bookkeepingKeys...)
	sort.Strings(keys)
	return keys
}

func sortedKeys(rec *structpb.Struct) []string {
	if len(rec.GetFields()) == 0 {
		return nil
	}
	keys := make([]string, 0, len(rec.GetFields()))
	for key := range rec.GetFields() {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
