package css

import (
	"context"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/honeybbq/cssexplore/pkg/cssexplore"
	"github.com/honeybbq/cssexplore/pkg/cxerrors"
)

// JSONParser 直接读取已解析好的 JSON 语法树（css_to_json 的输出）。
type JSONParser struct{}

func NewJSONParser() *JSONParser {
	return &JSONParser{}
}

func (p *JSONParser) Parse(ctx context.Context, source []byte, opts cssexplore.ParseOptions) (*structpb.Struct, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return decodeTree(source, opts.SourceName)
}

func decodeTree(payload []byte, name string) (*structpb.Struct, error) {
	if name == "" {
		name = "<stdin>"
	}
	var tree structpb.Struct
	if err := protojson.Unmarshal(payload, &tree); err != nil {
		return nil, cxerrors.New(cxerrors.KindParser, fmt.Errorf("decode parse tree of %s: %w", name, err))
	}
	return &tree, nil
}
