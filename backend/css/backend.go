package css

import (
	"context"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/honeybbq/cssexplore/domain/css"
	ast "github.com/honeybbq/cssexplore/pkg/ast/css"
	"github.com/honeybbq/cssexplore/pkg/cssexplore"
	"github.com/honeybbq/cssexplore/pkg/cxerrors"
	"github.com/honeybbq/cssexplore/pkg/renderer"
	cssrenderer "github.com/honeybbq/cssexplore/pkg/renderer/css"
)

type Backend struct {
	renderer renderer.Renderer[*ast.Stylesheet]
	parser   renderer.Parser[*structpb.Struct]
}

var _ cssexplore.Backend = (*Backend)(nil)

func New(r renderer.Renderer[*ast.Stylesheet], p renderer.Parser[*structpb.Struct]) *Backend {
	return &Backend{renderer: r, parser: p}
}

// NewDefault 使用 node 解析器与纯文本渲染器。
func NewDefault() *Backend {
	return New(cssrenderer.NewPlainTextRenderer(), cssrenderer.NewExecParser())
}

func (b *Backend) Name() string {
	return "css"
}

func (b *Backend) ToAST(ctx context.Context, source []byte, opts cssexplore.ParseOptions) (*ast.Stylesheet, error) {
	if b.parser == nil {
		return nil, cxerrors.New(cxerrors.KindInternal, fmt.Errorf("backend has no parser"))
	}
	tree, err := b.parser.Parse(ctx, source, opts)
	if err != nil {
		return nil, err
	}
	return treeToAST(tree)
}

func (b *Backend) Format(ctx context.Context, source []byte, opts cssexplore.FormatOptions) (string, error) {
	doc, err := b.ToAST(ctx, source, opts.Parse)
	if err != nil {
		return "", err
	}
	return b.renderer.Render(ctx, doc, opts.RenderOptions)
}

// FormatTree renders an already parsed tree, skipping the parser.
func (b *Backend) FormatTree(ctx context.Context, tree *structpb.Struct, opts cssexplore.RenderOptions) (string, error) {
	doc, err := treeToAST(tree)
	if err != nil {
		return "", err
	}
	return b.renderer.Render(ctx, doc, opts)
}

// Format 使用默认后端格式化 CSS 源码。
func Format(ctx context.Context, source []byte, opts cssexplore.FormatOptions) (string, error) {
	return NewDefault().Format(ctx, source, opts)
}

func treeToAST(tree *structpb.Struct) (*ast.Stylesheet, error) {
	cfg, err := domain.FromProto(tree)
	if err != nil {
		return nil, err
	}
	return cfg.ToAST()
}
