package renderer

import (
	"context"

	"github.com/honeybbq/cssexplore/pkg/cssexplore"
)

// Renderer 定义 AST 渲染接口，使用泛型约束文档类型。
type Renderer[T any] interface {
	Render(ctx context.Context, doc T, opts cssexplore.RenderOptions) (string, error)
}

// Parser 将 CSS 源文本解析成未类型化的语法树。
type Parser[T any] interface {
	Parse(ctx context.Context, source []byte, opts cssexplore.ParseOptions) (T, error)
}
