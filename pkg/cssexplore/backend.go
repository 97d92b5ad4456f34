package cssexplore

import (
	"context"

	ast "github.com/honeybbq/cssexplore/pkg/ast/css"
)

// Backend defines the pipeline every stylesheet formatter implements:
// source text → external parser → typed AST → canonical text.
type Backend interface {
	// Name returns the backend identifier (e.g., "css").
	Name() string

	// ToAST parses source and builds the typed stylesheet without rendering it.
	ToAST(ctx context.Context, source []byte, opts ParseOptions) (*ast.Stylesheet, error)

	// Format runs the whole pipeline and returns the rendered stylesheet with
	// trailing whitespace stripped.
	Format(ctx context.Context, source []byte, opts FormatOptions) (string, error)
}
