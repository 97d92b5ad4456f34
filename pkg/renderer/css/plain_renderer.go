package css

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	ast "github.com/honeybbq/cssexplore/pkg/ast/css"
	"github.com/honeybbq/cssexplore/pkg/cssexplore"
	"github.com/honeybbq/cssexplore/pkg/cxerrors"
)

const indentUnit = "    "

// PlainTextRenderer 将 CSS AST 渲染为规范化文本。
type PlainTextRenderer struct{}

func NewPlainTextRenderer() *PlainTextRenderer {
	return &PlainTextRenderer{}
}

// Render 实现 renderer.Renderer。
func (r *PlainTextRenderer) Render(ctx context.Context, doc *ast.Stylesheet, opts cssexplore.RenderOptions) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	if doc == nil {
		return "", cxerrors.New(cxerrors.KindInternal, fmt.Errorf("stylesheet is nil"))
	}

	var b strings.Builder
	for _, node := range doc.Rules {
		if node == nil {
			return "", cxerrors.New(cxerrors.KindRender, fmt.Errorf("nil node in stylesheet"))
		}
		b.WriteString(RenderNode(node, opts))
	}
	// 只在最终结果上去除一次尾部空白
	return strings.TrimRightFunc(b.String(), unicode.IsSpace), nil
}

// RenderNode renders a single node and its subtree. A nil node renders as
// empty text.
func RenderNode(node ast.Node, opts cssexplore.RenderOptions) string {
	switch n := node.(type) {
	case ast.Charset:
		if opts.IgnoreCharset {
			return ""
		}
		return fmt.Sprintf("@charset %s;\n", n.Charset)
	case ast.Rule:
		if opts.IgnoreEmptyRules && len(n.Properties) == 0 {
			return ""
		}
		return block(n.Selectors, renderProperties(n.Properties))
	case ast.KeyFrames:
		var frames strings.Builder
		for _, frame := range n.KeyFrames {
			frames.WriteString(renderKeyFrame(frame))
		}
		return block(fmt.Sprintf("@%skeyframes %s", n.Vendor, n.Name), Indent(frames.String()))
	case ast.MediaQuery:
		var rules strings.Builder
		for _, rule := range n.Rules {
			rules.WriteString(RenderNode(rule, opts))
		}
		return block("@media "+n.Media, Indent(rules.String()))
	default:
		return ""
	}
}

// renderKeyFrame 不受 IgnoreEmptyRules 影响，空帧同样输出。
func renderKeyFrame(frame ast.KeyFrame) string {
	return block(frame.Values, renderProperties(frame.Properties))
}

func renderProperties(properties []ast.Property) string {
	var b strings.Builder
	for _, p := range properties {
		fmt.Fprintf(&b, "%s%s: %s;\n", indentUnit, p.Name, p.Value)
	}
	return b.String()
}

func block(header, body string) string {
	return header + " {\n" + body + "}\n"
}

// Indent prefixes every line of text with four spaces and terminates the
// result with a single newline. A trailing line break does not start a new
// line, so Indent("a\n") is "    a\n" and Indent("") is "\n".
func Indent(text string) string {
	lines := splitLines(text)
	for i, line := range lines {
		lines[i] = indentUnit + line
	}
	return strings.Join(lines, "\n") + "\n"
}

// splitLines breaks text at the same boundaries as Python's str.splitlines:
// \n, \r, \r\n, \v, \f, \x1c-\x1e, U+0085, U+2028 and U+2029. A final line
// break does not produce an empty trailing element.
func splitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isLineBreak(r) {
			i += size
			continue
		}
		lines = append(lines, text[start:i])
		i += size
		if r == '\r' && i < len(text) && text[i] == '\n' {
			i++
		}
		start = i
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}
