package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cssbackend "github.com/honeybbq/cssexplore/backend/css"
	"github.com/honeybbq/cssexplore/pkg/cssexplore"
	cssrenderer "github.com/honeybbq/cssexplore/pkg/renderer/css"
)

// formatFixture 使用 JSON 解析器格式化 testdata/css/<name>.json。
func formatFixture(t *testing.T, name string, opts cssexplore.FormatOptions) (string, error) {
	t.Helper()
	payload, err := os.ReadFile(filepath.Join("..", "testdata", "css", name+".json"))
	if err != nil {
		t.Fatalf("read parse tree: %v", err)
	}
	backend := cssbackend.New(cssrenderer.NewPlainTextRenderer(), cssrenderer.NewJSONParser())
	return backend.Format(context.Background(), payload, opts)
}

func readGolden(t *testing.T, name string) string {
	t.Helper()
	want, err := os.ReadFile(filepath.Join("..", "testdata", "css", name+".css"))
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return string(want)
}

// normalizeCSS 标准化文本用于比较
// 1. 去除首尾空白
// 2. 统一换行符
func normalizeCSS(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return text
}

// compareCSS 比较输出，忽略首尾空白差异
func compareCSS(got, want string) bool {
	return normalizeCSS(got) == normalizeCSS(want)
}

// formatCSSDiff 格式化差异信息
func formatCSSDiff(got, want string) string {
	gotNorm := normalizeCSS(got)
	wantNorm := normalizeCSS(want)

	if gotNorm == wantNorm {
		return "stylesheets match (after normalization)"
	}

	gotLines := strings.Split(gotNorm, "\n")
	wantLines := strings.Split(wantNorm, "\n")

	var b strings.Builder
	fmt.Fprintf(&b, "stylesheet mismatch (got %d lines, want %d lines)\n", len(gotLines), len(wantLines))
	fmt.Fprintf(&b, "--- got (normalized) ---\n%s\n", gotNorm)
	fmt.Fprintf(&b, "--- want (normalized) ---\n%s\n", wantNorm)

	// 逐行比较找出差异
	maxLines := max(len(gotLines), len(wantLines))
	fmt.Fprintf(&b, "--- line-by-line diff ---\n")
	for i := 0; i < maxLines; i++ {
		var gotLine, wantLine string
		if i < len(gotLines) {
			gotLine = gotLines[i]
		}
		if i < len(wantLines) {
			wantLine = wantLines[i]
		}
		if gotLine != wantLine {
			fmt.Fprintf(&b, "Line %d differs:\n", i+1)
			fmt.Fprintf(&b, "  got:  %q\n", gotLine)
			fmt.Fprintf(&b, "  want: %q\n", wantLine)
		}
	}

	return b.String()
}
