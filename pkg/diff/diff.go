// Package diff computes line diffs between an input and its formatted form
// and prints them in unified format.
package diff

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// contextLines is the number of unchanged lines printed around each change.
const contextLines = 3

// Op 描述单行差异的类型。
type Op int

const (
	Equal Op = iota
	Delete
	Insert
)

// Line 是差异中的一行，不含换行符。
type Line struct {
	Op    Op
	Text  string
	NoEOL bool // 文件最后一行且没有换行符
}

const noNewlineMarker = "\\ No newline at end of file"

// ChangeSet 描述一次格式化前后的差异。
type ChangeSet struct {
	Path  string
	Lines []Line
}

// Colors holds the printers used for each part of a unified diff.
type Colors struct {
	Header func(string, ...any) string
	Hunk   func(string, ...any) string
	Insert func(string, ...any) string
	Delete func(string, ...any) string
}

// NewColors returns terminal colors. They honor color.NoColor at print time.
func NewColors() *Colors {
	return &Colors{
		Header: color.New(color.Bold).SprintfFunc(),
		Hunk:   color.CyanString,
		Insert: color.GreenString,
		Delete: color.RedString,
	}
}

// PlainColors returns printers that add no escape sequences.
func PlainColors() *Colors {
	return &Colors{Header: fmt.Sprintf, Hunk: fmt.Sprintf, Insert: fmt.Sprintf, Delete: fmt.Sprintf}
}

// Compute diffs before and after line by line.
func Compute(path string, before, after []byte) *ChangeSet {
	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(string(before), string(after))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	cs := &ChangeSet{Path: path}
	for _, d := range diffs {
		op := Equal
		switch d.Type {
		case diffpatch.DiffDelete:
			op = Delete
		case diffpatch.DiffInsert:
			op = Insert
		}
		for _, text := range splitLines(d.Text) {
			cs.Lines = append(cs.Lines, Line{Op: op, Text: text})
		}
	}
	if unterminated(before) {
		cs.markLast(Insert)
	}
	if unterminated(after) {
		cs.markLast(Delete)
	}
	return cs
}

func unterminated(text []byte) bool {
	return len(text) > 0 && text[len(text)-1] != '\n'
}

// markLast flags the last line whose op is not skip.
func (c *ChangeSet) markLast(skip Op) {
	for i := len(c.Lines) - 1; i >= 0; i-- {
		if c.Lines[i].Op != skip {
			c.Lines[i].NoEOL = true
			return
		}
	}
}

// Changed reports whether any line differs.
func (c *ChangeSet) Changed() bool {
	for _, l := range c.Lines {
		if l.Op != Equal {
			return true
		}
	}
	return false
}

// WriteUnified writes c as a unified diff. Nothing is written when there are
// no changes.
func (c *ChangeSet) WriteUnified(w io.Writer, colors *Colors) error {
	if !c.Changed() {
		return nil
	}
	if colors == nil {
		colors = PlainColors()
	}

	var b strings.Builder
	b.WriteString(colors.Header("--- %s.orig", c.Path) + "\n")
	b.WriteString(colors.Header("+++ %s", c.Path) + "\n")

	// oldNo/newNo[i] 是第 i 行之前已出现的旧/新行数
	oldNo := make([]int, len(c.Lines)+1)
	newNo := make([]int, len(c.Lines)+1)
	for i, l := range c.Lines {
		oldNo[i+1], newNo[i+1] = oldNo[i], newNo[i]
		if l.Op != Insert {
			oldNo[i+1]++
		}
		if l.Op != Delete {
			newNo[i+1]++
		}
	}

	for _, h := range c.hunks() {
		oldStart, oldCount := oldNo[h.start]+1, oldNo[h.end]-oldNo[h.start]
		newStart, newCount := newNo[h.start]+1, newNo[h.end]-newNo[h.start]
		if oldCount == 0 {
			oldStart--
		}
		if newCount == 0 {
			newStart--
		}
		b.WriteString(colors.Hunk("@@ -%d,%d +%d,%d @@", oldStart, oldCount, newStart, newCount) + "\n")
		for _, l := range c.Lines[h.start:h.end] {
			switch l.Op {
			case Delete:
				b.WriteString(colors.Delete("-%s", l.Text))
			case Insert:
				b.WriteString(colors.Insert("+%s", l.Text))
			default:
				b.WriteString(" " + l.Text)
			}
			b.WriteByte('\n')
			if l.NoEOL {
				b.WriteString(noNewlineMarker + "\n")
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

type hunk struct {
	start, end int
}

func (c *ChangeSet) hunks() []hunk {
	var result []hunk
	for i, l := range c.Lines {
		if l.Op == Equal {
			continue
		}
		start := max(0, i-contextLines)
		end := min(len(c.Lines), i+contextLines+1)
		if n := len(result); n > 0 && start <= result[n-1].end {
			result[n-1].end = end
			continue
		}
		result = append(result, hunk{start: start, end: end})
	}
	return result
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	parts := strings.SplitAfter(text, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	for i, p := range parts {
		parts[i] = strings.TrimSuffix(p, "\n")
	}
	return parts
}
