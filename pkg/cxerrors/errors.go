package cxerrors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies the high level class of an error surfaced by cssexplore.
type Kind string

const (
	// KindSchema indicates an untyped parser node does not match its schema.
	KindSchema Kind = "schema"
	// KindUnknownNode indicates a parser node carries an unregistered type.
	KindUnknownNode Kind = "unknown_node"
	// KindParser 表示外部 CSS 解析器失败或输出无法解码。
	KindParser Kind = "parser"
	// KindRender 表示渲染失败。
	KindRender Kind = "render"
	// KindConfig 表示配置文件错误。
	KindConfig Kind = "config"
	// KindInternal 表示未知或内部错误。
	KindInternal Kind = "internal"
)

// Error 包装底层错误并附加 Kind，方便调用方根据类型处理。
type Error struct {
	Kind Kind
	Err  error
}

// Error 实现 error 接口。
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Unwrap 允许 errors.Is/As 访问底层错误。
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New 创建指定 Kind 的错误。
func New(kind Kind, err error) error {
	if err == nil {
		err = errors.New(string(kind))
	}
	return &Error{Kind: kind, Err: err}
}

// KindOf returns the kind of the outermost *Error in err's chain, or "" when
// there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// SchemaError reports an untyped node whose shape does not match the schema
// declared for its type. Keys and Allowed are sorted.
type SchemaError struct {
	NodeType string
	Keys     []string
	Allowed  []string
	Reason   string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s node: %s (keys {%s}, allowed {%s})",
		e.NodeType, e.Reason, strings.Join(e.Keys, ", "), strings.Join(e.Allowed, ", "))
}

// UnknownNodeTypeError reports a node type with no registered converter.
type UnknownNodeTypeError struct {
	Type string
}

func (e *UnknownNodeTypeError) Error() string {
	return fmt.Sprintf("unknown node type %q", e.Type)
}

// ParserError carries the diagnostics of a failed external parser run.
type ParserError struct {
	Command  []string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *ParserError) Error() string {
	return fmt.Sprintf("Unexpected returncode (%d)\nstdout:\n%s\nstderr:\n%s\n", e.ExitCode, e.Stdout, e.Stderr)
}
