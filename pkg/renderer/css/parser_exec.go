package css

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/honeybbq/cssexplore/pkg/cssexplore"
	"github.com/honeybbq/cssexplore/pkg/cxerrors"
)

//go:embed resources/css_to_json.js
var cssToJSONScript string

// DefaultCommand runs the "css" npm package through node. The package must be
// resolvable from the working directory or NODE_PATH.
func DefaultCommand() []string {
	return []string{"node", "-e", cssToJSONScript}
}

// ExecParser 通过外部进程解析 CSS：源码写入 stdin，从 stdout 读取 JSON 语法树。
type ExecParser struct {
	Command []string
	Env     []string // Extra environment entries appended to os.Environ()
}

// NewExecParser returns a parser running command, or DefaultCommand when
// command is empty.
func NewExecParser(command ...string) *ExecParser {
	if len(command) == 0 {
		command = DefaultCommand()
	}
	return &ExecParser{Command: command}
}

func (p *ExecParser) Parse(ctx context.Context, source []byte, opts cssexplore.ParseOptions) (*structpb.Struct, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(p.Command) == 0 {
		return nil, cxerrors.New(cxerrors.KindInternal, fmt.Errorf("parser command is empty"))
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.Command[0], p.Command[1:]...)
	cmd.Stdin = bytes.NewReader(source)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second
	if len(p.Env) > 0 {
		cmd.Env = append(os.Environ(), p.Env...)
	}

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, cxerrors.New(cxerrors.KindParser, fmt.Errorf("css parser: %w", ctxErr))
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil, cxerrors.New(cxerrors.KindParser, &cxerrors.ParserError{
			Command:  p.Command,
			ExitCode: exitErr.ExitCode(),
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
		})
	}
	if err != nil {
		return nil, cxerrors.New(cxerrors.KindParser, fmt.Errorf("run css parser: %w", err))
	}
	return decodeTree(stdout.Bytes(), opts.SourceName)
}
