package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/structpb"

	cssbackend "github.com/honeybbq/cssexplore/backend/css"
	"github.com/honeybbq/cssexplore/pkg/cssexplore"
	"github.com/honeybbq/cssexplore/pkg/diff"
	"github.com/honeybbq/cssexplore/pkg/renderer"
	cssrenderer "github.com/honeybbq/cssexplore/pkg/renderer/css"
)

type cliOptions struct {
	ignoreCharset    bool
	ignoreEmptyRules bool
	write            bool
	list             bool
	check            bool
	diff             bool
	dumpAST          bool
	parser           string
	parserCmd        string
	timeout          time.Duration
	configPath       string
	jobs             int
	color            string
	verbose          bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		exitWithError(err)
	}
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}
	cmd := &cobra.Command{
		Use:   "cssexplore [flags] [file...]",
		Short: "Reformat CSS stylesheets into a canonical layout",
		Long: `cssexplore parses each stylesheet with the Node "css" package and prints it
back with normalized indentation and joined selectors. With no files, or with
"-", the stylesheet is read from standard input.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			cmd.SilenceErrors = true
			return run(cmd, args, opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.ignoreCharset, "ignore-charset", false, "omit @charset statements")
	flags.BoolVar(&opts.ignoreEmptyRules, "ignore-empty-rules", false, "omit rules without declarations")
	flags.BoolVarP(&opts.write, "write", "w", false, "write result to the source file instead of stdout")
	flags.BoolVarP(&opts.list, "list", "l", false, "list files whose formatting differs")
	flags.BoolVar(&opts.check, "check", false, "exit with an error if any file is not formatted")
	flags.BoolVarP(&opts.diff, "diff", "d", false, "display diffs instead of rewriting files")
	flags.BoolVar(&opts.dumpAST, "dump-ast", false, "print the typed AST as YAML instead of CSS")
	flags.StringVar(&opts.parser, "parser", "exec", "parser: exec (run the css parser process) | json (input is a parsed tree)")
	flags.StringVar(&opts.parserCmd, "parser-cmd", "", "command line of the parser process (default: node with the embedded css_to_json script)")
	flags.DurationVar(&opts.timeout, "timeout", 0, "maximum time for each parser run (0 = no limit)")
	flags.StringVar(&opts.configPath, "config", "", "path to "+cssexplore.ConfigFileName+" (default: search from the working directory upwards)")
	flags.IntVarP(&opts.jobs, "jobs", "j", 0, "files formatted concurrently (default: GOMAXPROCS)")
	flags.StringVar(&opts.color, "color", "auto", "colorize diffs: auto | always | never")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")
	return cmd
}

func run(cmd *cobra.Command, args []string, opts *cliOptions) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	logger := newLogger(stderr, opts.verbose)

	paths := args
	if len(paths) == 0 {
		paths = []string{"-"}
	}
	if opts.write {
		for _, path := range paths {
			if path == "-" {
				return errors.New("cannot use --write with standard input")
			}
		}
	}

	cfg, err := loadConfig(opts.configPath, logger)
	if err != nil {
		return err
	}
	formatOpts := cssexplore.FormatOptions{}
	if err := cfg.Apply(&formatOpts); err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("ignore-charset") {
		formatOpts.IgnoreCharset = opts.ignoreCharset
	}
	if flags.Changed("ignore-empty-rules") {
		formatOpts.IgnoreEmptyRules = opts.ignoreEmptyRules
	}
	if flags.Changed("timeout") {
		formatOpts.Parse.Timeout = opts.timeout
	}

	parser, err := buildParser(opts, cfg)
	if err != nil {
		return err
	}
	backend := cssbackend.New(cssrenderer.NewPlainTextRenderer(), parser)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.dumpAST {
		return dumpPaths(ctx, stdout, cmd.InOrStdin(), backend, paths, formatOpts.Parse)
	}

	results, err := cssexplore.FormatPaths(ctx, backend, paths, cssexplore.DriverOptions{
		Format: formatOpts,
		Jobs:   opts.jobs,
		Logger: logger,
		Stdin:  cmd.InOrStdin(),
	})
	if err != nil {
		return err
	}

	colors := diff.PlainColors()
	if useColor(opts.color, stdout) {
		color.NoColor = false
		colors = diff.NewColors()
	}

	var hasErrors, hasChanges bool
	for _, res := range results {
		if res.Err != nil {
			hasErrors = true
			fmt.Fprintf(stderr, "%s: %v\n", res.Path, res.Err)
			continue
		}
		changed := res.Changed()
		hasChanges = hasChanges || changed

		if opts.list && changed {
			fmt.Fprintln(stdout, res.Path)
		}
		if opts.diff {
			if err := diff.Compute(res.Path, res.Original, res.Formatted).WriteUnified(stdout, colors); err != nil {
				return fmt.Errorf("write diff: %w", err)
			}
		}
		if opts.write && changed {
			if err := writeOutput(res.Path, res.Formatted); err != nil {
				hasErrors = true
				fmt.Fprintf(stderr, "%s: %v\n", res.Path, err)
				continue
			}
			logger.Info("rewrote", "path", res.Path)
		}
		if !opts.list && !opts.diff && !opts.write && !opts.check {
			if _, err := stdout.Write(res.Formatted); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
		}
	}

	if hasErrors {
		return errors.New("failed to format some files")
	}
	if opts.check && hasChanges {
		return errors.New("formatting changes required")
	}
	return nil
}

func loadConfig(path string, logger *slog.Logger) (*cssexplore.Config, error) {
	if path == "" {
		found, ok, err := cssexplore.FindConfig(".")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		path = found
	}
	cfg, err := cssexplore.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded config", "path", cfg.Path)
	return cfg, nil
}

func buildParser(opts *cliOptions, cfg *cssexplore.Config) (renderer.Parser[*structpb.Struct], error) {
	switch strings.ToLower(opts.parser) {
	case "json":
		return cssrenderer.NewJSONParser(), nil
	case "exec":
		var command, env []string
		if cfg != nil {
			command, env = cfg.Parser.Command, cfg.Parser.Env
		}
		if opts.parserCmd != "" {
			command = strings.Fields(opts.parserCmd)
		}
		p := cssrenderer.NewExecParser(command...)
		p.Env = env
		return p, nil
	default:
		return nil, fmt.Errorf("unknown parser %q (use exec|json)", opts.parser)
	}
}

func dumpPaths(ctx context.Context, w io.Writer, stdin io.Reader, backend cssexplore.Backend, paths []string, opts cssexplore.ParseOptions) error {
	for i, path := range paths {
		src, err := readInput(path, stdin)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		popts := opts
		popts.SourceName = path
		doc, err := backend.ToAST(ctx, src, popts)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := writeAST(w, i, path, doc); err != nil {
			return err
		}
	}
	return nil
}

func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// writeOutput 保留原文件权限写回。
func writeOutput(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	return os.WriteFile(path, data, mode)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
