package cssexplore

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DriverOptions controls FormatPaths.
type DriverOptions struct {
	Format FormatOptions
	Jobs   int          // Concurrent files, <= 0 means GOMAXPROCS
	Logger *slog.Logger // Optional, discarded when nil
	Stdin  io.Reader    // Source for the "-" path, os.Stdin when nil
}

// FormatPaths formats every path with backend. Results follow the order of
// paths; per-file failures are stored in Result.Err and do not stop the other
// files. Standard input is read at most once, so "-" may be repeated. The
// returned error is only set when ctx is done, in which case some
// results may be nil.
func FormatPaths(ctx context.Context, backend Backend, paths []string, opts DriverOptions) ([]*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	stdin := opts.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	// 标准输入只读取一次，重复的 "-" 共享同一份内容
	readStdin := sync.OnceValues(func() ([]byte, error) {
		return io.ReadAll(stdin)
	})

	parent := ctx
	results := make([]*Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := NewResult(path, backend.Name(), opts.Format)
			results[i] = res

			src, err := readSource(path, readStdin)
			if err != nil {
				res.Err = err
				logger.Debug("read failed", "path", path, "error", err)
				return nil
			}
			res.Original = src

			fopts := opts.Format
			if fopts.Parse.SourceName == "" {
				fopts.Parse.SourceName = path
			}
			started := time.Now()
			text, err := backend.Format(ctx, src, fopts)
			if err != nil {
				res.Err = err
				logger.Debug("format failed", "path", path, "error", err)
				return nil
			}
			res.Formatted = []byte(text + "\n")
			res.Metadata.Generated = time.Now()
			logger.Debug("formatted", "path", path, "changed", res.Changed(), "elapsed", time.Since(started))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, parent.Err()
}

func readSource(path string, readStdin func() ([]byte, error)) ([]byte, error) {
	if path == "" || path == "-" {
		return readStdin()
	}
	return os.ReadFile(path)
}
