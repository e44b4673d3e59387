package probe

import (
	"context"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"

	"treeprobe/internal/logging"
)

// MaxPathLength returns the padding width that aligns summary lines for paths.
func MaxPathLength(paths []string) int {
	longest := 0
	for _, p := range paths {
		longest = max(longest, len(p))
	}
	return longest
}

// ProbeFiles probes paths with at most workers files in flight, each on its own
// engine parser, and writes every file's output to out in input order. workers
// <= 0 means one per CPU. The first failing file cancels the rest; every file
// that did finish still has its output written.
func (p *Prober) ProbeFiles(ctx context.Context, paths []string, workers int, out io.Writer) ([]*Result, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]*Result, len(paths))
	done := make([]chan struct{}, len(paths))
	for i := range done {
		done[i] = make(chan struct{})
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	writeErr := make(chan error, 1)
	go func() {
		defer close(writeErr)
		for i := range paths {
			<-done[i]
			if results[i] == nil {
				continue
			}
			if _, err := io.WriteString(out, results[i].Output); err != nil {
				writeErr <- err
				return
			}
		}
	}()

	for i, path := range paths {
		eg.Go(func() error {
			defer close(done[i])
			if err := egCtx.Err(); err != nil {
				return err
			}
			result, err := p.ProbeFile(egCtx, path)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}

	err := eg.Wait()
	if werr := <-writeErr; werr != nil && err == nil {
		err = werr
	}
	logging.ParseDebug("probed %d files with %d workers", len(paths), workers)
	return results, err
}
