package probe

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"treeprobe/internal/logging"
)

// Watcher re-probes one file whenever it is written. It watches the parent
// directory so editors that save by rename keep triggering probes.
type Watcher struct {
	prober   *Prober
	path     string
	out      io.Writer
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	pending time.Time
	runs    int
}

// NewWatcher prepares a watcher for path. Output of every probe goes to out.
func NewWatcher(prober *Prober, path string, out io.Writer) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{
		prober:   prober,
		path:     abs,
		out:      out,
		watcher:  fw,
		debounce: 50 * time.Millisecond,
	}, nil
}

// SetDebounce sets how long writes must settle before a re-probe.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Runs returns how many probes the watcher has completed.
func (w *Watcher) Runs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runs
}

// Run probes the file once, then again after every settled write, until ctx is
// done. It always closes the underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	w.probe(ctx)
	logging.Watch("watching %s", w.path)

	ticker := time.NewTicker(max(w.debounce/2, time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Watch("stopped watching %s", w.path)
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.mu.Lock()
			w.pending = time.Now()
			w.mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logging.Get(logging.CategoryWatch).Error("watch %s: %v", w.path, err)

		case <-ticker.C:
			w.mu.Lock()
			settled := !w.pending.IsZero() && time.Since(w.pending) >= w.debounce
			if settled {
				w.pending = time.Time{}
			}
			w.mu.Unlock()
			if settled {
				w.probe(ctx)
			}
		}
	}
}

func (w *Watcher) probe(ctx context.Context) {
	result, err := w.prober.ProbeFile(ctx, w.path)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		logging.Get(logging.CategoryWatch).Error("%v", err)
		fmt.Fprintf(w.out, "%v\n", err)
	} else {
		io.WriteString(w.out, result.Output)
	}
	w.mu.Lock()
	w.runs++
	w.mu.Unlock()
}
