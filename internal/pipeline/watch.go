package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/backmassage/pixmaster/internal/config"
	"github.com/backmassage/pixmaster/internal/logging"
	"github.com/backmassage/pixmaster/internal/naming"
	"github.com/backmassage/pixmaster/internal/transform"
)

// DebounceDelay is how long a path must stay quiet before it is pixelated.
// Image writers usually emit several Write events per file.
var DebounceDelay = 500 * time.Millisecond

// Watch runs one batch over cfg.InputDir and then pixelates new or modified
// files until ctx is cancelled. The tree is watched before the batch starts,
// so files landing during the batch are queued rather than missed. Newly
// created subdirectories are watched as they appear. Outputs, temp files and
// hidden files never trigger work.
func Watch(ctx context.Context, cfg *config.Config, log *logging.Logger, tr transform.Transformer) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer fw.Close()

	w := &watcher{
		runner:  newRunner(cfg, log, tr),
		fs:      fw,
		pending: make(map[string]*time.Timer),
		work:    make(chan string, 64),
		done:    ctx.Done(),
	}
	w.opts = w.runner.discoverOptions()

	if err := w.addTree(cfg.InputDir); err != nil {
		return err
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.loop(ctx)
	}()

	stats := w.runner.run(ctx)
	if ctx.Err() == nil {
		if stats.Failed > 0 {
			log.Warn("Initial run had %d failures; watching anyway", stats.Failed)
		}
		log.Info("Watching %s for new images (Ctrl-C to stop)", cfg.InputDir)
		w.process(ctx)
	}

	wg.Wait()
	w.stopTimers()
	return nil
}

type watcher struct {
	runner *runner
	opts   DiscoverOptions
	fs     *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*time.Timer
	work    chan string
	done    <-chan struct{}
}

// addTree watches root and every non-pruned directory below it.
func (w *watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			w.runner.log.Warn("Cannot watch %s: %v", path, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.opts.pruned(path, d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			if path == root {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			w.runner.log.Warn("Cannot watch %s: %v", path, err)
		}
		return nil
	})
}

// loop translates fsnotify events into debounced work until ctx ends.
func (w *watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.runner.log.Warn("Watcher error: %v", err)
		}
	}
}

func (w *watcher) handle(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return
	}
	fi, err := os.Stat(ev.Name)
	if err != nil {
		return
	}
	if fi.IsDir() {
		if ev.Has(fsnotify.Create) && !w.opts.pruned(ev.Name, fi.Name()) {
			if err := w.addTree(ev.Name); err != nil {
				w.runner.log.Warn("Cannot watch %s: %v", ev.Name, err)
			}
			// Files copied in together with the directory raise no events of their own.
			entries, _ := Discover(ev.Name, w.opts)
			for _, e := range entries {
				w.schedule(e.Path)
			}
		}
		return
	}
	if w.opts.Eligible(ev.Name) {
		w.schedule(ev.Name)
	}
}

// schedule (re)starts the debounce timer for path.
func (w *watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(DebounceDelay, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		select {
		case w.work <- path:
		case <-w.done:
		}
	})
}

func (w *watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for p, t := range w.pending {
		t.Stop()
		delete(w.pending, p)
	}
}

// process pixelates queued paths one at a time until ctx ends. Paths queued
// while the initial batch ran are handled first.
func (w *watcher) process(ctx context.Context) {
	r := w.runner
	for {
		select {
		case <-ctx.Done():
			return
		case path := <-w.work:
			e := newEntry(path)
			out, displaced := r.resolver.Resolve(path, naming.GetOutputPath(path, r.outOpts))
			if displaced != "" {
				r.log.Warn("Output collision: %s replaces output of %s", r.rel(path), r.rel(displaced))
			}
			r.mu.Lock()
			r.stats.Total++
			r.mu.Unlock()
			_ = r.processFile(ctx, e, out)
		}
	}
}
