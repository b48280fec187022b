package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/backmassage/pixmaster/internal/config"
	"github.com/backmassage/pixmaster/internal/display"
	"github.com/backmassage/pixmaster/internal/logging"
	"github.com/backmassage/pixmaster/internal/naming"
	"github.com/backmassage/pixmaster/internal/planner"
	"github.com/backmassage/pixmaster/internal/probe"
	"github.com/backmassage/pixmaster/internal/transform"
)

// stderrTailLines bounds how much backend output is echoed on failure.
const stderrTailLines = 20

// Run is the top-level batch entry point. It discovers files, resolves their
// output paths, pixelates each one (cfg.Jobs at a time), and returns
// aggregate stats. A failing file is logged and counted, and the batch moves
// on unless cfg.FailFast is set.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger, tr transform.Transformer) RunStats {
	return newRunner(cfg, log, tr).run(ctx)
}

// run executes one batch over cfg.InputDir. Output claims stay recorded in
// r.resolver, so a watcher reusing r resolves collisions consistently.
func (r *runner) run(ctx context.Context) RunStats {
	cfg, log := r.cfg, r.log

	entries, errs := Discover(cfg.InputDir, r.discoverOptions())
	for _, err := range errs {
		log.Warn("Skipping unreadable path: %v", err)
	}
	if len(entries) == 0 && len(errs) > 0 {
		if _, err := os.Stat(cfg.InputDir); err != nil {
			log.Error("File discovery failed: %v", err)
			r.count(func(s *RunStats) { s.Failed++ })
			return r.snapshot()
		}
	}

	r.count(func(s *RunStats) { s.Total += len(entries) })
	r.logBatchHeader()

	r.runAll(ctx, r.group(entries))

	r.logSummary()
	return r.snapshot()
}

// runner carries the per-run state shared by workers.
type runner struct {
	cfg      *config.Config
	log      *logging.Logger
	tr       transform.Transformer
	resolver *naming.CollisionResolver
	outOpts  naming.OutputOptions

	mu    sync.Mutex
	stats RunStats
}

func newRunner(cfg *config.Config, log *logging.Logger, tr transform.Transformer) *runner {
	return &runner{
		cfg:      cfg,
		log:      log,
		tr:       tr,
		resolver: naming.NewCollisionResolver(cfg.CollisionPolicy, cfg.Suffix),
		outOpts: naming.OutputOptions{
			InputRoot: cfg.InputDir,
			OutputDir: cfg.OutputDir,
			Suffix:    cfg.Suffix,
			Format:    cfg.Format,
		},
	}
}

func (r *runner) discoverOptions() DiscoverOptions {
	opts := DiscoverOptions{Suffix: r.cfg.Suffix, Extensions: r.cfg.Extensions}
	if r.cfg.OutputDir != "" {
		opts.Prune = []string{r.cfg.OutputDir}
	}
	return opts
}

// task is the unit handed to a worker: every entry mapping to one output
// path, in discovery order. Keeping them in one worker means the last
// claimant's output is the one left on disk even with several jobs.
type task struct {
	output  string
	entries []Entry
}

// group resolves output paths in discovery order and batches entries that
// share an output.
func (r *runner) group(entries []Entry) []*task {
	var tasks []*task
	byOutput := make(map[string]*task)
	for _, e := range entries {
		out, displaced := r.resolver.Resolve(e.Path, naming.GetOutputPath(e.Path, r.outOpts))
		if displaced != "" {
			r.log.Warn("Output collision: %s and %s both map to %s; the later one wins",
				r.rel(displaced), r.rel(e.Path), r.rel(out))
		}
		t, ok := byOutput[out]
		if !ok {
			t = &task{output: out}
			byOutput[out] = t
			tasks = append(tasks, t)
		}
		t.entries = append(t.entries, e)
	}
	return tasks
}

// runAll processes tasks with at most cfg.Jobs running concurrently.
func (r *runner) runAll(ctx context.Context, tasks []*task) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Jobs)

	for _, t := range tasks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			for _, e := range t.entries {
				if gctx.Err() != nil {
					return nil
				}
				if err := r.processFile(gctx, e, t.output); err != nil && r.cfg.FailFast {
					return err
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.log.Error("Stopping after first failure (--fail-fast): %v", err)
	}
	if ctx.Err() != nil {
		r.log.Warn("Interrupted")
		r.mu.Lock()
		r.stats.Interrupted = true
		r.mu.Unlock()
	}
}

// processFile handles one image: stat → probe → plan → transform → stats.
// It returns a non-nil error only when the file failed.
func (r *runner) processFile(ctx context.Context, e Entry, output string) error {
	r.mu.Lock()
	r.stats.Current++
	current, total := r.stats.Current, r.stats.Total
	r.mu.Unlock()

	r.log.Info("[%d/%d] %s", current, total, r.rel(e.Path))
	defer r.separator()

	fi, err := os.Stat(e.Path)
	if err != nil {
		r.log.Error("File not found: %s", e.Path)
		r.count(func(s *RunStats) { s.Failed++ })
		return err
	}

	var info *probe.ImageInfo
	if r.cfg.ShowFileStats {
		info, err = probe.Probe(e.Path)
		if err != nil {
			r.log.Debug("  Probe: %v", err)
		} else {
			r.log.Info("  Image: %s | %s | %s", info.Resolution(), info.Format, display.FormatBytes(info.Size))
		}
	}

	plan := planner.BuildPlan(r.cfg, e.Path, info, output)
	if plan.Action == planner.ActionSkipExisting {
		r.log.Warn("Skip (exists): %s", r.rel(output))
		r.count(func(s *RunStats) { s.Skipped++ })
		return nil
	}

	r.log.Info("  -> %s", r.rel(output))
	if d := plan.Dimensions(); d != "" {
		r.log.Debug("  Scale: %s", d)
	}

	if r.cfg.DryRun {
		r.log.Success("[DRY] Would pixelate")
		r.count(func(s *RunStats) { s.Pixelated++ })
		return nil
	}

	start := time.Now()
	res := transform.WriteAtomic(ctx, r.tr, plan.Request)
	if !res.OK() {
		if errors.Is(res.Err, context.Canceled) || errors.Is(res.Err, context.DeadlineExceeded) {
			r.log.Warn("Interrupted: %s", r.rel(e.Path))
			return nil
		}
		r.log.Error("Pixelation failed: %s (exit %d): %v", e.Path, res.ExitCode, res.Err)
		logStderr(r.log, res.Stderr)
		r.count(func(s *RunStats) { s.Failed++ })
		return fmt.Errorf("%s: %w", e.Path, res.Err)
	}
	if res.Stderr != "" {
		r.log.Debug("  Tool output: %s", strings.TrimSpace(res.Stderr))
	}

	inSize := fi.Size()
	var outSize int64
	if outInfo, err := os.Stat(output); err == nil {
		outSize = outInfo.Size()
	}

	r.count(func(s *RunStats) {
		s.TotalInputBytes += inSize
		s.TotalOutputBytes += outSize
		s.Pixelated++
	})
	r.log.Success("Pixelated in %s (%s of original)", time.Since(start).Round(time.Millisecond), display.FormatRatio(outSize, inSize))
	return nil
}

func (r *runner) count(update func(*RunStats)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	update(&r.stats)
}

func (r *runner) snapshot() RunStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// separator prints the blank line between files. Interleaved workers would
// scatter blank lines, so it is skipped when running concurrently.
func (r *runner) separator() {
	if r.cfg.Jobs <= 1 {
		r.log.Blank()
	}
}

// rel shortens path for display relative to the input root.
func (r *runner) rel(path string) string {
	if rel, err := filepath.Rel(r.cfg.InputDir, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

func logStderr(log *logging.Logger, stderr string) {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return
	}
	log.Error("Last tool output:")
	lines := strings.Split(stderr, "\n")
	start := 0
	if len(lines) > stderrTailLines {
		start = len(lines) - stderrTailLines
	}
	for _, l := range lines[start:] {
		log.Error("  %s", l)
	}
}

// --- Logging helpers ---

func (r *runner) logBatchHeader() {
	cfg := r.cfg
	r.log.Info("Found %d files in %s", r.stats.Total, cfg.InputDir)
	switch cfg.Backend {
	case config.BackendNative:
		r.log.Info("Backend: native (Go image decoders)")
	default:
		r.log.Info("Backend: %s", cfg.Tool)
	}
	r.log.Info("Scale: %d%% then %d%%, output: *%s.%s", cfg.DownscalePercent, cfg.UpscalePercent, cfg.Suffix, cfg.Format)
	if cfg.Quality > 0 {
		r.log.Info("Quality: %d", cfg.Quality)
	}
	if cfg.OutputDir != "" {
		r.log.Info("Output directory: %s", cfg.OutputDir)
	}
	if len(cfg.Extensions) > 0 {
		r.log.Info("Extensions: %s", strings.Join(cfg.Extensions, ", "))
	}
	if cfg.CollisionPolicy == config.CollisionDedupe {
		r.log.Info("Collisions: dedupe")
	}
	if cfg.Jobs > 1 {
		r.log.Info("Jobs: %d", cfg.Jobs)
	}
	if cfg.SkipExisting {
		r.log.Info("Existing outputs: skip")
	}
	if cfg.FailFast {
		r.log.Info("Failure policy: stop on first failure")
	}
	if cfg.DryRun {
		r.log.Warn("Dry run: nothing will be written")
	}
	r.log.Blank()
}

func (r *runner) logSummary() {
	s := &r.stats
	r.log.Info("==============================")
	r.log.Info("Done: %d pixelated, %d skipped, %d failed", s.Pixelated, s.Skipped, s.Failed)
	r.log.Info("Summary report:")
	r.log.Info("  Total files processed: %d of %d", s.Current, s.Total)

	if r.cfg.DryRun {
		r.log.Info("  Size change: n/a (dry run)")
		return
	}
	if s.Pixelated == 0 {
		return
	}

	growth := s.Growth()
	line := fmt.Sprintf("  Size change: %s (input %s -> output %s)",
		display.FormatBytesWithSign(growth),
		display.FormatBytes(s.TotalInputBytes),
		display.FormatBytes(s.TotalOutputBytes))
	if growth <= 0 {
		r.log.Success("%s", line)
	} else {
		r.log.Warn("%s", line)
	}
}
