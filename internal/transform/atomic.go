package transform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TempPrefix starts every in-progress output name. The leading dot keeps
// temp files out of discovery and the watcher.
const TempPrefix = ".pixmaster-"

// OutputPerm is the mode of every finished output. os.CreateTemp creates
// 0600 files and both backends keep the mode of the file they write into.
const OutputPerm os.FileMode = 0o644

// WriteAtomic runs t with req redirected to a hidden temp file beside
// req.Output, then renames it into place. On failure or cancellation the
// temp file is removed and req.Output is left untouched, so concurrent
// writers of one output never interleave partial data.
func WriteAtomic(ctx context.Context, t Transformer, req Request) Result {
	dir := filepath.Dir(req.Output)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{ExitCode: -1, Err: fmt.Errorf("create output directory: %w", err)}
	}

	// Keep the real extension last: ImageMagick picks the encoder from it.
	ext := filepath.Ext(req.Output)
	stem := strings.TrimSuffix(filepath.Base(req.Output), ext)
	tmp, err := os.CreateTemp(dir, TempPrefix+stem+"-*"+ext)
	if err != nil {
		return Result{ExitCode: -1, Err: fmt.Errorf("create temp output: %w", err)}
	}
	tmpPath := tmp.Name()
	tmp.Close()
	if err := os.Chmod(tmpPath, OutputPerm); err != nil {
		os.Remove(tmpPath)
		return Result{ExitCode: -1, Err: fmt.Errorf("chmod temp output: %w", err)}
	}

	staged := req
	staged.Output = tmpPath
	res := t.Transform(ctx, staged)
	if res.Err == nil && ctx.Err() != nil {
		res.Err = ctx.Err()
	}
	if res.Err != nil {
		os.Remove(tmpPath)
		return res
	}

	if err := os.Rename(tmpPath, req.Output); err != nil {
		os.Remove(tmpPath)
		res.Err = fmt.Errorf("rename into place: %w", err)
	}
	return res
}

// IsTemp reports whether path is an in-progress output written by WriteAtomic.
func IsTemp(path string) bool {
	return strings.HasPrefix(filepath.Base(path), TempPrefix)
}
