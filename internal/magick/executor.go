package magick

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strings"

	"github.com/backmassage/pixmaster/internal/config"
	"github.com/backmassage/pixmaster/internal/transform"
)

// Tool runs pixelation requests through an ImageMagick executable.
type Tool struct {
	Path    string
	Verbose bool      // Tee stderr to Stderr in real time.
	Stderr  io.Writer // Defaults to os.Stderr.
}

var _ transform.Transformer = (*Tool)(nil)

// New returns a Tool for cfg.Tool.
func New(cfg *config.Config) *Tool {
	return &Tool{Path: cfg.Tool, Verbose: cfg.Verbose}
}

// Transform builds and runs the command for req. stderr is always captured
// for the result; when verbose it is also tee'd to the terminal.
func (t *Tool) Transform(ctx context.Context, req transform.Request) transform.Result {
	args := Build(t.Path, req)
	return t.run(ctx, args)
}

func (t *Tool) run(ctx context.Context, args []string) transform.Result {
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	var stderrBuf bytes.Buffer
	if t.Verbose {
		tee := t.Stderr
		if tee == nil {
			tee = os.Stderr
		}
		cmd.Stderr = io.MultiWriter(&stderrBuf, tee)
	} else {
		cmd.Stderr = &stderrBuf
	}

	err := cmd.Run()
	res := transform.Result{Stderr: stderrBuf.String()}
	if err == nil {
		return res
	}

	var exitErr *exec.ExitError
	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		res.ExitCode = -1
		res.Err = fmt.Errorf("%w: %s", transform.ErrToolNotFound, args[0])
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		if ctx.Err() != nil {
			res.Err = ctx.Err()
			break
		}
		res.Err = &transform.ExitError{Code: res.ExitCode, Class: Classify(res.Stderr)}
	default:
		res.ExitCode = -1
		res.Err = err
	}
	return res
}

// Version returns the first line of "<tool> -version".
func (t *Tool) Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, t.Path, "-version").Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", transform.ErrToolNotFound, t.Path)
		}
		return "", err
	}
	first := strings.TrimSpace(string(out))
	if idx := strings.Index(first, "\n"); idx > 0 {
		first = first[:idx]
	}
	return first, nil
}

// Delegates returns the "Delegates (built-in):" list from "<tool> -version",
// or nil when the tool does not report one.
func (t *Tool) Delegates(ctx context.Context) ([]string, error) {
	out, err := exec.CommandContext(ctx, t.Path, "-version").Output()
	if err != nil {
		return nil, err
	}
	for _, line := range strings.Split(string(out), "\n") {
		if rest, ok := strings.CutPrefix(line, "Delegates (built-in):"); ok {
			return strings.Fields(rest), nil
		}
	}
	return nil, nil
}
