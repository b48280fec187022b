// Package check provides system diagnostics (the check command) and
// pre-pipeline dependency validation (CheckDeps) for the configured backend.
package check

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/backmassage/pixmaster/internal/config"
	"github.com/backmassage/pixmaster/internal/magick"
	"github.com/backmassage/pixmaster/internal/native"
	"github.com/backmassage/pixmaster/internal/probe"
	"github.com/backmassage/pixmaster/internal/transform"
)

// Sentinel errors returned by CheckDeps when the backend is unusable.
var (
	ErrToolNotFound   = errors.New("image tool not found on PATH")
	ErrToolTestFailed = errors.New("test pixelation failed (tool exists but is unusable)")
)

// Test image geometry. 40x20 at 10% is 4x2, and 4x2 at the upscale factor
// gives the expected output size.
const (
	testWidth  = 40
	testHeight = 20
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...any)
	Success(string, ...any)
	Warn(string, ...any)
	Error(string, ...any)
	Debug(string, ...any)
}

// RunCheck prints the availability of the configured backend: tool path,
// version, delegates, and a test pixelation. It is informational only and
// does not stop on failure.
func RunCheck(ctx context.Context, cfg *config.Config, log Logger) {
	log.Info("=== System Check ===")

	switch cfg.Backend {
	case config.BackendNative:
		log.Success("Backend: native (Go image decoders)")
		log.Info("Decoders: %s", strings.Join(native.Decoders, ", "))
	default:
		checkTool(ctx, cfg, log)
	}

	log.Info("Testing %d%% -> %d%% pixelation to %s...", cfg.DownscalePercent, cfg.UpscalePercent, cfg.Format)
	if err := testPixelate(ctx, cfg); err != nil {
		log.Error("Test pixelation failed: %v", err)
		return
	}
	log.Success("Test pixelation works")
}

// checkTool logs where the tool lives, its version line and delegates.
func checkTool(ctx context.Context, cfg *config.Config, log Logger) {
	path, err := exec.LookPath(cfg.Tool)
	if err != nil {
		log.Error("%s not found", cfg.Tool)
		if cfg.Tool == "convert" {
			log.Info("  ImageMagick 7 installs 'magick'; try --tool magick or --backend native")
		}
		return
	}
	log.Info("Tool: %s", path)

	tool := &magick.Tool{Path: cfg.Tool}
	version, err := tool.Version(ctx)
	if err != nil {
		log.Warn("%s found but -version failed: %v", cfg.Tool, err)
		return
	}
	log.Success("%s", version)

	delegates, err := tool.Delegates(ctx)
	if err != nil || len(delegates) == 0 {
		log.Debug("No delegate list reported")
		return
	}
	log.Info("Delegates: %s", strings.Join(delegates, " "))
	if cfg.Format == "webp" && !contains(delegates, "webp") {
		log.Warn("webp delegate missing; --format webp will fail")
	}
}

// CheckDeps is the pre-pipeline validation: the magick backend needs its
// tool on PATH and a passing test pixelation; the native backend only needs
// the test pixelation. Returns a sentinel error on failure.
func CheckDeps(ctx context.Context, cfg *config.Config) error {
	if cfg.Backend == config.BackendMagick {
		if _, err := exec.LookPath(cfg.Tool); err != nil {
			return fmt.Errorf("%w: %s", ErrToolNotFound, cfg.Tool)
		}
	}
	if err := testPixelate(ctx, cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrToolTestFailed, err)
	}
	return nil
}

// --- internal helpers ---

// testPixelate generates a small PNG in a temp directory, runs it through
// the configured backend, and verifies the output dimensions.
func testPixelate(ctx context.Context, cfg *config.Config) error {
	dir, err := os.MkdirTemp("", "pixmaster-check-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "check.png")
	if err := writeTestImage(in); err != nil {
		return err
	}
	out := filepath.Join(dir, "check"+cfg.Suffix+"."+cfg.Format)

	res := transform.WriteAtomic(ctx, backend(cfg), transform.Request{
		Input:     in,
		Output:    out,
		Downscale: cfg.DownscalePercent,
		Upscale:   cfg.UpscalePercent,
		Format:    cfg.Format,
		Quality:   cfg.Quality,
	})
	if !res.OK() {
		if tail := lastLine(res.Stderr); tail != "" {
			return fmt.Errorf("%w (%s)", res.Err, tail)
		}
		return res.Err
	}

	info, err := probe.Probe(out)
	if err != nil {
		return err
	}
	_, _, wantW, wantH := transform.TargetSize(testWidth, testHeight, cfg.DownscalePercent, cfg.UpscalePercent)
	if info.Width != wantW || info.Height != wantH {
		return fmt.Errorf("output is %s, want %dx%d", info.Resolution(), wantW, wantH)
	}
	return nil
}

func backend(cfg *config.Config) transform.Transformer {
	if cfg.Backend == config.BackendNative {
		return native.Scaler{}
	}
	return &magick.Tool{Path: cfg.Tool}
}

func writeTestImage(path string) error {
	img := image.NewRGBA(image.Rect(0, 0, testWidth, testHeight))
	for y := 0; y < testHeight; y++ {
		for x := 0; x < testWidth; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 6), uint8(y * 12), 96, 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.LastIndex(s, "\n"); idx >= 0 {
		return s[idx+1:]
	}
	return s
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
