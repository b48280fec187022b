// Package transform defines the image-transform invocation contract shared
// by the external ImageMagick backend and the in-process Go backend, plus
// atomic output replacement.
package transform

import (
	"context"
	"errors"
	"fmt"
)

// Request describes one pixelation: scale input down, scale it back up, and
// write the result to Output in Format.
type Request struct {
	Input     string
	Output    string
	Downscale int    // Percent, first step.
	Upscale   int    // Percent, second step.
	Format    string // Output format without dot ("jpg", "png", ...).
	Quality   int    // JPEG quality; 0 uses the backend default.
}

// Result holds the outcome of a single transform invocation. Stderr carries
// whatever diagnostic output the backend produced, even on success.
type Result struct {
	Stderr   string
	ExitCode int // -1 when the process never started or was killed.
	Err      error
}

// OK reports whether the transform succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Transformer runs a single pixelation request to completion.
type Transformer interface {
	Transform(ctx context.Context, req Request) Result
}

// Sentinel errors classifying transform failures. Backends wrap them so
// callers can use errors.Is.
var (
	ErrToolNotFound      = errors.New("image tool not found")
	ErrNonZeroExit       = errors.New("image tool exited with non-zero status")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrCorruptInput      = errors.New("corrupt or unreadable image")
)

// ExitError wraps ErrNonZeroExit (or a more specific class) with the exit code.
type ExitError struct {
	Code  int
	Class error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%v (exit %d)", e.Class, e.Code)
}

func (e *ExitError) Unwrap() []error {
	if e.Class == ErrNonZeroExit {
		return []error{ErrNonZeroExit}
	}
	return []error{e.Class, ErrNonZeroExit}
}

// ScaleDim scales one pixel dimension by pct percent, rounding to nearest
// and never returning less than 1.
func ScaleDim(n, pct int) int {
	v := (n*pct + 50) / 100
	if v < 1 {
		return 1
	}
	return v
}

// TargetSize returns the intermediate (shrunk) and final dimensions for a
// w×h image pixelated with the given percentages.
func TargetSize(w, h, down, up int) (smallW, smallH, outW, outH int) {
	smallW, smallH = ScaleDim(w, down), ScaleDim(h, down)
	return smallW, smallH, ScaleDim(smallW, up), ScaleDim(smallH, up)
}
