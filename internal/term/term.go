// Package term decides whether console output is colored and paints text
// with the ANSI styles pixmaster uses for log levels and the banner.
package term

import (
	"os"
	"strings"
	"sync/atomic"

	"github.com/backmassage/pixmaster/internal/config"
)

// Color is a bold bright ANSI foreground style.
type Color int

const (
	Red Color = iota
	Green
	Yellow
	Blue
	Cyan
	Magenta
)

var codes = [...]string{
	Red:     "\033[1;91m",
	Green:   "\033[1;92m",
	Yellow:  "\033[1;93m",
	Blue:    "\033[1;94m",
	Cyan:    "\033[1;96m",
	Magenta: "\033[1;95m",
}

const reset = "\033[0m"

var enabled atomic.Bool

// Configure resolves mode against the environment and stdout. It is called
// once from logging.NewLogger; tests call it directly.
func Configure(mode config.ColorMode) {
	enabled.Store(resolve(mode, os.Getenv, os.Stdout))
}

// Paint wraps s in c when colors are enabled and returns s unchanged otherwise.
func Paint(c Color, s string) string {
	if !enabled.Load() || int(c) >= len(codes) {
		return s
	}
	return codes[c] + s + reset
}

// resolve honours NO_COLOR (https://no-color.org) and TERM=dumb in auto mode.
func resolve(mode config.ColorMode, getenv func(string) string, out *os.File) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if getenv("NO_COLOR") != "" || strings.EqualFold(getenv("TERM"), "dumb") {
		return false
	}
	return isTerminal(out)
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
