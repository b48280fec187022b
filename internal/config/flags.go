package config

// This file implements CLI flag binding.
// Flag values are captured into a staging Flags struct and copied into Config
// by Apply, only for flags the user actually set, so the file and environment
// layers hold unless overridden on the command line.

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// Flags holds the staged values of every CLI flag.
type Flags struct {
	values     Config
	ConfigPath string

	forceColor bool
	noColor    bool
	noStats    bool
}

// flagTarget copies one staged flag into cfg.
type flagTarget func(cfg *Config, f *Flags)

// flagTargets maps flag names to the Config field they override.
var flagTargets = map[string]flagTarget{
	"output-dir":    func(c *Config, f *Flags) { c.OutputDir = NormalizeDirArg(f.values.OutputDir) },
	"backend":       func(c *Config, f *Flags) { c.Backend = f.values.Backend },
	"tool":          func(c *Config, f *Flags) { c.Tool = f.values.Tool },
	"downscale":     func(c *Config, f *Flags) { c.DownscalePercent = f.values.DownscalePercent },
	"upscale":       func(c *Config, f *Flags) { c.UpscalePercent = f.values.UpscalePercent },
	"quality":       func(c *Config, f *Flags) { c.Quality = f.values.Quality },
	"suffix":        func(c *Config, f *Flags) { c.Suffix = f.values.Suffix },
	"format":        func(c *Config, f *Flags) { c.Format = f.values.Format },
	"collision":     func(c *Config, f *Flags) { c.CollisionPolicy = f.values.CollisionPolicy },
	"ext":           func(c *Config, f *Flags) { c.Extensions = f.values.Extensions },
	"dry-run":       func(c *Config, f *Flags) { c.DryRun = f.values.DryRun },
	"skip-existing": func(c *Config, f *Flags) { c.SkipExisting = f.values.SkipExisting },
	"fail-fast":     func(c *Config, f *Flags) { c.FailFast = f.values.FailFast },
	"jobs":          func(c *Config, f *Flags) { c.Jobs = f.values.Jobs },
	"verbose":       func(c *Config, f *Flags) { c.Verbose = f.values.Verbose },
	"log":           func(c *Config, f *Flags) { c.LogFile = f.values.LogFile },
	"no-stats":      func(c *Config, f *Flags) { c.ShowFileStats = !f.noStats },
	"color":         func(c *Config, f *Flags) { applyColor(c, f) },
	"no-color":      func(c *Config, f *Flags) { applyColor(c, f) },
}

// BindFlags registers every pixelation flag on fs and returns the staging
// struct that [Flags.Apply] reads from after parsing.
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{values: DefaultConfig()}
	v := &f.values

	fs.StringVar(&f.ConfigPath, "config", "", "YAML config file (default: ./"+DefaultConfigFile+" when present)")

	// Transform.
	fs.Var(&backendValue{&v.Backend}, "backend", "Transform backend: magick | native")
	fs.StringVar(&v.Tool, "tool", v.Tool, "ImageMagick executable (convert, or magick for IM7)")
	fs.IntVar(&v.DownscalePercent, "downscale", v.DownscalePercent, "First scale step, percent")
	fs.IntVar(&v.UpscalePercent, "upscale", v.UpscalePercent, "Second scale step, percent")
	fs.IntVarP(&v.Quality, "quality", "q", v.Quality, "JPEG quality 1-100 (0: tool default)")

	// Output naming.
	fs.StringVarP(&v.OutputDir, "output-dir", "o", "", "Write outputs under this directory instead of next to inputs")
	fs.StringVar(&v.Suffix, "suffix", v.Suffix, "Marker appended to output basenames")
	fs.StringVar(&v.Format, "format", v.Format, "Output format / extension")
	fs.Var(&collisionValue{&v.CollisionPolicy}, "collision", "Output name collisions: overwrite | dedupe")
	fs.StringSliceVar(&v.Extensions, "ext", nil, "Only process these extensions (default: all files)")

	// Behavior.
	fs.BoolVarP(&v.DryRun, "dry-run", "d", false, "Preview only; do not write outputs")
	fs.BoolVar(&v.SkipExisting, "skip-existing", false, "Skip inputs whose output already exists")
	fs.BoolVar(&v.FailFast, "fail-fast", false, "Stop the batch at the first failed file")
	fs.IntVarP(&v.Jobs, "jobs", "j", v.Jobs, "Files processed concurrently")

	// Display.
	fs.BoolVarP(&v.Verbose, "verbose", "v", false, "Verbose output (tee tool stderr)")
	fs.BoolVar(&f.noStats, "no-stats", false, "Hide per-file image stats")
	fs.BoolVar(&f.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&f.noColor, "no-color", false, "Disable colored logs")
	fs.StringVarP(&v.LogFile, "log", "l", "", "Append logs to file")

	return f
}

// Apply copies every flag the user set on fs into cfg.
func (f *Flags) Apply(fs *pflag.FlagSet, cfg *Config) {
	fs.Visit(func(fl *pflag.Flag) {
		if apply, ok := flagTargets[fl.Name]; ok {
			apply(cfg, f)
		}
	})
}

func applyColor(cfg *Config, f *Flags) {
	if f.noColor {
		cfg.ColorMode = ColorNever
	} else if f.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// pflag.Value adapters so we can use enum types (Backend, CollisionPolicy) with fs.Var.

type backendValue struct{ p *Backend }

func (b *backendValue) String() string { return string(*b.p) }
func (b *backendValue) Type() string   { return "backend" }
func (b *backendValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "magick", "imagemagick":
		*b.p = BackendMagick
	case "native", "go":
		*b.p = BackendNative
	default:
		return fmt.Errorf("invalid backend %q (use 'magick' or 'native')", s)
	}
	return nil
}

type collisionValue struct{ p *CollisionPolicy }

func (c *collisionValue) String() string { return string(*c.p) }
func (c *collisionValue) Type() string   { return "policy" }
func (c *collisionValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "overwrite":
		*c.p = CollisionOverwrite
	case "dedupe":
		*c.p = CollisionDedupe
	default:
		return fmt.Errorf("invalid collision policy %q (use 'overwrite' or 'dedupe')", s)
	}
	return nil
}
