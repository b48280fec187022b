// Package config holds runtime configuration: defaults, file/env overlays,
// CLI flag binding, and validation. Defaults match the legacy resize script
// (scale 10% then 500%, "_pix" suffix, JPEG output) for parity.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// --- Enum types for validated string fields ---

// Backend selects the transform implementation.
type Backend string

const (
	BackendMagick Backend = "magick" // External ImageMagick process (default).
	BackendNative Backend = "native" // In-process Go decoder/scaler.
)

// CollisionPolicy controls what happens when two inputs derive the same output.
type CollisionPolicy string

const (
	CollisionOverwrite CollisionPolicy = "overwrite" // Last writer wins, with a warning (default).
	CollisionDedupe    CollisionPolicy = "dedupe"    // Append " - dupN" to later claimants.
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Percentage bounds accepted for -scale arguments.
const (
	MinScalePercent = 1
	MaxScalePercent = 10000
)

// Config holds all runtime settings. It is populated by [DefaultConfig],
// overlaid by [LoadFile] and [ApplyEnv], then by bound CLI flags, before being
// passed (by pointer) to packages that need it.
type Config struct {
	// Paths.
	InputDir  string `yaml:"input_dir"`
	OutputDir string `yaml:"output_dir"` // Empty: write outputs next to inputs.

	// Transform.
	Backend          Backend `yaml:"backend"`
	Tool             string  `yaml:"tool"`              // Default: "convert". Use "magick" for ImageMagick 7.
	DownscalePercent int     `yaml:"downscale_percent"` // Default: 10.
	UpscalePercent   int     `yaml:"upscale_percent"`   // Default: 500.
	Quality          int     `yaml:"quality"`           // JPEG quality; 0 leaves the tool default.

	// Output naming.
	Suffix          string          `yaml:"suffix"` // Default: "_pix".
	Format          string          `yaml:"format"` // Default: "jpg".
	CollisionPolicy CollisionPolicy `yaml:"collision_policy"`

	// Discovery.
	Extensions []string `yaml:"extensions"` // Empty: every regular file is a candidate.

	// Behavior flags.
	DryRun       bool `yaml:"dry_run"`
	SkipExisting bool `yaml:"skip_existing"` // Default: false; outputs are overwritten like the script did.
	FailFast     bool `yaml:"fail_fast"`     // Abort the batch on the first failed file.
	Jobs         int  `yaml:"jobs"`          // Default: 1 (sequential).

	// Display and logging.
	Verbose       bool      `yaml:"verbose"`
	ShowFileStats bool      `yaml:"show_file_stats"` // Default: true.
	ColorMode     ColorMode `yaml:"color"`
	LogFile       string    `yaml:"log_file"`
}

// DefaultConfig returns a Config with all defaults matching the legacy
// resize script behavior.
func DefaultConfig() Config {
	return Config{
		InputDir:         "assets/photography",
		Backend:          BackendMagick,
		Tool:             "convert",
		DownscalePercent: 10,
		UpscalePercent:   500,
		Suffix:           "_pix",
		Format:           "jpg",
		CollisionPolicy:  CollisionOverwrite,
		Jobs:             1,
		ShowFileStats:    true,
		ColorMode:        ColorAuto,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Formats each backend can write.
var (
	magickFormats = map[string]bool{"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true}
	nativeFormats = map[string]bool{"jpg": true, "jpeg": true, "png": true}
)

// Validate checks enum fields, numeric ranges and naming parameters, and
// canonicalizes Format and Extensions to lower case.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMagick, BackendNative:
		// valid
	default:
		return errors.New("invalid backend (use 'magick' or 'native')")
	}

	switch c.CollisionPolicy {
	case CollisionOverwrite, CollisionDedupe:
		// valid
	default:
		return errors.New("invalid collision policy (use 'overwrite' or 'dedupe')")
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	if err := checkPercent("downscale", c.DownscalePercent); err != nil {
		return err
	}
	if err := checkPercent("upscale", c.UpscalePercent); err != nil {
		return err
	}
	if c.Quality < 0 || c.Quality > 100 {
		return fmt.Errorf("quality must be between 0 and 100 (got %d)", c.Quality)
	}
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1 (got %d)", c.Jobs)
	}

	if strings.TrimSpace(c.Suffix) == "" {
		return errors.New("suffix must not be empty")
	}
	if strings.ContainsAny(c.Suffix, `/\`) {
		return fmt.Errorf("suffix %q must not contain path separators", c.Suffix)
	}

	c.Format = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c.Format), "."))
	allowed := magickFormats
	if c.Backend == BackendNative {
		allowed = nativeFormats
	}
	if !allowed[c.Format] {
		return fmt.Errorf("unsupported output format %q for %s backend", c.Format, c.Backend)
	}

	if c.Backend == BackendMagick && strings.TrimSpace(c.Tool) == "" {
		return errors.New("tool must not be empty for the magick backend")
	}

	c.Extensions = normalizeExtensions(c.Extensions)

	if c.InputDir == "" {
		return errors.New("need an input directory")
	}
	return nil
}

func checkPercent(name string, v int) error {
	if v < MinScalePercent || v > MaxScalePercent {
		return fmt.Errorf("%s percent must be between %d and %d (got %d)",
			name, MinScalePercent, MaxScalePercent, v)
	}
	return nil
}

// normalizeExtensions lower-cases entries and ensures a leading dot, so
// "PNG", ".png" and "png" all match files ending in ".png".
func normalizeExtensions(exts []string) []string {
	var out []string
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}

// ValidatePaths ensures the resolved output directory is not inside (or equal
// to) the resolved input directory when a separate output directory is used.
// Both arguments must be absolute, symlink-resolved paths.
func (c *Config) ValidatePaths(inputAbs, outputAbs string) error {
	sep := string(filepath.Separator)
	if outputAbs == inputAbs || strings.HasPrefix(outputAbs+sep, inputAbs+sep) {
		return errors.New("output directory must not be inside input directory")
	}
	return nil
}
