package config

// This file implements the YAML config file and PIXMASTER_* environment
// overlays. Both are applied on top of DefaultConfig and below CLI flags.

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read from the working directory when --config is not given.
const DefaultConfigFile = "pixmaster.yaml"

// EnvPrefix prefixes every environment variable consulted by [ApplyEnv].
const EnvPrefix = "PIXMASTER_"

// LoadFile overlays the YAML document at path onto cfg. Keys absent from the
// file keep their current values. When optional is true a missing file is
// not an error.
func LoadFile(cfg *Config, path string, optional bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays PIXMASTER_* variables from lookup onto cfg. lookup is
// normally os.LookupEnv; tests pass a map-backed func.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s must be a whole number (got %q)", EnvPrefix, key, v)
		}
		*dst = n
		return nil
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s must be a boolean (got %q)", EnvPrefix, key, v)
		}
		*dst = b
		return nil
	}

	str("INPUT_DIR", &cfg.InputDir)
	str("OUTPUT_DIR", &cfg.OutputDir)
	str("TOOL", &cfg.Tool)
	str("SUFFIX", &cfg.Suffix)
	str("FORMAT", &cfg.Format)
	str("LOG_FILE", &cfg.LogFile)

	var backend, policy, color string
	str("BACKEND", &backend)
	str("COLLISION_POLICY", &policy)
	str("COLOR", &color)
	if backend != "" {
		cfg.Backend = Backend(strings.ToLower(backend))
	}
	if policy != "" {
		cfg.CollisionPolicy = CollisionPolicy(strings.ToLower(policy))
	}
	if color != "" {
		cfg.ColorMode = ColorMode(strings.ToLower(color))
	}

	var exts string
	str("EXTENSIONS", &exts)
	if exts != "" {
		cfg.Extensions = strings.Split(exts, ",")
	}

	for key, dst := range map[string]*int{
		"DOWNSCALE": &cfg.DownscalePercent,
		"UPSCALE":   &cfg.UpscalePercent,
		"QUALITY":   &cfg.Quality,
		"JOBS":      &cfg.Jobs,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}
	for key, dst := range map[string]*bool{
		"DRY_RUN":         &cfg.DryRun,
		"SKIP_EXISTING":   &cfg.SkipExisting,
		"FAIL_FAST":       &cfg.FailFast,
		"VERBOSE":         &cfg.Verbose,
		"SHOW_FILE_STATS": &cfg.ShowFileStats,
	} {
		if err := boolean(key, dst); err != nil {
			return err
		}
	}
	return nil
}
