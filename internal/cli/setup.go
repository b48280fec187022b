package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/backmassage/pixmaster/internal/config"
	"github.com/backmassage/pixmaster/internal/display"
	"github.com/backmassage/pixmaster/internal/logging"
	"github.com/backmassage/pixmaster/internal/magick"
	"github.com/backmassage/pixmaster/internal/native"
	"github.com/backmassage/pixmaster/internal/transform"
)

// session is the state shared by every subcommand once config is loaded.
type session struct {
	cfg *config.Config
	log *logging.Logger
}

// setup loads config (defaults < YAML < env < flags < positional dir),
// validates it, opens the logger and prints the banner.
func setup(cmd *cobra.Command, flags *config.Flags, args []string) (*session, error) {
	cfg, err := loadConfig(cmd, flags, args)
	if err != nil {
		return nil, err
	}

	log, err := logging.NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	log.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
	display.PrintBanner(cmd.OutOrStdout())

	return &session{cfg: cfg, log: log}, nil
}

func loadConfig(cmd *cobra.Command, flags *config.Flags, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	path, optional := flags.ConfigPath, false
	if path == "" {
		path, optional = config.DefaultConfigFile, true
	}
	if err := config.LoadFile(&cfg, path, optional); err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	flags.Apply(cmd.Flags(), &cfg)
	if len(args) > 0 {
		cfg.InputDir = args[0]
	}
	cfg.InputDir = config.NormalizeDirArg(cfg.InputDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *session) close() { s.log.Close() }

// preparePaths resolves the input (and output) directory. The input must be
// an existing directory; a separate output directory is created if needed
// and must not be inside the input (that would feed outputs back in).
func (s *session) preparePaths() error {
	cfg, log := s.cfg, s.log

	inputAbs, err := absPath(cfg.InputDir)
	if err != nil {
		log.Error("Input not found: %s", cfg.InputDir)
		return err
	}
	if fi, err := os.Stat(inputAbs); err != nil || !fi.IsDir() {
		log.Error("Input is not a directory: %s", cfg.InputDir)
		return fmt.Errorf("input %s is not a directory", cfg.InputDir)
	}
	cfg.InputDir = inputAbs

	if cfg.OutputDir == "" {
		return nil
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		log.Error("Cannot create output directory: %s", cfg.OutputDir)
		return err
	}
	outputAbs, err := absPath(cfg.OutputDir)
	if err != nil {
		log.Error("Cannot resolve output path: %s", cfg.OutputDir)
		return err
	}
	if err := cfg.ValidatePaths(inputAbs, outputAbs); err != nil {
		log.Error("%v", err)
		log.Error("Choose an output path outside: %s", inputAbs)
		return err
	}
	cfg.OutputDir = outputAbs
	return nil
}

func (s *session) logHeader(version, commit string) {
	s.log.Info("=== Pixmaster v%s (%s) ===", version, commit)
	s.log.Info("In:  %s", s.cfg.InputDir)
	if s.cfg.OutputDir != "" {
		s.log.Info("Out: %s", s.cfg.OutputDir)
	} else {
		s.log.Info("Out: next to each input")
	}
	s.log.Blank()
}

// notifyInterrupt logs once when ctx is cancelled (fang cancels it on
// SIGINT/SIGTERM). The returned func unregisters the hook.
func (s *session) notifyInterrupt(ctx context.Context) func() bool {
	return context.AfterFunc(ctx, func() {
		s.log.Warn("Received interrupt, finishing current file...")
	})
}

// newTransformer returns the backend selected by cfg.Backend.
func newTransformer(cfg *config.Config) transform.Transformer {
	if cfg.Backend == config.BackendNative {
		return native.Scaler{}
	}
	return magick.New(cfg)
}

// absPath returns the absolute, symlink-resolved path for safe comparison
// of input vs output directory hierarchies.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
