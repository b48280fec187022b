// Package cli wires the cobra command tree: the default pixelation run, the
// check diagnostics, and watch mode.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/backmassage/pixmaster/internal/check"
	"github.com/backmassage/pixmaster/internal/config"
	"github.com/backmassage/pixmaster/internal/pipeline"
)

// ErrFilesFailed is returned when at least one file could not be pixelated.
var ErrFilesFailed = errors.New("some files failed")

// NewRootCmd builds the pixmaster command. version and commit are shown in
// the run header.
func NewRootCmd(version, commit string) *cobra.Command {
	var flags *config.Flags

	cmd := &cobra.Command{
		Use:   "pixmaster [flags] [dir]",
		Short: "Batch-pixelate every image under a directory tree",
		Long: `Pixmaster walks a directory tree and writes a pixelated copy of every file
next to it: a.png becomes a_pix.jpg. Each image is shrunk to 10% and enlarged
by 500%, which replaces detail with blocky pixels.

Outputs of earlier runs (names ending in _pix) are never processed again, so
the command is safe to re-run over the same tree.

Settings come from defaults, then ./pixmaster.yaml (or --config), then
PIXMASTER_* environment variables (a .env file is loaded first), then flags.`,
		Example: `  # Pixelate assets/photography with ImageMagick's convert
  pixmaster

  # Another tree, ImageMagick 7, four files at a time
  pixmaster --tool magick -j 4 ~/Pictures/trip

  # No ImageMagick installed
  pixmaster --backend native photos`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := setup(cmd, flags, args)
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.preparePaths(); err != nil {
				return err
			}
			s.logHeader(version, commit)

			ctx := cmd.Context()
			if err := check.CheckDeps(ctx, s.cfg); err != nil {
				s.log.Error("%v", err)
				return err
			}

			stop := s.notifyInterrupt(ctx)
			defer stop()

			stats := pipeline.Run(ctx, s.cfg, s.log, newTransformer(s.cfg))
			return runResult(ctx, stats)
		},
	}

	flags = config.BindFlags(cmd.PersistentFlags())

	cmd.AddCommand(newCheckCmd(flags))
	cmd.AddCommand(newWatchCmd(flags, version, commit))

	return cmd
}

// runResult maps batch stats to the command's error.
func runResult(ctx context.Context, stats pipeline.RunStats) error {
	if stats.Failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrFilesFailed, stats.Failed, stats.Total)
	}
	if stats.Interrupted {
		return ctx.Err()
	}
	return nil
}
