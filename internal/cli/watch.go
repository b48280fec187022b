package cli

import (
	"github.com/spf13/cobra"

	"github.com/backmassage/pixmaster/internal/check"
	"github.com/backmassage/pixmaster/internal/config"
	"github.com/backmassage/pixmaster/internal/pipeline"
)

func newWatchCmd(flags *config.Flags, version, commit string) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [dir]",
		Short: "Pixelate the tree, then keep pixelating new images as they arrive",
		Long: `Watch runs one full pass over the directory and then watches it (and every
subdirectory, including ones created later) for new or modified files.
Each file is pixelated once it has been quiet for half a second.
Press Ctrl-C to stop.`,
		Example: `  pixmaster watch ~/Pictures/inbox --backend native`,
		Args:    cobra.MaximumNArgs(1),
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

			return pipeline.Watch(ctx, s.cfg, s.log, newTransformer(s.cfg))
		},
	}
}
