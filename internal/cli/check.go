package cli

import (
	"github.com/spf13/cobra"

	"github.com/backmassage/pixmaster/internal/check"
	"github.com/backmassage/pixmaster/internal/config"
)

func newCheckCmd(flags *config.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report whether the configured backend can pixelate images",
		Long: `Check prints the ImageMagick path, version and delegates (or the native
decoder list) and runs a test pixelation of a generated PNG with the
current settings. It is informational and always exits 0.`,
		Example: `  pixmaster check
  pixmaster check --tool magick --format webp`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := setup(cmd, flags, nil)
			if err != nil {
				return err
			}
			defer s.close()

			check.RunCheck(cmd.Context(), s.cfg, s.log)
			return nil
		},
	}
}
