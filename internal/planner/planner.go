package planner

import (
	"fmt"
	"os"

	"github.com/backmassage/pixmaster/internal/config"
	"github.com/backmassage/pixmaster/internal/probe"
	"github.com/backmassage/pixmaster/internal/transform"
)

// BuildPlan produces the FilePlan for input. info may be nil when probing was
// skipped or failed; the external tool is then left to discover the format
// itself.
//
// Flow:
//  1. Build the transform request from config
//  2. Compute target sizes when the source size is known
//  3. Decide the action (skip when the output exists and SkipExisting is set)
func BuildPlan(cfg *config.Config, input string, info *probe.ImageInfo, outputPath string) *FilePlan {
	plan := &FilePlan{
		Action:     ActionPixelate,
		InputPath:  input,
		OutputPath: outputPath,
		Request: transform.Request{
			Input:     input,
			Output:    outputPath,
			Downscale: cfg.DownscalePercent,
			Upscale:   cfg.UpscalePercent,
			Format:    cfg.Format,
			Quality:   cfg.Quality,
		},
	}

	if info != nil && info.Width > 0 && info.Height > 0 {
		plan.SrcWidth, plan.SrcHeight = info.Width, info.Height
		plan.SmallWidth, plan.SmallHeight, plan.OutWidth, plan.OutHeight =
			transform.TargetSize(info.Width, info.Height, cfg.DownscalePercent, cfg.UpscalePercent)
	}

	if cfg.SkipExisting {
		if fi, err := os.Stat(outputPath); err == nil && !fi.IsDir() {
			plan.Action = ActionSkipExisting
			plan.SkipReason = fmt.Sprintf("output exists: %s", outputPath)
		}
	}
	return plan
}
