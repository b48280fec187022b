package magick

import (
	"strconv"

	"github.com/backmassage/pixmaster/internal/transform"
)

// Build constructs the complete argument slice (tool first) for one request.
// The input comes first so the same form works for IM6 "convert" and IM7
// "magick". Only the first frame of multi-frame inputs (GIF, TIFF) is used,
// which keeps the one-input-one-output invariant.
func Build(tool string, req transform.Request) []string {
	args := make([]string, 0, 10)
	args = append(args, tool)

	// --- Input ---
	args = append(args, req.Input+"[0]")

	// --- Pixelation: shrink, then blow back up ---
	args = append(args,
		"-scale", percent(req.Downscale),
		"-scale", percent(req.Upscale),
	)

	// --- Encoder settings ---
	if req.Quality > 0 {
		args = append(args, "-quality", strconv.Itoa(req.Quality))
	}

	// --- Output ---
	// The coder prefix pins the output format independent of the file name.
	args = append(args, formatPrefix(req.Format)+req.Output)
	return args
}

func percent(v int) string {
	return strconv.Itoa(v) + "%"
}

// formatPrefix returns "jpeg:" style coder prefixes for known formats.
func formatPrefix(format string) string {
	switch format {
	case "jpg", "jpeg":
		return "jpeg:"
	case "png":
		return "png:"
	case "gif":
		return "gif:"
	case "webp":
		return "webp:"
	default:
		return ""
	}
}
