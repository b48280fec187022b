package magick

import (
	"regexp"

	"github.com/backmassage/pixmaster/internal/transform"
)

// Pre-compiled regexes for classifying ImageMagick stderr output. Checked in
// order by [Classify]; the first match wins.
var (
	reUnsupported = regexp.MustCompile(
		`(?i)no decode delegate for this image format|` +
			`no encode delegate for this image format|` +
			`NoDecodeDelegateForThisImageFormat|` +
			`NoEncodeDelegateForThisImageFormat`)

	reCorrupt = regexp.MustCompile(
		`(?i)improper image header|corrupt image|` +
			`premature end of|insufficient image data|` +
			`not a JPEG file|CRC error|` +
			`negative or zero image size|unable to read image data`)

	reMissingInput = regexp.MustCompile(
		`(?i)unable to open image .*No such file or directory`)
)

// MatchUnsupported reports whether stderr says the format has no delegate.
func MatchUnsupported(stderr string) bool {
	return reUnsupported.MatchString(stderr)
}

// MatchCorrupt reports whether stderr describes a damaged or truncated image.
func MatchCorrupt(stderr string) bool {
	return reCorrupt.MatchString(stderr)
}

// MatchMissingInput reports whether the input vanished before the tool ran.
func MatchMissingInput(stderr string) bool {
	return reMissingInput.MatchString(stderr)
}

// Classify maps stderr from a failed run to the most specific sentinel.
func Classify(stderr string) error {
	switch {
	case MatchUnsupported(stderr):
		return transform.ErrUnsupportedFormat
	case MatchCorrupt(stderr), MatchMissingInput(stderr):
		return transform.ErrCorruptInput
	default:
		return transform.ErrNonZeroExit
	}
}
