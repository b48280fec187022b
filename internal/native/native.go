// Package native pixelates images in-process with golang.org/x/image/draw,
// for hosts without ImageMagick. The downscale uses an approximate bilinear
// filter and the upscale nearest-neighbour, which produces the same blocky
// look as "-scale N% -scale M%".
package native

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // decoder
	"image/jpeg"
	"image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp" // decoders
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/backmassage/pixmaster/internal/transform"
)

// DefaultJPEGQuality matches ImageMagick's default when the input quality
// cannot be estimated.
const DefaultJPEGQuality = 92

// Decoders lists the input formats registered by this package.
var Decoders = []string{"jpeg", "png", "gif", "bmp", "tiff", "webp"}

// Scaler pixelates with the Go image stack.
type Scaler struct{}

var _ transform.Transformer = Scaler{}

// Transform decodes req.Input, shrinks and re-enlarges it, and encodes the
// result to req.Output. Failures use exit code 1, mirroring a CLI tool.
func (Scaler) Transform(ctx context.Context, req transform.Request) transform.Result {
	if err := ctx.Err(); err != nil {
		return transform.Result{ExitCode: -1, Err: err}
	}

	src, err := decode(req.Input)
	if err != nil {
		return fail(err)
	}
	if err := ctx.Err(); err != nil {
		return transform.Result{ExitCode: -1, Err: err}
	}

	dst := Pixelate(src, req.Downscale, req.Upscale)

	if err := encode(req.Output, dst, req.Format, req.Quality); err != nil {
		return fail(err)
	}
	return transform.Result{}
}

// Pixelate returns src scaled by down percent and then by up percent.
func Pixelate(src image.Image, down, up int) image.Image {
	b := src.Bounds()
	sw, sh, ow, oh := transform.TargetSize(b.Dx(), b.Dy(), down, up)

	small := image.NewRGBA(image.Rect(0, 0, sw, sh))
	draw.ApproxBiLinear.Scale(small, small.Bounds(), src, b, draw.Src, nil)

	out := image.NewRGBA(image.Rect(0, 0, ow, oh))
	draw.NearestNeighbor.Scale(out, out.Bounds(), small, small.Bounds(), draw.Src, nil)
	return out
}

func decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", transform.ErrCorruptInput, err)
	}
	defer f.Close()

	img, _, err := image.Decode(bufio.NewReader(f))
	switch {
	case err == nil:
		return img, nil
	case errors.Is(err, image.ErrFormat):
		return nil, fmt.Errorf("%w: %s", transform.ErrUnsupportedFormat, path)
	default:
		return nil, fmt.Errorf("%w: %s: %v", transform.ErrCorruptInput, path, err)
	}
}

func encode(path string, img image.Image, format string, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := encodeTo(w, img, format, quality); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func encodeTo(w io.Writer, img image.Image, format string, quality int) error {
	switch format {
	case "jpg", "jpeg":
		if quality <= 0 {
			quality = DefaultJPEGQuality
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case "png":
		return png.Encode(w, img)
	default:
		return fmt.Errorf("%w: cannot encode %q", transform.ErrUnsupportedFormat, format)
	}
}

func fail(err error) transform.Result {
	return transform.Result{Stderr: err.Error(), ExitCode: 1, Err: err}
}
