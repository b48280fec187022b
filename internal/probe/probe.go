package probe

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // header decoders
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strconv"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnknownFormat is returned when no registered decoder recognises the file.
var ErrUnknownFormat = errors.New("unknown image format")

// ImageInfo is the header-level description of one image file.
type ImageInfo struct {
	Path   string
	Format string // Decoder name: "jpeg", "png", "gif", "bmp", "tiff", "webp".
	Width  int
	Height int
	Size   int64
}

// Resolution returns "WxH", or "unknown" when the header had no dimensions.
func (i *ImageInfo) Resolution() string {
	if i.Width <= 0 || i.Height <= 0 {
		return "unknown"
	}
	return strconv.Itoa(i.Width) + "x" + strconv.Itoa(i.Height)
}

// Probe opens path and decodes only its header.
func Probe(path string) (*ImageInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}

	cfg, format, err := image.DecodeConfig(bufio.NewReader(f))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("probe %q: %w", path, ErrUnknownFormat)
		}
		return nil, fmt.Errorf("probe %q: %w", path, err)
	}

	return &ImageInfo{
		Path:   path,
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
		Size:   st.Size(),
	}, nil
}
