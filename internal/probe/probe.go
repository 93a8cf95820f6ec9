// Package probe reads image dimensions from file headers.
package probe

import (
	"fmt"
	"image"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/abaddouh/fakeimg/internal/errors"
)

// Dimensions is the pixel size of an image. Both fields are positive.
type Dimensions struct {
	Width  int
	Height int
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// Probe decodes only the header of the image at path. Pixel data is never
// read and the file is closed before returning.
func Probe(path string) (Dimensions, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dimensions{}, errors.Wrap(errors.KindUnreadableImage, "probe", path, "open", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return Dimensions{}, errors.Wrap(errors.KindUnreadableImage, "probe", path, "decode image config", err)
	}

	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Dimensions{}, errors.New(errors.KindUnreadableImage, "probe", path,
			fmt.Sprintf("invalid dimensions %dx%d", cfg.Width, cfg.Height))
	}

	return Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}
