package engine

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/klytics/sheetcanvas/internal/errors"
)

// naturalSize decodes only the header of an image to get its pixel size
// and format name.
func naturalSize(data []byte) (w, h int, format string, err error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, "", errors.Wrap(errors.ErrCodeUndecodableImage, err, "could not decode image header")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, format, errors.New(errors.ErrCodeUndecodableImage, "image reports size %dx%d", cfg.Width, cfg.Height)
	}
	return cfg.Width, cfg.Height, format, nil
}
