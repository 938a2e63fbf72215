package imagestore

import (
	"bytes"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

const thumbnailJPEGQuality = 85

// Thumbnailer scales images to fit within MaxWidth x MaxHeight.
type Thumbnailer struct {
	MaxWidth  int
	MaxHeight int
}

func NewThumbnailer(maxWidth, maxHeight int) *Thumbnailer {
	return &Thumbnailer{MaxWidth: maxWidth, MaxHeight: maxHeight}
}

// Generate decodes r and returns a JPEG thumbnail preserving aspect ratio.
func (t *Thumbnailer) Generate(r io.Reader) ([]byte, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	thumb := imaging.Fit(img, t.MaxWidth, t.MaxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(thumbnailJPEGQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
