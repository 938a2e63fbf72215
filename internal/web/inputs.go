package web

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/vbonduro/placeoffers/internal/domain"
	"github.com/vbonduro/placeoffers/internal/form"
	"github.com/vbonduro/placeoffers/internal/imagedata"
)

const maxImageSize = 10 * 1024 * 1024 // 10 MB

var (
	errBadInput      = errors.New("bad input")
	errImageTooLarge = errors.New("image exceeds 10 MB")
)

// parseInput accepts url-encoded and multipart bodies.
func parseInput(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxImageSize)
	}
	return r.ParseForm()
}

// applyFields types each submitted value into its field and leaves it, the
// way a user filling in the form would. Fields absent from the body are not
// touched.
func applyFields[T any](fs *form.FieldSet[T], r *http.Request, logger *slog.Logger, names ...string) {
	for _, name := range names {
		values, ok := r.PostForm[name]
		if !ok || len(values) == 0 {
			continue
		}
		if err := fs.Input(name, values[0]); err != nil {
			logger.Debug("field input rejected", "field", name, "error", err)
			continue
		}
		if err := fs.Blur(name); err != nil {
			logger.Debug("field blur rejected", "field", name, "error", err)
		}
	}
}

// locationInput reads lat, lng, address and staticMapImageUrl. It returns
// nil when neither coordinate was sent.
func locationInput(r *http.Request) (*domain.Location, error) {
	latRaw, lngRaw := r.PostFormValue("lat"), r.PostFormValue("lng")
	if latRaw == "" && lngRaw == "" {
		return nil, nil
	}
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: lat %q", errBadInput, latRaw)
	}
	lng, err := strconv.ParseFloat(lngRaw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: lng %q", errBadInput, lngRaw)
	}
	return &domain.Location{
		Coordinates:       domain.Coordinates{Lat: lat, Lng: lng},
		Address:           r.PostFormValue("address"),
		StaticMapImageURL: r.PostFormValue("staticMapImageUrl"),
	}, nil
}

// imageInput reads the picked image, either a data URL in the image field
// or an uploaded file whose media type is sniffed from its content.
func imageInput(r *http.Request, logger *slog.Logger) (imagedata.Payload, bool, error) {
	if v := r.PostFormValue("image"); v != "" {
		return imagedata.Inline(v), true, nil
	}
	if r.MultipartForm == nil {
		return imagedata.Payload{}, false, nil
	}

	file, _, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return imagedata.Payload{}, false, nil
	}
	if err != nil {
		return imagedata.Payload{}, false, fmt.Errorf("%w: image: %v", errBadInput, err)
	}
	defer closeWithLog(file, "upload file", logger)

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil {
		return imagedata.Payload{}, false, fmt.Errorf("read image: %w", err)
	}
	if len(data) > maxImageSize {
		return imagedata.Payload{}, false, errImageTooLarge
	}
	mimeType, ok := imagedata.SniffMIME(data)
	if !ok {
		return imagedata.Payload{}, false, domain.ErrUnsupportedImage
	}
	return imagedata.Binary(&imagedata.Blob{Data: data, MediaType: mimeType}), true, nil
}
