package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vbonduro/placeoffers/internal/auth"
	"github.com/vbonduro/placeoffers/internal/clock"
	"github.com/vbonduro/placeoffers/internal/domain"
	"github.com/vbonduro/placeoffers/internal/imagedata"
	"github.com/vbonduro/placeoffers/internal/imagestore"
	"github.com/vbonduro/placeoffers/internal/metrics"
	"github.com/vbonduro/placeoffers/internal/observable"
)

const imagePrefix = "places"

// PlaceRepository is implemented by store.PlaceStore, pgstore.PlaceStore and
// redisstore.PlaceStore. GetByID returns (nil, nil) for an unknown id.
type PlaceRepository interface {
	Create(ctx context.Context, p *domain.Place) (*domain.Place, error)
	GetByID(ctx context.Context, id string) (*domain.Place, error)
	List(ctx context.Context) ([]*domain.Place, error)
	Update(ctx context.Context, p *domain.Place) (*domain.Place, error)
	Delete(ctx context.Context, id string) error
}

// PlaceService owns the in-memory place collection and keeps it in step with
// the repository.
type PlaceService struct {
	places PlaceRepository
	images imagestore.Store
	thumbs *imagestore.Thumbnailer
	users  auth.UserSource
	clock  clock.Clock
	logger *slog.Logger
	tracer trace.Tracer

	feed *observable.Value[[]*domain.Place]
}

// NewPlaceService wires the service. thumbs may be nil to skip thumbnails.
func NewPlaceService(
	places PlaceRepository,
	images imagestore.Store,
	thumbs *imagestore.Thumbnailer,
	users auth.UserSource,
	clk clock.Clock,
	logger *slog.Logger,
) *PlaceService {
	return &PlaceService{
		places: places,
		images: images,
		thumbs: thumbs,
		users:  users,
		clock:  clk,
		logger: logger,
		tracer: newTracer(),
		feed:   observable.NewValue[[]*domain.Place](nil),
	}
}

func (s *PlaceService) Places() observable.Observable[[]*domain.Place] {
	return s.feed
}

// FetchPlaces replaces the collection with the repository contents.
func (s *PlaceService) FetchPlaces(ctx context.Context) (err error) {
	ctx, span := s.tracer.Start(ctx, "PlaceService.FetchPlaces")
	defer func() { finish(span, "fetch", err) }()

	places, err := s.places.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list places: %w", err)
	}

	span.SetAttributes(attribute.Int("places.count", len(places)))
	s.publish(places)
	s.logger.DebugContext(ctx, "places fetched", "count", len(places))
	return nil
}

func (s *PlaceService) GetPlace(ctx context.Context, id string) (_ *domain.Place, err error) {
	ctx, span := s.tracer.Start(ctx, "PlaceService.GetPlace", trace.WithAttributes(attribute.String("place.id", id)))
	defer func() { finish(span, "get", err) }()

	place, err := s.places.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get place: %w", err)
	}
	if place == nil {
		return nil, fmt.Errorf("place %s: %w", id, domain.ErrPlaceNotFound)
	}
	return place, nil
}

// AddPlace creates a place owned by the current user and appends it to the
// collection.
func (s *PlaceService) AddPlace(ctx context.Context, np domain.NewPlace) (_ *domain.Place, err error) {
	ctx, span := s.tracer.Start(ctx, "PlaceService.AddPlace")
	defer func() { finish(span, "add", err) }()

	if err := checkNewPlace(np); err != nil {
		return nil, err
	}

	userID, err := s.users.UserID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	now := s.clock.Now()
	place, err := s.places.Create(ctx, &domain.Place{
		ID:            uuid.NewString(),
		Title:         np.Title,
		Description:   np.Description,
		ImageURL:      np.ImageURL,
		Price:         np.Price,
		AvailableFrom: np.DateFrom.UTC(),
		AvailableTo:   np.DateTo.UTC(),
		UserID:        userID,
		Location:      np.Location,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create place: %w", err)
	}

	span.SetAttributes(attribute.String("place.id", place.ID))
	s.feed.Update(func(current []*domain.Place) []*domain.Place {
		next := append(slices.Clone(current), place)
		metrics.PlacesCached.Set(float64(len(next)))
		return next
	})
	s.logger.InfoContext(ctx, "place created", "place_id", place.ID, "user_id", userID)
	return place, nil
}

// UpdatePlace changes the editable fields of a place and replaces it in the
// collection.
func (s *PlaceService) UpdatePlace(ctx context.Context, id string, u domain.PlaceUpdate) (_ *domain.Place, err error) {
	ctx, span := s.tracer.Start(ctx, "PlaceService.UpdatePlace", trace.WithAttributes(attribute.String("place.id", id)))
	defer func() { finish(span, "update", err) }()

	if strings.TrimSpace(u.Title) == "" || u.Price <= 0 {
		return nil, fmt.Errorf("update place %s: %w", id, domain.ErrInvalidPlace)
	}

	place, err := s.places.Update(ctx, &domain.Place{
		ID:            id,
		Title:         u.Title,
		Description:   u.Description,
		Price:         u.Price,
		AvailableFrom: u.DateFrom.UTC(),
		AvailableTo:   u.DateTo.UTC(),
		UpdatedAt:     s.clock.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update place: %w", err)
	}

	s.feed.Update(func(current []*domain.Place) []*domain.Place {
		next := slices.Clone(current)
		if i := indexOf(next, id); i >= 0 {
			next[i] = place
		}
		return next
	})
	s.logger.InfoContext(ctx, "place updated", "place_id", id)
	return place, nil
}

// DeletePlace removes a place, drops it from the collection and then deletes
// its stored image on a best-effort basis.
func (s *PlaceService) DeletePlace(ctx context.Context, id string) (err error) {
	ctx, span := s.tracer.Start(ctx, "PlaceService.DeletePlace", trace.WithAttributes(attribute.String("place.id", id)))
	defer func() { finish(span, "delete", err) }()

	existing, err := s.places.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get place: %w", err)
	}
	if existing == nil {
		return fmt.Errorf("place %s: %w", id, domain.ErrPlaceNotFound)
	}

	if err := s.places.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete place: %w", err)
	}

	s.feed.Update(func(current []*domain.Place) []*domain.Place {
		next := slices.DeleteFunc(slices.Clone(current), func(p *domain.Place) bool { return p.ID == id })
		metrics.PlacesCached.Set(float64(len(next)))
		return next
	})
	s.logger.InfoContext(ctx, "place deleted", "place_id", id)

	s.removeImage(ctx, existing.ImageURL)
	return nil
}

// UploadImage stores the image and, when it decodes, a JPEG thumbnail next
// to it.
func (s *PlaceService) UploadImage(ctx context.Context, img *imagedata.Blob) (_ *domain.UploadResult, err error) {
	ctx, span := s.tracer.Start(ctx, "PlaceService.UploadImage")
	defer func() { finish(span, "upload", err) }()

	if img.Size() == 0 {
		return nil, fmt.Errorf("upload image: empty payload: %w", domain.ErrUnsupportedImage)
	}
	mediaType := img.MediaType
	if !imagedata.IsAllowedType(mediaType) {
		return nil, fmt.Errorf("upload image: %q: %w", mediaType, domain.ErrUnsupportedImage)
	}
	span.SetAttributes(attribute.String("image.media_type", mediaType), attribute.Int("image.bytes", img.Size()))
	defer func() { metrics.RecordUpload(mediaType, img.Size(), err) }()

	key := imagestore.NewKey(imagePrefix, mediaType)
	if err := s.images.Save(ctx, key, mediaType, img.Reader()); err != nil {
		return nil, fmt.Errorf("failed to save image: %w", err)
	}
	url, err := s.images.URL(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve image url: %w", err)
	}
	s.logger.DebugContext(ctx, "image saved", "key", key, "media_type", mediaType, "bytes", img.Size())

	return &domain.UploadResult{
		ImageURL:     url,
		ImagePath:    key,
		ThumbnailURL: s.saveThumbnail(ctx, key, img),
	}, nil
}

// saveThumbnail returns the thumbnail URL, or "" when none could be made.
func (s *PlaceService) saveThumbnail(ctx context.Context, key string, img *imagedata.Blob) string {
	if s.thumbs == nil {
		return ""
	}

	data, err := s.thumbs.Generate(img.Reader())
	if err != nil {
		s.logger.DebugContext(ctx, "thumbnail skipped", "key", key, "error", err)
		return ""
	}

	thumbKey := imagestore.ThumbnailKey(key)
	if err := s.images.Save(ctx, thumbKey, "image/jpeg", bytes.NewReader(data)); err != nil {
		s.logger.WarnContext(ctx, "failed to save thumbnail", "key", thumbKey, "error", err)
		return ""
	}
	url, err := s.images.URL(ctx, thumbKey)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to resolve thumbnail url", "key", thumbKey, "error", err)
		return ""
	}
	return url
}

func (s *PlaceService) removeImage(ctx context.Context, imageURL string) {
	key, ok := s.images.KeyForURL(imageURL)
	if !ok {
		return
	}
	for _, k := range []string{key, imagestore.ThumbnailKey(key)} {
		if err := s.images.Delete(ctx, k); err != nil && !errors.Is(err, imagestore.ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to delete image", "key", k, "error", err)
		}
	}
}

func (s *PlaceService) publish(places []*domain.Place) {
	metrics.PlacesCached.Set(float64(len(places)))
	s.feed.Set(places)
}

func checkNewPlace(np domain.NewPlace) error {
	switch {
	case strings.TrimSpace(np.Title) == "":
		return fmt.Errorf("title is required: %w", domain.ErrInvalidPlace)
	case np.Price <= 0:
		return fmt.Errorf("price must be positive: %w", domain.ErrInvalidPlace)
	case np.ImageURL == "":
		return fmt.Errorf("image is required: %w", domain.ErrInvalidPlace)
	case np.Location == nil:
		return fmt.Errorf("location is required: %w", domain.ErrInvalidPlace)
	}
	return nil
}

func indexOf(places []*domain.Place, id string) int {
	return slices.IndexFunc(places, func(p *domain.Place) bool { return p.ID == id })
}

// finish closes span and counts the operation.
func finish(span trace.Span, op string, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
	metrics.RecordPlaceOp(op, err)
}
