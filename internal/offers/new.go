package offers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vbonduro/placeoffers/internal/domain"
	"github.com/vbonduro/placeoffers/internal/form"
	"github.com/vbonduro/placeoffers/internal/imagedata"
)

// NewOfferFields backs the creation form.
type NewOfferFields struct {
	Title       string           `form:"title,blur" validate:"required" json:"title"`
	Description string           `form:"description,blur" validate:"required,max=180" json:"description"`
	Price       float64          `form:"price,blur" validate:"required,min=1" json:"price"`
	DateFrom    string           `form:"dateFrom,blur" validate:"required" json:"dateFrom"`
	DateTo      string           `form:"dateTo,blur" validate:"required" json:"dateTo"`
	Location    *domain.Location `form:"location" validate:"required" json:"location"`
	Image       *imagedata.Blob  `form:"image" json:"-"`
}

const creatingMessage = "Creating place..."

// NewOfferPage is the creation form.
type NewOfferPage struct {
	places    PlacesAccess
	nav       Navigator
	presenter Presenter
	logger    *slog.Logger
	form      *form.FieldSet[NewOfferFields]
}

func NewNewOfferPage(places PlacesAccess, nav Navigator, presenter Presenter, logger *slog.Logger) *NewOfferPage {
	return &NewOfferPage{
		places:    places,
		nav:       nav,
		presenter: presenter,
		logger:    logger,
		form:      form.New(NewOfferFields{}),
	}
}

func (p *NewOfferPage) Form() *form.FieldSet[NewOfferFields] {
	return p.form
}

// LocationPicked stores the picker result as is.
func (p *NewOfferPage) LocationPicked(loc *domain.Location) {
	if err := p.form.Patch("location", loc); err != nil {
		p.logger.Error("new offer: patch location", "error", err)
	}
}

// ImagePicked normalizes the picked image and stores it. A payload that
// cannot be decoded leaves the image field untouched.
func (p *NewOfferPage) ImagePicked(payload imagedata.Payload) {
	blob, ok := normalizePicked(p.logger, payload)
	if !ok {
		return
	}
	if err := p.form.Patch("image", blob); err != nil {
		p.logger.Error("new offer: patch image", "error", err)
	}
}

// CreateOffer uploads the image and then creates the place with the
// returned reference. It returns ErrFormRejected, without calling the
// places service, when the form is invalid or has no image.
func (p *NewOfferPage) CreateOffer(ctx context.Context) error {
	if !p.form.Valid() {
		return ErrFormRejected
	}
	fields := p.form.Values()
	if fields.Image.Size() == 0 {
		return ErrFormRejected
	}

	indicator := p.presenter.ShowProgress(ctx, creatingMessage)
	_, err := p.submit(ctx, fields)
	indicator.Dismiss()
	if err != nil {
		return err
	}

	p.form.Reset()
	p.nav.Navigate(ctx, ListPath)
	return nil
}

// submit is the two-stage pipeline: the place is only created once the
// upload has produced a reference.
func (p *NewOfferPage) submit(ctx context.Context, fields NewOfferFields) (*domain.Place, error) {
	from, err := parseDate(fields.DateFrom)
	if err != nil {
		return nil, fmt.Errorf("create offer: dateFrom: %w", err)
	}
	to, err := parseDate(fields.DateTo)
	if err != nil {
		return nil, fmt.Errorf("create offer: dateTo: %w", err)
	}

	uploaded, err := p.places.UploadImage(ctx, fields.Image)
	if err != nil {
		return nil, fmt.Errorf("create offer: upload image: %w", err)
	}

	place, err := p.places.AddPlace(ctx, domain.NewPlace{
		Title:       fields.Title,
		Description: fields.Description,
		Price:       fields.Price,
		DateFrom:    from,
		DateTo:      to,
		Location:    fields.Location,
		ImageURL:    uploaded.ImageURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create offer: add place: %w", err)
	}

	p.logger.Info("offer created", "place_id", place.ID, "image_url", uploaded.ImageURL)
	return place, nil
}

// normalizePicked is shared by both forms.
func normalizePicked(logger *slog.Logger, payload imagedata.Payload) (*imagedata.Blob, bool) {
	blob, err := imagedata.Normalize(payload)
	if err != nil {
		logger.Warn("image pick ignored", "error", err)
		return nil, false
	}
	logger.Debug("image picked", "media_type", blob.MediaType, "bytes", blob.Size(), "inline", payload.Binary == nil)
	return blob, true
}
