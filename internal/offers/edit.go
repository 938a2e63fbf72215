package offers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vbonduro/placeoffers/internal/domain"
	"github.com/vbonduro/placeoffers/internal/form"
	"github.com/vbonduro/placeoffers/internal/imagedata"
)

// PlaceIDParam is the route parameter naming the place being edited.
const PlaceIDParam = "placeId"

const (
	updatingMessage   = "Updating place..."
	cancellingMessage = "Cancelling..."
	loadErrorHeader   = "Error!"
	loadErrorMessage  = "Place could not be loaded, please try again"
)

// EditOfferFields backs the edit form. Image and location are fixed at
// creation and have no field here.
type EditOfferFields struct {
	Title       string  `form:"title,blur" validate:"required" json:"title"`
	Description string  `form:"description,blur" validate:"required,max=180" json:"description"`
	Price       float64 `form:"price,blur" validate:"required" json:"price"`
	DateFrom    string  `form:"dateFrom,blur" validate:"required" json:"dateFrom"`
	DateTo      string  `form:"dateTo,blur" validate:"required" json:"dateTo"`
}

// EditOfferPage is the edit form for one place.
type EditOfferPage struct {
	places    PlacesAccess
	nav       Navigator
	presenter Presenter
	logger    *slog.Logger

	mu       sync.Mutex
	place    *domain.Place
	form     *form.FieldSet[EditOfferFields]
	loading  bool
	image    *imagedata.Blob
	location *domain.Location
	cancel   context.CancelFunc
}

func NewEditOfferPage(places PlacesAccess, nav Navigator, presenter Presenter, logger *slog.Logger) *EditOfferPage {
	return &EditOfferPage{
		places:    places,
		nav:       nav,
		presenter: presenter,
		logger:    logger,
	}
}

// Activate loads the place named by the placeId parameter and builds the
// field set from it. Without the parameter it navigates back to the list
// and does nothing else. A failed load is reported through an alert, after
// which the page navigates to the list.
func (p *EditOfferPage) Activate(ctx context.Context, params map[string]string) error {
	id, ok := params[PlaceIDParam]
	if !ok || id == "" {
		p.nav.NavigateBack(ctx, ListPath)
		return nil
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.loading = true
	p.cancel = cancel
	p.mu.Unlock()
	defer cancel()

	place, err := p.places.GetPlace(fetchCtx, id)
	if err == nil && place == nil {
		err = domain.ErrPlaceNotFound
	}
	if err != nil {
		p.mu.Lock()
		p.loading = false
		p.mu.Unlock()
		p.logger.Warn("edit offer: load failed", "place_id", id, "error", err)
		if aerr := p.presenter.Alert(ctx, loadErrorHeader, loadErrorMessage); aerr != nil {
			return fmt.Errorf("edit offer: alert: %w", aerr)
		}
		p.nav.Navigate(ctx, ListPath)
		return nil
	}

	fs := form.New(EditOfferFields{
		Title:       place.Title,
		Description: place.Description,
		Price:       place.Price,
		DateFrom:    formatDate(place.AvailableFrom),
		DateTo:      formatDate(place.AvailableTo),
	})

	p.mu.Lock()
	p.place = place
	p.form = fs
	p.loading = false
	p.mu.Unlock()
	return nil
}

// Form returns the field set, or nil until a place has been loaded.
func (p *EditOfferPage) Form() *form.FieldSet[EditOfferFields] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.form
}

func (p *EditOfferPage) Place() *domain.Place {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.place
}

func (p *EditOfferPage) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// ImagePicked normalizes and keeps the picked image on the page. It is not
// part of the update.
func (p *EditOfferPage) ImagePicked(payload imagedata.Payload) {
	blob, ok := normalizePicked(p.logger, payload)
	if !ok {
		return
	}
	p.mu.Lock()
	p.image = blob
	p.mu.Unlock()
}

// PickedImage returns the last successfully picked image.
func (p *EditOfferPage) PickedImage() *imagedata.Blob {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.image
}

func (p *EditOfferPage) LocationPicked(loc *domain.Location) {
	p.mu.Lock()
	p.location = loc
	p.mu.Unlock()
}

func (p *EditOfferPage) PickedLocation() *domain.Location {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.location
}

// UpdateOffer pushes the edited fields. It returns ErrFormRejected, without
// calling the places service, when no place is loaded or the form is
// invalid.
func (p *EditOfferPage) UpdateOffer(ctx context.Context) error {
	p.mu.Lock()
	fs, place := p.form, p.place
	p.mu.Unlock()

	if fs == nil || place == nil || !fs.Valid() {
		return ErrFormRejected
	}
	fields := fs.Values()

	from, err := parseDate(fields.DateFrom)
	if err != nil {
		return fmt.Errorf("update offer: dateFrom: %w", err)
	}
	to, err := parseDate(fields.DateTo)
	if err != nil {
		return fmt.Errorf("update offer: dateTo: %w", err)
	}

	indicator := p.presenter.ShowProgress(ctx, updatingMessage)
	_, err = p.places.UpdatePlace(ctx, place.ID, domain.PlaceUpdate{
		Title:       fields.Title,
		Description: fields.Description,
		Price:       fields.Price,
		DateFrom:    from,
		DateTo:      to,
	})
	indicator.Dismiss()
	if err != nil {
		return fmt.Errorf("update offer: %w", err)
	}

	fs.Reset()
	p.nav.Navigate(ctx, ListPath)
	return nil
}

// DeleteOffer removes a place and returns to the list.
func (p *EditOfferPage) DeleteOffer(ctx context.Context, placeID string) error {
	indicator := p.presenter.ShowProgress(ctx, cancellingMessage)
	p.logger.Info("deleting offer", "place_id", placeID)
	err := p.places.DeletePlace(ctx, placeID)
	indicator.Dismiss()
	if err != nil {
		return fmt.Errorf("delete offer: %w", err)
	}

	p.nav.Navigate(ctx, ListPath)
	return nil
}

// Deactivate cancels a load that is still in flight.
func (p *EditOfferPage) Deactivate() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
