// Package offers implements the three pages a host uses to manage the
// places they rent out: the offer list, the creation form and the edit
// form.
//
// A page is a plain object driven by its host (the HTTP front end in this
// repository). It talks to the places service through PlacesAccess, asks
// the host to move elsewhere through Navigator and shows progress and
// alerts through Presenter.
package offers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vbonduro/placeoffers/internal/domain"
	"github.com/vbonduro/placeoffers/internal/imagedata"
	"github.com/vbonduro/placeoffers/internal/observable"
)

// ListPath is the offer list.
const ListPath = "/places/tabs/offers"

// EditPath returns the edit page of one offer.
func EditPath(placeID string) string {
	return ListPath + "/edit/" + placeID
}

// ErrFormRejected is returned when a submission is refused before any
// collaborator call because the field set is invalid or incomplete.
var ErrFormRejected = errors.New("form rejected")

// PlacesAccess is the places service as the pages see it.
type PlacesAccess interface {
	Places() observable.Observable[[]*domain.Place]
	FetchPlaces(ctx context.Context) error
	GetPlace(ctx context.Context, id string) (*domain.Place, error)
	AddPlace(ctx context.Context, p domain.NewPlace) (*domain.Place, error)
	UpdatePlace(ctx context.Context, id string, u domain.PlaceUpdate) (*domain.Place, error)
	DeletePlace(ctx context.Context, id string) error
	UploadImage(ctx context.Context, img *imagedata.Blob) (*domain.UploadResult, error)
}

type Navigator interface {
	Navigate(ctx context.Context, path string)
	NavigateBack(ctx context.Context, path string)
}

// Indicator is a visible progress overlay.
type Indicator interface {
	Dismiss()
}

type Presenter interface {
	// ShowProgress presents a blocking progress overlay.
	ShowProgress(ctx context.Context, message string) Indicator
	// Alert presents a message with a single acknowledgement and returns
	// once it is acknowledged.
	Alert(ctx context.Context, header, message string) error
}

// Affordance is a transient UI control, such as a sliding list item, that
// must be closed before leaving the page.
type Affordance interface {
	Close()
}

// dateLayouts are the forms a date input is accepted in.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseDate turns a stored date field back into a time.
func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised date %q", domain.ErrInvalidPlace, s)
}

func formatDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
