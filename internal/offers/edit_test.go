package offers

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/placeoffers/internal/domain"
	"github.com/vbonduro/placeoffers/internal/imagedata"
)

type editHarness struct {
	page      *EditOfferPage
	places    *fakePlaces
	nav       *fakeNav
	presenter *fakePresenter
}

func newEditHarness() *editHarness {
	h := &editHarness{
		places:    newFakePlaces(),
		nav:       &fakeNav{},
		presenter: &fakePresenter{},
	}
	h.places.place = &domain.Place{
		ID:            "p1",
		Title:         "Cabin",
		Description:   "Quiet cabin",
		Price:         40,
		AvailableFrom: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		AvailableTo:   time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC),
		UserID:        "u1",
		ImageURL:      "http://x/cabin.png",
	}
	h.page = NewEditOfferPage(h.places, h.nav, h.presenter, discardLogger())
	return h
}

func TestEditActivateWithoutIDRedirects(t *testing.T) {
	for name, params := range map[string]map[string]string{
		"nil params": nil,
		"missing":    {"other": "x"},
		"empty":      {PlaceIDParam: ""},
	} {
		t.Run(name, func(t *testing.T) {
			h := newEditHarness()

			require.NoError(t, h.page.Activate(context.Background(), params))

			assert.Equal(t, []navCall{{back: true, path: ListPath}}, h.nav.calls)
			assert.Empty(t, h.places.Calls())
			assert.Nil(t, h.page.Form())
			assert.False(t, h.page.Loading())
		})
	}
}

func TestEditActivatePopulatesForm(t *testing.T) {
	h := newEditHarness()

	require.NoError(t, h.page.Activate(context.Background(), map[string]string{PlaceIDParam: "p1"}))

	assert.Equal(t, []string{"get:p1"}, h.places.Calls())
	assert.False(t, h.page.Loading())
	assert.Empty(t, h.nav.calls)
	require.NotNil(t, h.page.Form())
	assert.Equal(t, EditOfferFields{
		Title:       "Cabin",
		Description: "Quiet cabin",
		Price:       40,
		DateFrom:    "2026-05-01T00:00:00Z",
		DateTo:      "2026-05-20T00:00:00Z",
	}, h.page.Form().Values())
	assert.Equal(t, "p1", h.page.Place().ID)
}

func TestEditActivateFetchFailureAlertsThenNavigates(t *testing.T) {
	h := newEditHarness()
	h.places.getErr = domain.ErrPlaceNotFound

	require.NoError(t, h.page.Activate(context.Background(), map[string]string{PlaceIDParam: "gone"}))

	assert.Equal(t, []string{loadErrorHeader + ": " + loadErrorMessage}, h.presenter.alerts)
	assert.Equal(t, []navCall{{path: ListPath}}, h.nav.calls)
	assert.Nil(t, h.page.Form())
}

func TestEditActivateAlertFailureStaysPut(t *testing.T) {
	h := newEditHarness()
	h.places.getErr = errBoom
	h.presenter.alertErr = context.Canceled

	err := h.page.Activate(context.Background(), map[string]string{PlaceIDParam: "p1"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, h.nav.calls)
}

func TestEditUpdateOffer(t *testing.T) {
	h := newEditHarness()
	require.NoError(t, h.page.Activate(context.Background(), map[string]string{PlaceIDParam: "p1"}))

	fs := h.page.Form()
	require.NoError(t, fs.Input("title", "Renovated cabin"))
	require.NoError(t, fs.Blur("title"))
	require.NoError(t, fs.Input("dateTo", "2026-05-25"))
	require.NoError(t, fs.Blur("dateTo"))

	require.NoError(t, h.page.UpdateOffer(context.Background()))

	assert.Equal(t, []string{"get:p1", "update:p1"}, h.places.Calls())
	assert.Equal(t, domain.PlaceUpdate{
		Title:       "Renovated cabin",
		Description: "Quiet cabin",
		Price:       40,
		DateFrom:    time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		DateTo:      time.Date(2026, 5, 25, 0, 0, 0, 0, time.UTC),
	}, h.places.updated["p1"])
	assert.Equal(t, []string{updatingMessage}, h.presenter.progress)
	assert.Equal(t, 1, h.presenter.dismissed)
	assert.Equal(t, []navCall{{path: ListPath}}, h.nav.calls)
	assert.Equal(t, EditOfferFields{}, fs.Values())
}

func TestEditUpdateInvalidIsNoop(t *testing.T) {
	h := newEditHarness()
	require.NoError(t, h.page.Activate(context.Background(), map[string]string{PlaceIDParam: "p1"}))
	require.NoError(t, h.page.Form().Patch("description", strings.Repeat("d", 181)))

	assert.ErrorIs(t, h.page.UpdateOffer(context.Background()), ErrFormRejected)
	assert.Equal(t, []string{"get:p1"}, h.places.Calls())
	assert.Empty(t, h.presenter.progress)
}

func TestEditUpdateBeforeLoadIsRejected(t *testing.T) {
	h := newEditHarness()

	assert.ErrorIs(t, h.page.UpdateOffer(context.Background()), ErrFormRejected)
	assert.Empty(t, h.places.Calls())
}

func TestEditUpdateDoesNotRequirePriceMinimum(t *testing.T) {
	h := newEditHarness()
	require.NoError(t, h.page.Activate(context.Background(), map[string]string{PlaceIDParam: "p1"}))
	require.NoError(t, h.page.Form().Patch("price", 0.5))

	require.NoError(t, h.page.UpdateOffer(context.Background()))
	assert.Equal(t, 0.5, h.places.updated["p1"].Price)
}

func TestEditUpdateUnparseablePriceIsRejected(t *testing.T) {
	h := newEditHarness()
	require.NoError(t, h.page.Activate(context.Background(), map[string]string{PlaceIDParam: "p1"}))

	fs := h.page.Form()
	require.NoError(t, fs.Input("price", "abc"))
	require.Error(t, fs.Blur("price"))

	assert.ErrorIs(t, h.page.UpdateOffer(context.Background()), ErrFormRejected)
	assert.Equal(t, []string{"get:p1"}, h.places.Calls())
	assert.Equal(t, "type", fs.Errors()["price"])
	assert.Empty(t, h.nav.calls)
}

func TestEditUpdateRejectsZeroPrice(t *testing.T) {
	h := newEditHarness()
	require.NoError(t, h.page.Activate(context.Background(), map[string]string{PlaceIDParam: "p1"}))
	require.NoError(t, h.page.Form().Patch("price", "0"))

	assert.ErrorIs(t, h.page.UpdateOffer(context.Background()), ErrFormRejected)
	assert.Equal(t, "required", h.page.Form().Errors()["price"])
	assert.Equal(t, []string{"get:p1"}, h.places.Calls())
}

func TestEditUpdateFailureIsReported(t *testing.T) {
	h := newEditHarness()
	h.places.updateErr = errBoom
	require.NoError(t, h.page.Activate(context.Background(), map[string]string{PlaceIDParam: "p1"}))

	assert.ErrorIs(t, h.page.UpdateOffer(context.Background()), errBoom)
	assert.Equal(t, 1, h.presenter.dismissed)
	assert.Empty(t, h.nav.calls)
}

func TestEditDeleteOffer(t *testing.T) {
	h := newEditHarness()
	require.NoError(t, h.page.Activate(context.Background(), map[string]string{PlaceIDParam: "p1"}))
	require.NoError(t, h.page.Form().Patch("title", ""))

	require.NoError(t, h.page.DeleteOffer(context.Background(), "p1"))

	assert.Equal(t, []string{"get:p1", "delete:p1"}, h.places.Calls())
	assert.Equal(t, []string{"p1"}, h.places.deleted)
	assert.Equal(t, []string{cancellingMessage}, h.presenter.progress)
	assert.Equal(t, 1, h.presenter.dismissed)
	assert.Equal(t, []navCall{{path: ListPath}}, h.nav.calls)
}

func TestEditDeleteWithoutLoad(t *testing.T) {
	h := newEditHarness()

	require.NoError(t, h.page.DeleteOffer(context.Background(), "p7"))

	assert.Equal(t, []string{"delete:p7"}, h.places.Calls())
	assert.Equal(t, []navCall{{path: ListPath}}, h.nav.calls)
}

func TestEditPickersDoNotReachUpdate(t *testing.T) {
	h := newEditHarness()
	require.NoError(t, h.page.Activate(context.Background(), map[string]string{PlaceIDParam: "p1"}))

	h.page.ImagePicked(imagedata.Inline("data:image/png;base64,AAAA"))
	h.page.ImagePicked(imagedata.Inline("not a data url"))
	h.page.LocationPicked(&domain.Location{Address: "Elsewhere"})

	require.NotNil(t, h.page.PickedImage())
	assert.Equal(t, "image/png", h.page.PickedImage().MediaType)
	assert.Equal(t, "Elsewhere", h.page.PickedLocation().Address)

	require.NoError(t, h.page.UpdateOffer(context.Background()))
	assert.NotContains(t, h.places.Calls(), "upload")
}

func TestEditDeactivateCancelsLoad(t *testing.T) {
	h := newEditHarness()
	h.page.Deactivate()

	require.NoError(t, h.page.Activate(context.Background(), map[string]string{PlaceIDParam: "p1"}))
	h.page.Deactivate()
	h.page.Deactivate()
}
