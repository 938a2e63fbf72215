package offers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/vbonduro/placeoffers/internal/domain"
	"github.com/vbonduro/placeoffers/internal/imagedata"
	"github.com/vbonduro/placeoffers/internal/observable"
)

var errBoom = errors.New("boom")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakePlaces records every call in order.
type fakePlaces struct {
	mu    sync.Mutex
	calls []string

	feed *observable.Value[[]*domain.Place]

	fetchErr  error
	onFetch   func()
	place     *domain.Place
	getErr    error
	upload    *domain.UploadResult
	uploadErr error
	addErr    error
	updateErr error
	deleteErr error

	uploaded []*imagedata.Blob
	added    []domain.NewPlace
	updated  map[string]domain.PlaceUpdate
	deleted  []string
}

func newFakePlaces() *fakePlaces {
	return &fakePlaces{
		feed:    observable.NewValue[[]*domain.Place](nil),
		upload:  &domain.UploadResult{ImageURL: "http://x/img.png"},
		updated: make(map[string]domain.PlaceUpdate),
	}
}

func (f *fakePlaces) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakePlaces) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakePlaces) Places() observable.Observable[[]*domain.Place] {
	return f.feed
}

func (f *fakePlaces) FetchPlaces(context.Context) error {
	f.record("fetch")
	if f.onFetch != nil {
		f.onFetch()
	}
	return f.fetchErr
}

func (f *fakePlaces) GetPlace(_ context.Context, id string) (*domain.Place, error) {
	f.record("get:" + id)
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.place, nil
}

func (f *fakePlaces) AddPlace(_ context.Context, p domain.NewPlace) (*domain.Place, error) {
	f.record("add")
	if f.addErr != nil {
		return nil, f.addErr
	}
	f.added = append(f.added, p)
	return &domain.Place{ID: "new-1", Title: p.Title, ImageURL: p.ImageURL}, nil
}

func (f *fakePlaces) UpdatePlace(_ context.Context, id string, u domain.PlaceUpdate) (*domain.Place, error) {
	f.record("update:" + id)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updated[id] = u
	return &domain.Place{ID: id, Title: u.Title}, nil
}

func (f *fakePlaces) DeletePlace(_ context.Context, id string) error {
	f.record("delete:" + id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakePlaces) UploadImage(_ context.Context, img *imagedata.Blob) (*domain.UploadResult, error) {
	f.record("upload")
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.uploaded = append(f.uploaded, img)
	return f.upload, nil
}

type navCall struct {
	back bool
	path string
}

type fakeNav struct {
	calls []navCall
}

func (n *fakeNav) Navigate(_ context.Context, path string) {
	n.calls = append(n.calls, navCall{path: path})
}

func (n *fakeNav) NavigateBack(_ context.Context, path string) {
	n.calls = append(n.calls, navCall{back: true, path: path})
}

type fakeIndicator struct {
	p *fakePresenter
}

func (i fakeIndicator) Dismiss() {
	i.p.dismissed++
}

type fakePresenter struct {
	progress  []string
	dismissed int
	alerts    []string
	alertErr  error
}

func (p *fakePresenter) ShowProgress(_ context.Context, message string) Indicator {
	p.progress = append(p.progress, message)
	return fakeIndicator{p: p}
}

func (p *fakePresenter) Alert(_ context.Context, header, message string) error {
	p.alerts = append(p.alerts, header+": "+message)
	return p.alertErr
}

type fakeUsers struct {
	id  string
	err error
}

func (u fakeUsers) UserID(context.Context) (string, error) {
	return u.id, u.err
}

type fakeAffordance struct {
	closed bool
}

func (a *fakeAffordance) Close() {
	a.closed = true
}
