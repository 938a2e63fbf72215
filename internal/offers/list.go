package offers

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vbonduro/placeoffers/internal/auth"
	"github.com/vbonduro/placeoffers/internal/domain"
	"github.com/vbonduro/placeoffers/internal/observable"
)

// ListPage shows the places owned by the current user.
type ListPage struct {
	places PlacesAccess
	users  auth.UserSource
	nav    Navigator
	logger *slog.Logger

	mu       sync.Mutex
	all      []*domain.Place
	relevant []*domain.Place
	loading  bool
	sub      *observable.Subscription
}

func NewListPage(places PlacesAccess, users auth.UserSource, nav Navigator, logger *slog.Logger) *ListPage {
	return &ListPage{
		places: places,
		users:  users,
		nav:    nav,
		logger: logger,
	}
}

// Activate subscribes to the live place collection. Every emission
// recomputes the current user's offers. Calling Activate twice replaces the
// earlier subscription.
func (p *ListPage) Activate(ctx context.Context) {
	sub := p.places.Places().Subscribe(func(places []*domain.Place) {
		p.onPlaces(ctx, places)
	})

	p.mu.Lock()
	prev := p.sub
	p.sub = sub
	p.mu.Unlock()
	prev.Unsubscribe()
}

func (p *ListPage) onPlaces(ctx context.Context, places []*domain.Place) {
	userID, err := p.users.UserID(ctx)
	if err != nil {
		p.logger.Warn("offer list: current user unavailable", "error", err)
	}

	relevant := make([]*domain.Place, 0, len(places))
	if err == nil {
		for _, place := range places {
			if place.UserID == userID {
				relevant = append(relevant, place)
			}
		}
	}

	p.mu.Lock()
	p.all = places
	p.relevant = relevant
	p.mu.Unlock()
}

// Enter refreshes the collection. Loading is reported until the refresh
// call returns, whether or not it succeeded.
func (p *ListPage) Enter(ctx context.Context) error {
	p.setLoading(true)
	defer p.setLoading(false)

	return p.places.FetchPlaces(ctx)
}

// Edit closes the affordance the action came from and opens the edit page.
func (p *ListPage) Edit(ctx context.Context, offerID string, from Affordance) {
	if from != nil {
		from.Close()
	}
	p.logger.Debug("editing offer", "place_id", offerID)
	p.nav.Navigate(ctx, EditPath(offerID))
}

// Offers returns the current user's places.
func (p *ListPage) Offers() []*domain.Place {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.relevant
}

// All returns the last collection received, regardless of owner.
func (p *ListPage) All() []*domain.Place {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.all
}

func (p *ListPage) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Deactivate releases the collection subscription.
func (p *ListPage) Deactivate() {
	p.mu.Lock()
	sub := p.sub
	p.sub = nil
	p.mu.Unlock()
	sub.Unsubscribe()
}

func (p *ListPage) setLoading(v bool) {
	p.mu.Lock()
	p.loading = v
	p.mu.Unlock()
}
