// Package storetest holds the behaviour every place repository backend
// must share.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/placeoffers/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, p *domain.Place) (*domain.Place, error)
	GetByID(ctx context.Context, id string) (*domain.Place, error)
	List(ctx context.Context) ([]*domain.Place, error)
	Update(ctx context.Context, p *domain.Place) (*domain.Place, error)
	Delete(ctx context.Context, id string) error
}

var base = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

// Place returns a fully populated place created n minutes after a fixed
// instant.
func Place(id string, n int) *domain.Place {
	created := base.Add(time.Duration(n) * time.Minute)
	return &domain.Place{
		ID:            id,
		Title:         fmt.Sprintf("Place %s", id),
		Description:   "Bright room near the station",
		ImageURL:      "http://localhost:8080/images/places/" + id + ".png",
		Price:         42.5,
		AvailableFrom: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		AvailableTo:   time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC),
		UserID:        "u1",
		Location: &domain.Location{
			Coordinates:       domain.Coordinates{Lat: 52.52, Lng: 13.405},
			Address:           "Alexanderplatz 1, Berlin",
			StaticMapImageURL: "https://maps.example/static?center=52.52,13.405",
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
}

// AssertPlaceEqual compares places field by field, times by instant.
func AssertPlaceEqual(t *testing.T, want, got *domain.Place) {
	t.Helper()
	require.NotNil(t, got)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.Description, got.Description)
	assert.Equal(t, want.ImageURL, got.ImageURL)
	assert.InDelta(t, want.Price, got.Price, 1e-9)
	assert.Equal(t, want.UserID, got.UserID)
	assert.Equal(t, want.Location, got.Location)
	assert.True(t, want.AvailableFrom.Equal(got.AvailableFrom), "availableFrom %v != %v", want.AvailableFrom, got.AvailableFrom)
	assert.True(t, want.AvailableTo.Equal(got.AvailableTo), "availableTo %v != %v", want.AvailableTo, got.AvailableTo)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "createdAt %v != %v", want.CreatedAt, got.CreatedAt)
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt), "updatedAt %v != %v", want.UpdatedAt, got.UpdatedAt)
}

// Run exercises a repository. newRepo must return an empty repository.
func Run(t *testing.T, newRepo func(t *testing.T) Repository) {
	t.Run("Create and GetByID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		want := Place("p1", 0)

		created, err := repo.Create(ctx, want)
		require.NoError(t, err)
		AssertPlaceEqual(t, want, created)

		got, err := repo.GetByID(ctx, "p1")
		require.NoError(t, err)
		AssertPlaceEqual(t, want, got)
	})

	t.Run("Create without location", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		want := Place("p2", 0)
		want.Location = nil

		_, err := repo.Create(ctx, want)
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, "p2")
		require.NoError(t, err)
		AssertPlaceEqual(t, want, got)
	})

	t.Run("GetByID missing returns nil", func(t *testing.T) {
		repo := newRepo(t)

		got, err := repo.GetByID(context.Background(), "nope")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("List oldest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for i, id := range []string{"c", "a", "b"} {
			_, err := repo.Create(ctx, Place(id, 10-i))
			require.NoError(t, err)
		}

		places, err := repo.List(ctx)
		require.NoError(t, err)
		var ids []string
		for _, p := range places {
			ids = append(ids, p.ID)
		}
		assert.Equal(t, []string{"b", "a", "c"}, ids)
	})

	t.Run("List empty", func(t *testing.T) {
		repo := newRepo(t)

		places, err := repo.List(context.Background())
		require.NoError(t, err)
		assert.Empty(t, places)
	})

	t.Run("Update changes editable fields only", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		original := Place("p1", 0)
		_, err := repo.Create(ctx, original)
		require.NoError(t, err)

		edit := *original
		edit.Title = "Renamed"
		edit.Description = "Now with balcony"
		edit.Price = 55
		edit.AvailableFrom = original.AvailableFrom.AddDate(0, 0, 1)
		edit.AvailableTo = original.AvailableTo.AddDate(0, 0, 2)
		edit.UpdatedAt = original.UpdatedAt.Add(time.Hour)
		edit.ImageURL = "http://elsewhere/ignored.png"
		edit.UserID = "someone-else"
		edit.Location = nil

		updated, err := repo.Update(ctx, &edit)
		require.NoError(t, err)

		want := *original
		want.Title = edit.Title
		want.Description = edit.Description
		want.Price = edit.Price
		want.AvailableFrom = edit.AvailableFrom
		want.AvailableTo = edit.AvailableTo
		want.UpdatedAt = edit.UpdatedAt
		AssertPlaceEqual(t, &want, updated)

		got, err := repo.GetByID(ctx, "p1")
		require.NoError(t, err)
		AssertPlaceEqual(t, &want, got)
	})

	t.Run("Update missing", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Update(context.Background(), Place("ghost", 0))
		assert.ErrorIs(t, err, domain.ErrPlaceNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		_, err := repo.Create(ctx, Place("p1", 0))
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, "p1"))

		got, err := repo.GetByID(ctx, "p1")
		require.NoError(t, err)
		assert.Nil(t, got)

		places, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, places)

		assert.ErrorIs(t, repo.Delete(ctx, "p1"), domain.ErrPlaceNotFound)
	})
}
