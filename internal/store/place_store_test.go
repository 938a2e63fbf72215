package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/placeoffers/internal/db"
	"github.com/vbonduro/placeoffers/internal/store/storetest"
)

func newTestStore(t *testing.T) *PlaceStore {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return NewPlaceStore(d)
}

func TestPlaceStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storetest.Repository {
		return newTestStore(t)
	})
}

func TestPlaceStoreKeepsNanoseconds(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := storetest.Place("p1", 0)
	p.CreatedAt = p.CreatedAt.Add(123456789)
	p.UpdatedAt = p.CreatedAt

	_, err := s.Create(ctx, p)
	require.NoError(t, err)

	got, err := s.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, p.CreatedAt.Equal(got.CreatedAt))
}

func TestPlaceStoreOrdersSubSecondTimes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	later := storetest.Place("later", 0)
	later.CreatedAt = later.CreatedAt.Add(500_000_000)
	earlier := storetest.Place("earlier", 0)

	_, err := s.Create(ctx, later)
	require.NoError(t, err)
	_, err = s.Create(ctx, earlier)
	require.NoError(t, err)

	places, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, places, 2)
	assert.Equal(t, "earlier", places[0].ID)
	assert.Equal(t, "later", places[1].ID)
}

func TestParseTimeRejectsGarbage(t *testing.T) {
	_, err := parseTime("yesterday")
	assert.Error(t, err)
}
