package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vbonduro/placeoffers/internal/domain"
)

const placeColumns = `id, user_id, title, description, image_url, price,
	available_from, available_to, lat, lng, address, static_map_image_url,
	created_at, updated_at`

type PlaceStore struct {
	db *sql.DB
}

func NewPlaceStore(db *sql.DB) *PlaceStore {
	return &PlaceStore{db: db}
}

func (s *PlaceStore) Create(ctx context.Context, p *domain.Place) (*domain.Place, error) {
	lat, lng, address, staticMap := locationColumns(p.Location)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO places (`+placeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.UserID, p.Title, p.Description, p.ImageURL, p.Price,
		formatTime(p.AvailableFrom), formatTime(p.AvailableTo),
		lat, lng, address, staticMap,
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to create place: %w", err)
	}

	return s.GetByID(ctx, p.ID)
}

func (s *PlaceStore) GetByID(ctx context.Context, id string) (*domain.Place, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+placeColumns+` FROM places WHERE id = ?
	`, id)

	place, err := scanPlace(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get place: %w", err)
	}

	return place, nil
}

// List returns every place, oldest first.
func (s *PlaceStore) List(ctx context.Context) ([]*domain.Place, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+placeColumns+` FROM places ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list places: %w", err)
	}
	defer rows.Close()

	var places []*domain.Place
	for rows.Next() {
		place, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan place: %w", err)
		}
		places = append(places, place)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating places: %w", err)
	}

	return places, nil
}

// Update writes the editable columns of p. Location, image and owner are
// fixed at creation.
func (s *PlaceStore) Update(ctx context.Context, p *domain.Place) (*domain.Place, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE places
		SET title = ?, description = ?, price = ?, available_from = ?, available_to = ?, updated_at = ?
		WHERE id = ?
	`, p.Title, p.Description, p.Price,
		formatTime(p.AvailableFrom), formatTime(p.AvailableTo), formatTime(p.UpdatedAt), p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update place: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, domain.ErrPlaceNotFound
	}

	return s.GetByID(ctx, p.ID)
}

func (s *PlaceStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM places WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete place: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrPlaceNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlace(row rowScanner) (*domain.Place, error) {
	var (
		p                          domain.Place
		from, to, created, updated string
		lat, lng                   sql.NullFloat64
		address, staticMap         sql.NullString
	)
	err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Description, &p.ImageURL, &p.Price,
		&from, &to, &lat, &lng, &address, &staticMap, &created, &updated)
	if err != nil {
		return nil, err
	}

	for _, f := range []struct {
		dst *time.Time
		src string
	}{
		{&p.AvailableFrom, from},
		{&p.AvailableTo, to},
		{&p.CreatedAt, created},
		{&p.UpdatedAt, updated},
	} {
		if *f.dst, err = parseTime(f.src); err != nil {
			return nil, err
		}
	}

	if lat.Valid && lng.Valid {
		p.Location = &domain.Location{
			Coordinates:       domain.Coordinates{Lat: lat.Float64, Lng: lng.Float64},
			Address:           address.String,
			StaticMapImageURL: staticMap.String,
		}
	}
	return &p, nil
}

func locationColumns(loc *domain.Location) (lat, lng sql.NullFloat64, address, staticMap sql.NullString) {
	if loc == nil {
		return
	}
	lat = sql.NullFloat64{Float64: loc.Lat, Valid: true}
	lng = sql.NullFloat64{Float64: loc.Lng, Valid: true}
	address = sql.NullString{String: loc.Address, Valid: true}
	staticMap = sql.NullString{String: loc.StaticMapImageURL, Valid: loc.StaticMapImageURL != ""}
	return
}

// timeLayout is fixed width so stored UTC times sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored time %q: %w", s, err)
	}
	return t, nil
}
