// Package pgstore keeps places in PostgreSQL.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vbonduro/placeoffers/internal/domain"
)

const placeColumns = `id, user_id, title, description, image_url, price,
	available_from, available_to, lat, lng, address, static_map_image_url,
	created_at, updated_at`

type PlaceStore struct {
	pool *pgxpool.Pool
}

func NewPlaceStore(pool *pgxpool.Pool) *PlaceStore {
	return &PlaceStore{pool: pool}
}

// Connect opens a pool for dsn and applies migrations.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func (s *PlaceStore) Create(ctx context.Context, p *domain.Place) (*domain.Place, error) {
	const query = `
INSERT INTO places (` + placeColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING ` + placeColumns

	lat, lng, address, staticMap := locationColumns(p.Location)
	row := s.pool.QueryRow(ctx, query,
		p.ID, p.UserID, p.Title, p.Description, p.ImageURL, p.Price,
		truncate(p.AvailableFrom), truncate(p.AvailableTo), lat, lng, address, staticMap,
		truncate(p.CreatedAt), truncate(p.UpdatedAt))

	created, err := scanPlace(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create place %s: %w", p.ID, domain.ErrInvalidPlace)
		}
		return nil, fmt.Errorf("create place: %w", err)
	}
	return created, nil
}

func (s *PlaceStore) GetByID(ctx context.Context, id string) (*domain.Place, error) {
	const query = `SELECT ` + placeColumns + ` FROM places WHERE id = $1`

	place, err := scanPlace(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get place: %w", err)
	}
	return place, nil
}

func (s *PlaceStore) List(ctx context.Context) ([]*domain.Place, error) {
	const query = `SELECT ` + placeColumns + ` FROM places ORDER BY created_at ASC, id ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list places: %w", err)
	}
	defer rows.Close()

	var places []*domain.Place
	for rows.Next() {
		place, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan place: %w", err)
		}
		places = append(places, place)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate places: %w", err)
	}
	return places, nil
}

func (s *PlaceStore) Update(ctx context.Context, p *domain.Place) (*domain.Place, error) {
	const query = `
UPDATE places
SET title = $2, description = $3, price = $4, available_from = $5, available_to = $6, updated_at = $7
WHERE id = $1
RETURNING ` + placeColumns

	place, err := scanPlace(s.pool.QueryRow(ctx, query,
		p.ID, p.Title, p.Description, p.Price,
		truncate(p.AvailableFrom), truncate(p.AvailableTo), truncate(p.UpdatedAt)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlaceNotFound
		}
		return nil, fmt.Errorf("update place: %w", err)
	}
	return place, nil
}

func (s *PlaceStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM places WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete place: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPlaceNotFound
	}
	return nil
}

func scanPlace(row pgx.Row) (*domain.Place, error) {
	var (
		p                  domain.Place
		lat, lng           *float64
		address, staticMap *string
	)
	err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Description, &p.ImageURL, &p.Price,
		&p.AvailableFrom, &p.AvailableTo, &lat, &lng, &address, &staticMap,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	p.AvailableFrom = p.AvailableFrom.UTC()
	p.AvailableTo = p.AvailableTo.UTC()
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()

	if lat != nil && lng != nil {
		p.Location = &domain.Location{Coordinates: domain.Coordinates{Lat: *lat, Lng: *lng}}
		if address != nil {
			p.Location.Address = *address
		}
		if staticMap != nil {
			p.Location.StaticMapImageURL = *staticMap
		}
	}
	return &p, nil
}

func locationColumns(loc *domain.Location) (lat, lng *float64, address, staticMap *string) {
	if loc == nil {
		return nil, nil, nil, nil
	}
	lat, lng, address = &loc.Lat, &loc.Lng, &loc.Address
	if loc.StaticMapImageURL != "" {
		staticMap = &loc.StaticMapImageURL
	}
	return lat, lng, address, staticMap
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// truncate matches the microsecond precision of TIMESTAMPTZ.
func truncate(t time.Time) time.Time {
	return t.Truncate(time.Microsecond)
}
