// Package redisstore keeps places in Redis as JSON documents indexed by a
// sorted set ordered on creation time.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/vbonduro/placeoffers/internal/domain"
)

const indexKey = "places"

type PlaceStore struct {
	client *redis.Client
}

func NewPlaceStore(client *redis.Client) *PlaceStore {
	return &PlaceStore{client: client}
}

func placeKey(id string) string {
	return fmt.Sprintf("place:%s", id)
}

// Create refuses to overwrite an existing id.
func (s *PlaceStore) Create(ctx context.Context, p *domain.Place) (*domain.Place, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode place: %w", err)
	}

	ok, err := s.client.SetNX(ctx, placeKey(p.ID), data, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("create place: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("create place %s: %w", p.ID, domain.ErrInvalidPlace)
	}

	err = s.client.ZAdd(ctx, indexKey, &redis.Z{
		Score:  float64(p.CreatedAt.UnixMicro()),
		Member: p.ID,
	}).Err()
	if err != nil {
		return nil, fmt.Errorf("index place: %w", err)
	}

	return s.GetByID(ctx, p.ID)
}

func (s *PlaceStore) GetByID(ctx context.Context, id string) (*domain.Place, error) {
	data, err := s.client.Get(ctx, placeKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get place: %w", err)
	}
	return decode(data)
}

// List returns places oldest first; equal scores fall back to id order.
func (s *PlaceStore) List(ctx context.Context) ([]*domain.Place, error) {
	ids, err := s.client.ZRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list places: %w", err)
	}
	if len(ids) == 0 {
		return []*domain.Place{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, placeKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("list places: %w", err)
	}

	places := make([]*domain.Place, 0, len(ids))
	for _, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, fmt.Errorf("list places: %w", err)
		}
		place, err := decode(data)
		if err != nil {
			return nil, err
		}
		places = append(places, place)
	}
	return places, nil
}

// Update rewrites the editable fields inside a WATCH transaction.
func (s *PlaceStore) Update(ctx context.Context, p *domain.Place) (*domain.Place, error) {
	key := placeKey(p.ID)
	var updated *domain.Place

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return domain.ErrPlaceNotFound
			}
			return err
		}
		current, err := decode(data)
		if err != nil {
			return err
		}

		current.Title = p.Title
		current.Description = p.Description
		current.Price = p.Price
		current.AvailableFrom = p.AvailableFrom
		current.AvailableTo = p.AvailableTo
		current.UpdatedAt = p.UpdatedAt

		out, err := json.Marshal(current)
		if err != nil {
			return fmt.Errorf("encode place: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		updated = current
		return err
	}, key)
	if err != nil {
		if errors.Is(err, domain.ErrPlaceNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update place: %w", err)
	}
	return updated, nil
}

func (s *PlaceStore) Delete(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	del := pipe.Del(ctx, placeKey(id))
	pipe.ZRem(ctx, indexKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete place: %w", err)
	}
	if del.Val() == 0 {
		return domain.ErrPlaceNotFound
	}
	return nil
}

func decode(data []byte) (*domain.Place, error) {
	var place domain.Place
	if err := json.Unmarshal(data, &place); err != nil {
		return nil, fmt.Errorf("decode place: %w", err)
	}
	return &place, nil
}
