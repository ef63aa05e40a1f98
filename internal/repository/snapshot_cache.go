package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Eursukkul/dojo-booking/internal/models"
	"github.com/redis/go-redis/v9"
)

const snapshotKey = "dojo:availability:snapshot"

// SnapshotCache shares the last fetched remote state between instances.
// Get returns nil, nil on a miss.
type SnapshotCache interface {
	Get(ctx context.Context) (*models.RemoteState, error)
	Set(ctx context.Context, state *models.RemoteState) error
	Invalidate(ctx context.Context) error
}

type redisSnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSnapshotCache(client *redis.Client, ttl time.Duration) SnapshotCache {
	return &redisSnapshotCache{client: client, ttl: ttl}
}

func (c *redisSnapshotCache) Get(ctx context.Context) (*models.RemoteState, error) {
	val, err := c.client.Get(ctx, snapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state models.RemoteState
	if err := json.Unmarshal(val, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *redisSnapshotCache) Set(ctx context.Context, state *models.RemoteState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, snapshotKey, data, c.ttl).Err()
}

func (c *redisSnapshotCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, snapshotKey).Err()
}
