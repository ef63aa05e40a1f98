package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Eursukkul/dojo-booking/internal/models"
	"github.com/redis/go-redis/v9"
)

// AdminSessionRepository stores admin sessions until they expire. Get
// returns nil, nil for an unknown or expired token.
type AdminSessionRepository interface {
	Save(ctx context.Context, sess *models.AdminSession) error
	Get(ctx context.Context, token string) (*models.AdminSession, error)
	Delete(ctx context.Context, token string) error
}

type redisAdminSessionRepository struct {
	client *redis.Client
}

func NewAdminSessionRepository(client *redis.Client) AdminSessionRepository {
	return &redisAdminSessionRepository{client: client}
}

func adminSessionKey(token string) string {
	return "dojo:admin:session:" + token
}

func (r *redisAdminSessionRepository) Save(ctx context.Context, sess *models.AdminSession) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return errors.New("admin session already expired")
	}
	return r.client.Set(ctx, adminSessionKey(sess.Token), data, ttl).Err()
}

func (r *redisAdminSessionRepository) Get(ctx context.Context, token string) (*models.AdminSession, error) {
	val, err := r.client.Get(ctx, adminSessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var sess models.AdminSession
	if err := json.Unmarshal(val, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (r *redisAdminSessionRepository) Delete(ctx context.Context, token string) error {
	return r.client.Del(ctx, adminSessionKey(token)).Err()
}
