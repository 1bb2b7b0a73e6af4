package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"weatherdash/internal/modules/weather/types"
)

// redisKV is the part of *redis.Client the store uses.
type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

type redisRepository struct {
	client redisKV
	ttl    time.Duration
}

// NewRedisRepository stores preferences as JSON under prefs:<session>. A zero
// ttl keeps them forever.
func NewRedisRepository(client redisKV, ttl time.Duration) PreferencesRepository {
	return &redisRepository{client: client, ttl: ttl}
}

func preferencesKey(sessionID string) string {
	return "prefs:" + sessionID
}

type storedPreferences struct {
	Language string `json:"language"`
	Unit     string `json:"unit"`
}

func (r *redisRepository) GetPreferences(ctx context.Context, sessionID string) (types.Preferences, error) {
	data, err := r.client.Get(ctx, preferencesKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return types.DefaultPreferences(), nil
	}
	if err != nil {
		return types.Preferences{}, fmt.Errorf("get preferences from redis: %w", err)
	}
	var sp storedPreferences
	if err := json.Unmarshal([]byte(data), &sp); err != nil {
		return types.DefaultPreferences(), nil
	}
	return normalize(sp.Language, sp.Unit), nil
}

func (r *redisRepository) SavePreferences(ctx context.Context, sessionID string, prefs types.Preferences) error {
	data, err := json.Marshal(storedPreferences{Language: string(prefs.Language), Unit: string(prefs.Unit)})
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	if err := r.client.Set(ctx, preferencesKey(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save preferences to redis: %w", err)
	}
	return nil
}

func (r *redisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
