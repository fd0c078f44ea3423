package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/diaperpal/diaperpal-api/internal/domain"
	"github.com/diaperpal/diaperpal-api/pkg/config"
)

const nearbyKeyFormat = "nearby_v1:%.4f:%.4f:%.0f"

func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	opts.DB = cfg.DB
	return redis.NewClient(opts), nil
}

// SearchCache keeps recent nearby fetch results keyed by rounded coordinates
// and radius. It stores venues with stations attached but before open/closed
// evaluation and filtering, so one cached fetch serves every filter
// combination at that location and is_open stays fresh per request.
type SearchCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSearchCache(client *redis.Client, ttl time.Duration) *SearchCache {
	return &SearchCache{client: client, ttl: ttl}
}

func (c *SearchCache) key(lat, lng, radius float64) string {
	return fmt.Sprintf(nearbyKeyFormat, lat, lng, radius)
}

func (c *SearchCache) Get(ctx context.Context, lat, lng, radius float64) ([]domain.VenueWithStations, bool) {
	raw, err := c.client.Get(ctx, c.key(lat, lng, radius)).Bytes()
	if err != nil {
		return nil, false
	}
	var venues []domain.VenueWithStations
	if err := json.Unmarshal(raw, &venues); err != nil {
		return nil, false
	}
	return venues, true
}

func (c *SearchCache) Set(ctx context.Context, lat, lng, radius float64, venues []domain.VenueWithStations) error {
	raw, err := json.Marshal(venues)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(lat, lng, radius), raw, c.ttl).Err()
}

// IdempotencyStore remembers responses for Idempotency-Key headers.
type IdempotencyStore struct {
	client *redis.Client
}

func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, "idempotency:"+key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

func (s *IdempotencyStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, "idempotency:"+key, value, ttl).Err()
}
