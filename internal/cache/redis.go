package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache keeps search results. Flights never change once loaded, so a
// cached result stays correct until the flights table is reloaded.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(cfg config.RedisConfig, ttl time.Duration) *RedisCache {
	return NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}), ttl)
}

func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// GetItineraries returns nil, nil on a miss.
func (c *RedisCache) GetItineraries(ctx context.Context, q domain.SearchQuery) ([]domain.Itinerary, error) {
	data, err := c.client.Get(ctx, SearchKey(q)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var itineraries []domain.Itinerary
	if err := json.Unmarshal(data, &itineraries); err != nil {
		return nil, err
	}
	return itineraries, nil
}

func (c *RedisCache) SetItineraries(ctx context.Context, q domain.SearchQuery, itineraries []domain.Itinerary) error {
	payload, err := json.Marshal(itineraries)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, SearchKey(q), payload, c.ttl).Err()
}

// Flush drops every cached search, used after the flights table is reloaded.
func (c *RedisCache) Flush(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, searchKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

const searchKeyPrefix = "cache:search:"

// SearchKey quotes the city names so that separators inside them cannot
// make two queries share a key.
func SearchKey(q domain.SearchQuery) string {
	return fmt.Sprintf("%s%q:%q:%d:%t:%d", searchKeyPrefix, q.Origin, q.Destination, q.DayOfMonth, q.DirectOnly, q.MaxResults)
}
