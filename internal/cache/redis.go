package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"vehicle-rental-backend/internal/config"
	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/service"
)

const (
	keyTicket = "ticket:%d"
	keyDedup  = "dedup:%s:%s"

	dedupTTL = 48 * time.Hour
)

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

var _ service.TicketCache = (*TicketCache)(nil)

// TicketCache keeps ticket projections as JSON under ticket:{bookingID}.
type TicketCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewTicketCache(rdb redis.Cmdable, ttl time.Duration) *TicketCache {
	return &TicketCache{rdb: rdb, ttl: ttl}
}

func (c *TicketCache) Get(ctx context.Context, bookingID int32) (*domain.Ticket, bool, error) {
	raw, err := c.rdb.Get(ctx, fmt.Sprintf(keyTicket, bookingID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var t domain.Ticket
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, false, fmt.Errorf("decode cached ticket %d: %w", bookingID, err)
	}
	return &t, true, nil
}

func (c *TicketCache) Set(ctx context.Context, t *domain.Ticket) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, fmt.Sprintf(keyTicket, t.Booking.ID), raw, c.ttl).Err()
}

func (c *TicketCache) Delete(ctx context.Context, bookingID int32) error {
	return c.rdb.Del(ctx, fmt.Sprintf(keyTicket, bookingID)).Err()
}

// EventDeduper claims event ids with SET NX so each consumer group handles
// an event once.
type EventDeduper struct {
	rdb      redis.Cmdable
	consumer string
}

func NewEventDeduper(rdb redis.Cmdable, consumer string) *EventDeduper {
	return &EventDeduper{rdb: rdb, consumer: consumer}
}

func (d *EventDeduper) Claim(ctx context.Context, eventID string) (bool, error) {
	return d.rdb.SetNX(ctx, fmt.Sprintf(keyDedup, d.consumer, eventID), "1", dedupTTL).Result()
}

func (d *EventDeduper) Release(ctx context.Context, eventID string) error {
	return d.rdb.Del(ctx, fmt.Sprintf(keyDedup, d.consumer, eventID)).Err()
}
