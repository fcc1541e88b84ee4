package cache

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-rental-backend/internal/config"
	"vehicle-rental-backend/internal/domain"
)

// memoryHook answers GET, SET, DEL and PING from a map without a server.
type memoryHook struct {
	mu   sync.Mutex
	data map[string]string
	ttl  map[string]time.Duration
}

func newTestClient(t *testing.T) (*redis.Client, *memoryHook) {
	t.Helper()
	h := &memoryHook{data: map[string]string{}, ttl: map[string]time.Duration{}}
	client := NewRedisClient(config.RedisConfig{Addr: "127.0.0.1:1"})
	client.AddHook(h)
	t.Cleanup(func() { _ = client.Close() })
	return client, h
}

func (h *memoryHook) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h *memoryHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (h *memoryHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		h.mu.Lock()
		defer h.mu.Unlock()
		args := cmd.Args()
		switch cmd.Name() {
		case "ping":
			cmd.(*redis.StatusCmd).SetVal("PONG")
		case "get":
			v, ok := h.data[str(args[1])]
			if !ok {
				cmd.SetErr(redis.Nil)
				return redis.Nil
			}
			cmd.(*redis.StringCmd).SetVal(v)
		case "set":
			key := str(args[1])
			nx := strings.EqualFold(str(args[len(args)-1]), "nx")
			if _, exists := h.data[key]; nx && exists {
				cmd.(*redis.BoolCmd).SetVal(false)
				return nil
			}
			h.data[key] = str(args[2])
			for i := 3; i+1 < len(args); i++ {
				switch strings.ToLower(str(args[i])) {
				case "ex":
					h.ttl[key] = time.Duration(args[i+1].(int64)) * time.Second
				case "px":
					h.ttl[key] = time.Duration(args[i+1].(int64)) * time.Millisecond
				}
			}
			if nx {
				cmd.(*redis.BoolCmd).SetVal(true)
			} else {
				cmd.(*redis.StatusCmd).SetVal("OK")
			}
		case "del":
			var n int64
			for _, a := range args[1:] {
				if _, ok := h.data[str(a)]; ok {
					delete(h.data, str(a))
					n++
				}
			}
			cmd.(*redis.IntCmd).SetVal(n)
		default:
			return next(ctx, cmd)
		}
		return nil
	}
}

func str(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	}
	return ""
}

func TestTicketCache(t *testing.T) {
	ctx := context.Background()
	client, hook := newTestClient(t)
	c := NewTicketCache(client, 30*time.Minute)

	got, ok, err := c.Get(ctx, 9)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)

	ticket := &domain.Ticket{
		Booking:  domain.Booking{ID: 9, UserID: 4, TotalPriceCents: 2000000, Status: domain.BookingStatusConfirmed},
		Customer: domain.User{ID: 4, Email: "jane@example.com", PasswordHash: "hash"},
		Payment:  domain.Payment{TransactionID: "tx-9", Status: domain.PaymentStatusCompleted},
	}
	require.NoError(t, c.Set(ctx, ticket))
	assert.Equal(t, 30*time.Minute, hook.ttl["ticket:9"])
	assert.NotContains(t, hook.data["ticket:9"], "hash")

	got, ok, err = c.Get(ctx, 9)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "tx-9", got.Payment.TransactionID)
	assert.Equal(t, int32(4), got.Booking.UserID)

	require.NoError(t, c.Delete(ctx, 9))
	_, ok, err = c.Get(ctx, 9)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTicketCache_CorruptEntry(t *testing.T) {
	client, hook := newTestClient(t)
	hook.data["ticket:3"] = "{not json"

	_, ok, err := NewTicketCache(client, time.Minute).Get(context.Background(), 3)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestEventDeduper(t *testing.T) {
	ctx := context.Background()
	client, hook := newTestClient(t)
	d := NewEventDeduper(client, "notifier")

	first, err := d.Claim(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, first)
	assert.Equal(t, dedupTTL, hook.ttl["dedup:notifier:evt-1"])

	again, err := d.Claim(ctx, "evt-1")
	require.NoError(t, err)
	assert.False(t, again)

	require.NoError(t, d.Release(ctx, "evt-1"))
	first, err = d.Claim(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, first)
}

func TestPing(t *testing.T) {
	client, _ := newTestClient(t)
	assert.NoError(t, Ping(context.Background(), client))
}
