package receipts

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	platformredis "github.com/Soozey/MADAVOLA/internal/platform/redis"
	"github.com/Soozey/MADAVOLA/pkg/platform/sentinel"
)

// Cache stores issued QR values in Redis with a TTL so scan verification
// stays cheap. The primary record of a receipt lives on the lot row; losing
// the cache only degrades scans to a database lookup elsewhere.
type Cache struct {
	client *platformredis.Client
	ttl    time.Duration
}

func NewCache(client *platformredis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) key(qrValue string) string { return "receipt:" + qrValue }

// Register makes a freshly issued QR value verifiable. A nil client (Redis
// not configured) is a no-op.
func (c *Cache) Register(ctx context.Context, qrValue string, receiptNumber string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Set(ctx, c.key(qrValue), receiptNumber, c.ttl).Err()
}

// Verify resolves a scanned QR value to its receipt number.
// sentinel.ErrNotFound when unknown or expired.
func (c *Cache) Verify(ctx context.Context, qrValue string) (string, error) {
	if c == nil || c.client == nil {
		return "", sentinel.ErrUnavailable
	}
	receipt, err := c.client.Get(ctx, c.key(qrValue)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", sentinel.ErrNotFound
		}
		return "", err
	}
	return receipt, nil
}
