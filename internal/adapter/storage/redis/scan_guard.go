package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ScanGuard implements ports.ScanGuard using Redis SET NX. It absorbs the
// burst of duplicate reads an RFID reader emits while a card rests on it.
type ScanGuard struct {
	client *goredis.Client
	prefix string
}

// NewScanGuard creates a new Redis-backed scan guard.
func NewScanGuard(client *goredis.Client) *ScanGuard {
	return &ScanGuard{
		client: client,
		prefix: "scan:",
	}
}

// FirstTap atomically records a tap for the card, returning true if no tap
// was seen within the TTL and false for a repeat read.
func (g *ScanGuard) FirstTap(ctx context.Context, rfidTag string, ttl time.Duration) (bool, error) {
	key := g.prefix + rfidTag
	result, err := g.client.SetArgs(ctx, key, 1, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if err == goredis.Nil {
			// Key already exists, the card is still resting on the reader
			return false, nil
		}
		return false, fmt.Errorf("redis scan guard: %w", err)
	}
	return result == "OK", nil
}
