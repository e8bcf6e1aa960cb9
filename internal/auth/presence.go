package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	presenceKeyFmt = "presence:%d"
	// PresenceTTL is how long a user counts as online after their last request.
	PresenceTTL = 5 * time.Minute
)

// Presence tracks recently active users in Redis. A nil Presence, or one
// without a client, is a no-op that reports zero users online.
type Presence struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewPresence(rdb *redis.Client) *Presence {
	return &Presence{rdb: rdb, ttl: PresenceTTL}
}

func (p *Presence) Enabled() bool {
	return p != nil && p.rdb != nil
}

func (p *Presence) Touch(ctx context.Context, userID uint) error {
	if !p.Enabled() {
		return nil
	}
	key := fmt.Sprintf(presenceKeyFmt, userID)
	return p.rdb.Set(ctx, key, time.Now().Unix(), p.ttl).Err()
}

func (p *Presence) Remove(ctx context.Context, userID uint) error {
	if !p.Enabled() {
		return nil
	}
	key := fmt.Sprintf(presenceKeyFmt, userID)
	return p.rdb.Del(ctx, key).Err()
}

// OnlineCount returns the number of unique users seen within the TTL.
func (p *Presence) OnlineCount(ctx context.Context) (int, error) {
	if !p.Enabled() {
		return 0, nil
	}
	var cursor uint64
	userIds := make(map[string]struct{})
	for {
		keys, newCursor, err := p.rdb.Scan(ctx, cursor, "presence:*", 100).Result()
		if err != nil {
			return 0, err
		}
		for _, key := range keys {
			parts := strings.Split(key, ":")
			if len(parts) == 2 && parts[0] == "presence" && parts[1] != "" {
				userIds[parts[1]] = struct{}{}
			}
		}
		if newCursor == 0 {
			break
		}
		cursor = newCursor
	}
	return len(userIds), nil
}
