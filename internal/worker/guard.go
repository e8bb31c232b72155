package worker

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const refundGuardTTL = 30 * 24 * time.Hour

// RedisRefundGuard marks refunds with a SETNX key so a replayed compensation
// for the same task never credits twice. Implements RefundGuard.
type RedisRefundGuard struct {
	rdb *redis.Client
}

func NewRedisRefundGuard(rdb *redis.Client) *RedisRefundGuard {
	return &RedisRefundGuard{rdb: rdb}
}

func (g *RedisRefundGuard) Acquire(ctx context.Context, taskID string) (bool, error) {
	return g.rdb.SetNX(ctx, "refund:"+taskID, 1, refundGuardTTL).Result()
}
