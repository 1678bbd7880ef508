package cache

import (
	"context"
	"time"

	"GoalPulse/storage/redis"
)

// 实现分布式锁，防止重发，通过 SetNx 即可实现一个分布式锁，来为多个调度实例来定义
const (
	lockPrefix = "gp:lock"
)

func TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {

	fullkey := redis.Key(lockPrefix, key)

	result, err := redis.Client().SetNX(ctx, fullkey, 1, ttl).Result()

	if err != nil {
		return false, err
	}

	return result, err
}

func Unlock(ctx context.Context, key string) error {
	fullkey := redis.Key(lockPrefix, key)

	return redis.Client().Del(ctx, fullkey).Err()
}
