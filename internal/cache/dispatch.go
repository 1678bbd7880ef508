package cache

import (
	"context"
	"fmt"
	"time"

	"GoalPulse/storage/redis"
)

const (
	// 用于记录某次打卡的某类通知是否已投放，扫描任务重叠时据此跳过
	dispatchPrefix         = "notify:dispatched"
	messageProcessedPrefix = "message:processed"

	dispatchedTTL = 24 * time.Hour
	processedTTL  = 48 * time.Hour
)

// dispatchKey 键里带上排期时间，打卡改期进入新窗口后不会被旧标记压住
func dispatchKey(checkInID int64, kind string, scheduledDate time.Time) string {
	return redis.Key(dispatchPrefix, kind,
		fmt.Sprintf("%d", checkInID),
		scheduledDate.UTC().Format("20060102150405"))
}

// TryMarkDispatched 原子性地标记某次打卡的某类通知已投放（SETNX）
// 返回 true 表示首次标记，false 表示已投放过，调用方应跳过
func TryMarkDispatched(ctx context.Context, checkInID int64, kind string, scheduledDate time.Time, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = dispatchedTTL
	}

	result, err := redis.Client().SetNX(ctx, dispatchKey(checkInID, kind, scheduledDate), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark notification dispatched: %w", err)
	}
	return result, nil
}

// UnmarkDispatched 清除投放标记（投放全部失败时调用，允许下一轮扫描重试）
func UnmarkDispatched(ctx context.Context, checkInID int64, kind string, scheduledDate time.Time) error {
	return redis.Client().Del(ctx, dispatchKey(checkInID, kind, scheduledDate)).Err()
}

// TryMarkMessageProcessing 尝试原子性地标记消息正在处理（使用 SETNX）
// 返回 true 表示成功标记（首次处理），false 表示已被标记（重复消息或正在处理）
func TryMarkMessageProcessing(ctx context.Context, messageID string, ttl time.Duration) (bool, error) {
	key := redis.Key(messageProcessedPrefix, messageID)
	if ttl <= 0 {
		ttl = processedTTL
	}

	// SETNX：如果 key 不存在则设置，返回 true；如果已存在则返回 false
	result, err := redis.Client().SetNX(ctx, key, "processing", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark message as processing: %w", err)
	}
	return result, nil
}

// UnmarkMessageProcessing 取消消息处理标记（处理失败时调用，允许重试）
func UnmarkMessageProcessing(ctx context.Context, messageID string) error {
	key := redis.Key(messageProcessedPrefix, messageID)
	return redis.Client().Del(ctx, key).Err()
}

// MarkMessageProcessed 标记消息已处理（处理成功时调用，延长 TTL）
func MarkMessageProcessed(ctx context.Context, messageID string, ttl time.Duration) error {
	key := redis.Key(messageProcessedPrefix, messageID)
	if ttl <= 0 {
		ttl = processedTTL
	}
	return redis.Client().Set(ctx, key, "completed", ttl).Err()
}
