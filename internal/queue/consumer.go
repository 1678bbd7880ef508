package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"GoalPulse/internal/cache"
	"GoalPulse/pkg/errors"
	"GoalPulse/pkg/logger"
	"GoalPulse/storage/mq"
)

// NotificationSender worker 侧的投递实现，启动时注入
type NotificationSender interface {
	SendEmail(ctx context.Context, msg NotificationTaskMessage) error
	SendPush(ctx context.Context, msg NotificationTaskMessage) error
}

var notificationSender NotificationSender

// SetNotificationSender 设置投递实现（在 worker 启动时调用）
func SetNotificationSender(s NotificationSender) {
	notificationSender = s
}

// StartEmailConsumer 启动邮件通知消费者
func StartEmailConsumer(ctx context.Context) error {
	handler := func(body []byte) error {
		var msg NotificationTaskMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal email notification message: %w", err)
		}

		return deliver(ctx, msg, func(ctx context.Context, msg NotificationTaskMessage) error {
			return notificationSender.SendEmail(ctx, msg)
		})
	}

	return mq.Consume(mq.ConsumeOptions{
		Queue:         emailQueue,
		ConsumerTag:   "email_notification_consumer",
		PrefetchCount: 20,
		Handler:       handler,
	})
}

// StartPushConsumer 启动推送通知消费者
func StartPushConsumer(ctx context.Context) error {
	handler := func(body []byte) error {
		var msg NotificationTaskMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal push notification message: %w", err)
		}

		return deliver(ctx, msg, func(ctx context.Context, msg NotificationTaskMessage) error {
			return notificationSender.SendPush(ctx, msg)
		})
	}

	return mq.Consume(mq.ConsumeOptions{
		Queue:         pushQueue,
		ConsumerTag:   "push_notification_consumer",
		PrefetchCount: 10,
		Handler:       handler,
	})
}

// deliver 幂等检查 + 投递 + 标记，email / push 共用
func deliver(ctx context.Context, msg NotificationTaskMessage, send func(context.Context, NotificationTaskMessage) error) error {
	// 【幂等性检查】使用 SETNX 原子性地检查并标记消息正在处理
	processed, err := cache.TryMarkMessageProcessing(ctx, msg.MessageID, 24*time.Hour)
	if err != nil {
		logger.Logger.Warn("Failed to check message processed status",
			zap.String("message_id", msg.MessageID),
			zap.Int64("task_code", msg.TaskCode),
			zap.Error(err),
		)
		// 如果检查失败，继续处理（不阻塞业务），但可能重复处理
	} else if !processed {
		logger.Logger.Info("Message already processed or being processed, skipping",
			zap.String("message_id", msg.MessageID),
			zap.Int64("task_code", msg.TaskCode),
		)
		return &errors.SkipMessageError{Reason: fmt.Sprintf("Message %s already processed", msg.MessageID)}
	}

	logger.Logger.Info("Processing notification task",
		zap.String("message_id", msg.MessageID),
		zap.String("channel", msg.Channel),
		zap.Int64("task_code", msg.TaskCode),
		zap.Int64("user_id", msg.UserID),
	)

	if notificationSender == nil {
		logger.Logger.Error("NotificationSender not initialized",
			zap.String("message_id", msg.MessageID),
		)
		cache.UnmarkMessageProcessing(ctx, msg.MessageID)
		return fmt.Errorf("notification sender not initialized")
	}

	if msg.TaskCode == 0 {
		logger.Logger.Error("TaskCode is missing in message",
			zap.String("message_id", msg.MessageID),
		)
		cache.UnmarkMessageProcessing(ctx, msg.MessageID)
		return fmt.Errorf("task_code is required")
	}

	if err := send(ctx, msg); err != nil {
		// 跳过类错误：标记为已处理，避免重复投递
		if errors.IsSkip(err) {
			if markErr := cache.MarkMessageProcessed(ctx, msg.MessageID, 48*time.Hour); markErr != nil {
				logger.Logger.Warn("Failed to mark skipped message as processed",
					zap.String("message_id", msg.MessageID),
					zap.Error(markErr),
				)
			}
			return err
		}

		// 其他错误：取消标记，允许重试
		cache.UnmarkMessageProcessing(ctx, msg.MessageID)
		return fmt.Errorf("failed to deliver notification: %w", err)
	}

	// 处理成功，标记为已完成（TTL 延长到 48 小时）
	if err := cache.MarkMessageProcessed(ctx, msg.MessageID, 48*time.Hour); err != nil {
		logger.Logger.Warn("Failed to mark message as processed",
			zap.String("message_id", msg.MessageID),
			zap.Error(err),
		)
		// 不影响主流程，因为已经处理成功了
	}

	return nil
}

// StartAllConsumers 启动所有消费者（在 worker 启动时调用）
func StartAllConsumers(ctx context.Context) {
	var wg sync.WaitGroup

	consumers := []struct {
		name     string
		consumer func(context.Context) error
	}{
		{"email_notification", StartEmailConsumer},
		{"push_notification", StartPushConsumer},
	}

	for _, c := range consumers {
		wg.Add(1)
		go func(name string, consumer func(context.Context) error) {
			defer wg.Done()

			logger.Logger.Info("Starting consumer",
				zap.String("consumer_name", name),
			)

			if err := consumer(ctx); err != nil {
				logger.Logger.Error("Consumer exited with error",
					zap.String("consumer_name", name),
					zap.Error(err),
				)
			}
		}(c.name, c.consumer)
	}

	wg.Wait()

	logger.Logger.Info("All consumers stopped")
}
