package queue

import (
	"fmt"

	"go.uber.org/zap"

	"GoalPulse/pkg/logger"
	"GoalPulse/pkg/snowflake"
	"GoalPulse/storage/mq"
)

// PublishNotificationTask 发布通知投递任务
// channel 只能是 email / push，in-app 通知不走队列直接落库
func PublishNotificationTask(msg NotificationTaskMessage) error {
	if msg.MessageID == "" {
		id, err := snowflake.NextID(snowflake.GeneratorTypeMessage)
		if err != nil {
			logger.Logger.Error("Failed to generate message ID",
				zap.Int64("task_code", msg.TaskCode),
				zap.Error(err),
			)
			return fmt.Errorf("failed to generate message ID: %w", err)
		}
		msg.MessageID = fmt.Sprintf("notify_%s_%d", msg.Channel, id)
	}

	// 根据 channel + kind 构建 routing key，匹配 notification.<channel>.* 模式
	routingKey := fmt.Sprintf("notification.%s.%s", msg.Channel, msg.Kind)

	err := mq.PublishMessage(
		notificationExchange,
		routingKey,
		msg,
	)

	if err != nil {
		logger.Logger.Error("Failed to publish notification task",
			zap.String("message_id", msg.MessageID),
			zap.Int64("task_code", msg.TaskCode),
			zap.Int64("user_id", msg.UserID),
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published notification task",
		zap.String("message_id", msg.MessageID),
		zap.Int64("task_code", msg.TaskCode),
		zap.Int64("user_id", msg.UserID),
		zap.String("routing_key", routingKey),
	)

	return nil
}
