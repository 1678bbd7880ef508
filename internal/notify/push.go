package notify

import (
	"context"
	"fmt"
	"time"

	"GoalPulse/internal/model"
	"GoalPulse/internal/queue"
	"GoalPulse/internal/store"
	pkgerrors "GoalPulse/pkg/errors"
	"GoalPulse/pkg/snowflake"
)

type pushChannel struct {
	notifications store.NotificationStore
}

func NewPushChannel(notifications store.NotificationStore) Channel {
	return &pushChannel{notifications: notifications}
}

func (c *pushChannel) Name() model.NotificationChannel {
	return model.NotificationChannelPush
}

func (c *pushChannel) Deliver(ctx context.Context, n Notification) error {
	if n.User == nil || n.User.PushToken == "" {
		return pkgerrors.RecipientMissing
	}

	taskCode, err := snowflake.NextID(snowflake.GeneratorTypeNotification)
	if err != nil {
		return fmt.Errorf("failed to generate task code: %w", err)
	}

	now := time.Now()
	task := &model.NotificationTask{
		TaskCode:    taskCode,
		UserID:      n.User.ID,
		CheckInID:   n.CheckInID,
		Kind:        n.Kind,
		Channel:     model.NotificationChannelPush,
		Payload:     model.JSONB(n.Payload),
		Status:      model.NotificationTaskStatusPending,
		ScheduledAt: now,
	}
	if err := c.notifications.CreateTask(ctx, task); err != nil {
		return fmt.Errorf("failed to create notification task: %w", err)
	}

	msg := queue.NotificationTaskMessage{
		Payload:     n.Payload,
		Kind:        string(n.Kind),
		Channel:     string(model.NotificationChannelPush),
		Title:       n.Title,
		Body:        n.Body,
		ScheduledAt: now.Format(time.RFC3339),
		TaskCode:    taskCode,
		UserID:      n.User.ID,
	}
	if n.CheckInID != nil {
		msg.CheckInID = *n.CheckInID
	}

	return queue.PublishNotificationTask(msg)
}
