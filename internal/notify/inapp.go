package notify

import (
	"context"
	"fmt"

	"GoalPulse/internal/model"
	"GoalPulse/internal/store"
	pkgerrors "GoalPulse/pkg/errors"
)

// inAppChannel 不走队列，同步落库，API 拉取未读列表即可见
type inAppChannel struct {
	notifications store.NotificationStore
}

func NewInAppChannel(notifications store.NotificationStore) Channel {
	return &inAppChannel{notifications: notifications}
}

func (c *inAppChannel) Name() model.NotificationChannel {
	return model.NotificationChannelInApp
}

func (c *inAppChannel) Deliver(ctx context.Context, n Notification) error {
	if n.User == nil {
		return pkgerrors.RecipientMissing
	}

	notification := &model.InAppNotification{
		UserID:    n.User.ID,
		CheckInID: n.CheckInID,
		Kind:      n.Kind,
		Title:     n.Title,
		Body:      n.Body,
	}

	if err := c.notifications.CreateInApp(ctx, notification); err != nil {
		return fmt.Errorf("failed to create in-app notification: %w", err)
	}
	return nil
}
