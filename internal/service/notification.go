package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"GoalPulse/internal/model"
	"GoalPulse/internal/queue"
	"GoalPulse/internal/store"
	pkgerrors "GoalPulse/pkg/errors"
	"GoalPulse/pkg/logger"
	"GoalPulse/pkg/mailer"
	"GoalPulse/pkg/metrics"
	"GoalPulse/pkg/push"
	"GoalPulse/utils"
)

// NotificationService worker 侧的实际投递，实现 queue.NotificationSender
type NotificationService struct {
	users         store.UserStore
	notifications store.NotificationStore
}

var (
	notificationService *NotificationService
	notificationOnce    sync.Once
)

func Notification() *NotificationService {
	notificationOnce.Do(func() {
		notificationService = NewNotificationService(
			store.NewUserStore(),
			store.NewNotificationStore(),
		)
	})

	return notificationService
}

// NewNotificationService 依赖注入版本，测试用
func NewNotificationService(users store.UserStore, notifications store.NotificationStore) *NotificationService {
	return &NotificationService{
		users:         users,
		notifications: notifications,
	}
}

// SendEmail 解密收件地址并走 SMTP 投递
func (s *NotificationService) SendEmail(ctx context.Context, msg queue.NotificationTaskMessage) error {
	start := time.Now()

	user, err := s.users.GetByID(ctx, msg.UserID)
	if err != nil {
		s.failTask(ctx, msg.TaskCode, "user not found")
		return &pkgerrors.SkipMessageError{Reason: fmt.Sprintf("user %d not found", msg.UserID)}
	}

	if user.EmailEncrypted == "" {
		s.failTask(ctx, msg.TaskCode, "recipient email missing")
		return &pkgerrors.SkipMessageError{Reason: fmt.Sprintf("user %d has no email", msg.UserID)}
	}

	email, err := utils.DecryptRecipient(user.EmailEncrypted)
	if err != nil {
		// 解密失败说明数据损坏，重试也没用
		s.failTask(ctx, msg.TaskCode, "recipient decrypt failed")
		return &pkgerrors.SkipMessageError{Reason: fmt.Sprintf("failed to decrypt recipient for user %d", msg.UserID)}
	}

	if err := mailer.Send(ctx, email, msg.Title, msg.Body); err != nil {
		s.failTask(ctx, msg.TaskCode, err.Error())
		metrics.RecordSent(msg.Kind, msg.Channel, "failed", time.Since(start).Seconds())
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.succeedTask(ctx, msg.TaskCode)
	metrics.RecordSent(msg.Kind, msg.Channel, "success", time.Since(start).Seconds())

	logger.Logger.Info("Email notification delivered",
		zap.Int64("task_code", msg.TaskCode),
		zap.Int64("user_id", msg.UserID),
		zap.String("kind", msg.Kind),
	)
	return nil
}

// SendPush 向用户设备推送
func (s *NotificationService) SendPush(ctx context.Context, msg queue.NotificationTaskMessage) error {
	start := time.Now()

	user, err := s.users.GetByID(ctx, msg.UserID)
	if err != nil {
		s.failTask(ctx, msg.TaskCode, "user not found")
		return &pkgerrors.SkipMessageError{Reason: fmt.Sprintf("user %d not found", msg.UserID)}
	}

	if user.PushToken == "" {
		s.failTask(ctx, msg.TaskCode, "push token missing")
		return &pkgerrors.SkipMessageError{Reason: fmt.Sprintf("user %d has no push token", msg.UserID)}
	}

	if err := push.Send(ctx, user.PushToken, msg.Title, msg.Body); err != nil {
		s.failTask(ctx, msg.TaskCode, err.Error())
		metrics.RecordSent(msg.Kind, msg.Channel, "failed", time.Since(start).Seconds())
		return fmt.Errorf("failed to send push: %w", err)
	}

	s.succeedTask(ctx, msg.TaskCode)
	metrics.RecordSent(msg.Kind, msg.Channel, "success", time.Since(start).Seconds())

	logger.Logger.Info("Push notification delivered",
		zap.Int64("task_code", msg.TaskCode),
		zap.Int64("user_id", msg.UserID),
		zap.String("kind", msg.Kind),
	)
	return nil
}

// GetUnread 拉取未读 in-app 通知
func (s *NotificationService) GetUnread(ctx context.Context, userID int64, limit int) ([]*model.InAppNotification, error) {
	return s.notifications.FindUnreadInApp(ctx, userID, limit)
}

// MarkRead 标记单条 in-app 通知已读
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID int64) error {
	return s.notifications.MarkInAppRead(ctx, userID, notificationID)
}

func (s *NotificationService) failTask(ctx context.Context, taskCode int64, reason string) {
	if err := s.notifications.MarkTaskFailed(ctx, taskCode, reason); err != nil {
		logger.Logger.Warn("Failed to mark notification task as failed",
			zap.Int64("task_code", taskCode),
			zap.Error(err),
		)
	}
}

func (s *NotificationService) succeedTask(ctx context.Context, taskCode int64) {
	if err := s.notifications.MarkTaskSuccess(ctx, taskCode); err != nil {
		logger.Logger.Warn("Failed to mark notification task as success",
			zap.Int64("task_code", taskCode),
			zap.Error(err),
		)
	}
}
