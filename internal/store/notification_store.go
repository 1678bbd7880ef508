package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"GoalPulse/internal/model"
	"GoalPulse/storage/database"
)

// NotificationStore 通知任务与 in-app 通知的持久化入口
type NotificationStore interface {
	CreateTask(ctx context.Context, task *model.NotificationTask) error
	GetTaskByCode(ctx context.Context, taskCode int64) (*model.NotificationTask, error)
	// MarkTaskSuccess / MarkTaskFailed 由 worker 在投递结束后回写
	MarkTaskSuccess(ctx context.Context, taskCode int64) error
	MarkTaskFailed(ctx context.Context, taskCode int64, reason string) error

	CreateInApp(ctx context.Context, notification *model.InAppNotification) error
	FindUnreadInApp(ctx context.Context, userID int64, limit int) ([]*model.InAppNotification, error)
	MarkInAppRead(ctx context.Context, userID, notificationID int64) error

	// DeleteStaleTasks 删除早于 before 的终态任务，返回删除行数
	DeleteStaleTasks(ctx context.Context, before time.Time) (int64, error)
	DeleteStaleInApp(ctx context.Context, before time.Time) (int64, error)
}

type gormNotificationStore struct {
	db *gorm.DB
}

func NewNotificationStore() NotificationStore {
	return &gormNotificationStore{db: database.DB()}
}

func (s *gormNotificationStore) CreateTask(ctx context.Context, task *model.NotificationTask) error {
	return s.db.WithContext(ctx).Create(task).Error
}

func (s *gormNotificationStore) GetTaskByCode(ctx context.Context, taskCode int64) (*model.NotificationTask, error) {
	var task model.NotificationTask
	err := s.db.WithContext(ctx).Where("task_code = ?", taskCode).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, gorm.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *gormNotificationStore) MarkTaskSuccess(ctx context.Context, taskCode int64) error {
	now := time.Now()
	return s.db.WithContext(ctx).Model(&model.NotificationTask{}).
		Where("task_code = ?", taskCode).
		Updates(map[string]interface{}{
			"status":       model.NotificationTaskStatusSuccess,
			"processed_at": now,
			"updated_at":   now,
		}).Error
}

func (s *gormNotificationStore) MarkTaskFailed(ctx context.Context, taskCode int64, reason string) error {
	now := time.Now()
	if len(reason) > 255 {
		reason = reason[:255]
	}
	return s.db.WithContext(ctx).Model(&model.NotificationTask{}).
		Where("task_code = ?", taskCode).
		Updates(map[string]interface{}{
			"status":      model.NotificationTaskStatusFailed,
			"retry_count": gorm.Expr("retry_count + 1"),
			"last_error":  reason,
			"updated_at":  now,
		}).Error
}

func (s *gormNotificationStore) CreateInApp(ctx context.Context, notification *model.InAppNotification) error {
	return s.db.WithContext(ctx).Create(notification).Error
}

func (s *gormNotificationStore) FindUnreadInApp(ctx context.Context, userID int64, limit int) ([]*model.InAppNotification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var notifications []*model.InAppNotification
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND read_at IS NULL", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (s *gormNotificationStore) MarkInAppRead(ctx context.Context, userID, notificationID int64) error {
	now := time.Now()
	return s.db.WithContext(ctx).Model(&model.InAppNotification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", notificationID, userID).
		Updates(map[string]interface{}{
			"read_at":    now,
			"updated_at": now,
		}).Error
}

func (s *gormNotificationStore) DeleteStaleTasks(ctx context.Context, before time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("status IN ?", []model.NotificationTaskStatus{
			model.NotificationTaskStatusSuccess,
			model.NotificationTaskStatusFailed,
		}).
		Where("created_at < ?", before).
		Delete(&model.NotificationTask{})
	return result.RowsAffected, result.Error
}

func (s *gormNotificationStore) DeleteStaleInApp(ctx context.Context, before time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("created_at < ?", before).
		Delete(&model.InAppNotification{})
	return result.RowsAffected, result.Error
}
